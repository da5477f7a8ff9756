package rst

import (
	"strconv"
	"strings"
)

type enumFormat int

const (
	formatPeriod enumFormat = iota
	formatParens
	formatRParen
)

type enumSequence int

const (
	seqAuto enumSequence = iota
	seqArabic
	seqLowerAlpha
	seqUpperAlpha
	seqLowerRoman
	seqUpperRoman
)

type enumerator struct {
	format   enumFormat
	sequence enumSequence
	ordinal  int // 0 when the text is not a valid numeral
	end      int // offset after the enumerator and its spaces
}

// parseEnumerator decodes the enumerator at the start of line. expected
// prefers a sequence when the text is ambiguous, such as "i" or "v".
func parseEnumerator(line string, expected enumSequence) (enumerator, bool) {
	m := enumeratorRe.FindStringSubmatchIndex(line)
	if m == nil {
		return enumerator{}, false
	}

	var e enumerator
	var text string
	switch {
	case m[2] >= 0:
		e.format, text = formatParens, line[m[2]:m[3]]
	case m[4] >= 0:
		e.format, text = formatRParen, line[m[4]:m[5]]
	default:
		e.format, text = formatPeriod, line[m[6]:m[7]]
	}
	e.end = m[1]

	switch {
	case text == "#":
		e.sequence, e.ordinal = seqAuto, 1
		return e, true
	case expected != seqAuto && matchesSequence(text, expected):
		e.sequence = expected
	case text == "i":
		e.sequence = seqLowerRoman
	case text == "I":
		e.sequence = seqUpperRoman
	default:
		for _, seq := range []enumSequence{seqArabic, seqLowerAlpha, seqUpperAlpha, seqLowerRoman, seqUpperRoman} {
			if matchesSequence(text, seq) {
				e.sequence = seq
				break
			}
		}
	}
	e.ordinal = ordinalOf(text, e.sequence)
	return e, true
}

func matchesSequence(text string, seq enumSequence) bool {
	switch seq {
	case seqArabic:
		return strings.Trim(text, "0123456789") == ""
	case seqLowerAlpha:
		return len(text) == 1 && text[0] >= 'a' && text[0] <= 'z'
	case seqUpperAlpha:
		return len(text) == 1 && text[0] >= 'A' && text[0] <= 'Z'
	case seqLowerRoman:
		return strings.Trim(text, "ivxlcdm") == ""
	case seqUpperRoman:
		return strings.Trim(text, "IVXLCDM") == ""
	default:
		return false
	}
}

func ordinalOf(text string, seq enumSequence) int {
	switch seq {
	case seqArabic:
		n, err := strconv.Atoi(text)
		if err != nil {
			return 0
		}
		return n
	case seqLowerAlpha:
		return int(text[0]-'a') + 1
	case seqUpperAlpha:
		return int(text[0]-'A') + 1
	case seqLowerRoman, seqUpperRoman:
		return fromRoman(strings.ToUpper(text))
	default:
		return 0
	}
}

var romanNumerals = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"}, {100, "C"}, {90, "XC"},
	{50, "L"}, {40, "XL"}, {10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func toRoman(n int) string {
	if n <= 0 || n >= 5000 {
		return ""
	}
	var b strings.Builder
	for _, r := range romanNumerals {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}

// fromRoman accepts canonical numerals only and returns 0 otherwise.
func fromRoman(s string) int {
	n, rest := 0, s
	for _, r := range romanNumerals {
		for strings.HasPrefix(rest, r.symbol) {
			n += r.value
			rest = rest[len(r.symbol):]
		}
	}
	if rest != "" || toRoman(n) != s {
		return 0
	}
	return n
}

// render formats ordinal in e's sequence and format, e.g. "(iv)".
func (e enumerator) render(ordinal int, sequence enumSequence) string {
	var text string
	switch sequence {
	case seqAuto:
		text = "#"
	case seqArabic:
		text = strconv.Itoa(ordinal)
	case seqLowerAlpha, seqUpperAlpha:
		if ordinal < 1 || ordinal > 26 {
			return ""
		}
		base := byte('a')
		if sequence == seqUpperAlpha {
			base = 'A'
		}
		text = string(rune(base + byte(ordinal-1)))
	case seqLowerRoman:
		text = strings.ToLower(toRoman(ordinal))
	case seqUpperRoman:
		text = toRoman(ordinal)
	}
	if text == "" {
		return ""
	}
	switch e.format {
	case formatParens:
		return "(" + text + ")"
	case formatRParen:
		return text + ")"
	default:
		return text + "."
	}
}

// enumeratedListItem reports whether the enumerator at line i starts a
// list item: the next line must be blank, indented, missing, or start
// with the following enumerator.
func (d *document) enumeratedListItem(s span, i int) bool {
	e, ok := parseEnumerator(s.lines[i], seqAuto)
	return ok && d.isListItem(s, i, e)
}

func (d *document) isListItem(s span, i int, e enumerator) bool {
	if e.ordinal == 0 {
		return false
	}
	if s.blank(i+1) || s.indentedAt(i+1) {
		return true
	}
	next := s.lines[i+1]
	if want := e.render(e.ordinal+1, e.sequence); want != "" && strings.HasPrefix(next, want) {
		return true
	}
	return strings.HasPrefix(next, e.render(0, seqAuto))
}

func (d *document) enumeratedList(s span, i int) int {
	first, _ := parseEnumerator(s.lines[i], seqAuto)
	sequence, last, auto := first.sequence, first.ordinal, first.sequence == seqAuto
	e := first
	for {
		block, end, blankFinish := d.listItem(s, i, e.end)
		d.parseBody(block, false)
		i = end

		if i < s.len() {
			next, ok := parseEnumerator(s.lines[i], sequence)
			if ok && next.format == first.format && d.isListItem(s, i, next) &&
				(next.sequence == seqAuto || (next.sequence == sequence && !auto && next.ordinal == last+1)) {
				if next.sequence == seqAuto {
					auto = true
				}
				e, last = next, next.ordinal
				continue
			}
		}
		if !blankFinish {
			d.unindentWarning(s, i, "Enumerated list")
		}
		d.element()
		return i
	}
}
