package rst

import (
	"regexp"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"
)

// document holds the parse state of one check.
type document struct {
	checker *Checker
	src     span

	code     []Problem
	messages []Problem
	late     []Problem

	targets       map[string]bool
	substitutions map[string]bool
	customRoles   map[string]bool
	refs          []pendingRef
	subRefs       []pendingRef

	titleStyles  []string
	sectionLevel int
	sectionBody  int
	transition   int
}

type pendingRef struct {
	name string
	line int
}

func newDocument(c *Checker, text string) *document {
	return &document{
		checker:       c,
		src:           span{lines: splitSource(text)},
		targets:       make(map[string]bool),
		substitutions: make(map[string]bool),
		customRoles:   make(map[string]bool),
		transition:    -1,
	}
}

func (d *document) run() {
	d.parseBody(d.src, true)
	if d.transition >= 0 {
		d.late = append(d.late, Problem{Line: d.transition, Level: LevelError, Message: "Document may not end with a transition."})
	}
	d.resolve()
}

func (d *document) results() []Problem {
	out := make([]Problem, 0, len(d.code)+len(d.messages)+len(d.late))
	out = append(out, d.code...)
	out = append(out, d.messages...)
	return append(out, d.late...)
}

func (d *document) report(line int, level Level, msg string) {
	d.messages = append(d.messages, Problem{Line: line, Level: level, Message: msg})
}

func (d *document) unindentWarning(s span, i int, what string) {
	d.report(s.abs(i), LevelWarning, what+" ends without a blank line; unexpected unindent.")
}

// resolve reports substitution and hyperlink references without a
// definition, in document order.
func (d *document) resolve() {
	folded := make(map[string]bool, len(d.substitutions))
	for name := range d.substitutions {
		folded[strings.ToLower(name)] = true
	}
	var subs []Problem
	for _, ref := range d.subRefs {
		if d.substitutions[ref.name] || folded[strings.ToLower(ref.name)] {
			continue
		}
		subs = append(subs, Problem{Line: ref.line, Level: LevelError, Message: `Undefined substitution referenced: "` + ref.name + `".`})
	}

	var targets []Problem
	for _, ref := range d.refs {
		if d.targets[ref.name] {
			continue
		}
		targets = append(targets, Problem{Line: ref.line, Level: LevelError, Message: `Unknown target name: "` + ref.name + `".`})
	}

	d.late = append(subs, append(d.late, targets...)...)
}

// parseBody parses body elements. Section titles are only allowed when
// matchTitles is set, which is the case for the top level alone.
func (d *document) parseBody(s span, matchTitles bool) {
	for i := 0; i < s.len(); {
		switch {
		case s.blank(i):
			i++
		case s.indentedAt(i):
			i = d.blockQuote(s, i)
		default:
			i = d.bodyElement(s, i, matchTitles)
		}
	}
}

var (
	bulletRe      = regexp.MustCompile(`^[-+*\x{2022}\x{2023}\x{2043}]( +|$)`)
	enumeratorRe  = regexp.MustCompile(`^(?:\(([0-9]+|[a-z]|[A-Z]|[ivxlcdm]+|[IVXLCDM]+|#)\)|([0-9]+|[a-z]|[A-Z]|[ivxlcdm]+|[IVXLCDM]+|#)\)|([0-9]+|[a-z]|[A-Z]|[ivxlcdm]+|[IVXLCDM]+|#)\.)( +|$)`)
	optionRe      = regexp.MustCompile(`^(?:-[a-zA-Z0-9]|--[a-zA-Z0-9][-_a-zA-Z0-9]*)(?:[ =](?:<[^<>]+>|[a-zA-Z][-_a-zA-Z0-9]*))?(?:, (?:-[a-zA-Z0-9]|--[a-zA-Z0-9][-_a-zA-Z0-9]*)(?:[ =](?:<[^<>]+>|[a-zA-Z][-_a-zA-Z0-9]*))?)*(  +| ?$)`)
	doctestRe     = regexp.MustCompile(`^>>>( +|$)`)
	lineBlockRe   = regexp.MustCompile(`^\|( +|$)`)
	gridTableRe   = regexp.MustCompile(`^\+-[-+]+-\+ *$`)
	simpleTableRe = regexp.MustCompile(`^=+( +=+)+ *$`)
	explicitRe    = regexp.MustCompile(`^\.\.( +|$)`)
	anonymousRe   = regexp.MustCompile(`^__( +|$)`)
)

func (d *document) bodyElement(s span, i int, matchTitles bool) int {
	line := s.lines[i]
	switch {
	case bulletRe.MatchString(line):
		return d.bulletList(s, i)
	case enumeratorRe.MatchString(line) && d.enumeratedListItem(s, i):
		return d.enumeratedList(s, i)
	case fieldMarkerEnd(line) > 0:
		return d.fieldList(s, i)
	case optionRe.MatchString(line):
		return d.optionList(s, i)
	case doctestRe.MatchString(line):
		end, _ := s.textBlock(i, false)
		d.element()
		return end
	case lineBlockRe.MatchString(line), gridTableRe.MatchString(line), simpleTableRe.MatchString(line):
		end, _ := s.textBlock(i, false)
		d.element()
		return end
	case explicitRe.MatchString(line), anonymousRe.MatchString(line):
		return d.explicitList(s, i)
	case isSectionLine(line) && line != "::":
		return d.line(s, i, matchTitles)
	default:
		return d.text(s, i, matchTitles)
	}
}

func (d *document) blockQuote(s span, i int) int {
	block, end, blankFinish := s.indented(i)
	d.parseBody(block, false)
	if !blankFinish {
		d.unindentWarning(s, end, "Block quote")
	}
	d.element()
	return end
}

// line handles a punctuation line at the start of a body element: a
// transition or the overline of a section title.
func (d *document) line(s span, i int, matchTitles bool) int {
	marker := s.lines[i]
	if !matchTitles {
		if len(marker) < 4 {
			return d.text(s, i, matchTitles)
		}
		d.report(s.abs(i), LevelSevere, "Unexpected section title or transition.")
		return i + 1
	}

	if s.blank(i + 1) {
		if len(marker) < 4 {
			return d.text(s, i, matchTitles)
		}
		d.addTransition(s.abs(i))
		return i + 1
	}

	next := s.lines[i+1]
	if isSectionLine(next) {
		if len(marker) < 4 {
			return d.text(s, i, matchTitles)
		}
		d.report(s.abs(i), LevelError, "Invalid section title or transition marker.")
		return i + 2
	}

	title := strings.TrimSpace(next)
	if i+2 >= s.len() {
		if len(marker) < 4 {
			return d.text(s, i, matchTitles)
		}
		d.report(s.abs(i), LevelSevere, "Incomplete section title.")
		return i + 2
	}
	underline := s.lines[i+2]
	switch {
	case !isSectionLine(underline):
		if len(marker) < 4 {
			return d.text(s, i, matchTitles)
		}
		d.report(s.abs(i), LevelSevere, "Missing matching underline for section title overline.")
		return i + 3
	case underline != marker:
		if len(marker) < 4 {
			return d.text(s, i, matchTitles)
		}
		d.report(s.abs(i), LevelSevere, "Title overline & underline mismatch.")
		return i + 3
	}

	if runewidth.StringWidth(next) > len(marker) {
		if len(marker) < 4 {
			return d.text(s, i, matchTitles)
		}
		d.report(s.abs(i), LevelWarning, "Title overline too short.")
	}
	d.section(title, marker[:1]+underline[:1], s.abs(i+1))
	return i + 3
}

// text handles a line of ordinary text: a paragraph, a definition list
// or a section title with an underline.
func (d *document) text(s span, i int, matchTitles bool) int {
	if s.blank(i + 1) {
		return d.paragraph(s, i, i+1)
	}
	if s.indentedAt(i + 1) {
		return d.definitionList(s, i)
	}

	title, underline := s.lines[i], s.lines[i+1]
	if isSectionLine(underline) && !(runewidth.StringWidth(title) > len(underline) && len(underline) < 4) {
		if runewidth.StringWidth(title) > len(underline) {
			d.report(s.abs(i+1), LevelWarning, "Title underline too short.")
		}
		if !matchTitles {
			d.report(s.abs(i+1), LevelSevere, "Unexpected section title.")
			return i + 2
		}
		d.section(title, underline[:1], s.abs(i))
		return i + 2
	}

	end, badIndent := s.textBlock(i+1, true)
	if badIndent {
		d.report(s.abs(end), LevelError, "Unexpected indentation.")
	}
	return d.paragraph(s, i, end)
}

// paragraph inline-parses lines [start, end) and consumes a literal block
// when the paragraph ends with "::".
func (d *document) paragraph(s span, start, end int) int {
	text := strings.Join(s.lines[start:end], "\n")
	literal := strings.HasSuffix(text, "::")
	switch {
	case text == "::":
		text = ""
	case literal && len(text) > 2 && (text[len(text)-3] == ' ' || text[len(text)-3] == '\n'):
		text = strings.TrimRight(text[:len(text)-3], " \n")
	case literal:
		text = text[:len(text)-1]
	}
	if text != "" {
		d.inline(text, s.abs(start))
	}
	d.element()
	if !literal {
		return end
	}
	return d.literalBlock(s, end)
}

func (d *document) literalBlock(s span, i int) int {
	if i >= s.len() {
		d.report(s.abs(s.len()-1), LevelWarning, "Literal block expected; none found.")
		return i
	}

	block, end, blankFinish := s.indented(i)
	if slices.ContainsFunc(block.lines, func(l string) bool { return l != "" }) {
		if !blankFinish {
			d.unindentWarning(s, end, "Literal block")
		}
		return end
	}

	j := i
	for j < s.len() && s.blank(j) {
		j++
	}
	if j >= s.len() {
		d.report(s.abs(s.len()-1), LevelWarning, "Literal block expected; none found.")
		return j
	}
	quote := s.lines[j][0]
	if !isNonAlnum7Bit(quote) {
		d.report(s.abs(j), LevelWarning, "Literal block expected; none found.")
		return j
	}
	for j < s.len() && !s.blank(j) {
		if s.lines[j][0] != quote {
			d.report(s.abs(j), LevelWarning, "Inconsistent literal block quoting.")
			return j
		}
		j++
	}
	return j
}

func (d *document) definitionList(s span, i int) int {
	for {
		d.inline(s.lines[i], s.abs(i))
		block, end, blankFinish := s.indented(i + 1)
		d.parseBody(block, false)
		i = end

		if i+1 < s.len() && !s.blank(i) && !s.indentedAt(i) && s.indentedAt(i+1) {
			continue
		}
		if !blankFinish {
			d.unindentWarning(s, i, "Definition list")
		}
		d.element()
		return i
	}
}

func (d *document) bulletList(s span, i int) int {
	bullet := []rune(s.lines[i])[0]
	for {
		loc := bulletRe.FindStringIndex(s.lines[i])
		block, end, blankFinish := d.listItem(s, i, loc[1])
		d.parseBody(block, false)
		i = end

		if i < s.len() && bulletRe.MatchString(s.lines[i]) && []rune(s.lines[i])[0] == bullet {
			continue
		}
		if !blankFinish {
			d.unindentWarning(s, i, "Bullet list")
		}
		d.element()
		return i
	}
}

func (d *document) listItem(s span, i, indent int) (span, int, bool) {
	if len(s.lines[i]) > indent {
		return s.knownIndented(i, indent)
	}
	return s.firstKnownIndented(i, indent)
}

func (d *document) fieldList(s span, i int) int {
	for {
		markerEnd := fieldMarkerEnd(s.lines[i])
		name := strings.TrimRight(s.lines[i][:markerEnd], " ")
		d.inline(name[1:len(name)-1], s.abs(i))

		block, end, blankFinish := s.firstKnownIndented(i, markerEnd)
		d.parseBody(block, false)
		i = end

		if i < s.len() && fieldMarkerEnd(s.lines[i]) > 0 {
			continue
		}
		if !blankFinish {
			d.unindentWarning(s, i, "Field list")
		}
		d.element()
		return i
	}
}

// fieldMarkerEnd returns the offset after ":name: " at the start of line,
// or 0 when line does not start with a field marker.
func fieldMarkerEnd(line string) int {
	if len(line) < 3 || line[0] != ':' || line[1] == ':' || line[1] == ' ' {
		return 0
	}
	i := 1
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
			continue
		case ':':
			if i+1 == len(line) || line[i+1] == ' ' {
				if line[i-1] == ' ' {
					return 0
				}
				end := i + 1
				for end < len(line) && line[end] == ' ' {
					end++
				}
				return end
			}
			if line[i+1] == '`' {
				return 0
			}
		}
		i++
	}
	return 0
}

func (d *document) optionList(s span, i int) int {
	for {
		loc := optionRe.FindStringIndex(s.lines[i])
		block, end, blankFinish := s.firstKnownIndented(i, loc[1])
		d.parseBody(block, false)
		i = end

		if i < s.len() && optionRe.MatchString(s.lines[i]) {
			continue
		}
		if !blankFinish {
			d.unindentWarning(s, i, "Option list")
		}
		d.element()
		return i
	}
}

func (d *document) section(title, style string, line int) {
	d.inline(title, line)
	d.targets[normalizeName(title)] = true

	level := slices.Index(d.titleStyles, style) + 1
	switch {
	case level == 0 && len(d.titleStyles) == d.sectionLevel:
		d.titleStyles = append(d.titleStyles, style)
		d.sectionLevel = len(d.titleStyles)
	case level == 0, level > d.sectionLevel+1:
		d.report(line, LevelSevere, "Title level inconsistent:")
		return
	default:
		d.sectionLevel = level
	}
	d.sectionBody = 0
	d.transition = -1
}

func (d *document) addTransition(line int) {
	switch {
	case d.sectionBody == 0:
		d.late = append(d.late, Problem{Line: line, Level: LevelError, Message: "Document or section may not begin with a transition."})
	case d.transition >= 0:
		d.late = append(d.late, Problem{Line: line, Level: LevelError, Message: "At least one body element must separate transitions; adjacent transitions are not allowed."})
	}
	d.transition = line
	d.sectionBody++
}

// element records a body element other than a transition.
func (d *document) element() {
	d.sectionBody++
	d.transition = -1
}
