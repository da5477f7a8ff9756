package pyast

import (
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/runenames"
)

// decodeDocstringLiteral decodes the source text of one Python string literal.
// It reports false for literals that do not produce a str constant
// (bytes, f-strings and t-strings).
func decodeDocstringLiteral(literal string) (string, bool) {
	prefixLen := strings.IndexAny(literal, `"'`)
	if prefixLen < 0 {
		return "", false
	}

	raw := false
	for _, c := range strings.ToLower(literal[:prefixLen]) {
		switch c {
		case 'r':
			raw = true
		case 'u':
		case 'b', 'f', 't':
			return "", false
		default:
			return "", false
		}
	}

	body := literal[prefixLen:]
	quote := body[:1]
	if strings.HasPrefix(body, strings.Repeat(quote, 3)) && len(body) >= 6 {
		quote = strings.Repeat(quote, 3)
	}
	if len(body) < 2*len(quote) || !strings.HasSuffix(body, quote) {
		return "", false
	}
	content := body[len(quote) : len(body)-len(quote)]

	// The tokenizer sees universal newlines.
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	if raw {
		return content, true
	}
	return unescape(content), true
}

// unescape applies Python's str escape sequences. Unrecognized escapes are
// kept verbatim, backslash included.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}

		next := s[i+1]
		switch next {
		case '\n':
			i++
		case '\\', '\'', '"':
			b.WriteByte(next)
			i++
		case 'a':
			b.WriteByte('\a')
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'v':
			b.WriteByte('\v')
			i++
		case '0', '1', '2', '3', '4', '5', '6', '7':
			end := i + 1
			for end < len(s) && end < i+4 && s[end] >= '0' && s[end] <= '7' {
				end++
			}
			v, _ := strconv.ParseUint(s[i+1:end], 8, 32)
			b.WriteRune(rune(v))
			i = end - 1
		case 'x':
			i = writeHexEscape(&b, s, i, 2)
		case 'u':
			i = writeHexEscape(&b, s, i, 4)
		case 'U':
			i = writeHexEscape(&b, s, i, 8)
		case 'N':
			i = writeNamedEscape(&b, s, i)
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// writeHexEscape writes the rune for \xhh, \uhhhh or \Uhhhhhhhh starting at
// s[i] == '\\' and returns the index of the last consumed byte.
func writeHexEscape(b *strings.Builder, s string, i, digits int) int {
	start := i + 2
	end := start + digits
	if end > len(s) {
		b.WriteByte(s[i])
		return i
	}
	v, err := strconv.ParseUint(s[start:end], 16, 32)
	if err != nil || v > unicode.MaxRune {
		b.WriteByte(s[i])
		return i
	}
	b.WriteRune(rune(v))
	return end - 1
}

func writeNamedEscape(b *strings.Builder, s string, i int) int {
	if i+2 >= len(s) || s[i+2] != '{' {
		b.WriteByte(s[i])
		return i
	}
	closeIdx := strings.IndexByte(s[i+3:], '}')
	if closeIdx < 0 {
		b.WriteByte(s[i])
		return i
	}
	name := s[i+3 : i+3+closeIdx]
	r, ok := lookupRuneName(name)
	if !ok {
		b.WriteByte(s[i])
		return i
	}
	b.WriteRune(r)
	return i + 3 + closeIdx
}

//nolint:gochecknoglobals // built once on first \N{...} escape
var runesByName = sync.OnceValue(func() map[string]rune {
	names := make(map[string]rune, 1<<15)
	for r := rune(0); r <= unicode.MaxRune; r++ {
		if !utf8.ValidRune(r) {
			continue
		}
		if name := runenames.Name(r); name != "" && !strings.HasPrefix(name, "<") {
			names[name] = r
		}
	}
	return names
})

func lookupRuneName(name string) (rune, bool) {
	r, ok := runesByName()[strings.ToUpper(name)]
	return r, ok
}
