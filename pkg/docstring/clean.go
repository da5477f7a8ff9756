// Package docstring cleans raw Python docstrings and normalizes
// documentation conventions into reStructuredText.
package docstring

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TabWidth is the tab stop used when expanding tabs in docstrings.
const TabWidth = 8

// Clean removes docstring indentation the way Python's inspect.cleandoc does.
//
// Tabs are expanded to TabWidth stops, the first line loses its leading
// whitespace, the common indentation of the remaining non-blank lines is
// removed, and leading and trailing empty lines are dropped.
func Clean(doc string) string {
	lines := strings.Split(ExpandTabs(doc, TabWidth), "\n")

	margin := -1
	for _, line := range lines[1:] {
		content := strings.TrimLeftFunc(line, unicode.IsSpace)
		if content == "" {
			continue
		}
		indent := utf8.RuneCountInString(line) - utf8.RuneCountInString(content)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeftFunc(lines[0], unicode.IsSpace)
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			lines[i] = dropRunes(lines[i], margin)
		}
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}

	return strings.Join(lines, "\n")
}

// ExpandTabs replaces tabs with spaces up to the next multiple of width.
// The column resets after every line break.
func ExpandTabs(s string, width int) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			if width > 0 {
				n := width - col%width
				b.WriteString(strings.Repeat(" ", n))
				col += n
			}
		case '\n', '\r':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

func dropRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}
	return ""
}

// SplitLines splits text at line boundaries the way Python's
// str.splitlines does. A trailing line break does not add an empty line.
func SplitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, s[start:i])
		i += size
		if r == '\r' && i < len(s) && s[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	default:
		return false
	}
}
