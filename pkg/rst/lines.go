package rst

import (
	"strings"
	"unicode"

	"github.com/yaklabco/napcheck/pkg/docstring"
)

// span is a run of lines whose first line sits at absolute index base.
// Lines inside a span may have been dedented relative to the source.
type span struct {
	lines []string
	base  int
}

// splitSource prepares text the way docutils' string2lines does.
func splitSource(text string) []string {
	lines := docstring.SplitLines(text)
	for i, line := range lines {
		line = docstring.ExpandTabs(line, docstring.TabWidth)
		line = strings.Map(func(r rune) rune {
			if r == '\v' || r == '\f' {
				return ' '
			}
			return r
		}, line)
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return lines
}

func (s span) len() int { return len(s.lines) }

func (s span) abs(i int) int { return s.base + i }

func (s span) blank(i int) bool { return i >= len(s.lines) || s.lines[i] == "" }

func (s span) indentedAt(i int) bool {
	return i < len(s.lines) && strings.HasPrefix(s.lines[i], " ")
}

// indented returns the block of blank or indented lines starting at i with
// the common indentation removed. blankFinish is true when the block ends
// at the end of input or with a blank line.
func (s span) indented(i int) (block span, end int, blankFinish bool) {
	end = i
	for end < len(s.lines) && (s.lines[end] == "" || s.lines[end][0] == ' ') {
		end++
	}
	blankFinish = end == len(s.lines) || (end > i && s.lines[end-1] == "")
	lines := s.lines[i:end]
	return span{lines: trimLeft(lines, minIndent(lines)), base: s.abs(i)}, end, blankFinish
}

// firstKnownIndented takes line i from column indent plus the indented
// lines after it, dedented by their own minimum indentation.
func (s span) firstKnownIndented(i, indent int) (block span, end int, blankFinish bool) {
	end = i + 1
	for end < len(s.lines) && (s.lines[end] == "" || s.lines[end][0] == ' ') {
		end++
	}
	blankFinish = end == len(s.lines) || s.lines[end-1] == ""

	rest := s.lines[i+1 : end]
	lines := make([]string, 0, end-i)
	lines = append(lines, sliceFrom(s.lines[i], indent))
	lines = append(lines, trimLeft(rest, minIndent(rest))...)
	return span{lines: lines, base: s.abs(i)}, end, blankFinish
}

// knownIndented is firstKnownIndented with a fixed indentation for every
// following line; a line indented less ends the block.
func (s span) knownIndented(i, indent int) (block span, end int, blankFinish bool) {
	end = i + 1
	for end < len(s.lines) {
		line := s.lines[end]
		if line != "" && strings.TrimSpace(sliceTo(line, indent)) != "" {
			break
		}
		end++
	}
	blankFinish = end == len(s.lines) || s.lines[end-1] == ""

	lines := make([]string, 0, end-i)
	lines = append(lines, sliceFrom(s.lines[i], indent))
	lines = append(lines, trimLeft(s.lines[i+1:end], indent)...)
	return span{lines: lines, base: s.abs(i)}, end, blankFinish
}

// textBlock returns the end of the non-blank run starting at i. With
// flushLeft, an indented line stops the run and is reported as bad.
func (s span) textBlock(i int, flushLeft bool) (end int, badIndent bool) {
	end = i
	for end < len(s.lines) && s.lines[end] != "" {
		if flushLeft && s.lines[end][0] == ' ' {
			return end, true
		}
		end++
	}
	return end, false
}

func minIndent(lines []string) int {
	indent := -1
	for _, line := range lines {
		if line == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " "))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent < 0 {
		return 0
	}
	return indent
}

func trimLeft(lines []string, n int) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = sliceFrom(line, n)
	}
	return out
}

func sliceFrom(line string, n int) string {
	if n >= len(line) {
		return ""
	}
	return line[n:]
}

func sliceTo(line string, n int) string {
	if n >= len(line) {
		return line
	}
	return line[:n]
}

// isSectionLine matches a run of one repeated 7-bit punctuation character.
func isSectionLine(line string) bool {
	if line == "" || !isNonAlnum7Bit(line[0]) {
		return false
	}
	return strings.Trim(line, line[:1]) == ""
}

func isNonAlnum7Bit(c byte) bool {
	return (c >= '!' && c <= '/') || (c >= ':' && c <= '@') || (c >= '[' && c <= '`') || (c >= '{' && c <= '~')
}
