// Package pretty renders napcheck's terminal output with lipgloss.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// DefaultWidth is used when the terminal width cannot be determined.
const DefaultWidth = 100

// Styles holds one lipgloss style per element of the output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Parts of a finding.
	FilePath    lipgloss.Style
	Location    lipgloss.Style
	RuleID      lipgloss.Style
	Message     lipgloss.Style
	Declaration lipgloss.Style
	SourceLine  lipgloss.Style
	Caret       lipgloss.Style

	// Rule documentation.
	Heading lipgloss.Style
	Code    lipgloss.Style
	Link    lipgloss.Style

	Success lipgloss.Style
	Failure lipgloss.Style

	TableHeader    lipgloss.Style
	TableErrorRow  lipgloss.Style
	TableWarnRow   lipgloss.Style
	TableSeparator lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// palette maps the roles of the output to ANSI colors. The zero palette
// styles nothing.
type palette struct {
	bad, caution, note, good lipgloss.TerminalColor
	accent, title, faint     lipgloss.TerminalColor
	text                     lipgloss.TerminalColor
	emphasis                 bool
}

var ansiPalette = palette{
	bad:      lipgloss.Color("9"),
	caution:  lipgloss.Color("11"),
	note:     lipgloss.Color("12"),
	good:     lipgloss.Color("10"),
	accent:   lipgloss.Color("14"),
	title:    lipgloss.Color("13"),
	faint:    lipgloss.Color("8"),
	text:     lipgloss.Color("7"),
	emphasis: true,
}

// NewStyles returns colored styles, or styles that leave text untouched
// when colorEnabled is false.
func NewStyles(colorEnabled bool) *Styles {
	if colorEnabled {
		return ansiPalette.styles()
	}
	return palette{}.styles()
}

func (p palette) fg(c lipgloss.TerminalColor) lipgloss.Style {
	if c == nil {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(c)
}

func (p palette) strong(c lipgloss.TerminalColor) lipgloss.Style {
	return p.fg(c).Bold(p.emphasis)
}

func (p palette) styles() *Styles {
	return &Styles{
		Error:   p.strong(p.bad),
		Warning: p.strong(p.caution),
		Info:    p.strong(p.note),

		FilePath:    p.strong(nil),
		Location:    p.fg(p.faint),
		RuleID:      p.fg(p.faint),
		Message:     lipgloss.NewStyle(),
		Declaration: p.fg(p.accent),
		SourceLine:  p.fg(p.text),
		Caret:       p.fg(p.bad),

		Heading: p.strong(p.title),
		Code:    p.fg(p.accent),
		Link:    p.fg(p.note).Underline(p.emphasis),

		Success: p.strong(p.good),
		Failure: p.strong(p.bad),

		TableHeader:    p.strong(p.text),
		TableErrorRow:  p.fg(p.bad),
		TableWarnRow:   p.fg(p.caution),
		TableSeparator: p.fg(p.faint),

		Dim:  p.fg(p.faint),
		Bold: p.strong(nil),
	}
}

// IsColorEnabled reports whether output to writer should be colored.
// mode is "always", "never" or "auto"; anything else means "auto", which
// colors terminals unless NO_COLOR is set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// TerminalWidth returns the column count of writer when it is a terminal,
// or DefaultWidth otherwise.
func TerminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return DefaultWidth
}
