package pretty

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
)

// contextIndent sets source lines and carets apart from the finding.
const contextIndent = "        "

// tabWidth is how far a tab advances in echoed source lines.
const tabWidth = 4

// DiagnosticView selects what Diagnostic prints next to the finding.
type DiagnosticView struct {
	// RuleFormat labels the rule; the zero value prints the code.
	RuleFormat config.RuleFormat
	// Source, when set, is echoed under the finding with a caret at the
	// finding's column.
	Source string
}

// Diagnostic renders one finding as
//
//	path:line:col  severity  message  (rule)  in Declaration
//
// The printed column is 1-based; Diagnostic.Column is 0-based.
func (s *Styles) Diagnostic(d *lint.Diagnostic, view DiagnosticView) string {
	parts := []string{
		fmt.Sprintf("%s:%d:%d", s.FilePath.Render(d.FilePath), d.Line, d.Column+1),
		s.Severity(d.Severity),
		s.Message.Render(d.Message),
		s.RuleID.Render("(" + view.RuleFormat.Label(d.RuleID, d.RuleName) + ")"),
	}
	if d.Declaration != "" {
		parts = append(parts, s.Dim.Render("in ")+s.Declaration.Render(d.Declaration))
	}

	out := "  " + strings.Join(parts, "  ") + "\n"
	if view.Source != "" {
		out += s.SourceContext(view.Source, d.Column)
	}
	return out
}

// Severity renders sev in its color.
func (s *Styles) Severity(sev config.Severity) string {
	switch sev {
	case config.SeverityError:
		return s.Error.Render(string(sev))
	case config.SeverityWarning:
		return s.Warning.Render(string(sev))
	case config.SeverityInfo:
		return s.Info.Render(string(sev))
	}
	return string(sev)
}

// SourceContext echoes line with a caret under the 0-based byte column.
// Wide runes and tabs are measured so the caret lines up; a column past
// the end of the line gets no caret.
func (s *Styles) SourceContext(line string, column int) string {
	out := contextIndent + s.SourceLine.Render(expandTabs(line)) + "\n"
	if column < 0 || column > len(line) {
		return out
	}
	pad := runewidth.StringWidth(expandTabs(line[:column]))
	return out + contextIndent + strings.Repeat(" ", pad) + s.Caret.Render("^") + "\n"
}

// FileHeader heads a file's findings in grouped output.
func (s *Styles) FileHeader(path string, issues int) string {
	header := s.FilePath.Render(path)
	if issues == 0 {
		return header
	}
	return header + s.Dim.Render(fmt.Sprintf(" (%d %s)", issues, plural(issues, "issue", "issues")))
}

func expandTabs(line string) string {
	return strings.ReplaceAll(line, "\t", strings.Repeat(" ", tabWidth))
}
