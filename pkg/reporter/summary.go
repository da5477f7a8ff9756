package reporter

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/yaklabco/napcheck/internal/ui/pretty"
	"github.com/yaklabco/napcheck/pkg/analysis"
	"github.com/yaklabco/napcheck/pkg/config"
)

// maxDocstringRows caps the docstring table to the busiest entries.
const maxDocstringRows = 10

// cellPadding separates columns; the tables draw no column borders.
const cellPadding = 2

// SummaryRenderer prints aggregate tables instead of individual findings:
// findings per rule family, per rule, per file and for the docstrings
// with most findings.
type SummaryRenderer struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryRenderer creates a new summary renderer.
func NewSummaryRenderer(opts Options) *SummaryRenderer {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryRenderer{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Render implements Renderer.
func (r *SummaryRenderer) Render(_ context.Context, report *analysis.Report) error {
	if !report.Totals.HasIssues() {
		fmt.Fprintln(r.out, r.styles.Success.Render("No issues found"))
		r.renderFailures(report.Totals)
		return nil
	}

	sections := []func(*analysis.Report) string{r.familySection, r.ruleSection, r.fileSection, r.docstringSection}
	if r.opts.SummaryOrder == config.SummaryOrderFiles {
		sections[1], sections[2] = sections[2], sections[1]
	}
	for _, section := range sections {
		if text := section(report); text != "" {
			fmt.Fprintln(r.out, text)
			fmt.Fprintln(r.out)
		}
	}

	r.renderTotals(report.Totals)
	return nil
}

// grid is one summary table. Columns listed in numeric are right-aligned.
type grid struct {
	title   string
	headers []string
	numeric map[int]bool
	rows    [][]string
	// tone colors a row's first cell by the row's worst severity.
	tone []analysis.Counts
}

func (r *SummaryRenderer) draw(g grid) string {
	if len(g.rows) == 0 {
		return ""
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.styles.TableSeparator).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Headers(g.headers...).
		Rows(g.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle()
			if row == table.HeaderRow {
				style = r.styles.TableHeader
			} else if col == 0 && row < len(g.tone) {
				style = r.toneStyle(g.tone[row])
			}
			if g.numeric[col] {
				return style.Align(lipgloss.Right).PaddingLeft(cellPadding)
			}
			return style.PaddingRight(cellPadding)
		})

	return r.styles.Bold.Render(g.title) + "\n" + t.Render()
}

func (r *SummaryRenderer) toneStyle(c analysis.Counts) lipgloss.Style {
	switch {
	case c.Errors > 0:
		return r.styles.TableErrorRow
	case c.Warnings > 0:
		return r.styles.TableWarnRow
	default:
		return lipgloss.NewStyle()
	}
}

func severityCells(c analysis.Counts) []string {
	return []string{strconv.Itoa(c.Issues), strconv.Itoa(c.Errors), strconv.Itoa(c.Warnings), strconv.Itoa(c.Infos)}
}

var severityHeaders = []string{"Count", "Errors", "Warnings", "Infos"}

func numericFrom(first, count int) map[int]bool {
	m := make(map[int]bool, count)
	for i := first; i < first+count; i++ {
		m[i] = true
	}
	return m
}

func (r *SummaryRenderer) familySection(report *analysis.Report) string {
	g := grid{
		title:   "Check Families",
		headers: append([]string{"Family", "Rules", "Docstrings"}, severityHeaders...),
		numeric: numericFrom(2, 5),
	}
	for _, fam := range report.ByFamily {
		g.rows = append(g.rows, append(
			[]string{string(fam.Family), strings.Join(fam.Rules, " "), strconv.Itoa(fam.Declarations)},
			severityCells(fam.Counts)...))
		g.tone = append(g.tone, fam.Counts)
	}
	return r.draw(g)
}

func (r *SummaryRenderer) ruleSection(report *analysis.Report) string {
	g := grid{
		title:   "Rules Summary",
		headers: append([]string{"Rule", "Name", "Family", "Files"}, severityHeaders...),
		numeric: numericFrom(3, 5),
	}
	for _, rule := range report.ByRule {
		g.rows = append(g.rows, append(
			[]string{rule.RuleID, rule.RuleName, string(rule.Family), strconv.Itoa(len(rule.Files))},
			severityCells(rule.Counts)...))
		g.tone = append(g.tone, rule.Counts)
	}
	return r.draw(g)
}

func (r *SummaryRenderer) fileSection(report *analysis.Report) string {
	g := grid{
		title:   "Files Summary",
		headers: append([]string{"File", "Decls"}, severityHeaders...),
		numeric: numericFrom(1, 5),
	}
	for _, file := range report.ByFile {
		g.rows = append(g.rows, append(
			[]string{r.opts.displayPath(file.Path), strconv.Itoa(file.Declarations)},
			severityCells(file.Counts)...))
		g.tone = append(g.tone, file.Counts)
	}
	return r.draw(g)
}

// docstringSection lists the docstrings with most findings.
func (r *SummaryRenderer) docstringSection(report *analysis.Report) string {
	decls := report.ByDeclaration
	title := "Docstring Findings"
	if len(decls) > maxDocstringRows {
		title = fmt.Sprintf("Docstring Findings (top %d of %d)", maxDocstringRows, len(decls))
		decls = decls[:maxDocstringRows]
	}

	g := grid{
		title:   title,
		headers: append([]string{"Declaration", "Rules"}, severityHeaders...),
		numeric: numericFrom(2, 4),
	}
	for _, decl := range decls {
		g.rows = append(g.rows, append(
			[]string{decl.Label(), strings.Join(decl.Rules, " ")},
			severityCells(decl.Counts)...))
		g.tone = append(g.tone, decl.Counts)
	}
	return r.draw(g)
}

func (r *SummaryRenderer) renderTotals(totals analysis.Totals) {
	line := fmt.Sprintf("%d %s", totals.Issues, pluralWord(totals.Issues, "issue", "issues"))

	var bySeverity []string
	if totals.Errors > 0 {
		bySeverity = append(bySeverity, r.styles.Error.Render(
			fmt.Sprintf("%d %s", totals.Errors, pluralWord(totals.Errors, "error", "errors"))))
	}
	if totals.Warnings > 0 {
		bySeverity = append(bySeverity, r.styles.Warning.Render(
			fmt.Sprintf("%d %s", totals.Warnings, pluralWord(totals.Warnings, "warning", "warnings"))))
	}
	if totals.Infos > 0 {
		bySeverity = append(bySeverity, fmt.Sprintf("%d info", totals.Infos))
	}
	if len(bySeverity) > 0 {
		line += " (" + strings.Join(bySeverity, ", ") + ")"
	}

	line += fmt.Sprintf(" in %d %s", totals.FilesWithIssues, pluralWord(totals.FilesWithIssues, "file", "files"))
	if totals.Declarations > 0 {
		line += fmt.Sprintf(", %d of %d docstrings", totals.DeclarationsWithIssues, totals.Declarations)
	}

	fmt.Fprintln(r.out, r.styles.Bold.Render("Total: ")+line)
	r.renderFailures(totals)
}

// renderFailures notes files and declarations that were not checked.
func (r *SummaryRenderer) renderFailures(totals analysis.Totals) {
	if totals.FilesErrored > 0 {
		fmt.Fprintln(r.out, r.styles.Failure.Render(
			fmt.Sprintf("%d %s could not be parsed", totals.FilesErrored, pluralWord(totals.FilesErrored, "file", "files"))))
	}
	if totals.DeclarationErrors > 0 {
		fmt.Fprintln(r.out, r.styles.Warning.Render(
			fmt.Sprintf("%d %s could not be analysed", totals.DeclarationErrors,
				pluralWord(totals.DeclarationErrors, "declaration", "declarations"))))
	}
}

func pluralWord(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
