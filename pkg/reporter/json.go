package reporter

import (
	"bufio"
	"cmp"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/napcheck/pkg/lint"
	"github.com/yaklabco/napcheck/pkg/runner"
)

// jsonVersion is bumped when fields are removed or change meaning.
const jsonVersion = "1.1.0"

// JSONOutput is the document --format json writes.
type JSONOutput struct {
	Version string           `json:"version"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult is one discovered file. Error is set instead of
// Diagnostics when the file could not be read or parsed.
type JSONFileResult struct {
	Path         string                 `json:"path"`
	Declarations int                    `json:"declarations"`
	Diagnostics  []JSONDiagnostic       `json:"diagnostics"`
	Skipped      []JSONDeclarationError `json:"skipped,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

// JSONDiagnostic is one finding. Line is 1-based and Column the 0-based
// offset flake8 plugins report.
type JSONDiagnostic struct {
	RuleID          string `json:"ruleId"`
	RuleName        string `json:"ruleName"`
	Family          string `json:"family"`
	Severity        string `json:"severity"`
	Message         string `json:"message"`
	Line            int    `json:"line"`
	Column          int    `json:"column"`
	Declaration     string `json:"declaration,omitempty"`
	DeclarationLine int    `json:"declarationLine,omitempty"`
}

// JSONDeclarationError is a declaration left unchecked because its
// analysis failed.
type JSONDeclarationError struct {
	Declaration string `json:"declaration"`
	Line        int    `json:"line"`
	Error       string `json:"error"`
}

// JSONSummary repeats the run's counts.
type JSONSummary struct {
	FilesChecked      int          `json:"filesChecked"`
	FilesWithIssues   int          `json:"filesWithIssues"`
	FilesErrored      int          `json:"filesErrored"`
	Declarations      int          `json:"declarations"`
	DeclarationErrors int          `json:"declarationErrors"`
	TotalIssues       int          `json:"totalIssues"`
	BySeverity        JSONSeverity `json:"bySeverity"`
}

// JSONSeverity counts findings per severity.
type JSONSeverity struct {
	Error   int `json:"error"`
	Warning int `json:"warning"`
	Info    int `json:"info"`
}

// JSONReporter writes a JSONOutput document.
type JSONReporter struct {
	opts     Options
	registry *lint.Registry
	bw       *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts:     opts,
		registry: cmp.Or(opts.Registry, lint.DefaultRegistry),
		bw:       bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	doc := JSONOutput{Version: jsonVersion, Files: []JSONFileResult{}}
	if result != nil {
		for _, file := range result.Files {
			doc.Files = append(doc.Files, r.file(file))
		}
		doc.Summary = summarizeStats(result.Stats)
	}

	enc := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}
	return doc.Summary.TotalIssues, nil
}

func (r *JSONReporter) file(file runner.FileOutcome) JSONFileResult {
	out := JSONFileResult{Path: r.opts.displayPath(file.Path), Diagnostics: []JSONDiagnostic{}}
	if file.Error != nil {
		out.Error = file.Error.Error()
		return out
	}
	if file.Result == nil || file.Result.FileResult == nil {
		return out
	}

	fr := file.Result.FileResult
	out.Declarations = fr.Declarations
	for _, d := range fr.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, JSONDiagnostic{
			RuleID:          d.RuleID,
			RuleName:        d.RuleName,
			Family:          string(r.registry.FamilyOfCode(d.RuleID)),
			Severity:        string(cmp.Or(d.Severity, "warning")),
			Message:         d.Message,
			Line:            d.Line,
			Column:          d.Column,
			Declaration:     d.Declaration,
			DeclarationLine: d.DeclarationLine,
		})
	}
	for _, declErr := range fr.Errors {
		out.Skipped = append(out.Skipped, JSONDeclarationError{
			Declaration: declErr.Declaration,
			Line:        declErr.Line,
			Error:       declErr.Err.Error(),
		})
	}
	return out
}

func summarizeStats(s runner.Stats) JSONSummary {
	return JSONSummary{
		FilesChecked:      s.FilesProcessed + s.FilesErrored,
		FilesWithIssues:   s.FilesWithIssues,
		FilesErrored:      s.FilesErrored,
		Declarations:      s.Declarations,
		DeclarationErrors: s.DeclarationErrors,
		TotalIssues:       s.Diagnostics.Total(),
		BySeverity: JSONSeverity{
			Error:   s.Diagnostics.Errors,
			Warning: s.Diagnostics.Warnings,
			Info:    s.Diagnostics.Infos,
		},
	}
}
