package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/napcheck/internal/ui/pretty"
	"github.com/yaklabco/napcheck/pkg/lint"
	"github.com/yaklabco/napcheck/pkg/runner"
)

// TextReporter writes findings for people: one line per finding with the
// source echoed under it, under a header per file when grouping.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(ctx context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to check."))
		}
		return 0, nil
	}

	var total int
	for _, file := range result.Files {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		total += r.writeFile(file)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.RunSummary(result.Stats))
	}
	return total, nil
}

// writeFile writes one file's findings and returns how many it wrote.
// Files with nothing to report produce no output, header included.
func (r *TextReporter) writeFile(file runner.FileOutcome) int {
	path := r.opts.displayPath(file.Path)
	if file.Error != nil {
		fmt.Fprintf(r.bw, "%s: %s\n", r.styles.FilePath.Render(path), r.styles.Error.Render("error: "+file.Error.Error()))
		return 0
	}
	if file.Result == nil || file.Result.FileResult == nil {
		return 0
	}

	fr := file.Result.FileResult
	if len(fr.Diagnostics) == 0 && len(fr.Errors) == 0 {
		return 0
	}

	if r.opts.GroupByFile {
		fmt.Fprintln(r.bw, r.styles.FileHeader(path, len(fr.Diagnostics)))
	}
	for i := range fr.Diagnostics {
		r.writeDiagnostic(fr.Diagnostics[i], fr)
	}
	for _, declErr := range fr.Errors {
		fmt.Fprintf(r.bw, "  %s  %s  %s\n",
			r.styles.Location.Render(fmt.Sprintf("%s:%d", path, declErr.Line)),
			r.styles.Dim.Render("skipped"),
			r.styles.Message.Render(fmt.Sprintf("could not analyse %s: %v", declErr.Declaration, declErr.Err)),
		)
	}
	if r.opts.GroupByFile {
		fmt.Fprintln(r.bw)
	}
	return len(fr.Diagnostics)
}

// writeDiagnostic takes d by value to rewrite its path for display.
func (r *TextReporter) writeDiagnostic(d lint.Diagnostic, fr *lint.FileResult) {
	d.FilePath = r.opts.displayPath(d.FilePath)

	view := pretty.DiagnosticView{RuleFormat: r.opts.RuleFormat}
	if r.opts.ShowContext && fr.File != nil {
		view.Source = fr.File.Line(d.Line)
	}
	fmt.Fprint(r.bw, r.styles.Diagnostic(&d, view))
}
