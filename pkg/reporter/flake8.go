package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/napcheck/pkg/runner"
)

// Flake8Reporter writes one line per diagnostic in the format flake8
// prints for plugins: path:line:col: CODE message. Columns are 1-based.
// Editors and CI annotators that understand flake8 parse it unchanged.
type Flake8Reporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewFlake8Reporter creates a new flake8-compatible reporter.
func NewFlake8Reporter(opts Options) *Flake8Reporter {
	return &Flake8Reporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter. Files that could not be read or parsed are
// written to ErrorWriter so the diagnostic stream stays machine-readable.
func (r *Flake8Reporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		return 0, nil
	}

	var total int
	for _, file := range result.Files {
		if file.Error != nil {
			if r.opts.ErrorWriter != nil {
				fmt.Fprintf(r.opts.ErrorWriter, "%s: %v\n", r.opts.displayPath(file.Path), file.Error)
			}
			continue
		}
		if file.Result == nil || file.Result.FileResult == nil {
			continue
		}

		for _, diag := range file.Result.Diagnostics {
			fmt.Fprintf(r.bw, "%s:%d:%d: %s %s\n",
				r.opts.displayPath(diag.FilePath),
				diag.Line,
				diag.Column+1,
				diag.RuleID,
				diag.Message,
			)
			total++
		}
	}

	return total, nil
}
