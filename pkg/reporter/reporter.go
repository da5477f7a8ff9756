// Package reporter writes lint results as styled text, flake8 lines,
// JSON, SARIF or summary tables.
package reporter

import (
	"cmp"
	"context"
	"fmt"

	"github.com/yaklabco/napcheck/pkg/analysis"
	"github.com/yaklabco/napcheck/pkg/runner"
)

// Reporter writes one lint result.
type Reporter interface {
	// Report writes result and returns how many diagnostics it contained.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

var _ Reporter = (*analyzingReporter)(nil)

// analyzingReporter feeds a Renderer the grouped views of a result.
type analyzingReporter struct {
	renderer Renderer
	views    analysis.Options
}

// Report implements Reporter.
func (a *analyzingReporter) Report(ctx context.Context, result *runner.Result) (int, error) {
	report := analysis.Analyze(result, a.views)
	if err := a.renderer.Render(ctx, report); err != nil {
		return 0, fmt.Errorf("render: %w", err)
	}
	return report.Totals.Issues, nil
}

// newSummaryReporter groups a result for the summary tables. Only the
// grouped views are computed; the flat diagnostic list is not printed.
func newSummaryReporter(opts Options) *analyzingReporter {
	return &analyzingReporter{
		renderer: NewSummaryRenderer(opts),
		views: analysis.Options{
			Views:      analysis.ViewFiles | analysis.ViewRules | analysis.ViewFamilies | analysis.ViewDeclarations,
			Order:      analysis.OrderMostIssues,
			WorkingDir: opts.WorkingDir,
			Registry:   opts.Registry,
		},
	}
}

// constructors maps each format to the reporter that writes it.
//
//nolint:gochecknoglobals // static dispatch table
var constructors = map[Format]func(Options) Reporter{
	FormatText:    func(o Options) Reporter { return NewTextReporter(o) },
	FormatFlake8:  func(o Options) Reporter { return NewFlake8Reporter(o) },
	FormatJSON:    func(o Options) Reporter { return NewJSONReporter(o) },
	FormatSARIF:   func(o Options) Reporter { return NewSARIFReporter(o) },
	FormatSummary: func(o Options) Reporter { return newSummaryReporter(o) },
}

// New returns the reporter for opts.Format. Unset writers and rule format
// fall back to DefaultOptions; an unset format means text.
func New(opts Options) (Reporter, error) {
	defaults := DefaultOptions()
	opts.Writer = cmp.Or(opts.Writer, defaults.Writer)
	opts.ErrorWriter = cmp.Or(opts.ErrorWriter, defaults.ErrorWriter)
	opts.RuleFormat = cmp.Or(opts.RuleFormat, defaults.RuleFormat)
	opts.Format = cmp.Or(opts.Format, FormatText)

	build, ok := constructors[opts.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", opts.Format)
	}
	return build(opts), nil
}
