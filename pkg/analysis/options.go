package analysis

import "github.com/yaklabco/napcheck/pkg/lint"

// View selects one grouping of the report. Views combine as a bit set.
type View uint8

const (
	// ViewDiagnostics keeps the flat diagnostic list.
	ViewDiagnostics View = 1 << iota
	// ViewFiles groups findings by file.
	ViewFiles
	// ViewRules groups findings by rule code.
	ViewRules
	// ViewFamilies groups findings into markup and parameter checks.
	ViewFamilies
	// ViewDeclarations groups findings by the function or class whose
	// docstring produced them.
	ViewDeclarations

	// ViewAll enables every view.
	ViewAll = ViewDiagnostics | ViewFiles | ViewRules | ViewFamilies | ViewDeclarations
)

// Has reports whether v includes every view in other.
func (v View) Has(other View) bool {
	return v&other == other
}

// Order decides how grouped views are sorted.
type Order string

const (
	// OrderMostIssues puts the groups with most findings first.
	OrderMostIssues Order = "issues"
	// OrderCode sorts by rule code, path or declaration position.
	OrderCode Order = "code"
	// OrderSeverity puts groups with errors first, then warnings.
	OrderSeverity Order = "severity"
)

// IsValid reports whether o is a known order.
func (o Order) IsValid() bool {
	switch o {
	case OrderMostIssues, OrderCode, OrderSeverity:
		return true
	}
	return false
}

// Options controls which views Analyze computes.
type Options struct {
	Views View
	Order Order

	// WorkingDir makes file paths relative when set.
	WorkingDir string

	// Registry maps rule codes to families. Defaults to lint.DefaultRegistry.
	Registry *lint.Registry
}

// DefaultOptions computes every view, busiest groups first.
func DefaultOptions() Options {
	return Options{Views: ViewAll, Order: OrderMostIssues}
}
