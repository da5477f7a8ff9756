// Package lint checks Python docstrings: it holds the rules interface, the
// registry the rules live in, and the engine that applies them.
package lint

import "github.com/yaklabco/napcheck/pkg/config"

// Diagnostic is one finding. Line is 1-based and absolute in the file;
// Column is the 0-based column of the declaration it belongs to, the
// position flake8 prints for plugin findings.
type Diagnostic struct {
	RuleID   string // NAP001 to NAP004
	RuleName string // such as "param-not-documented"
	Message  string // without the code
	Severity config.Severity

	FilePath string
	Line     int
	Column   int

	// Declaration and DeclarationLine name the function or class whose
	// docstring was checked. The line tells same-named methods apart.
	Declaration     string
	DeclarationLine int

	// Origin is the producing tool and version, as in "napcheck/1.2.0".
	Origin string
}

// Text is the message behind its code, the form flake8 prints:
//
//	NAP004 Parameter order does not match docstring-defined order.
func (d *Diagnostic) Text() string {
	return d.RuleID + " " + d.Message
}

// Rule checks the docstring of one declaration at a time.
type Rule interface {
	ID() string
	Name() string
	Description() string

	DefaultEnabled() bool
	DefaultSeverity() config.Severity

	// Tags place the rule in a Family and in rule listings.
	Tags() []string

	// Apply returns the rule's findings for ctx.Decl in a stable order. An
	// error means the rule itself failed, or ctx was cancelled; findings
	// are never errors.
	Apply(ctx *RuleContext) ([]Diagnostic, error)
}
