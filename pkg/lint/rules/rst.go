package rules

import (
	"fmt"

	"github.com/yaklabco/napcheck/pkg/lint"
)

// RSTSyntaxRule reports markup problems in the normalized docstring.
type RSTSyntaxRule struct {
	lint.BaseRule
}

// NewRSTSyntaxRule creates a new rst-syntax rule.
func NewRSTSyntaxRule() *RSTSyntaxRule {
	return &RSTSyntaxRule{
		BaseRule: lint.NewBaseRule(
			"NAP001",
			"rst-syntax",
			"The normalized docstring must be valid reStructuredText",
			[]string{"rst", "docstring"},
		),
	}
}

// Apply validates the markup and reports each problem at the source line
// it came from.
func (r *RSTSyntaxRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Validator == nil || ctx.Decl == nil || ctx.Markup == "" {
		return nil, nil
	}

	var diags []lint.Diagnostic
	for local, message := range ctx.Validator.Validate(ctx.Markup) {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		diags = append(diags, lint.DocstringFinding(r.ID(), ctx.Decl, local, message))
	}
	return diags, nil
}
