package rules

import (
	"fmt"

	"github.com/yaklabco/napcheck/pkg/lint"
)

// Parameter findings are reported on the line after the declaration,
// where the docstring starts, whichever directive caused them.

// ParamNotInSignatureRule reports documented parameters that the function
// does not accept.
type ParamNotInSignatureRule struct {
	lint.BaseRule
}

// NewParamNotInSignatureRule creates a new param-not-in-signature rule.
func NewParamNotInSignatureRule() *ParamNotInSignatureRule {
	return &ParamNotInSignatureRule{
		BaseRule: lint.NewBaseRule(
			"NAP002",
			"param-not-in-signature",
			"Documented parameters must exist in the function signature",
			[]string{"params", "docstring"},
		),
	}
}

// Apply reports one diagnostic per extra directive, in document order.
func (r *ParamNotInSignatureRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	params := ctx.Params()
	if params == nil {
		return nil, nil
	}

	diags := make([]lint.Diagnostic, 0, len(params.Extra))
	for _, name := range params.Extra {
		msg := fmt.Sprintf("Arg '%s' not in function signature.", name)
		diags = append(diags, lint.DocstringFinding(r.ID(), ctx.Decl, 0, msg))
	}
	return diags, nil
}

// ParamNotDocumentedRule reports signature parameters that the docstring
// does not describe.
type ParamNotDocumentedRule struct {
	lint.BaseRule
}

// NewParamNotDocumentedRule creates a new param-not-documented rule.
func NewParamNotDocumentedRule() *ParamNotDocumentedRule {
	return &ParamNotDocumentedRule{
		BaseRule: lint.NewBaseRule(
			"NAP003",
			"param-not-documented",
			"Every parameter of the function must be documented",
			[]string{"params", "docstring"},
		),
	}
}

// Apply reports one diagnostic per undocumented parameter, in signature order.
func (r *ParamNotDocumentedRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	params := ctx.Params()
	if params == nil {
		return nil, nil
	}

	diags := make([]lint.Diagnostic, 0, len(params.Missing))
	for _, name := range params.Missing {
		msg := fmt.Sprintf("Arg %s not described in docstring.", name)
		diags = append(diags, lint.DocstringFinding(r.ID(), ctx.Decl, 0, msg))
	}
	return diags, nil
}

// ParamOrderRule reports docstrings that document exactly the signature's
// parameters but in another order.
type ParamOrderRule struct {
	lint.BaseRule
}

// NewParamOrderRule creates a new param-order rule.
func NewParamOrderRule() *ParamOrderRule {
	return &ParamOrderRule{
		BaseRule: lint.NewBaseRule(
			"NAP004",
			"param-order",
			"Documented parameters must follow the signature order",
			[]string{"params", "docstring"},
		),
	}
}

// Apply reports at most one diagnostic per function.
func (r *ParamOrderRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	params := ctx.Params()
	if params == nil || !params.OrderMismatch {
		return nil, nil
	}

	return []lint.Diagnostic{
		lint.DocstringFinding(r.ID(), ctx.Decl, 0, "Parameter order does not match docstring-defined order."),
	}, nil
}
