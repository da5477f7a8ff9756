package lint

import (
	"context"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/pyast"
)

// RuleContext is one declaration as the rules see it. Every rule applied
// to the declaration gets the same RuleContext, so values computed by one
// rule are reused by the next. It holds a context.Context because it lives
// only as long as the declaration is being checked.
type RuleContext struct {
	Ctx    context.Context
	File   *pyast.File
	Config *config.Config

	Decl   *pyast.Declaration // Docstring is non-empty
	Markup string             // Decl.Docstring as reStructuredText

	// Validator checks Markup; rules that need it do nothing when it is nil.
	Validator Validator

	params *ParamComparison
}

// NewRuleContext creates a RuleContext for decl.
func NewRuleContext(ctx context.Context, file *pyast.File, decl *pyast.Declaration, markup string, cfg *config.Config) *RuleContext {
	return &RuleContext{Ctx: ctx, File: file, Config: cfg, Decl: decl, Markup: markup}
}

func (rc *RuleContext) Cancelled() bool {
	return rc.Ctx.Err() != nil
}

// IgnoreReceiver reports whether a leading self or cls is left out of the
// actual parameters.
func (rc *RuleContext) IgnoreReceiver() bool {
	return rc.Config != nil && rc.Config.IgnoreReceiver
}

// Params compares the documented parameters with the signature. It is
// computed on first use and is nil unless Decl is a function.
func (rc *RuleContext) Params() *ParamComparison {
	if rc.Decl == nil || rc.Decl.Kind != pyast.KindFunction {
		return nil
	}
	if rc.params == nil {
		cmp := CompareParams(
			DirectiveNames(ParseParamDirectives(rc.Markup)),
			ActualParams(rc.Decl, rc.IgnoreReceiver()),
		)
		rc.params = &cmp
	}
	return rc.params
}
