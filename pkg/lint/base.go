package lint

import "github.com/yaklabco/napcheck/pkg/config"

// BaseRule carries the metadata every rule shares. Rules embed it and
// implement Apply. Built-in rules are enabled at warning severity unless
// they override DefaultEnabled or DefaultSeverity.
type BaseRule struct {
	id   string
	name string
	desc string
	tags []string
}

// NewBaseRule describes a rule. tags decide its Family: "rst" for markup
// checks and "params" for signature checks.
func NewBaseRule(id, name, desc string, tags []string) BaseRule {
	return BaseRule{id: id, name: name, desc: desc, tags: tags}
}

// ID returns the rule's code, e.g. "NAP003".
func (r *BaseRule) ID() string { return r.id }

// Name returns the rule's kebab-case name.
func (r *BaseRule) Name() string { return r.name }

// Description returns one sentence describing the check.
func (r *BaseRule) Description() string { return r.desc }

// DefaultEnabled reports true.
func (r *BaseRule) DefaultEnabled() bool { return true }

// DefaultSeverity reports config.SeverityWarning.
func (r *BaseRule) DefaultSeverity() config.Severity { return config.SeverityWarning }

// Tags returns the rule's tags.
func (r *BaseRule) Tags() []string { return r.tags }

// Apply reports nothing; rules override it.
func (r *BaseRule) Apply(_ *RuleContext) ([]Diagnostic, error) { return nil, nil }
