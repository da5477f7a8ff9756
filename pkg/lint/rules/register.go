package rules

import (
	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
)

// RegisterAll registers all built-in rules with the given registry.
func RegisterAll(registry *lint.Registry) {
	// Markup rules
	registry.Register(NewRSTSyntaxRule()) // NAP001

	// Parameter rules
	registry.Register(NewParamNotInSignatureRule()) // NAP002
	registry.Register(NewParamNotDocumentedRule())  // NAP003
	registry.Register(NewParamOrderRule())          // NAP004
}

// RegisterAliases registers alternate rule names that differ from the
// canonical Name(), so configuration files can use either spelling.
func RegisterAliases(registry *lint.Registry) {
	registry.RegisterAlias("invalid-rst", "NAP001")
	registry.RegisterAlias("unknown-param", "NAP002")
	registry.RegisterAlias("undocumented-param", "NAP003")
	registry.RegisterAlias("param-sequence", "NAP004")
}

// RuleInfos describes the rules of registry for config template generation.
func RuleInfos(registry *lint.Registry) []config.RuleInfo {
	rules := registry.Rules()
	infos := make([]config.RuleInfo, 0, len(rules))
	for _, rule := range rules {
		infos = append(infos, config.RuleInfo{
			ID:          rule.ID(),
			Name:        rule.Name(),
			Description: rule.Description(),
			Enabled:     rule.DefaultEnabled(),
			Severity:    rule.DefaultSeverity(),
			Tags:        rule.Tags(),
		})
	}
	return infos
}

// init registers all built-in rules with the default registry.
//
//nolint:gochecknoinits // Init is intentional for automatic rule registration
func init() {
	RegisterAll(lint.DefaultRegistry)
	RegisterAliases(lint.DefaultRegistry)
	config.DefaultRuleInfoProvider = func() []config.RuleInfo {
		return RuleInfos(lint.DefaultRegistry)
	}
}
