package lint

import (
	"slices"

	"github.com/yaklabco/napcheck/pkg/config"
)

// ResolvedRule is a registered rule with the settings a run applies to it.
type ResolvedRule struct {
	Rule     Rule
	Family   Family
	Enabled  bool
	Severity config.Severity
	// Config is the rule's rules.<code> entry, or nil without one.
	Config *config.RuleConfig
}

// layer applies one source of configuration to a rule's settings.
type layer func(rr *ResolvedRule, cfg *config.Config)

// layers run lowest precedence first: severity_default, then the
// rules.<code> entry, then --enable and --disable.
var layers = []layer{severityDefaultLayer, ruleEntryLayer, selectionLayer}

// ResolveRules returns the rules cfg leaves enabled, in code order. A nil
// cfg runs every rule that is enabled by default.
func ResolveRules(registry *Registry, cfg *config.Config) []ResolvedRule {
	var resolved []ResolvedRule
	for _, rule := range registry.Rules() {
		rr := ResolvedRule{
			Rule:     rule,
			Family:   FamilyOf(rule),
			Enabled:  rule.DefaultEnabled(),
			Severity: rule.DefaultSeverity(),
		}
		if cfg != nil {
			for _, apply := range layers {
				apply(&rr, cfg)
			}
		}
		if rr.Enabled {
			resolved = append(resolved, rr)
		}
	}
	return resolved
}

func severityDefaultLayer(rr *ResolvedRule, cfg *config.Config) {
	if sev := config.Severity(cfg.SeverityDefault); sev.IsValid() {
		rr.Severity = sev
	}
}

func ruleEntryLayer(rr *ResolvedRule, cfg *config.Config) {
	entry, ok := cfg.Rules[rr.Rule.ID()]
	if !ok {
		return
	}
	rr.Config = &entry
	if entry.Enabled != nil {
		rr.Enabled = *entry.Enabled
	}
	if entry.Severity != nil {
		rr.Severity = config.Severity(*entry.Severity)
	}
}

// selectionLayer applies --enable, then --disable, so disabling wins.
func selectionLayer(rr *ResolvedRule, cfg *config.Config) {
	code := rr.Rule.ID()
	if slices.Contains(cfg.EnableRules, code) {
		rr.Enabled = true
	}
	if slices.Contains(cfg.DisableRules, code) {
		rr.Enabled = false
	}
}
