package rules

import (
	"maps"

	"github.com/yaklabco/napcheck/pkg/config"
)

// Off is the Pack level of a rule the pack turns off.
const Off = "off"

// Pack is a named set of rule levels that `napcheck init --pack` writes
// into a new configuration file.
type Pack struct {
	Name        string
	Description string

	// Levels maps each rule code to a severity, or to Off.
	Levels map[string]string
}

var packs = []Pack{
	{
		Name:        "default",
		Description: "All rules as warnings, the same as having no rules section",
		Levels:      map[string]string{"NAP001": "warning", "NAP002": "warning", "NAP003": "warning", "NAP004": "warning"},
	},
	{
		Name:        "strict",
		Description: "All rules as errors, for CI gates",
		Levels:      map[string]string{"NAP001": "error", "NAP002": "error", "NAP003": "error", "NAP004": "error"},
	},
	{
		Name:        "params",
		Description: "Parameter consistency only: no markup validation",
		Levels:      map[string]string{"NAP001": Off, "NAP002": "warning", "NAP003": "warning", "NAP004": "info"},
	},
	{
		Name:        "markup",
		Description: "Markup validity only: no parameter checks",
		Levels:      map[string]string{"NAP001": "warning", "NAP002": Off, "NAP003": Off, "NAP004": Off},
	},
}

// Packs returns copies of the built-in packs.
func Packs() []Pack {
	out := make([]Pack, len(packs))
	for i, p := range packs {
		out[i] = p.clone()
	}
	return out
}

// PackByName returns a copy of the named pack.
func PackByName(name string) (Pack, bool) {
	for _, p := range packs {
		if p.Name == name {
			return p.clone(), true
		}
	}
	return Pack{}, false
}

func PackNames() []string {
	names := make([]string, len(packs))
	for i, p := range packs {
		names[i] = p.Name
	}
	return names
}

// RuleConfigs returns the pack as a configuration rules section. A rule
// the pack turns off keeps the warning severity so switching it back on
// needs only enabled.
func (p Pack) RuleConfigs() map[string]config.RuleConfig {
	out := make(map[string]config.RuleConfig, len(p.Levels))
	for code, level := range p.Levels {
		on := level != Off
		sev := level
		if !on {
			sev = string(config.SeverityWarning)
		}
		out[code] = config.RuleConfig{Enabled: &on, Severity: &sev}
	}
	return out
}

func (p Pack) clone() Pack {
	p.Levels = maps.Clone(p.Levels)
	return p
}
