package configloader

import (
	"maps"

	"github.com/yaklabco/napcheck/pkg/config"
)

// merge layers configurations, later ones winning, into a new Config.
//
// Scalars are taken when set and slices when non-nil; a slice replaces
// the one below rather than extending it. Rule entries merge field by
// field and their options key by key. ignore_receiver can be switched on
// by a later layer but not back off, since false reads the same as unset.
func merge(layers ...*config.Config) *config.Config {
	var out *config.Config
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		if out == nil {
			out = layer.Clone()
			continue
		}

		override(&out.Convention, layer.Convention)
		override(&out.ReportLevel, layer.ReportLevel)
		override(&out.SeverityDefault, layer.SeverityDefault)
		override(&out.Format, layer.Format)
		override(&out.RuleFormat, layer.RuleFormat)
		override(&out.Jobs, layer.Jobs)
		out.IgnoreReceiver = out.IgnoreReceiver || layer.IgnoreReceiver

		overrideSlice(&out.Ignore, layer.Ignore)
		overrideSlice(&out.Extensions, layer.Extensions)
		overrideSlice(&out.EnableRules, layer.EnableRules)
		overrideSlice(&out.DisableRules, layer.DisableRules)

		for code, entry := range layer.Rules {
			if out.Rules == nil {
				out.Rules = make(map[string]config.RuleConfig)
			}
			out.Rules[code] = mergeRule(out.Rules[code], entry)
		}
	}
	return out
}

func override[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

func overrideSlice(dst *[]string, v []string) {
	if v != nil {
		*dst = v
	}
}

func mergeRule(base, layer config.RuleConfig) config.RuleConfig {
	out := base.Clone()
	if layer.Enabled != nil {
		out.Enabled = layer.Enabled
	}
	if layer.Severity != nil {
		out.Severity = layer.Severity
	}
	if layer.Options != nil {
		if out.Options == nil {
			out.Options = make(map[string]any, len(layer.Options))
		}
		maps.Copy(out.Options, layer.Options)
	}
	return out
}
