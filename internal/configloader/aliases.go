package configloader

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/napcheck/pkg/lint"
)

// ExpandRuleKeys resolves --enable/--disable arguments to canonical rule IDs.
// A key may be a rule ID (nap002), a rule name or alias (param-order), a
// tag (params) or "all". Keys that match nothing are returned as errors.
func ExpandRuleKeys(registry *lint.Registry, keys []string) ([]string, error) {
	var ids []string
	var unknown []string

	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		if strings.EqualFold(key, "all") {
			ids = append(ids, registry.IDs()...)
			continue
		}

		if id, _, ok := registry.Resolve(key); ok {
			ids = append(ids, id)
			continue
		}

		if tagged := RulesWithTag(registry, key); len(tagged) > 0 {
			ids = append(ids, tagged...)
			continue
		}

		unknown = append(unknown, key)
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown rule or tag: %s", strings.Join(unknown, ", "))
	}

	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// RulesWithTag returns the IDs of rules carrying tag, in ID order.
func RulesWithTag(registry *lint.Registry, tag string) []string {
	var ids []string
	for _, rule := range registry.Rules() {
		if slices.ContainsFunc(rule.Tags(), func(t string) bool { return strings.EqualFold(t, tag) }) {
			ids = append(ids, rule.ID())
		}
	}
	return ids
}

// Tags returns every tag used by the registry's rules, sorted.
func Tags(registry *lint.Registry) []string {
	var tags []string
	for _, rule := range registry.Rules() {
		tags = append(tags, rule.Tags()...)
	}
	slices.Sort(tags)
	return slices.Compact(tags)
}
