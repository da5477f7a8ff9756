package lint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
)

const (
	testRuleID1 = "NAP001"
	testRuleID2 = "NAP002"
)

// testRule is a simple rule implementation for testing.
type testRule struct {
	lint.BaseRule
}

func newTestRule(id string) *testRule {
	return &testRule{
		BaseRule: lint.NewBaseRule(id, id+"-name", "", nil),
	}
}

// optInRule is disabled unless configuration enables it.
type optInRule struct {
	testRule
}

func (r *optInRule) DefaultEnabled() bool { return false }

func boolPtr(b bool) *bool { return &b }

func stringPtr(s string) *string { return &s }

func resolvedIDs(resolved []lint.ResolvedRule) []string {
	ids := make([]string, 0, len(resolved))
	for _, rr := range resolved {
		ids = append(ids, rr.Rule.ID())
	}
	return ids
}

func TestResolveRules_Empty(t *testing.T) {
	t.Parallel()

	resolved := lint.ResolveRules(lint.NewRegistry(), config.NewConfig())
	assert.Empty(t, resolved)
}

func TestResolveRules_DefaultEnabled(t *testing.T) {
	t.Parallel()

	registry := lint.NewRegistry()
	registry.Register(newTestRule(testRuleID2))
	registry.Register(newTestRule(testRuleID1))

	resolved := lint.ResolveRules(registry, config.NewConfig())

	assert.Equal(t, []string{testRuleID1, testRuleID2}, resolvedIDs(resolved))
	for _, rr := range resolved {
		assert.Equal(t, config.SeverityWarning, rr.Severity)
		assert.Nil(t, rr.Config)
	}
}

func TestResolveRules_NilConfig(t *testing.T) {
	t.Parallel()

	registry := lint.NewRegistry()
	registry.Register(newTestRule(testRuleID1))
	registry.Register(&optInRule{testRule: *newTestRule(testRuleID2)})

	resolved := lint.ResolveRules(registry, nil)
	assert.Equal(t, []string{testRuleID1}, resolvedIDs(resolved))
}

func TestResolveRules_Precedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		cfg         func(*config.Config)
		wantEnabled bool
		wantSev     config.Severity
	}{
		{
			name:        "defaults",
			cfg:         func(*config.Config) {},
			wantEnabled: true,
			wantSev:     config.SeverityWarning,
		},
		{
			name: "severity default applies to every rule",
			cfg: func(c *config.Config) {
				c.SeverityDefault = string(config.SeverityError)
			},
			wantEnabled: true,
			wantSev:     config.SeverityError,
		},
		{
			name: "invalid severity default is ignored",
			cfg: func(c *config.Config) {
				c.SeverityDefault = "fatal"
			},
			wantEnabled: true,
			wantSev:     config.SeverityWarning,
		},
		{
			name: "rule severity beats severity default",
			cfg: func(c *config.Config) {
				c.SeverityDefault = string(config.SeverityError)
				c.Rules[testRuleID1] = config.RuleConfig{Severity: stringPtr("info")}
			},
			wantEnabled: true,
			wantSev:     config.SeverityInfo,
		},
		{
			name: "rule disabled in config",
			cfg: func(c *config.Config) {
				c.Rules[testRuleID1] = config.RuleConfig{Enabled: boolPtr(false)}
			},
			wantEnabled: false,
		},
		{
			name: "enable flag beats config",
			cfg: func(c *config.Config) {
				c.Rules[testRuleID1] = config.RuleConfig{Enabled: boolPtr(false)}
				c.EnableRules = []string{testRuleID1}
			},
			wantEnabled: true,
			wantSev:     config.SeverityWarning,
		},
		{
			name: "disable flag beats enable flag",
			cfg: func(c *config.Config) {
				c.EnableRules = []string{testRuleID1}
				c.DisableRules = []string{testRuleID1}
			},
			wantEnabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			registry := lint.NewRegistry()
			registry.Register(newTestRule(testRuleID1))

			cfg := config.NewConfig()
			tt.cfg(cfg)

			resolved := lint.ResolveRules(registry, cfg)
			if !tt.wantEnabled {
				assert.Empty(t, resolved)
				return
			}
			require.Len(t, resolved, 1)
			assert.Equal(t, tt.wantSev, resolved[0].Severity)
		})
	}
}

func TestResolveRules_EnableOptIn(t *testing.T) {
	t.Parallel()

	registry := lint.NewRegistry()
	registry.Register(&optInRule{testRule: *newTestRule(testRuleID1)})

	cfg := config.NewConfig()
	assert.Empty(t, lint.ResolveRules(registry, cfg))

	cfg.Rules[testRuleID1] = config.RuleConfig{Enabled: boolPtr(true)}
	assert.Len(t, lint.ResolveRules(registry, cfg), 1)
}

func TestResolveRules_KeepsRuleConfig(t *testing.T) {
	t.Parallel()

	registry := lint.NewRegistry()
	registry.Register(newTestRule(testRuleID1))

	cfg := config.NewConfig()
	cfg.Rules[testRuleID1] = config.RuleConfig{Options: map[string]any{"key": "value"}}

	resolved := lint.ResolveRules(registry, cfg)
	require.Len(t, resolved, 1)
	require.NotNil(t, resolved[0].Config)
	assert.Equal(t, "value", resolved[0].Config.Options["key"])
}

func TestResolveRules_Family(t *testing.T) {
	t.Parallel()

	registry := lint.NewRegistry()
	registry.Register(&testRule{BaseRule: lint.NewBaseRule(testRuleID1, "rst-syntax", "", []string{"rst"})})
	registry.Register(&testRule{BaseRule: lint.NewBaseRule(testRuleID2, "param-not-in-signature", "", []string{"params"})})
	registry.Register(newTestRule("NAP900"))

	resolved := lint.ResolveRules(registry, config.NewConfig())
	require.Len(t, resolved, 3)

	assert.Equal(t, lint.FamilyMarkup, resolved[0].Family)
	assert.Equal(t, lint.FamilyParams, resolved[1].Family)
	assert.Equal(t, lint.FamilyOther, resolved[2].Family)
}
