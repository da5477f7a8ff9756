package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
)

func TestPacks(t *testing.T) {
	t.Parallel()

	all := Packs()
	require.Len(t, all, 4)

	for _, pack := range all {
		assert.NotEmpty(t, pack.Description, "pack %q", pack.Name)
		assert.ElementsMatch(t, lint.DefaultRegistry.IDs(), keys(pack.Levels),
			"pack %q must set every rule", pack.Name)

		for code, level := range pack.Levels {
			assert.True(t, level == Off || config.Severity(level).IsValid(),
				"pack %q rule %s has level %q", pack.Name, code, level)
		}
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestPack_RuleConfigs(t *testing.T) {
	t.Parallel()

	type setting struct {
		enabled  bool
		severity string
	}
	warn := setting{true, "warning"}
	off := setting{false, "warning"}

	tests := []struct {
		name string
		want map[string]setting
	}{
		{"default", map[string]setting{"NAP001": warn, "NAP002": warn, "NAP003": warn, "NAP004": warn}},
		{"strict", map[string]setting{
			"NAP001": {true, "error"},
			"NAP002": {true, "error"},
			"NAP003": {true, "error"},
			"NAP004": {true, "error"},
		}},
		{"params", map[string]setting{"NAP001": off, "NAP002": warn, "NAP003": warn, "NAP004": {true, "info"}}},
		{"markup", map[string]setting{"NAP001": warn, "NAP002": off, "NAP003": off, "NAP004": off}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pack, ok := PackByName(tt.name)
			require.True(t, ok)

			got := make(map[string]setting)
			for code, rc := range pack.RuleConfigs() {
				require.NotNil(t, rc.Enabled, code)
				require.NotNil(t, rc.Severity, code)
				got[code] = setting{*rc.Enabled, *rc.Severity}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPackByName(t *testing.T) {
	t.Parallel()

	for _, name := range PackNames() {
		pack, ok := PackByName(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, pack.Name)
	}

	for _, name := range []string{"core", ""} {
		_, ok := PackByName(name)
		assert.False(t, ok, "%q", name)
	}
}

func TestPackNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"default", "strict", "params", "markup"}, PackNames())
}

func TestPackByName_ReturnsCopy(t *testing.T) {
	t.Parallel()

	pack, ok := PackByName("strict")
	require.True(t, ok)
	delete(pack.Levels, "NAP001")

	again, ok := PackByName("strict")
	require.True(t, ok)
	assert.Contains(t, again.Levels, "NAP001")
}
