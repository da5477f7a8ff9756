package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/napcheck/pkg/config"
)

// mockRule for testing.
type mockRule struct {
	id   string
	name string
	tags []string
}

func (m *mockRule) ID() string                               { return m.id }
func (m *mockRule) Name() string                             { return m.name }
func (m *mockRule) Description() string                      { return "mock" }
func (m *mockRule) DefaultEnabled() bool                     { return true }
func (m *mockRule) DefaultSeverity() config.Severity         { return config.SeverityWarning }
func (m *mockRule) Tags() []string                           { return m.tags }
func (m *mockRule) Apply(*RuleContext) ([]Diagnostic, error) { return nil, nil }

func TestRegistry_GetByName(t *testing.T) {
	reg := NewRegistry()
	rule := &mockRule{id: "NAP002", name: "param-not-in-signature"}
	reg.Register(rule)

	got, ok := reg.GetByName("param-not-in-signature")
	assert.True(t, ok)
	assert.Equal(t, "NAP002", got.ID())
}

func TestRegistry_GetByName_NotFound(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.GetByName("nonexistent")
	assert.False(t, ok)
}

func TestRegistry_Get_ByNameFallback(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockRule{id: "NAP004", name: "param-order"})

	byID, ok := reg.Get("NAP004")
	require.True(t, ok)
	byName, ok := reg.Get("param-order")
	require.True(t, ok)
	assert.Same(t, byID, byName)
}

func TestRegistry_Resolve(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockRule{id: "NAP001", name: "rst-syntax"})
	reg.RegisterAlias("invalid-rst", "NAP001")

	tests := []struct {
		key    string
		wantOK bool
	}{
		{"NAP001", true},
		{"nap001", true},
		{"Nap001", true},
		{"rst-syntax", true},
		{"invalid-rst", true},
		{"NAP999", false},
		{"rst", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			id, rule, ok := reg.Resolve(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Empty(t, id)
				assert.Nil(t, rule)
				return
			}
			assert.Equal(t, "NAP001", id)
			assert.Equal(t, "rst-syntax", rule.Name())
		})
	}
}

func TestRegistry_GetByID(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockRule{id: "NAP003", name: "param-not-documented"})

	got, ok := reg.GetByID("NAP003")
	require.True(t, ok)
	assert.Equal(t, "param-not-documented", got.Name())

	_, ok = reg.GetByID("param-not-documented")
	assert.False(t, ok, "GetByID must not fall back to names")
}

func TestRegistry_Register_Replaces(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockRule{id: "NAP002", name: "old-name"})
	reg.Register(&mockRule{id: "NAP002", name: "param-not-in-signature"})

	got, ok := reg.GetByID("NAP002")
	require.True(t, ok)
	assert.Equal(t, "param-not-in-signature", got.Name())
	assert.Len(t, reg.Rules(), 1)
}

func TestRegistry_RulesSortedByID(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockRule{id: "NAP004", name: "d"})
	reg.Register(&mockRule{id: "NAP001", name: "a"})
	reg.Register(&mockRule{id: "NAP003", name: "c"})
	reg.Register(&mockRule{id: "NAP002", name: "b"})

	var ids []string
	for _, r := range reg.Rules() {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{"NAP001", "NAP002", "NAP003", "NAP004"}, ids)
	assert.Equal(t, ids, reg.IDs())
}

func TestRegistry_RegisterAlias_UnknownRule(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterAlias("ghost", "NAP999")

	_, _, ok := reg.Resolve("ghost")
	assert.False(t, ok)
}

func TestRegistry_ByFamily(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockRule{id: "NAP004", name: "param-order", tags: []string{"params", "docstring"}})
	reg.Register(&mockRule{id: "NAP001", name: "rst-syntax", tags: []string{"rst", "docstring"}})
	reg.Register(&mockRule{id: "NAP002", name: "param-not-in-signature", tags: []string{"params"}})
	reg.Register(&mockRule{id: "X100", name: "untagged"})

	codes := func(rules []Rule) []string {
		var out []string
		for _, r := range rules {
			out = append(out, r.ID())
		}
		return out
	}

	assert.Equal(t, []string{"NAP001"}, codes(reg.ByFamily(FamilyMarkup)))
	assert.Equal(t, []string{"NAP002", "NAP004"}, codes(reg.ByFamily(FamilyParams)))
	assert.Equal(t, []string{"X100"}, codes(reg.ByFamily(FamilyOther)))

	assert.Equal(t, FamilyParams, reg.FamilyOfCode("NAP004"))
	assert.Equal(t, FamilyMarkup, reg.FamilyOfCode("NAP001"))
	assert.Equal(t, FamilyOther, reg.FamilyOfCode("NAP999"))
}

func TestRegistry_Register_ReplacedNameIsForgotten(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockRule{id: "NAP003", name: "undocumented"})
	reg.Register(&mockRule{id: "NAP003", name: "param-not-documented"})

	_, ok := reg.GetByName("undocumented")
	assert.False(t, ok)
	_, _, ok = reg.Resolve("param-not-documented")
	assert.True(t, ok)
}
