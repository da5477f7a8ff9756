package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/pyast"
)

func TestDiagnostic_Text(t *testing.T) {
	diag := Diagnostic{
		RuleID:   "NAP003",
		RuleName: "param-not-documented",
		Message:  "Arg b not described in docstring.",
	}
	assert.Equal(t, "NAP003 Arg b not described in docstring.", diag.Text())
}

func TestBaseRule_Defaults(t *testing.T) {
	rule := NewBaseRule("NAP001", "rst-syntax", "desc", []string{"rst", "docstring"})

	assert.Equal(t, "NAP001", rule.ID())
	assert.Equal(t, "rst-syntax", rule.Name())
	assert.Equal(t, "desc", rule.Description())
	assert.Equal(t, []string{"rst", "docstring"}, rule.Tags())
	assert.True(t, rule.DefaultEnabled())
	assert.Equal(t, config.SeverityWarning, rule.DefaultSeverity())

	diags, err := rule.Apply(nil)
	assert.NoError(t, err)
	assert.Empty(t, diags)
}

func TestDocstringFinding(t *testing.T) {
	decl := &pyast.Declaration{Kind: pyast.KindFunction, Name: "resize", Line: 10, Column: 8}

	tests := []struct {
		local    int
		wantLine int
	}{
		{0, 11},
		{1, 12},
		{5, 16},
	}

	for _, tt := range tests {
		diag := DocstringFinding("NAP001", decl, tt.local, "msg")
		assert.Equal(t, Diagnostic{
			RuleID:          "NAP001",
			Message:         "msg",
			Line:            tt.wantLine,
			Column:          8,
			Declaration:     "resize",
			DeclarationLine: 10,
		}, diag, "docstring line %d", tt.local)
	}
}
