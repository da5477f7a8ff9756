package lint_test

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/docstring"
	"github.com/yaklabco/napcheck/pkg/lint"
	"github.com/yaklabco/napcheck/pkg/lint/rules"
	"github.com/yaklabco/napcheck/pkg/pyast"
	"github.com/yaklabco/napcheck/pkg/rst"
)

const reorderedSource = `def add(a, b):
    """Add numbers.

    Args:
        b: Second.
        a: First.
    """
    return a + b
`

const mixedSource = `class Widget:
    """A widget.

    Uses *broken emphasis.
    """

    def resize(self, width):
        """Resize.

        Args:
            self: The widget.
            width: New width.
            height: Unused.
        """


def helper(x):
    """Help."""
`

// diagnosticRule is a test rule that returns fixed results.
type diagnosticRule struct {
	lint.BaseRule
	diags []lint.Diagnostic
	err   error
}

func (r *diagnosticRule) Apply(_ *lint.RuleContext) ([]lint.Diagnostic, error) {
	return r.diags, r.err
}

func newTestEngine() *lint.Engine {
	registry := lint.NewRegistry()
	rules.RegisterAll(registry)
	return lint.NewEngine(pyast.NewParser(), registry, docstring.GoogleNormalizer{}, rst.NewChecker())
}

func lintSource(t *testing.T, engine *lint.Engine, source string, cfg *config.Config) *lint.FileResult {
	t.Helper()

	if cfg == nil {
		cfg = config.NewConfig()
	}
	result, err := engine.LintFile(context.Background(), "mod.py", []byte(source), cfg)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func diagTexts(diags []lint.Diagnostic) []string {
	texts := make([]string, 0, len(diags))
	for _, d := range diags {
		texts = append(texts, d.Text())
	}
	return texts
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	parser := pyast.NewParser()
	registry := lint.NewRegistry()
	normalizer := docstring.RSTNormalizer{}
	checker := rst.NewChecker()

	engine := lint.NewEngine(parser, registry, normalizer, checker)

	assert.Same(t, parser, engine.Parser)
	assert.Same(t, registry, engine.Registry)
	assert.Equal(t, normalizer, engine.Normalizer)
	assert.Same(t, checker, engine.Validator)
	assert.Empty(t, engine.Origin)
}

func TestEngine_LintFile_Clean(t *testing.T) {
	t.Parallel()

	source := `def add(a, b):
    """Add numbers.

    Args:
        a: First.
        b: Second.

    Returns:
        int: The sum.
    """
    return a + b
`
	result := lintSource(t, newTestEngine(), source, nil)

	assert.Empty(t, result.Diagnostics)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Declarations)
	assert.False(t, result.HasIssues())
	assert.Zero(t, result.IssueCount())
}

func TestEngine_LintFile_OrderMismatch(t *testing.T) {
	t.Parallel()

	engine := newTestEngine()
	engine.Origin = "napcheck/1.0.0"

	result := lintSource(t, engine, reorderedSource, nil)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, lint.Diagnostic{
		RuleID:          "NAP004",
		RuleName:        "param-order",
		Message:         "Parameter order does not match docstring-defined order.",
		Severity:        config.SeverityWarning,
		FilePath:        "mod.py",
		Line:            2,
		Column:          0,
		Declaration:     "add",
		DeclarationLine: 1,
		Origin:          "napcheck/1.0.0",
	}, result.Diagnostics[0])
}

func TestEngine_LintFile_TraversalOrder(t *testing.T) {
	t.Parallel()

	result := lintSource(t, newTestEngine(), mixedSource, nil)

	assert.Equal(t, []string{
		"NAP001 (WARNING/2) Inline emphasis start-string without end-string.",
		"NAP002 Arg 'height' not in function signature.",
		"NAP003 Arg x not described in docstring.",
	}, diagTexts(result.Diagnostics))

	var positions [][3]any
	for _, d := range result.Diagnostics {
		positions = append(positions, [3]any{d.Declaration, d.Line, d.Column})
	}
	assert.Equal(t, [][3]any{
		{"Widget", 4, 0},
		{"resize", 8, 4},
		{"helper", 18, 0},
	}, positions)
	assert.Equal(t, 3, result.Declarations)
}

func TestEngine_LintFile_Idempotent(t *testing.T) {
	t.Parallel()

	engine := newTestEngine()
	first := lintSource(t, engine, mixedSource, nil)
	second := lintSource(t, engine, mixedSource, nil)

	assert.Equal(t, first.Diagnostics, second.Diagnostics)
}

func TestEngine_LintFile_MarkupBeforeParams(t *testing.T) {
	t.Parallel()

	source := `def f(a, b):
    """Do *things.

    Args:
        b: Second.
        a: First.
    """
`
	result := lintSource(t, newTestEngine(), source, nil)

	assert.Equal(t, []string{"NAP001", "NAP004"}, ruleIDs(result.Diagnostics))
}

func ruleIDs(diags []lint.Diagnostic) []string {
	ids := make([]string, 0, len(diags))
	for _, d := range diags {
		ids = append(ids, d.RuleID)
	}
	return ids
}

func TestEngine_LintFile_ParamScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "missing parameter",
			source: "def f(a, b):\n    \"\"\"Do.\n\n    Args:\n        a: First.\n    \"\"\"\n",
			want:   []string{"NAP003 Arg b not described in docstring."},
		},
		{
			name:   "extra parameter",
			source: "def f(a):\n    \"\"\"Do.\n\n    Args:\n        a: First.\n        c: Third.\n    \"\"\"\n",
			want:   []string{"NAP002 Arg 'c' not in function signature."},
		},
		{
			name:   "variadics need no docs",
			source: "def f(a, *args, **kwargs):\n    \"\"\"Do.\n\n    Args:\n        a: First.\n    \"\"\"\n",
			want:   []string{},
		},
		{
			name:   "summary only documents nothing",
			source: "def f(a):\n    \"\"\"Do.\"\"\"\n",
			want:   []string{"NAP003 Arg a not described in docstring."},
		},
		{
			name:   "no docstring no findings",
			source: "def f(a):\n    return a\n",
			want:   []string{},
		},
		{
			name:   "class docstrings skip parameter checks",
			source: "class C:\n    \"\"\"A class.\n\n    Args:\n        z: Nothing.\n    \"\"\"\n",
			want:   []string{},
		},
		{
			name:   "async functions are checked",
			source: "async def f(a):\n    \"\"\"Do.\"\"\"\n",
			want:   []string{"NAP003 Arg a not described in docstring."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := lintSource(t, newTestEngine(), tt.source, nil)
			assert.Equal(t, tt.want, diagTexts(result.Diagnostics))
		})
	}
}

func TestEngine_LintFile_IgnoreReceiver(t *testing.T) {
	t.Parallel()

	source := `class Widget:
    def resize(self, width):
        """Resize.

        Args:
            width: New width.
        """
`
	result := lintSource(t, newTestEngine(), source, nil)
	assert.Equal(t, []string{"NAP003 Arg self not described in docstring."}, diagTexts(result.Diagnostics))

	cfg := config.NewConfig()
	cfg.IgnoreReceiver = true
	result = lintSource(t, newTestEngine(), source, cfg)
	assert.Empty(t, result.Diagnostics)
}

func TestEngine_LintFile_NestedUndocumentedParent(t *testing.T) {
	t.Parallel()

	source := `def outer():
    def inner(a):
        """Inner."""
    return inner
`
	result := lintSource(t, newTestEngine(), source, nil)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "inner", result.Diagnostics[0].Declaration)
	assert.Equal(t, 3, result.Diagnostics[0].Line)
	assert.Equal(t, 4, result.Diagnostics[0].Column)
	assert.Equal(t, 2, result.Declarations)
}

func TestEngine_LintFile_NoValidator(t *testing.T) {
	t.Parallel()

	engine := newTestEngine()
	engine.Validator = nil

	result := lintSource(t, engine, mixedSource, nil)
	assert.Equal(t, []string{"NAP002", "NAP003"}, ruleIDs(result.Diagnostics))
}

func TestEngine_LintFile_NormalizerPanic(t *testing.T) {
	t.Parallel()

	engine := newTestEngine()
	engine.Normalizer = lint.NormalizerFunc(func(raw string) string {
		if strings.Contains(raw, "boom") {
			panic("boom")
		}
		return docstring.GoogleNormalizer{}.Normalize(raw)
	})

	source := `def first(a, b):
    """Goes boom.

    Args:
        b: Second.
        a: First.
    """


def second(a):
    """Fine."""
`
	result := lintSource(t, engine, source, nil)

	require.Len(t, result.Errors, 1)
	declErr := result.Errors[0]
	assert.Equal(t, "first", declErr.Declaration)
	assert.Equal(t, 1, declErr.Line)
	assert.Contains(t, declErr.Error(), "first (line 1): docstring analysis panicked: boom")

	assert.Equal(t, []string{"NAP003 Arg a not described in docstring."}, diagTexts(result.Diagnostics))
	assert.Equal(t, "second", result.Diagnostics[0].Declaration)
}

func TestEngine_LintFile_ValidatorPanic(t *testing.T) {
	t.Parallel()

	engine := newTestEngine()
	engine.Validator = lint.ValidatorFunc(func(string) iter.Seq2[int, string] {
		panic("validator failed")
	})

	result := lintSource(t, engine, reorderedSource, nil)

	assert.Empty(t, result.Diagnostics, "findings of a failed declaration are discarded")
	require.Len(t, result.Errors, 1)
	assert.ErrorContains(t, result.Errors[0], "validator failed")
}

func TestEngine_LintFile_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := newTestEngine().LintFile(context.Background(), "bad.py", []byte("def broken(:\n"), config.NewConfig())

	require.Error(t, err)
	assert.ErrorIs(t, err, pyast.ErrSyntax)
}

func TestEngine_LintFile_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine().LintFile(ctx, "mod.py", []byte(reorderedSource), config.NewConfig())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_LintFile_SeverityOverride(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	sev := string(config.SeverityError)
	cfg.Rules["NAP004"] = config.RuleConfig{Severity: &sev}

	result := lintSource(t, newTestEngine(), reorderedSource, cfg)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, config.SeverityError, result.Diagnostics[0].Severity)
}

func TestEngine_LintFile_DisabledRule(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.DisableRules = []string{"NAP004"}

	result := lintSource(t, newTestEngine(), reorderedSource, cfg)
	assert.Empty(t, result.Diagnostics)
}

func TestEngine_LintFile_RuleError(t *testing.T) {
	t.Parallel()

	failing := &diagnosticRule{
		BaseRule: lint.NewBaseRule("TEST001", "failing", "", nil),
		err:      errors.New("rule failed"),
	}
	reporting := &diagnosticRule{
		BaseRule: lint.NewBaseRule("TEST002", "reporting", "", nil),
		diags:    []lint.Diagnostic{{RuleID: "TEST002", Message: "found", Line: 2}},
	}

	registry := lint.NewRegistry()
	registry.Register(failing)
	registry.Register(reporting)
	engine := lint.NewEngine(pyast.NewParser(), registry, docstring.GoogleNormalizer{}, nil)

	result := lintSource(t, engine, reorderedSource, nil)

	require.Contains(t, result.RuleErrors, "TEST001")
	assert.EqualError(t, result.RuleErrors["TEST001"], "rule failed")

	require.Len(t, result.Diagnostics, 1)
	diag := result.Diagnostics[0]
	assert.Equal(t, "reporting", diag.RuleName, "rule name is filled in")
	assert.Equal(t, "mod.py", diag.FilePath, "file path is filled in")
	assert.Equal(t, "add", diag.Declaration, "declaration is filled in")
	assert.Equal(t, 1, diag.DeclarationLine, "declaration line is filled in")
	assert.Equal(t, config.SeverityWarning, diag.Severity)
}

func TestEngine_LintTree_KeepsFileOpen(t *testing.T) {
	t.Parallel()

	engine := newTestEngine()
	file, err := engine.Parser.Parse(context.Background(), "mod.py", []byte(reorderedSource))
	require.NoError(t, err)
	defer file.Close()

	result, err := engine.LintTree(context.Background(), file, config.NewConfig())
	require.NoError(t, err)

	assert.Same(t, file, result.File)
	assert.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "def add(a, b):", file.Line(1))
}

func TestFileResult_Methods(t *testing.T) {
	t.Parallel()

	empty := &lint.FileResult{}
	assert.False(t, empty.HasIssues())
	assert.Zero(t, empty.IssueCount())

	withIssues := &lint.FileResult{Diagnostics: []lint.Diagnostic{{RuleID: "NAP001"}, {RuleID: "NAP002"}}}
	assert.True(t, withIssues.HasIssues())
	assert.Equal(t, 2, withIssues.IssueCount())
}

func TestDeclarationError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	err := &lint.DeclarationError{Declaration: "f", Line: 3, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "f (line 3): cause", err.Error())
}
