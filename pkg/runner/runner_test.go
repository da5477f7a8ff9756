package runner_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
	"github.com/yaklabco/napcheck/pkg/lint/rules"
	"github.com/yaklabco/napcheck/pkg/runner"
)

const documented = `def add(a, b):
    """Add numbers.

    Args:
        a: First.
        b: Second.
    """
    return a + b
`

const reordered = `def add(a, b):
    """Add numbers.

    Args:
        b: Second.
        a: First.
    """
    return a + b
`

const undocumented = `class Box:
    """A box."""

    def fill(self, item, count):
        """Fill the box.

        Args:
            self: The box.
        """
`

func newRunner(t *testing.T, cfg *config.Config) *runner.Runner {
	t.Helper()

	registry := lint.NewRegistry()
	rules.RegisterAll(registry)

	engine, err := runner.NewEngine(cfg, registry, "napcheck/test")
	require.NoError(t, err)
	return runner.New(lint.NewPipeline(engine))
}

func TestNew(t *testing.T) {
	t.Parallel()

	pipeline := &lint.Pipeline{}
	r := runner.New(pipeline)
	assert.Same(t, pipeline, r.Pipeline)
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	registry := lint.NewRegistry()

	engine, err := runner.NewEngine(nil, registry, "napcheck/1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "napcheck/1.0.0", engine.Origin)
	assert.NotNil(t, engine.Parser)
	assert.NotNil(t, engine.Normalizer)
	assert.NotNil(t, engine.Validator)

	cfg := config.NewConfig()
	cfg.Convention = "numpy"
	_, err = runner.NewEngine(cfg, registry, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numpy")

	cfg = config.NewConfig()
	cfg.ReportLevel = "loud"
	_, err = runner.NewEngine(cfg, registry, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report_level")
}

func TestNewEngine_ReportLevel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "mod.py", "def f():\n    \"\"\"Uses *broken emphasis.\"\"\"\n")

	cfg := config.NewConfig()
	r := newRunner(t, cfg)
	result, err := r.Run(context.Background(), runner.Options{WorkingDir: dir, Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Diagnostics.Total(), "warnings are reported by default")

	cfg = config.NewConfig()
	cfg.ReportLevel = config.ReportLevelError
	r = newRunner(t, cfg)
	result, err = r.Run(context.Background(), runner.Options{WorkingDir: dir, Config: cfg})
	require.NoError(t, err)
	assert.Zero(t, result.Stats.Diagnostics.Total(), "report_level error hides warnings")
}

func TestRunner_Run_NoFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "README.md", "# Readme\n")

	result, err := newRunner(t, nil).Run(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)

	assert.Empty(t, result.Files)
	assert.Zero(t, result.Stats.FilesDiscovered)
	assert.False(t, result.HasIssues())
	assert.False(t, result.HasFailures())
}

func TestRunner_Run_MultipleFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "b_reordered.py", reordered)
	writeFile(t, dir, "a_clean.py", documented)
	writeFile(t, dir, "pkg/c_box.py", undocumented)

	cfg := config.NewConfig()
	result, err := newRunner(t, cfg).Run(context.Background(), runner.Options{WorkingDir: dir, Config: cfg})
	require.NoError(t, err)

	var paths []string
	for _, f := range result.Files {
		paths = append(paths, filepath.Base(f.Path))
		assert.NoError(t, f.Error)
	}
	assert.Equal(t, []string{"a_clean.py", "b_reordered.py", "c_box.py"}, paths)

	stats := result.Stats
	assert.Equal(t, 3, stats.FilesDiscovered)
	assert.Equal(t, 3, stats.FilesProcessed)
	assert.Zero(t, stats.FilesErrored)
	assert.Equal(t, 4, stats.Declarations)
	assert.Equal(t, 3, stats.Diagnostics.Total())
	assert.Equal(t, 2, stats.FilesWithIssues)
	assert.Equal(t, 3, stats.Diagnostics.Warnings)
	assert.True(t, result.HasIssues())
	assert.False(t, result.HasFailures())

	var texts []string
	for _, d := range result.Diagnostics() {
		texts = append(texts, fmt.Sprintf("%s:%d:%d %s", filepath.Base(d.FilePath), d.Line, d.Column, d.Text()))
	}
	assert.Equal(t, []string{
		"b_reordered.py:2:0 NAP004 Parameter order does not match docstring-defined order.",
		"c_box.py:5:4 NAP003 Arg item not described in docstring.",
		"c_box.py:5:4 NAP003 Arg count not described in docstring.",
	}, texts)

	for _, d := range result.Diagnostics() {
		assert.Equal(t, "napcheck/test", d.Origin)
	}
}

func TestRunner_Run_ErrorSeverity(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "mod.py", reordered)

	cfg := config.NewConfig()
	sev := string(config.SeverityError)
	cfg.Rules["NAP004"] = config.RuleConfig{Severity: &sev}

	result, err := newRunner(t, cfg).Run(context.Background(), runner.Options{WorkingDir: dir, Config: cfg})
	require.NoError(t, err)

	assert.True(t, result.HasFailures())
	assert.Equal(t, 1, result.Stats.Diagnostics.Errors)
}

func TestRunner_Run_FileErrorsDoNotAbort(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a_broken.py", "def broken(:\n    pass\n")
	writeFile(t, dir, "b_reordered.py", reordered)

	result, err := newRunner(t, nil).Run(context.Background(), runner.Options{WorkingDir: dir, Config: config.NewConfig()})
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	broken := result.Files[0]
	require.Error(t, broken.Error)
	assert.ErrorIs(t, broken.Error, lint.ErrParseFailure)
	assert.Nil(t, broken.Result)

	assert.Equal(t, 1, result.Stats.FilesErrored)
	assert.Equal(t, 1, result.Stats.FilesProcessed)
	assert.Equal(t, 1, result.Stats.Diagnostics.Total())
}

func TestRunner_Run_SerialVsParallelConsistency(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sources := []string{documented, reordered, undocumented}
	for i := range 30 {
		writeFile(t, dir, fmt.Sprintf("mod_%02d.py", i), sources[i%len(sources)])
	}

	cfg := config.NewConfig()
	r := newRunner(t, cfg)

	serial, err := r.Run(context.Background(), runner.Options{WorkingDir: dir, Config: cfg, Jobs: 1})
	require.NoError(t, err)
	parallel, err := r.Run(context.Background(), runner.Options{WorkingDir: dir, Config: cfg, Jobs: 8})
	require.NoError(t, err)

	assert.Equal(t, serial.Stats, parallel.Stats)
	assert.Equal(t, serial.Diagnostics(), parallel.Diagnostics())
	assert.Equal(t, 30, serial.Stats.FilesProcessed)
	assert.Equal(t, 30, serial.Stats.Diagnostics.Total())
}

func TestRunner_Run_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "mod.py", reordered)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(t, nil).Run(ctx, runner.Options{WorkingDir: dir})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_RunFiles_Cancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "mod.py", reordered)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newRunner(t, nil).RunFiles(ctx, []string{path}, runner.Options{Config: config.NewConfig()})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Stats.FilesDiscovered)
}

func TestResult_NilSafe(t *testing.T) {
	t.Parallel()

	var result *runner.Result
	assert.False(t, result.HasFailures())
	assert.False(t, result.HasIssues())
	assert.Nil(t, result.Diagnostics())
}

func TestResult_HasFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		tally runner.Tally
		want  bool
	}{
		{"no diagnostics", runner.Tally{}, false},
		{"warnings only", runner.Tally{Warnings: 3}, false},
		{"info only", runner.Tally{Infos: 1}, false},
		{"errors", runner.Tally{Warnings: 1, Errors: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := &runner.Result{Stats: runner.Stats{Diagnostics: tt.tally}}
			assert.Equal(t, tt.want, result.HasFailures())
		})
	}
}

func TestTally_Add(t *testing.T) {
	t.Parallel()

	var tally runner.Tally
	for _, sev := range []config.Severity{config.SeverityError, config.SeverityWarning, "", config.SeverityInfo} {
		tally.Add(sev)
	}

	assert.Equal(t, runner.Tally{Errors: 1, Warnings: 2, Infos: 1}, tally, "unset severity counts as a warning")
	assert.Equal(t, 4, tally.Total())
}
