package rules

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/docstring"
	"github.com/yaklabco/napcheck/pkg/lint"
	"github.com/yaklabco/napcheck/pkg/pyast"
	"github.com/yaklabco/napcheck/pkg/rst"
)

// update is a flag to update golden files instead of comparing.
// Usage: go test -update ./pkg/lint/rules/... -run TestGolden.
var update = flag.Bool("update", false, "update golden files")

// GoldenTestCase is one Python input and its expected diagnostics.
type GoldenTestCase struct {
	// Name is the test case name derived from the file path.
	Name string

	// InputPath is the absolute path to the input Python file.
	InputPath string

	// DiagsPath is the path to the expected diagnostics, one flake8 line each.
	DiagsPath string

	// RuleID is the rule to test (empty means run all rules).
	RuleID string

	// IsRealWorld indicates this is a real-world test (all rules).
	IsRealWorld bool
}

// testdataDir returns the absolute path to the testdata directory.
func testdataDir(t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get test file path")
	}

	return filepath.Join(filepath.Dir(filename), "testdata")
}

// discoverTestCases finds testdata/<RULE_ID>/*.py and testdata/real-world/*.py.
func discoverTestCases(t *testing.T, baseDir string) []GoldenTestCase {
	t.Helper()

	cases := make([]GoldenTestCase, 0)

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return cases
		}
		t.Fatalf("failed to read testdata directory: %v", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dirName := entry.Name()
		dirPath := filepath.Join(baseDir, dirName)

		isRealWorld := dirName == "real-world"
		ruleID := ""
		if !isRealWorld {
			if !isRuleID(dirName) {
				continue
			}
			ruleID = dirName
		}

		inputFiles, err := filepath.Glob(filepath.Join(dirPath, "*.py"))
		if err != nil {
			t.Fatalf("failed to glob input files in %s: %v", dirPath, err)
		}

		for _, inputPath := range inputFiles {
			baseName := strings.TrimSuffix(filepath.Base(inputPath), ".py")
			cases = append(cases, GoldenTestCase{
				Name:        filepath.Join(dirName, baseName),
				InputPath:   inputPath,
				DiagsPath:   filepath.Join(dirPath, baseName+".diags.txt"),
				RuleID:      ruleID,
				IsRealWorld: isRealWorld,
			})
		}
	}

	return cases
}

// isRuleID checks if a string looks like a rule ID (NAP001, NAP004, etc.).
func isRuleID(s string) bool {
	rest, ok := strings.CutPrefix(s, "NAP")
	if !ok || rest == "" {
		return false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// goldenEngine builds an engine running the given rules with the default
// Google normalizer and markup checker.
func goldenEngine(rules ...lint.Rule) *lint.Engine {
	registry := lint.NewRegistry()
	for _, r := range rules {
		registry.Register(r)
	}

	parser := pyast.NewParser()
	checker := rst.NewChecker()
	parser.RegisterCodeCheckers(checker)

	return lint.NewEngine(parser, registry, docstring.GoogleNormalizer{}, checker)
}

// formatDiags renders diagnostics the way flake8 prints them.
func formatDiags(diags []lint.Diagnostic) []byte {
	var buf bytes.Buffer
	for _, d := range diags {
		fmt.Fprintf(&buf, "%s:%d:%d: %s\n", filepath.Base(d.FilePath), d.Line, d.Column+1, d.Text())
	}
	return buf.Bytes()
}

func runGoldenTest(t *testing.T, tc GoldenTestCase, engine *lint.Engine, cfg *config.Config) {
	t.Helper()

	input, err := os.ReadFile(tc.InputPath)
	require.NoError(t, err, "failed to read input file: %s", tc.InputPath)

	result, err := engine.LintFile(context.Background(), tc.InputPath, input, cfg)
	require.NoError(t, err, "failed to lint %s", tc.InputPath)
	require.Empty(t, result.Errors)
	require.Empty(t, result.RuleErrors)

	compareWithGolden(t, formatDiags(result.Diagnostics), tc.DiagsPath, *update)
}

// TestGoldenPerRule runs each testdata/<RULE_ID> case with only that rule enabled.
func TestGoldenPerRule(t *testing.T) {
	cases := discoverTestCases(t, testdataDir(t))

	var ran int
	for _, tc := range cases {
		if tc.IsRealWorld {
			continue
		}
		ran++
		t.Run(tc.Name, func(t *testing.T) {
			rule, ok := lint.DefaultRegistry.GetByID(tc.RuleID)
			require.True(t, ok, "rule %s is not registered", tc.RuleID)
			runGoldenTest(t, tc, goldenEngine(rule), config.NewConfig())
		})
	}
	if ran == 0 {
		t.Skip("No per-rule golden test cases found.")
	}
}

// TestGoldenRealWorld runs every rule over testdata/real-world. Methods
// there do not document self, so receivers are ignored.
func TestGoldenRealWorld(t *testing.T) {
	cases := discoverTestCases(t, testdataDir(t))

	cfg := config.NewConfig()
	cfg.IgnoreReceiver = true

	var ran int
	for _, tc := range cases {
		if !tc.IsRealWorld {
			continue
		}
		ran++
		t.Run(tc.Name, func(t *testing.T) {
			runGoldenTest(t, tc, goldenEngine(lint.DefaultRegistry.Rules()...), cfg)
		})
	}
	if ran == 0 {
		t.Skip("No real-world golden test cases found.")
	}
}

// compareWithGolden compares actual bytes with the golden file.
// If update is true, it updates the golden file instead of comparing.
func compareWithGolden(t *testing.T, actual []byte, goldenPath string, update bool) {
	t.Helper()

	if update {
		require.NoError(t, os.WriteFile(goldenPath, actual, 0o644))
		t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		t.Errorf("Golden file does not exist: %s\nRun with -update flag to create it.", goldenPath)
		t.Logf("Actual diagnostics:\n%s", actual)
		return
	}
	require.NoError(t, err)

	assert.Equal(t, string(expected), string(actual), "diagnostics differ from %s", goldenPath)
}

func TestGoldenTestInfrastructure(t *testing.T) {
	t.Run("isRuleID", func(t *testing.T) {
		tests := []struct {
			input string
			want  bool
		}{
			{"NAP001", true},
			{"NAP004", true},
			{"NAP999", true},
			{"real-world", false},
			{"NAP", false},
			{"NAPabc", false},
			{"nap001", false},
			{"MD001", false},
			{"", false},
		}

		for _, tt := range tests {
			t.Run(tt.input, func(t *testing.T) {
				assert.Equal(t, tt.want, isRuleID(tt.input))
			})
		}
	})

	t.Run("testdataDir", func(t *testing.T) {
		dir := testdataDir(t)
		assert.Contains(t, dir, "testdata")
		assert.True(t, filepath.IsAbs(dir))
	})

	t.Run("every rule has golden cases", func(t *testing.T) {
		covered := make(map[string]bool)
		for _, tc := range discoverTestCases(t, testdataDir(t)) {
			covered[tc.RuleID] = true
		}
		for _, id := range lint.DefaultRegistry.IDs() {
			assert.True(t, covered[id], "no testdata/%s cases", id)
		}
	})
}

func BenchmarkEngine_RealWorld(b *testing.B) {
	input, err := os.ReadFile(filepath.Join("testdata", "real-world", "geometry.py"))
	if err != nil {
		b.Fatal(err)
	}

	engine := goldenEngine(lint.DefaultRegistry.Rules()...)
	cfg := config.NewConfig()
	ctx := context.Background()

	b.ResetTimer()
	for range b.N {
		if _, err := engine.LintFile(ctx, "geometry.py", input, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
