package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
	_ "github.com/yaklabco/napcheck/pkg/lint/rules" // Register rules
)

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir: dir,
		Skip:       []Scope{ScopeSystem, ScopeUser},
		IgnoreEnv:  true,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(t.TempDir()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Convention != config.ConventionGoogle {
		t.Errorf("expected convention %q, got %q", config.ConventionGoogle, result.Config.Convention)
	}
	if result.Config.ReportLevel != config.ReportLevelWarning {
		t.Errorf("expected report level %q, got %q", config.ReportLevelWarning, result.Config.ReportLevel)
	}
	if result.Config.IgnoreReceiver {
		t.Error("expected ignore_receiver to default to false")
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("expected no loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".napcheck.yml"), `
convention: rst
report_level: error
rules:
  param-order:
    enabled: false
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Convention != config.ConventionRST {
		t.Errorf("expected convention rst, got %q", result.Config.Convention)
	}
	if result.Config.ReportLevel != config.ReportLevelError {
		t.Errorf("expected report level error, got %q", result.Config.ReportLevel)
	}

	nap004, ok := result.Config.Rules["NAP004"]
	if !ok {
		t.Fatalf("rule name was not normalized to NAP004: %v", result.Config.Rules)
	}
	if nap004.Enabled == nil || *nap004.Enabled {
		t.Error("expected NAP004 to be disabled")
	}
	if len(result.LoadedFrom) != 1 {
		t.Errorf("expected 1 loaded file, got %d", len(result.LoadedFrom))
	}
}

func TestLoad_ProjectConfigFoundUpward(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".napcheck.yml"), "ignore_receiver: true\n")
	nested := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := Load(context.Background(), isolated(nested))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !result.Config.IgnoreReceiver {
		t.Error("expected ignore_receiver from parent directory config")
	}
}

func TestLoad_Pyproject(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "pyproject.toml"), `
[project]
name = "demo"

[tool.napcheck]
convention = "rst"
ignore = ["build/**"]

[tool.napcheck.rules.NAP001]
severity = "error"
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Convention != config.ConventionRST {
		t.Errorf("expected convention rst, got %q", result.Config.Convention)
	}
	if len(result.Config.Ignore) != 1 || result.Config.Ignore[0] != "build/**" {
		t.Errorf("unexpected ignore: %v", result.Config.Ignore)
	}
	sev := result.Config.Rules["NAP001"].Severity
	if sev == nil || *sev != "error" {
		t.Errorf("expected NAP001 severity error, got %v", sev)
	}
}

func TestLoad_PyprojectWithoutTableIsSkipped(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".napcheck.yml"), "convention: rst\n")
	pkg := filepath.Join(root, "pkg")
	writeFile(t, filepath.Join(pkg, "pyproject.toml"), "[project]\nname = \"inner\"\n")

	result, err := Load(context.Background(), isolated(pkg))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Convention != config.ConventionRST {
		t.Errorf("expected the parent .napcheck.yml to apply, got %q", result.Config.Convention)
	}
}

func TestLoad_DedicatedFileWinsOverPyproject(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".napcheck.yml"), "convention: google\n")
	writeFile(t, filepath.Join(tmpDir, "pyproject.toml"), "[tool.napcheck]\nconvention = \"rst\"\n")

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Sources) != 1 || result.Sources[0].Scope != ScopeProject {
		t.Fatalf("expected one project source, got %v", result.Sources)
	}
	if filepath.Base(result.Sources[0].Path) != ".napcheck.yml" {
		t.Errorf("expected .napcheck.yml, got %s", result.Sources[0].Path)
	}
	if result.Config.Convention != config.ConventionGoogle {
		t.Errorf("expected convention from .napcheck.yml, got %q", result.Config.Convention)
	}
}

func TestLoad_ExplicitConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".napcheck.yml"), "convention: google\n")
	customPath := filepath.Join(tmpDir, "custom.toml")
	writeFile(t, customPath, "convention = \"rst\"\nseverity_default = \"error\"\n")

	opts := isolated(tmpDir)
	opts.ExplicitPath = customPath

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Convention != config.ConventionRST {
		t.Errorf("explicit config should override project config, got %q", result.Config.Convention)
	}
	if result.Config.SeverityDefault != "error" {
		t.Errorf("expected severity_default error, got %q", result.Config.SeverityDefault)
	}
	if len(result.LoadedFrom) != 2 {
		t.Errorf("expected 2 loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_ExplicitPyprojectWithoutTable(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "pyproject.toml")
	writeFile(t, path, "[project]\nname = \"demo\"\n")

	opts := isolated(tmpDir)
	opts.ExplicitPath = path

	_, err := Load(context.Background(), opts)
	if !errors.Is(err, ErrNoToolTable) {
		t.Fatalf("expected ErrNoToolTable, got %v", err)
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".napcheck.yml"), "convention: rst\n")

	opts := isolated(tmpDir)
	opts.CLIConfig = &config.Config{
		Convention:     config.ConventionGoogle,
		Jobs:           8,
		IgnoreReceiver: true,
		DisableRules:   []string{"NAP001"},
	}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Convention != config.ConventionGoogle {
		t.Errorf("expected CLI convention, got %q", result.Config.Convention)
	}
	if result.Config.Jobs != 8 {
		t.Errorf("expected jobs 8, got %d", result.Config.Jobs)
	}
	if !result.Config.IgnoreReceiver {
		t.Error("expected ignore_receiver from CLI")
	}
	if len(result.Config.DisableRules) != 1 {
		t.Errorf("expected disabled rules from CLI, got %v", result.Config.DisableRules)
	}
}

func TestLoad_Env(t *testing.T) {
	// Not parallel: modifies the environment.
	t.Setenv("NAPCHECK_CONVENTION", "rst")
	t.Setenv("NAPCHECK_IGNORE", "build/**, dist/**")
	t.Setenv("NAPCHECK_IGNORE_RECEIVER", "true")

	opts := isolated(t.TempDir())
	opts.IgnoreEnv = false

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Convention != config.ConventionRST {
		t.Errorf("expected convention from env, got %q", result.Config.Convention)
	}
	if len(result.Config.Ignore) != 2 || result.Config.Ignore[1] != "dist/**" {
		t.Errorf("unexpected ignore from env: %v", result.Config.Ignore)
	}
	if !result.Config.IgnoreReceiver {
		t.Error("expected ignore_receiver from env")
	}
}

func TestLoad_EnvInvalidBool(t *testing.T) {
	t.Setenv("NAPCHECK_IGNORE_RECEIVER", "maybe")

	opts := isolated(t.TempDir())
	opts.IgnoreEnv = false

	if _, err := Load(context.Background(), opts); err == nil {
		t.Fatal("expected error for invalid boolean")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"convention", "convention: numpy\n", "convention"},
		{"report level", "report_level: loud\n", "report_level"},
		{"rule severity", "rules:\n  NAP001:\n    severity: fatal\n", "rules.NAP001.severity"},
		{"ignore glob", "ignore: [\"src/[\"]\n", "ignore[0]"},
		{"extension", "extensions: [py]\n", "extensions[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			writeFile(t, filepath.Join(tmpDir, ".napcheck.yml"), tt.content)

			_, err := Load(context.Background(), isolated(tmpDir))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
}

func TestLoad_UnknownRuleWarns(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".napcheck.yml"), "rules:\n  NAP999:\n    enabled: false\n")

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "NAP999") {
		t.Errorf("expected unknown rule warning, got %v", result.Warnings)
	}
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, isolated(t.TempDir())); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	enabled := true
	disabled := false
	errSev := "error"

	base := &config.Config{
		Convention: config.ConventionGoogle,
		Ignore:     []string{"a"},
		Rules: map[string]config.RuleConfig{
			"NAP001": {Enabled: &enabled, Options: map[string]any{"x": 1}},
		},
	}
	override := &config.Config{
		ReportLevel: config.ReportLevelSevere,
		Rules: map[string]config.RuleConfig{
			"NAP001": {Severity: &errSev, Options: map[string]any{"y": 2}},
			"NAP002": {Enabled: &disabled},
		},
	}

	got := merge(base, override)

	if got.Convention != config.ConventionGoogle || got.ReportLevel != config.ReportLevelSevere {
		t.Errorf("unexpected scalars: %q %q", got.Convention, got.ReportLevel)
	}
	if len(got.Ignore) != 1 {
		t.Errorf("nil override slice should keep base, got %v", got.Ignore)
	}

	nap001 := got.Rules["NAP001"]
	if nap001.Enabled == nil || !*nap001.Enabled || nap001.Severity == nil || *nap001.Severity != "error" {
		t.Errorf("NAP001 not deep merged: %+v", nap001)
	}
	if len(nap001.Options) != 2 {
		t.Errorf("options not merged: %v", nap001.Options)
	}
	if len(base.Rules["NAP001"].Options) != 1 {
		t.Error("merge mutated the base options")
	}
	if _, ok := got.Rules["NAP002"]; !ok {
		t.Error("NAP002 missing from merged rules")
	}
}

func TestExpandRuleKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		keys    []string
		want    []string
		wantErr bool
	}{
		{"id any case", []string{"nap002"}, []string{"NAP002"}, false},
		{"name", []string{"param-order"}, []string{"NAP004"}, false},
		{"alias", []string{"invalid-rst"}, []string{"NAP001"}, false},
		{"tag", []string{"params"}, []string{"NAP002", "NAP003", "NAP004"}, false},
		{"all", []string{"all"}, []string{"NAP001", "NAP002", "NAP003", "NAP004"}, false},
		{"dedup", []string{"NAP002", "params"}, []string{"NAP002", "NAP003", "NAP004"}, false},
		{"unknown", []string{"E501"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ExpandRuleKeys(lint.DefaultRegistry, tt.keys)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnvVars_Sorted(t *testing.T) {
	t.Parallel()

	vars := EnvVars()
	for i := 1; i < len(vars); i++ {
		if vars[i-1].Name >= vars[i].Name {
			t.Errorf("not sorted: %s before %s", vars[i-1].Name, vars[i].Name)
		}
	}
	for _, v := range vars {
		if !strings.HasPrefix(v.Name, EnvPrefix) || v.Description == "" {
			t.Errorf("malformed entry %+v", v)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"NAPCHECK_JOBS":             "3",
		"NAPCHECK_EXTENSIONS":       ".py, ,.pyi",
		"NAPCHECK_SEVERITY_DEFAULT": "error",
		"NAPCHECK_REPORT_LEVEL":     "",
		"HOME":                      "/nowhere",
	}
	lookup := func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}

	cfg := config.NewConfig()
	if err := applyEnv(cfg, lookup); err != nil {
		t.Fatalf("applyEnv() error = %v", err)
	}
	if cfg.Jobs != 3 {
		t.Errorf("expected jobs 3, got %d", cfg.Jobs)
	}
	if strings.Join(cfg.Extensions, ",") != ".py,.pyi" {
		t.Errorf("unexpected extensions %v", cfg.Extensions)
	}
	if cfg.SeverityDefault != "error" {
		t.Errorf("expected severity_default error, got %q", cfg.SeverityDefault)
	}
	if cfg.ReportLevel != config.ReportLevelWarning {
		t.Errorf("empty variable should keep the default, got %q", cfg.ReportLevel)
	}

	env["NAPCHECK_JOBS"] = "many"
	err := applyEnv(config.NewConfig(), lookup)
	if err == nil || !strings.Contains(err.Error(), "NAPCHECK_JOBS") {
		t.Errorf("expected an error naming NAPCHECK_JOBS, got %v", err)
	}
}

func TestLoad_ValidationErrorNamesFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ".napcheck.yml")
	writeFile(t, path, "severity_default: loud\n")

	_, err := Load(context.Background(), isolated(tmpDir))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.FilePath != path {
		t.Errorf("expected the error to name %s, got %q", path, verr.FilePath)
	}
	if !strings.HasPrefix(err.Error(), path+": severity_default: ") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestLoad_InvalidCLIValue(t *testing.T) {
	t.Parallel()

	opts := isolated(t.TempDir())
	opts.CLIConfig = &config.Config{Jobs: -1}

	_, err := Load(context.Background(), opts)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "jobs" || verr.FilePath != "" {
		t.Fatalf("expected a jobs error without a file, got %v", err)
	}
}

func TestLoad_DuplicateRuleKeys(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".napcheck.yml"), `
rules:
  NAP004:
    severity: info
  param-order:
    severity: error
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], `using "param-order"`) {
		t.Errorf("expected one duplicate warning, got %v", result.Warnings)
	}
	if sev := result.Config.Rules["NAP004"].Severity; sev == nil || *sev != "error" {
		t.Errorf("expected the later key in sorted order to win, got %v", sev)
	}
}
