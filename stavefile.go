//go:build stave

package main

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

const (
	binary  = "bin/napcheck"
	mainPkg = "./cmd/napcheck"
	// goldenPkg holds the per-rule fixtures under testdata/NAP00x.
	goldenPkg = "./pkg/lint/rules/..."
)

// Default builds the binary.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]any{
	"b":  Build,
	"t":  Test.Default,
	"g":  Test.Golden,
	"l":  Lint.Default,
	"c":  Check,
	"sm": Smoke,
}

type (
	Test  st.Namespace
	Lint  st.Namespace
	CI    st.Namespace
	Bench st.Namespace
)

// Build compiles bin/napcheck with version information when any source
// or rule document changed.
func Build() error {
	stale, err := target.Dir(binary, "cmd/", "pkg/", "internal/", "go.mod", "go.sum")
	if err != nil {
		return err
	}
	if !stale {
		fmt.Println(binary, "is up to date")
		return nil
	}
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binary, mainPkg)
}

// Check formats, lints and tests.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

// Smoke runs the built binary over the golden fixtures, which must report
// findings and so exit with status 1.
func Smoke() error {
	st.Deps(Build)
	out, err := exec.Command(binary, "lint", "--format", "flake8", "pkg/lint/rules/testdata").Output()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		return fmt.Errorf("expected exit status 1 with findings, got %v", err)
	}
	for _, code := range []string{"NAP001", "NAP002", "NAP003", "NAP004"} {
		if !strings.Contains(string(out), " "+code+" ") {
			return fmt.Errorf("smoke run reported no %s finding", code)
		}
	}
	fmt.Println("✓ every rule fires on its fixtures")
	return nil
}

// Install puts napcheck in $GOBIN.
func Install() error {
	return sh.RunV("go", "install", "-ldflags", ldflags(), mainPkg)
}

// Uninstall removes the binary Install placed.
func Uninstall() error {
	path := installedBinary()
	if err := sh.Rm(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// Clean removes build output and coverage files.
func Clean() error {
	for _, path := range []string{"bin", "coverage.out", "coverage.html"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// Deps downloads and tidies modules.
func Deps() error {
	if err := sh.RunV("go", "mod", "download"); err != nil {
		return err
	}
	return sh.RunV("go", "mod", "tidy")
}

// Default runs the whole suite through gotestsum with the race detector.
func (Test) Default() error {
	return gotestsum("pkgname-and-test-fails", "-race", "./...", "-coverprofile=coverage.out", "-covermode=atomic")
}

// Verbose is Default with every test name printed.
func (Test) Verbose() error {
	return gotestsum("standard-verbose", "-race", "./...")
}

// Golden runs the per-rule fixture tests only.
func (Test) Golden() error {
	return gotestsum("testname", goldenPkg, "-run", "TestGolden")
}

// UpdateGolden rewrites the .diags.txt files from current output. Review
// the diff before committing.
func (Test) UpdateGolden() error {
	return sh.RunV("go", "test", goldenPkg, "-run", "TestGolden", "-update")
}

// Coverage renders coverage.out as HTML.
func (Test) Coverage() error {
	st.Deps(Test.Default)
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Default runs golangci-lint with fixes applied.
func (Lint) Default() error {
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// CI runs golangci-lint without touching files.
func (Lint) CI() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt formats all Go code.
func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-w", ".")
}

// FmtCheck fails when gofmt would change a file.
func (Lint) FmtCheck() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if out != "" {
		return fmt.Errorf("unformatted files:\n%s\nrun 'stave lint:fmt'", out)
	}
	return nil
}

// Vet runs go vet.
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Gate is what CI runs on every pull request.
func (CI) Gate() {
	st.SerialDeps(Lint.FmtCheck, Lint.Vet, Lint.CI, Build, Test.Default, Smoke, CI.ModTidy)
	fmt.Println("✓ CI gate passed")
}

// ModTidy fails when go mod tidy would change go.mod or go.sum.
func (CI) ModTidy() error {
	files := []string{"go.mod", "go.sum"}
	before := make(map[string]string, len(files))
	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		before[name] = string(data)
	}

	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}

	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		if string(data) != before[name] {
			return fmt.Errorf("%s is not tidy; run 'go mod tidy' and commit", name)
		}
	}
	return nil
}

// Default runs the Go benchmarks.
func (Bench) Default() error {
	return gotestsum("pkgname-and-test-fails", "-run", "^$", "-bench", ".", "-benchmem", "./...")
}

// Compare times napcheck and the flake8 plugin on BENCH_DIR (default ".").
func (Bench) Compare() error {
	st.Deps(Build)
	if _, err := exec.LookPath("flake8"); err != nil {
		return errors.New("flake8 not found; install it with: pip install flake8")
	}

	dir := cmp.Or(os.Getenv("BENCH_DIR"), ".")
	timeRun("napcheck", binary, "lint", "--format", "flake8", dir)
	timeRun("flake8", "flake8", "--select", "NAP", dir)
	return nil
}

// timeRun prints how long a command took. Both linters exit non-zero when
// they report findings, so the status is ignored.
func timeRun(label, cmd string, args ...string) {
	start := time.Now()
	_, _ = sh.Output(cmd, args...)
	fmt.Printf("  %-9s %s\n", label, time.Since(start).Round(time.Millisecond))
}

func gotestsum(format string, args ...string) error {
	procs := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	cmdline := append([]string{"tool", "gotestsum", "-f", format, "--", "-p", procs}, args...)
	return sh.RunV("go", cmdline...)
}

func git(args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// ldflags injects version, commit and build date into cmd/napcheck.
func ldflags() string {
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s",
		cmp.Or(git("describe", "--tags", "--always", "--dirty"), "dev"),
		cmp.Or(git("rev-parse", "--short", "HEAD"), "none"),
		time.Now().UTC().Format(time.RFC3339),
	)
}

func installedBinary() string {
	if gobin := os.Getenv("GOBIN"); gobin != "" {
		return filepath.Join(gobin, "napcheck")
	}
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		home, _ := os.UserHomeDir()
		gopath = filepath.Join(home, "go")
	}
	return filepath.Join(gopath, "bin", "napcheck")
}
