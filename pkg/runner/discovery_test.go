package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/napcheck/pkg/runner"
)

// writeTree creates files (relative paths) with minimal Python content.
func writeTree(t *testing.T, dir string, files ...string) {
	t.Helper()
	for _, f := range files {
		writeFile(t, dir, f, "x = 1\n")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// relAll returns discovered paths relative to dir, slash separated.
func relAll(t *testing.T, dir string, files []string) []string {
	t.Helper()
	rel := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	return rel
}

func discover(t *testing.T, opts runner.Options) []string {
	t.Helper()
	files, err := runner.Discover(context.Background(), opts)
	require.NoError(t, err)
	return relAll(t, opts.WorkingDir, files)
}

func TestDiscover_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "mod.py", "x = 1\n")

	files, err := runner.Discover(context.Background(), runner.Options{Paths: []string{path}, WorkingDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestDiscover_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir,
		"app.py",
		"stubs.pyi",
		"README.md",
		"setup.cfg",
		"pkg/__init__.py",
		"pkg/core.py",
		"pkg/nested/deep.py",
	)

	got := discover(t, runner.Options{Paths: []string{"."}, WorkingDir: dir})
	assert.Equal(t, []string{
		"app.py",
		"pkg/__init__.py",
		"pkg/core.py",
		"pkg/nested/deep.py",
		"stubs.pyi",
	}, got)
}

func TestDiscover_DefaultsToCurrentDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "a.py")

	got := discover(t, runner.Options{WorkingDir: dir})
	assert.Equal(t, []string{"a.py"}, got)
}

func TestDiscover_CustomExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "a.py", "b.pyx", "c.PYX")

	got := discover(t, runner.Options{WorkingDir: dir, Extensions: []string{".pyx"}})
	assert.Equal(t, []string{"b.pyx", "c.PYX"}, got)
}

func TestDiscover_ExcludeGlobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir,
		"keep.py",
		"api/service_pb2.py",
		"build/lib/copy.py",
		"docs/conf.py",
		"tests/test_keep.py",
	)

	got := discover(t, runner.Options{
		WorkingDir:   dir,
		ExcludeGlobs: []string{"*_pb2.py", "build", "docs/**", "tests/test_*.py"},
	})
	assert.Equal(t, []string{"keep.py"}, got)
}

func TestDiscover_InvalidGlob(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir:   t.TempDir(),
		ExcludeGlobs: []string{"[unclosed"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[unclosed")
}

func TestDiscover_IncludeGlobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "src/pkg/a.py", "src/pkg/b.py", "scripts/tool.py")

	got := discover(t, runner.Options{WorkingDir: dir, IncludeGlobs: []string{"src/**"}})
	assert.Equal(t, []string{"src/pkg/a.py", "src/pkg/b.py"}, got)
}

func TestDiscover_HiddenFilesAndDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "visible.py", ".hidden.py", ".venv/lib/mod.py", ".tox/py312/x.py", "pkg/.cache/y.py")

	got := discover(t, runner.Options{WorkingDir: dir})
	assert.Equal(t, []string{"visible.py"}, got)
}

func TestDiscover_Vendored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir,
		"app.py",
		"vendor/lib/mod.py",
		"env/lib/python3.12/site-packages/six.py",
		"pkg/__pycache__/cached.py",
	)

	got := discover(t, runner.Options{WorkingDir: dir})
	assert.Equal(t, []string{"app.py"}, got)

	got = discover(t, runner.Options{WorkingDir: dir, IncludeVendored: true})
	assert.Equal(t, []string{
		"app.py",
		"env/lib/python3.12/site-packages/six.py",
		"pkg/__pycache__/cached.py",
		"vendor/lib/mod.py",
	}, got)
}

func TestDiscover_ExplicitVendoredFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "vendor/lib/mod.py")

	got := discover(t, runner.Options{WorkingDir: dir, Paths: []string{"vendor/lib/mod.py"}})
	assert.Equal(t, []string{"vendor/lib/mod.py"}, got, "files named explicitly are always linted")

	got = discover(t, runner.Options{
		WorkingDir:   dir,
		Paths:        []string{"vendor/lib/mod.py"},
		ExcludeGlobs: []string{"mod.py"},
	})
	assert.Empty(t, got, "ignore patterns still apply to explicit files")
}

func TestDiscover_Generated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "service.py")
	writeFile(t, dir, "service_pb2.py", "# Generated by the protocol buffer compiler.  DO NOT EDIT!\nx = 1\n")

	got := discover(t, runner.Options{WorkingDir: dir})
	assert.Equal(t, []string{"service.py"}, got)

	got = discover(t, runner.Options{WorkingDir: dir, IncludeGenerated: true})
	assert.Equal(t, []string{"service.py", "service_pb2.py"}, got)

	got = discover(t, runner.Options{WorkingDir: dir, Paths: []string{"service_pb2.py"}})
	assert.Equal(t, []string{"service_pb2.py"}, got)
}

func TestDiscover_Scripts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "bin/tool", "#!/usr/bin/env python3\nprint('hi')\n")
	writeFile(t, dir, "bin/deploy", "#!/bin/sh\necho hi\n")
	writeTree(t, dir, "lib.py")

	got := discover(t, runner.Options{WorkingDir: dir})
	assert.Equal(t, []string{"lib.py"}, got)

	got = discover(t, runner.Options{WorkingDir: dir, Scripts: true})
	assert.Equal(t, []string{"bin/tool", "lib.py"}, got)
}

func TestDiscover_DeterministicOrdering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "z.py", "a.py", "m/b.py", "m/a.py", "B.py")

	first := discover(t, runner.Options{WorkingDir: dir})
	for range 5 {
		assert.Equal(t, first, discover(t, runner.Options{WorkingDir: dir}))
	}
	assert.True(t, slices.IsSorted(first))
}

func TestDiscover_Deduplication(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "pkg/a.py")

	got := discover(t, runner.Options{WorkingDir: dir, Paths: []string{".", "pkg", "pkg/a.py", "./pkg/a.py"}})
	assert.Equal(t, []string{"pkg/a.py"}, got)
}

func TestDiscover_MultiplePaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "one/a.py", "two/b.py", "three/c.py")

	got := discover(t, runner.Options{WorkingDir: dir, Paths: []string{"two", "one"}})
	assert.Equal(t, []string{"one/a.py", "two/b.py"}, got)
}

func TestDiscover_NonExistentPath(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: t.TempDir(),
		Paths:      []string{"missing.py"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscover_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "a.py")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Discover(ctx, runner.Options{WorkingDir: dir})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_Symlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := writeFile(t, dir, "real.py", "x = 1\n")
	if err := os.Symlink(target, filepath.Join(dir, "link.py")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	got := discover(t, runner.Options{WorkingDir: dir})
	assert.Equal(t, []string{"link.py", "real.py"}, got)
}

func TestDiscover_DirectorySymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "real/mod.py")

	external := t.TempDir()
	writeTree(t, external, "external.py")

	if err := os.Symlink(external, filepath.Join(dir, "linked")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	got := discover(t, runner.Options{WorkingDir: dir})
	assert.Equal(t, []string{"real/mod.py"}, got)

	files, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir, FollowSymlinks: true})
	require.NoError(t, err)
	require.Len(t, files, 2)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.ElementsMatch(t, []string{"mod.py", "external.py"}, names)
}

func TestCompilePatterns(t *testing.T) {
	t.Parallel()

	set, err := runner.CompilePatterns([]string{"*_pb2.py", "./build/**", "migrations"})
	require.NoError(t, err)

	tests := []struct {
		path string
		file bool
		dir  bool
	}{
		{"api/service_pb2.py", true, true},
		{"service.py", false, false},
		{"build/lib/x.py", true, true},
		{"build", false, true},
		{"app/migrations", true, true},
		{"src/build/x.py", false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.file, set.MatchFile(tt.path), "MatchFile(%q)", tt.path)
		assert.Equal(t, tt.dir, set.MatchDir(tt.path), "MatchDir(%q)", tt.path)
	}
}
