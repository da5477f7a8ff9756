package configloader

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"runtime"

	"github.com/yaklabco/napcheck/pkg/config"
)

// PyprojectFile may carry napcheck settings in a [tool.napcheck] table.
const PyprojectFile = "pyproject.toml"

// Scope says where a configuration file was found.
type Scope string

// Scopes in precedence order, lowest first.
const (
	ScopeSystem   Scope = "system"
	ScopeUser     Scope = "user"
	ScopeProject  Scope = "project"
	ScopeExplicit Scope = "explicit"
)

// Source is one configuration file.
type Source struct {
	Scope Scope
	Path  string
}

// projectFiles are searched for in each directory before pyproject.toml.
var projectFiles = []string{".napcheck.yml", ".napcheck.yaml", "napcheck.yml", "napcheck.yaml"}

// scopeFiles are the names a system or user config directory may hold.
var scopeFiles = []string{"config.yaml", "config.yml"}

var vcsMarkers = []string{".git", ".hg", ".svn"}

// Discover returns the system, user and project configuration files that
// exist for workDir, lowest precedence first.
func Discover(ctx context.Context, workDir string) ([]Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discover config: %w", err)
	}

	var sources []Source
	if path := firstFile(systemDir(), scopeFiles); path != "" {
		sources = append(sources, Source{ScopeSystem, path})
	}
	if dir := userDir(); dir != "" {
		if path := firstFile(dir, scopeFiles); path != "" {
			sources = append(sources, Source{ScopeUser, path})
		}
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}
	if project != "" {
		sources = append(sources, Source{ScopeProject, project})
	}
	return sources, nil
}

func systemDir() string {
	if runtime.GOOS == "windows" {
		base := os.Getenv("ProgramData")
		if base == "" {
			base = `C:\ProgramData`
		}
		return filepath.Join(base, "napcheck")
	}
	return "/etc/napcheck"
}

// userDir follows XDG, falling back to ~/.config.
func userDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "napcheck")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "napcheck")
}

// FindProjectConfig walks up from startDir to the nearest project config.
//
// A dedicated .napcheck.yml wins over pyproject.toml in the same directory,
// and a pyproject.toml only counts when it has a [tool.napcheck] table.
// The walk ends at a VCS root, the home directory or the filesystem root.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", startDir, err)
	}

	for dir := range projectDirs(start) {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("find project config: %w", err)
		}
		if path := firstFile(dir, projectFiles); path != "" {
			return path, nil
		}
		if pyproject := filepath.Join(dir, PyprojectFile); hasToolTable(pyproject) {
			return pyproject, nil
		}
	}
	return "", nil
}

// projectDirs yields dir and its parents up to the project boundary.
func projectDirs(dir string) iter.Seq[string] {
	home, _ := os.UserHomeDir()
	return func(yield func(string) bool) {
		for {
			if !yield(dir) || isVCSRoot(dir) || dir == home {
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	}
}

func firstFile(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// hasToolTable treats unreadable or malformed files as having no table.
func hasToolTable(path string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	cfg, err := config.FromPyproject(content)
	return err == nil && cfg != nil
}

func isVCSRoot(dir string) bool {
	for _, marker := range vcsMarkers {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}
