// Package runner discovers Python files and lints them on a worker pool.
package runner

import "github.com/yaklabco/napcheck/pkg/config"

// Options selects the files of a run and how they are linted.
type Options struct {
	// Paths are files or directories, relative to WorkingDir. None means ".".
	Paths      []string
	WorkingDir string // the process working directory when empty

	// Extensions are lowercase with a leading dot. None means
	// config.DefaultExtensions.
	Extensions []string

	// IncludeGlobs, when set, keep only files matching one of them.
	// ExcludeGlobs drop files and whole directories; config ignore
	// patterns and --ignore both end up here.
	IncludeGlobs []string
	ExcludeGlobs []string

	FollowSymlinks   bool
	IncludeVendored  bool // site-packages, virtualenvs and vendor/
	IncludeGenerated bool // files marked as generated code
	Scripts          bool // extension-less files with a python shebang

	// Jobs caps the worker pool; zero or less uses one worker per CPU.
	Jobs int

	Config *config.Config
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return config.DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) targets() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
