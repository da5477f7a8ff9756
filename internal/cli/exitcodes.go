package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/yaklabco/napcheck/pkg/runner"
)

// Exit codes for napcheck.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitLintErrors indicates lint completed but found errors, or some
	// files could not be parsed.
	ExitLintErrors = 1

	// ExitLintWarnings indicates lint completed but found warnings (when strict mode).
	ExitLintWarnings = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrLintIssuesFound is returned when lint issues are found.
	ErrLintIssuesFound = errors.New("lint issues found")

	// ErrConfig marks configuration loading and validation failures.
	ErrConfig = errors.New("configuration error")

	// ErrUsage marks invalid flag values.
	ErrUsage = errors.New("invalid usage")
)

// ExitError carries the process exit code chosen for a lint outcome.
type ExitError struct {
	Code int
}

// Error implements error.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%v (exit code %d)", ErrLintIssuesFound, e.Code)
}

// Unwrap lets errors.Is match ErrLintIssuesFound.
func (e *ExitError) Unwrap() error {
	return ErrLintIssuesFound
}

// ExitCodeFromResult determines the exit code based on result and strict mode.
// Files that failed to parse count as errors, the way flake8 fails on E999.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}

	stats := result.Stats
	if stats.Diagnostics.Errors > 0 || stats.FilesErrored > 0 {
		return ExitLintErrors
	}

	if strict && stats.Diagnostics.Warnings > 0 {
		return ExitLintWarnings
	}

	return ExitSuccess
}

// ExitCodeForError maps a command error to a process exit code.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, ErrLintIssuesFound):
		return ExitLintErrors
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
