package configloader

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
	"github.com/yaklabco/napcheck/pkg/runner"
)

// ValidationError is a problem with one configuration field.
type ValidationError struct {
	Field    string // such as "rules.NAP001.severity"
	Value    any
	Message  string
	FilePath string // empty for flags and environment variables
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{e.FilePath, e.Field, e.Message} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ": ")
}

// ValidationResult separates problems that stop a run from those that
// are only reported.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError // unknown rules
}

// Valid reports whether there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns the first error, or nil.
func (r *ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return &r.Errors[0]
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// fieldCheck reports problems of one setting.
type fieldCheck func(cfg *config.Config, r *ValidationResult)

var fieldChecks = []fieldCheck{
	oneOf("convention", func(c *config.Config) string { return string(c.Convention) }, "google", "rst"),
	oneOf("report_level", func(c *config.Config) string { return string(c.ReportLevel) }, "info", "warning", "error", "severe"),
	oneOf("severity_default", func(c *config.Config) string { return c.SeverityDefault }, "error", "warning", "info"),
	oneOf("format", func(c *config.Config) string { return string(c.Format) }, "text", "flake8", "json", "sarif", "summary"),
	oneOf("rule_format", func(c *config.Config) string { return string(c.RuleFormat) }, "id", "name", "combined"),
	checkJobs,
	checkExtensions,
	checkIgnore,
}

// oneOf accepts an unset value or one of allowed.
func oneOf(field string, get func(*config.Config) string, allowed ...string) fieldCheck {
	return func(cfg *config.Config, r *ValidationResult) {
		v := get(cfg)
		if v == "" || slices.Contains(allowed, v) {
			return
		}
		r.fail(field, v, "invalid value %q; must be one of: %s", v, strings.Join(allowed, ", "))
	}
}

func checkJobs(cfg *config.Config, r *ValidationResult) {
	if cfg.Jobs < 0 {
		r.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means one per CPU)")
	}
}

func checkExtensions(cfg *config.Config, r *ValidationResult) {
	for i, ext := range cfg.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			r.fail(fmt.Sprintf("extensions[%d]", i), ext, "invalid extension %q; must start with a dot, like .py", ext)
		}
	}
}

// checkIgnore compiles each pattern with the glob dialect discovery uses.
func checkIgnore(cfg *config.Config, r *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		if _, err := runner.CompilePatterns([]string{pattern}); err != nil {
			r.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

// ValidateWithRegistry checks cfg. Rule entries the registry does not know
// are warnings; a nil registry skips that check.
func ValidateWithRegistry(cfg *config.Config, registry *lint.Registry) *ValidationResult {
	r := &ValidationResult{}
	if cfg == nil {
		return r
	}
	for _, check := range fieldChecks {
		check(cfg, r)
	}

	for code, entry := range cfg.Rules {
		field := "rules." + code
		if registry != nil {
			if _, ok := registry.Get(code); !ok {
				r.Warnings = append(r.Warnings, ValidationError{
					Field: field, Value: code, Message: fmt.Sprintf("unknown rule %q; it will be ignored", code),
				})
			}
		}
		if entry.Severity != nil && !config.Severity(*entry.Severity).IsValid() {
			r.fail(field+".severity", *entry.Severity,
				"invalid value %q; must be one of: error, warning, info", *entry.Severity)
		}
	}
	return r
}

// inFile attributes every finding to path.
func (r *ValidationResult) inFile(path string) *ValidationResult {
	for i := range r.Errors {
		r.Errors[i].FilePath = path
	}
	for i := range r.Warnings {
		r.Warnings[i].FilePath = path
	}
	return r
}
