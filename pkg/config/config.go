// Package config defines core configuration types for napcheck.
// These types are pure data structures with no dependency on the loaders that fill them.
package config

import "slices"

// Severity represents the severity level of a lint diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// IsValid reports whether s is a known severity.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	default:
		return false
	}
}

// RuleConfig holds per-rule configuration options.
type RuleConfig struct {
	Enabled  *bool          `yaml:"enabled" toml:"enabled"`
	Severity *string        `yaml:"severity" toml:"severity"`
	Options  map[string]any `yaml:"options" toml:"options"`
}

// Convention names the docstring style that is normalized before checking.
type Convention string

const (
	// ConventionGoogle converts Google-style sections to RST field lists.
	ConventionGoogle Convention = "google"
	// ConventionRST checks docstrings that are already written in RST.
	ConventionRST Convention = "rst"
)

// IsValid reports whether c is a known convention.
func (c Convention) IsValid() bool {
	switch c {
	case ConventionGoogle, ConventionRST:
		return true
	default:
		return false
	}
}

// ReportLevel is the minimum RST problem level that NAP001 reports.
type ReportLevel string

const (
	ReportLevelInfo    ReportLevel = "info"
	ReportLevelWarning ReportLevel = "warning"
	ReportLevelError   ReportLevel = "error"
	ReportLevelSevere  ReportLevel = "severe"
)

// IsValid reports whether l is a known report level.
func (l ReportLevel) IsValid() bool {
	switch l {
	case ReportLevelInfo, ReportLevelWarning, ReportLevelError, ReportLevelSevere:
		return true
	default:
		return false
	}
}

// OutputFormat specifies the output format for diagnostics.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatFlake8  OutputFormat = "flake8"
	FormatJSON    OutputFormat = "json"
	FormatSARIF   OutputFormat = "sarif"
	FormatSummary OutputFormat = "summary"
)

// IsValid returns true if the output format is known.
func (f OutputFormat) IsValid() bool {
	return slices.Contains(OutputFormats(), f)
}

// RuleFormat controls how rule identifiers appear in output.
type RuleFormat string

const (
	RuleFormatName     RuleFormat = "name"     // "param-not-in-signature"
	RuleFormatID       RuleFormat = "id"       // "NAP002"
	RuleFormatCombined RuleFormat = "combined" // "NAP002/param-not-in-signature"
)

// IsValid returns true if the rule format is known.
func (f RuleFormat) IsValid() bool {
	switch f {
	case RuleFormatName, RuleFormatID, RuleFormatCombined:
		return true
	default:
		return false
	}
}

// SummaryOrder controls the order of tables in summary output.
type SummaryOrder string

const (
	// SummaryOrderRules shows rules table first (default).
	SummaryOrderRules SummaryOrder = "rules"
	// SummaryOrderFiles shows files table first.
	SummaryOrderFiles SummaryOrder = "files"
)

// IsValid returns true if the summary order is valid.
func (s SummaryOrder) IsValid() bool {
	switch s {
	case SummaryOrderRules, SummaryOrderFiles:
		return true
	default:
		return false
	}
}

// DefaultExtensions are the file extensions linted when none are configured.
func DefaultExtensions() []string {
	return []string{".py", ".pyi"}
}

// Config is the root configuration structure for napcheck.
type Config struct {
	// Convention selects the docstring normalizer ("google" or "rst").
	Convention Convention `yaml:"convention" toml:"convention"`

	// ReportLevel is the minimum RST problem level reported by NAP001.
	ReportLevel ReportLevel `yaml:"report_level" toml:"report_level"`

	// IgnoreReceiver drops a leading self or cls parameter of methods
	// before parameters are compared with the docstring.
	IgnoreReceiver bool `yaml:"ignore_receiver" toml:"ignore_receiver"`

	// SeverityDefault is the default severity for rules that don't specify one.
	SeverityDefault string `yaml:"severity_default" toml:"severity_default"`

	// Rules contains per-rule configuration keyed by rule ID.
	Rules map[string]RuleConfig `yaml:"rules" toml:"rules"`

	// Ignore contains glob patterns for files to ignore.
	Ignore []string `yaml:"ignore" toml:"ignore"`

	// Extensions lists the file extensions treated as Python sources.
	Extensions []string `yaml:"extensions" toml:"extensions"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `yaml:"-" toml:"-"`

	// RuleFormat controls how rule identifiers appear in output.
	RuleFormat RuleFormat `yaml:"-" toml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-" toml:"-"`

	// EnableRules contains rule IDs to explicitly enable.
	EnableRules []string `yaml:"-" toml:"-"`

	// DisableRules contains rule IDs to explicitly disable.
	DisableRules []string `yaml:"-" toml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Convention:      ConventionGoogle,
		ReportLevel:     ReportLevelWarning,
		SeverityDefault: string(SeverityWarning),
		Rules:           make(map[string]RuleConfig),
		Ignore:          nil,
		Extensions:      DefaultExtensions(),
		Format:          FormatText,
		RuleFormat:      RuleFormatID,
		Jobs:            0, // 0 means use GOMAXPROCS
	}
}
