package reporter

import "github.com/yaklabco/napcheck/pkg/config"

// Format names an output format. It is the configuration's type, so the
// format read from napcheck.toml or --format needs no conversion.
type Format = config.OutputFormat

// Output formats supported by the reporter.
const (
	FormatText    = config.FormatText
	FormatFlake8  = config.FormatFlake8
	FormatJSON    = config.FormatJSON
	FormatSARIF   = config.FormatSARIF
	FormatSummary = config.FormatSummary
)

// ParseFormat resolves a --format value. An empty value selects text.
func ParseFormat(name string) (Format, error) {
	return config.ParseOutputFormat(name)
}
