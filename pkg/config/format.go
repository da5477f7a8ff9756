package config

import (
	"fmt"
	"strings"
)

// OutputFormats lists the formats napcheck can write, the default first.
func OutputFormats() []OutputFormat {
	return []OutputFormat{FormatText, FormatFlake8, FormatJSON, FormatSARIF, FormatSummary}
}

// ParseOutputFormat accepts a format name in any case. An empty name
// selects text output.
func ParseOutputFormat(name string) (OutputFormat, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatText, nil
	}
	if f := OutputFormat(name); f.IsValid() {
		return f, nil
	}

	valid := make([]string, 0, len(OutputFormats()))
	for _, f := range OutputFormats() {
		valid = append(valid, string(f))
	}
	return "", fmt.Errorf("unknown format %q; valid formats: %s", name, strings.Join(valid, ", "))
}

// Label renders a rule code and name the way f asks for. Unset formats
// and rules without a name are shown by their code.
func (f RuleFormat) Label(code, name string) string {
	switch {
	case name == "":
		return code
	case f == RuleFormatCombined:
		return code + "/" + name
	case f == RuleFormatName:
		return name
	default:
		return code
	}
}
