package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yaklabco/napcheck/pkg/config"
)

// EnvPrefix starts the name of every napcheck environment variable.
const EnvPrefix = "NAPCHECK_"

// EnvVar is one supported environment variable.
type EnvVar struct {
	Name        string
	Description string
	set         func(cfg *config.Config, value string) error
}

// envVars is sorted by name.
var envVars = []EnvVar{
	{"NAPCHECK_CONVENTION", "docstring convention: google or rst",
		func(c *config.Config, v string) error { c.Convention = config.Convention(v); return nil }},
	{"NAPCHECK_EXTENSIONS", "comma-separated Python file extensions",
		func(c *config.Config, v string) error { c.Extensions = splitList(v); return nil }},
	{"NAPCHECK_FORMAT", "output format: text, flake8, json, sarif or summary",
		func(c *config.Config, v string) error { c.Format = config.OutputFormat(v); return nil }},
	{"NAPCHECK_IGNORE", "comma-separated glob patterns to skip",
		func(c *config.Config, v string) error { c.Ignore = splitList(v); return nil }},
	{"NAPCHECK_IGNORE_RECEIVER", "true to leave self and cls undocumented", setBool(func(c *config.Config) *bool { return &c.IgnoreReceiver })},
	{"NAPCHECK_JOBS", "parallel workers, 0 for one per CPU", setInt(func(c *config.Config) *int { return &c.Jobs })},
	{"NAPCHECK_REPORT_LEVEL", "lowest markup problem level reported: info, warning, error or severe",
		func(c *config.Config, v string) error { c.ReportLevel = config.ReportLevel(v); return nil }},
	{"NAPCHECK_SEVERITY_DEFAULT", "severity of every rule without its own: error, warning or info",
		func(c *config.Config, v string) error { c.SeverityDefault = v; return nil }},
}

// EnvVars lists the supported environment variables by name.
func EnvVars() []EnvVar {
	return envVars
}

// applyEnv sets the fields of cfg whose variable lookup finds non-empty.
func applyEnv(cfg *config.Config, lookup func(string) (string, bool)) error {
	for _, ev := range envVars {
		value, ok := lookup(ev.Name)
		if !ok || value == "" {
			continue
		}
		if err := ev.set(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", ev.Name, err)
		}
	}
	return nil
}

// processEnv is the lookup Load uses.
var processEnv = os.LookupEnv

func setBool(field func(*config.Config) *bool) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q (use true or false)", v)
		}
		*field(c) = b
		return nil
	}
}

func setInt(field func(*config.Config) *int) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		*field(c) = n
		return nil
	}
}

// splitList splits on commas, dropping blank entries.
func splitList(value string) []string {
	var items []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
