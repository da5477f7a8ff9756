package config

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// Template formats accepted by GenerateTemplate.
const (
	TemplateYAML      = "yaml"
	TemplatePyproject = "pyproject"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full includes all rules with their documentation.
	// If false, generates a minimal template.
	Full bool

	// Format is the output format: "yaml" or "pyproject".
	Format string

	// IncludeRules is a list of rule IDs to include.
	// If empty, all rules are included.
	IncludeRules []string

	// Rules overrides the default enabled state and severity of rules,
	// keyed by rule ID. Overridden rules are always written out.
	Rules map[string]RuleConfig
}

// RuleInfo contains rule metadata for template generation.
type RuleInfo struct {
	ID          string
	Name        string
	Description string
	Enabled     bool
	Severity    Severity
	Tags        []string
}

// RuleInfoProvider is a function that returns rule information.
// This allows decoupling from the lint package to avoid circular imports.
type RuleInfoProvider func() []RuleInfo

// DefaultRuleInfoProvider is set by the rules package during init.
//
//nolint:gochecknoglobals // Intentional extension point for rule info.
var DefaultRuleInfoProvider RuleInfoProvider

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	switch opts.Format {
	case "", TemplateYAML:
		if opts.Full {
			return generateFullTemplate(opts), nil
		}
		return generateMinimalTemplate(opts), nil
	case TemplatePyproject:
		return generatePyprojectTemplate(opts)
	default:
		return nil, fmt.Errorf("unknown template format %q", opts.Format)
	}
}

// generateMinimalTemplate creates a minimal commented template.
func generateMinimalTemplate(opts TemplateOptions) []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Docstring convention: google or rst
convention: google

# Minimum RST problem level reported by NAP001: info, warning, error, severe
# report_level: warning

# Leave self/cls out of the parameter comparison
# ignore_receiver: false

# File extensions treated as Python sources
# extensions:
#   - .py
#   - .pyi

# File patterns to ignore (glob patterns)
# ignore:
#   - "build/**"
#   - ".venv/**"

# Rule-specific configuration
# rules:
#   NAP004:
#     enabled: false
#   NAP001:
#     severity: error
`)

	if len(opts.Rules) > 0 {
		buf.WriteString("\nrules:\n")
		for _, rule := range selectRules(nil) {
			if rc, ok := opts.Rules[rule.ID]; ok {
				rule = applyOverride(rule, rc)
				fmt.Fprintf(&buf, "  %s: # %s\n", rule.ID, rule.Name)
				fmt.Fprintf(&buf, "    enabled: %t\n", rule.Enabled)
				fmt.Fprintf(&buf, "    severity: %s\n", rule.Severity)
			}
		}
	}

	return buf.Bytes()
}

// generateFullTemplate creates a full template with all rules documented.
func generateFullTemplate(opts TemplateOptions) []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`
#
# This template includes all available rules with their default settings.
# Uncomment and modify settings as needed.

# Docstring convention: google or rst
convention: google

# Minimum RST problem level reported by NAP001: info, warning, error, severe
report_level: warning

# Leave self/cls out of the parameter comparison
ignore_receiver: false

# Default severity for all rules: error, warning, or info
severity_default: warning

# File extensions treated as Python sources
extensions:
  - .py
  - .pyi

# File patterns to ignore (glob patterns)
ignore:
  - ".venv/**"
  - "build/**"
  - ".tox/**"

# Rule-specific configuration
rules:
`)

	for _, rule := range selectRules(opts.IncludeRules) {
		if rc, ok := opts.Rules[rule.ID]; ok {
			rule = applyOverride(rule, rc)
		}
		fmt.Fprintf(&buf, "\n  # %s: %s\n", rule.ID, rule.Name)
		fmt.Fprintf(&buf, "  # %s\n", wrapComment(rule.Description, commentWrapWidth))
		if len(rule.Tags) > 0 {
			fmt.Fprintf(&buf, "  # Tags: %s\n", strings.Join(rule.Tags, ", "))
		}
		fmt.Fprintf(&buf, "  %s:\n", rule.ID)
		fmt.Fprintf(&buf, "    enabled: %t\n", rule.Enabled)
		fmt.Fprintf(&buf, "    severity: %s\n", rule.Severity)
	}

	return buf.Bytes()
}

// generatePyprojectTemplate renders the defaults as a [tool.napcheck] table.
func generatePyprojectTemplate(opts TemplateOptions) ([]byte, error) {
	cfg := NewConfig()
	for _, rule := range selectRules(opts.IncludeRules) {
		rc, overridden := opts.Rules[rule.ID]
		if !opts.Full && !overridden {
			continue
		}
		if overridden {
			rule = applyOverride(rule, rc)
		}
		enabled := rule.Enabled
		severity := string(rule.Severity)
		cfg.Rules[rule.ID] = RuleConfig{Enabled: &enabled, Severity: &severity}
	}

	body, err := cfg.ToTOML()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString("\n\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// applyOverride returns rule with the enabled state and severity set in rc.
func applyOverride(rule RuleInfo, rc RuleConfig) RuleInfo {
	if rc.Enabled != nil {
		rule.Enabled = *rc.Enabled
	}
	if rc.Severity != nil {
		rule.Severity = Severity(*rc.Severity)
	}
	return rule
}

// selectRules returns the known rules sorted by ID, restricted to ids when
// ids is non-empty.
func selectRules(ids []string) []RuleInfo {
	rules := getRuleInfos()

	if len(ids) > 0 {
		rules = slices.DeleteFunc(rules, func(r RuleInfo) bool {
			return !slices.Contains(ids, r.ID)
		})
	}

	slices.SortFunc(rules, func(a, b RuleInfo) int {
		return strings.Compare(a.ID, b.ID)
	})
	return rules
}

// getRuleInfos returns information about all registered rules.
func getRuleInfos() []RuleInfo {
	if DefaultRuleInfoProvider != nil {
		return DefaultRuleInfoProvider()
	}

	// Fallback to the static list of built-in rules.
	return []RuleInfo{
		{
			ID: "NAP001", Name: "rst-syntax", Enabled: true, Severity: SeverityWarning,
			Description: "The normalized docstring must be valid reStructuredText",
			Tags:        []string{"rst", "docstring"},
		},
		{
			ID: "NAP002", Name: "param-not-in-signature", Enabled: true, Severity: SeverityWarning,
			Description: "Documented parameters must exist in the function signature",
			Tags:        []string{"params", "docstring"},
		},
		{
			ID: "NAP003", Name: "param-not-documented", Enabled: true, Severity: SeverityWarning,
			Description: "Every parameter of the function must be documented",
			Tags:        []string{"params", "docstring"},
		},
		{
			ID: "NAP004", Name: "param-order", Enabled: true, Severity: SeverityWarning,
			Description: "Documented parameters must follow the signature order",
			Tags:        []string{"params", "docstring"},
		},
	}
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	currentLine := ""

	for _, word := range strings.Fields(text) {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n  # ")
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# napcheck configuration
# See: https://github.com/yaklabco/napcheck`
}
