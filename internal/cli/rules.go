package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/napcheck/internal/configloader"
	"github.com/yaklabco/napcheck/internal/logging"
	"github.com/yaklabco/napcheck/internal/ui/pretty"
	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
	"github.com/yaklabco/napcheck/pkg/lint/rules"
)

type rulesFlags struct {
	ruleFormat string
	format     string
	tag        string
	explain    string
	packs      bool
}

const formatJSON = "json"

// ruleInfo represents a rule in JSON output.
type ruleInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	Enabled     bool     `json:"enabled"`
	Tags        []string `json:"tags"`
}

func newRulesCommand() *cobra.Command {
	flags := &rulesFlags{}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List available lint rules",
		Long: `List all available lint rules with their codes, names, default
severity and tags.

Examples:
  napcheck rules                    List every rule
  napcheck rules --tag params       List the parameter rules
  napcheck rules --explain NAP004   Show the documentation of one rule
  napcheck rules --packs            List the built-in rule packs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRules(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.ruleFormat, "rule-format", string(config.RuleFormatID),
		"rule identifier format in output: name, id, or combined")
	cmd.Flags().StringVar(&flags.format, "format", "text",
		"output format: text, json")
	cmd.Flags().StringVar(&flags.tag, "tag", "", "only list rules carrying this tag")
	cmd.Flags().StringVar(&flags.explain, "explain", "", "show the documentation of a rule (code, name or alias)")
	cmd.Flags().BoolVar(&flags.packs, "packs", false, "list the built-in rule packs")

	return cmd
}

func runRules(cmd *cobra.Command, flags *rulesFlags) error {
	registry := lint.DefaultRegistry
	out := cmd.OutOrStdout()

	if flags.explain != "" {
		return explainRule(cmd, registry, flags.explain)
	}
	if flags.packs {
		return listPacks(out)
	}

	ruleFormat := config.RuleFormat(flags.ruleFormat)
	if !ruleFormat.IsValid() {
		return errors.Join(ErrUsage, fmt.Errorf("invalid rule format %q", flags.ruleFormat))
	}

	selected := registry.Rules()
	if flags.tag != "" {
		ids := configloader.RulesWithTag(registry, flags.tag)
		if len(ids) == 0 {
			return errors.Join(ErrUsage, fmt.Errorf("unknown tag %q (known: %s)",
				flags.tag, strings.Join(configloader.Tags(registry), ", ")))
		}
		selected = selected[:0:0]
		for _, id := range ids {
			if rule, ok := registry.GetByID(id); ok {
				selected = append(selected, rule)
			}
		}
	}

	switch flags.format {
	case formatJSON:
		return outputRulesJSON(out, selected)
	case "text":
	default:
		return errors.Join(ErrUsage, fmt.Errorf("invalid format %q: must be text or json", flags.format))
	}

	logger := logging.NewInteractive()
	logger.SetOutput(out)

	if len(selected) == 0 {
		logger.Info("no rules registered")
		return nil
	}

	logger.Info("available rules")
	for _, rule := range selected {
		logger.Info(ruleFormat.Label(rule.ID(), rule.Name()),
			logging.FieldSeverity, rule.DefaultSeverity(),
			logging.FieldTags, strings.Join(rule.Tags(), ","),
			logging.FieldDescription, rule.Description(),
		)
	}

	return nil
}

// explainRule renders the documentation page of one rule.
func explainRule(cmd *cobra.Command, registry *lint.Registry, key string) error {
	id, _, ok := registry.Resolve(key)
	if !ok {
		return errors.Join(ErrUsage, fmt.Errorf("unknown rule %q", key))
	}

	doc, ok := rules.Explain(id)
	if !ok {
		rule, _ := registry.GetByID(id)
		doc = fmt.Sprintf("# %s %s\n\n%s\n", rule.ID(), rule.Name(), rule.Description())
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, out))

	_, err = io.WriteString(out, styles.RenderMarkdown([]byte(doc), pretty.TerminalWidth(out)))
	return err
}

// listPacks prints the built-in rule packs with their rule settings.
func listPacks(out io.Writer) error {
	logger := logging.NewInteractive()
	logger.SetOutput(out)

	for _, pack := range rules.Packs() {
		logger.Info(pack.Name, logging.FieldDescription, pack.Description)
		for _, rule := range lint.DefaultRegistry.Rules() {
			if level, ok := pack.Levels[rule.ID()]; ok {
				logger.Info("  "+rule.ID(), logging.FieldName, rule.Name(), logging.FieldSeverity, level)
			}
		}
	}
	return nil
}

// outputRulesJSON writes rules as a JSON array.
func outputRulesJSON(out io.Writer, selected []lint.Rule) error {
	infos := make([]ruleInfo, 0, len(selected))
	for _, rule := range selected {
		infos = append(infos, ruleInfo{
			ID:          rule.ID(),
			Name:        rule.Name(),
			Description: rule.Description(),
			Severity:    string(rule.DefaultSeverity()),
			Enabled:     rule.DefaultEnabled(),
			Tags:        rule.Tags(),
		})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}
	return nil
}
