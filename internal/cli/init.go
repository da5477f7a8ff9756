package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/napcheck/internal/configloader"
	"github.com/yaklabco/napcheck/internal/logging"
	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/fsutil"
	"github.com/yaklabco/napcheck/pkg/lint"
	"github.com/yaklabco/napcheck/pkg/lint/rules"
)

const (
	defaultConfigFile    = ".napcheck.yml"
	defaultPyprojectFile = "pyproject.toml"
	pyprojectTableMarker = "[tool.napcheck]"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	full   bool
	format string
	output string
	pack   string
	rules  []string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new napcheck configuration",
		Long: `Create a .napcheck.yml configuration file in the current directory, or
append a [tool.napcheck] table to pyproject.toml, with sensible defaults.

Examples:
  napcheck init                      Create minimal .napcheck.yml
  napcheck init --full               Document every rule in the file
  napcheck init --pack strict        Start from the strict rule pack
  napcheck init --format pyproject   Append [tool.napcheck] to pyproject.toml
  napcheck init --output ci.yml      Write to a custom file path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "generate full template with all rules documented")
	cmd.Flags().StringVar(&flags.format, "format", config.TemplateYAML, "output format: yaml or pyproject")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "",
		"output file path (default: .napcheck.yml or pyproject.toml)")
	cmd.Flags().StringVar(&flags.pack, "pack", "", "start from a rule pack (see 'napcheck rules --packs')")
	cmd.Flags().StringSliceVar(&flags.rules, "rules", nil, "only document these rules or tags in a full template")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	ctx := cmd.Context()
	logger := logging.NewInteractive()
	logger.SetOutput(cmd.OutOrStdout())

	if flags.format != config.TemplateYAML && flags.format != config.TemplatePyproject {
		return errors.Join(ErrUsage, fmt.Errorf("invalid format %q: must be yaml or pyproject", flags.format))
	}

	opts := config.TemplateOptions{
		Full:   flags.full,
		Format: flags.format,
	}

	if flags.pack != "" {
		pack, ok := rules.PackByName(flags.pack)
		if !ok {
			return errors.Join(ErrUsage, fmt.Errorf("unknown pack %q (known: %v)", flags.pack, rules.PackNames()))
		}
		opts.Rules = pack.RuleConfigs()
	}

	if len(flags.rules) > 0 {
		ids, err := configloader.ExpandRuleKeys(lint.DefaultRegistry, flags.rules)
		if err != nil {
			return errors.Join(ErrUsage, fmt.Errorf("--rules: %w", err))
		}
		opts.IncludeRules = ids
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = defaultConfigFile
		if flags.format == config.TemplatePyproject {
			outputPath = defaultPyprojectFile
		}
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	content, err := config.GenerateTemplate(opts)
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if flags.format == config.TemplatePyproject {
		err = fsutil.AppendSection(ctx, absPath, content, pyprojectTableMarker)
	} else {
		err = fsutil.CreateFile(ctx, absPath, content, flags.force)
	}
	switch {
	case errors.Is(err, fsutil.ErrExists) && flags.format == config.TemplatePyproject:
		return errors.Join(ErrUsage, fmt.Errorf("%s already has a %s table", outputPath, pyprojectTableMarker))
	case errors.Is(err, fsutil.ErrExists):
		return errors.Join(ErrUsage, fmt.Errorf("file %q already exists; use --force to overwrite", outputPath))
	case err != nil:
		return fmt.Errorf("write config: %w", err)
	}

	if flags.format == config.TemplatePyproject {
		logger.Info("added "+pyprojectTableMarker, logging.FieldPath, outputPath)
	} else {
		logger.Info("created configuration file", logging.FieldPath, outputPath)
	}
	if flags.pack != "" {
		logger.Info("rule settings taken from pack", logging.FieldName, flags.pack)
	}
	logger.Info("run 'napcheck rules' to see all available rules")

	return nil
}
