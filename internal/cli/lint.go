package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/napcheck/internal/configloader"
	"github.com/yaklabco/napcheck/internal/logging"
	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
	"github.com/yaklabco/napcheck/pkg/reporter"
	"github.com/yaklabco/napcheck/pkg/runner"
)

type lintFlags struct {
	format           string
	ruleFormat       string
	summaryOrder     string
	convention       string
	reportLevel      string
	ignore           []string
	extensions       []string
	enable           []string
	disable          []string
	ignoreReceiver   bool
	includeVendored  bool
	includeGenerated bool
	scripts          bool
	followSymlinks   bool
	watch            bool
	debounce         time.Duration
	strict           bool
	noContext        bool
	compact          bool
	printConfig      bool
}

func newLintCommand(info BuildInfo) *cobra.Command {
	var cfg config.Config
	flags := &lintFlags{}

	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint Python docstrings",
		Long:  lintLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, &cfg, flags, info)
		},
	}

	addLintFlags(cmd, &cfg, flags)

	return cmd
}

const lintLongDescription = `Lint the docstrings of Python functions and classes.

By default, lints all .py and .pyi files in the current directory and
subdirectories, skipping hidden, vendored and generated code. Specify paths
to lint specific files or directories.

Examples:
  napcheck lint                          # Lint current directory
  napcheck lint src/                     # Lint src directory
  napcheck lint app/models.py            # Lint single file
  napcheck lint --format flake8          # flake8-compatible output
  napcheck lint --disable rst            # Skip markup checks (NAP001)
  napcheck lint --convention rst         # Docstrings are already RST
  napcheck lint --watch                  # Re-lint files as they change
  napcheck lint --print-config           # Show the merged configuration
  napcheck lint --format sarif > out.sarif`

func runLint(cmd *cobra.Command, args []string, cfg *config.Config, flags *lintFlags, info BuildInfo) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.FromContext(ctx)
	registry := lint.DefaultRegistry

	if err := applyLintFlags(cmd, cfg, flags, registry); err != nil {
		return err
	}

	// Get the explicit config path from the root command's persistent flag.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		Registry:     registry,
		CLIConfig:    cfg,
	})
	if err != nil {
		return errors.Join(ErrConfig, err)
	}

	finalCfg := loadResult.Config

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}
	if flags.printConfig {
		return printEffectiveConfig(cmd, finalCfg, loadResult.LoadedFrom)
	}
	logger.Debug("configuration loaded",
		logging.FieldConvention, finalCfg.Convention,
		logging.FieldReportLevel, finalCfg.ReportLevel,
		logging.FieldJobs, finalCfg.Jobs,
	)

	engine, err := runner.NewEngine(finalCfg, registry, info.Origin())
	if err != nil {
		return errors.Join(ErrConfig, err)
	}
	lintRunner := runner.New(lint.NewPipeline(engine))

	runOpts := runner.Options{
		Paths:            args,
		WorkingDir:       workDir,
		Extensions:       finalCfg.Extensions,
		ExcludeGlobs:     finalCfg.Ignore,
		FollowSymlinks:   flags.followSymlinks,
		IncludeVendored:  flags.includeVendored,
		IncludeGenerated: flags.includeGenerated,
		Scripts:          flags.scripts,
		Jobs:             finalCfg.Jobs,
		Config:           finalCfg,
	}

	// Get color mode from persistent flag.
	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	format, err := reporter.ParseFormat(string(finalCfg.Format))
	if err != nil {
		return errors.Join(ErrUsage, err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:       cmd.OutOrStdout(),
		ErrorWriter:  cmd.ErrOrStderr(),
		Format:       format,
		Color:        colorMode,
		ShowContext:  !flags.noContext,
		ShowSummary:  true,
		GroupByFile:  true,
		Compact:      flags.compact,
		RuleFormat:   finalCfg.RuleFormat,
		SummaryOrder: config.SummaryOrder(flags.summaryOrder),
		WorkingDir:   workDir,
		ToolVersion:  info.Version,
		Registry:     registry,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	ctx = logging.With(ctx, logging.FieldWorkingDir, runOpts.WorkingDir)
	logger = logging.FromContext(ctx)
	logger.Debug("starting lint run", logging.FieldPaths, runOpts.Paths, logging.FieldJobs, runOpts.Jobs)

	if flags.watch {
		return watchLint(ctx, lintRunner, runOpts, flags, rep)
	}

	result, err := lintRunner.Run(ctx, runOpts)
	if err != nil {
		return errors.Join(errors.New("lint run failed"), err)
	}

	logger.Debug("lint run finished",
		logging.FieldFiles, result.Stats.FilesProcessed,
		logging.FieldDeclarations, result.Stats.Declarations,
		logging.FieldDiagnostics, result.Stats.Diagnostics.Total(),
	)

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report results: %w", err)
	}

	if code := ExitCodeFromResult(result, flags.strict); code != ExitSuccess {
		return &ExitError{Code: code}
	}

	return nil
}

// watchLint reports every batch until the user interrupts the process.
func watchLint(ctx context.Context, lintRunner *runner.Runner, opts runner.Options, flags *lintFlags, rep reporter.Reporter) error {
	logger := logging.FromContext(ctx)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching for changes; press Ctrl+C to stop")

	err := lintRunner.Watch(ctx, opts, runner.WatchOptions{Debounce: flags.debounce}, func(result *runner.Result) {
		if _, reportErr := rep.Report(ctx, result); reportErr != nil {
			logger.Error("report failed", logging.FieldError, reportErr)
		}
	})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

// applyLintFlags copies explicitly set flags into the CLI config layer.
// Rule keys are expanded to IDs here so tags like "params" work on the
// command line.
func applyLintFlags(cmd *cobra.Command, cfg *config.Config, flags *lintFlags, registry *lint.Registry) error {
	cfg.Format = config.OutputFormat(flags.format)
	cfg.RuleFormat = config.RuleFormat(flags.ruleFormat)

	if cmd.Flags().Changed("convention") {
		cfg.Convention = config.Convention(flags.convention)
	}
	if cmd.Flags().Changed("report-level") {
		cfg.ReportLevel = config.ReportLevel(flags.reportLevel)
	}
	cfg.IgnoreReceiver = flags.ignoreReceiver
	cfg.Ignore = flags.ignore
	cfg.Extensions = flags.extensions

	enable, err := configloader.ExpandRuleKeys(registry, flags.enable)
	if err != nil {
		return errors.Join(ErrUsage, fmt.Errorf("--enable: %w", err))
	}
	disable, err := configloader.ExpandRuleKeys(registry, flags.disable)
	if err != nil {
		return errors.Join(ErrUsage, fmt.Errorf("--disable: %w", err))
	}
	cfg.EnableRules = enable
	cfg.DisableRules = disable

	if !config.SummaryOrder(flags.summaryOrder).IsValid() {
		return fmt.Errorf("%w: unknown summary order %q", ErrUsage, flags.summaryOrder)
	}
	return nil
}

func addLintFlags(cmd *cobra.Command, cfg *config.Config, flags *lintFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, flake8, json, sarif, summary")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringVar(&flags.convention, "convention", "google", "docstring convention: google, rst")
	cmd.Flags().StringVar(&flags.reportLevel, "report-level", "warning",
		"minimum markup problem level reported: info, warning, error, severe")
	cmd.Flags().BoolVar(&flags.ignoreReceiver, "ignore-receiver", false,
		"do not require self or cls to be documented")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.extensions, "extensions", nil, "file extensions to lint (default .py,.pyi)")
	cmd.Flags().StringSliceVar(&flags.enable, "enable", nil, "rule IDs, names or tags to enable (or all)")
	cmd.Flags().StringSliceVar(&flags.disable, "disable", nil, "rule IDs, names or tags to disable (or all)")
	cmd.Flags().BoolVar(&flags.includeVendored, "include-vendored", false, "lint vendored and virtualenv code")
	cmd.Flags().BoolVar(&flags.includeGenerated, "include-generated", false, "lint generated files")
	cmd.Flags().BoolVar(&flags.scripts, "scripts", false, "also lint extension-less files with a Python shebang")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "descend into symlinked directories")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-lint files as they change")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", runner.DefaultDebounce, "quiet period before re-linting in watch mode")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as errors for exit code")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")
	cmd.Flags().StringVar(&flags.ruleFormat, "rule-format", "id",
		"rule identifier format in output: id, name, or combined")
	cmd.Flags().StringVar(&flags.summaryOrder, "summary-order", "rules",
		"order of tables in summary output: rules, files")
	cmd.Flags().BoolVar(&flags.printConfig, "print-config", false,
		"print the merged configuration as YAML and exit without linting")
}

// printEffectiveConfig writes the merged configuration, headed by the files
// it was read from.
func printEffectiveConfig(cmd *cobra.Command, cfg *config.Config, sources []string) error {
	comment := "sources: defaults"
	if len(sources) > 0 {
		comment = "sources: " + strings.Join(sources, ", ")
	}
	if err := cfg.WriteYAML(cmd.OutOrStdout(), comment); err != nil {
		return fmt.Errorf("print config: %w", err)
	}
	return nil
}
