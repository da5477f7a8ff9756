package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/napcheck/internal/configloader"
	"github.com/yaklabco/napcheck/internal/ui/pretty"
	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
	"github.com/yaklabco/napcheck/pkg/pyast"
	"github.com/yaklabco/napcheck/pkg/runner"
)

// stdinName is the logical path used for snippets read from stdin.
const stdinName = "<stdin>"

type checkDocstringFlags struct {
	file        string
	convention  string
	reportLevel string
}

func newCheckDocstringCommand(info BuildInfo) *cobra.Command {
	flags := &checkDocstringFlags{}

	cmd := &cobra.Command{
		Use:   "check-docstring",
		Short: "Show the normalized docstrings of a Python snippet and their findings",
		Long: `Read Python source from stdin (or --file), print each docstring as it
looks after normalization to reStructuredText, then print the findings.

Markup findings (NAP001) refer to lines of the normalized text, so seeing
it makes them much easier to understand.

Examples:
  napcheck check-docstring --file app/models.py
  pbpaste | napcheck check-docstring
  napcheck check-docstring --convention rst < legacy.py`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheckDocstring(cmd, flags, info)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "read the snippet from a file instead of stdin")
	cmd.Flags().StringVar(&flags.convention, "convention", "", "docstring convention: google, rst (default from config)")
	cmd.Flags().StringVar(&flags.reportLevel, "report-level", "", "minimum markup problem level reported (default from config)")

	return cmd
}

func runCheckDocstring(cmd *cobra.Command, flags *checkDocstringFlags, info BuildInfo) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	name, content, err := readSnippet(cmd.InOrStdin(), flags.file)
	if err != nil {
		return err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		ExplicitPath: configPath,
		CLIConfig: &config.Config{
			Convention:  config.Convention(flags.convention),
			ReportLevel: config.ReportLevel(flags.reportLevel),
		},
	})
	if err != nil {
		return errors.Join(ErrConfig, err)
	}
	cfg := loadResult.Config

	engine, err := runner.NewEngine(cfg, lint.DefaultRegistry, info.Origin())
	if err != nil {
		return errors.Join(ErrConfig, err)
	}

	file, err := engine.Parser.Parse(ctx, name, content)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	defer file.Close()

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, out))

	shown := writeNormalized(out, styles, file, engine.Normalizer)

	result, err := engine.LintTree(ctx, file, cfg)
	if err != nil {
		return fmt.Errorf("lint %s: %w", name, err)
	}

	if shown == 0 {
		fmt.Fprintln(out, styles.Dim.Render("no docstrings found"))
	}
	writeFindings(out, styles, file, result, cfg.RuleFormat)

	if len(result.Diagnostics) > 0 {
		return &ExitError{Code: ExitLintErrors}
	}
	return nil
}

// readSnippet returns the logical name and content of the snippet.
func readSnippet(stdin io.Reader, path string) (string, []byte, error) {
	if path == "" || path == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return stdinName, content, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	return path, content, nil
}

// writeNormalized prints every declaration's normalized docstring and
// returns how many were printed.
func writeNormalized(out io.Writer, styles *pretty.Styles, file *pyast.File, normalizer lint.Normalizer) int {
	shown := 0
	for decl := range pyast.Declarations(file) {
		if decl.Docstring == "" {
			continue
		}
		shown++

		fmt.Fprintf(out, "%s %s %s\n",
			styles.Heading.Render(decl.Kind.String()),
			styles.Declaration.Render(decl.Name),
			styles.Location.Render(fmt.Sprintf("(line %d)", decl.Line)),
		)

		lines := strings.Split(normalizer.Normalize(decl.Docstring), "\n")
		width := len(fmt.Sprint(len(lines)))
		for i, line := range lines {
			fmt.Fprintf(out, "  %s  %s\n",
				styles.Dim.Render(fmt.Sprintf("%*d", width, i)),
				styles.Code.Render(line),
			)
		}
		fmt.Fprintln(out)
	}
	return shown
}

func writeFindings(out io.Writer, styles *pretty.Styles, file *pyast.File, result *lint.FileResult, ruleFormat config.RuleFormat) {
	for i := range result.Diagnostics {
		diag := &result.Diagnostics[i]
		fmt.Fprint(out, styles.Diagnostic(diag, pretty.DiagnosticView{RuleFormat: ruleFormat, Source: file.Line(diag.Line)}))
	}
	for _, declErr := range result.Errors {
		fmt.Fprintf(out, "  %s  %s\n",
			styles.Location.Render(fmt.Sprintf("%s:%d", file.Path, declErr.Line)),
			styles.Warning.Render(declErr.Error()),
		)
	}
	if len(result.Diagnostics) == 0 && len(result.Errors) == 0 {
		fmt.Fprintln(out, styles.Success.Render("No issues found"))
	}
}
