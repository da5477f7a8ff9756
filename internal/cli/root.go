// Package cli holds napcheck's cobra commands.
package cli

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/yaklabco/napcheck/internal/logging"
)

// BuildInfo is set by the linker at release time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Origin is the identity stamped on every diagnostic, such as
// "napcheck/1.2.0".
func (b BuildInfo) Origin() string {
	return "napcheck/" + cmp.Or(b.Version, "dev")
}

const rootLong = `napcheck checks Python docstrings.

Google-style docstrings are normalized to reStructuredText the way Sphinx
napoleon renders them. The result is checked for markup errors (NAP001), and
the documented parameters are compared with the function signature: names
missing from the signature (NAP002), undocumented parameters (NAP003) and
parameters documented out of order (NAP004). Codes and messages match the
flake8 plugin, and --format flake8 prints the same lines flake8 would.`

var colorModes = []string{"auto", "always", "never"}

// globalFlags are shared by every subcommand, which read them back by name.
type globalFlags struct {
	debug      bool
	configPath string
	color      string
}

func (g *globalFlags) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.BoolVar(&g.debug, "debug", false, "enable debug logging")
	flags.StringVar(&g.configPath, "config", "", "path to config file (.yml, .yaml, .toml or pyproject.toml)")
	flags.StringVar(&g.color, "color", "auto", "colorize output: auto, always, never")
}

// setup runs before any subcommand: it checks the global flags and puts
// the logger in the command's context.
func (g *globalFlags) setup(cmd *cobra.Command, _ []string) error {
	if !slices.Contains(colorModes, g.color) {
		return fmt.Errorf("%w: --color %q: must be one of auto, always, never", ErrUsage, g.color)
	}
	if g.debug {
		logging.SetLevel("debug")
	}
	cmd.SetContext(logging.WithLogger(cmp.Or(cmd.Context(), context.Background()), logging.Default()))
	return nil
}

// NewRootCommand builds the napcheck command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var global globalFlags

	root := &cobra.Command{
		Use:               "napcheck",
		Short:             "Check Python docstrings against their signatures",
		Long:              rootLong,
		PersistentPreRunE: global.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	global.register(root)

	root.AddCommand(
		newLintCommand(info),
		newCheckDocstringCommand(info),
		newRulesCommand(),
		newInitCommand(),
		newVersionCommand(info),
	)
	installHelp(root)
	return root
}
