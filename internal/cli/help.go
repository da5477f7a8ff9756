package cli

import (
	"cmp"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/napcheck/internal/configloader"
	"github.com/yaklabco/napcheck/internal/ui/pretty"
	"github.com/yaklabco/napcheck/pkg/lint"
	"github.com/yaklabco/napcheck/pkg/lint/rules"
)

// showsChecks lists the commands whose help ends with the rule catalogue.
var showsChecks = map[string]bool{
	"napcheck":        true,
	"lint":            true,
	"check-docstring": true,
}

// readsConfig lists the commands that load configuration and so honor
// NAPCHECK_* variables.
var readsConfig = map[string]bool{
	"lint":            true,
	"check-docstring": true,
}

// installHelp replaces cobra's template based help and usage output on
// root (and, through inheritance, every subcommand) with helpPage.
func installHelp(root *cobra.Command) {
	root.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		page := newHelpPage(cmd, out)
		_, _ = io.WriteString(out, page.full())
	})
	root.SetUsageFunc(func(cmd *cobra.Command) error {
		out := cmd.OutOrStderr()
		page := newHelpPage(cmd, out)
		_, err := io.WriteString(out, page.usage())
		return err
	})
}

// helpPage renders the help of one command.
type helpPage struct {
	cmd    *cobra.Command
	styles *pretty.Styles
}

func newHelpPage(cmd *cobra.Command, out io.Writer) *helpPage {
	mode := "auto"
	if flag := cmd.Flags().Lookup("color"); flag != nil {
		mode = flag.Value.String()
	}
	return &helpPage{cmd: cmd, styles: pretty.NewStyles(pretty.IsColorEnabled(mode, out))}
}

// full is the output of --help: description, usage and the check catalogue.
func (p *helpPage) full() string {
	var b strings.Builder

	title := p.styles.Bold.Render(p.cmd.CommandPath())
	if p.cmd.Version != "" {
		title += " " + p.styles.Dim.Render(p.cmd.Version)
	}
	b.WriteString(title + "\n\n")

	if text := strings.TrimSpace(cmp.Or(p.cmd.Long, p.cmd.Short)); text != "" {
		b.WriteString(text + "\n\n")
	}

	b.WriteString(p.usage())

	if readsConfig[p.cmd.Name()] {
		b.WriteString("\n" + p.environment())
	}
	if showsChecks[p.cmd.Name()] {
		b.WriteString("\n" + p.checks())
	}
	return b.String()
}

// usage is printed on --help and after usage errors.
func (p *helpPage) usage() string {
	var b strings.Builder
	cmd := p.cmd

	p.section(&b, "Usage")
	if cmd.Runnable() {
		b.WriteString("  " + cmd.UseLine() + "\n")
	}
	if cmd.HasAvailableSubCommands() {
		b.WriteString("  " + cmd.CommandPath() + " <command>\n")
	}

	if len(cmd.Aliases) > 0 {
		p.section(&b, "Aliases")
		b.WriteString("  " + strings.Join(cmd.Aliases, ", ") + "\n")
	}

	if cmd.HasExample() {
		p.section(&b, "Examples")
		for line := range strings.Lines(cmd.Example) {
			b.WriteString(p.styles.Code.Render(strings.TrimRight(line, "\n")) + "\n")
		}
	}

	if cmd.HasAvailableSubCommands() {
		p.section(&b, "Commands")
		var rows [][2]string
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() {
				rows = append(rows, [2]string{sub.Name(), sub.Short})
			}
		}
		p.table(&b, rows)
	}

	if cmd.HasAvailableLocalFlags() {
		p.section(&b, "Flags")
		p.table(&b, p.flagRows(cmd.LocalFlags()))
	}
	if cmd.HasAvailableInheritedFlags() {
		p.section(&b, "Global Flags")
		p.table(&b, p.flagRows(cmd.InheritedFlags()))
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&b, "\nRun %q for details on a command.\n", cmd.CommandPath()+" <command> --help")
	}
	return b.String()
}

// checks lists every registered rule with the output it produces.
func (p *helpPage) checks() string {
	var b strings.Builder
	b.WriteString(p.styles.Heading.Render("Checks") + "\n")

	for _, rule := range lint.DefaultRegistry.Rules() {
		fmt.Fprintf(&b, "  %s  %s\n", p.styles.Bold.Render(rule.ID()), rule.Description())
		for _, sample := range rules.SampleOutput(rule.ID()) {
			b.WriteString("          " + p.styles.Dim.Render("e.g. "+sample) + "\n")
		}
	}

	b.WriteString("\nRun \"napcheck rules --explain <code>\" for examples of each check.\n")
	return b.String()
}

// environment lists the NAPCHECK_* variables.
func (p *helpPage) environment() string {
	var b strings.Builder
	b.WriteString(p.styles.Heading.Render("Environment:") + "\n")
	rows := make([][2]string, 0, len(configloader.EnvVars()))
	for _, ev := range configloader.EnvVars() {
		rows = append(rows, [2]string{ev.Name, ev.Description})
	}
	p.table(&b, rows)
	return b.String()
}

func (p *helpPage) section(b *strings.Builder, name string) {
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(p.styles.Heading.Render(name+":") + "\n")
}

// flagRows describes each visible flag as "-s, --name type" and its usage
// with the default appended.
func (p *helpPage) flagRows(flags *pflag.FlagSet) [][2]string {
	var rows [][2]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}

		name := "    --" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", --" + f.Name
		}
		varName, usage := pflag.UnquoteUsage(f)
		if varName != "" {
			name += " " + p.styles.Dim.Render(varName)
		}

		if showDefault(f) {
			usage += p.styles.Dim.Render(fmt.Sprintf(" (default %s)", f.DefValue))
		}
		rows = append(rows, [2]string{name, usage})
	})
	return rows
}

// table writes two aligned columns. Widths are measured after styling.
func (p *helpPage) table(b *strings.Builder, rows [][2]string) {
	width := 0
	for _, row := range rows {
		width = max(width, lipgloss.Width(row[0]))
	}
	for _, row := range rows {
		pad := strings.Repeat(" ", width-lipgloss.Width(row[0]))
		b.WriteString("  " + row[0] + pad + "   " + row[1] + "\n")
	}
}

// showDefault hides zero defaults the way pflag's own usage does.
func showDefault(f *pflag.Flag) bool {
	switch f.DefValue {
	case "", "false", "0", "0s", "[]":
		return false
	}
	return true
}
