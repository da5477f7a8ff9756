package reporter

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
)

// bufWriterSize is the buffer in front of the output writer.
const bufWriterSize = 64 * 1024

// Options configures every reporter. Fields a format has no use for are
// ignored, e.g. ShowContext outside text output.
type Options struct {
	Writer      io.Writer // diagnostics; os.Stdout by default
	ErrorWriter io.Writer // unreadable files in flake8 output; os.Stderr by default

	Format Format
	// Color is "auto", "always" or "never".
	Color string

	// Text output.
	ShowContext bool // echo the source line under each finding
	ShowSummary bool // one-line run summary at the end
	GroupByFile bool // a header per file instead of a flat list
	RuleFormat  config.RuleFormat

	// Compact writes JSON on a single line.
	Compact bool

	// SummaryOrder puts the rules or the files table first in summary output.
	SummaryOrder config.SummaryOrder

	// WorkingDir, when set, makes displayed paths relative to it.
	WorkingDir string

	// ToolVersion is the SARIF driver version.
	ToolVersion string

	// Registry supplies rule metadata for SARIF and rule families for the
	// summary. Defaults to lint.DefaultRegistry.
	Registry *lint.Registry
}

// DefaultOptions is what `napcheck lint` uses without flags.
func DefaultOptions() Options {
	return Options{
		Writer:       os.Stdout,
		ErrorWriter:  os.Stderr,
		Format:       FormatText,
		Color:        "auto",
		ShowContext:  true,
		ShowSummary:  true,
		GroupByFile:  true,
		RuleFormat:   config.RuleFormatID,
		SummaryOrder: config.SummaryOrderRules,
	}
}

// displayPath shortens path to be relative to WorkingDir, unless the
// result would leave it.
func (o Options) displayPath(path string) string {
	if o.WorkingDir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(o.WorkingDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
