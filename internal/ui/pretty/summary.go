package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/napcheck/pkg/runner"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func countOf(n int, one, many string) string {
	return fmt.Sprintf("%d %s", n, plural(n, one, many))
}

// RunSummary is the line text output ends with, such as
// "5 issues (2 errors, 3 warnings) in 2 files, 1 file not parsed".
func (s *Styles) RunSummary(stats runner.Stats) string {
	var line string
	if total := stats.Diagnostics.Total(); total == 0 {
		line = s.Success.Render("No issues found") + s.Dim.Render(fmt.Sprintf(" (%s, %d declarations checked)",
			countOf(stats.FilesProcessed, "file", "files"), stats.Declarations))
	} else {
		line = countOf(total, "issue", "issues")
		if bySeverity := s.severityCounts(stats.Diagnostics); bySeverity != "" {
			line += " (" + bySeverity + ")"
		}
		line += " in " + countOf(stats.FilesWithIssues, "file", "files")
	}

	if stats.FilesErrored > 0 {
		line += ", " + s.Failure.Render(countOf(stats.FilesErrored, "file", "files")+" not parsed")
	}
	return line + "\n"
}

func (s *Styles) severityCounts(t runner.Tally) string {
	var parts []string
	if t.Errors > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d errors", t.Errors)))
	}
	if t.Warnings > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d warnings", t.Warnings)))
	}
	if t.Infos > 0 {
		parts = append(parts, s.Info.Render(fmt.Sprintf("%d info", t.Infos)))
	}
	return strings.Join(parts, ", ")
}
