package analysis

import (
	"strconv"
	"time"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
)

// Report holds the views of one lint run that renderers draw from.
type Report struct {
	Diagnostics   []DiagnosticEntry     `json:"diagnostics,omitempty"`
	ByFile        []FileAnalysis        `json:"byFile,omitempty"`
	ByRule        []RuleAnalysis        `json:"byRule,omitempty"`
	ByFamily      []FamilyAnalysis      `json:"byFamily,omitempty"`
	ByDeclaration []DeclarationAnalysis `json:"byDeclaration,omitempty"`

	Totals    Totals    `json:"summary"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// Counts tallies findings by severity.
type Counts struct {
	Issues   int `json:"issues"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

func (c *Counts) add(severity config.Severity) {
	c.Issues++
	switch severity {
	case config.SeverityError:
		c.Errors++
	case config.SeverityInfo:
		c.Infos++
	default:
		c.Warnings++
	}
}

// DiagnosticEntry is one finding with its path made relative.
type DiagnosticEntry struct {
	FilePath string      `json:"filePath"`
	RuleID   string      `json:"ruleId"`
	RuleName string      `json:"ruleName"`
	Family   lint.Family `json:"family"`
	Severity string      `json:"severity"`
	Message  string      `json:"message"`
	// Line is 1-based and Column 0-based, as flake8 plugins report them.
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	Declaration string `json:"declaration,omitempty"`
}

// Totals summarizes the whole run.
type Totals struct {
	Counts

	Files             int `json:"filesChecked"`
	FilesWithIssues   int `json:"filesWithIssues"`
	FilesErrored      int `json:"filesErrored"`
	Declarations      int `json:"declarations"`
	DeclarationErrors int `json:"declarationErrors"`
	// DeclarationsWithIssues counts docstrings with at least one finding.
	DeclarationsWithIssues int `json:"declarationsWithIssues"`
}

// HasIssues reports whether anything was found.
func (t Totals) HasIssues() bool { return t.Issues > 0 }

// HasErrors reports whether any finding has error severity.
func (t Totals) HasErrors() bool { return t.Errors > 0 }

// Clean reports whether every file parsed and nothing was found.
func (t Totals) Clean() bool { return t.Issues == 0 && t.FilesErrored == 0 }

// FileAnalysis covers one file with findings.
type FileAnalysis struct {
	Counts

	Path         string   `json:"path"`
	Declarations int      `json:"declarations"`
	Rules        []string `json:"rules,omitempty"`
}

// RuleAnalysis covers one rule code.
type RuleAnalysis struct {
	Counts

	RuleID   string      `json:"ruleId"`
	RuleName string      `json:"ruleName"`
	Family   lint.Family `json:"family"`
	Files    []string    `json:"files,omitempty"`
}

// FamilyAnalysis covers the markup or the parameter checks.
type FamilyAnalysis struct {
	Counts

	Family lint.Family `json:"family"`
	Rules  []string    `json:"rules"`
	// Declarations counts docstrings with at least one finding in the family.
	Declarations int `json:"declarations"`
}

// DeclarationAnalysis covers one function or class docstring.
type DeclarationAnalysis struct {
	Counts

	Path string `json:"path"`
	Name string `json:"name"`
	// Line is the def or class line, or the first finding's line when the
	// diagnostics do not carry it.
	Line     int           `json:"line"`
	Rules    []string      `json:"rules"`
	Families []lint.Family `json:"families"`
}

// Label renders the declaration as path:line name.
func (d DeclarationAnalysis) Label() string {
	name := d.Name
	if name == "" {
		name = "<module>"
	}
	return d.Path + ":" + strconv.Itoa(d.Line) + " " + name
}
