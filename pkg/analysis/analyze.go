// Package analysis turns a lint run into the grouped views the summary
// reporter prints: per file, per rule, per rule family and per docstring.
package analysis

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
	"github.com/yaklabco/napcheck/pkg/runner"
)

// ReportVersion is the version of the Report layout.
const ReportVersion = "2.0.0"

// set collects distinct strings.
type set map[string]struct{}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

type declKey struct {
	path string
	name string
	line int
}

type declTally struct {
	DeclarationAnalysis
	rules    set
	families map[lint.Family]bool
}

type fileTally struct {
	FileAnalysis
	rules set
}

type ruleTally struct {
	RuleAnalysis
	files set
}

type familyTally struct {
	FamilyAnalysis
	rules set
	decls map[declKey]bool
}

// tally accumulates every view in a single pass over the diagnostics.
type tally struct {
	opts     Options
	registry *lint.Registry

	files    map[string]*fileTally
	rules    map[string]*ruleTally
	families map[lint.Family]*familyTally
	decls    map[declKey]*declTally
}

func newTally(opts Options) *tally {
	registry := opts.Registry
	if registry == nil {
		registry = lint.DefaultRegistry
	}
	return &tally{
		opts:     opts,
		registry: registry,
		files:    make(map[string]*fileTally),
		rules:    make(map[string]*ruleTally),
		families: make(map[lint.Family]*familyTally),
		decls:    make(map[declKey]*declTally),
	}
}

// relative makes path relative to the working directory unless that would
// climb out of it.
func (t *tally) relative(path string) string {
	if t.opts.WorkingDir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(t.opts.WorkingDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

func (t *tally) file(path string) *fileTally {
	ft, ok := t.files[path]
	if !ok {
		ft = &fileTally{FileAnalysis: FileAnalysis{Path: path}, rules: set{}}
		t.files[path] = ft
	}
	return ft
}

func (t *tally) rule(diag *lint.Diagnostic, family lint.Family) *ruleTally {
	rt, ok := t.rules[diag.RuleID]
	if !ok {
		rt = &ruleTally{
			RuleAnalysis: RuleAnalysis{RuleID: diag.RuleID, RuleName: diag.RuleName, Family: family},
			files:        set{},
		}
		t.rules[diag.RuleID] = rt
	}
	return rt
}

func (t *tally) family(family lint.Family) *familyTally {
	ft, ok := t.families[family]
	if !ok {
		ft = &familyTally{
			FamilyAnalysis: FamilyAnalysis{Family: family},
			rules:          set{},
			decls:          make(map[declKey]bool),
		}
		t.families[family] = ft
	}
	return ft
}

func (t *tally) decl(key declKey, diag *lint.Diagnostic) *declTally {
	dt, ok := t.decls[key]
	if !ok {
		line := diag.DeclarationLine
		if line == 0 {
			line = diag.Line
		}
		dt = &declTally{
			DeclarationAnalysis: DeclarationAnalysis{Path: key.path, Name: key.name, Line: line},
			rules:               set{},
			families:            make(map[lint.Family]bool),
		}
		t.decls[key] = dt
	}
	// Without a declaration line, same-named docstrings merge and the
	// earliest finding stands in for the position.
	if diag.DeclarationLine == 0 && diag.Line < dt.Line {
		dt.Line = diag.Line
	}
	return dt
}

func (t *tally) add(path string, diag *lint.Diagnostic) DiagnosticEntry {
	severity := diag.Severity
	if severity == "" {
		severity = config.SeverityWarning
	}
	family := t.registry.FamilyOfCode(diag.RuleID)
	key := declKey{path: path, name: diag.Declaration, line: diag.DeclarationLine}

	ft := t.file(path)
	ft.add(severity)
	ft.rules[diag.RuleID] = struct{}{}

	rt := t.rule(diag, family)
	rt.add(severity)
	rt.files[path] = struct{}{}

	fam := t.family(family)
	fam.add(severity)
	fam.rules[diag.RuleID] = struct{}{}
	fam.decls[key] = true

	dt := t.decl(key, diag)
	dt.add(severity)
	dt.rules[diag.RuleID] = struct{}{}
	dt.families[family] = true

	return DiagnosticEntry{
		FilePath:    path,
		RuleID:      diag.RuleID,
		RuleName:    diag.RuleName,
		Family:      family,
		Severity:    string(severity),
		Message:     diag.Message,
		Line:        diag.Line,
		Column:      diag.Column,
		Declaration: diag.Declaration,
	}
}

// Analyze builds a Report from result. Totals are always computed; the
// grouped views only when opts.Views asks for them.
func Analyze(result *runner.Result, opts Options) *Report {
	report := &Report{Version: ReportVersion, Timestamp: time.Now()}
	if result == nil {
		return report
	}

	t := newTally(opts)
	for _, file := range result.Files {
		report.Totals.Files++
		if file.Error != nil {
			report.Totals.FilesErrored++
			continue
		}
		if file.Result == nil || file.Result.FileResult == nil {
			continue
		}

		fr := file.Result.FileResult
		report.Totals.Declarations += fr.Declarations
		report.Totals.DeclarationErrors += len(fr.Errors)
		if len(fr.Diagnostics) == 0 {
			continue
		}
		report.Totals.FilesWithIssues++

		path := t.relative(file.Path)
		t.file(path).Declarations = fr.Declarations
		for i := range fr.Diagnostics {
			diag := &fr.Diagnostics[i]
			report.Totals.add(diag.Severity)
			entry := t.add(path, diag)
			if opts.Views.Has(ViewDiagnostics) {
				report.Diagnostics = append(report.Diagnostics, entry)
			}
		}
	}
	report.Totals.DeclarationsWithIssues = len(t.decls)

	if opts.Views.Has(ViewFiles) {
		report.ByFile = t.fileViews()
	}
	if opts.Views.Has(ViewRules) {
		report.ByRule = t.ruleViews()
	}
	if opts.Views.Has(ViewFamilies) {
		report.ByFamily = t.familyViews()
	}
	if opts.Views.Has(ViewDeclarations) {
		report.ByDeclaration = t.declarationViews()
	}
	return report
}

func (t *tally) fileViews() []FileAnalysis {
	out := make([]FileAnalysis, 0, len(t.files))
	for _, ft := range t.files {
		ft.Rules = ft.rules.sorted()
		out = append(out, ft.FileAnalysis)
	}
	sortGroups(out, t.opts.Order,
		func(f FileAnalysis) Counts { return f.Counts },
		func(a, b FileAnalysis) int { return cmp.Compare(a.Path, b.Path) })
	return out
}

func (t *tally) ruleViews() []RuleAnalysis {
	out := make([]RuleAnalysis, 0, len(t.rules))
	for _, rt := range t.rules {
		rt.Files = rt.files.sorted()
		out = append(out, rt.RuleAnalysis)
	}
	sortGroups(out, t.opts.Order,
		func(r RuleAnalysis) Counts { return r.Counts },
		func(a, b RuleAnalysis) int { return cmp.Compare(a.RuleID, b.RuleID) })
	return out
}

// familyViews always lists families in lint.Families order.
func (t *tally) familyViews() []FamilyAnalysis {
	var out []FamilyAnalysis
	for _, family := range lint.Families() {
		ft, ok := t.families[family]
		if !ok {
			continue
		}
		ft.Rules = ft.rules.sorted()
		ft.Declarations = len(ft.decls)
		out = append(out, ft.FamilyAnalysis)
	}
	return out
}

func (t *tally) declarationViews() []DeclarationAnalysis {
	out := make([]DeclarationAnalysis, 0, len(t.decls))
	for _, dt := range t.decls {
		dt.Rules = dt.rules.sorted()
		for _, family := range lint.Families() {
			if dt.families[family] {
				dt.Families = append(dt.Families, family)
			}
		}
		out = append(out, dt.DeclarationAnalysis)
	}
	sortGroups(out, t.opts.Order,
		func(d DeclarationAnalysis) Counts { return d.Counts },
		func(a, b DeclarationAnalysis) int {
			return cmp.Or(
				cmp.Compare(a.Path, b.Path),
				cmp.Compare(a.Line, b.Line),
				cmp.Compare(a.Name, b.Name),
			)
		})
	return out
}

// sortGroups orders groups by order. byKey is the natural order and breaks
// ties so output is stable between runs.
func sortGroups[T any](groups []T, order Order, counts func(T) Counts, byKey func(a, b T) int) {
	slices.SortFunc(groups, func(a, b T) int {
		ca, cb := counts(a), counts(b)
		switch order {
		case OrderCode:
			return byKey(a, b)
		case OrderSeverity:
			return cmp.Or(
				cmp.Compare(cb.Errors, ca.Errors),
				cmp.Compare(cb.Warnings, ca.Warnings),
				cmp.Compare(cb.Issues, ca.Issues),
				byKey(a, b),
			)
		default:
			return cmp.Or(cmp.Compare(cb.Issues, ca.Issues), byKey(a, b))
		}
	})
}
