package runner

import (
	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
)

// FileOutcome is what happened to one discovered file. Exactly one of
// Result and Error is set.
type FileOutcome struct {
	Path   string
	Result *lint.PipelineResult
	Error  error
}

// findings returns the file's diagnostics, or nil when it was not linted.
func (o FileOutcome) findings() *lint.FileResult {
	if o.Error != nil || o.Result == nil {
		return nil
	}
	return o.Result.FileResult
}

// Tally counts diagnostics by severity. An unset severity counts as a
// warning, which is what rules report by default.
type Tally struct {
	Errors   int
	Warnings int
	Infos    int
}

// Add counts one diagnostic of severity sev.
func (t *Tally) Add(sev config.Severity) {
	switch sev {
	case config.SeverityError:
		t.Errors++
	case config.SeverityInfo:
		t.Infos++
	default:
		t.Warnings++
	}
}

// Total is the number of diagnostics counted.
func (t Tally) Total() int {
	return t.Errors + t.Warnings + t.Infos
}

// Stats are the run's file, declaration and diagnostic counts.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesErrored    int // unreadable or unparseable files
	FilesWithIssues int

	Declarations      int // functions and classes visited
	DeclarationErrors int // declarations whose analysis failed

	Diagnostics Tally
}

// record adds one outcome to the counts.
func (s *Stats) record(outcome FileOutcome) {
	switch {
	case outcome.Error != nil:
		s.FilesErrored++
		return
	case outcome.Result == nil:
		return
	}

	s.FilesProcessed++

	fr := outcome.findings()
	if fr == nil {
		return
	}
	s.Declarations += fr.Declarations
	s.DeclarationErrors += len(fr.Errors)
	if len(fr.Diagnostics) > 0 {
		s.FilesWithIssues++
	}
	for _, d := range fr.Diagnostics {
		s.Diagnostics.Add(d.Severity)
	}
}

// Result holds every file outcome of a run, sorted by path.
type Result struct {
	Files  []FileOutcome
	Stats  Stats
	Errors []error // failures not tied to a file
}

func (r *Result) add(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	r.Stats.record(outcome)
}

// HasFailures reports whether any error-severity diagnostic was found.
func (r *Result) HasFailures() bool {
	return r != nil && r.Stats.Diagnostics.Errors > 0
}

// HasIssues reports whether any diagnostic was found.
func (r *Result) HasIssues() bool {
	return r != nil && r.Stats.Diagnostics.Total() > 0
}

// Diagnostics returns every diagnostic of the run in file order, then in
// the order the engine produced them.
func (r *Result) Diagnostics() []lint.Diagnostic {
	if r == nil {
		return nil
	}
	var all []lint.Diagnostic
	for _, f := range r.Files {
		if fr := f.findings(); fr != nil {
			all = append(all, fr.Diagnostics...)
		}
	}
	return all
}
