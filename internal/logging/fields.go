package logging

// Keys for structured log fields. Entries about the same thing use the
// same key so log output can be filtered.
const (
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldSource     = "source"

	// Analysis settings.
	FieldConvention  = "convention"
	FieldReportLevel = "report_level"
	FieldJobs        = "jobs"

	// Run totals.
	FieldDeclarations = "declarations"
	FieldDiagnostics  = "diagnostics"

	// Build info.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"

	// Rule metadata.
	FieldRule        = "rule"
	FieldName        = "name"
	FieldSeverity    = "severity"
	FieldTags        = "tags"
	FieldDescription = "description"
)
