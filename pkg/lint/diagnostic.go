package lint

import "github.com/yaklabco/napcheck/pkg/pyast"

// DocstringFinding is a finding on line n (0-based) of decl's docstring.
// The docstring's first line is reported one line below the def or class
// line, whatever the real layout, and the column is the declaration's.
func DocstringFinding(ruleID string, decl *pyast.Declaration, n int, message string) Diagnostic {
	return Diagnostic{
		RuleID:          ruleID,
		Message:         message,
		Line:            decl.Line + n + 1,
		Column:          decl.Column,
		Declaration:     decl.Name,
		DeclarationLine: decl.Line,
	}
}
