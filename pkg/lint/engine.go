package lint

import (
	"context"
	"fmt"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/pyast"
)

// DeclarationError records a declaration whose docstring could not be
// analysed because the normalizer or validator failed. The declaration
// contributes no diagnostics.
type DeclarationError struct {
	// Declaration is the name of the function or class.
	Declaration string

	// Line is the 1-based line of the declaration.
	Line int

	// Err describes the failure.
	Err error
}

// Error implements error.
func (e *DeclarationError) Error() string {
	return fmt.Sprintf("%s (line %d): %v", e.Declaration, e.Line, e.Err)
}

// Unwrap returns the underlying failure.
func (e *DeclarationError) Unwrap() error {
	return e.Err
}

// FileResult contains the results of linting a single file.
type FileResult struct {
	// File is the parsed file. Its syntax tree has been released but
	// Content and Line remain usable for source context.
	File *pyast.File

	// Declarations is the number of declarations visited.
	Declarations int

	// Diagnostics contains all issues found, in traversal order.
	Diagnostics []Diagnostic

	// Errors lists declarations skipped because analysis failed.
	Errors []*DeclarationError

	// RuleErrors contains any errors returned by rules, keyed by rule ID.
	RuleErrors map[string]error
}

// HasIssues returns true if any diagnostics were found.
func (fr *FileResult) HasIssues() bool {
	return len(fr.Diagnostics) > 0
}

// IssueCount returns the total number of diagnostics.
func (fr *FileResult) IssueCount() int {
	return len(fr.Diagnostics)
}

// Engine coordinates parsing, docstring normalization and rule execution.
type Engine struct {
	// Parser parses Python files into syntax trees.
	Parser Parser

	// Registry holds all available rules.
	Registry *Registry

	// Normalizer converts docstrings to reStructuredText.
	Normalizer Normalizer

	// Validator checks normalized docstrings. Nil disables markup checks.
	Validator Validator

	// Origin is stamped on every diagnostic (e.g., "napcheck/1.2.0").
	Origin string
}

// NewEngine creates a new Engine with the given collaborators.
func NewEngine(parser Parser, registry *Registry, normalizer Normalizer, validator Validator) *Engine {
	return &Engine{
		Parser:     parser,
		Registry:   registry,
		Normalizer: normalizer,
		Validator:  validator,
	}
}

// LintFile parses and lints a single file.
func (e *Engine) LintFile(
	ctx context.Context,
	path string,
	content []byte,
	cfg *config.Config,
) (*FileResult, error) {
	file, err := e.Parser.Parse(ctx, path, content)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	defer file.Close()

	return e.LintTree(ctx, file, cfg)
}

// LintTree lints an already parsed file. The caller keeps ownership of file.
//
// Declarations are visited in source order. For each one, NAP001 markup
// findings come first, followed by the parameter findings, because rules
// run in ID order.
func (e *Engine) LintTree(ctx context.Context, file *pyast.File, cfg *config.Config) (*FileResult, error) {
	resolved := ResolveRules(e.Registry, cfg)

	result := &FileResult{
		File:       file,
		RuleErrors: make(map[string]error),
	}

	for decl := range pyast.Declarations(file) {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("linting cancelled: %w", ctx.Err())
		default:
		}

		result.Declarations++
		if decl.Docstring == "" {
			continue
		}

		diags, err := e.lintDeclaration(ctx, file, &decl, cfg, resolved, result.RuleErrors)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Diagnostics = append(result.Diagnostics, diags...)
	}

	return result, nil
}

// lintDeclaration runs every resolved rule against one declaration. A panic
// in the normalizer or validator discards the declaration's findings and is
// returned as a DeclarationError.
func (e *Engine) lintDeclaration(
	ctx context.Context,
	file *pyast.File,
	decl *pyast.Declaration,
	cfg *config.Config,
	resolved []ResolvedRule,
	ruleErrors map[string]error,
) (diags []Diagnostic, declErr *DeclarationError) {
	defer func() {
		if r := recover(); r != nil {
			diags = nil
			declErr = &DeclarationError{
				Declaration: decl.Name,
				Line:        decl.Line,
				Err:         fmt.Errorf("docstring analysis panicked: %v", r),
			}
		}
	}()

	markup := decl.Docstring
	if e.Normalizer != nil {
		markup = e.Normalizer.Normalize(decl.Docstring)
	}

	rc := NewRuleContext(ctx, file, decl, markup, cfg)
	rc.Validator = e.Validator

	for _, rr := range resolved {
		found, err := rr.Rule.Apply(rc)
		if err != nil {
			ruleErrors[rr.Rule.ID()] = err
			continue
		}

		for i := range found {
			found[i].Severity = rr.Severity
			if found[i].FilePath == "" {
				found[i].FilePath = file.Path
			}
			if found[i].RuleName == "" {
				found[i].RuleName = rr.Rule.Name()
			}
			if found[i].Declaration == "" {
				found[i].Declaration = decl.Name
			}
			if found[i].DeclarationLine == 0 {
				found[i].DeclarationLine = decl.Line
			}
			found[i].Origin = e.Origin
		}
		diags = append(diags, found...)
	}

	return diags, nil
}
