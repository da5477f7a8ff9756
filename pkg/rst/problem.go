// Package rst checks reStructuredText for markup problems.
//
// The checker follows docutils' block and inline grammar closely enough to
// reproduce its system messages for the constructs Python docstrings use:
// paragraphs, lists, field lists, literal blocks, sections, explicit markup
// and directives, and inline markup with references and substitutions.
package rst

import (
	"fmt"
	"iter"
	"strings"
)

// Level is a docutils system message level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelSevere
)

var levelNames = [...]string{"DEBUG", "INFO", "WARNING", "ERROR", "SEVERE"}

// String returns the upper-case docutils name, e.g. "WARNING".
func (l Level) String() string {
	if l < LevelDebug || l > LevelSevere {
		return fmt.Sprintf("LEVEL%d", int(l))
	}
	return levelNames[l]
}

// ParseLevel parses a level name (case-insensitive) such as "warning".
func ParseLevel(name string) (Level, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range levelNames {
		if n == upper {
			return Level(i), nil
		}
	}
	return LevelWarning, fmt.Errorf("unknown report level %q", name)
}

// Problem is one system message.
type Problem struct {
	// Line is the 0-based line in the checked text.
	Line int

	// Level is the docutils severity.
	Level Level

	// Message is the first line of the system message.
	Message string

	// Language is set for syntax errors found inside code blocks.
	Language string
}

// String formats the problem the way rstcheck prints it,
// e.g. "(ERROR/3) Unexpected indentation.".
func (p Problem) String() string {
	if p.Language != "" {
		return "(" + strings.ToUpper(p.Language) + ") " + p.Message
	}
	return fmt.Sprintf("(%s/%d) %s", p.Level, int(p.Level), p.Message)
}

// Checker validates reStructuredText.
type Checker struct {
	// MinLevel hides problems below this level.
	MinLevel Level

	// Code maps a code-block language (lower case) to a syntax checker.
	Code map[string]CodeChecker
}

// NewChecker returns a checker that reports warnings and worse and checks
// JSON, YAML, TOML and nested reStructuredText code blocks.
func NewChecker() *Checker {
	c := &Checker{MinLevel: LevelWarning, Code: DefaultCodeCheckers()}
	c.Code["rst"] = c.checkNested
	return c
}

// Check parses text and yields its problems: code block errors first, then
// parse messages in document order, then unresolved substitutions and
// references.
func (c *Checker) Check(text string) iter.Seq[Problem] {
	return func(yield func(Problem) bool) {
		doc := newDocument(c, text)
		doc.run()
		for _, p := range doc.results() {
			if p.Level < c.MinLevel {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Validate yields (line, message) pairs for every reported problem.
func (c *Checker) Validate(markup string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for p := range c.Check(markup) {
			if !yield(p.Line, p.String()) {
				return
			}
		}
	}
}

func (c *Checker) checkNested(code string) []CodeIssue {
	var issues []CodeIssue
	for p := range c.Check(code) {
		issues = append(issues, CodeIssue{Line: p.Line + 1, Message: p.String()})
	}
	return issues
}
