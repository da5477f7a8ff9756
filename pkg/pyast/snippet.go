package pyast

import (
	"context"
	"errors"

	"github.com/yaklabco/napcheck/pkg/rst"
)

// CheckSnippet reports the first syntax error in a Python code block.
// It satisfies rst.CodeChecker so docstring code blocks marked as Python
// are syntax-checked.
func (p *Parser) CheckSnippet(code string) []rst.CodeIssue {
	file, err := p.Parse(context.Background(), "<code-block>", []byte(code))
	if err == nil {
		file.Close()
		return nil
	}

	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		return []rst.CodeIssue{{Line: 1, Message: err.Error()}}
	}
	msg := "invalid syntax"
	if synErr.Token != "" {
		msg += " near " + quoteToken(synErr.Token)
	}
	return []rst.CodeIssue{{Line: synErr.Line, Message: msg}}
}

// RegisterCodeCheckers installs the Python checker on c under the
// language names Sphinx accepts for Python.
func (p *Parser) RegisterCodeCheckers(c *rst.Checker) {
	if c.Code == nil {
		c.Code = make(map[string]rst.CodeChecker)
	}
	for _, lang := range []string{"python", "python3", "py", "py3"} {
		c.Code[lang] = p.CheckSnippet
	}
}

func quoteToken(tok string) string {
	return "'" + tok + "'"
}
