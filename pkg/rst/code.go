package rst

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// CodeIssue is a syntax error inside a code block. Line is 1-based within
// the block content.
type CodeIssue struct {
	Line    int
	Message string
}

// CodeChecker reports syntax errors in a code block's content.
type CodeChecker func(code string) []CodeIssue

// DefaultCodeCheckers returns checkers for JSON, YAML and TOML blocks.
func DefaultCodeCheckers() map[string]CodeChecker {
	return map[string]CodeChecker{
		"json": checkJSON,
		"yaml": checkYAML,
		"yml":  checkYAML,
		"toml": checkTOML,
	}
}

func checkJSON(code string) []CodeIssue {
	var v any
	dec := json.NewDecoder(strings.NewReader(code))
	err := dec.Decode(&v)
	if err == nil {
		return nil
	}

	line := 1
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line += bytes.Count([]byte(code[:min(int(syntaxErr.Offset), len(code))]), []byte("\n"))
	}
	return []CodeIssue{{Line: line, Message: err.Error()}}
}

func checkYAML(code string) []CodeIssue {
	var v any
	err := yaml.Unmarshal([]byte(code), &v)
	if err == nil {
		return nil
	}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return nil
	}
	line, msg := 1, err.Error()
	msg = strings.TrimPrefix(msg, "yaml: ")
	if rest, ok := strings.CutPrefix(msg, "line "); ok {
		if n, after, found := cutNumber(rest); found {
			line = n
			msg = strings.TrimPrefix(after, ": ")
		}
	}
	return []CodeIssue{{Line: line, Message: msg}}
}

func checkTOML(code string) []CodeIssue {
	var v map[string]any
	_, err := toml.Decode(code, &v)
	if err == nil {
		return nil
	}

	var parseErr toml.ParseError
	if errors.As(err, &parseErr) {
		return []CodeIssue{{Line: parseErr.Position.Line, Message: parseErr.Message}}
	}
	return []CodeIssue{{Line: 1, Message: err.Error()}}
}

func cutNumber(s string) (int, string, bool) {
	n, i := 0, 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	return n, s[i:], i > 0
}
