package rules

import (
	"embed"
	"strings"
)

//go:embed docs/*.md
var docsFS embed.FS

// Explain returns the Markdown documentation for the rule with the given
// ID. ok is false when no documentation exists.
func Explain(id string) (doc string, ok bool) {
	data, err := docsFS.ReadFile("docs/" + strings.ToUpper(id) + ".md")
	if err != nil {
		return "", false
	}
	return string(data), true
}

// SampleOutput returns the diagnostic lines shown in the rule's
// documentation, taken from its first "text" fenced block.
func SampleOutput(id string) []string {
	doc, ok := Explain(id)
	if !ok {
		return nil
	}

	_, rest, found := strings.Cut(doc, "```text\n")
	if !found {
		return nil
	}
	block, _, _ := strings.Cut(rest, "```")

	var out []string
	for line := range strings.Lines(block) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
