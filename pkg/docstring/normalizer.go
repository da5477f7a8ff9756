package docstring

import (
	"fmt"
	"strings"
)

// Convention names a docstring style.
type Convention string

const (
	// ConventionGoogle is the Google style ("Args:", "Returns:", ...).
	ConventionGoogle Convention = "google"
	// ConventionRST is Sphinx field-list style, already valid reStructuredText.
	ConventionRST Convention = "rst"
)

// Conventions lists the supported conventions.
func Conventions() []Convention {
	return []Convention{ConventionGoogle, ConventionRST}
}

// IsValid reports whether c names a supported convention.
func (c Convention) IsValid() bool {
	switch c {
	case ConventionGoogle, ConventionRST:
		return true
	default:
		return false
	}
}

// Normalizer converts a cleaned docstring into reStructuredText.
type Normalizer interface {
	Normalize(raw string) string
}

// ForConvention returns the normalizer for the named convention.
// The empty name selects ConventionGoogle.
func ForConvention(name string) (Normalizer, error) {
	switch Convention(strings.ToLower(strings.TrimSpace(name))) {
	case ConventionGoogle, "":
		return GoogleNormalizer{}, nil
	case ConventionRST:
		return RSTNormalizer{}, nil
	default:
		return nil, fmt.Errorf("unknown docstring convention %q", name)
	}
}

// RSTNormalizer passes docstrings through unchanged.
type RSTNormalizer struct{}

// Normalize returns raw with trailing whitespace removed from every line.
func (RSTNormalizer) Normalize(raw string) string {
	lines := SplitLines(raw)
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, isSpace)
	}
	return strings.Join(lines, "\n")
}
