package lint

import (
	"context"
	"iter"

	"github.com/yaklabco/napcheck/pkg/pyast"
)

// Parser parses Python source into a syntax tree.
//
// The lint package defines this interface in the consumer package, next to
// Normalizer and Validator. Implementations (e.g., pyast.Parser) provide the
// concrete parsing logic.
//
// Implementations must be:
//   - deterministic for a given (path, content) pair,
//   - safe for concurrent use by multiple goroutines, if documented as such,
//   - side-effect free (no I/O, no global state mutation).
type Parser interface {
	// Parse converts raw Python bytes into a parsed file.
	//
	// Parameters:
	//   - ctx: context for cancellation and timeout propagation.
	//   - path: logical file path (for diagnostics; must not be used for I/O).
	//   - content: raw source bytes (must not be mutated by the implementation).
	//
	// Returns:
	//   - On success: a parsed file whose Path is path and whose Content is content.
	//   - On error: nil and a descriptive error; no partial file is returned.
	//     Source that does not parse cleanly yields an error wrapping pyast.ErrSyntax.
	//
	// The caller owns the returned file and must Close it.
	Parse(ctx context.Context, path string, content []byte) (*pyast.File, error)
}

// Normalizer converts a cleaned docstring into reStructuredText.
//
// Normalize must be deterministic and total: every input, including the
// empty string, produces some output. Line i of the output corresponds to
// local line i of the declaration's docstring for reporting purposes.
type Normalizer interface {
	Normalize(raw string) string
}

// Validator checks reStructuredText and yields one (line, message) pair per
// problem found. line is a 0-based offset into markup. The sequence is
// finite and yields problems in the order the validator found them.
type Validator interface {
	Validate(markup string) iter.Seq2[int, string]
}

// NormalizerFunc adapts a function to the Normalizer interface.
type NormalizerFunc func(raw string) string

// Normalize calls f(raw).
func (f NormalizerFunc) Normalize(raw string) string {
	return f(raw)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(markup string) iter.Seq2[int, string]

// Validate calls f(markup).
func (f ValidatorFunc) Validate(markup string) iter.Seq2[int, string] {
	return f(markup)
}
