package lint

import (
	"slices"
	"strings"

	"github.com/yaklabco/napcheck/pkg/pyast"
)

// paramPrefix starts a documented-parameter directive in normalized markup.
const paramPrefix = ":param "

// ParamDirective is one ":param name:" field found in normalized markup.
type ParamDirective struct {
	// Name is the bare parameter identifier.
	Name string

	// Line is the 0-based line of markup where the directive starts.
	Line int
}

// ParseParamDirectives returns every ":param name:" directive in markup, in
// document order. A name is one or more ASCII letters, digits or
// underscores and must be followed directly by a colon. Directives that
// carry a type (":param int x:") or an escaped name (":param \*args:") do
// not match and are skipped. A directive may appear anywhere on a line.
func ParseParamDirectives(markup string) []ParamDirective {
	var found []ParamDirective
	for lineNo, line := range strings.Split(markup, "\n") {
		for rest := line; ; {
			idx := strings.Index(rest, paramPrefix)
			if idx < 0 {
				break
			}
			rest = rest[idx+len(paramPrefix):]

			n := identLen(rest)
			if n == 0 || n >= len(rest) || rest[n] != ':' {
				continue
			}
			found = append(found, ParamDirective{Name: rest[:n], Line: lineNo})
			rest = rest[n+1:]
		}
	}
	return found
}

// DirectiveNames returns the names of directives in order.
func DirectiveNames(directives []ParamDirective) []string {
	names := make([]string, 0, len(directives))
	for _, d := range directives {
		names = append(names, d.Name)
	}
	return names
}

func identLen(s string) int {
	n := 0
	for n < len(s) && isIdentByte(s[n]) {
		n++
	}
	return n
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

// ActualParams returns the parameter names a docstring is expected to
// document: every named parameter in signature order, excluding *args and
// **kwargs. With ignoreReceiver, a leading self or cls of a method is
// dropped too.
func ActualParams(decl *pyast.Declaration, ignoreReceiver bool) []string {
	names := make([]string, 0, len(decl.Params))
	for i, p := range decl.Params {
		if p.Kind.Variadic() {
			continue
		}
		if ignoreReceiver && i == 0 && decl.InClass && isReceiver(p) {
			continue
		}
		names = append(names, p.Name)
	}
	return names
}

func isReceiver(p pyast.Param) bool {
	if p.Kind == pyast.ParamKeywordOnly {
		return false
	}
	return p.Name == "self" || p.Name == "cls"
}

// ParamComparison is the outcome of comparing documented parameters with
// the signature.
type ParamComparison struct {
	// Documented lists documented names in document order.
	Documented []string

	// Actual lists signature names in signature order.
	Actual []string

	// Extra lists documented names missing from the signature, in document
	// order, one entry per directive.
	Extra []string

	// Missing lists signature names that are not documented, in signature order.
	Missing []string

	// OrderMismatch is true when both sides name the same set of
	// parameters but list them in different sequences.
	OrderMismatch bool
}

// CompareParams compares documented parameter names with the actual ones.
func CompareParams(documented, actual []string) ParamComparison {
	cmp := ParamComparison{Documented: documented, Actual: actual}

	for _, name := range documented {
		if !slices.Contains(actual, name) {
			cmp.Extra = append(cmp.Extra, name)
		}
	}
	for _, name := range actual {
		if !slices.Contains(documented, name) {
			cmp.Missing = append(cmp.Missing, name)
		}
	}

	cmp.OrderMismatch = sameSet(documented, actual) && !slices.Equal(documented, actual)
	return cmp
}

func sameSet(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, name := range a {
		set[name] = true
	}
	other := make(map[string]bool, len(b))
	for _, name := range b {
		if !set[name] {
			return false
		}
		other[name] = true
	}
	return len(set) == len(other)
}
