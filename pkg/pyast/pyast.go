// Package pyast parses Python source with tree-sitter and extracts the
// declarations (functions and classes) whose docstrings napcheck inspects.
package pyast

import (
	"bytes"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Kind distinguishes function-like from type-like declarations.
type Kind int

const (
	// KindFunction is a def or async def statement.
	KindFunction Kind = iota
	// KindClass is a class statement.
	KindClass
)

// String returns "function" or "class".
func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	default:
		return "unknown"
	}
}

// ParamKind classifies a parameter by how it binds at call time.
type ParamKind int

const (
	ParamPositionalOrKeyword ParamKind = iota
	ParamPositionalOnly
	ParamKeywordOnly
	ParamVarPositional
	ParamVarKeyword
)

// Variadic reports whether the parameter collects extra arguments (*args, **kwargs).
func (k ParamKind) Variadic() bool {
	return k == ParamVarPositional || k == ParamVarKeyword
}

// Param is one entry of a function signature.
type Param struct {
	Name string
	Kind ParamKind
}

// Declaration is a function or class found in a parsed file.
type Declaration struct {
	// Kind is KindFunction or KindClass.
	Kind Kind

	// Name is the declared identifier.
	Name string

	// Line is the 1-based line of the def/class keyword (or async keyword).
	Line int

	// Column is the 0-based byte column of the declaration start.
	Column int

	// Params lists the signature in declaration order. Always empty for classes.
	Params []Param

	// Docstring is the cleaned docstring text.
	Docstring string

	// HasDocstring is true when the body starts with a string literal,
	// even if that literal cleans down to the empty string.
	HasDocstring bool

	// Async is true for async def.
	Async bool

	// InClass is true when the declaration is a direct member of a class body.
	InClass bool
}

// ParamNames returns the names of all parameters in signature order.
func (d *Declaration) ParamNames() []string {
	names := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		names = append(names, p.Name)
	}
	return names
}

// File is a parsed Python source file.
// Callers must call Close when done to release the tree-sitter tree.
type File struct {
	// Path is the logical path used in diagnostics.
	Path string

	// Content is the raw source. It must not be mutated.
	Content []byte

	tree  *sitter.Tree
	root  *sitter.Node
	lines [][]byte
}

// Root returns the module node of the syntax tree.
func (f *File) Root() *sitter.Node {
	return f.root
}

// Close releases the underlying syntax tree. It is safe to call more than once.
func (f *File) Close() {
	if f == nil || f.tree == nil {
		return
	}
	f.tree.Close()
	f.tree = nil
	f.root = nil
}

// LineCount returns the number of source lines.
func (f *File) LineCount() int {
	return len(f.sourceLines())
}

// Line returns the 1-based source line without its terminator,
// or "" when n is out of range.
func (f *File) Line(n int) string {
	lines := f.sourceLines()
	if n < 1 || n > len(lines) {
		return ""
	}
	return strings.TrimRight(string(lines[n-1]), "\r")
}

func (f *File) sourceLines() [][]byte {
	if f.lines == nil {
		f.lines = bytes.Split(f.Content, []byte("\n"))
	}
	return f.lines
}

func (f *File) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(f.Content[node.StartByte():node.EndByte()])
}
