package pyast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// ErrSyntax is returned when the source does not parse as Python.
var ErrSyntax = errors.New("syntax error")

// SyntaxError locates the first ERROR or MISSING node in a parse tree.
type SyntaxError struct {
	Path   string
	Line   int // 1-based
	Column int // 0-based
	Token  string
}

func (e *SyntaxError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s:%d:%d: invalid syntax near %q", e.Path, e.Line, e.Column+1, e.Token)
	}
	return fmt.Sprintf("%s:%d:%d: invalid syntax", e.Path, e.Line, e.Column+1)
}

// Unwrap lets errors.Is match ErrSyntax.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

//nolint:gochecknoglobals // grammar handle is immutable and shared
var pythonLanguage = sync.OnceValue(func() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_python.Language())
})

// Parser turns Python source into a File.
// It is safe for concurrent use; parser instances are pooled.
type Parser struct {
	pool *parserPool
}

// NewParser creates a Python parser.
func NewParser() *Parser {
	return &Parser{pool: newParserPool(pythonLanguage())}
}

// Parse parses content. The returned File must be closed by the caller.
// Source with syntax errors yields a *SyntaxError wrapping ErrSyntax.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	sp := p.pool.get()
	defer p.pool.put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse %s: tree-sitter returned no tree", path)
	}

	file := &File{
		Path:    path,
		Content: content,
		tree:    tree,
		root:    tree.RootNode(),
	}

	if file.root.HasError() {
		synErr := file.syntaxError(file.root)
		file.Close()
		return nil, synErr
	}

	return file, nil
}

// syntaxError finds the first offending node in source order.
func (f *File) syntaxError(root *sitter.Node) *SyntaxError {
	node := firstErrorNode(root)
	if node == nil {
		node = root
	}
	pos := node.StartPosition()

	token := f.text(node)
	if len(token) > 20 {
		token = token[:20]
	}

	return &SyntaxError{
		Path:   f.Path,
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column),
		Token:  token,
	}
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// parserPool recycles tree-sitter parsers bound to one grammar.
type parserPool struct {
	lang *sitter.Language
	pool sync.Pool
}

func newParserPool(lang *sitter.Language) *parserPool {
	p := &parserPool{lang: lang}
	p.pool = sync.Pool{
		New: func() any {
			sp := sitter.NewParser()
			_ = sp.SetLanguage(lang)
			return sp
		},
	}
	return p
}

func (p *parserPool) get() *sitter.Parser {
	sp, _ := p.pool.Get().(*sitter.Parser)
	_ = sp.SetLanguage(p.lang)
	return sp
}

func (p *parserPool) put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	sp.Reset()
	p.pool.Put(sp)
}
