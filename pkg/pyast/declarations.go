package pyast

import (
	"iter"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/yaklabco/napcheck/pkg/docstring"
)

// declHandler builds a Declaration from a node of the kind it is registered for.
type declHandler func(f *File, node *sitter.Node) Declaration

//nolint:gochecknoglobals // static dispatch table
var declHandlers = map[string]declHandler{
	"function_definition": functionDecl,
	"class_definition":    classDecl,
}

// Declarations yields every function and class in f in pre-order, depth-first
// source order. Nested declarations follow their enclosing declaration.
// Declarations without a docstring are yielded too.
func Declarations(f *File) iter.Seq[Declaration] {
	return func(yield func(Declaration) bool) {
		if f == nil || f.root == nil {
			return
		}
		walkDecls(f, f.root, yield)
	}
}

func walkDecls(f *File, node *sitter.Node, yield func(Declaration) bool) bool {
	if node == nil {
		return true
	}
	if handler, ok := declHandlers[node.Kind()]; ok {
		if !yield(handler(f, node)) {
			return false
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if !walkDecls(f, node.Child(i), yield) {
			return false
		}
	}
	return true
}

func functionDecl(f *File, node *sitter.Node) Declaration {
	decl := baseDecl(f, node, KindFunction)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "async" {
			decl.Async = true
		}
		if child.Kind() == "def" {
			break
		}
	}
	decl.Params = parameters(f, node.ChildByFieldName("parameters"))
	decl.InClass = isClassMember(node)
	return decl
}

func classDecl(f *File, node *sitter.Node) Declaration {
	decl := baseDecl(f, node, KindClass)
	decl.InClass = isClassMember(node)
	return decl
}

func baseDecl(f *File, node *sitter.Node, kind Kind) Declaration {
	pos := node.StartPosition()
	decl := Declaration{
		Kind:   kind,
		Name:   f.text(node.ChildByFieldName("name")),
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column),
	}
	if raw, ok := rawDocstring(f, node.ChildByFieldName("body")); ok {
		decl.HasDocstring = true
		decl.Docstring = docstring.Clean(raw)
	}
	return decl
}

func isClassMember(node *sitter.Node) bool {
	parent := node.Parent()
	if parent != nil && parent.Kind() == "decorated_definition" {
		parent = parent.Parent()
	}
	if parent == nil || parent.Kind() != "block" {
		return false
	}
	owner := parent.Parent()
	return owner != nil && owner.Kind() == "class_definition"
}

// rawDocstring returns the decoded value of the leading string statement of body.
func rawDocstring(f *File, body *sitter.Node) (string, bool) {
	stmt := firstStatement(body)
	if stmt == nil || stmt.Kind() != "expression_statement" {
		return "", false
	}

	var expr *sitter.Node
	for i := uint(0); i < stmt.NamedChildCount(); i++ {
		child := stmt.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		if expr != nil {
			// "a", "b" is a tuple, not a docstring.
			return "", false
		}
		expr = child
	}
	for expr != nil && expr.Kind() == "parenthesized_expression" {
		expr = soleNamedChild(expr)
	}
	if expr == nil {
		return "", false
	}

	switch expr.Kind() {
	case "string":
		return decodeDocstringLiteral(f.text(expr))
	case "concatenated_string":
		var value string
		for i := uint(0); i < expr.NamedChildCount(); i++ {
			part := expr.NamedChild(i)
			if part.Kind() != "string" {
				continue
			}
			decoded, ok := decodeDocstringLiteral(f.text(part))
			if !ok {
				return "", false
			}
			value += decoded
		}
		return value, true
	default:
		return "", false
	}
}

func firstStatement(body *sitter.Node) *sitter.Node {
	if body == nil {
		return nil
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		if child.Kind() != "comment" {
			return child
		}
	}
	return nil
}

func soleNamedChild(node *sitter.Node) *sitter.Node {
	var only *sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		if only != nil {
			return nil
		}
		only = child
	}
	return only
}

// parameters reads a parameters node into signature order.
func parameters(f *File, params *sitter.Node) []Param {
	if params == nil {
		return nil
	}

	var out []Param
	current := ParamPositionalOrKeyword

	for i := uint(0); i < params.ChildCount(); i++ {
		child := params.Child(i)
		switch child.Kind() {
		case "identifier":
			out = append(out, Param{Name: f.text(child), Kind: current})
		case "default_parameter", "typed_default_parameter":
			out = append(out, Param{Name: f.text(child.ChildByFieldName("name")), Kind: current})
		case "typed_parameter":
			inner := child.NamedChild(0)
			if inner == nil {
				continue
			}
			switch inner.Kind() {
			case "list_splat_pattern":
				out = append(out, Param{Name: splatName(f, inner), Kind: ParamVarPositional})
				current = ParamKeywordOnly
			case "dictionary_splat_pattern":
				out = append(out, Param{Name: splatName(f, inner), Kind: ParamVarKeyword})
			default:
				out = append(out, Param{Name: f.text(inner), Kind: current})
			}
		case "list_splat_pattern":
			out = append(out, Param{Name: splatName(f, child), Kind: ParamVarPositional})
			current = ParamKeywordOnly
		case "dictionary_splat_pattern":
			out = append(out, Param{Name: splatName(f, child), Kind: ParamVarKeyword})
		case "keyword_separator", "*":
			current = ParamKeywordOnly
		case "positional_separator", "/":
			for j := range out {
				if out[j].Kind == ParamPositionalOrKeyword {
					out[j].Kind = ParamPositionalOnly
				}
			}
		}
	}

	return out
}

func splatName(f *File, node *sitter.Node) string {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() == "identifier" {
			return f.text(child)
		}
	}
	return ""
}
