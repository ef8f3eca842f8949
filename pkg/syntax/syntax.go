// Package syntax locates C constructs with tree-sitter and reports them as
// line spans. It backs the "ast" engine of the removers; the default
// "lines" engine works on raw text and lives with each remover.
package syntax

import (
	"fmt"
	"sync"

	"github.com/l3aro/cprep/pkg/textbuf"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

// Engine selects how spans are located.
type Engine string

const (
	// EngineLines matches on text lines, brace counting and regexps.
	EngineLines Engine = "lines"
	// EngineAST matches on the tree-sitter C syntax tree.
	EngineAST Engine = "ast"
)

// ParseEngine validates an engine name. Empty selects EngineLines.
func ParseEngine(s string) (Engine, error) {
	switch Engine(s) {
	case "", EngineLines:
		return EngineLines, nil
	case EngineAST:
		return EngineAST, nil
	default:
		return "", fmt.Errorf("invalid engine: %s (must be 'lines' or 'ast')", s)
	}
}

// cParserPool is a pool of reusable tree-sitter parsers for C.
var cParserPool = sync.Pool{
	New: func() interface{} {
		parser := sitter.NewParser()
		parser.SetLanguage(c.GetLanguage())
		return parser
	},
}

// Tree is a parsed C file.
type Tree struct {
	tree    *sitter.Tree
	content []byte
}

// Parse parses C source. The returned tree must be closed.
func Parse(content []byte) (*Tree, error) {
	parser := cParserPool.Get().(*sitter.Parser)
	defer cParserPool.Put(parser)

	tree := parser.Parse(nil, content)
	if tree == nil {
		return nil, fmt.Errorf("parsing C source failed")
	}
	return &Tree{tree: tree, content: content}, nil
}

// Close releases the tree.
func (t *Tree) Close() {
	t.tree.Close()
}

// FunctionDefinitions returns the spans of function_definition nodes named
// name, in source order.
func (t *Tree) FunctionDefinitions(name string) []textbuf.Span {
	var spans []textbuf.Span
	t.walk(t.tree.RootNode(), func(n *sitter.Node) bool {
		if n.Type() != "function_definition" {
			return true
		}
		if got, ok := functionName(n.ChildByFieldName("declarator"), t.content); ok && got == name {
			spans = append(spans, nodeSpan(n))
		}
		return false
	})
	return spans
}

// FunctionDeclarations returns the spans of declarations that declare a
// function named name (prototypes).
func (t *Tree) FunctionDeclarations(name string) []textbuf.Span {
	var spans []textbuf.Span
	t.walk(t.tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Type() {
		case "function_definition":
			return false
		case "declaration":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				if got, ok := functionName(n.NamedChild(i), t.content); ok && got == name {
					spans = append(spans, nodeSpan(n))
					break
				}
			}
			return false
		}
		return true
	})
	return spans
}

// DesignatedEntries returns the spans of `[name] = { ... }` initializer
// pairs. Pairs whose value is not a brace initializer are ignored.
func (t *Tree) DesignatedEntries(name string) []textbuf.Span {
	var spans []textbuf.Span
	t.walk(t.tree.RootNode(), func(n *sitter.Node) bool {
		if n.Type() != "initializer_pair" {
			return true
		}
		value := n.ChildByFieldName("value")
		if value == nil || value.Type() != "initializer_list" {
			return true
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			d := n.NamedChild(i)
			if d.Type() != "subscript_designator" || d.NamedChildCount() == 0 {
				continue
			}
			idx := d.NamedChild(0)
			if idx.Type() == "identifier" && idx.Content(t.content) == name {
				spans = append(spans, nodeSpan(n))
				return false
			}
		}
		return true
	})
	return spans
}

// walk visits nodes depth-first; visit returns false to skip children.
func (t *Tree) walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		t.walk(node.Child(i), visit)
	}
}

// functionName follows a declarator chain down to its identifier. ok is
// true when the identifier is declared as a function rather than, say, a
// pointer to one.
func functionName(node *sitter.Node, content []byte) (name string, ok bool) {
	isFunc := false
	for node != nil {
		switch node.Type() {
		case "identifier":
			return node.Content(content), isFunc
		case "function_declarator":
			isFunc = true
			node = node.ChildByFieldName("declarator")
		case "pointer_declarator":
			isFunc = false
			node = node.ChildByFieldName("declarator")
		case "attributed_declarator":
			node = node.NamedChild(0)
		case "parenthesized_declarator":
			node = node.NamedChild(0)
		default:
			return "", false
		}
	}
	return "", false
}

func nodeSpan(n *sitter.Node) textbuf.Span {
	return textbuf.Span{
		Start: int(n.StartPoint().Row),
		End:   int(n.EndPoint().Row),
	}
}
