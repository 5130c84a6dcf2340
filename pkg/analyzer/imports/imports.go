// Package imports extracts module dependency declarations from
// JavaScript and TypeScript syntax trees.
package imports

import (
	"github.com/panbanda/deadfiles/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// Imports is the result of analysing one file.
type Imports struct {
	// Static lists specifiers whose target is known from source text,
	// deduplicated, in source order.
	Static []string `json:"static"`
	// Dynamic reports whether at least one require/import call has a
	// non-literal argument.
	Dynamic bool `json:"dynamic"`
}

// Extract walks a parsed file and collects its dependency declarations.
func Extract(result *parser.ParseResult) Imports {
	var out Imports
	if result == nil || result.Tree == nil {
		return out
	}

	seen := make(map[string]bool)
	add := func(spec string) {
		if spec == "" || seen[spec] {
			return
		}
		seen[spec] = true
		out.Static = append(out.Static, spec)
	}

	parser.WalkTyped(result.Tree.RootNode(), result.Source, func(node *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case "import_statement", "export_statement", "import_require_clause":
			// Re-exports and imports carry their specifier in the source field.
			// A TS `import x = require()` nests an import_require_clause, so
			// keep descending.
			if spec, ok := literalText(sourceNode(node), src); ok {
				add(spec)
			}
		case "call_expression":
			if !isLoaderCall(node, src) {
				return true
			}
			if spec, ok := firstArgLiteral(node, src); ok {
				add(spec)
			} else {
				out.Dynamic = true
			}
		}
		return true
	})

	return out
}

// sourceNode returns the specifier string of an import or export node.
// Older grammars expose the require clause's string without a field name.
func sourceNode(node *sitter.Node) *sitter.Node {
	if s := node.ChildByFieldName("source"); s != nil {
		return s
	}
	if node.Type() != "import_require_clause" {
		return nil
	}
	for i := range int(node.NamedChildCount()) {
		if child := node.NamedChild(i); child.Type() == "string" {
			return child
		}
	}
	return nil
}

// isLoaderCall reports whether a call is require(...) or import(...).
func isLoaderCall(call *sitter.Node, src []byte) bool {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return false
	}
	switch fn.Type() {
	case "import":
		return true
	case "identifier":
		return parser.GetNodeText(fn, src) == "require"
	}
	return false
}

func firstArgLiteral(call *sitter.Node, src []byte) (string, bool) {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return "", false
	}
	return literalText(args.NamedChild(0), src)
}

// literalText returns the decoded value of a string literal or of a
// template literal without substitutions. Whitespace is kept.
func literalText(node *sitter.Node, src []byte) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Type() {
	case "string":
	case "template_string":
		for i := range int(node.NamedChildCount()) {
			if node.NamedChild(i).Type() == "template_substitution" {
				return "", false
			}
		}
	default:
		return "", false
	}

	text := parser.GetNodeText(node, src)
	if len(text) < 2 {
		return "", false
	}
	return unescape(text[1 : len(text)-1]), true
}
