package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language represents a supported source language.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangUnknown    Language = "unknown"
)

var (
	// ErrNoSource is returned when there is no content to parse, typically
	// because the file could not be read.
	ErrNoSource = errors.New("no source content")
	// ErrSyntax is returned when the syntax tree contains error nodes.
	ErrSyntax = errors.New("syntax error")
	// ErrUnsupported is returned for files without a grammar.
	ErrUnsupported = errors.New("unsupported language")
)

// extensions maps recognised source extensions to their grammar.
// Order matters for SourceExtensions.
var extensions = []struct {
	ext  string
	lang Language
}{
	{".js", LangJavaScript},
	{".jsx", LangJavaScript},
	{".mjs", LangJavaScript},
	{".cjs", LangJavaScript},
	{".es6", LangJavaScript},
	{".ts", LangTypeScript},
	{".mts", LangTypeScript},
	{".cts", LangTypeScript},
	{".tsx", LangTSX},
}

// Parser wraps tree-sitter. A Parser is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
	Path     string
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// ParseFile parses source for the file at path, detecting the language
// from its extension.
func (p *Parser) ParseFile(source []byte, path string) (*ParseResult, error) {
	lang := DetectLanguage(path)
	if lang == LangUnknown {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	return p.Parse(source, lang, path)
}

// Parse parses source code with a specified language. A nil source or a
// tree containing error nodes is a parse failure.
func (p *Parser) Parse(source []byte, lang Language, path string) (*ParseResult, error) {
	if source == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSource)
	}

	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if root := tree.RootNode(); root == nil || root.HasError() {
		tree.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrSyntax)
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// GetTreeSitterLanguage returns the tree-sitter language for a Language enum.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, lang)
	}
}

// DetectLanguage determines the language from a file path.
func DetectLanguage(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if e.ext == ext {
			return e.lang
		}
	}
	return LangUnknown
}

// SourceExtensions returns every extension with a grammar, in probe order.
func SourceExtensions() []string {
	exts := make([]string, len(extensions))
	for i, e := range extensions {
		exts[i] = e.ext
	}
	return exts
}

// TypedNodeVisitor visits AST nodes with a pre-cached node type to avoid CGO overhead.
// Returning false skips the node's children.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, source []byte) bool

// WalkTyped traverses the AST calling visitor for each node.
func WalkTyped(node *sitter.Node, source []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	if !visitor(node, nodeType, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		WalkTyped(node.Child(i), source, visitor)
	}
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
