package parser

import (
	"errors"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"src/index.js", LangJavaScript},
		{"src/App.jsx", LangJavaScript},
		{"lib/worker.mjs", LangJavaScript},
		{"lib/legacy.cjs", LangJavaScript},
		{"lib/old.es6", LangJavaScript},
		{"src/main.ts", LangTypeScript},
		{"src/main.MTS", LangTypeScript},
		{"src/types.cts", LangTypeScript},
		{"src/App.tsx", LangTSX},
		{"package.json", LangUnknown},
		{"styles.css", LangUnknown},
		{"Makefile", LangUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.path))
		})
	}
}

func TestSourceExtensions(t *testing.T) {
	exts := SourceExtensions()
	require.NotEmpty(t, exts)
	assert.Equal(t, ".js", exts[0])
	for _, ext := range exts {
		assert.NotEqual(t, LangUnknown, DetectLanguage("file"+ext), ext)
	}
}

func TestParse(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.Parse([]byte("import a from \"./a\";\nexport const b = 1;\n"), LangJavaScript, "main.js")
	require.NoError(t, err)
	defer result.Tree.Close()

	assert.Equal(t, LangJavaScript, result.Language)
	assert.Equal(t, "main.js", result.Path)
	assert.Equal(t, "program", result.Tree.RootNode().Type())
}

func TestParseEmptySource(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.Parse([]byte{}, LangTypeScript, "empty.ts")
	require.NoError(t, err)
	result.Tree.Close()
}

func TestParseErrors(t *testing.T) {
	p := New()
	defer p.Close()

	t.Run("nil source", func(t *testing.T) {
		_, err := p.Parse(nil, LangJavaScript, "missing.js")
		assert.True(t, errors.Is(err, ErrNoSource))
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := p.Parse([]byte("import { from ;;; }}}"), LangJavaScript, "broken.js")
		assert.True(t, errors.Is(err, ErrSyntax))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := p.ParseFile([]byte(`{"name": "x"}`), "package.json")
		assert.True(t, errors.Is(err, ErrUnsupported))
	})

	t.Run("unsupported language", func(t *testing.T) {
		_, err := p.Parse([]byte("x"), LangUnknown, "x.txt")
		assert.True(t, errors.Is(err, ErrUnsupported))
	})
}

func TestParseFileTSX(t *testing.T) {
	p := New()
	defer p.Close()

	src := []byte(`import React from "react";
export const App = () => <div className="app">hi</div>;
`)
	result, err := p.ParseFile(src, "App.tsx")
	require.NoError(t, err)
	defer result.Tree.Close()
	assert.Equal(t, LangTSX, result.Language)
}

func TestWalkTypedAndNodeText(t *testing.T) {
	p := New()
	defer p.Close()

	src := []byte(`import x from "./x";`)
	result, err := p.Parse(src, LangJavaScript, "a.js")
	require.NoError(t, err)
	defer result.Tree.Close()

	var strs []string
	WalkTyped(result.Tree.RootNode(), result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if nodeType == "string" {
			strs = append(strs, GetNodeText(node, source))
		}
		return true
	})
	assert.Equal(t, []string{`"./x"`}, strs)
	assert.Equal(t, "", GetNodeText(nil, src))
}
