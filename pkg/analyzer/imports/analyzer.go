package imports

import (
	"encoding/json"

	"github.com/panbanda/deadfiles/internal/cache"
	"github.com/panbanda/deadfiles/pkg/parser"
)

// Analyzer parses file content and extracts its imports.
// It reuses one tree-sitter parser and is not safe for concurrent use.
type Analyzer struct {
	parser *parser.Parser
	cache  *cache.Cache
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithCache memoises successful analyses keyed by path and content hash.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// New creates a new imports analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		parser: parser.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze parses src as the file at path and returns its imports.
// A nil src (unreadable file), an unknown extension or a syntax error
// all return an error.
func (a *Analyzer) Analyze(src []byte, path string) (Imports, error) {
	var hash string
	if a.cache != nil && src != nil {
		hash = cache.ContentHash(src)
		if data, ok := a.cache.Lookup(path, hash); ok {
			var cached Imports
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	result, err := a.parser.ParseFile(src, path)
	if err != nil {
		return Imports{}, err
	}
	defer result.Tree.Close()

	imps := Extract(result)

	if hash != "" {
		if data, err := json.Marshal(imps); err == nil {
			_ = a.cache.Store(path, hash, data)
		}
	}
	return imps, nil
}

// Close releases parser resources.
func (a *Analyzer) Close() {
	a.parser.Close()
}
