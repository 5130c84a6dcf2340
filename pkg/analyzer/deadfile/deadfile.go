// Package deadfile finds files that are never reached by following the
// import graph from a set of entry points.
package deadfile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/panbanda/deadfiles/internal/cache"
	"github.com/panbanda/deadfiles/internal/orderedset"
	"github.com/panbanda/deadfiles/pkg/analyzer/imports"
	"github.com/panbanda/deadfiles/pkg/parser"
	"github.com/panbanda/deadfiles/pkg/resolve"
	"github.com/panbanda/deadfiles/pkg/scanner"
	"github.com/panbanda/deadfiles/pkg/source"
	"github.com/sourcegraph/conc"
)

// DefaultIgnore returns the ignore patterns used when none are given.
func DefaultIgnore() []string {
	return []string{"**/node_modules/**"}
}

// DefaultInclude returns one pattern per recognised source extension,
// matching every such file below the root.
func DefaultInclude() []string {
	exts := parser.SourceExtensions()
	patterns := make([]string, len(exts))
	for i, ext := range exts {
		patterns[i] = "**/*" + ext
	}
	return patterns
}

// Analyzer detects dead files.
type Analyzer struct {
	root       string
	entries    []string
	include    []string
	ignore     []string
	extensions []string
	gitignore  bool
	observer   Observer
	cache      *cache.Cache
	source     source.ContentSource
	maxWorkers int
	imports    *imports.Analyzer
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithRoot sets the directory that relative entries, patterns and bare
// specifiers are resolved from. Defaults to the working directory.
func WithRoot(root string) Option {
	return func(a *Analyzer) {
		a.root = root
	}
}

// WithEntries sets the traversal roots.
func WithEntries(entries ...string) Option {
	return func(a *Analyzer) {
		a.entries = append(a.entries, entries...)
	}
}

// WithInclude sets the patterns defining the candidate files. Calling it
// with no patterns leaves no candidates.
func WithInclude(patterns ...string) Option {
	return func(a *Analyzer) {
		a.include = append(append([]string{}, a.include...), patterns...)
	}
}

// WithIgnore sets the patterns pruning both traversal and enumeration.
// Calling it with no patterns turns ignoring off.
func WithIgnore(patterns ...string) Option {
	return func(a *Analyzer) {
		a.ignore = append(append([]string{}, a.ignore...), patterns...)
	}
}

// WithExtensions sets the probe order for extensionless specifiers.
func WithExtensions(exts ...string) Option {
	return func(a *Analyzer) {
		a.extensions = exts
	}
}

// WithGitignore excludes .gitignore'd files from the candidates.
func WithGitignore(enabled bool) Option {
	return func(a *Analyzer) {
		a.gitignore = enabled
	}
}

// WithObserver sets the callback invoked for each traversed file.
func WithObserver(fn Observer) Option {
	return func(a *Analyzer) {
		a.observer = fn
	}
}

// WithCache memoises per-file analysis results.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithSource replaces the filesystem as the origin of file content. Tests
// use it with source.MemorySource; the CLI and MCP server always read the
// filesystem.
func WithSource(src source.ContentSource) Option {
	return func(a *Analyzer) {
		a.source = src
	}
}

// WithMaxWorkers bounds concurrent entry resolution and pattern expansion.
// Zero uses 2x NumCPU.
func WithMaxWorkers(n int) Option {
	return func(a *Analyzer) {
		a.maxWorkers = n
	}
}

// New creates a dead-file analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		root:   ".",
		source: source.NewFilesystem(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.include == nil {
		a.include = DefaultInclude()
	}
	if a.ignore == nil {
		a.ignore = DefaultIgnore()
	}
	if a.extensions == nil {
		a.extensions = resolve.DefaultExtensions()
	}
	a.imports = imports.New(imports.WithCache(a.cache))
	return a
}

// Close releases parser resources.
func (a *Analyzer) Close() {
	a.imports.Close()
}

// Analyze runs the traversal and the candidate enumeration concurrently,
// then subtracts the reached files from the candidates. Only an entry
// that cannot be resolved, or cancellation, fails the run.
func (a *Analyzer) Analyze(ctx context.Context) (*Report, error) {
	root, err := filepath.Abs(a.root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	scan, err := scanner.NewScanner(root, a.ignore,
		scanner.WithGitignore(a.gitignore),
		scanner.WithMaxWorkers(a.maxWorkers),
	)
	if err != nil {
		return nil, fmt.Errorf("opening root: %w", err)
	}

	resolver, err := resolve.New(scan.Root(), resolve.WithExtensions(a.extensions))
	if err != nil {
		return nil, fmt.Errorf("creating resolver: %w", err)
	}

	engine := NewEngine(resolver, a.imports, a.source, scan.Matcher(), a.observer)
	engine.maxWorkers = a.maxWorkers

	var (
		walked     *Traversal
		walkErr    error
		candidates []string
	)
	var wg conc.WaitGroup
	wg.Go(func() {
		walked, walkErr = engine.Traverse(ctx, a.entries)
	})
	wg.Go(func() {
		candidates = scan.Scan(a.include)
	})
	wg.Wait()

	if walkErr != nil {
		return nil, walkErr
	}

	return &Report{
		Root:                   scan.Root(),
		DeadFiles:              DeadFiles(candidates, walked.Dependencies),
		Dependencies:           walked.Dependencies,
		DynamicDependencies:    walked.Dynamic,
		UnparsedDependencies:   walked.Unparsed,
		UnresolvedDependencies: walked.Unresolved,
		IgnoredDependencies:    walked.Ignored,
	}, nil
}

// DeadFiles returns the candidates absent from dependencies, in candidate
// order.
func DeadFiles(candidates, dependencies []string) []string {
	reached := orderedset.New(dependencies...)
	dead := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !reached.Contains(c) {
			dead = append(dead, c)
		}
	}
	return dead
}
