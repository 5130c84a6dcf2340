// Package resolve maps module specifiers to canonical file paths using
// Node's file, directory and node_modules lookup rules.
package resolve

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/panbanda/deadfiles/pkg/parser"
)

var (
	// ErrNotFound is returned when no file matches a specifier.
	ErrNotFound = errors.New("cannot find module")
	// ErrBuiltin is returned for runtime core modules, which have no file.
	ErrBuiltin = errors.New("core module has no file")
)

// Error describes a failed resolution.
type Error struct {
	Specifier string
	Base      string
	Err       error
}

func (e *Error) Error() string {
	if e.Base == "" {
		return fmt.Sprintf("%s: %v", e.Specifier, e.Err)
	}
	return fmt.Sprintf("%s (from %s): %v", e.Specifier, e.Base, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DefaultCacheSize bounds each of the resolver's LRU caches.
const DefaultCacheSize = 4096

// Resolver resolves specifiers relative to a root directory.
// It is safe for concurrent use.
type Resolver struct {
	root       string
	extensions []string
	results    *lru.Cache[resolveKey, string]
	manifests  *lru.Cache[string, *manifest]
}

type resolveKey struct {
	base      string
	specifier string
}

// manifest holds the package.json fields used for resolution.
type manifest struct {
	Main string `json:"main"`
}

// Option is a functional option for configuring Resolver.
type Option func(*Resolver)

// WithExtensions sets the probe order for extensionless specifiers.
func WithExtensions(exts []string) Option {
	return func(r *Resolver) {
		if len(exts) > 0 {
			r.extensions = exts
		}
	}
}

// DefaultExtensions returns the recognised source extensions plus .json.
func DefaultExtensions() []string {
	return append(parser.SourceExtensions(), ".json")
}

// New creates a resolver rooted at root. Bare specifiers are looked up in
// node_modules directories from root upward.
func New(root string, opts ...Option) (*Resolver, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if real, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = real
	}

	results, err := lru.New[resolveKey, string](DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	manifests, err := lru.New[string, *manifest](DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		root:       absRoot,
		extensions: DefaultExtensions(),
		results:    results,
		manifests:  manifests,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Root returns the canonical root directory.
func (r *Resolver) Root() string {
	return r.root
}

// IsRelative reports whether a specifier names a path rather than a package.
func IsRelative(specifier string) bool {
	return strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") || filepath.IsAbs(specifier)
}

// ResolveEntry resolves an entry point path against the root directory.
func (r *Resolver) ResolveEntry(entry string) (string, error) {
	path := entry
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	if resolved, ok := r.loadPath(path); ok {
		return resolved, nil
	}
	return "", &Error{Specifier: entry, Err: ErrNotFound}
}

// Resolve maps specifier to a canonical file path. Relative specifiers are
// resolved against baseDir; bare specifiers ignore it.
func (r *Resolver) Resolve(specifier, baseDir string) (string, error) {
	if !IsRelative(specifier) {
		baseDir = ""
	}

	key := resolveKey{base: baseDir, specifier: specifier}
	if cached, ok := r.results.Get(key); ok {
		return cached, nil
	}

	resolved, err := r.resolve(specifier, baseDir)
	if err != nil {
		return "", &Error{Specifier: specifier, Base: baseDir, Err: err}
	}
	r.results.Add(key, resolved)
	return resolved, nil
}

func (r *Resolver) resolve(specifier, baseDir string) (string, error) {
	if IsRelative(specifier) {
		path := specifier
		if !filepath.IsAbs(path) {
			if baseDir == "" {
				baseDir = r.root
			}
			path = filepath.Join(baseDir, filepath.FromSlash(specifier))
		}
		if resolved, ok := r.loadPath(path); ok {
			return resolved, nil
		}
		return "", ErrNotFound
	}

	if IsBuiltin(specifier) {
		return "", ErrBuiltin
	}
	return r.loadNodeModules(specifier)
}

// loadPath tries path as a file, then as a directory.
func (r *Resolver) loadPath(path string) (string, bool) {
	if resolved, ok := r.loadAsFile(path); ok {
		return resolved, true
	}
	return r.loadAsDirectory(path)
}

func (r *Resolver) loadAsFile(path string) (string, bool) {
	if isFile(path) {
		return canonical(path), true
	}
	for _, ext := range r.extensions {
		if candidate := path + ext; isFile(candidate) {
			return canonical(candidate), true
		}
	}
	return "", false
}

func (r *Resolver) loadAsDirectory(dir string) (string, bool) {
	if !isDir(dir) {
		return "", false
	}

	if m := r.readManifest(dir); m != nil && m.Main != "" {
		main := filepath.Join(dir, filepath.FromSlash(m.Main))
		if resolved, ok := r.loadAsFile(main); ok {
			return resolved, true
		}
		if resolved, ok := r.loadIndex(main); ok {
			return resolved, true
		}
	}
	return r.loadIndex(dir)
}

func (r *Resolver) loadIndex(dir string) (string, bool) {
	for _, ext := range r.extensions {
		if candidate := filepath.Join(dir, "index"+ext); isFile(candidate) {
			return canonical(candidate), true
		}
	}
	return "", false
}

// loadNodeModules looks for the package in node_modules directories from
// the root upward.
func (r *Resolver) loadNodeModules(specifier string) (string, error) {
	rel := filepath.FromSlash(specifier)
	for dir := r.root; ; {
		if filepath.Base(dir) != "node_modules" {
			candidate := filepath.Join(dir, "node_modules", rel)
			if resolved, ok := r.loadPath(candidate); ok {
				return resolved, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

func (r *Resolver) readManifest(dir string) *manifest {
	if m, ok := r.manifests.Get(dir); ok {
		return m
	}

	var m *manifest
	if data, err := os.ReadFile(filepath.Join(dir, "package.json")); err == nil {
		var parsed manifest
		if json.Unmarshal(data, &parsed) == nil {
			m = &parsed
		}
	}
	r.manifests.Add(dir, m)
	return m
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// canonical returns the absolute, symlink-free form of path.
func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}
