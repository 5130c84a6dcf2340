// Package scanner enumerates the files matched by include globs under a
// root directory, minus ignored paths.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/deadfiles/internal/fileproc"
	"github.com/panbanda/deadfiles/internal/orderedset"
)

// Scanner expands include patterns into canonical file paths.
type Scanner struct {
	root       string
	ignore     *Matcher
	gitignore  bool
	gitRoot    string
	gitMatcher gitignore.Matcher
	maxWorkers int
}

// Option is a functional option for configuring Scanner.
type Option func(*Scanner)

// WithGitignore also excludes paths matched by .gitignore files of the
// enclosing git repository.
func WithGitignore(enabled bool) Option {
	return func(s *Scanner) {
		s.gitignore = enabled
	}
}

// WithMaxWorkers bounds how many patterns are expanded at once.
func WithMaxWorkers(n int) Option {
	return func(s *Scanner) {
		s.maxWorkers = n
	}
}

// NewScanner creates a scanner rooted at root that skips paths matched by
// ignore.
func NewScanner(root string, ignore []string, opts ...Option) (*Scanner, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s := &Scanner{
		root:   absRoot,
		ignore: NewMatcher(absRoot, ignore),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gitignore {
		s.loadGitignore()
	}
	return s, nil
}

// Root returns the canonical root directory.
func (s *Scanner) Root() string {
	return s.root
}

// Matcher returns the ignore matcher used during enumeration.
func (s *Scanner) Matcher() *Matcher {
	return s.ignore
}

// Scan expands each include pattern and returns the union of matched files
// in pattern order, duplicates removed. Patterns that are invalid or match
// nothing contribute no files.
func (s *Scanner) Scan(include []string) []string {
	results := fileproc.Map(include, s.maxWorkers, func(pattern string) ([]string, error) {
		return s.expand(pattern), nil
	})

	files := orderedset.New[string]()
	for _, r := range results {
		for _, f := range r.Value {
			files.Add(f)
		}
	}
	return files.Values()
}

// expand walks the static prefix of pattern and collects matching files.
func (s *Scanner) expand(pattern string) []string {
	pattern = filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil
	}

	base, rest := doublestar.SplitPattern(pattern)
	baseDir := filepath.FromSlash(base)
	if !isAbsPattern(pattern) {
		baseDir = filepath.Join(s.root, baseDir)
	}
	baseDir, err := filepath.EvalSymlinks(baseDir)
	if err != nil {
		return nil
	}

	var files []string
	_ = filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if path != baseDir && (s.ignore.MatchDir(path) || s.isGitignored(path, true)) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(rest, filepath.ToSlash(rel)); !ok {
			return nil
		}

		real, ok := regularFile(path, d)
		if !ok {
			return nil
		}
		if s.ignore.Match(path) || s.ignore.Match(real) || s.isGitignored(path, false) {
			return nil
		}
		files = append(files, real)
		return nil
	})
	return files
}

// regularFile returns the canonical path of a walked entry when it is, or
// links to, a regular file.
func regularFile(path string, d fs.DirEntry) (string, bool) {
	if d.Type().IsRegular() {
		return path, true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return "", false
	}
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(real)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return real, true
}

// findGitRoot returns the nearest ancestor containing a .git directory, or
// "" outside a repository.
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (s *Scanner) loadGitignore() {
	gitRoot := findGitRoot(s.root)
	if gitRoot == "" {
		return
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err != nil || len(patterns) == 0 {
		return
	}
	s.gitRoot = gitRoot
	s.gitMatcher = gitignore.NewMatcher(patterns)
}

func (s *Scanner) isGitignored(path string, isDir bool) bool {
	if s.gitMatcher == nil {
		return false
	}
	rel, err := filepath.Rel(s.gitRoot, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return s.gitMatcher.Match(strings.Split(rel, string(filepath.Separator)), isDir)
}
