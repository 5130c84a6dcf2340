package scanner

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher tests canonical paths against ignore globs. Absolute patterns
// match the absolute path; relative patterns match the path relative to
// the root. A Matcher is safe for concurrent use.
type Matcher struct {
	root     string
	patterns []string
	prunes   []string
}

// NewMatcher compiles patterns against root. Invalid patterns never match.
func NewMatcher(root string, patterns []string) *Matcher {
	m := &Matcher{root: root}
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		if !doublestar.ValidatePattern(p) {
			continue
		}
		m.patterns = append(m.patterns, p)
		if prefix, ok := strings.CutSuffix(p, "/**"); ok && prefix != "" {
			m.prunes = append(m.prunes, prefix)
		}
	}
	return m
}

// Patterns returns the compiled patterns.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return m.patterns
}

// Match reports whether path is ignored.
func (m *Matcher) Match(path string) bool {
	if m == nil {
		return false
	}
	for _, p := range m.patterns {
		if m.matchOne(p, path) {
			return true
		}
	}
	return false
}

// MatchDir reports whether every path below dir is ignored, which holds
// when dir matches the prefix of a pattern ending in "/**".
func (m *Matcher) MatchDir(dir string) bool {
	if m == nil {
		return false
	}
	for _, p := range m.prunes {
		if m.matchOne(p, dir) {
			return true
		}
	}
	return false
}

func (m *Matcher) matchOne(pattern, path string) bool {
	target := filepath.ToSlash(path)
	if !isAbsPattern(pattern) {
		rel, err := filepath.Rel(m.root, path)
		if err != nil {
			return false
		}
		target = filepath.ToSlash(rel)
	}
	ok, err := doublestar.Match(pattern, target)
	return err == nil && ok
}

func isAbsPattern(pattern string) bool {
	return strings.HasPrefix(pattern, "/") || filepath.IsAbs(filepath.FromSlash(pattern))
}
