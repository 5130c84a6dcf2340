package deadfile

import (
	"fmt"

	"github.com/panbanda/deadfiles/pkg/analyzer/imports"
)

// Report is the outcome of one detection run. Every list is ordered and
// holds unique values. File entries are canonical absolute paths;
// UnresolvedDependencies holds raw specifiers.
type Report struct {
	Root                   string   `json:"root" toon:"root"`
	DeadFiles              []string `json:"dead_files" toon:"dead_files"`
	Dependencies           []string `json:"dependencies" toon:"dependencies"`
	DynamicDependencies    []string `json:"dynamic_dependencies" toon:"dynamic_dependencies"`
	UnparsedDependencies   []string `json:"unparsed_dependencies" toon:"unparsed_dependencies"`
	UnresolvedDependencies []string `json:"unresolved_dependencies" toon:"unresolved_dependencies"`
	IgnoredDependencies    []string `json:"ignored_dependencies" toon:"ignored_dependencies"`
}

// Summary counts each bucket of a report.
type Summary struct {
	DeadFiles    int `json:"dead_files" toon:"dead_files"`
	Dependencies int `json:"dependencies" toon:"dependencies"`
	Dynamic      int `json:"dynamic" toon:"dynamic"`
	Unparsed     int `json:"unparsed" toon:"unparsed"`
	Unresolved   int `json:"unresolved" toon:"unresolved"`
	Ignored      int `json:"ignored" toon:"ignored"`
}

// Summary returns the bucket sizes.
func (r *Report) Summary() Summary {
	return Summary{
		DeadFiles:    len(r.DeadFiles),
		Dependencies: len(r.Dependencies),
		Dynamic:      len(r.DynamicDependencies),
		Unparsed:     len(r.UnparsedDependencies),
		Unresolved:   len(r.UnresolvedDependencies),
		Ignored:      len(r.IgnoredDependencies),
	}
}

// Traversal holds the buckets produced by walking the import graph.
type Traversal struct {
	Dependencies []string
	Dynamic      []string
	Unparsed     []string
	Unresolved   []string
	Ignored      []string
}

// EntryError reports an entry point that could not be resolved. It aborts
// the whole run.
type EntryError struct {
	Entry string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %q: %v", e.Entry, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// SourceAnalyzer extracts dependency declarations from file content.
type SourceAnalyzer interface {
	Analyze(src []byte, path string) (imports.Imports, error)
}

// Resolver maps entries and specifiers to canonical file paths.
type Resolver interface {
	ResolveEntry(entry string) (string, error)
	Resolve(specifier, baseDir string) (string, error)
}

// Observer is called with each traversed file before it is read.
type Observer func(path string)
