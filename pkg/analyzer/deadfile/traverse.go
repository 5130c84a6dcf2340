package deadfile

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/deadfiles/internal/fileproc"
	"github.com/panbanda/deadfiles/internal/orderedset"
	"github.com/panbanda/deadfiles/pkg/resolve"
	"github.com/panbanda/deadfiles/pkg/scanner"
	"github.com/panbanda/deadfiles/pkg/source"
)

// Engine walks the import graph breadth first from a set of entries.
// Files are processed one at a time; only entry resolution runs
// concurrently.
type Engine struct {
	resolver   Resolver
	analyzer   SourceAnalyzer
	source     source.ContentSource
	ignore     *scanner.Matcher
	observer   Observer
	maxWorkers int
}

// NewEngine creates a traversal engine. A nil ignore matcher ignores
// nothing; a nil observer is a no-op.
func NewEngine(r Resolver, a SourceAnalyzer, src source.ContentSource, ignore *scanner.Matcher, observer Observer) *Engine {
	if observer == nil {
		observer = func(string) {}
	}
	return &Engine{
		resolver: r,
		analyzer: a,
		source:   src,
		ignore:   ignore,
		observer: observer,
	}
}

// traversal is the state of one Traverse call. Nothing outside the call
// sees it.
//
// Files get ids in enqueue order. The queue is FIFO, so ids are also
// visit order, and the file buckets are bitmaps whose ascending iteration
// reproduces the order files were reached in.
type traversal struct {
	ids   map[string]uint32
	paths []string // by id
	head  uint32   // next id to visit

	visited    *roaring.Bitmap
	dynamic    *roaring.Bitmap
	unparsed   *roaring.Bitmap
	ignored    *roaring.Bitmap
	unresolved *orderedset.Set[string]
}

func newTraversal() *traversal {
	return &traversal{
		ids:        make(map[string]uint32),
		visited:    roaring.New(),
		dynamic:    roaring.New(),
		unparsed:   roaring.New(),
		ignored:    roaring.New(),
		unresolved: orderedset.New[string](),
	}
}

// enqueue appends path unless it was already enqueued or visited.
func (t *traversal) enqueue(path string) {
	if _, ok := t.ids[path]; ok {
		return
	}
	t.ids[path] = uint32(len(t.paths))
	t.paths = append(t.paths, path)
}

func (t *traversal) dequeue() (uint32, bool) {
	if int(t.head) == len(t.paths) {
		return 0, false
	}
	id := t.head
	t.head++
	return id, true
}

func (t *traversal) files(b *roaring.Bitmap) []string {
	out := make([]string, 0, b.GetCardinality())
	it := b.Iterator()
	for it.HasNext() {
		out = append(out, t.paths[it.Next()])
	}
	return out
}

func (t *traversal) result() *Traversal {
	return &Traversal{
		Dependencies: t.files(t.visited),
		Dynamic:      t.files(t.dynamic),
		Unparsed:     t.files(t.unparsed),
		Unresolved:   t.unresolved.Values(),
		Ignored:      t.files(t.ignored),
	}
}

// ResolveEntries resolves every entry concurrently. Any failure is fatal;
// all failures are joined in entry order.
func (e *Engine) ResolveEntries(entries []string) ([]string, error) {
	results := fileproc.Map(entries, e.maxWorkers, e.resolver.ResolveEntry)

	if failed := fileproc.Collect(results); failed != nil {
		errs := make([]error, len(failed.Errors))
		for i, pe := range failed.Errors {
			errs[i] = &EntryError{Entry: pe.Input, Err: pe.Err}
		}
		return nil, errors.Join(errs...)
	}

	resolved := make([]string, len(results))
	for i, r := range results {
		resolved[i] = r.Value
	}
	return resolved, nil
}

// Traverse resolves the entries and walks the graph until the queue is
// empty. Unreadable files, parse failures and unresolved specifiers are
// recorded and never returned as errors. The context is checked once per
// file.
func (e *Engine) Traverse(ctx context.Context, entries []string) (*Traversal, error) {
	resolved, err := e.ResolveEntries(entries)
	if err != nil {
		return nil, err
	}

	t := newTraversal()
	for _, path := range resolved {
		t.enqueue(path)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, ok := t.dequeue()
		if !ok {
			break
		}
		e.visit(t, id)
	}
	return t.result(), nil
}

// visit processes one dequeued file.
func (e *Engine) visit(t *traversal, id uint32) {
	path := t.paths[id]
	t.visited.Add(id)
	if e.ignore.Match(path) {
		t.ignored.Add(id)
		return
	}
	e.observer(path)

	src, err := e.source.Read(path)
	if err != nil {
		src = nil
	}

	found, err := e.analyzer.Analyze(src, path)
	if err != nil {
		t.unparsed.Add(id)
		return
	}

	dir := filepath.Dir(path)
	for _, spec := range found.Static {
		base := ""
		if resolve.IsRelative(spec) {
			base = dir
		}
		target, err := e.resolver.Resolve(spec, base)
		if err != nil {
			t.unresolved.Add(spec)
			continue
		}
		t.enqueue(target)
	}

	if found.Dynamic {
		t.dynamic.Add(id)
	}
}
