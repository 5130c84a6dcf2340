// Package orderedset provides an insertion-ordered set.
package orderedset

// Set keeps unique values in first-insertion order. The zero value is
// ready to use. A Set is not safe for concurrent use.
type Set[T comparable] struct {
	items []T
	index map[T]struct{}
}

// New returns a set holding values, duplicates dropped.
func New[T comparable](values ...T) *Set[T] {
	s := &Set[T]{}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add appends v if absent and reports whether it was added.
func (s *Set[T]) Add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]struct{})
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Contains reports whether v is in the set.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of values.
func (s *Set[T]) Len() int {
	return len(s.items)
}

// Values returns a copy of the values in insertion order. It never
// returns nil, so empty sets serialise as [].
func (s *Set[T]) Values() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
