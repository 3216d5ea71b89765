// Copyright 2025 The account Authors
// This file is part of the account library.
//
// Bounded insertion-ordered sets. Every enumerable collection on the
// account is capped at maxSetEntries so enumeration stays bounded-cost;
// insertion past the cap is reported to the caller and leaves the set
// untouched.

package delegation

// orderedSet is a capped set with stable insertion order.
type orderedSet[T comparable] struct {
	index map[T]int
	order []T
}

func newOrderedSet[T comparable]() *orderedSet[T] {
	return &orderedSet[T]{index: make(map[T]int)}
}

// Add inserts v. It reports false only when the set is full; re-adding an
// existing element is a successful no-op.
func (s *orderedSet[T]) Add(v T) bool {
	if _, ok := s.index[v]; ok {
		return true
	}
	if len(s.order) >= maxSetEntries {
		return false
	}
	s.index[v] = len(s.order)
	s.order = append(s.order, v)
	return true
}

// Remove deletes v, preserving the insertion order of the remainder.
func (s *orderedSet[T]) Remove(v T) {
	i, ok := s.index[v]
	if !ok {
		return
	}
	delete(s.index, v)
	s.order = append(s.order[:i], s.order[i+1:]...)
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
}

func (s *orderedSet[T]) Contains(v T) bool {
	_, ok := s.index[v]
	return ok
}

func (s *orderedSet[T]) Len() int { return len(s.order) }

// At returns the i-th element in insertion order.
func (s *orderedSet[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(s.order) {
		return zero, false
	}
	return s.order[i], true
}

// Values returns a copy of the elements in insertion order.
func (s *orderedSet[T]) Values() []T {
	out := make([]T, len(s.order))
	copy(out, s.order)
	return out
}

// Copy returns a deep copy, used by state snapshots.
func (s *orderedSet[T]) Copy() *orderedSet[T] {
	cpy := &orderedSet[T]{
		index: make(map[T]int, len(s.index)),
		order: make([]T, len(s.order)),
	}
	copy(cpy.order, s.order)
	for k, v := range s.index {
		cpy.index[k] = v
	}
	return cpy
}
