// Package set has a map-backed Set, used for owner names, handler method names, and handler IDs.
package set

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Set of comparable values.
// A nil Set is empty, and [Set.Add] and [Set.Remove] return a usable Set when called on one.
type Set[T comparable] map[T]struct{}

func New[T comparable](vals ...T) Set[T] {
	return Collect(slices.Values(vals))
}

// FromKeys creates a [Set] of the keys of m.
func FromKeys[T comparable, E any](m map[T]E) Set[T] {
	return Collect(maps.Keys(m))
}

// Collect creates a [Set] of every value in seq.
func Collect[T comparable](seq iter.Seq[T]) Set[T] {
	s := Set[T]{}
	for v := range seq {
		s[v] = struct{}{}
	}
	return s
}

// Sorted returns the values of s in ascending order, or nil if it's empty.
// Error messages listing names use it so they read the same every time.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	if len(s) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(s))
}

func (s Set[T]) Add(vals ...T) Set[T] {
	if s == nil {
		s = Set[T]{}
	}
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

func (s Set[T]) Remove(vals ...T) Set[T] {
	if s == nil {
		return Set[T]{}
	}
	for _, v := range vals {
		delete(s, v)
	}
	return s
}

func (s Set[T]) Has(val T) bool {
	_, ok := s[val]
	return ok
}

// Difference returns a new [Set] with the values of s that are not in other.
func (s Set[T]) Difference(other Set[T]) Set[T] {
	diff := Set[T]{}
	for v := range s {
		if !other.Has(v) {
			diff[v] = struct{}{}
		}
	}
	return diff
}
