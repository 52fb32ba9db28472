package types

import (
	"cmp"
	"encoding/json"
	"slices"
	"time"
)

// Set is an unordered collection. It persists as a sorted JSON array so
// saves are stable, and duplicate elements collapse on load.
type Set[T cmp.Ordered] map[T]struct{}

func NewSet[T cmp.Ordered](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func (s *Set[T]) Add(v T) {
	if *s == nil {
		*s = make(Set[T])
	}
	(*s)[v] = struct{}{}
}

func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

func (s Set[T]) Remove(v T) { delete(s, v) }

func (s Set[T]) Len() int { return len(s) }

// Sorted returns the members in ascending order.
func (s Set[T]) Sorted() []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// SubsetOf reports whether every member of s is also in other.
func (s Set[T]) SubsetOf(other Set[T]) bool {
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

func (s Set[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *Set[T]) UnmarshalJSON(b []byte) error {
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*s = NewSet(items...)
	return nil
}

// Seconds is a duration persisted as a floating point count of seconds.
type Seconds time.Duration

func (d Seconds) Duration() time.Duration { return time.Duration(d) }

func (d Seconds) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).Seconds())
}

func (d *Seconds) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*d = Seconds(f * float64(time.Second))
	return nil
}
