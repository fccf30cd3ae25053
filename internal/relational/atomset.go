package relational

import (
	"sort"
	"strings"
)

// AtomSet is a set of atoms keyed by structural identity. The zero value is
// not usable; use NewAtomSet.
type AtomSet map[string]Atom

// NewAtomSet returns a set holding atoms.
func NewAtomSet(atoms ...Atom) AtomSet {
	s := make(AtomSet, len(atoms))
	for _, a := range atoms {
		s.Add(a)
	}
	return s
}

// Add inserts an atom.
func (s AtomSet) Add(a Atom) { s[a.Key()] = a }

// Remove deletes an atom, if present.
func (s AtomSet) Remove(a Atom) { delete(s, a.Key()) }

// Contains reports membership.
func (s AtomSet) Contains(a Atom) bool {
	_, ok := s[a.Key()]
	return ok
}

// ContainsAll reports whether every atom of o is in s.
func (s AtomSet) ContainsAll(o AtomSet) bool {
	for k := range o {
		if _, ok := s[k]; !ok {
			return false
		}
	}
	return true
}

// Intersects reports whether s and o share at least one atom.
func (s AtomSet) Intersects(o AtomSet) bool {
	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	for k := range small {
		if _, ok := large[k]; ok {
			return true
		}
	}
	return false
}

// Clone returns a shallow copy.
func (s AtomSet) Clone() AtomSet {
	c := make(AtomSet, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Equal reports set equality.
func (s AtomSet) Equal(o AtomSet) bool {
	return len(s) == len(o) && s.ContainsAll(o)
}

// Sorted returns the atoms ordered by key, for deterministic iteration.
func (s AtomSet) Sorted() []Atom {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Atom, len(keys))
	for i, k := range keys {
		out[i] = s[k]
	}
	return out
}

// Key is a canonical identity for the whole set, used to detect repeated
// states during search.
func (s AtomSet) Key() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ";")
}

func (s AtomSet) String() string {
	atoms := s.Sorted()
	parts := make([]string, len(atoms))
	for i, a := range atoms {
		parts[i] = a.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
