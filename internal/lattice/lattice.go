// Package lattice defines the join-semilattice contract dataflow analyses
// are built on, plus the concrete lattices the built-in detectors use.
package lattice

import "sort"

// Lattice is the algebraic contract an abstract-state type must satisfy:
// a least element, an associative/commutative/idempotent join, and the
// induced partial order. The dataflow solver terminates only when the
// lattice has finite height; that is the implementor's obligation.
type Lattice[T any] interface {
	Bottom() T
	Join(a, b T) T
	Leq(a, b T) bool
}

// Set is an immutable-by-convention string set used as a lattice element.
// Operations return fresh sets and never mutate their receivers.
type Set map[string]struct{}

func NewSet(elems ...string) Set {
	s := make(Set, len(elems))
	for _, e := range elems {
		s[e] = struct{}{}
	}
	return s
}

func (s Set) Has(e string) bool {
	_, ok := s[e]
	return ok
}

// With returns a copy of s with e added.
func (s Set) With(e string) Set {
	out := make(Set, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	out[e] = struct{}{}
	return out
}

// Elems returns the elements in sorted order.
func (s Set) Elems() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SetUnion is the powerset lattice over strings ordered by inclusion:
// bottom is the empty set and join is union. Its height is bounded by the
// number of distinct strings an analysis can ever add, so it is finite for
// any fixed program.
type SetUnion struct{}

func (SetUnion) Bottom() Set { return Set{} }

func (SetUnion) Join(a, b Set) Set {
	out := make(Set, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func (SetUnion) Leq(a, b Set) bool {
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// VarState tracks declared and used identifier sets together; the built-in
// never-accessed detector runs the solver over this lattice.
type VarState struct {
	Declared Set
	Used     Set
}

// VarLattice is the product of two SetUnion lattices.
type VarLattice struct{ set SetUnion }

func (VarLattice) Bottom() VarState {
	return VarState{Declared: Set{}, Used: Set{}}
}

func (l VarLattice) Join(a, b VarState) VarState {
	return VarState{
		Declared: l.set.Join(a.Declared, b.Declared),
		Used:     l.set.Join(a.Used, b.Used),
	}
}

func (l VarLattice) Leq(a, b VarState) bool {
	return l.set.Leq(a.Declared, b.Declared) && l.set.Leq(a.Used, b.Used)
}
