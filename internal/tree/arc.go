package tree

import (
	"cmp"
	"slices"
)

// Arc is a (dependent, head) pair over 1-based token positions. Head 0 is the virtual root.
// Undirected edges are stored as arcs normalised with Dependent < Head.
type Arc struct {
	Dependent int
	Head      int
}

// Undirected returns the normalised arc for the unordered pair {a, b}.
func Undirected(a, b int) Arc {
	if a > b {
		a, b = b, a
	}
	return Arc{Dependent: a, Head: b}
}

type ArcSet map[Arc]struct{}

func NewArcSet(arcs ...Arc) ArcSet {
	s := make(ArcSet, len(arcs))
	for _, a := range arcs {
		s[a] = struct{}{}
	}
	return s
}

func (s ArcSet) Add(a Arc) { s[a] = struct{}{} }

func (s ArcSet) Has(a Arc) bool {
	_, ok := s[a]
	return ok
}

// Overlap counts the arcs present in both sets.
func (s ArcSet) Overlap(other ArcSet) int {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	var n int
	for a := range small {
		if large.Has(a) {
			n++
		}
	}
	return n
}

// Sorted returns the arcs ordered by dependent, then head.
func (s ArcSet) Sorted() []Arc {
	arcs := make([]Arc, 0, len(s))
	for a := range s {
		arcs = append(arcs, a)
	}
	slices.SortFunc(arcs, func(x, y Arc) int {
		if c := cmp.Compare(x.Dependent, y.Dependent); c != 0 {
			return c
		}
		return cmp.Compare(x.Head, y.Head)
	})
	return arcs
}
