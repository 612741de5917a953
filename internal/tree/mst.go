package tree

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// orderedGraph lists its edges in (low id, high id) order so Kruskal resolves equal weights the
// same way for identical inputs.
type orderedGraph struct {
	*simple.WeightedUndirectedGraph
}

func (g orderedGraph) WeightedEdges() graph.WeightedEdges {
	edges := graph.WeightedEdgesOf(g.WeightedUndirectedGraph.WeightedEdges())
	slices.SortFunc(edges, func(a, b graph.WeightedEdge) int {
		au, av := endpoints(a)
		bu, bv := endpoints(b)
		if c := cmp.Compare(au, bu); c != 0 {
			return c
		}
		return cmp.Compare(av, bv)
	})
	return iterator.NewOrderedWeightedEdges(edges)
}

func endpoints(e graph.Edge) (int64, int64) {
	u, v := e.From().ID(), e.To().ID()
	if u > v {
		u, v = v, u
	}
	return u, v
}

// MinimumSpanningTree returns the 0-based undirected edges of a minimum spanning forest over
// nodes. weight reports the weight of the pair (i, j), i < j, and false when there is no edge.
// A disconnected input yields one tree per connected component.
func MinimumSpanningTree(nodes []int, weight func(i, j int) (float64, bool)) [][2]int {
	g := orderedGraph{simple.NewWeightedUndirectedGraph(0, math.Inf(1))}
	for _, n := range nodes {
		g.AddNode(simple.Node(n))
	}
	for a := 0; a < len(nodes); a++ {
		for b := a + 1; b < len(nodes); b++ {
			i, j := nodes[a], nodes[b]
			w, ok := weight(i, j)
			if !ok {
				continue
			}
			g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(j), w))
		}
	}

	dst := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	path.Kruskal(dst, g)

	var edges [][2]int
	it := dst.WeightedEdges()
	for it.Next() {
		u, v := endpoints(it.WeightedEdge())
		edges = append(edges, [2]int{int(u), int(v)})
	}
	slices.SortFunc(edges, func(a, b [2]int) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})
	return edges
}
