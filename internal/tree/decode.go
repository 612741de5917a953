package tree

import (
	"fmt"
	"math"
)

// DecodeUndirected recovers the minimum spanning tree over the pairwise distances of the
// non-punctuation tokens. Only the upper triangle is read and non-finite distances are treated
// as missing edges, in which case the result is a spanning forest.
func DecodeUndirected(distances [][]float64, punct []bool) (ArcSet, error) {
	if err := checkSquare(distances, len(punct)); err != nil {
		return nil, err
	}

	nodes := contentTokens(punct)
	edges := MinimumSpanningTree(nodes, func(i, j int) (float64, bool) {
		w := distances[i][j]
		return w, !math.IsNaN(w) && !math.IsInf(w, 0)
	})

	arcs := make(ArcSet, len(edges))
	for _, e := range edges {
		arcs.Add(Undirected(e[0]+1, e[1]+1))
	}
	return arcs, nil
}

// DecodeDirected recovers a dependency tree rooted at the shallowest token. The candidate heads
// of a token are the strictly shallower non-punctuation tokens, scored by negated distance.
// Punctuation and the root token attach to the virtual root; tokens left with no candidate
// head attach to the virtual root with a score below every other arc. Punctuation arcs are not
// part of the result.
func DecodeDirected(distances [][]float64, depths []float64, punct []bool) (ArcSet, error) {
	n := len(punct)
	if err := checkSquare(distances, n); err != nil {
		return nil, err
	}
	if len(depths) != n {
		return nil, fmt.Errorf("depth vector has %d entries, want %d", len(depths), n)
	}
	if n == 0 {
		return ArcSet{}, nil
	}

	scores := DirectedScores(distances, depths, punct)
	heads, err := ChuLiuEdmonds(scores)
	if err != nil {
		return nil, err
	}

	arcs := make(ArcSet, n)
	for i := 0; i < n; i++ {
		if punct[i] {
			continue
		}
		arcs.Add(Arc{Dependent: i + 1, Head: heads[i+1]})
	}
	return arcs, nil
}

// DirectedScores builds the (n+1)×(n+1) [dependent][head] score matrix used by DecodeDirected.
// Index 0 is the virtual root; NaN marks arcs that are not candidates.
func DirectedScores(distances [][]float64, depths []float64, punct []bool) [][]float64 {
	n := len(punct)
	scores := make([][]float64, n+1)
	for i := range scores {
		scores[i] = make([]float64, n+1)
		for j := range scores[i] {
			scores[i][j] = math.NaN()
		}
	}

	minScore := 0.0
	for i := 0; i < n; i++ {
		if punct[i] {
			continue
		}
		for j := 0; j < n; j++ {
			if i == j || punct[j] || depths[i] <= depths[j] {
				continue
			}
			d := distances[i][j]
			if math.IsNaN(d) || math.IsInf(d, 0) {
				continue
			}
			scores[i+1][j+1] = -d
			minScore = min(minScore, -d)
		}
	}

	root := argmin(depths)
	for i := 0; i < n; i++ {
		if punct[i] || i == root {
			scores[i+1][0] = 0
		}
	}

	fallback := minScore - 1
	for i := 0; i < n; i++ {
		if punct[i] || i == root || hasCandidate(scores[i+1]) {
			continue
		}
		scores[i+1][0] = fallback
	}
	return scores
}

func hasCandidate(row []float64) bool {
	for _, v := range row {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}

func argmin(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x < xs[best] {
			best = i
		}
	}
	return best
}

func contentTokens(punct []bool) []int {
	nodes := make([]int, 0, len(punct))
	for i, p := range punct {
		if !p {
			nodes = append(nodes, i)
		}
	}
	return nodes
}

func checkSquare(m [][]float64, n int) error {
	if len(m) != n {
		return fmt.Errorf("distance matrix has %d rows, want %d", len(m), n)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("distance matrix row %d has %d columns, want %d", i, len(row), n)
		}
	}
	return nil
}
