package tree

import (
	"errors"
	"fmt"
	"math"
)

var ErrNoArborescence = errors.New("no spanning arborescence")

// ChuLiuEdmonds finds the maximum-weight spanning arborescence rooted at node 0.
// scores[d][h] is the score of the arc with dependent d and head h; NaN and -Inf mark arcs that
// are not candidates. The returned slice holds the head of every node, with heads[0] = -1.
// Among equally scored heads the lowest index wins.
func ChuLiuEdmonds(scores [][]float64) ([]int, error) {
	n := len(scores)
	if n == 0 {
		return nil, nil
	}
	for i, row := range scores {
		if len(row) != n {
			return nil, fmt.Errorf("score matrix row %d has %d columns, want %d", i, len(row), n)
		}
	}

	s := make([][]float64, n)
	for d := range scores {
		s[d] = make([]float64, n)
		for h, v := range scores[d] {
			if math.IsNaN(v) || d == h || d == 0 {
				v = math.Inf(-1)
			}
			s[d][h] = v
		}
	}
	return cle(s)
}

func cle(s [][]float64) ([]int, error) {
	n := len(s)
	heads := make([]int, n)
	heads[0] = -1
	for d := 1; d < n; d++ {
		best := -1
		for h := 0; h < n; h++ {
			if h == d || math.IsInf(s[d][h], -1) {
				continue
			}
			if best == -1 || s[d][h] > s[d][best] {
				best = h
			}
		}
		if best == -1 {
			return nil, fmt.Errorf("%w: node %d has no candidate head", ErrNoArborescence, d)
		}
		heads[d] = best
	}

	cycle := findCycle(heads)
	if cycle == nil {
		return heads, nil
	}

	inCycle := make([]bool, n)
	for _, v := range cycle {
		inCycle[v] = true
	}

	// Contract the cycle into a single node placed after the remaining nodes.
	toNew := make([]int, n)
	var toOld []int
	for v := 0; v < n; v++ {
		if inCycle[v] {
			toNew[v] = -1
			continue
		}
		toNew[v] = len(toOld)
		toOld = append(toOld, v)
	}
	c := len(toOld)
	m := c + 1

	cs := make([][]float64, m)
	for i := range cs {
		cs[i] = make([]float64, m)
		for j := range cs[i] {
			cs[i][j] = math.Inf(-1)
		}
	}
	enterVia := make([]int, n) // head outside the cycle -> cycle node it enters
	leaveFrom := make([]int, n) // dependent outside the cycle -> cycle node it attaches to

	for _, u := range toOld {
		for _, v := range toOld {
			if u != v {
				cs[toNew[u]][toNew[v]] = s[u][v]
			}
		}

		best := -1
		for _, v := range cycle {
			if math.IsInf(s[u][v], -1) {
				continue
			}
			if best == -1 || s[u][v] > s[u][best] || (s[u][v] == s[u][best] && v < best) {
				best = v
			}
		}
		if best != -1 {
			cs[toNew[u]][c] = s[u][best]
			leaveFrom[u] = best
		}

		best = -1
		var bestScore float64
		for _, v := range cycle {
			if math.IsInf(s[v][u], -1) {
				continue
			}
			gain := s[v][u] - s[v][heads[v]]
			if best == -1 || gain > bestScore || (gain == bestScore && v < best) {
				best, bestScore = v, gain
			}
		}
		if best != -1 {
			cs[c][toNew[u]] = bestScore
			enterVia[u] = best
		}
	}

	sub, err := cle(cs)
	if err != nil {
		return nil, err
	}

	out := make([]int, n)
	copy(out, heads)
	for _, u := range toOld {
		if u == 0 {
			continue
		}
		h := sub[toNew[u]]
		if h == c {
			out[u] = leaveFrom[u]
		} else {
			out[u] = toOld[h]
		}
	}
	h := toOld[sub[c]]
	out[enterVia[h]] = h
	return out, nil
}

// findCycle returns the nodes of one cycle in the head assignment, or nil.
func findCycle(heads []int) []int {
	n := len(heads)
	state := make([]int, n) // 0 unvisited, 1 on current path, 2 done
	for start := 1; start < n; start++ {
		if state[start] != 0 {
			continue
		}
		var path []int
		v := start
		for v > 0 && state[v] == 0 {
			state[v] = 1
			path = append(path, v)
			v = heads[v]
		}
		if v > 0 && state[v] == 1 {
			for i, p := range path {
				if p == v {
					return append([]int(nil), path[i:]...)
				}
			}
		}
		for _, p := range path {
			state[p] = 2
		}
	}
	return nil
}
