package metrics

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Pearson returns the linear correlation of x and y, NaN when either is constant or
// fewer than two samples are given.
func Pearson(x, y []float64) float64 {
	if !defined(x, y) {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// Spearman is the Pearson correlation of the average ranks.
func Spearman(x, y []float64) float64 {
	if !defined(x, y) {
		return math.NaN()
	}
	return stat.Correlation(Ranks(x), Ranks(y), nil)
}

// Kendall computes tau-b, which corrects for ties in either variable.
func Kendall(x, y []float64) float64 {
	if !defined(x, y) {
		return math.NaN()
	}

	var concordant, discordant, tiesX, tiesY float64
	for i := 0; i < len(x); i++ {
		for j := i + 1; j < len(x); j++ {
			dx := x[i] - x[j]
			dy := y[i] - y[j]
			switch {
			case dx == 0 && dy == 0:
			case dx == 0:
				tiesX++
			case dy == 0:
				tiesY++
			case (dx > 0) == (dy > 0):
				concordant++
			default:
				discordant++
			}
		}
	}

	denom := math.Sqrt((concordant + discordant + tiesX) * (concordant + discordant + tiesY))
	if denom == 0 {
		return math.NaN()
	}
	return (concordant - discordant) / denom
}

// Ranks assigns 1-based ranks, giving tied values the mean of the ranks they span.
func Ranks(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(x[a], x[b]) })

	ranks := make([]float64, len(x))
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && x[idx[end]] == x[idx[start]] {
			end++
		}
		avg := float64(start+end+1) / 2
		for _, i := range idx[start:end] {
			ranks[i] = avg
		}
		start = end
	}
	return ranks
}

func defined(x, y []float64) bool {
	if len(x) != len(y) || len(x) < 2 {
		return false
	}
	return !constant(x) && !constant(y)
}

func constant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}
