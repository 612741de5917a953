package metrics

import (
	"math"

	"github.com/DjordjeVuckovic/probe-report/internal/tree"
)

// Attachment accumulates the ratio of gold arcs recovered by decoded trees.
// It serves both UAS (directed arcs) and UUAS (normalised undirected arcs).
type Attachment struct {
	correct int
	total   int
}

func (a *Attachment) Update(gold, predicted tree.ArcSet) {
	a.correct += predicted.Overlap(gold)
	a.total += len(gold)
}

// Result returns correct/total, or NaN before any gold arc was seen.
func (a *Attachment) Result() float64 {
	if a.total == 0 {
		return math.NaN()
	}
	return float64(a.correct) / float64(a.total)
}

func (a *Attachment) Counts() (correct, total int) {
	return a.correct, a.total
}
