package probe

import (
	"context"
	"errors"

	"github.com/DjordjeVuckovic/probe-report/internal/task"
)

var ErrUnknownTask = errors.New("probe has no weights for task")

// Probe is the capability the reporters need from a trained structural probe.
type Probe interface {
	// PredictOnBatch returns one prediction per sentence with the task shape of the padded
	// batch length. A nil gate disables gating; otherwise it scales every probe dimension.
	PredictOnBatch(ctx context.Context, numTokens []int, embeddings [][][]float64, lang string, t task.Task, gate []float64) ([][][]float64, error)
	// TaskDiagonalWeights returns the per-dimension scaling vector of a task.
	TaskDiagonalWeights(ctx context.Context, t task.Task) ([]float64, error)
}

func maxTokens(numTokens []int) int {
	n := 0
	for _, t := range numTokens {
		n = max(n, t)
	}
	return n
}
