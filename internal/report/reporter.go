package report

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/probe-report/internal/dataset"
	"github.com/DjordjeVuckovic/probe-report/internal/probe"
	"github.com/DjordjeVuckovic/probe-report/internal/task"
)

// BatchSource yields the batches of one split for a (language, task) pair.
type BatchSource interface {
	Batches(ctx context.Context, mode, lang string, t task.Task) iter.Seq2[dataset.Batch, error]
}

// Options control dimension gating. A nil Threshold disables gating; DropParts only applies
// when gating is on.
type Options struct {
	Threshold *float64
	DropParts int
}

func (o Options) Gated() bool { return o.Threshold != nil }

func (o Options) Passes() int {
	if o.Gated() && o.DropParts > 0 {
		return o.DropParts
	}
	return 1
}

// Sentence is one prediction truncated to the sentence length.
type Sentence struct {
	Index     int
	Length    int
	Predicted [][]float64
	Gold      [][]float64
	Mask      [][]bool
}

// Reporter turns batched probe output into per-sentence values for one split.
type Reporter struct {
	probe probe.Probe
	data  BatchSource
	mode  string
	opts  Options
}

func NewReporter(p probe.Probe, data BatchSource, mode string, opts Options) *Reporter {
	return &Reporter{probe: p, data: data, mode: mode, opts: opts}
}

func (r *Reporter) Mode() string { return r.mode }

func (r *Reporter) Options() Options { return r.opts }

// EmbeddingGate marks the probe dimensions whose task weight exceeds the threshold in absolute
// value. With drop parts the true dimensions are split into contiguous parts and the part with
// index partToDrop is switched off.
func (r *Reporter) EmbeddingGate(ctx context.Context, t task.Task, partToDrop int) ([]float64, error) {
	if !r.opts.Gated() {
		return nil, fmt.Errorf("embedding gate needs a probe threshold")
	}
	w, err := r.probe.TaskDiagonalWeights(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("task weights %s: %w", t.Name, err)
	}
	return Gate(w, *r.opts.Threshold, r.opts.DropParts, partToDrop), nil
}

// Gate computes the dense 0/1 gate of a weight vector. dropParts <= 0 keeps every selected
// dimension.
func Gate(weights []float64, threshold float64, dropParts, partToDrop int) []float64 {
	gate := make([]float64, len(weights))
	var selected []int
	for i, w := range weights {
		if math.Abs(w) > threshold {
			gate[i] = 1
			selected = append(selected, i)
		}
	}
	if dropParts > 0 {
		count := len(selected)
		start := min(count*partToDrop/dropParts, count)
		end := min(count*(partToDrop+1)/dropParts, count)
		for _, i := range selected[start:end] {
			gate[i] = 0
		}
	}
	return gate
}

// Predict streams the sentences of lang for task t, once per drop part. group is the language
// group lang belongs to. The sequence is finite and can be ranged over again.
func (r *Reporter) Predict(ctx context.Context, group, lang string, t task.Task) iter.Seq2[Sentence, error] {
	return func(yield func(Sentence, error) bool) {
		if !t.Kind.Valid() {
			yield(Sentence{}, fmt.Errorf("%w: %q", task.ErrUnrecognizedTask, t.Name))
			return
		}

		for part := range r.opts.Passes() {
			var gate []float64
			if r.opts.Gated() {
				g, err := r.EmbeddingGate(ctx, t, part)
				if err != nil {
					yield(Sentence{}, err)
					return
				}
				gate = g
			}

			slog.Info("predicting", "mode", r.mode, "group", group, "language", lang, "task", t.Name, "part", part)
			for b, err := range r.data.Batches(ctx, r.mode, lang, t) {
				if err != nil {
					yield(Sentence{}, err)
					return
				}
				predicted, err := r.probe.PredictOnBatch(ctx, b.NumTokens, b.Embeddings, lang, t, gate)
				if err != nil {
					yield(Sentence{}, fmt.Errorf("predict %s %s: %w", lang, t.Name, err))
					return
				}
				if len(predicted) != b.Len() {
					yield(Sentence{}, fmt.Errorf("probe returned %d predictions for %d sentences", len(predicted), b.Len()))
					return
				}

				for k, n := range b.NumTokens {
					s, err := truncate(t.Kind, b.Indices[k], n, predicted[k], b.Targets[k], b.Masks[k])
					if err != nil {
						yield(Sentence{}, err)
						return
					}
					if !yield(s, nil) {
						return
					}
				}
			}
		}
	}
}

func truncate(kind task.Kind, index, n int, predicted, gold [][]float64, mask [][]bool) (Sentence, error) {
	rows, cols := kind.Shape(n)
	if !fits(len(predicted), rows, func(i int) int { return len(predicted[i]) }, cols) ||
		!fits(len(gold), rows, func(i int) int { return len(gold[i]) }, cols) ||
		!fits(len(mask), rows, func(i int) int { return len(mask[i]) }, cols) {
		return Sentence{}, fmt.Errorf("sentence %d: arrays smaller than %d tokens", index, n)
	}

	s := Sentence{
		Index:     index,
		Length:    n,
		Predicted: make([][]float64, rows),
		Gold:      make([][]float64, rows),
		Mask:      make([][]bool, rows),
	}
	for i := range rows {
		s.Predicted[i] = predicted[i][:cols]
		s.Gold[i] = gold[i][:cols]
		s.Mask[i] = mask[i][:cols]
	}
	return s, nil
}

func fits(have, rows int, width func(int) int, cols int) bool {
	if have < rows {
		return false
	}
	for i := range rows {
		if width(i) < cols {
			return false
		}
	}
	return true
}

// Prefix builds the output file prefix "{mode}.{parts...}.[gated.][dp{K}.]".
func (r *Reporter) Prefix(parts ...string) string {
	var b strings.Builder
	if r.mode != "" {
		b.WriteString(r.mode)
		b.WriteByte('.')
	}
	for _, p := range parts {
		b.WriteString(p)
		b.WriteByte('.')
	}
	if r.opts.Gated() {
		b.WriteString("gated.")
		if r.opts.DropParts > 0 {
			b.WriteString("dp" + strconv.Itoa(r.opts.DropParts) + ".")
		}
	}
	return b.String()
}
