package dataset

import (
	"context"
	"fmt"
	"iter"

	"github.com/DjordjeVuckovic/probe-report/internal/task"
)

// AverageLayers selects the mean of all layers instead of a single one.
const AverageLayers = -1

// Batch is a group of sentences padded to the longest one. Targets and Masks have the task
// shape of the padded length; Embeddings are maxN×D per sentence.
type Batch struct {
	Indices    []int
	NumTokens  []int
	Targets    [][][]float64
	Masks      [][][]bool
	Embeddings [][][]float64
}

func (b Batch) Len() int { return len(b.Indices) }

// Source produces batches of one split of a data directory.
type Source struct {
	reader    *Reader
	batchSize int
	layer     int
}

func NewSource(r *Reader, batchSize, layer int) *Source {
	return &Source{reader: r, batchSize: max(batchSize, 1), layer: layer}
}

func (s *Source) Reader() *Reader { return s.reader }

type sentence struct {
	index      int
	numTokens  int
	target     [][]float64
	mask       [][]bool
	embeddings [][]float64
}

// Batches returns a finite sequence over the (lang, task) data of a split. The embedding and
// target shards are read in lockstep; a count, index or token length disagreement fails.
func (s *Source) Batches(ctx context.Context, mode, lang string, t task.Task) iter.Seq2[Batch, error] {
	return func(yield func(Batch, error) bool) {
		embPath, err := s.reader.EmbeddingsPath(mode, lang)
		if err != nil {
			yield(Batch{}, err)
			return
		}
		tgtPath, err := s.reader.TargetsPath(mode, lang, t.Name)
		if err != nil {
			yield(Batch{}, err)
			return
		}

		emb := ReadRecords[Record](ctx, embPath)
		tgt := ReadRecords[Record](ctx, tgtPath)

		pending := make([]sentence, 0, s.batchSize)
		for pair, err := range Lockstep(emb, tgt) {
			if err != nil {
				yield(Batch{}, fmt.Errorf("%s %s %s: %w", mode, lang, t.Name, err))
				return
			}
			sent, err := s.join(pair[0], pair[1], t.Kind)
			if err != nil {
				yield(Batch{}, fmt.Errorf("%s %s %s: %w", mode, lang, t.Name, err))
				return
			}
			pending = append(pending, sent)
			if len(pending) == s.batchSize {
				if !yield(pad(pending, t.Kind), nil) {
					return
				}
				pending = pending[:0]
			}
		}
		if len(pending) > 0 {
			yield(pad(pending, t.Kind), nil)
		}
	}
}

func (s *Source) join(e, r Record, kind task.Kind) (sentence, error) {
	if e.Index != r.Index || e.NumTokens != r.NumTokens {
		return sentence{}, fmt.Errorf("%w: embeddings at sentence %d/%d tokens, targets at %d/%d tokens",
			ErrLengthMismatch, e.Index, e.NumTokens, r.Index, r.NumTokens)
	}
	n := r.NumTokens
	rows, cols := kind.Shape(n)
	if len(r.Target) != rows*cols || len(r.Mask) != rows*cols {
		return sentence{}, fmt.Errorf("sentence %d: target has %d values and mask %d, want %d",
			r.Index, len(r.Target), len(r.Mask), rows*cols)
	}

	target := make([][]float64, rows)
	mask := make([][]bool, rows)
	for i := range rows {
		target[i] = r.Target[i*cols : (i+1)*cols]
		mask[i] = r.Mask[i*cols : (i+1)*cols]
	}

	layer, err := s.selectLayer(e)
	if err != nil {
		return sentence{}, err
	}
	if len(layer) < n {
		return sentence{}, fmt.Errorf("sentence %d: %d embedding rows for %d tokens", e.Index, len(layer), n)
	}

	return sentence{
		index:      r.Index,
		numTokens:  n,
		target:     target,
		mask:       mask,
		embeddings: layer[:n],
	}, nil
}

func (s *Source) selectLayer(e Record) ([][]float64, error) {
	if s.layer != AverageLayers {
		if s.layer < 0 || s.layer >= len(e.Layers) {
			return nil, fmt.Errorf("sentence %d: layer %d out of range, record has %d layers", e.Index, s.layer, len(e.Layers))
		}
		return e.Layers[s.layer], nil
	}
	if len(e.Layers) == 0 {
		return nil, fmt.Errorf("sentence %d: no layers", e.Index)
	}

	avg := make([][]float64, len(e.Layers[0]))
	for i, row := range e.Layers[0] {
		avg[i] = make([]float64, len(row))
	}
	for _, l := range e.Layers {
		if len(l) != len(avg) {
			return nil, fmt.Errorf("sentence %d: layers disagree on token count", e.Index)
		}
		for i, row := range l {
			if len(row) != len(avg[i]) {
				return nil, fmt.Errorf("sentence %d: layers disagree on dimensionality", e.Index)
			}
			for j, v := range row {
				avg[i][j] += v
			}
		}
	}
	scale := 1 / float64(len(e.Layers))
	for _, row := range avg {
		for j := range row {
			row[j] *= scale
		}
	}
	return avg, nil
}

func pad(sents []sentence, kind task.Kind) Batch {
	maxN := 0
	for _, s := range sents {
		maxN = max(maxN, s.numTokens)
	}
	rows, cols := kind.Shape(maxN)

	b := Batch{
		Indices:    make([]int, len(sents)),
		NumTokens:  make([]int, len(sents)),
		Targets:    make([][][]float64, len(sents)),
		Masks:      make([][][]bool, len(sents)),
		Embeddings: make([][][]float64, len(sents)),
	}
	for k, s := range sents {
		b.Indices[k] = s.index
		b.NumTokens[k] = s.numTokens

		target := make([][]float64, rows)
		mask := make([][]bool, rows)
		for i := range rows {
			target[i] = make([]float64, cols)
			mask[i] = make([]bool, cols)
			if i < len(s.target) {
				copy(target[i], s.target[i])
				copy(mask[i], s.mask[i])
			}
		}
		b.Targets[k] = target
		b.Masks[k] = mask

		dim := 0
		if len(s.embeddings) > 0 {
			dim = len(s.embeddings[0])
		}
		emb := make([][]float64, maxN)
		for i := range emb {
			emb[i] = make([]float64, dim)
			if i < len(s.embeddings) {
				copy(emb[i], s.embeddings[i])
			}
		}
		b.Embeddings[k] = emb
	}
	return b
}
