package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/DjordjeVuckovic/probe-report/internal/task"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Params is the serialized form of a linear probe. LanguageMaps are D×R; when none are given
// the embeddings are used as they are and D must equal R.
type Params struct {
	Dimension       int                    `json:"dimension"`
	Rank            int                    `json:"rank"`
	LanguageMaps    map[string][][]float64 `json:"language_maps,omitempty"`
	DistanceWeights map[string][]float64   `json:"distance_weights"`
	DepthWeights    map[string][]float64   `json:"depth_weights"`
}

// Linear projects token embeddings with a language map and a task scaling vector.
// Distances are squared L2 distances of the projections, depths their squared L2 norms.
type Linear struct {
	dim, rank int
	maps      map[string]*mat.Dense
	distance  map[string][]float64
	depth     map[string][]float64
}

func Load(path string) (*Linear, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read probe params: %w", err)
	}
	var p Params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse probe params: %w", err)
	}
	return NewLinear(p)
}

func NewLinear(p Params) (*Linear, error) {
	if p.Dimension <= 0 || p.Rank <= 0 {
		return nil, fmt.Errorf("probe dimension and rank must be positive, got %d and %d", p.Dimension, p.Rank)
	}
	if len(p.LanguageMaps) == 0 && p.Dimension != p.Rank {
		return nil, fmt.Errorf("probe without language maps needs dimension == rank, got %d and %d", p.Dimension, p.Rank)
	}

	l := &Linear{
		dim:      p.Dimension,
		rank:     p.Rank,
		maps:     make(map[string]*mat.Dense, len(p.LanguageMaps)),
		distance: p.DistanceWeights,
		depth:    p.DepthWeights,
	}
	for lang, rows := range p.LanguageMaps {
		if len(rows) != p.Dimension {
			return nil, fmt.Errorf("language map %s has %d rows, want %d", lang, len(rows), p.Dimension)
		}
		data := make([]float64, 0, p.Dimension*p.Rank)
		for i, row := range rows {
			if len(row) != p.Rank {
				return nil, fmt.Errorf("language map %s row %d has %d columns, want %d", lang, i, len(row), p.Rank)
			}
			data = append(data, row...)
		}
		l.maps[lang] = mat.NewDense(p.Dimension, p.Rank, data)
	}
	for name, w := range p.DistanceWeights {
		if len(w) != p.Rank {
			return nil, fmt.Errorf("distance weights %s have %d entries, want %d", name, len(w), p.Rank)
		}
	}
	for name, w := range p.DepthWeights {
		if len(w) != p.Rank {
			return nil, fmt.Errorf("depth weights %s have %d entries, want %d", name, len(w), p.Rank)
		}
	}
	return l, nil
}

func (l *Linear) Rank() int { return l.rank }

func (l *Linear) weights(t task.Task) ([]float64, error) {
	var (
		w  []float64
		ok bool
	)
	switch t.Kind {
	case task.Distance:
		w, ok = l.distance[t.Name]
	case task.Depth:
		w, ok = l.depth[t.Name]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, t.Name)
	}
	return w, nil
}

func (l *Linear) TaskDiagonalWeights(_ context.Context, t task.Task) ([]float64, error) {
	w, err := l.weights(t)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), w...), nil
}

func (l *Linear) PredictOnBatch(ctx context.Context, numTokens []int, embeddings [][][]float64, lang string, t task.Task, gate []float64) ([][][]float64, error) {
	if len(numTokens) != len(embeddings) {
		return nil, fmt.Errorf("%d token counts for %d sentences", len(numTokens), len(embeddings))
	}
	if gate != nil && len(gate) != l.rank {
		return nil, fmt.Errorf("gate has %d entries, probe rank is %d", len(gate), l.rank)
	}

	w, err := l.weights(t)
	if err != nil {
		return nil, err
	}
	scale := append([]float64(nil), w...)
	if gate != nil {
		floats.Mul(scale, gate)
	}

	var langMap *mat.Dense
	if len(l.maps) > 0 {
		m, ok := l.maps[lang]
		if !ok {
			return nil, fmt.Errorf("probe has no language map for %s", lang)
		}
		langMap = m
	}

	rows, cols := t.Kind.Shape(maxTokens(numTokens))
	out := make([][][]float64, len(numTokens))
	for s, n := range numTokens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		proj, err := l.project(embeddings[s], n, langMap, scale)
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", s, err)
		}
		out[s] = geometry(proj, n, t.Kind, rows, cols)
	}
	return out, nil
}

func (l *Linear) project(emb [][]float64, n int, langMap *mat.Dense, scale []float64) (*mat.Dense, error) {
	if n == 0 {
		return nil, nil
	}
	if len(emb) < n {
		return nil, fmt.Errorf("%d embedding rows for %d tokens", len(emb), n)
	}
	h := mat.NewDense(n, l.dim, nil)
	for i := 0; i < n; i++ {
		if len(emb[i]) != l.dim {
			return nil, fmt.Errorf("embedding row %d has %d columns, want %d", i, len(emb[i]), l.dim)
		}
		h.SetRow(i, emb[i])
	}

	var p mat.Dense
	if langMap != nil {
		p.Mul(h, langMap)
	} else {
		p.CloneFrom(h)
	}
	var scaled mat.Dense
	scaled.Mul(&p, mat.NewDiagDense(l.rank, scale))
	return &scaled, nil
}

func geometry(p *mat.Dense, n int, kind task.Kind, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	if p == nil {
		return out
	}

	switch kind {
	case task.Distance:
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				d := floats.Distance(p.RawRowView(i), p.RawRowView(j), 2)
				out[i][j] = d * d
				out[j][i] = d * d
			}
		}
	case task.Depth:
		for i := 0; i < n; i++ {
			norm := floats.Norm(p.RawRowView(i), 2)
			out[0][i] = norm * norm
		}
	}
	return out
}
