package metrics

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

type CorrelationKind string

const (
	KindSpearman CorrelationKind = "spearman"
	KindPearson  CorrelationKind = "pearson"
	KindKendall  CorrelationKind = "kendall"
)

var ErrUnknownCorrelation = errors.New("no such correlation metric")

func ParseCorrelationKind(s string) (CorrelationKind, error) {
	switch k := CorrelationKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSpearman, KindPearson, KindKendall:
		return k, nil
	case "":
		return KindSpearman, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCorrelation, s)
	}
}

func (k CorrelationKind) coefficient() func(x, y []float64) float64 {
	switch k {
	case KindPearson:
		return Pearson
	case KindKendall:
		return Kendall
	default:
		return Spearman
	}
}

type bucket struct {
	sum float64
	n   int
}

// Correlation groups sentences by length and keeps the running mean of the per-sentence
// coefficients in every bucket. A distance sentence contributes one coefficient per token row;
// a depth sentence contributes one coefficient for the whole vector.
type Correlation struct {
	kind    CorrelationKind
	coef    func(x, y []float64) float64
	buckets map[int]*bucket
}

func NewCorrelation(kind CorrelationKind) (*Correlation, error) {
	if _, err := ParseCorrelationKind(string(kind)); err != nil {
		return nil, err
	}
	return &Correlation{
		kind:    kind,
		coef:    kind.coefficient(),
		buckets: make(map[int]*bucket),
	}, nil
}

func (c *Correlation) Kind() CorrelationKind { return c.kind }

// Update adds one sentence. gold, predicted and mask share the shape (1, n) for depth or (n, n)
// for distance; only entries with a true mask enter a coefficient. A nil mask selects everything.
func (c *Correlation) Update(gold, predicted [][]float64, mask [][]bool) error {
	if len(gold) != len(predicted) {
		return fmt.Errorf("gold has %d rows, predicted %d", len(gold), len(predicted))
	}
	if len(gold) == 0 {
		return nil
	}
	length := len(gold[0])

	b, ok := c.buckets[length]
	if !ok {
		b = &bucket{}
		c.buckets[length] = b
	}

	for i := range gold {
		if len(gold[i]) != length || len(predicted[i]) != length {
			return fmt.Errorf("row %d: want %d columns", i, length)
		}
		var m []bool
		if mask != nil {
			if len(mask[i]) != length {
				return fmt.Errorf("mask row %d has %d columns, want %d", i, len(mask[i]), length)
			}
			m = mask[i]
		}
		x, y := selectMasked(gold[i], predicted[i], m)
		if v := c.coef(x, y); !math.IsNaN(v) {
			b.sum += v
			b.n++
		}
	}
	return nil
}

// Result maps sentence length to the mean coefficient of its bucket. Buckets without a single
// defined coefficient are NaN.
func (c *Correlation) Result() map[int]float64 {
	out := make(map[int]float64, len(c.buckets))
	for l, b := range c.buckets {
		if b.n == 0 {
			out[l] = math.NaN()
			continue
		}
		out[l] = b.sum / float64(b.n)
	}
	return out
}

// Lengths returns the observed sentence lengths in ascending order.
func (c *Correlation) Lengths() []int {
	return slices.Sorted(maps.Keys(c.buckets))
}

func selectMasked(gold, predicted []float64, mask []bool) ([]float64, []float64) {
	if mask == nil {
		return gold, predicted
	}
	x := make([]float64, 0, len(gold))
	y := make([]float64, 0, len(gold))
	for j, ok := range mask {
		if ok {
			x = append(x, gold[j])
			y = append(y, predicted[j])
		}
	}
	return x, y
}

// NanMean averages the values that are not NaN. It is NaN when none are left.
func NanMean(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
