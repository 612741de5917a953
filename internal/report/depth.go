package report

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/probe-report/internal/dataset"
	"github.com/DjordjeVuckovic/probe-report/internal/task"
)

type DepthPair struct {
	Predicted []float64
	Gold      []float64
}

// Depths maps language and corpus index to the depth vectors of a sentence.
type Depths map[string]map[int]DepthPair

func (d Depths) Lookup(lang string, index int) (DepthPair, bool) {
	p, ok := d[lang][index]
	return p, ok
}

// DependencyDepthReporter collects predicted and gold dep_depth vectors for directed decoding.
type DependencyDepthReporter struct {
	*Reporter
	languages []string
}

func NewDependencyDepthReporter(base *Reporter, languages []string) *DependencyDepthReporter {
	return &DependencyDepthReporter{Reporter: base, languages: languages}
}

func (r *DependencyDepthReporter) Compute(ctx context.Context, results Depths) error {
	t := task.MustParse(task.DepDepth)
	for _, group := range r.languages {
		for _, lang := range dataset.SplitGroup(group) {
			if results[lang] == nil {
				results[lang] = make(map[int]DepthPair)
			}
			for s, err := range r.Predict(ctx, group, lang, t) {
				if err != nil {
					return err
				}
				if len(s.Predicted) != 1 || len(s.Gold) != 1 {
					return fmt.Errorf("%s sentence %d: depth values must be a single row", lang, s.Index)
				}
				results[lang][s.Index] = DepthPair{Predicted: s.Predicted[0], Gold: s.Gold[0]}
			}
		}
	}
	return nil
}
