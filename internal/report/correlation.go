package report

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/probe-report/internal/dataset"
	"github.com/DjordjeVuckovic/probe-report/internal/metrics"
	"github.com/DjordjeVuckovic/probe-report/internal/task"
)

// CorrelationResults holds one accumulator per language and task.
type CorrelationResults map[string]map[string]*metrics.Correlation

func (c CorrelationResults) get(lang, name string) *metrics.Correlation {
	return c[lang][name]
}

type CorrelationReporter struct {
	*Reporter
	languages []string
	tasks     []task.Task
	kind      metrics.CorrelationKind
}

// NewCorrelationReporter fails on an unknown correlation kind before any data is read.
func NewCorrelationReporter(base *Reporter, languages []string, tasks []task.Task, correlation string) (*CorrelationReporter, error) {
	kind, err := metrics.ParseCorrelationKind(correlation)
	if err != nil {
		return nil, err
	}
	return &CorrelationReporter{Reporter: base, languages: languages, tasks: tasks, kind: kind}, nil
}

// Compute fills results for every member of every language group and every task.
func (c *CorrelationReporter) Compute(ctx context.Context, results CorrelationResults) error {
	for _, group := range c.languages {
		for _, lang := range dataset.SplitGroup(group) {
			if results[lang] == nil {
				results[lang] = make(map[string]*metrics.Correlation)
			}
			for _, t := range c.tasks {
				acc, err := metrics.NewCorrelation(c.kind)
				if err != nil {
					return err
				}
				for s, err := range c.Predict(ctx, group, lang, t) {
					if err != nil {
						return err
					}
					if err := acc.Update(s.Gold, s.Predicted, s.Mask); err != nil {
						return fmt.Errorf("%s %s sentence %d: %w", lang, t.Name, s.Index, err)
					}
				}
				results[lang][t.Name] = acc
			}
		}
	}
	return nil
}

// Write emits the per-length values and their NaN-excluding mean for every language and task.
func (c *CorrelationReporter) Write(outDir string, results CorrelationResults) ([]Entry, error) {
	var entries []Entry
	for _, group := range c.languages {
		for _, lang := range dataset.SplitGroup(group) {
			for _, t := range c.tasks {
				acc := results.get(lang, t.Name)
				if acc == nil {
					return nil, fmt.Errorf("no correlation computed for %s %s", lang, t.Name)
				}
				prefix := c.Prefix(lang, t.Name)
				values := acc.Result()

				lines := make([]string, 0, len(values))
				perLength := make([]Entry, 0, len(values))
				means := make([]float64, 0, len(values))
				for _, l := range acc.Lengths() {
					v := values[l]
					lines = append(lines, fmt.Sprintf("%d\t%s", l, formatFloat(v)))
					perLength = append(perLength, Entry{Metric: string(c.kind), Language: lang, Task: t.Name, Length: l, Value: v})
					means = append(means, v)
				}
				path, err := writeLines(outDir, prefix+MetricSpearman, lines)
				if err != nil {
					return nil, err
				}
				for i := range perLength {
					perLength[i].File = path
				}
				entries = append(entries, perLength...)

				mean := metrics.NanMean(means)
				path, err = writeLines(outDir, prefix+MetricSpearmanMean, []string{formatFloat(mean)})
				if err != nil {
					return nil, err
				}
				entries = append(entries, Entry{File: path, Metric: string(c.kind) + "_mean", Language: lang, Task: t.Name, Value: mean})
			}
		}
	}
	return entries, nil
}
