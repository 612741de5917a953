package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/probe-report/internal/dataset"
	"github.com/DjordjeVuckovic/probe-report/internal/metrics"
	"github.com/DjordjeVuckovic/probe-report/internal/task"
	"github.com/DjordjeVuckovic/probe-report/internal/tree"
)

// AttachmentResults holds one attachment accumulator per language.
type AttachmentResults map[string]*metrics.Attachment

// PunctuationMasks maps language and corpus index to the punctuation mask of a sentence.
type PunctuationMasks map[string][][]bool

// UASReporter decodes dep_distance predictions into trees and scores them against the trees
// decoded from the gold distances. With depths the trees are directed (UAS), otherwise they
// are undirected spanning trees (UUAS).
type UASReporter struct {
	*Reporter
	languages []string
	punct     PunctuationMasks
	depths    Depths
}

func NewUASReporter(base *Reporter, languages []string, punct PunctuationMasks, depths Depths) *UASReporter {
	return &UASReporter{Reporter: base, languages: languages, punct: punct, depths: depths}
}

func (u *UASReporter) Directed() bool { return u.depths != nil }

func (u *UASReporter) Metric() string {
	if u.Directed() {
		return MetricUAS
	}
	return MetricUUAS
}

func (u *UASReporter) Compute(ctx context.Context, results AttachmentResults) error {
	t := task.MustParse(task.DepDistance)
	for _, group := range u.languages {
		for _, lang := range dataset.SplitGroup(group) {
			acc := &metrics.Attachment{}
			for s, err := range u.Predict(ctx, group, lang, t) {
				if err != nil {
					return err
				}
				if s.Length == 0 {
					slog.Debug("skipping empty sentence", "language", lang, "index", s.Index)
					continue
				}
				predicted, gold, err := u.decode(lang, s)
				if err != nil {
					return fmt.Errorf("%s sentence %d: %w", lang, s.Index, err)
				}
				acc.Update(gold, predicted)
			}
			results[lang] = acc
		}
	}
	return nil
}

func (u *UASReporter) decode(lang string, s Sentence) (tree.ArcSet, tree.ArcSet, error) {
	masks, ok := u.punct[lang]
	if !ok || s.Index < 0 || s.Index >= len(masks) {
		return nil, nil, fmt.Errorf("no punctuation mask")
	}
	punct := masks[s.Index]
	if len(punct) != s.Length {
		return nil, nil, fmt.Errorf("punctuation mask has %d tokens, sentence has %d", len(punct), s.Length)
	}

	if !u.Directed() {
		predicted, err := tree.DecodeUndirected(s.Predicted, punct)
		if err != nil {
			return nil, nil, fmt.Errorf("decode predicted: %w", err)
		}
		gold, err := tree.DecodeUndirected(s.Gold, punct)
		if err != nil {
			return nil, nil, fmt.Errorf("decode gold: %w", err)
		}
		if content := countContent(punct); content > 0 && len(predicted) < content-1 {
			slog.Debug("predicted graph is disconnected, scoring spanning forest",
				"language", lang, "index", s.Index, "edges", len(predicted), "tokens", content)
		}
		return predicted, gold, nil
	}

	d, ok := u.depths.Lookup(lang, s.Index)
	if !ok {
		return nil, nil, fmt.Errorf("no depths")
	}
	predicted, err := tree.DecodeDirected(s.Predicted, d.Predicted, punct)
	if err != nil {
		return nil, nil, fmt.Errorf("decode predicted: %w", err)
	}
	gold, err := tree.DecodeDirected(s.Gold, d.Gold, punct)
	if err != nil {
		return nil, nil, fmt.Errorf("decode gold: %w", err)
	}
	return predicted, gold, nil
}

func countContent(punct []bool) int {
	n := 0
	for _, p := range punct {
		if !p {
			n++
		}
	}
	return n
}

// Write emits one attachment score per language.
func (u *UASReporter) Write(outDir string, results AttachmentResults) ([]Entry, error) {
	var entries []Entry
	for _, group := range u.languages {
		for _, lang := range dataset.SplitGroup(group) {
			acc, ok := results[lang]
			if !ok {
				return nil, fmt.Errorf("no attachment score computed for %s", lang)
			}
			v := acc.Result()
			path, err := writeLines(outDir, u.Prefix(lang)+u.Metric(), []string{formatFloat(v)})
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{File: path, Metric: u.Metric(), Language: lang, Task: task.DepDistance, Value: v})
		}
	}
	return entries, nil
}
