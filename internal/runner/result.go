package runner

import (
	"time"

	"github.com/DjordjeVuckovic/probe-report/internal/report"
	"github.com/DjordjeVuckovic/probe-report/internal/results"
	"github.com/google/uuid"
)

type Result struct {
	RunID      uuid.UUID
	Experiment string
	OutDir     string
	Gated      bool
	DropParts  int
	CreatedAt  time.Time
	Entries    []report.Entry
	Records    []results.Record
}

func (r *Result) add(mode string, entries []report.Entry) {
	for _, e := range entries {
		r.Entries = append(r.Entries, e)
		r.Records = append(r.Records, results.Record{
			ID:         uuid.New(),
			RunID:      r.RunID,
			Experiment: r.Experiment,
			Mode:       mode,
			Language:   e.Language,
			Task:       e.Task,
			Peer:       e.Peer,
			Metric:     e.Metric,
			Length:     e.Length,
			Value:      results.Score(e.Value),
			Gated:      r.Gated,
			DropParts:  r.DropParts,
			CreatedAt:  r.CreatedAt,
		})
	}
}

// Files lists the written output files in write order without duplicates.
func (r *Result) Files() []string {
	seen := make(map[string]bool)
	var files []string
	for _, e := range r.Entries {
		if e.File == "" || seen[e.File] {
			continue
		}
		seen[e.File] = true
		files = append(files, e.File)
	}
	return files
}
