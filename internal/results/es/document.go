package es

import (
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/probe-report/internal/results"
	"github.com/google/uuid"
)

// Document is the indexed form of a results.Record.
type Document struct {
	ID         string        `json:"id"`
	RunID      string        `json:"run_id"`
	Experiment string        `json:"experiment"`
	Mode       string        `json:"mode"`
	Language   string        `json:"language"`
	Task       string        `json:"task"`
	Peer       string        `json:"peer"`
	Metric     string        `json:"metric"`
	Length     int           `json:"length"`
	Value      results.Score `json:"value"`
	Gated      bool          `json:"gated"`
	DropParts  int           `json:"drop_parts"`
	CreatedAt  time.Time     `json:"created_at"`
	IndexedAt  time.Time     `json:"indexed_at"`
}

func toDocument(r results.Record, indexedAt time.Time) Document {
	return Document{
		ID:         r.ID.String(),
		RunID:      r.RunID.String(),
		Experiment: r.Experiment,
		Mode:       r.Mode,
		Language:   r.Language,
		Task:       r.Task,
		Peer:       r.Peer,
		Metric:     r.Metric,
		Length:     r.Length,
		Value:      r.Value,
		Gated:      r.Gated,
		DropParts:  r.DropParts,
		CreatedAt:  r.CreatedAt,
		IndexedAt:  indexedAt,
	}
}

func (d Document) toRecord() (results.Record, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return results.Record{}, fmt.Errorf("invalid document id %q: %w", d.ID, err)
	}
	runID, err := uuid.Parse(d.RunID)
	if err != nil {
		return results.Record{}, fmt.Errorf("invalid run id %q: %w", d.RunID, err)
	}
	return results.Record{
		ID:         id,
		RunID:      runID,
		Experiment: d.Experiment,
		Mode:       d.Mode,
		Language:   d.Language,
		Task:       d.Task,
		Peer:       d.Peer,
		Metric:     d.Metric,
		Length:     d.Length,
		Value:      d.Value,
		Gated:      d.Gated,
		DropParts:  d.DropParts,
		CreatedAt:  d.CreatedAt,
	}, nil
}
