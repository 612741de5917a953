package results

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// Score is a metric value. NaN is encoded as JSON null.
type Score float64

func (s Score) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(s))
}

func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Score(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Score(f)
	return nil
}

// Record is one reported value of a run.
type Record struct {
	ID         uuid.UUID `json:"id"`
	RunID      uuid.UUID `json:"run_id"`
	Experiment string    `json:"experiment"`
	Mode       string    `json:"mode,omitempty"`
	Language   string    `json:"language"`
	Task       string    `json:"task,omitempty"`
	Peer       string    `json:"peer,omitempty"`
	Metric     string    `json:"metric"`
	Length     int       `json:"length,omitempty"`
	Value      Score     `json:"value"`
	Gated      bool      `json:"gated"`
	DropParts  int       `json:"drop_parts,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Filter narrows a listing. Zero fields match everything.
type Filter struct {
	RunID    uuid.UUID
	Language string
	Task     string
	Metric   string
	Limit    int
	Offset   int
}

func (f Filter) Match(r Record) bool {
	return (f.RunID == uuid.Nil || f.RunID == r.RunID) &&
		(f.Language == "" || f.Language == r.Language) &&
		(f.Task == "" || f.Task == r.Task) &&
		(f.Metric == "" || f.Metric == r.Metric)
}

// Apply selects the matching records in order, skipping Offset and keeping at most Limit.
func (f Filter) Apply(records []Record) []Record {
	var out []Record
	skipped := 0
	for _, r := range records {
		if !f.Match(r) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, r)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

type Storer interface {
	SaveBulk(ctx context.Context, records []Record) error
}

type Reader interface {
	List(ctx context.Context, filter Filter) ([]Record, error)
}

type Type string

const (
	JSONFile Type = "json"
	PG       Type = "pg"
	SQLite   Type = "sqlite"
	ES       Type = "es"
	InMem    Type = "in_mem"
)

type StorerError string

const (
	ErrUnsupportedStorer StorerError = "unsupported storer type: %s"
)

func (e StorerError) Error() string {
	return string(e)
}

// Prepare fills missing ids and timestamps.
func Prepare(records []Record, now time.Time) {
	for i := range records {
		if records[i].ID == uuid.Nil {
			records[i].ID = uuid.New()
		}
		if records[i].CreatedAt.IsZero() {
			records[i].CreatedAt = now
		}
	}
}
