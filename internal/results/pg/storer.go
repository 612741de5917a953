package pg

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/probe-report/internal/results"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const table = "probe_results"

var columns = []string{
	"id", "run_id", "experiment", "mode", "language", "task", "peer",
	"metric", "length", "value", "gated", "drop_parts", "created_at",
}

type Storer struct {
	db *pgxpool.Pool
}

func NewStorer(pool *ConnectionPool) *Storer {
	return &Storer{db: pool.conn}
}

func (s *Storer) SaveBulk(ctx context.Context, records []results.Record) error {
	if len(records) == 0 {
		return nil
	}

	batch := append([]results.Record(nil), records...)
	results.Prepare(batch, time.Now().UTC())

	rows := make([][]interface{}, len(batch))
	for i, r := range batch {
		rows[i] = []interface{}{
			r.ID,
			r.RunID,
			r.Experiment,
			r.Mode,
			r.Language,
			r.Task,
			r.Peer,
			r.Metric,
			int32(r.Length),
			float64(r.Value),
			r.Gated,
			int32(r.DropParts),
			r.CreatedAt,
		}
	}

	n, err := s.db.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to bulk insert results: %w", err)
	}

	slog.Info("Saved results to PostgreSQL", "count", n)
	return nil
}
