package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/probe-report/internal/results"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS probe_results (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	experiment  TEXT NOT NULL,
	mode        TEXT NOT NULL,
	language    TEXT NOT NULL,
	task        TEXT NOT NULL,
	peer        TEXT NOT NULL,
	metric      TEXT NOT NULL,
	length      INTEGER NOT NULL,
	value       REAL,
	gated       INTEGER NOT NULL,
	drop_parts  INTEGER NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_probe_results_run ON probe_results (run_id);
CREATE INDEX IF NOT EXISTS idx_probe_results_lookup ON probe_results (language, task, metric);
`

const columns = `id, run_id, experiment, mode, language, task, peer, metric, length, value, gated, drop_parts, created_at`

// Store keeps probe results in a SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and applies the schema.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveBulk(ctx context.Context, records []results.Record) error {
	batch := append([]results.Record(nil), records...)
	results.Prepare(batch, time.Now().UTC())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO probe_results (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range batch {
		var value interface{}
		if v := float64(r.Value); !math.IsNaN(v) && !math.IsInf(v, 0) {
			value = v
		}
		_, err := stmt.ExecContext(ctx,
			r.ID.String(), r.RunID.String(), r.Experiment, r.Mode, r.Language, r.Task, r.Peer,
			r.Metric, r.Length, value, r.Gated, r.DropParts, r.CreatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert result %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) List(ctx context.Context, filter results.Filter) ([]results.Record, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.RunID != uuid.Nil {
		conds = append(conds, "run_id = ?")
		args = append(args, filter.RunID.String())
	}
	if filter.Language != "" {
		conds = append(conds, "language = ?")
		args = append(args, filter.Language)
	}
	if filter.Task != "" {
		conds = append(conds, "task = ?")
		args = append(args, filter.Task)
	}
	if filter.Metric != "" {
		conds = append(conds, "metric = ?")
		args = append(args, filter.Metric)
	}

	query := `SELECT ` + columns + ` FROM probe_results`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, rowid"
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []results.Record
	for rows.Next() {
		var (
			r          results.Record
			id, runID  string
			value      sql.NullFloat64
			createdStr string
		)
		if err := rows.Scan(&id, &runID, &r.Experiment, &r.Mode, &r.Language, &r.Task, &r.Peer,
			&r.Metric, &r.Length, &value, &r.Gated, &r.DropParts, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse id %q: %w", id, err)
		}
		if r.RunID, err = uuid.Parse(runID); err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", runID, err)
		}
		r.Value = results.Score(math.NaN())
		if value.Valid {
			r.Value = results.Score(value.Float64)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, r)
	}
	return out, rows.Err()
}
