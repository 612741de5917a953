package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/DjordjeVuckovic/probe-report/internal/results"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Reader struct {
	db *pgxpool.Pool
}

func NewReader(pool *ConnectionPool) *Reader {
	return &Reader{db: pool.conn}
}

func (r *Reader) List(ctx context.Context, filter results.Filter) ([]results.Record, error) {
	query, args := listQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var out []results.Record
	for rows.Next() {
		var (
			rec       results.Record
			length    int32
			dropParts int32
			value     float64
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.RunID,
			&rec.Experiment,
			&rec.Mode,
			&rec.Language,
			&rec.Task,
			&rec.Peer,
			&rec.Metric,
			&length,
			&value,
			&rec.Gated,
			&dropParts,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		rec.Length = int(length)
		rec.DropParts = int(dropParts)
		rec.Value = results.Score(value)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	return out, nil
}

func listQuery(filter results.Filter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(column string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.RunID != uuid.Nil {
		add("run_id", filter.RunID)
	}
	if filter.Language != "" {
		add("language", filter.Language)
	}
	if filter.Task != "" {
		add("task", filter.Task)
	}
	if filter.Metric != "" {
		add("metric", filter.Metric)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(table)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY created_at, id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}
	return b.String(), args
}
