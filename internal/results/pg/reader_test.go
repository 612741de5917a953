package pg

import (
	"testing"

	"github.com/DjordjeVuckovic/probe-report/internal/results"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestListQuery(t *testing.T) {
	run := uuid.New()
	selectAll := "SELECT id, run_id, experiment, mode, language, task, peer, metric, length, value, gated, drop_parts, created_at FROM probe_results"

	tests := []struct {
		name      string
		filter    results.Filter
		wantQuery string
		wantArgs  []interface{}
	}{
		{
			name:      "no filter",
			filter:    results.Filter{},
			wantQuery: selectAll + " ORDER BY created_at, id",
		},
		{
			name:      "language and metric",
			filter:    results.Filter{Language: "en", Metric: "uuas"},
			wantQuery: selectAll + " WHERE language = $1 AND metric = $2 ORDER BY created_at, id",
			wantArgs:  []interface{}{"en", "uuas"},
		},
		{
			name:      "all fields with limit",
			filter:    results.Filter{RunID: run, Language: "de", Task: "dep_depth", Metric: "spearman", Limit: 10},
			wantQuery: selectAll + " WHERE run_id = $1 AND language = $2 AND task = $3 AND metric = $4 ORDER BY created_at, id LIMIT $5",
			wantArgs:  []interface{}{run, "de", "dep_depth", "spearman", 10},
		},
		{
			name:      "page",
			filter:    results.Filter{Metric: "uas", Limit: 11, Offset: 20},
			wantQuery: selectAll + " WHERE metric = $1 ORDER BY created_at, id LIMIT $2 OFFSET $3",
			wantArgs:  []interface{}{"uas", 11, 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := listQuery(tt.filter)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
