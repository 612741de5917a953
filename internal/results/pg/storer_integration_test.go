//go:build integration

package pg

import (
	"context"
	"math"
	"testing"

	"github.com/DjordjeVuckovic/probe-report/internal/results"
	pgtesting "github.com/DjordjeVuckovic/probe-report/pkg/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorer_SaveBulkAndList(t *testing.T) {
	ctx := context.Background()
	container := pgtesting.NewPGContainer(ctx, t, pgtesting.PGConfig{})

	pool, err := NewConnectionPool(ctx, PoolConfig{ConnStr: container.ConnString})
	require.NoError(t, err)
	defer pool.Close()

	assert.True(t, NewHealthChecker(pool).Healthy(ctx))

	run := uuid.New()
	err = NewStorer(pool).SaveBulk(ctx, []results.Record{
		{RunID: run, Experiment: "exp", Mode: "test", Language: "en", Task: "dep_distance", Metric: "spearman", Length: 5, Value: 0.8},
		{RunID: run, Experiment: "exp", Mode: "test", Language: "en", Metric: "uuas", Value: results.Score(math.NaN()), Gated: true, DropParts: 4},
	})
	require.NoError(t, err)

	reader := NewReader(pool)

	got, err := reader.List(ctx, results.Filter{RunID: run})
	require.NoError(t, err)
	require.Len(t, got, 2)

	uuas, err := reader.List(ctx, results.Filter{Metric: "uuas"})
	require.NoError(t, err)
	require.Len(t, uuas, 1)
	assert.True(t, math.IsNaN(float64(uuas[0].Value)))
	assert.True(t, uuas[0].Gated)
	assert.Equal(t, 4, uuas[0].DropParts)
}
