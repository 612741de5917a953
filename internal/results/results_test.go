package results

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_JSON(t *testing.T) {
	data, err := json.Marshal([]Score{1.5, Score(math.NaN()), Score(math.Inf(1))})
	require.NoError(t, err)
	assert.Equal(t, `[1.5,null,null]`, string(data))

	var back []Score
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 3)
	assert.Equal(t, Score(1.5), back[0])
	assert.True(t, math.IsNaN(float64(back[1])))

	var bad Score
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &bad))
}

func TestFilter_Match(t *testing.T) {
	run := uuid.New()
	r := Record{RunID: run, Language: "en", Task: "dep_depth", Metric: "spearman"}

	assert.True(t, Filter{}.Match(r))
	assert.True(t, Filter{RunID: run, Language: "en", Task: "dep_depth", Metric: "spearman"}.Match(r))
	assert.False(t, Filter{RunID: uuid.New()}.Match(r))
	assert.False(t, Filter{Language: "de"}.Match(r))
	assert.False(t, Filter{Metric: "uas"}.Match(r))
}

func TestPrepare(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	keep := uuid.New()
	earlier := now.Add(-time.Hour)
	records := []Record{{}, {ID: keep, CreatedAt: earlier}}

	Prepare(records, now)

	assert.NotEqual(t, uuid.Nil, records[0].ID)
	assert.Equal(t, now, records[0].CreatedAt)
	assert.Equal(t, keep, records[1].ID)
	assert.Equal(t, earlier, records[1].CreatedAt)
}

func TestJSONFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", JSONFileName)
	store := NewJSONFileStore(path)

	empty, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, empty)

	run := uuid.New()
	require.NoError(t, store.SaveBulk(ctx, []Record{
		{RunID: run, Language: "en", Metric: "uuas", Value: 0.5},
		{RunID: run, Language: "en", Task: "dep_distance", Metric: "spearman", Length: 2, Value: Score(math.NaN())},
	}))
	require.NoError(t, store.SaveBulk(ctx, []Record{{RunID: uuid.New(), Language: "de", Metric: "uuas", Value: 1}}))

	all, err := NewJSONFileStore(path).List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	uuas, err := store.List(ctx, Filter{Metric: "uuas", Limit: 1})
	require.NoError(t, err)
	require.Len(t, uuas, 1)
	assert.Equal(t, "en", uuas[0].Language)

	spearman, err := store.List(ctx, Filter{RunID: run, Metric: "spearman"})
	require.NoError(t, err)
	require.Len(t, spearman, 1)
	assert.True(t, math.IsNaN(float64(spearman[0].Value)))
	assert.Equal(t, 2, spearman[0].Length)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestJSONFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), JSONFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJSONFileStore(path).List(context.Background(), Filter{})
	assert.Error(t, err)
	assert.Error(t, NewJSONFileStore(path).SaveBulk(context.Background(), []Record{{}}))
}

func TestInMemStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemStore()
	input := []Record{{Language: "en", Metric: "uas"}, {Language: "de", Metric: "uas"}}
	require.NoError(t, s.SaveBulk(ctx, input))
	assert.Equal(t, uuid.Nil, input[0].ID, "caller slice is not mutated")

	got, err := s.List(ctx, Filter{Language: "de"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEqual(t, uuid.Nil, got[0].ID)
}

func TestFilter_Apply(t *testing.T) {
	records := []Record{
		{Language: "en", Length: 1},
		{Language: "de", Length: 2},
		{Language: "en", Length: 3},
		{Language: "en", Length: 4},
	}

	lengths := func(rs []Record) []int {
		var out []int
		for _, r := range rs {
			out = append(out, r.Length)
		}
		return out
	}

	assert.Equal(t, []int{1, 2, 3, 4}, lengths(Filter{}.Apply(records)))
	assert.Equal(t, []int{1, 3, 4}, lengths(Filter{Language: "en"}.Apply(records)))
	assert.Equal(t, []int{3}, lengths(Filter{Language: "en", Offset: 1, Limit: 1}.Apply(records)))
	assert.Empty(t, Filter{Offset: 10}.Apply(records))
}
