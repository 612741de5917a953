package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/DjordjeVuckovic/probe-report/internal/apperr"
	"github.com/DjordjeVuckovic/probe-report/internal/task"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "bert-base-multilingual-cased"

func writeShard(t *testing.T, path string, records []Record) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	var enc *json.Encoder
	if filepath.Ext(path) == ".gz" {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		enc = json.NewEncoder(gz)
	} else {
		enc = json.NewEncoder(f)
	}
	for _, r := range records {
		require.NoError(t, enc.Encode(r))
	}
}

func embedding(index, n, dim int, layers ...float64) Record {
	r := Record{Index: index, NumTokens: n}
	for _, v := range layers {
		l := make([][]float64, n)
		for i := range l {
			l[i] = make([]float64, dim)
			for j := range l[i] {
				l[i][j] = v
			}
		}
		r.Layers = append(r.Layers, l)
	}
	return r
}

func depthTarget(index int, depths ...float64) Record {
	mask := make([]bool, len(depths))
	for i := range mask {
		mask[i] = true
	}
	return Record{Index: index, NumTokens: len(depths), Target: depths, Mask: mask}
}

func writeDataDir(t *testing.T, emb, tgt []Record) string {
	t.Helper()
	dir := t.TempDir()

	writeShard(t, filepath.Join(dir, "emb_en_test.jsonl.gz"), emb)
	writeShard(t, filepath.Join(dir, "tgt_en_test_dep_depth.jsonl"), tgt)

	m := DataMap{
		Models:    []string{testModel},
		Languages: []string{"en", "de"},
		Tasks:     []string{task.DepDepth, task.DepDistance},
		MapEmbeddings: map[string]map[string]map[string]string{
			ModeTest: {testModel: {"en": "emb_en_test.jsonl.gz"}},
		},
		MapTargets: map[string]map[string]map[string]map[string]string{
			ModeTest: {testModel: {"en": {task.DepDepth: "tgt_en_test_dep_depth.jsonl"}}},
		},
		MapConll: map[string]map[string]map[string]map[string]string{
			ModeTest: {testModel: {"en": {task.DepDistance: "en_test.conllu"}}},
		},
	}
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DataMapFile), raw, 0o644))
	return dir
}

func TestOpen(t *testing.T) {
	dir := writeDataDir(t, nil, nil)

	t.Run("known model", func(t *testing.T) {
		r, err := Open(dir, testModel)
		require.NoError(t, err)
		assert.Equal(t, testModel, r.Model())

		p, err := r.ConllPath(ModeTest, "en", task.DepDistance)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "en_test.conllu"), p)
	})

	t.Run("unknown model lists alternatives", func(t *testing.T) {
		_, err := Open(dir, "gpt")
		var unavailable *apperr.UnavailableError
		require.True(t, errors.As(err, &unavailable))
		assert.Equal(t, "model", unavailable.Resource)
		assert.Equal(t, []string{testModel}, unavailable.Available)
	})

	t.Run("missing data map", func(t *testing.T) {
		_, err := Open(t.TempDir(), testModel)
		assert.Error(t, err)
	})
}

func TestReader_Require(t *testing.T) {
	r, err := Open(writeDataDir(t, nil, nil), testModel)
	require.NoError(t, err)

	tests := []struct {
		name      string
		languages []string
		tasks     []string
		resource  string
	}{
		{name: "all present", languages: []string{"en", "en+de"}, tasks: []string{task.DepDepth}},
		{name: "missing group member", languages: []string{"en+fr"}, tasks: nil, resource: "language"},
		{name: "missing task", languages: []string{"en"}, tasks: []string{"lex_depth"}, resource: "task"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Require(tt.languages, tt.tasks)
			if tt.resource == "" {
				assert.NoError(t, err)
				return
			}
			var unavailable *apperr.UnavailableError
			require.True(t, errors.As(err, &unavailable))
			assert.Equal(t, tt.resource, unavailable.Resource)
		})
	}
}

func collect(t *testing.T, seq iter.Seq2[Batch, error]) []Batch {
	t.Helper()
	var out []Batch
	for b, err := range seq {
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

func TestSource_Batches(t *testing.T) {
	emb := []Record{
		embedding(0, 2, 3, 1, 3),
		embedding(1, 3, 3, 1, 3),
		embedding(2, 1, 3, 1, 3),
	}
	tgt := []Record{
		depthTarget(0, 0, 1),
		depthTarget(1, 1, 0, 1),
		depthTarget(2, 0),
	}
	r, err := Open(writeDataDir(t, emb, tgt), testModel)
	require.NoError(t, err)

	src := NewSource(r, 2, 1)
	seq := src.Batches(context.Background(), ModeTest, "en", task.MustParse(task.DepDepth))
	batches := collect(t, seq)
	require.Len(t, batches, 2)

	first := batches[0]
	assert.Equal(t, []int{0, 1}, first.Indices)
	assert.Equal(t, []int{2, 3}, first.NumTokens)
	assert.Equal(t, [][]float64{{0, 1, 0}}, first.Targets[0])
	assert.Equal(t, [][]bool{{true, true, false}}, first.Masks[0])
	assert.Len(t, first.Embeddings[0], 3)
	assert.Equal(t, []float64{3, 3, 3}, first.Embeddings[0][0])
	assert.Equal(t, []float64{0, 0, 0}, first.Embeddings[0][2])

	assert.Equal(t, 1, batches[1].Len())

	again := collect(t, seq)
	assert.Equal(t, batches, again)
}

func TestSource_AverageLayers(t *testing.T) {
	r, err := Open(writeDataDir(t,
		[]Record{embedding(0, 1, 2, 1, 3)},
		[]Record{depthTarget(0, 0)},
	), testModel)
	require.NoError(t, err)

	batches := collect(t, NewSource(r, 4, AverageLayers).Batches(context.Background(), ModeTest, "en", task.MustParse(task.DepDepth)))
	require.Len(t, batches, 1)
	assert.Equal(t, [][]float64{{2, 2}}, batches[0].Embeddings[0])
}

func TestSource_Failures(t *testing.T) {
	depth := task.MustParse(task.DepDepth)

	tests := []struct {
		name    string
		emb     []Record
		tgt     []Record
		layer   int
		wantErr error
	}{
		{
			name:    "target shard ends early",
			emb:     []Record{embedding(0, 1, 2, 1), embedding(1, 1, 2, 1)},
			tgt:     []Record{depthTarget(0, 0)},
			wantErr: ErrLengthMismatch,
		},
		{
			name:    "index disagreement",
			emb:     []Record{embedding(0, 1, 2, 1)},
			tgt:     []Record{depthTarget(5, 0)},
			wantErr: ErrLengthMismatch,
		},
		{
			name:  "layer out of range",
			emb:   []Record{embedding(0, 1, 2, 1)},
			tgt:   []Record{depthTarget(0, 0)},
			layer: 4,
		},
		{
			name: "target size",
			emb:  []Record{embedding(0, 2, 2, 1)},
			tgt:  []Record{{Index: 0, NumTokens: 2, Target: []float64{1}, Mask: []bool{true}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Open(writeDataDir(t, tt.emb, tt.tgt), testModel)
			require.NoError(t, err)

			var got error
			for _, err := range NewSource(r, 8, tt.layer).Batches(context.Background(), ModeTest, "en", depth) {
				if err != nil {
					got = err
					break
				}
			}
			require.Error(t, got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, got, tt.wantErr)
			}
		})
	}
}

func TestSource_MissingShard(t *testing.T) {
	r, err := Open(writeDataDir(t, nil, nil), testModel)
	require.NoError(t, err)

	for _, err := range NewSource(r, 1, 0).Batches(context.Background(), ModeTest, "de", task.MustParse(task.DepDepth)) {
		assert.Error(t, err)
	}
}

func TestReadRecords_Cancelled(t *testing.T) {
	dir := writeDataDir(t, []Record{embedding(0, 1, 1, 1)}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, err := range ReadRecords[Record](ctx, filepath.Join(dir, "emb_en_test.jsonl.gz")) {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func seqOf(vals ...int) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		for _, v := range vals {
			if !yield(v, nil) {
				return
			}
		}
	}
}

func TestLockstep(t *testing.T) {
	t.Run("equal lengths", func(t *testing.T) {
		var rows [][]int
		for row, err := range Lockstep(seqOf(1, 2, 3), seqOf(4, 5, 6), seqOf(7, 8, 9)) {
			require.NoError(t, err)
			rows = append(rows, row)
		}
		assert.Equal(t, [][]int{{1, 4, 7}, {2, 5, 8}, {3, 6, 9}}, rows)
	})

	t.Run("one ends early", func(t *testing.T) {
		var steps int
		var got error
		for _, err := range Lockstep(seqOf(1, 2, 3), seqOf(4, 5)) {
			if err != nil {
				got = err
				break
			}
			steps++
		}
		assert.Equal(t, 2, steps)
		assert.ErrorIs(t, got, ErrLengthMismatch)
	})

	t.Run("error propagates", func(t *testing.T) {
		boom := errors.New("boom")
		failing := func(yield func(int, error) bool) {
			yield(0, boom)
		}
		for _, err := range Lockstep(seqOf(1), failing) {
			assert.ErrorIs(t, err, boom)
		}
	})

	t.Run("early break", func(t *testing.T) {
		var rows [][]int
		for row := range Lockstep(seqOf(1, 2, 3), seqOf(4, 5, 6)) {
			rows = append(rows, row)
			break
		}
		assert.Len(t, rows, 1)
	})

	t.Run("no sequences", func(t *testing.T) {
		n := 0
		for range Lockstep[int]() {
			n++
		}
		assert.Zero(t, n)
	})
}

func TestSplitGroup(t *testing.T) {
	assert.Equal(t, []string{"en"}, SplitGroup("en"))
	assert.True(t, slices.Equal([]string{"en", "de", "fr"}, SplitGroup("en+de+fr")))
}
