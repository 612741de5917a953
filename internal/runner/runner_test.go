package runner

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DjordjeVuckovic/probe-report/internal/apperr"
	"github.com/DjordjeVuckovic/probe-report/internal/dataset"
	"github.com/DjordjeVuckovic/probe-report/internal/probe"
	"github.com/DjordjeVuckovic/probe-report/internal/results"
	"github.com/DjordjeVuckovic/probe-report/internal/runspec"
	"github.com/DjordjeVuckovic/probe-report/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "mbert"

const chainConll = "# sent_id = 1\n" +
	"1\tThe\tthe\tDET\t_\t_\t0\troot\t_\t_\n" +
	"2\tdog\tdog\tNOUN\t_\t_\t1\tdep\t_\t_\n" +
	"3\tbarks\tbark\tVERB\t_\t_\t2\tdep\t_\t_\n" +
	"\n"

func writeJSONL(t *testing.T, path string, records ...dataset.Record) {
	t.Helper()
	var b strings.Builder
	for _, r := range records {
		raw, err := json.Marshal(r)
		require.NoError(t, err)
		b.Write(raw)
		b.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func ones(n int) []bool {
	m := make([]bool, n)
	for i := range m {
		m[i] = true
	}
	return m
}

// writeChainData builds one three-token sentence whose embedding is the token position, so a
// one-dimensional identity probe predicts squared gold distances and depths.
func writeChainData(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	emb := dataset.Record{Index: 0, NumTokens: 3, Layers: [][][]float64{{{0}, {1}, {2}}}}
	distance := dataset.Record{Index: 0, NumTokens: 3, Target: []float64{0, 1, 2, 1, 0, 1, 2, 1, 0}, Mask: ones(9)}
	depth := dataset.Record{Index: 0, NumTokens: 3, Target: []float64{0, 1, 2}, Mask: ones(3)}

	writeJSONL(t, filepath.Join(dir, "emb_test.jsonl"), emb)
	writeJSONL(t, filepath.Join(dir, "emb_train.jsonl"), emb)
	writeJSONL(t, filepath.Join(dir, "dist_test.jsonl"), distance)
	writeJSONL(t, filepath.Join(dir, "depth_test.jsonl"), depth)
	writeJSONL(t, filepath.Join(dir, "rnd_train.jsonl"), depth)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en_test.conllu"), []byte(chainConll), 0o644))

	m := dataset.DataMap{
		Models:    []string{testModel},
		Languages: []string{"en"},
		Tasks:     []string{task.DepDistance, task.DepDepth, task.RndDepth},
		MapEmbeddings: map[string]map[string]map[string]string{
			dataset.ModeTest:  {testModel: {"en": "emb_test.jsonl"}},
			dataset.ModeTrain: {testModel: {"en": "emb_train.jsonl"}},
		},
		MapTargets: map[string]map[string]map[string]map[string]string{
			dataset.ModeTest: {testModel: {"en": {
				task.DepDistance: "dist_test.jsonl",
				task.DepDepth:    "depth_test.jsonl",
			}}},
			dataset.ModeTrain: {testModel: {"en": {task.RndDepth: "rnd_train.jsonl"}}},
		},
		MapConll: map[string]map[string]map[string]map[string]string{
			dataset.ModeTest: {testModel: {"en": {task.DepDistance: "en_test.conllu"}}},
		},
	}
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, dataset.DataMapFile), raw, 0o644))

	params := probe.Params{
		Dimension:       1,
		Rank:            1,
		DistanceWeights: map[string][]float64{task.DepDistance: {1}},
		DepthWeights:    map[string][]float64{task.DepDepth: {1}, task.RndDepth: {1}},
	}
	raw, err = json.Marshal(params)
	require.NoError(t, err)
	probePath := filepath.Join(dir, "probe.json")
	require.NoError(t, os.WriteFile(probePath, raw, 0o644))

	return dir, probePath
}

func newSpec(t *testing.T, dataDir, probePath string, tasks ...string) *runspec.RunSpec {
	t.Helper()
	layer := 0
	s := &runspec.RunSpec{
		DataDir:    dataDir,
		ParentDir:  t.TempDir(),
		Model:      testModel,
		Tasks:      tasks,
		LayerIndex: &layer,
		Probe:      runspec.ProbeConfig{Path: probePath},
	}
	require.NoError(t, runspec.Validate(s))
	return s
}

func newRunner(t *testing.T, spec *runspec.RunSpec, storers ...results.Storer) *Runner {
	t.Helper()
	p, closer, err := OpenProbe(spec.Probe)
	require.NoError(t, err)
	t.Cleanup(func() { closer.Close() })

	reader, err := dataset.Open(spec.DataDir, spec.Model)
	require.NoError(t, err)
	return New(spec, p, dataset.NewSource(reader, spec.BatchSize, spec.Layer()), storers...)
}

func readOut(t *testing.T, res *Result, name string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(res.OutDir, name))
	require.NoError(t, err)
	return string(raw)
}

func TestRunner_Run(t *testing.T) {
	dataDir, probePath := writeChainData(t)
	spec := newSpec(t, dataDir, probePath, task.DepDistance, task.DepDepth, task.RndDepth)
	store := results.NewInMemStore()

	res, err := newRunner(t, spec, store).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(spec.ParentDir, "task_dep_distance_dep_depth_rnd_depth-layer_0-trainl_en"), res.OutDir)

	assert.Equal(t, "3\t1\n", readOut(t, res, "test.en.dep_distance.spearman"))
	assert.Equal(t, "1\n", readOut(t, res, "test.en.dep_distance.spearman_mean"))
	assert.Equal(t, "3\t1\n", readOut(t, res, "test.en.dep_depth.spearman"))
	assert.Equal(t, "3\t1\n", readOut(t, res, "train.en.rnd_depth.spearman"))
	assert.Equal(t, "1\n", readOut(t, res, "test.en.uas"))
	assert.Equal(t, "1\n", readOut(t, res, "test.en.uuas"))

	_, err = os.Stat(filepath.Join(res.OutDir, "en.inter_dims"))
	assert.True(t, os.IsNotExist(err), "dimensionality needs a threshold")

	files := res.Files()
	require.NotEmpty(t, files)
	assert.Equal(t, filepath.Join(res.OutDir, "test.en.uuas"), files[len(files)-1])

	stored, err := store.List(context.Background(), results.Filter{RunID: res.RunID})
	require.NoError(t, err)
	assert.Len(t, stored, len(res.Records))

	uuas, err := store.List(context.Background(), results.Filter{Metric: "uuas"})
	require.NoError(t, err)
	require.Len(t, uuas, 1)
	assert.Equal(t, dataset.ModeTest, uuas[0].Mode)
	assert.Equal(t, res.Experiment, uuas[0].Experiment)

	rnd, err := store.List(context.Background(), results.Filter{Task: task.RndDepth, Metric: "spearman"})
	require.NoError(t, err)
	require.Len(t, rnd, 1)
	assert.Equal(t, dataset.ModeTrain, rnd[0].Mode)
	assert.Equal(t, 3, rnd[0].Length)
}

func TestRunner_GatedWritesDimensionality(t *testing.T) {
	dataDir, probePath := writeChainData(t)
	spec := newSpec(t, dataDir, probePath, task.DepDistance, task.DepDepth)
	threshold := 0.5
	spec.ProbeThreshold = &threshold

	res, err := newRunner(t, spec).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1\n", readOut(t, res, "en.dep_distance.selected_dims"))
	assert.Equal(t, " ,\tdep_distance,\tdep_depth\ndep_distance,\t1,\t1\ndep_depth,\t1,\t1\n", readOut(t, res, "en.inter_dims"))
	assert.Equal(t, "1\n", readOut(t, res, "test.en.gated.uuas"))

	for _, r := range res.Records {
		assert.True(t, r.Gated)
	}
}

func TestRunner_DropPartsSkipsDimensionality(t *testing.T) {
	dataDir, probePath := writeChainData(t)
	spec := newSpec(t, dataDir, probePath, task.DepDistance)
	threshold, parts := 0.5, 1
	spec.ProbeThreshold, spec.DropParts = &threshold, &parts

	res, err := newRunner(t, spec).Run(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(res.OutDir, "en.inter_dims"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(res.OutDir, "test.en.gated.dp1.uuas"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(res.OutDir, "test.en.gated.dp1.uas"))
	assert.True(t, os.IsNotExist(err), "directed decoding needs dep_depth")
}

func TestRunner_UnavailableLanguage(t *testing.T) {
	dataDir, probePath := writeChainData(t)
	spec := newSpec(t, dataDir, probePath, task.DepDistance)
	spec.Languages = []string{"en+fr"}

	_, err := newRunner(t, spec).Run(context.Background())
	var unavailable *apperr.UnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "fr", unavailable.Name)
}

func TestOpenProbe(t *testing.T) {
	_, _, err := OpenProbe(runspec.ProbeConfig{Type: "bogus"})
	assert.Error(t, err)

	_, _, err = OpenProbe(runspec.ProbeConfig{Type: runspec.ProbeLinear, Path: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)
}

func TestWriteSummary(t *testing.T) {
	dataDir, probePath := writeChainData(t)
	spec := newSpec(t, dataDir, probePath, task.DepDistance, task.DepDepth)

	res, err := newRunner(t, spec).Run(context.Background())
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, WriteSummary(&b, res))
	out := b.String()

	assert.Contains(t, out, res.RunID.String())
	assert.Contains(t, out, "spearman_mean")
	assert.Contains(t, out, "uuas")
	assert.Contains(t, out, "1.0000")
	assert.NotContains(t, out, "(no aggregate values)")

	var empty strings.Builder
	require.NoError(t, WriteSummary(&empty, &Result{}))
	assert.Contains(t, empty.String(), "(no aggregate values)")
}
