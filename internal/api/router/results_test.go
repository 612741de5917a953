package router

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DjordjeVuckovic/probe-report/internal/apperr"
	"github.com/DjordjeVuckovic/probe-report/internal/results"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) List(context.Context, results.Filter) ([]results.Record, error) {
	return nil, errors.New("backend down")
}

func newTestEcho(t *testing.T, reader results.Reader) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	NewResultsRouter(e, reader).Bind()
	return e
}

func seed(t *testing.T) (*results.InMemStore, uuid.UUID) {
	t.Helper()
	store := results.NewInMemStore()
	run := uuid.New()
	require.NoError(t, store.SaveBulk(context.Background(), []results.Record{
		{RunID: run, Mode: "test", Language: "en", Metric: "uuas", Value: 0.5},
		{RunID: run, Mode: "test", Language: "de", Metric: "uuas", Value: results.Score(math.NaN())},
		{RunID: uuid.New(), Mode: "test", Language: "en", Task: "dep_depth", Metric: "spearman", Length: 3, Value: 1},
	}))
	return store, run
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) ResultsResponse {
	t.Helper()
	var resp ResultsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestResultsRouter_List(t *testing.T) {
	store, run := seed(t)
	e := newTestEcho(t, store)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"all", "/results", 3},
		{"by language", "/results?language=en", 2},
		{"by metric and language", "/results?metric=uuas&language=de", 1},
		{"by run", "/results?run_id=" + run.String(), 2},
		{"first page", "/results?size=2", 2},
		{"last page", "/results?size=2&page=2", 1},
		{"no match", "/results?task=rnd_depth", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(e, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			resp := decode(t, rec)
			assert.Len(t, resp.Items, tt.want)
		})
	}
}

func TestResultsRouter_HasMore(t *testing.T) {
	store, _ := seed(t)
	e := newTestEcho(t, store)

	first := decode(t, get(e, "/results?size=2"))
	assert.True(t, first.HasMore)
	assert.Equal(t, 1, first.Page)

	second := decode(t, get(e, "/results?size=2&page=2"))
	assert.False(t, second.HasMore)
	assert.Equal(t, 2, second.Page)
}

func TestResultsRouter_NaNIsNull(t *testing.T) {
	store, _ := seed(t)
	rec := get(newTestEcho(t, store), "/results?language=de")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"value":null`)
}

func TestResultsRouter_RunResults(t *testing.T) {
	store, run := seed(t)
	e := newTestEcho(t, store)

	rec := get(e, "/runs/"+run.String()+"/results?language=en")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, run, resp.Items[0].RunID)
	assert.False(t, resp.HasMore)
}

func TestResultsRouter_Errors(t *testing.T) {
	store, _ := seed(t)
	e := newTestEcho(t, store)

	assert.Equal(t, http.StatusBadRequest, get(e, "/results?run_id=nope").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/results?size=-1").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/results?page=x").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/runs/nope/results").Code)
	assert.Equal(t, http.StatusInternalServerError, get(newTestEcho(t, failingReader{}), "/results").Code)
}
