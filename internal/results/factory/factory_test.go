package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DjordjeVuckovic/probe-report/internal/results"
	"github.com/DjordjeVuckovic/probe-report/internal/results/es"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *StorageConfig)
	}{
		{
			name: "defaults to json",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *StorageConfig) {
				assert.Equal(t, results.JSONFile, cfg.Type)
			},
		},
		{
			name: "sqlite default path",
			env:  map[string]string{"RESULTS_STORE": "SQLite"},
			check: func(t *testing.T, cfg *StorageConfig) {
				assert.Equal(t, results.SQLite, cfg.Type)
				assert.Equal(t, DefaultSQLitePath, cfg.SQLitePath)
			},
		},
		{
			name:    "pg without connection string",
			env:     map[string]string{"RESULTS_STORE": "pg"},
			wantErr: true,
		},
		{
			name: "pg",
			env:  map[string]string{"RESULTS_STORE": "pg", "PG_CONNECTION_STRING": "postgres://x"},
			check: func(t *testing.T, cfg *StorageConfig) {
				require.NotNil(t, cfg.Pg)
				assert.Equal(t, "postgres://x", cfg.Pg.ConnStr)
			},
		},
		{
			name:    "es without addresses",
			env:     map[string]string{"RESULTS_STORE": "es", "ES_ADDRESSES": " , "},
			wantErr: true,
		},
		{
			name: "es",
			env:  map[string]string{"RESULTS_STORE": "es", "ES_ADDRESSES": "http://a:9200, http://b:9200"},
			check: func(t *testing.T, cfg *StorageConfig) {
				require.NotNil(t, cfg.Es)
				assert.Equal(t, []string{"http://a:9200", "http://b:9200"}, cfg.Es.Addresses)
				assert.Equal(t, es.DefaultIndexName, cfg.Es.IndexName)
			},
		},
		{
			name:    "unknown",
			env:     map[string]string{"RESULTS_STORE": "mongo"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"RESULTS_STORE", "RESULTS_JSON_PATH", "SQLITE_PATH", "PG_CONNECTION_STRING", "ES_ADDRESSES", "ES_INDEX_NAME"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadEnv()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestNew_LocalBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	jsonStore, err := New(ctx, &StorageConfig{Type: results.JSONFile}, dir)
	require.NoError(t, err)
	js, ok := jsonStore.Storer.(*results.JSONFileStore)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, results.JSONFileName), js.Path())
	assert.NoError(t, jsonStore.Close())

	sqliteStore, err := New(ctx, &StorageConfig{Type: results.SQLite, SQLitePath: filepath.Join(dir, "r.db")}, dir)
	require.NoError(t, err)
	require.NotNil(t, sqliteStore.Reader)
	assert.NoError(t, sqliteStore.Close())

	mem, err := New(ctx, &StorageConfig{Type: results.InMem}, dir)
	require.NoError(t, err)
	assert.NotNil(t, mem.Reader)

	_, err = New(ctx, &StorageConfig{Type: "mongo"}, dir)
	assert.ErrorContains(t, err, "unsupported storer type: mongo")

	_, err = New(ctx, &StorageConfig{Type: results.PG}, dir)
	assert.Error(t, err)
}
