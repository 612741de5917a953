package factory

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/DjordjeVuckovic/probe-report/internal/results"
	"github.com/DjordjeVuckovic/probe-report/internal/results/es"
	"github.com/DjordjeVuckovic/probe-report/internal/results/pg"
	"github.com/DjordjeVuckovic/probe-report/pkg/stringsutil"
)

const DefaultSQLitePath = "probe_results.db"

type StorageConfig struct {
	results.Type
	// JSONPath overrides the results file location; empty means the run output directory.
	JSONPath   string
	SQLitePath string
	Pg         *pg.PoolConfig
	Es         *es.ClientConfig
}

var supported = []results.Type{results.JSONFile, results.PG, results.SQLite, results.ES, results.InMem}

// LoadEnv reads RESULTS_STORE and the backend settings. An unset store means JSON files.
func LoadEnv() (*StorageConfig, error) {
	storageType := results.Type(strings.ToLower(strings.TrimSpace(os.Getenv("RESULTS_STORE"))))
	if storageType == "" {
		storageType = results.JSONFile
	}

	valid := false
	for _, t := range supported {
		if t == storageType {
			valid = true
			break
		}
	}
	if !valid {
		slog.Error("Invalid RESULTS_STORE environment variable value", "value", storageType)
		return nil, fmt.Errorf(
			"invalid RESULTS_STORE environment variable value: %s, expected one of %v",
			storageType, supported)
	}

	cfg := &StorageConfig{Type: storageType, JSONPath: os.Getenv("RESULTS_JSON_PATH")}

	switch storageType {
	case results.SQLite:
		cfg.SQLitePath = os.Getenv("SQLITE_PATH")
		if cfg.SQLitePath == "" {
			cfg.SQLitePath = DefaultSQLitePath
		}
	case results.PG:
		cfg.Pg = &pg.PoolConfig{ConnStr: os.Getenv("PG_CONNECTION_STRING")}
		if cfg.Pg.ConnStr == "" {
			slog.Error("PostgreSQL connection string is not set")
			return nil, fmt.Errorf("PostgreSQL connection string is not set")
		}
	case results.ES:
		cfg.Es = &es.ClientConfig{
			Addresses: stringsutil.SplitTrim(os.Getenv("ES_ADDRESSES"), ","),
			IndexName: os.Getenv("ES_INDEX_NAME"),
			Username:  os.Getenv("ES_USERNAME"),
			Password:  os.Getenv("ES_PASSWORD"),
		}
		if len(cfg.Es.Addresses) == 0 {
			slog.Error("Elasticsearch configuration is incomplete", "addresses", cfg.Es.Addresses)
			return nil, fmt.Errorf("elasticsearch configuration is incomplete: addresses are missing")
		}
		if cfg.Es.IndexName == "" {
			cfg.Es.IndexName = es.DefaultIndexName
		}
	}

	return cfg, nil
}
