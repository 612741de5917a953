package factory

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/DjordjeVuckovic/probe-report/internal/results"
	"github.com/DjordjeVuckovic/probe-report/internal/results/es"
	"github.com/DjordjeVuckovic/probe-report/internal/results/pg"
	"github.com/DjordjeVuckovic/probe-report/internal/results/sqlite"
)

// Store is a storer that may also be listed. Reader is nil for write-only backends.
type Store struct {
	Storer results.Storer
	Reader results.Reader
	// Healthy reports backend reachability; nil when the backend has no probe.
	Healthy func(ctx context.Context) bool
	closer  io.Closer
}

func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// New opens the configured backend. outDir locates the JSON results file when no explicit path is set.
func New(ctx context.Context, cfg *StorageConfig, outDir string) (*Store, error) {
	switch cfg.Type {
	case results.JSONFile, "":
		path := cfg.JSONPath
		if path == "" {
			path = filepath.Join(outDir, results.JSONFileName)
		}
		s := results.NewJSONFileStore(path)
		return &Store{Storer: s, Reader: s}, nil

	case results.InMem:
		s := results.NewInMemStore()
		return &Store{Storer: s, Reader: s}, nil

	case results.SQLite:
		s, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite results store: %w", err)
		}
		return &Store{Storer: s, Reader: s, closer: s}, nil

	case results.PG:
		if cfg.Pg == nil {
			return nil, fmt.Errorf("missing PostgreSQL configuration")
		}
		pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}
		return &Store{
			Storer:  pg.NewStorer(pool),
			Reader:  pg.NewReader(pool),
			Healthy: pg.NewHealthChecker(pool).Healthy,
			closer:  closerFunc(func() error { pool.Close(); return nil }),
		}, nil

	case results.ES:
		if cfg.Es == nil {
			return nil, fmt.Errorf("missing Elasticsearch configuration")
		}
		storer, err := es.NewStorer(ctx, *cfg.Es)
		if err != nil {
			return nil, err
		}
		reader, err := es.NewReader(*cfg.Es)
		if err != nil {
			return nil, err
		}
		return &Store{Storer: storer, Reader: reader}, nil

	default:
		return nil, fmt.Errorf(string(results.ErrUnsupportedStorer), cfg.Type)
	}
}
