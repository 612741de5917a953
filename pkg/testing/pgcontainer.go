package testing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PGImageEnv     = "PG_TEST_IMAGE"
	DefaultPGImage = "postgres:17.5"
)

type PGContainer struct {
	Container  testcontainers.Container
	ConnString string
}

type PGConfig struct {
	Database string
	Username string
	Password string
	// MigrationsDir defaults to the module's db/migrations.
	MigrationsDir string
}

// NewPGContainer starts postgres with the results schema applied and terminates it when tb ends.
func NewPGContainer(ctx context.Context, tb testing.TB, cfg PGConfig) *PGContainer {
	tb.Helper()

	if cfg.Database == "" {
		cfg.Database = "probe_test_db"
	}
	if cfg.Username == "" {
		cfg.Username = "test"
	}
	if cfg.Password == "" {
		cfg.Password = "test"
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = MigrationsDir()
	}

	script, err := JoinMigrations(cfg.MigrationsDir)
	if err != nil {
		tb.Fatalf("prepare migrations: %v", err)
	}
	initFile := filepath.Join(tb.TempDir(), "init.sql")
	if err := os.WriteFile(initFile, []byte(script), 0o644); err != nil {
		tb.Fatalf("write init script: %v", err)
	}

	c, err := postgres.Run(ctx,
		imageFromEnv(PGImageEnv, DefaultPGImage),
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		postgres.WithInitScripts(initFile),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if c != nil {
		tb.Cleanup(func() {
			if err := testcontainers.TerminateContainer(c); err != nil {
				tb.Logf("terminate postgres container: %v", err)
			}
		})
	}
	if err != nil {
		tb.Fatalf("start postgres container: %v", err)
	}

	connStr, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tb.Fatalf("postgres connection string: %v", err)
	}

	return &PGContainer{Container: c, ConnString: connStr}
}
