// Package main Probe Report API
// @title Probe Report API
// @version 1.0
// @description Browse structural probe evaluation results
// @license.name Apache 2.0
// @license.url https://opensource.org/licenses/Apache-2.0
// @BasePath /
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	_ "github.com/DjordjeVuckovic/probe-report/docs"
	"github.com/DjordjeVuckovic/probe-report/internal/api/router"
	"github.com/DjordjeVuckovic/probe-report/internal/api/server"
	"github.com/DjordjeVuckovic/probe-report/internal/results/factory"
	pkgserver "github.com/DjordjeVuckovic/probe-report/pkg/server"
	"github.com/labstack/echo/v4"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	storeCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load results store config", "error", err)
		os.Exit(1)
	}

	// The JSON backend reads results.json from RESULTS_DIR unless RESULTS_JSON_PATH is set.
	resultsDir := os.Getenv("RESULTS_DIR")
	if resultsDir == "" {
		resultsDir = "."
	}

	store, err := factory.New(context.Background(), storeCfg, resultsDir)
	if err != nil {
		slog.Error("Failed to open results store", "error", err, "store", storeCfg.Type)
		os.Exit(1)
	}
	defer store.Close()

	if store.Reader == nil {
		slog.Error("Results store cannot be listed", "store", storeCfg.Type)
		os.Exit(1)
	}

	var healthChecker pkgserver.HealthChecker = pkgserver.NewOkHealthChecker()
	if store.Healthy != nil {
		healthChecker = pkgserver.HealthFunc(store.Healthy)
	}

	s := server.New(sCfg, healthChecker).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health").
		SetupOpenApi("/swagger/*")

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Probe Report API is running")
	})

	router.NewResultsRouter(s.Echo, store.Reader).Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	if err := s.Start(); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
