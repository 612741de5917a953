package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/DjordjeVuckovic/probe-report/internal/dataset"
	"github.com/DjordjeVuckovic/probe-report/internal/results/factory"
	"github.com/DjordjeVuckovic/probe-report/internal/runner"
	"github.com/DjordjeVuckovic/probe-report/pkg/config/env"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		slog.Error("Invalid flags", "error", err)
		os.Exit(2)
	}
	slog.SetLogLoggerLevel(cfg.level())

	if err := env.LoadDotEnv(cfg.EnvPath); err != nil {
		slog.Error("Failed to load environment", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Probe report failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cliConfig) error {
	spec, err := cfg.runSpec()
	if err != nil {
		return err
	}

	storeCfg, err := factory.LoadEnv()
	if err != nil {
		return err
	}

	reader, err := dataset.Open(spec.DataDir, spec.Model)
	if err != nil {
		return err
	}

	p, closer, err := runner.OpenProbe(spec.Probe)
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := factory.New(ctx, storeCfg, spec.OutDir())
	if err != nil {
		return err
	}
	defer store.Close()

	source := dataset.NewSource(reader, spec.BatchSize, spec.Layer())
	res, err := runner.New(spec, p, source, store.Storer).Run(ctx)
	if err != nil {
		return err
	}

	if cfg.Summary {
		if err := runner.WriteSummary(os.Stdout, res); err != nil {
			return err
		}
	}

	slog.Info("Results written",
		"run_id", res.RunID,
		"out_dir", res.OutDir,
		"files", len(res.Files()),
		"store", storeCfg.Type)
	return nil
}
