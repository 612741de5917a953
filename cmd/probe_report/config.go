package main

import (
	"flag"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/probe-report/internal/runspec"
	"github.com/DjordjeVuckovic/probe-report/pkg/stringsutil"
)

type cliConfig struct {
	SpecPath    string
	EnvPath     string
	LogLevel    string
	DataDir     string
	ParentDir   string
	Model       string
	Languages   string
	Tasks       string
	Layer       int
	Seed        int
	BatchSize   int
	Threshold   string
	DropParts   int
	Correlation string
	ProbePath   string
	ProbeAddr   string
	Summary     bool

	set map[string]bool
}

func parseFlags(fs *flag.FlagSet, args []string) (cliConfig, error) {
	cfg := cliConfig{}

	fs.StringVar(&cfg.SpecPath, "spec", "", "Path to run spec YAML")
	fs.StringVar(&cfg.EnvPath, "env", "cmd/probe_report/.env", "Default .env path (ENV_PATH overrides)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.DataDir, "data-dir", "", "Directory holding data_map.json")
	fs.StringVar(&cfg.ParentDir, "parent-dir", "", "Directory the experiment output directory is created in")
	fs.StringVar(&cfg.Model, "model", "", "Embedding model name")
	fs.StringVar(&cfg.Languages, "languages", "", "Language groups, comma-separated (members joined with +)")
	fs.StringVar(&cfg.Tasks, "tasks", "", "Tasks, comma-separated")
	fs.IntVar(&cfg.Layer, "layer", runspec.DefaultLayerIndex, "Embedding layer, -1 averages all layers")
	fs.IntVar(&cfg.Seed, "seed", runspec.DefaultSeed, "Seed recorded in the experiment name")
	fs.IntVar(&cfg.BatchSize, "batch-size", runspec.DefaultBatchSize, "Sentences per probe batch")
	fs.StringVar(&cfg.Threshold, "threshold", "", "Probe weight threshold; enables gated evaluation")
	fs.IntVar(&cfg.DropParts, "drop-parts", 0, "Evaluate with each of K parts of the gated dimensions dropped")
	fs.StringVar(&cfg.Correlation, "correlation", "", "Correlation: spearman, pearson or kendall")
	fs.StringVar(&cfg.ProbePath, "probe", "", "Path to linear probe parameters (JSON)")
	fs.StringVar(&cfg.ProbeAddr, "probe-addr", "", "Address of a remote probe service; replaces -probe")
	fs.BoolVar(&cfg.Summary, "summary", true, "Print a summary table to stdout")

	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}

	cfg.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })
	return cfg, nil
}

func (c cliConfig) level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// runSpec loads the spec file, if any, and lets explicitly set flags override its values.
func (c cliConfig) runSpec() (*runspec.RunSpec, error) {
	s := &runspec.RunSpec{}
	if c.SpecPath != "" {
		loaded, err := runspec.LoadFromFile(c.SpecPath)
		if err != nil {
			return nil, err
		}
		s = loaded
	}

	if c.set["data-dir"] {
		s.DataDir = c.DataDir
	}
	if c.set["parent-dir"] {
		s.ParentDir = c.ParentDir
	}
	if c.set["model"] {
		s.Model = c.Model
	}
	if c.set["languages"] {
		s.Languages = stringsutil.SplitTrim(c.Languages, ",")
	}
	if c.set["tasks"] {
		s.Tasks = stringsutil.SplitTrim(c.Tasks, ",")
	}
	if c.set["layer"] {
		layer := c.Layer
		s.LayerIndex = &layer
	}
	if c.set["seed"] {
		seed := c.Seed
		s.Seed = &seed
	}
	if c.set["batch-size"] {
		s.BatchSize = c.BatchSize
	}
	if c.set["threshold"] {
		v, err := strconv.ParseFloat(strings.TrimSpace(c.Threshold), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold %q: %w", c.Threshold, err)
		}
		s.ProbeThreshold = &v
	}
	if c.set["drop-parts"] {
		parts := c.DropParts
		s.DropParts = &parts
	}
	if c.set["correlation"] {
		s.Correlation = c.Correlation
	}
	if c.set["probe"] {
		s.Probe = runspec.ProbeConfig{Type: runspec.ProbeLinear, Path: c.ProbePath}
	}
	if c.set["probe-addr"] {
		s.Probe = runspec.ProbeConfig{Type: runspec.ProbeRemote, Address: c.ProbeAddr}
	}

	if err := runspec.Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}
