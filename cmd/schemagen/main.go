package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/DjordjeVuckovic/probe-report/internal/dataset"
	"github.com/DjordjeVuckovic/probe-report/internal/runspec"
	"github.com/DjordjeVuckovic/probe-report/pkg/schema"
)

const idBase = "https://schemas.probe-report.dev"

// schemagen writes JSON schemas for the run spec YAML and data_map.json, plus an example run spec.
func main() {
	outputDir := flag.String("output", "api", "Output directory for generated schemas")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		slog.Error("Failed to create output directory", "error", err)
		os.Exit(1)
	}

	targets := []struct {
		file string
		tag  string
		v    interface{}
	}{
		{"runspec-v1.json", "yaml", runspec.RunSpec{}},
		{"datamap-v1.json", "json", dataset.DataMap{}},
	}
	for _, t := range targets {
		out, err := schema.NewGenerator(t.tag, idBase).GenerateJSONSchema(t.v)
		if err != nil {
			slog.Error("Failed to generate schema", "file", t.file, "error", err)
			os.Exit(1)
		}
		path := filepath.Join(*outputDir, t.file)
		if err := os.WriteFile(path, []byte(out+"\n"), 0o644); err != nil {
			slog.Error("Failed to write schema", "path", path, "error", err)
			os.Exit(1)
		}
		slog.Info("Generated JSON schema", "path", path)
	}

	path := filepath.Join(*outputDir, "runspec-example.yaml")
	if err := os.WriteFile(path, []byte(exampleRunSpec), 0o644); err != nil {
		slog.Error("Failed to write example", "path", path, "error", err)
		os.Exit(1)
	}
	slog.Info("Generated YAML example", "path", path)
}

const exampleRunSpec = `# Probe report run spec
data_dir: data/mbert
parent_dir: experiments
model: bert-base-multilingual-cased
languages: [en, de, "en+de"]
tasks: [dep_distance, dep_depth, rnd_distance]
layer_index: 6
batch_size: 20
correlation: spearman
# probe_threshold: 0.0001
# drop_parts: 4
probe:
  type: linear
  path: probes/mbert-layer6.json
`
