package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	MetricSpearman     = "spearman"
	MetricSpearmanMean = "spearman_mean"
	MetricUAS          = "uas"
	MetricUUAS         = "uuas"
	MetricSelectedDims = "selected_dims"
	MetricInterDims    = "inter_dims"
)

// Entry is one value written to an output file.
type Entry struct {
	File     string
	Metric   string
	Language string
	Task     string
	// Peer is the second task of an overlap value.
	Peer   string
	Length int
	Value  float64
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeLines(dir, name string, lines []string) (string, error) {
	path := filepath.Join(dir, name)
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}
