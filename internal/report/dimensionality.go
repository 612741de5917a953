package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/probe-report/internal/task"
)

// DimensionMatrices maps a language group to its task × task overlap counts.
type DimensionMatrices map[string][][]int

// SelectedDimensionalityReporter counts the probe dimensions selected by the gates of every
// pair of tasks. It reads probe weights only.
type SelectedDimensionalityReporter struct {
	*Reporter
	languages []string
	tasks     []task.Task
}

func NewSelectedDimensionalityReporter(base *Reporter, languages []string, tasks []task.Task) *SelectedDimensionalityReporter {
	return &SelectedDimensionalityReporter{Reporter: base, languages: languages, tasks: tasks}
}

func (r *SelectedDimensionalityReporter) Compute(ctx context.Context, results DimensionMatrices) error {
	for _, group := range r.languages {
		gates := make([][]float64, len(r.tasks))
		matrix := make([][]int, len(r.tasks))
		for i, t := range r.tasks {
			g, err := r.EmbeddingGate(ctx, t, 0)
			if err != nil {
				return err
			}
			gates[i] = g
			matrix[i] = make([]int, len(r.tasks))
			for j := 0; j <= i; j++ {
				n, err := Overlap(gates[i], gates[j])
				if err != nil {
					return fmt.Errorf("%s and %s: %w", t.Name, r.tasks[j].Name, err)
				}
				matrix[i][j] = n
				matrix[j][i] = n
			}
		}
		results[group] = matrix
	}
	return nil
}

// Overlap counts the dimensions open in both gates.
func Overlap(a, b []float64) (int, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("gate sizes differ: %d and %d", len(a), len(b))
	}
	n := 0
	for i := range a {
		if a[i] != 0 && b[i] != 0 {
			n++
		}
	}
	return n, nil
}

// Write emits each task's own selected dimension count and the overlap table of each group.
func (r *SelectedDimensionalityReporter) Write(outDir string, results DimensionMatrices) ([]Entry, error) {
	var entries []Entry
	names := task.Names(r.tasks)
	for _, group := range r.languages {
		matrix, ok := results[group]
		if !ok {
			return nil, fmt.Errorf("no dimension matrix computed for %s", group)
		}

		for i, name := range names {
			path, err := writeLines(outDir, group+"."+name+"."+MetricSelectedDims, []string{strconv.Itoa(matrix[i][i])})
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{File: path, Metric: MetricSelectedDims, Language: group, Task: name, Value: float64(matrix[i][i])})
		}

		lines := []string{strings.Join(append([]string{" "}, names...), ",\t")}
		var overlaps []Entry
		for i, name := range names {
			row := []string{name}
			for j, v := range matrix[i] {
				row = append(row, strconv.Itoa(v))
				overlaps = append(overlaps, Entry{Metric: MetricInterDims, Language: group, Task: name, Peer: names[j], Value: float64(v)})
			}
			lines = append(lines, strings.Join(row, ",\t"))
		}
		path, err := writeLines(outDir, group+"."+MetricInterDims, lines)
		if err != nil {
			return nil, err
		}
		for i := range overlaps {
			overlaps[i].File = path
		}
		entries = append(entries, overlaps...)
	}
	return entries, nil
}
