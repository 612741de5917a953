package runner

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/DjordjeVuckovic/probe-report/internal/report"
)

// WriteSummary prints one row per aggregate value of a run. Per-length correlations and the
// overlap tables stay in their files.
func WriteSummary(w io.Writer, res *Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== Probe Report ===\n")
	fmt.Fprintf(tw, "Run: %s\nOutput: %s\n\n", res.RunID, res.OutDir)

	header := []string{"Mode", "Language", "Task", "Metric", "Value"}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	fmt.Fprintln(tw, strings.Repeat("-\t", len(header)-1)+"-")

	rows := 0
	for i, e := range res.Entries {
		if !summarized(e) {
			continue
		}
		taskName := e.Task
		if taskName == "" {
			taskName = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", res.Records[i].Mode, e.Language, taskName, e.Metric, formatValue(e.Value))
		rows++
	}
	if rows == 0 {
		fmt.Fprintln(tw, "(no aggregate values)")
	}

	return tw.Flush()
}

func summarized(e report.Entry) bool {
	switch {
	case e.Metric == report.MetricInterDims:
		return false
	case strings.HasSuffix(e.Metric, "_mean"):
		return true
	case e.Metric == report.MetricUAS, e.Metric == report.MetricUUAS, e.Metric == report.MetricSelectedDims:
		return true
	}
	return false
}

func formatValue(v float64) string {
	if v != v {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
