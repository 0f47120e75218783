// Package cli provides console rendering for reconciliation runs.
package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reconflow/reconflow/internal/report"
)

// totalsOrder fixes the rendering order of the totals map.
var totalsOrder = []string{
	report.ArtifactMatched,
	report.ArtifactMissingInTarget,
	report.ArtifactMissingInSource,
	report.ArtifactAmountMismatches,
	"total_source",
}

// PrintSummary renders a run summary as a plain-text table.
func PrintSummary(summary *report.RunSummary) {
	title := fmt.Sprintf("Run: %s / %s", summary.PipelineName, summary.RunID)
	width := 42
	if len(title) > width {
		width = len(title)
	}

	fmt.Println(strings.Repeat("-", width))
	fmt.Println(title)
	fmt.Println(strings.Repeat("-", width))

	for _, key := range totalsOrder {
		if value, ok := summary.Totals[key]; ok {
			fmt.Printf("  %-22s %10d\n", key, value)
		}
	}

	fmt.Println(strings.Repeat("-", width))

	metricKeys := make([]string, 0, len(summary.Metrics))
	for key := range summary.Metrics {
		metricKeys = append(metricKeys, key)
	}
	sort.Strings(metricKeys)
	for _, key := range metricKeys {
		fmt.Printf("  %-22s %9.2f%%\n", key, summary.Metrics[key])
	}

	fmt.Println(strings.Repeat("-", width))
	fmt.Printf("Artifacts: %s\n", summary.Paths[report.ArtifactDir])
}

// PrintExplain renders the narrative breakdown of a run.
func PrintExplain(summary *report.RunSummary) {
	fmt.Println("What happened?")
	fmt.Println("  Source records matched against target records by normalized reference.")
	fmt.Println("  Amounts matched if their difference was within tolerance.")
	fmt.Println()

	fmt.Println("Results breakdown:")
	fmt.Printf("  Matched:           %d records\n", summary.Totals[report.ArtifactMatched])
	fmt.Printf("  Missing in target: %d records\n", summary.Totals[report.ArtifactMissingInTarget])
	fmt.Printf("  Missing in source: %d records\n", summary.Totals[report.ArtifactMissingInSource])
	fmt.Printf("  Amount mismatches: %d records\n", summary.Totals[report.ArtifactAmountMismatches])
	fmt.Println()

	fmt.Println("Where to look next:")
	for _, key := range totalsOrder[:4] {
		if path, ok := summary.Paths[key]; ok {
			fmt.Printf("  %-18s %s\n", key+":", path)
		}
	}
	fmt.Println()

	PrintSummary(summary)
}
