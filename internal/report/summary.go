// Package report turns classified match partitions into the persisted
// run summary: totals, the pool match percentage, and the run identity.
// It is pure computation; writing artifacts belongs to the storage layer.
package report

import (
	"math"
	"time"

	"github.com/reconflow/reconflow/internal/domain/matcher"
)

// Logical artifact names used in the summary paths map and as partition
// file stems.
const (
	ArtifactDir              = "dir"
	ArtifactMatched          = "matched"
	ArtifactMissingInTarget  = "missing_in_target"
	ArtifactMissingInSource  = "missing_in_source"
	ArtifactAmountMismatches = "amount_mismatches"
)

// RunSummary is the immutable record of one reconciliation run. It is
// constructed once after classification completes and never mutated;
// reporting tooling reads it back from its persisted form.
type RunSummary struct {
	RunID        string             `json:"run_id"`
	PipelineName string             `json:"pipeline_name"`
	ExecutedAt   string             `json:"executed_at"`
	Totals       map[string]int     `json:"totals"`
	Metrics      map[string]float64 `json:"metrics"`
	Paths        map[string]string  `json:"paths"`
}

// NewRunID derives a run identifier from a UTC timestamp at second
// granularity, formatted so lexical and chronological order coincide.
// Two runs within the same second collide; acceptable for a batch tool.
func NewRunID(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// BuildSummary assembles the run summary from the classified result.
// total_source counts source-side volume only; missing_in_source rows
// are target orphans and excluded from the pool percentage denominator.
func BuildSummary(runID, pipelineName string, executedAt time.Time, result *matcher.Result, paths map[string]string) *RunSummary {
	return &RunSummary{
		RunID:        runID,
		PipelineName: pipelineName,
		ExecutedAt:   executedAt.UTC().Format(time.RFC3339Nano),
		Totals: map[string]int{
			ArtifactMatched:          result.Matched.Len(),
			ArtifactMissingInTarget:  result.MissingInTarget.Len(),
			ArtifactMissingInSource:  result.MissingInSource.Len(),
			ArtifactAmountMismatches: result.AmountMismatches.Len(),
			"total_source":           result.TotalSource(),
		},
		Metrics: map[string]float64{
			"pool_match_pct": round2(result.PoolMatchPct()),
		},
		Paths: paths,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
