package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/reconflow/reconflow/internal/domain/matcher"
	"github.com/reconflow/reconflow/internal/report"
)

const (
	summaryFile = "summary.json"
	latestFile  = "latest.txt"
)

// runIDPattern matches identifiers produced by report.NewRunID. Run ids
// arrive from the CLI and the HTTP API, so anything else is rejected
// before it reaches a filesystem path.
var runIDPattern = regexp.MustCompile(`^\d{8}T\d{6}Z$`)

// WriteRunArtifacts persists one reconciliation run under
// <runDir>/<pipeline>/<runID>/: the four partition CSVs and the summary,
// then overwrites the pipeline's latest-run pointer. Last writer wins on
// the pointer; no history is kept there.
func WriteRunArtifacts(runDir, pipelineName string, result *matcher.Result) (*report.RunSummary, error) {
	now := time.Now().UTC()
	runID := report.NewRunID(now)

	outDir := filepath.Join(runDir, pipelineName, runID)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}

	paths := map[string]string{
		report.ArtifactDir:              outDir,
		report.ArtifactMatched:          filepath.Join(outDir, report.ArtifactMatched+".csv"),
		report.ArtifactMissingInTarget:  filepath.Join(outDir, report.ArtifactMissingInTarget+".csv"),
		report.ArtifactMissingInSource:  filepath.Join(outDir, report.ArtifactMissingInSource+".csv"),
		report.ArtifactAmountMismatches: filepath.Join(outDir, report.ArtifactAmountMismatches+".csv"),
	}

	if err := WriteCSV(result.Matched, paths[report.ArtifactMatched]); err != nil {
		return nil, err
	}
	if err := WriteCSV(result.MissingInTarget, paths[report.ArtifactMissingInTarget]); err != nil {
		return nil, err
	}
	if err := WriteCSV(result.MissingInSource, paths[report.ArtifactMissingInSource]); err != nil {
		return nil, err
	}
	if err := WriteCSV(result.AmountMismatches, paths[report.ArtifactAmountMismatches]); err != nil {
		return nil, err
	}

	summary := report.BuildSummary(runID, pipelineName, now, result, paths)

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, summaryFile), data, 0o644); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}

	pointer := filepath.Join(runDir, pipelineName, latestFile)
	if err := os.WriteFile(pointer, []byte(runID), 0o644); err != nil {
		return nil, fmt.Errorf("writing latest pointer: %w", err)
	}

	return summary, nil
}

// ReadSummary loads a persisted run summary. The run id is validated
// against the generated id shape so a caller-supplied id cannot escape
// the pipeline's run directory.
func ReadSummary(runDir, pipelineName, runID string) (*report.RunSummary, error) {
	if !runIDPattern.MatchString(runID) {
		return nil, fmt.Errorf("invalid run id %q", runID)
	}
	path := filepath.Join(runDir, pipelineName, runID, summaryFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading summary for run %s: %w", runID, err)
	}

	var summary report.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("decoding summary for run %s: %w", runID, err)
	}

	return &summary, nil
}

// LatestRunID reads the pipeline's latest-run pointer.
func LatestRunID(runDir, pipelineName string) (string, error) {
	data, err := os.ReadFile(filepath.Join(runDir, pipelineName, latestFile))
	if err != nil {
		return "", fmt.Errorf("no runs found for pipeline %s: %w", pipelineName, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ListRunIDs returns the pipeline's run identifiers, newest first.
// Run ids sort lexically in chronological order.
func ListRunIDs(runDir, pipelineName string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(runDir, pipelineName))
	if err != nil {
		return nil, fmt.Errorf("listing runs for pipeline %s: %w", pipelineName, err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}
