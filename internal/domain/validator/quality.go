// Package validator provides pre-match data quality checks.
//
// The quality validator inspects a loaded dataset before matching runs.
// Quality problems are reported, not fatal: reconciliation is expected to
// proceed over imperfect data, and the partitions themselves surface
// most issues. Callers that want hard gating treat an invalid result as
// an error.
package validator

import (
	"fmt"

	"github.com/reconflow/reconflow/internal/domain/dataset"
	"github.com/reconflow/reconflow/internal/domain/normalize"
)

// QualityConfig holds the thresholds a dataset is checked against.
type QualityConfig struct {
	// MinRecordCount is the minimum expected number of rows.
	MinRecordCount int

	// MaxDuplicatePct is the maximum tolerated fraction of rows whose
	// normalized reference duplicates an earlier row (0.01 = 1%).
	MaxDuplicatePct float64

	// RequiredFields are columns that must exist in the schema.
	RequiredFields []string

	// NormalizeRefs mirrors the matching configuration: duplicate
	// detection must key references the same way the join will.
	NormalizeRefs bool
}

// QualityResult contains the outcome of validating one dataset.
type QualityResult struct {
	// Valid is true when no check failed.
	Valid bool

	// RecordCount is the number of rows inspected.
	RecordCount int

	// DuplicatePct is the observed duplicate-reference fraction.
	DuplicatePct float64

	// Issues lists every failed check, empty when valid.
	Issues []string
}

// ValidateDataset checks a dataset against the quality thresholds.
// refCol names the reference column used for duplicate detection.
func ValidateDataset(ds *dataset.Dataset, refCol string, cfg QualityConfig) *QualityResult {
	result := &QualityResult{
		Valid:       true,
		RecordCount: ds.Len(),
	}

	if ds.Len() < cfg.MinRecordCount {
		result.fail(fmt.Sprintf("record count %d below minimum %d", ds.Len(), cfg.MinRecordCount))
	}

	for _, field := range cfg.RequiredFields {
		if !ds.HasColumn(field) {
			result.fail(fmt.Sprintf("required field %q missing from schema", field))
		}
	}

	if ds.Len() > 0 && ds.HasColumn(refCol) {
		result.DuplicatePct = duplicatePct(ds, refCol, cfg.NormalizeRefs)
		if result.DuplicatePct > cfg.MaxDuplicatePct {
			result.fail(fmt.Sprintf("duplicate reference rate %.4f exceeds maximum %.4f",
				result.DuplicatePct, cfg.MaxDuplicatePct))
		}
	}

	return result
}

func (r *QualityResult) fail(issue string) {
	r.Valid = false
	r.Issues = append(r.Issues, issue)
}

// duplicatePct is the fraction of rows whose reference key was already
// seen. Keys are normalized only when the matching run will normalize
// too, so a raw-reference run is not flagged for duplicates the join
// would never collide. Empty references are skipped; the matcher
// documents their degenerate join behavior separately.
func duplicatePct(ds *dataset.Dataset, refCol string, normalizeRefs bool) float64 {
	seen := make(map[string]bool, ds.Len())
	duplicates := 0

	for i := 0; i < ds.Len(); i++ {
		v := ds.Get(i, refCol)
		if v.IsNull() {
			continue
		}
		key := v.Str
		if normalizeRefs {
			key = normalize.Reference(v.Str, true)
		}
		if key == "" {
			continue
		}
		if seen[key] {
			duplicates++
		}
		seen[key] = true
	}

	return float64(duplicates) / float64(ds.Len())
}
