package matcher

import (
	"github.com/shopspring/decimal"

	"github.com/reconflow/reconflow/internal/domain/dataset"
	"github.com/reconflow/reconflow/internal/domain/normalize"
)

// Derived columns added to every partition for traceability. The source
// and target suffixes also disambiguate original columns that exist on
// both sides.
const (
	NormRefColumn      = "_norm_ref"
	StdAmtSourceColumn = "_std_amt_source"
	StdAmtTargetColumn = "_std_amt_target"
	AmtDiffColumn      = "_amt_diff"

	SourceSuffix = "_source"
	TargetSuffix = "_target"
)

// Config carries the per-run matching parameters.
type Config struct {
	// Column names per side.
	SourceRefColumn    string
	TargetRefColumn    string
	SourceAmountColumn string
	TargetAmountColumn string

	// Tolerance is the maximum absolute amount difference still
	// considered a match.
	Tolerance decimal.Decimal

	// NormalizeRefs controls whether references are canonicalized before
	// joining. When false the raw column value is the join key.
	NormalizeRefs bool

	// Precision is the fractional-digit count amounts are standardized to
	// before comparison.
	Precision int32
}

// DefaultConfig returns the standard matching parameters: reference and
// amount columns named literally, one-cent tolerance, normalization on.
func DefaultConfig() Config {
	return Config{
		SourceRefColumn:    "reference",
		TargetRefColumn:    "reference",
		SourceAmountColumn: "amount",
		TargetAmountColumn: "amount",
		Tolerance:          decimal.NewFromFloat(0.01),
		NormalizeRefs:      true,
		Precision:          normalize.DefaultPrecision,
	}
}

// Result partitions the joined universe of records into four disjoint
// datasets. Every source record lands in exactly one of Matched,
// MissingInTarget, or AmountMismatches; target records with no reference
// counterpart in source land in MissingInSource.
type Result struct {
	Matched          *dataset.Dataset
	MissingInTarget  *dataset.Dataset
	MissingInSource  *dataset.Dataset
	AmountMismatches *dataset.Dataset
}

// TotalSource is the source-side volume: matched plus missing-in-target
// plus amount mismatches. MissingInSource measures target-side orphans,
// not source volume, and is deliberately excluded.
func (r *Result) TotalSource() int {
	return r.Matched.Len() + r.MissingInTarget.Len() + r.AmountMismatches.Len()
}

// PoolMatchPct is the percentage of source-side volume that matched.
// Zero when there is no source volume.
func (r *Result) PoolMatchPct() float64 {
	total := r.TotalSource()
	if total == 0 {
		return 0
	}
	return float64(r.Matched.Len()) / float64(total) * 100
}
