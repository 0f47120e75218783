package matcher

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconflow/reconflow/internal/domain/dataset"
)

// newDataset builds a dataset from rows of cells; "" cells are null.
func newDataset(cols []string, rows ...[]string) *dataset.Dataset {
	ds := dataset.New(cols...)
	for _, row := range rows {
		rec := make(dataset.Record, len(cols))
		for i, col := range cols {
			if row[i] == "" {
				rec[col] = dataset.Null()
			} else {
				rec[col] = dataset.String(row[i])
			}
		}
		ds.Append(rec)
	}
	return ds
}

func ledgerCols() []string {
	return []string{"reference", "amount"}
}

func mustMatch(t *testing.T, source, target *dataset.Dataset, cfg Config) *Result {
	t.Helper()
	result, err := NewExactReferenceStrategy().Match(source, target, cfg)
	require.NoError(t, err)
	return result
}

func TestExactReference_PerfectMatch(t *testing.T) {
	source := newDataset(ledgerCols(), []string{"REF001", "100.00"})
	target := newDataset(ledgerCols(), []string{"REF001", "100.00"})

	result := mustMatch(t, source, target, DefaultConfig())

	assert.Equal(t, 1, result.Matched.Len())
	assert.Equal(t, 0, result.MissingInTarget.Len())
	assert.Equal(t, 0, result.MissingInSource.Len())
	assert.Equal(t, 0, result.AmountMismatches.Len())
	assert.Equal(t, 100.0, result.PoolMatchPct())
}

func TestExactReference_StandardizationBridgesPrecision(t *testing.T) {
	// 100.007 standardizes to 100.01 on the source side; the naive float
	// comparison would have flagged this as a mismatch.
	source := newDataset(ledgerCols(), []string{"REF001", "100.007"})
	target := newDataset(ledgerCols(), []string{"REF001", "100.01"})

	result := mustMatch(t, source, target, DefaultConfig())

	assert.Equal(t, 1, result.Matched.Len())
	assert.Equal(t, 0, result.AmountMismatches.Len())
}

func TestExactReference_AmountMismatch(t *testing.T) {
	source := newDataset(ledgerCols(), []string{"REF001", "100.00"})
	target := newDataset(ledgerCols(), []string{"REF001", "100.05"})

	result := mustMatch(t, source, target, DefaultConfig())

	assert.Equal(t, 0, result.Matched.Len())
	assert.Equal(t, 1, result.AmountMismatches.Len())
	assert.Equal(t, 1, result.TotalSource())
}

func TestExactReference_MissingSides(t *testing.T) {
	source := newDataset(ledgerCols(),
		[]string{"REF001", "100.00"},
		[]string{"REF002", "50.00"},
	)
	target := newDataset(ledgerCols(), []string{"REF001", "100.00"})

	result := mustMatch(t, source, target, DefaultConfig())

	assert.Equal(t, 1, result.Matched.Len())
	assert.Equal(t, 1, result.MissingInTarget.Len())
	assert.Equal(t, 0, result.MissingInSource.Len())
}

func TestExactReference_PoolMatchPct(t *testing.T) {
	source := newDataset(ledgerCols(),
		[]string{"REF001", "10.00"},
		[]string{"REF002", "20.00"},
		[]string{"REF003", "30.00"},
		[]string{"REF004", "40.00"},
	)
	target := newDataset(ledgerCols(),
		[]string{"REF001", "10.00"},
		[]string{"REF003", "30.00"},
	)

	result := mustMatch(t, source, target, DefaultConfig())

	assert.Equal(t, 2, result.Matched.Len())
	assert.Equal(t, 2, result.MissingInTarget.Len())
	assert.Equal(t, 4, result.TotalSource())
	assert.Equal(t, 50.0, result.PoolMatchPct())
}

func TestExactReference_PartitionExhaustiveness(t *testing.T) {
	source := newDataset(ledgerCols(),
		[]string{"REF001", "10.00"},
		[]string{"REF002", "20.00"},
		[]string{"REF003", "30.05"},
		[]string{"REF005", "1.00"},
	)
	target := newDataset(ledgerCols(),
		[]string{"REF001", "10.00"},
		[]string{"REF003", "30.00"},
		[]string{"REF004", "99.00"},
	)

	result := mustMatch(t, source, target, DefaultConfig())

	// Under unique keys every source row lands in exactly one source-side
	// partition and target orphans land in missing_in_source.
	assert.Equal(t, source.Len(),
		result.Matched.Len()+result.MissingInTarget.Len()+result.AmountMismatches.Len())
	assert.Equal(t, 1, result.MissingInSource.Len())
}

func TestExactReference_NormalizesEmbeddedReferences(t *testing.T) {
	source := newDataset(ledgerCols(), []string{"Payment: TRF|ABC|123 confirmed", "100.00"})
	target := newDataset(ledgerCols(), []string{"trf|abc|123", "100.00"})

	result := mustMatch(t, source, target, DefaultConfig())

	require.Equal(t, 1, result.Matched.Len())
	assert.Equal(t, "TRF|ABC|123", result.Matched.Get(0, NormRefColumn).Str)
}

func TestExactReference_RawKeysWhenNormalizationOff(t *testing.T) {
	source := newDataset(ledgerCols(), []string{"ref001", "100.00"})
	target := newDataset(ledgerCols(), []string{"REF001", "100.00"})

	cfg := DefaultConfig()
	cfg.NormalizeRefs = false
	result := mustMatch(t, source, target, cfg)

	// Raw keys differ by case, so neither side matches.
	assert.Equal(t, 0, result.Matched.Len())
	assert.Equal(t, 1, result.MissingInTarget.Len())
	assert.Equal(t, 1, result.MissingInSource.Len())
}

func TestExactReference_DuplicateKeysCrossJoin(t *testing.T) {
	source := newDataset(ledgerCols(),
		[]string{"REF001", "10.00"},
		[]string{"REF001", "10.00"},
	)
	target := newDataset(ledgerCols(),
		[]string{"REF001", "10.00"},
		[]string{"REF001", "10.00"},
	)

	result := mustMatch(t, source, target, DefaultConfig())

	// Every combination within the duplicated key group is emitted.
	assert.Equal(t, 4, result.Matched.Len())
	assert.Equal(t, 0, result.MissingInTarget.Len())
	assert.Equal(t, 0, result.MissingInSource.Len())
}

func TestExactReference_NullReferencesShareDegenerateKey(t *testing.T) {
	source := newDataset(ledgerCols(), []string{"", "10.00"})
	target := newDataset(ledgerCols(), []string{"", "10.00"})

	result := mustMatch(t, source, target, DefaultConfig())

	// Null references normalize to "" and still join.
	assert.Equal(t, 1, result.Matched.Len())
	assert.Equal(t, "", result.Matched.Get(0, NormRefColumn).Str)
}

func TestExactReference_NullAmountsCountAsZero(t *testing.T) {
	source := newDataset(ledgerCols(), []string{"REF001", ""})
	target := newDataset(ledgerCols(), []string{"REF001", "10.00"})

	result := mustMatch(t, source, target, DefaultConfig())

	// Null amount compares as 0, so the pair mismatches by 10.00.
	require.Equal(t, 1, result.AmountMismatches.Len())
	assert.Equal(t, "10.00", result.AmountMismatches.Get(0, AmtDiffColumn).Str)
	assert.True(t, result.AmountMismatches.Get(0, StdAmtSourceColumn).IsNull())
}

func TestExactReference_BothAmountsNullMatch(t *testing.T) {
	source := newDataset(ledgerCols(), []string{"REF001", ""})
	target := newDataset(ledgerCols(), []string{"REF001", ""})

	result := mustMatch(t, source, target, DefaultConfig())

	assert.Equal(t, 1, result.Matched.Len())
}

func TestExactReference_OverlappingColumnsSuffixed(t *testing.T) {
	source := newDataset([]string{"reference", "amount", "channel"},
		[]string{"REF001", "10.00", "mobile"})
	target := newDataset([]string{"reference", "amount", "bank"},
		[]string{"REF001", "10.00", "cba"})

	result := mustMatch(t, source, target, DefaultConfig())

	require.Equal(t, 1, result.Matched.Len())
	row := result.Matched.Row(0)
	assert.Equal(t, "REF001", row.Get("reference"+SourceSuffix).Str)
	assert.Equal(t, "REF001", row.Get("reference"+TargetSuffix).Str)
	assert.Equal(t, "mobile", row.Get("channel").Str)
	assert.Equal(t, "cba", row.Get("bank").Str)
	assert.Equal(t, "10.00", row.Get(StdAmtSourceColumn).Str)
	assert.Equal(t, "10.00", row.Get(StdAmtTargetColumn).Str)
}

func TestExactReference_MissingTargetSideIsNull(t *testing.T) {
	source := newDataset([]string{"reference", "amount"}, []string{"REF002", "50.00"})
	target := newDataset([]string{"reference", "amount"})

	result := mustMatch(t, source, target, DefaultConfig())

	require.Equal(t, 1, result.MissingInTarget.Len())
	row := result.MissingInTarget.Row(0)
	assert.Equal(t, "REF002", row.Get("reference"+SourceSuffix).Str)
	assert.True(t, row.Get("reference"+TargetSuffix).IsNull())
	assert.True(t, row.Get(StdAmtTargetColumn).IsNull())
}

func TestExactReference_ToleranceBoundaryInclusive(t *testing.T) {
	source := newDataset(ledgerCols(), []string{"REF001", "100.00"})
	target := newDataset(ledgerCols(), []string{"REF001", "100.01"})

	cfg := DefaultConfig()
	cfg.Tolerance = decimal.NewFromFloat(0.01)
	result := mustMatch(t, source, target, cfg)

	assert.Equal(t, 1, result.Matched.Len())
}

func TestExactReference_MissingRefColumn(t *testing.T) {
	source := newDataset([]string{"txn_ref", "amount"}, []string{"REF001", "1.00"})
	target := newDataset(ledgerCols(), []string{"REF001", "1.00"})

	_, err := NewExactReferenceStrategy().Match(source, target, DefaultConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference")
}

func TestExactReference_MissingAmountColumn(t *testing.T) {
	// A misconfigured amount column must fail loudly, not compare
	// null against null and report everything matched.
	source := newDataset(ledgerCols(), []string{"REF001", "100.00"})
	target := newDataset(ledgerCols(), []string{"REF001", "999.99"})

	cfg := DefaultConfig()
	cfg.SourceAmountColumn = "txn_amount"

	_, err := NewExactReferenceStrategy().Match(source, target, cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "txn_amount")
}

func TestExactReference_MissingTargetAmountColumn(t *testing.T) {
	source := newDataset(ledgerCols(), []string{"REF001", "100.00"})
	target := newDataset(ledgerCols(), []string{"REF001", "100.00"})

	cfg := DefaultConfig()
	cfg.TargetAmountColumn = "settlement_amount"

	_, err := NewExactReferenceStrategy().Match(source, target, cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settlement_amount")
}

func TestResult_PoolMatchPctEmpty(t *testing.T) {
	source := newDataset(ledgerCols())
	target := newDataset(ledgerCols())

	result := mustMatch(t, source, target, DefaultConfig())

	assert.Equal(t, 0, result.TotalSource())
	assert.Equal(t, 0.0, result.PoolMatchPct())
}
