package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/reconflow/reconflow/internal/domain/dataset"
	"github.com/reconflow/reconflow/internal/domain/normalize"
)

// ExactReferenceStrategy joins source to target on the canonical
// reference and splits matched pairs by standardized amount.
//
// The join is a full outer join built from a per-side multimap of
// canonical key to row indices. Within a duplicated key group every
// source/target combination is emitted, so duplicate references on
// either side produce a cross product for that key. Repeated references
// in production inputs inflate the output accordingly. Rows whose
// reference normalizes to the empty string all share the degenerate ""
// key and cross-join the same way.
type ExactReferenceStrategy struct{}

// NewExactReferenceStrategy creates the exact reference strategy.
func NewExactReferenceStrategy() *ExactReferenceStrategy {
	return &ExactReferenceStrategy{}
}

// Name implements Strategy.
func (s *ExactReferenceStrategy) Name() string {
	return "exact_reference"
}

// Match implements Strategy.
func (s *ExactReferenceStrategy) Match(source, target *dataset.Dataset, cfg Config) (*Result, error) {
	if !source.HasColumn(cfg.SourceRefColumn) {
		return nil, fmt.Errorf("source dataset has no column %q", cfg.SourceRefColumn)
	}
	if !target.HasColumn(cfg.TargetRefColumn) {
		return nil, fmt.Errorf("target dataset has no column %q", cfg.TargetRefColumn)
	}
	if !source.HasColumn(cfg.SourceAmountColumn) {
		return nil, fmt.Errorf("source dataset has no column %q", cfg.SourceAmountColumn)
	}
	if !target.HasColumn(cfg.TargetAmountColumn) {
		return nil, fmt.Errorf("target dataset has no column %q", cfg.TargetAmountColumn)
	}

	srcKeys := canonicalKeys(source, cfg.SourceRefColumn, cfg.NormalizeRefs)
	tgtKeys := canonicalKeys(target, cfg.TargetRefColumn, cfg.NormalizeRefs)
	srcAmts := canonicalAmounts(source, cfg.SourceAmountColumn, cfg.Precision)
	tgtAmts := canonicalAmounts(target, cfg.TargetAmountColumn, cfg.Precision)

	// Target-side multimap for the outer join.
	tgtIndex := make(map[string][]int, target.Len())
	for j, key := range tgtKeys {
		tgtIndex[key] = append(tgtIndex[key], j)
	}
	srcKeySet := make(map[string]bool, source.Len())
	for _, key := range srcKeys {
		srcKeySet[key] = true
	}

	out := newJoinBuilder(source, target, cfg)
	result := &Result{
		Matched:          out.newPartition(),
		MissingInTarget:  out.newPartition(),
		MissingInSource:  out.newPartition(),
		AmountMismatches: out.newPartition(),
	}

	// Source rows in order: paired with every target row sharing the key,
	// or alone when the key has no target counterpart.
	for i := 0; i < source.Len(); i++ {
		key := srcKeys[i]
		targets := tgtIndex[key]

		if len(targets) == 0 {
			row, _ := out.joinRow(source.Row(i), nil, key, srcAmts[i], nil)
			result.MissingInTarget.Append(row)
			continue
		}

		for _, j := range targets {
			row, diff := out.joinRow(source.Row(i), target.Row(j), key, srcAmts[i], tgtAmts[j])
			if diff.Cmp(cfg.Tolerance) <= 0 {
				result.Matched.Append(row)
			} else {
				result.AmountMismatches.Append(row)
			}
		}
	}

	// Target rows whose key never appears in source.
	for j := 0; j < target.Len(); j++ {
		if srcKeySet[tgtKeys[j]] {
			continue
		}
		row, _ := out.joinRow(nil, target.Row(j), tgtKeys[j], nil, tgtAmts[j])
		result.MissingInSource.Append(row)
	}

	return result, nil
}

// canonicalKeys derives the join key per row: the normalized reference,
// or the raw column text when normalization is off. Null cells key as "".
func canonicalKeys(ds *dataset.Dataset, refCol string, normalizeRefs bool) []string {
	keys := make([]string, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		v := ds.Get(i, refCol)
		if v.IsNull() {
			keys[i] = ""
			continue
		}
		if normalizeRefs {
			keys[i] = normalize.Reference(v.Str, true)
		} else {
			keys[i] = v.Str
		}
	}
	return keys
}

// canonicalAmounts standardizes the amount column per row; unparseable or
// null cells yield nil.
func canonicalAmounts(ds *dataset.Dataset, amtCol string, precision int32) []*decimal.Decimal {
	amts := make([]*decimal.Decimal, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		v := ds.Get(i, amtCol)
		if v.IsNull() {
			continue
		}
		amts[i] = normalize.StandardizeString(v.Str, precision)
	}
	return amts
}

// joinBuilder assembles joined rows over the merged column schema:
// all source columns, then all target columns, with a side suffix on
// names both schemas define, then the derived canonical columns.
type joinBuilder struct {
	columns   []string
	srcMap    map[string]string
	tgtMap    map[string]string
	precision int32
}

func newJoinBuilder(source, target *dataset.Dataset, cfg Config) *joinBuilder {
	b := &joinBuilder{
		srcMap:    make(map[string]string),
		tgtMap:    make(map[string]string),
		precision: cfg.Precision,
	}

	overlap := make(map[string]bool)
	for _, col := range source.Columns() {
		if target.HasColumn(col) {
			overlap[col] = true
		}
	}

	for _, col := range source.Columns() {
		name := col
		if overlap[col] {
			name = col + SourceSuffix
		}
		b.srcMap[col] = name
		b.columns = append(b.columns, name)
	}
	for _, col := range target.Columns() {
		name := col
		if overlap[col] {
			name = col + TargetSuffix
		}
		b.tgtMap[col] = name
		b.columns = append(b.columns, name)
	}

	b.columns = append(b.columns, NormRefColumn, StdAmtSourceColumn, StdAmtTargetColumn, AmtDiffColumn)
	return b
}

func (b *joinBuilder) newPartition() *dataset.Dataset {
	return dataset.New(b.columns...)
}

// joinRow builds a merged record from an optional source and target row
// and returns it with the absolute standardized-amount difference.
// Absent sides leave their columns null; nil amounts count as zero in
// the difference.
func (b *joinBuilder) joinRow(src, tgt dataset.Record, key string, srcAmt, tgtAmt *decimal.Decimal) (dataset.Record, decimal.Decimal) {
	row := make(dataset.Record, len(b.columns))
	for _, name := range b.columns {
		row[name] = dataset.Null()
	}

	if src != nil {
		for col, name := range b.srcMap {
			row[name] = src.Get(col)
		}
	}
	if tgt != nil {
		for col, name := range b.tgtMap {
			row[name] = tgt.Get(col)
		}
	}

	sa, ta := decimal.Zero, decimal.Zero
	if srcAmt != nil {
		sa = *srcAmt
		row[StdAmtSourceColumn] = dataset.String(srcAmt.StringFixed(b.precision))
	}
	if tgtAmt != nil {
		ta = *tgtAmt
		row[StdAmtTargetColumn] = dataset.String(tgtAmt.StringFixed(b.precision))
	}
	diff := sa.Sub(ta).Abs()

	row[NormRefColumn] = dataset.String(key)
	row[AmtDiffColumn] = dataset.String(diff.StringFixed(b.precision))

	return row, diff
}
