package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconflow/reconflow/internal/domain/dataset"
)

func ledger(refs ...string) *dataset.Dataset {
	ds := dataset.New("date", "reference", "amount")
	for _, ref := range refs {
		ds.Append(dataset.Record{
			"date":      dataset.String("2026-08-30"),
			"reference": dataset.String(ref),
			"amount":    dataset.String("10.00"),
		})
	}
	return ds
}

func strictConfig() QualityConfig {
	return QualityConfig{
		MinRecordCount:  1,
		MaxDuplicatePct: 0.01,
		RequiredFields:  []string{"date", "reference", "amount"},
		NormalizeRefs:   true,
	}
}

func TestValidateDataset_Clean(t *testing.T) {
	result := ValidateDataset(ledger("REF001", "REF002"), "reference", strictConfig())

	assert.True(t, result.Valid)
	assert.Empty(t, result.Issues)
	assert.Equal(t, 2, result.RecordCount)
}

func TestValidateDataset_BelowMinimumCount(t *testing.T) {
	cfg := strictConfig()
	cfg.MinRecordCount = 5

	result := ValidateDataset(ledger("REF001"), "reference", cfg)

	require.False(t, result.Valid)
	assert.Contains(t, result.Issues[0], "below minimum")
}

func TestValidateDataset_MissingRequiredField(t *testing.T) {
	ds := dataset.New("reference", "amount")
	ds.Append(dataset.Record{
		"reference": dataset.String("REF001"),
		"amount":    dataset.String("1.00"),
	})

	result := ValidateDataset(ds, "reference", strictConfig())

	require.False(t, result.Valid)
	assert.Contains(t, result.Issues[0], `"date"`)
}

func TestValidateDataset_DuplicateReferences(t *testing.T) {
	result := ValidateDataset(
		ledger("REF001", "REF001", "REF002", "REF003"), "reference", strictConfig())

	require.False(t, result.Valid)
	assert.InDelta(t, 0.25, result.DuplicatePct, 1e-9)
}

func TestValidateDataset_DuplicatesDetectedAfterNormalization(t *testing.T) {
	// "trf|abc" and "TRF|ABC" are the same reference once normalized.
	result := ValidateDataset(ledger("trf|abc|1", "TRF|ABC|1"), "reference", strictConfig())

	assert.False(t, result.Valid)
}

func TestValidateDataset_RawKeysWhenNormalizationOff(t *testing.T) {
	// With normalization disabled the join keys on raw references, so
	// "trf|abc|1" and "TRF|ABC|1" are distinct and not duplicates.
	cfg := strictConfig()
	cfg.NormalizeRefs = false

	result := ValidateDataset(ledger("trf|abc|1", "TRF|ABC|1"), "reference", cfg)

	assert.True(t, result.Valid)
	assert.Equal(t, 0.0, result.DuplicatePct)
}

func TestValidateDataset_DuplicatesWithinThreshold(t *testing.T) {
	cfg := strictConfig()
	cfg.MaxDuplicatePct = 0.5

	result := ValidateDataset(ledger("REF001", "REF001", "REF002", "REF003"), "reference", cfg)

	assert.True(t, result.Valid)
}

func TestValidateDataset_EmptyReferencesNotCountedAsDuplicates(t *testing.T) {
	result := ValidateDataset(ledger("", "", "REF001"), "reference", strictConfig())

	assert.True(t, result.Valid)
}
