// Package storage handles the filesystem side of a reconciliation run:
// CSV ingestion, amount coercion, and per-run artifact persistence.
//
// All CSV cells are read as text so references keep their exact
// formatting (leading zeros included). Empty cells read as null.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reconflow/reconflow/internal/domain/dataset"
	"github.com/reconflow/reconflow/internal/domain/normalize"
)

// ReadCSV loads a CSV file into a dataset. The first row is the column
// schema; every cell is kept as text, empty cells become null.
func ReadCSV(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if len(rows) == 0 {
		return dataset.New(), nil
	}

	ds := dataset.New(rows[0]...)
	columns := rows[0]

	for _, row := range rows[1:] {
		record := make(dataset.Record, len(columns))
		for i, col := range columns {
			if i >= len(row) || row[i] == "" {
				record[col] = dataset.Null()
			} else {
				record[col] = dataset.String(row[i])
			}
		}
		ds.Append(record)
	}

	return ds, nil
}

// WriteCSV writes a dataset to a CSV file, creating parent directories.
// Null cells are written as empty strings.
func WriteCSV(ds *dataset.Dataset, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	columns := ds.Columns()

	if err := w.Write(columns); err != nil {
		return fmt.Errorf("writing header to %s: %w", path, err)
	}

	row := make([]string, len(columns))
	for i := 0; i < ds.Len(); i++ {
		for c, col := range columns {
			v := ds.Get(i, col)
			if v.IsNull() {
				row[c] = ""
			} else {
				row[c] = v.Str
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row to %s: %w", path, err)
		}
	}

	w.Flush()
	return w.Error()
}

// CoerceAmounts rewrites a column in place so every cell is either
// numeric text or null. Unparseable values become null rather than
// erroring; reconciliation is expected to proceed over imperfect data.
func CoerceAmounts(ds *dataset.Dataset, col string) {
	for i := 0; i < ds.Len(); i++ {
		v := ds.Get(i, col)
		if v.IsNull() {
			continue
		}
		if _, ok := normalize.ParseAmount(v.Str); !ok {
			ds.Set(i, col, dataset.Null())
		}
	}
}
