// Package dataset provides the tabular data model used throughout the
// reconciliation pipeline.
//
// Every cell is text-or-null: CSV ingestion never coerces values, so
// leading zeros and exact formatting survive until a column is explicitly
// coerced. Column order is part of the dataset schema and is preserved in
// written outputs; row order is preserved but carries no matching
// semantics.
package dataset

// Value is a single nullable cell.
type Value struct {
	Str  string
	Null bool
}

// String returns a non-null text value.
func String(s string) Value {
	return Value{Str: s}
}

// Null returns the null cell value.
func Null() Value {
	return Value{Null: true}
}

// IsNull reports whether the cell is null.
func (v Value) IsNull() bool {
	return v.Null
}

// Record maps column names to cell values. Column ordering lives on the
// owning Dataset, not on the record.
type Record map[string]Value

// Get returns the cell for a column, null if the record has no such column.
func (r Record) Get(col string) Value {
	v, ok := r[col]
	if !ok {
		return Null()
	}
	return v
}

// Clone returns a copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is an ordered sequence of records sharing a column schema.
type Dataset struct {
	columns []string
	rows    []Record
}

// New creates an empty dataset with the given column schema.
func New(columns ...string) *Dataset {
	return &Dataset{columns: append([]string(nil), columns...)}
}

// Columns returns the column schema in order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// HasColumn reports whether the schema contains the column.
func (d *Dataset) HasColumn(col string) bool {
	for _, c := range d.columns {
		if c == col {
			return true
		}
	}
	return false
}

// AddColumn appends a column to the schema if not already present.
func (d *Dataset) AddColumn(col string) {
	if !d.HasColumn(col) {
		d.columns = append(d.columns, col)
	}
}

// Append adds a record. Columns missing from the record read as null.
func (d *Dataset) Append(r Record) {
	d.rows = append(d.rows, r)
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Row returns the record at index i.
func (d *Dataset) Row(i int) Record {
	return d.rows[i]
}

// Get returns the cell at row i, column col.
func (d *Dataset) Get(i int, col string) Value {
	return d.rows[i].Get(col)
}

// Set writes the cell at row i, column col, extending the schema if needed.
func (d *Dataset) Set(i int, col string, v Value) {
	d.AddColumn(col)
	d.rows[i][col] = v
}

// Copy returns a deep copy of the dataset.
func (d *Dataset) Copy() *Dataset {
	out := New(d.columns...)
	for _, r := range d.rows {
		out.Append(r.Clone())
	}
	return out
}
