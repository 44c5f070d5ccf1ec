// Package sheet turns loosely structured spreadsheet rows into canonical
// per-technician tables: header resolution, key normalization, numeric
// coercion, duplicate aggregation, and calendar-month filtering.
package sheet

import "sort"

// RawTable is one source table as read from a workbook: literal header
// strings plus string cells. It exists only during ingestion.
type RawTable struct {
	Source  string
	Headers []string
	Rows    [][]string
}

// NewRawTable builds a RawTable from parsed workbook rows. The first row is
// the header; short data rows are padded so every row has a cell per header.
func NewRawTable(source string, rows [][]string) RawTable {
	t := RawTable{Source: source}
	if len(rows) == 0 {
		return t
	}
	t.Headers = rows[0]
	t.Rows = make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < len(t.Headers) {
			padded := make([]string, len(t.Headers))
			copy(padded, row)
			row = padded
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Cell returns the cell at (row, col), or "" when out of range.
func (t RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// CanonicalRow is one technician's aggregated contribution from one source.
type CanonicalRow struct {
	Key    string
	Values map[string]float64
}

// CanonicalTable holds one row per normalized technician key. Every declared
// measure is present in every row, defaulted to zero.
type CanonicalTable struct {
	Source   string
	Measures []string
	Rows     map[string]CanonicalRow
}

// Value returns the measure for the given key, zero when the key or measure
// is absent.
func (t CanonicalTable) Value(key, measure string) float64 {
	row, ok := t.Rows[key]
	if !ok {
		return 0
	}
	return row.Values[measure]
}

// Keys returns the technician keys in ascending lexical order.
func (t CanonicalTable) Keys() []string {
	keys := make([]string, 0, len(t.Rows))
	for k := range t.Rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
