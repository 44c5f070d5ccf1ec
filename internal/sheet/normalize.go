package sheet

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeKey folds a technician name into the join key: trimmed, lower
// case, internal whitespace runs collapsed to single spaces.
func NormalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ParseNumber coerces a cell to a number. Spreadsheets routinely carry
// blanks, text, currency symbols, and Italian decimal commas in numeric
// columns; anything unparsable coerces to zero, never to an error or a
// non-finite value.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		// "1.234,56" → "1234.56"; "1,5" → "1.5"
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Normalize produces a CanonicalTable from a raw table and its resolved
// mapping. Rows with a blank technician key are dropped; duplicate keys are
// summed measure by measure; measures absent from the mapping default to
// zero for every row.
func Normalize(t RawTable, m Mapping, keyField string, measures []string) CanonicalTable {
	out := CanonicalTable{
		Source:   t.Source,
		Measures: measures,
		Rows:     make(map[string]CanonicalRow),
	}

	keyCol, ok := m.Col(keyField)
	if !ok {
		return out
	}

	for i := range t.Rows {
		key := NormalizeKey(t.Cell(i, keyCol))
		if key == "" {
			continue
		}

		row, exists := out.Rows[key]
		if !exists {
			row = CanonicalRow{Key: key, Values: make(map[string]float64)}
			for _, meas := range measures {
				row.Values[meas] = 0
			}
		}
		for _, meas := range measures {
			if col, ok := m.Col(meas); ok {
				row.Values[meas] += ParseNumber(t.Cell(i, col))
			}
		}
		out.Rows[key] = row
	}

	return out
}
