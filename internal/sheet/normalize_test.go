package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mario Rossi", "mario rossi"},
		{"  mario   rossi ", "mario rossi"},
		{"MARIO\tROSSI", "mario rossi"},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeKey(tt.in), "input %q", tt.in)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"8", 8},
		{"8.5", 8.5},
		{"8,5", 8.5},
		{"1.234,56", 1234.56},
		{"€ 12,00", 12},
		{"", 0},
		{"n/d", 0},
		{"abc", 0},
		{"-3", -3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseNumber(tt.in), "input %q", tt.in)
	}
}

func testMapping(source string, fields map[string]int) Mapping {
	m := NewMapping(source)
	for f, c := range fields {
		m.Set(f, c)
	}
	return m
}

func TestNormalize_DuplicateKeysSum(t *testing.T) {
	raw := RawTable{
		Source:  "presenze",
		Headers: []string{"Tecnico", "Totale"},
		Rows: [][]string{
			{"Mario Rossi", "5"},
			{"  mario   rossi ", "3"},
		},
	}
	m := testMapping("presenze", map[string]int{"tecnico": 0, "ore_totali": 1})

	out := Normalize(raw, m, "tecnico", []string{"ore_totali"})
	require.Len(t, out.Rows, 1)
	assert.Equal(t, 8.0, out.Value("mario rossi", "ore_totali"))
}

func TestNormalize_BlankKeyRowsDropped(t *testing.T) {
	raw := RawTable{
		Source:  "presenze",
		Headers: []string{"Tecnico", "Totale"},
		Rows: [][]string{
			{"", "5"},
			{"   ", "3"},
			{"luca bianchi", "4"},
		},
	}
	m := testMapping("presenze", map[string]int{"tecnico": 0, "ore_totali": 1})

	out := Normalize(raw, m, "tecnico", []string{"ore_totali"})
	require.Len(t, out.Rows, 1)
	assert.Equal(t, 4.0, out.Value("luca bianchi", "ore_totali"))
}

func TestNormalize_UnparsableCellsCoerceToZero(t *testing.T) {
	raw := RawTable{
		Source:  "presenze",
		Headers: []string{"Tecnico", "Totale"},
		Rows: [][]string{
			{"mario rossi", "ferie"},
			{"mario rossi", "6"},
		},
	}
	m := testMapping("presenze", map[string]int{"tecnico": 0, "ore_totali": 1})

	out := Normalize(raw, m, "tecnico", []string{"ore_totali"})
	assert.Equal(t, 6.0, out.Value("mario rossi", "ore_totali"))
}

func TestNormalize_UnmappedMeasureDefaultsToZero(t *testing.T) {
	raw := RawTable{
		Source:  "delivery",
		Headers: []string{"Tecnico"},
		Rows:    [][]string{{"mario rossi"}},
	}
	m := testMapping("delivery", map[string]int{"tecnico": 0})

	out := Normalize(raw, m, "tecnico", []string{"del_tim_ftth", "del_tim_non_ftth"})
	row, ok := out.Rows["mario rossi"]
	require.True(t, ok)
	assert.Equal(t, 0.0, row.Values["del_tim_ftth"])
	assert.Equal(t, 0.0, row.Values["del_tim_non_ftth"])
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := RawTable{
		Source:  "presenze",
		Headers: []string{"Tecnico", "Totale"},
		Rows: [][]string{
			{"Mario Rossi", "5"},
			{"Luca Bianchi", "7"},
			{"mario rossi", "2"},
		},
	}
	m := testMapping("presenze", map[string]int{"tecnico": 0, "ore_totali": 1})

	first := Normalize(raw, m, "tecnico", []string{"ore_totali"})
	second := Normalize(raw, m, "tecnico", []string{"ore_totali"})
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"luca bianchi", "mario rossi"}, first.Keys())
}
