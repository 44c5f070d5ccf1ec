package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/euroirte/avanzamento/internal/sheet"
)

func testTable() sheet.RawTable {
	return sheet.RawTable{
		Source:  "Avanzamento.xlsx",
		Headers: []string{"Data aggiornamento", "Tecnico", "Ore lavorate", "Avanzamento €/h", "Mail"},
		Rows: [][]string{
			{"31/07/2025", "Mario Rossi", "160", "25,5", "mario@example.com"},
			{"30/06/2025", "Luca Bianchi", "120", "18", "luca@example.com"},
			{"", "Anna Verdi", "80", "12", ""},
			{"15/07/2025", "", "0", "0", "ghost@example.com"},
		},
	}
}

func TestParse(t *testing.T) {
	entries, err := Parse(testTable())
	require.NoError(t, err)
	require.Len(t, entries, 3, "blank-technician rows are skipped")

	first := entries[0]
	assert.Equal(t, "Mario Rossi", first.Tecnico)
	assert.Equal(t, "mario@example.com", first.Email)
	assert.Equal(t, 25.5, first.Rate)
	assert.Equal(t, 160.0, first.Hours)
	assert.True(t, first.HasDate)
	assert.Equal(t, "2025-07-31", first.UpdatedAt.Format("2006-01-02"))

	assert.False(t, entries[2].HasDate, "undated rows survive the parse")
}

func TestParse_MissingColumnsAreTolerated(t *testing.T) {
	raw := sheet.RawTable{
		Source:  "Avanzamento.xlsx",
		Headers: []string{"Tecnico"},
		Rows:    [][]string{{"Mario Rossi"}},
	}

	entries, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Email)
	assert.Zero(t, entries[0].Rate)
	assert.False(t, entries[0].HasDate)
}

func TestMonths(t *testing.T) {
	entries, err := Parse(testTable())
	require.NoError(t, err)
	assert.Equal(t, []sheet.Month{"2025-06", "2025-07"}, Months(entries))
}

func TestFilterMonth(t *testing.T) {
	entries, err := Parse(testTable())
	require.NoError(t, err)

	july := FilterMonth(entries, "2025-07")
	require.Len(t, july, 1)
	assert.Equal(t, "Mario Rossi", july[0].Tecnico)

	assert.Len(t, FilterMonth(entries, ""), 3, "empty month keeps everything")
}

func TestFilterTecnico(t *testing.T) {
	entries, err := Parse(testTable())
	require.NoError(t, err)

	one := FilterTecnico(entries, "  MARIO   rossi ")
	require.Len(t, one, 1)
	assert.Equal(t, "Mario Rossi", one[0].Tecnico)

	assert.Len(t, FilterTecnico(entries, ""), 3)
}

func TestNotifications(t *testing.T) {
	entries, err := Parse(testTable())
	require.NoError(t, err)

	notifs := Notifications(entries)
	require.Len(t, notifs, 3)
	assert.Equal(t, "Mario Rossi", notifs[0].Tecnico)
	assert.Equal(t, 25.5, notifs[0].Rate)
	assert.Equal(t, 160.0, notifs[0].Hours)
}
