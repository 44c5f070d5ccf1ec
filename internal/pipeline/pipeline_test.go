package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/euroirte/avanzamento/internal/config"
	"github.com/euroirte/avanzamento/internal/sheet"
)

func writeWorkbook(t *testing.T, dir, name string, rows [][]string) {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Foglio1")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		Source: config.SourceConfig{
			BaseURL:      dir,
			TimeoutSecs:  5,
			CacheTTLSecs: 60,
			Presenze:     "Presenze.xlsx",
			DeliveryTIM:  "Delivery TIM.xlsx",
			AssuranceTIM: "Assurance TIM.xlsx",
			DeliveryOF:   "Delivery OF.xlsx",
		},
		Rates: config.RatesConfig{
			DeliveryTIMFTTH:    100,
			DeliveryTIMNonFTTH: 40,
			AssuranceTIM:       20,
			DeliveryOF:         100,
		},
	}
}

func writeAllWorkbooks(t *testing.T, dir string) {
	t.Helper()
	writeWorkbook(t, dir, "Presenze.xlsx", [][]string{
		{"Data", "Tecnico", "Totale"},
		{"10/07/2025", "Mario Rossi", "20"},
		{"20/07/2025", "Mario Rossi", "20"},
		{"15/07/2025", "Luca Bianchi", "8"},
		{"15/06/2025", "Mario Rossi", "100"}, // older month, filtered out
	})
	writeWorkbook(t, dir, "Delivery TIM.xlsx", [][]string{
		{"Tecnico", "Impianti espletati FTTH", "Impianti espletati ≠ FTTH"},
		{"Mario Rossi", "10", "4"},
	})
	writeWorkbook(t, dir, "Assurance TIM.xlsx", [][]string{
		{"Referente", "ProduttiviCount"},
		{"Mario Rossi", "6"},
		{"Anna Verdi", "9"}, // not in Presenze: excluded
	})
	writeWorkbook(t, dir, "Delivery OF.xlsx", [][]string{
		{"Tecnico", "Impianti espletati"},
		{"Luca Bianchi", "2"},
	})
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeAllWorkbooks(t, dir)

	p := New(testConfig(dir))
	res, err := p.Run(context.Background(), Options{Month: "2025-07"})
	require.NoError(t, err)

	assert.Equal(t, sheet.Month("2025-07"), res.Month)
	assert.Equal(t, []sheet.Month{"2025-06", "2025-07"}, res.Months)
	require.Len(t, res.Records, 2)

	luca := res.Records[0]
	assert.Equal(t, "luca bianchi", luca.Tecnico)
	assert.Equal(t, 8.0, luca.OreTotali)
	assert.Equal(t, 25.0, luca.ResaDeliveryOF) // 2 × 100 / 8

	mario := res.Records[1]
	assert.Equal(t, "mario rossi", mario.Tecnico)
	assert.Equal(t, 40.0, mario.OreTotali) // June row filtered out
	assert.Equal(t, 25.0, mario.ResaDeliveryTIMFTTH)    // 10 × 100 / 40
	assert.Equal(t, 4.0, mario.ResaDeliveryTIMNonFTTH)  // 4 × 40 / 40
	assert.Equal(t, 3.0, mario.ResaAssuranceTIM)        // 6 × 20 / 40
	assert.Equal(t, 0.0, mario.ResaDeliveryOF)
}

func TestRun_DefaultsToMostRecentMonth(t *testing.T) {
	dir := t.TempDir()
	writeAllWorkbooks(t, dir)

	p := New(testConfig(dir))
	res, err := p.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, sheet.Month("2025-07"), res.Month)
}

func TestRun_AllMonthsUnfiltered(t *testing.T) {
	dir := t.TempDir()
	writeAllWorkbooks(t, dir)

	p := New(testConfig(dir))
	res, err := p.Run(context.Background(), Options{AllMonths: true})
	require.NoError(t, err)

	assert.Equal(t, sheet.Month(""), res.Month)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 140.0, res.Records[1].OreTotali, "June and July hours both counted")
}

func TestRun_MissingWorkbookNamesSource(t *testing.T) {
	dir := t.TempDir()
	writeAllWorkbooks(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, "Assurance TIM.xlsx")))

	p := New(testConfig(dir))
	_, err := p.Run(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Assurance TIM.xlsx")
}

func TestRun_SchemaMismatchNamesSourceAndField(t *testing.T) {
	dir := t.TempDir()
	writeAllWorkbooks(t, dir)
	writeWorkbook(t, dir, "Presenze.xlsx", [][]string{
		{"Data", "Squadra", "Totale"},
		{"10/07/2025", "Nord", "20"},
	})

	p := New(testConfig(dir))
	_, err := p.Run(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Presenze.xlsx")
	assert.Contains(t, err.Error(), "tecnico")
}

func TestAvailableMonths(t *testing.T) {
	dir := t.TempDir()
	writeAllWorkbooks(t, dir)

	p := New(testConfig(dir))
	months, err := p.AvailableMonths(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []sheet.Month{"2025-06", "2025-07"}, months)
}

func TestSourceURL(t *testing.T) {
	assert.Equal(t,
		"https://raw.githubusercontent.com/euroirte/avanzamento-dati/main/Delivery%20TIM.xlsx",
		SourceURL("https://raw.githubusercontent.com/euroirte/avanzamento-dati/main", "Delivery TIM.xlsx"),
	)
	assert.Equal(t, "/data/Presenze.xlsx", SourceURL("/data", "Presenze.xlsx"))
	assert.Equal(t, "/data/Presenze.xlsx", SourceURL("/data/", "Presenze.xlsx"))
	assert.Equal(t, "Presenze.xlsx", SourceURL("", "Presenze.xlsx"))
}
