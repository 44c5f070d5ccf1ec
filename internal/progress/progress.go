// Package progress parses the Avanzamento workbook — the per-technician
// monthly progress report carrying the €/h figure, worked hours, and mail
// address used for notifications.
package progress

import (
	"sort"
	"time"

	"github.com/euroirte/avanzamento/internal/mailer"
	"github.com/euroirte/avanzamento/internal/sheet"
)

// Canonical fields of the progress workbook.
const (
	fieldData    = "data_aggiornamento"
	fieldTecnico = "tecnico"
	fieldOre     = "ore_lavorate"
	fieldResa    = "avanzamento_eur_h"
	fieldMail    = "mail"
)

// Every column is optional: the workbook is filled by hand and partial rows
// are expected. Rows degrade (empty mail → invalid_address outcome) instead
// of failing the parse.
var specs = []sheet.FieldSpec{
	{Field: fieldData, Variants: []string{"Data aggiornamento", "Data"}},
	{Field: fieldTecnico, Variants: []string{"Tecnico"}},
	{Field: fieldOre, Variants: []string{"Ore lavorate"}},
	{Field: fieldResa, Variants: []string{"Avanzamento €/h", "Avanzamento"}},
	{Field: fieldMail, Variants: []string{"Mail", "Email", "E-mail"}},
}

// Entry is one technician's progress row.
type Entry struct {
	Tecnico   string
	Email     string
	UpdatedAt time.Time
	HasDate   bool
	Rate      float64
	Hours     float64
}

// Parse extracts progress entries from the raw workbook table. Rows with a
// blank technician are skipped; numeric cells coerce tolerantly; a row whose
// date fails to parse keeps HasDate=false and survives unfiltered views.
func Parse(raw sheet.RawTable) ([]Entry, error) {
	m, err := sheet.Resolve(raw, specs)
	if err != nil {
		return nil, err
	}

	cell := func(row int, field string) string {
		col, ok := m.Col(field)
		if !ok {
			return ""
		}
		return raw.Cell(row, col)
	}

	var entries []Entry
	for i := range raw.Rows {
		e := Entry{
			Tecnico: cell(i, fieldTecnico),
			Email:   cell(i, fieldMail),
			Rate:    sheet.ParseNumber(cell(i, fieldResa)),
			Hours:   sheet.ParseNumber(cell(i, fieldOre)),
		}
		if sheet.NormalizeKey(e.Tecnico) == "" {
			continue
		}
		if d, ok := sheet.ParseDate(cell(i, fieldData)); ok {
			e.UpdatedAt = d
			e.HasDate = true
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Months returns the distinct year-months present, sorted ascending.
func Months(entries []Entry) []sheet.Month {
	seen := make(map[sheet.Month]struct{})
	for _, e := range entries {
		if e.HasDate {
			seen[sheet.MonthOf(e.UpdatedAt)] = struct{}{}
		}
	}
	months := make([]sheet.Month, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	return months
}

// FilterMonth keeps the entries dated inside the month. Entries without a
// parsable date are dropped, matching the period-filter contract.
func FilterMonth(entries []Entry, m sheet.Month) []Entry {
	if m == "" {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if e.HasDate && m.Contains(e.UpdatedAt) {
			out = append(out, e)
		}
	}
	return out
}

// FilterTecnico keeps entries for one technician, matched on the normalized
// key. An empty filter keeps everything.
func FilterTecnico(entries []Entry, tecnico string) []Entry {
	if tecnico == "" {
		return entries
	}
	want := sheet.NormalizeKey(tecnico)
	var out []Entry
	for _, e := range entries {
		if sheet.NormalizeKey(e.Tecnico) == want {
			out = append(out, e)
		}
	}
	return out
}

// Notifications converts entries into dispatcher payloads.
func Notifications(entries []Entry) []mailer.Notification {
	out := make([]mailer.Notification, 0, len(entries))
	for _, e := range entries {
		out = append(out, mailer.Notification{
			Tecnico:   e.Tecnico,
			Email:     e.Email,
			UpdatedAt: e.UpdatedAt,
			Rate:      e.Rate,
			Hours:     e.Hours,
		})
	}
	return out
}
