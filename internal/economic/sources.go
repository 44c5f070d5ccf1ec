// Package economic joins the normalized source tables on the technician key
// and derives the per-activity €/h metrics.
package economic

import (
	"go.uber.org/zap"

	"github.com/euroirte/avanzamento/internal/sheet"
)

// Canonical field names shared across the four sources.
const (
	FieldTecnico       = "tecnico"
	FieldOreTotali     = "ore_totali"
	FieldDelTIMFTTH    = "del_tim_ftth"
	FieldDelTIMNonFTTH = "del_tim_non_ftth"
	FieldAssTIM        = "ass_tim"
	FieldDelOF         = "del_of"
)

// Per-source recognition tables. New header variants are additions here, not
// code changes.
var (
	presenzeSpecs = []sheet.FieldSpec{
		{Field: FieldTecnico, Required: true, Variants: []string{"Tecnico"}},
		{Field: FieldOreTotali, Required: true, Variants: []string{"Totale", "Ore totali"}},
	}

	deliveryTIMSpecs = []sheet.FieldSpec{
		{Field: FieldTecnico, Required: true, Variants: []string{"Tecnico"}},
	}

	assuranceTIMSpecs = []sheet.FieldSpec{
		{Field: FieldTecnico, Required: true, Variants: []string{"Referente", "Tecnico"}},
		{Field: FieldAssTIM, Required: true, Variants: []string{"ProduttiviCount"}},
	}

	deliveryOFSpecs = []sheet.FieldSpec{
		{Field: FieldTecnico, Required: true, Variants: []string{"Tecnico"}},
		{Field: FieldDelOF, Required: true, Variants: []string{"Impianti espletati"}},
	}
)

// NormalizePresenze canonicalizes the attendance table (hours per technician).
func NormalizePresenze(raw sheet.RawTable) (sheet.CanonicalTable, error) {
	m, err := sheet.Resolve(raw, presenzeSpecs)
	if err != nil {
		return sheet.CanonicalTable{}, err
	}
	return sheet.Normalize(raw, m, FieldTecnico, []string{FieldOreTotali}), nil
}

// NormalizeDeliveryTIM canonicalizes the TIM delivery table. The FTTH and
// non-FTTH count columns are located heuristically (see sheet.FindFTTHColumn)
// and are optional: a missing one is logged and defaults to zero so the run
// can proceed.
func NormalizeDeliveryTIM(raw sheet.RawTable) (sheet.CanonicalTable, error) {
	m, err := sheet.Resolve(raw, deliveryTIMSpecs)
	if err != nil {
		return sheet.CanonicalTable{}, err
	}

	if col := sheet.FindFTTHColumn(raw.Headers); col >= 0 {
		m.Set(FieldDelTIMFTTH, col)
	} else {
		zap.L().Warn("delivery tim: FTTH column not found, defaulting to 0",
			zap.String("source", raw.Source))
	}
	if col := sheet.FindNonFTTHColumn(raw.Headers); col >= 0 {
		m.Set(FieldDelTIMNonFTTH, col)
	} else {
		zap.L().Warn("delivery tim: non-FTTH column not found, defaulting to 0",
			zap.String("source", raw.Source))
	}

	return sheet.Normalize(raw, m, FieldTecnico, []string{FieldDelTIMFTTH, FieldDelTIMNonFTTH}), nil
}

// NormalizeAssuranceTIM canonicalizes the TIM assurance table.
func NormalizeAssuranceTIM(raw sheet.RawTable) (sheet.CanonicalTable, error) {
	m, err := sheet.Resolve(raw, assuranceTIMSpecs)
	if err != nil {
		return sheet.CanonicalTable{}, err
	}
	return sheet.Normalize(raw, m, FieldTecnico, []string{FieldAssTIM}), nil
}

// NormalizeDeliveryOF canonicalizes the Open Fiber delivery table.
func NormalizeDeliveryOF(raw sheet.RawTable) (sheet.CanonicalTable, error) {
	m, err := sheet.Resolve(raw, deliveryOFSpecs)
	if err != nil {
		return sheet.CanonicalTable{}, err
	}
	return sheet.Normalize(raw, m, FieldTecnico, []string{FieldDelOF}), nil
}
