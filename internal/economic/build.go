package economic

import (
	"sort"

	"github.com/euroirte/avanzamento/internal/config"
	"github.com/euroirte/avanzamento/internal/sheet"
)

// Record is one technician's joined monthly performance: raw counts plus the
// derived €/h metrics. It is the single source of truth for the metrics.
type Record struct {
	Tecnico   string
	OreTotali float64

	DelTIMFTTH    float64
	DelTIMNonFTTH float64
	AssTIM        float64
	DelOF         float64

	ResaDeliveryTIMFTTH    float64
	ResaDeliveryTIMNonFTTH float64
	ResaAssuranceTIM       float64
	ResaDeliveryOF         float64
}

// Build left-joins the activity tables onto the hours table and computes the
// four metrics. Only technicians present in the hours table appear: a €/h
// rate is undefined without an hours denominator. Missing activity counts
// default to zero; zero hours yields zero metrics rather than a non-finite
// value. Output is sorted ascending by technician key.
func Build(hours, delTIM, assTIM, delOF sheet.CanonicalTable, rates config.RatesConfig) []Record {
	records := make([]Record, 0, len(hours.Rows))
	for _, key := range hours.Keys() {
		r := Record{
			Tecnico:       key,
			OreTotali:     hours.Value(key, FieldOreTotali),
			DelTIMFTTH:    delTIM.Value(key, FieldDelTIMFTTH),
			DelTIMNonFTTH: delTIM.Value(key, FieldDelTIMNonFTTH),
			AssTIM:        assTIM.Value(key, FieldAssTIM),
			DelOF:         delOF.Value(key, FieldDelOF),
		}
		r.ResaDeliveryTIMFTTH = rate(r.DelTIMFTTH, rates.DeliveryTIMFTTH, r.OreTotali)
		r.ResaDeliveryTIMNonFTTH = rate(r.DelTIMNonFTTH, rates.DeliveryTIMNonFTTH, r.OreTotali)
		r.ResaAssuranceTIM = rate(r.AssTIM, rates.AssuranceTIM, r.OreTotali)
		r.ResaDeliveryOF = rate(r.DelOF, rates.DeliveryOF, r.OreTotali)
		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Tecnico < records[j].Tecnico })
	return records
}

// rate computes (count × factor) / hours, defined as zero when hours is
// zero: a technician with logged activity but no attendance hours is a
// normal case and must display as 0, not propagate Inf.
func rate(count, factor, hours float64) float64 {
	if hours == 0 {
		return 0
	}
	return count * factor / hours
}
