package economic

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
)

// csvHeader matches the column names of the original report export.
var csvHeader = []string{
	"Nome Tecnico",
	"Resa Delivery TIM FTTH",
	"Resa Delivery TIM non FTTH",
	"Resa Assurance TIM",
	"Resa Delivery OF",
}

// WriteCSV serializes the joined records as comma-separated text with
// two-decimal metric values.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for _, r := range records {
		row := []string{
			r.Tecnico,
			fmt.Sprintf("%.2f", r.ResaDeliveryTIMFTTH),
			fmt.Sprintf("%.2f", r.ResaDeliveryTIMNonFTTH),
			fmt.Sprintf("%.2f", r.ResaAssuranceTIM),
			fmt.Sprintf("%.2f", r.ResaDeliveryOF),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "csv: write row for %s", r.Tecnico)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "csv: flush")
	}
	return nil
}
