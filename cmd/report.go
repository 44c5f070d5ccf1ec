package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/euroirte/avanzamento/internal/economic"
	"github.com/euroirte/avanzamento/internal/pipeline"
	"github.com/euroirte/avanzamento/internal/sheet"
)

var (
	reportMonth     string
	reportAllMonths bool
	reportOut       string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the monthly €/h table per technician",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		p := pipeline.New(cfg)
		res, err := p.Run(ctx, pipeline.Options{
			Month:     sheet.Month(reportMonth),
			AllMonths: reportAllMonths,
		})
		if err != nil {
			return err
		}

		if res.Month != "" {
			fmt.Printf("Periodo: %s\n\n", res.Month)
		}
		printRecords(res.Records)

		if reportOut != "" {
			f, err := os.Create(reportOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", reportOut)
			}
			defer f.Close() //nolint:errcheck
			if err := economic.WriteCSV(f, res.Records); err != nil {
				return err
			}
			zap.L().Info("csv written",
				zap.String("path", reportOut),
				zap.Int("rows", len(res.Records)),
			)
		}

		return nil
	},
}

func printRecords(records []economic.Record) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Nome Tecnico\tDelivery TIM FTTH\tDelivery TIM non FTTH\tAssurance TIM\tDelivery OF")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t€%.2f/h\t€%.2f/h\t€%.2f/h\t€%.2f/h\n",
			r.Tecnico,
			r.ResaDeliveryTIMFTTH,
			r.ResaDeliveryTIMNonFTTH,
			r.ResaAssuranceTIM,
			r.ResaDeliveryOF,
		)
	}
	_ = w.Flush()
}

func init() {
	reportCmd.Flags().StringVar(&reportMonth, "month", "", "calendar month to report, e.g. 2025-06 (default: most recent)")
	reportCmd.Flags().BoolVar(&reportAllMonths, "all-months", false, "report across all months, unfiltered")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "write the table as CSV to this path")
	rootCmd.AddCommand(reportCmd)
}
