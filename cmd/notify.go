package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/euroirte/avanzamento/internal/fetcher"
	"github.com/euroirte/avanzamento/internal/mailer"
	"github.com/euroirte/avanzamento/internal/pipeline"
	"github.com/euroirte/avanzamento/internal/progress"
	"github.com/euroirte/avanzamento/internal/sheet"
)

var (
	notifyMonth   string
	notifyTecnico string
	notifyFile    string
	notifyDryRun  bool
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Email each technician their monthly progress",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		src := pipeline.SourceURL(cfg.Source.BaseURL, cfg.Source.Avanzamento)
		if notifyFile != "" {
			src = notifyFile
		}
		f := fetcher.ForURL(src, fetcher.Options{
			Timeout:   cfg.Source.Timeout(),
			AuthToken: cfg.Source.Token,
		})
		bs, err := fetcher.FetchBytes(ctx, f, src)
		if err != nil {
			return eris.Wrapf(err, "source %s", src)
		}
		rows, err := fetcher.ParseXLSX(bs, fetcher.XLSXOptions{})
		if err != nil {
			return eris.Wrapf(err, "source %s", src)
		}

		entries, err := progress.Parse(sheet.NewRawTable(cfg.Source.Avanzamento, rows))
		if err != nil {
			return err
		}

		month := sheet.Month(notifyMonth)
		if month == "" {
			if months := progress.Months(entries); len(months) > 0 {
				month = months[len(months)-1]
			}
		}
		entries = progress.FilterMonth(entries, month)
		entries = progress.FilterTecnico(entries, notifyTecnico)
		if len(entries) == 0 {
			return eris.Errorf("no progress rows for month %s", month)
		}

		notifications := progress.Notifications(entries)

		if notifyDryRun {
			fmt.Printf("Dry run, %d notifications for %s:\n\n", len(notifications), month)
			for _, n := range notifications {
				status := "ok"
				if !mailer.ValidateAddress(n.Email) {
					status = "invalid address"
				}
				fmt.Printf("%s <%s> [%s]\n%s\n", mailer.DisplayName(n.Tecnico), n.Email, status, mailer.RenderBody(n))
			}
			return nil
		}

		if cfg.SMTP.User == "" || cfg.SMTP.Password == "" {
			return eris.New("smtp credentials are required (AVANZAMENTO_SMTP_USER / AVANZAMENTO_SMTP_PASSWORD)")
		}

		transport, err := mailer.Dial(cfg.SMTP)
		if err != nil {
			return err
		}
		defer transport.Close() //nolint:errcheck

		report := mailer.NewDispatcher(cfg.SMTP).Run(transport, notifications)
		printReport(report, month)
		return nil
	},
}

func printReport(report mailer.Report, month sheet.Month) {
	fmt.Printf("Invio completato (%s), mese %s: %d inviate, %d rifiutate, %d non valide\n\n",
		report.Mode, month, report.Sent, report.Rejected, report.Invalid)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Stato\tTecnico\tEmail\tMotivo")
	for _, o := range report.Outcomes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.Status, o.Tecnico, o.Email, o.Reason)
	}
	_ = w.Flush()
}

func init() {
	notifyCmd.Flags().StringVar(&notifyMonth, "month", "", "month to notify, e.g. 2025-06 (default: most recent)")
	notifyCmd.Flags().StringVar(&notifyTecnico, "technician", "", "notify a single technician (matched on normalized name)")
	notifyCmd.Flags().StringVar(&notifyFile, "file", "", "read the progress workbook from a local path instead of the remote source")
	notifyCmd.Flags().BoolVar(&notifyDryRun, "dry-run", false, "validate and render without connecting to the mail server")
	rootCmd.AddCommand(notifyCmd)
}
