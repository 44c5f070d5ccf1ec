package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/euroirte/avanzamento/internal/pipeline"
)

var monthsCmd = &cobra.Command{
	Use:   "months",
	Short: "List the calendar months available across the source workbooks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := pipeline.New(cfg)
		months, err := p.AvailableMonths(cmd.Context())
		if err != nil {
			return err
		}
		for _, m := range months {
			fmt.Println(m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(monthsCmd)
}
