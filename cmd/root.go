package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/euroirte/avanzamento/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "avanzamento",
	Short: "Monthly €/h performance pipeline for field technicians",
	Long:  "Fetches the attendance, delivery, and assurance workbooks, normalizes them into a per-technician table, derives the €/h metrics, and emails each technician their monthly progress.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
