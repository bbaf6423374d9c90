package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crossbridge-edu/advisory-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "advisory-cli",
	Short: "Study-abroad advisory back office",
	Long:  "Tracks applicants through the application pipeline, infers each student's current stage from stored evidence, and serves progress snapshots to the advisor dashboard.",
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
