package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lockdown-systems/icewatch/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "icewatch",
	Short: "Detention facility statistics pipeline",
	Long:  "Downloads the published detention statistics workbook, extracts facility records, geocodes them against a persistent cache, and renders a static map page.",
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
