package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harborline/shipdocs/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "shipdocs",
	Short: "Shipment document extraction and accuracy scoring",
	Long:  "Extracts structured fields from shipment documents (bills of lading, manifests, spreadsheets), reconciles values across extraction strategies, and scores results against ground truth.",
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
