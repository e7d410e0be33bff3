package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/gfc-explorer/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "gfc-explorer",
	Short: "CBSA house-price-index explorer",
	Long:  "Loads FHFA tract and ZIP house-price indexes into a local store and serves per-CBSA crisis-window aggregations over HTTP and the CLI.",
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
