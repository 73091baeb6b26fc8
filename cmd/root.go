package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/abs-insights/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "abs-insights",
	Short: "Real-estate and demographic tool server backed by ABS statistics",
	Long:  "Resolves Australian postcodes and coordinates to SA2 statistical areas and serves property/demographic statistics from the ABS Data API as callable tools.",
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
