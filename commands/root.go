package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reputation-monitor/config"
	"reputation-monitor/utils"
)

var rootCmd = &cobra.Command{
	Use:          "reputation-monitor",
	Short:        "reputation-monitor scrapes web-scraping.dev and serves a review sentiment dashboard.",
	SilenceUsage: true,
}

// ExecuteContext runs the CLI and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the process logger.
func setup() (*config.Config, *utils.Logger) {
	cfg := config.Load()
	return cfg, utils.NewLogger(utils.ParseLevel(cfg.LogLevel))
}
