package commands

import (
	"context"
	"fmt"
	"log/slog"
	"optchain-archive/internal/components/telemetry"
	"optchain-archive/lib/configutil"
	libtelemetry "optchain-archive/lib/telemetry"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	cfg Config
	tel telemetry.API
)

var rootCmd = &cobra.Command{
	Use:          "optchain",
	Short:        "optchain archives options chain snapshots of a fixed set of tickers.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = configutil.ReadConfigOr(configPath, defaultConfig())
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		level, err := libtelemetry.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger := libtelemetry.InitSlog(cmd.OutOrStdout(), level)
		tel = telemetry.NewSlogAPI(logger)

		slog.Debug("configuration loaded", "path", configPath, "catalog", cfg.Catalog.File)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "optchain.json5", "The configuration file, it may be absent.")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Overrides the configured log level (debug, info, warn, error).")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
