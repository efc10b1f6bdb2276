package commands

import (
	"context"
	"errors"
	"log/slog"
	"optchain-archive/internal/poller"
	libtelemetry "optchain-archive/lib/telemetry"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Archives a snapshot every 5 minutes until interrupted, retrying a minute after any failure.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		providers, err := libtelemetry.Setup(ctx, "optchain", cfg.Telemetry)
		if err != nil {
			slog.Warn("failed to setup telemetry, continuing without it", "err", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := providers.Shutdown(shutdownCtx)
			if err != nil {
				slog.Warn("failed to shutdown telemetry", "err", err)
			}
		}()
		libtelemetry.InstrumentPerfStats(ctx, 30*time.Second)

		archiver, cleanup := newArchiver()
		defer cleanup()

		loop := poller.New(archiver, poller.Options{
			Interval: poller.DefaultInterval,
			Policy:   poller.Uniform{Duration: poller.DefaultCooldown},
		}, tel)

		slog.Info(
			"archiving options chains",
			"tickers", Tickers,
			"dir", DataDir,
			"interval", poller.DefaultInterval,
		)
		err = loop.Run(ctx)
		if errors.Is(err, context.Canceled) {
			slog.Info("stopped")
			return nil
		}
		return err
	},
}
