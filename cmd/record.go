package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/audiolibrelab/taperecorder/internal/service"
	"github.com/audiolibrelab/taperecorder/internal/tui"

	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record from the default input until Ctrl+C",
	Long: `Record from the configured capture source into a new file named after
the current time, e.g. 2026-10-19T14:03:11+02:00.caf, in the output
directory. Press Ctrl+C to stop. The path of the new file is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := service.New(cfg, encoderLog())
		if err != nil {
			return err
		}
		if err := svc.ValidateSource(); err != nil {
			slog.Warn("Capture source check failed", "source", cfg.Audio.Source, "error", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		slog.Info("Recording - press Ctrl+C to stop", "backend", svc.Backend(), "format", svc.Format().String())
		path, err := svc.Record(ctx, tui.NewSurface())
		if err != nil {
			return fmt.Errorf("recording failed: %w", err)
		}
		fmt.Println(path)

		// Execute pipeline if specified
		return executePipeline(svc, path, 'r')
	},
}
