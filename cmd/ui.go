package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/audiolibrelab/taperecorder/internal/service"
	"github.com/audiolibrelab/taperecorder/internal/tui"

	"github.com/spf13/cobra"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the full-screen recorder",
	Long: `Open the recorder widget. The configured playback asset is loaded at
startup, or the most recent recording when none is configured.

Keys: space/p play-pause, r record-stop, ? help, q quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logFile, err := openLogFile()
		if err != nil {
			return err
		}
		defer logFile.Close()
		setupLogging(verboseLevel, logFile)

		svc, err := service.New(cfg, logFile)
		if err != nil {
			return err
		}

		surface := tui.NewSurface()
		ctrl, err := svc.NewController(surface)
		if err != nil {
			return err
		}

		if source := svc.InitialSource(); source != "" {
			// A failed load shows up in the status line.
			if err := ctrl.LoadAudio(source); err != nil {
				slog.Warn("Initial audio not loaded", "source", source, "error", err)
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := tui.Run(ctx, tui.NewModel(ctrl, surface)); err != nil {
			return fmt.Errorf("ui failed: %w", err)
		}
		return ctrl.Close()
	},
}

// openLogFile keeps logs off the alternate screen.
func openLogFile() (*os.File, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	dir = filepath.Join(dir, "taperecorder")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, "taperecorder.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
