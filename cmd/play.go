package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/audiolibrelab/taperecorder/internal/library"
	"github.com/audiolibrelab/taperecorder/internal/service"
	"github.com/audiolibrelab/taperecorder/internal/tui"

	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [file]",
	Short: "Play an audio file",
	Long: `Play an audio file with a live elapsed-time display. Without an
argument the most recent recording is played. mp3 is decoded natively,
other formats through ffmpeg.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := service.New(cfg, encoderLog())
		if err != nil {
			return err
		}

		source := ""
		if len(args) == 1 {
			source = args[0]
		} else {
			latest, err := svc.LatestRecording()
			if errors.Is(err, library.ErrNoRecordings) {
				return fmt.Errorf("no recordings in %s, pass a file to play", cfg.Output.Directory)
			}
			if err != nil {
				return err
			}
			source = latest.Path
		}

		return playFile(svc, source)
	},
}

func playFile(svc *service.Service, source string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Playing: %s\n", source)
	display := tui.NewLineDisplay(os.Stdout)
	err := svc.Play(ctx, source, display, display.Redraw)
	display.Done()
	if err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}
