package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/audiolibrelab/taperecorder/internal/library"
	"github.com/audiolibrelab/taperecorder/internal/service"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show resolved configuration and recording paths",
	Long:  `Display the resolved configuration with inheritance indicators and the path the next recording would get. Shows which values are inherited from default vs profile-specific.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := service.New(cfg, encoderLog())
		if err != nil {
			return err
		}

		next, err := svc.NextRecordingPath(time.Now())
		if err != nil {
			return err
		}

		// Display file paths
		fmt.Printf("=== FILE PATHS ===\n")
		fmt.Printf("config_file: %s\n", cfgFile)
		fmt.Printf("next_recording: %s\n", next)
		latest, err := svc.LatestRecording()
		switch {
		case err == nil:
			fmt.Printf("latest_recording: %s\n", latest.Path)
		case errors.Is(err, library.ErrNoRecordings):
			fmt.Printf("latest_recording: none\n")
		default:
			return err
		}

		// Display resolved configuration with inheritance indicators
		fmt.Printf("\n=== RESOLVED CONFIGURATION (%s) ===\n", cfg.Profile)
		in := cfg.Inheritance

		fmt.Printf("\n[Audio]\n")
		fmt.Printf("backend: %s (%s) %s\n", cfg.Audio.Backend, svc.Backend(), getInheritanceIndicator(in.Audio.Backend))
		fmt.Printf("sample_rate: %d %s\n", cfg.Audio.SampleRate, getInheritanceIndicator(in.Audio.SampleRate))
		fmt.Printf("channels: %d %s\n", cfg.Audio.Channels, getInheritanceIndicator(in.Audio.Channels))
		fmt.Printf("source: %s %s\n", cfg.Audio.Source, getInheritanceIndicator(in.Audio.Source))
		fmt.Printf("input_format: %s %s\n", cfg.Audio.InputFormat, getInheritanceIndicator(in.Audio.InputFormat))

		fmt.Printf("\n[Playback]\n")
		fmt.Printf("asset: %s %s\n", cfg.Playback.Asset, getInheritanceIndicator(in.Playback.Asset))
		fmt.Printf("volume: %.2f %s\n", cfg.PlaybackVolume(), getInheritanceIndicator(in.Playback.Volume))
		fmt.Printf("refresh_interval: %s %s\n", cfg.Playback.RefreshInterval, getInheritanceIndicator(in.Playback.RefreshInterval))
		fmt.Printf("sample_rate: %d %s\n", cfg.Playback.SampleRate, getInheritanceIndicator(in.Playback.SampleRate))

		fmt.Printf("\n[Recording]\n")
		fmt.Printf("pause_playback: %t %s\n", cfg.PausePlaybackOnRecord(), getInheritanceIndicator(in.Recording.PausePlayback))
		fmt.Printf("format: %s\n", svc.Format())

		fmt.Printf("\n[Output]\n")
		fmt.Printf("directory: %s %s\n", cfg.Output.Directory, getInheritanceIndicator(in.Output.Directory))
		fmt.Printf("format: %s %s\n", cfg.Output.Format, getInheritanceIndicator(in.Output.Format))

		return nil
	},
}

// getInheritanceIndicator returns a formatted indicator for inheritance status
func getInheritanceIndicator(status string) string {
	switch status {
	case "default":
		return "[default]"
	case "inherited":
		return "[inherited]"
	case "profile-specific":
		return "[profile-specific]"
	default:
		return "[unknown]"
	}
}
