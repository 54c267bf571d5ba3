package cmd

import (
	"fmt"
	"log/slog"

	"github.com/audiolibrelab/taperecorder/internal/audio"
	"github.com/audiolibrelab/taperecorder/internal/service"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List available audio sources",
	Long:  `List the capture sources of the active backend that can be set as audio.source.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Available backends: %v\n\n", audio.GetAvailableBackends())

		svc, err := service.New(cfg, encoderLog())
		if err != nil {
			return err
		}

		sources, err := svc.ListSources()
		if err != nil {
			return fmt.Errorf("failed to get %s sources: %w", svc.Backend(), err)
		}

		fmt.Printf("%s sources (%d found):\n", svc.Backend(), len(sources))
		for i, source := range sources {
			fmt.Printf("  %d. %s\n", i+1, source)
		}

		if err := svc.ValidateSource(); err != nil {
			slog.Warn("Configured source not available", "source", cfg.Audio.Source, "error", err)
		} else {
			fmt.Printf("\nConfigured source: %s\n", cfg.Audio.Source)
		}

		return nil
	},
}
