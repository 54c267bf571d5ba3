package cmd

import (
	"fmt"

	"github.com/audiolibrelab/taperecorder/internal/service"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recordings, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := service.New(cfg, encoderLog())
		if err != nil {
			return err
		}

		recordings, err := svc.ListRecordings()
		if err != nil {
			return err
		}
		if len(recordings) == 0 {
			fmt.Printf("No recordings in %s\n", cfg.Output.Directory)
			return nil
		}

		for _, rec := range recordings {
			fmt.Printf("%s  %9s  %s\n", rec.ModTimeHuman, rec.SizeHuman, rec.Path)
		}
		return nil
	},
}
