package cmd

import (
	"fmt"
	"strings"

	"github.com/audiolibrelab/taperecorder/internal/service"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute pipeline steps",
	Long: `Execute the steps given with -p in order. 'r' records until Enter is
pressed, 'p' plays the file recorded by the previous step, or the most
recent recording when no step recorded one.

Example: taperecorder run -p rp`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if pipeline == "" {
			return fmt.Errorf("no pipeline specified, use -p flag (e.g., -p rp)")
		}

		svc, err := service.New(cfg, encoderLog())
		if err != nil {
			return err
		}

		return runSteps(svc, []rune(strings.ToLower(pipeline)), "")
	},
}
