package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/audiolibrelab/taperecorder/internal/config"

	"github.com/spf13/cobra"
)

var (
	cfg          *config.Config
	cfgFile      string
	pipeline     string
	profile      string
	verboseLevel int
)

var rootCmd = &cobra.Command{
	Use:   "taperecorder",
	Short: "Terminal audio recorder and player",
	Long: `TapeRecorder records from the default microphone into timestamped
files and plays them back with a live elapsed-time display.

Without a subcommand it opens the full-screen recorder, equivalent to
'taperecorder ui'.`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verboseLevel, os.Stderr)

		// Use default config path if not specified
		if cfgFile == "" {
			cfgFile = config.DefaultPath()
		}

		var err error
		cfg, err = config.LoadWithProfile(cfgFile, profile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		slog.Debug("Configuration loaded", "file", cfgFile, "profile", cfg.Profile)

		return validatePipeline()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return uiCmd.RunE(cmd, args)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/taperecorder.yaml)")
	rootCmd.PersistentFlags().StringVarP(&pipeline, "pipeline", "p", "", "pipeline steps: r=record, p=play (e.g., 'rp')")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "configuration profile to use (overrides active_config from file)")
	rootCmd.PersistentFlags().IntVarP(&verboseLevel, "verbose", "v", 0, "verbose level: 0=info, 1=debug, 2=encoder output, 3=max tracing")

	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(infoCmd)
}

// setupLogging configures slog based on the verbose level
func setupLogging(level int, w io.Writer) {
	var slogLevel slog.Level
	switch level {
	case 0:
		slogLevel = slog.LevelInfo
	case 1, 2, 3:
		slogLevel = slog.LevelDebug
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
	}
	handler := slog.NewTextHandler(w, opts)
	slog.SetDefault(slog.New(handler))

	// Set environment variables for maximum tracing (level 3)
	if level >= 3 {
		os.Setenv("PIPEWIRE_DEBUG", "3")
		os.Setenv("FFMPEG_LOGLEVEL", "debug")
	}
}

// encoderLog is where capture process output goes at the current verbosity.
func encoderLog() io.Writer {
	if verboseLevel >= 2 {
		return os.Stderr
	}
	return io.Discard
}
