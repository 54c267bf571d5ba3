package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/audiolibrelab/taperecorder/internal/library"
	"github.com/audiolibrelab/taperecorder/internal/service"
	"github.com/audiolibrelab/taperecorder/internal/tui"
)

// executePipeline runs the pipeline steps after startStep. path is the
// recording the previous step produced, if any.
func executePipeline(svc *service.Service, path string, startStep rune) error {
	if pipeline == "" {
		return nil
	}

	steps := []rune(strings.ToLower(pipeline))

	// Find the starting position in the pipeline
	startIndex := -1
	for i, step := range steps {
		if step == startStep {
			startIndex = i
			break
		}
	}

	if startIndex == -1 {
		return fmt.Errorf("step '%c' not found in pipeline '%s'", startStep, pipeline)
	}

	return runSteps(svc, steps[startIndex+1:], path)
}

func runSteps(svc *service.Service, steps []rune, path string) error {
	for i, step := range steps {
		fmt.Printf("Pipeline: executing step %d/%d: '%c'...\n", i+1, len(steps), step)

		switch step {
		case 'r':
			recorded, err := recordUntilEnter(svc)
			if err != nil {
				return fmt.Errorf("pipeline record failed: %w", err)
			}
			path = recorded
			fmt.Printf("Pipeline: recording completed: %s\n", path)

		case 'p':
			if path == "" {
				latest, err := svc.LatestRecording()
				if errors.Is(err, library.ErrNoRecordings) {
					return fmt.Errorf("pipeline play failed: nothing recorded yet")
				}
				if err != nil {
					return fmt.Errorf("pipeline play failed: %w", err)
				}
				path = latest.Path
			}
			if err := playFile(svc, path); err != nil {
				return fmt.Errorf("pipeline play failed: %w", err)
			}
			fmt.Println("Pipeline: playback completed")

		default:
			return fmt.Errorf("unknown pipeline step: '%c' (valid: r=record, p=play)", step)
		}
	}

	return nil
}

// recordUntilEnter records until a line is read from stdin or the process
// is interrupted.
func recordUntilEnter(svc *service.Service) (string, error) {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Scan()
		cancel()
	}()

	fmt.Println("Pipeline: recording - Press Enter to stop...")
	return svc.Record(ctx, tui.NewSurface())
}

func validatePipeline() error {
	if pipeline == "" {
		return nil
	}

	validSteps := map[rune]bool{
		'r': true, // record
		'p': true, // play
	}

	steps := []rune(strings.ToLower(pipeline))
	for _, step := range steps {
		if !validSteps[step] {
			return fmt.Errorf("invalid pipeline step: '%c' (valid: r=record, p=play)", step)
		}
	}

	return nil
}
