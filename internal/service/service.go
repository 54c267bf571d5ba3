// Package service wires configuration, capture backend, playback engine and
// recordings library into controllers.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/audiolibrelab/taperecorder/internal/audio"
	"github.com/audiolibrelab/taperecorder/internal/config"
	"github.com/audiolibrelab/taperecorder/internal/controller"
	"github.com/audiolibrelab/taperecorder/internal/library"
	"github.com/audiolibrelab/taperecorder/internal/play"
)

var ErrPlaybackFailed = errors.New("playback did not complete")

// Service is the taperecorder application core.
type Service struct {
	cfg *config.Config

	backend audio.Backend
	loader  audio.Loader
	library *library.Library
}

// New builds the service from a resolved configuration.
func New(cfg *config.Config, logWriter io.Writer) (*Service, error) {
	if logWriter == nil {
		logWriter = io.Discard
	}

	backend, err := audio.NewBackend(cfg, logWriter)
	if err != nil {
		return nil, fmt.Errorf("failed to select capture backend: %w", err)
	}
	slog.Debug("Capture backend selected", "backend", backend.GetType())

	return &Service{
		cfg:     cfg,
		backend: backend,
		loader:  play.NewEngine(cfg.Playback.SampleRate, cfg.PlaybackVolume()),
		library: library.New(cfg.Output.Directory, cfg.Output.Format),
	}, nil
}

// Format is the capture format derived from configuration.
func (s *Service) Format() audio.Format {
	return audio.NewFormat(s.cfg.Audio.SampleRate, s.cfg.Audio.Channels, s.cfg.Output.Format)
}

// NewController creates a controller drawing on display.
func (s *Service) NewController(display controller.Display) (*controller.Controller, error) {
	return controller.New(s.loader, s.backend, display, controller.Options{
		Recordings:            s.library,
		Format:                s.Format(),
		RefreshInterval:       s.cfg.Playback.RefreshInterval,
		PausePlaybackOnRecord: s.cfg.PausePlaybackOnRecord(),
	})
}

// InitialSource picks what the widget loads at startup: the configured asset,
// else the newest recording, else nothing.
func (s *Service) InitialSource() string {
	if s.cfg.Playback.Asset != "" {
		return s.cfg.Playback.Asset
	}

	latest, err := s.library.Latest()
	if err != nil {
		if !errors.Is(err, library.ErrNoRecordings) {
			slog.Warn("Failed to look up latest recording", "error", err)
		}
		return ""
	}
	return latest.Path
}

// ListRecordings returns recordings newest first.
func (s *Service) ListRecordings() ([]library.Recording, error) {
	return s.library.List()
}

// LatestRecording returns the newest recording.
func (s *Service) LatestRecording() (library.Recording, error) {
	return s.library.Latest()
}

// NextRecordingPath is the file a recording started at now would get.
func (s *Service) NextRecordingPath(now time.Time) (string, error) {
	return s.library.NextPath(now)
}

// ListSources returns the capture sources of the active backend.
func (s *Service) ListSources() ([]string, error) {
	return s.backend.ListSources()
}

// ValidateSource checks the configured capture source.
func (s *Service) ValidateSource() error {
	return s.backend.ValidateSource(s.cfg.Audio.Source)
}

// Backend returns the active capture backend type.
func (s *Service) Backend() audio.BackendType {
	return s.backend.GetType()
}

// Record captures into a new file until ctx is done and returns its path
// once the encoder has finalized it.
func (s *Service) Record(ctx context.Context, display controller.Display) (string, error) {
	ctrl, err := s.NewController(display)
	if err != nil {
		return "", err
	}
	defer ctrl.Close()

	if err := ctrl.Record(); err != nil {
		return "", err
	}
	path := ctrl.RecordingPath()
	slog.Info("Recording - stop to finish", "path", path)

	return path, awaitRecording(ctx, ctrl, path)
}

// awaitRecording stops the capture when ctx is done and waits for its
// RecordingFinished. The finished file is not loaded for playback.
func awaitRecording(ctx context.Context, ctrl *controller.Controller, path string) error {
	stopRequested := ctx.Done()
	stopped := false
	var encodeErr error

	for {
		select {
		case <-stopRequested:
			stopRequested = nil
			stopped = true
			if err := ctrl.Stop(); err != nil {
				return err
			}

		case ev := <-ctrl.Events():
			switch e := ev.(type) {
			case audio.EncodeFailed:
				if e.Path == path {
					encodeErr = e.Err
				}
				ctrl.HandleEvent(ev)

			case audio.RecordingFinished:
				if e.Path != path {
					ctrl.HandleEvent(ev)
					continue
				}
				switch {
				case !stopped:
					return errors.Join(fmt.Errorf("recording %s ended unexpectedly", path), encodeErr)
				case !e.Success:
					return errors.Join(fmt.Errorf("recording %s failed", path), encodeErr)
				}
				return nil

			default:
				ctrl.HandleEvent(ev)
			}
		}
	}
}

// Play plays source to the end. progress, if set, is called after every
// controller event so callers can redraw display.
func (s *Service) Play(ctx context.Context, source string, display controller.Display, progress func()) error {
	ctrl, err := s.NewController(display)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.LoadAudio(source); err != nil {
		return err
	}
	if err := ctrl.Play(); err != nil {
		return err
	}
	if progress != nil {
		progress()
	}

	success := true
	err = ctrl.Run(ctx, func(ev audio.Event) bool {
		if progress != nil {
			progress()
		}
		finished, ok := ev.(audio.PlaybackFinished)
		if !ok || ctrl.IsPlaying() {
			return false
		}
		success = finished.Success
		return true
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Debug("Playback interrupted", "source", source)
			return nil
		}
		return err
	}
	if !success {
		return fmt.Errorf("%w: %s", ErrPlaybackFailed, source)
	}
	return nil
}
