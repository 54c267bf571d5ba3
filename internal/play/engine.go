// Package play decodes audio files into memory and plays them through oto.
package play

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/audiolibrelab/taperecorder/internal/audio"
)

const (
	channelCount   = 2
	bytesPerSample = 2
	frameSize      = channelCount * bytesPerSample
)

// Engine implements audio.Loader on top of a single audio output.
type Engine struct {
	sampleRate int
	volume     float64
	decode     Decoder

	mu     sync.Mutex
	output Output
	open   func(sampleRate int) (Output, error)
}

func NewEngine(sampleRate int, volume float64) *Engine {
	return &Engine{
		sampleRate: sampleRate,
		volume:     clampVolume(volume),
		decode:     DecodeFile,
		open:       openOutput,
	}
}

// Load decodes source fully and returns a paused session positioned at the
// start.
func (e *Engine) Load(source string, notify audio.Notify) (audio.Playback, error) {
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, source)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", source, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUndecodable, source)
	}

	pcm, err := e.decode(source, e.sampleRate)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: %s contains no audio", ErrUndecodable, source)
	}

	output, err := e.outputDevice()
	if err != nil {
		return nil, err
	}

	slog.Debug("Decoded audio", "source", source, "bytes", len(pcm))
	return newSession(source, pcm, e.sampleRate, e.volume, output, notify), nil
}

func (e *Engine) outputDevice() (Output, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.output != nil {
		return e.output, nil
	}
	output, err := e.open(e.sampleRate)
	if err != nil {
		return nil, err
	}
	e.output = output
	return output, nil
}

func clampVolume(volume float64) float64 {
	if volume < 0 {
		return 0
	}
	if volume > 1 {
		return 1
	}
	return volume
}
