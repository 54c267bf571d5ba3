package audio

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/audiolibrelab/taperecorder/internal/config"
)

// BackendType represents the type of capture backend
type BackendType string

const (
	BackendTypeFFmpeg   BackendType = "ffmpeg"
	BackendTypePipeWire BackendType = "pipewire"
	BackendTypeAuto     BackendType = "auto"
)

// Backend is a capture implementation plus its source discovery.
type Backend interface {
	Capturer

	// List available capture sources
	ListSources() ([]string, error)

	// Validate if a source is available
	ValidateSource(source string) error

	// Get the backend type
	GetType() BackendType
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// NewBackend creates the capture backend selected by configuration.
func NewBackend(cfg *config.Config, logWriter io.Writer) (Backend, error) {
	backendType, err := determineBackend(cfg.Audio.Backend)
	if err != nil {
		return nil, err
	}

	switch backendType {
	case BackendTypeFFmpeg:
		return &FFmpegBackend{
			InputFormat: cfg.Audio.InputFormat,
			Source:      cfg.Audio.Source,
			LogWriter:   logWriter,
		}, nil
	default:
		return &PipeWireBackend{
			Target:    cfg.Audio.Source,
			LogWriter: logWriter,
		}, nil
	}
}

// determineBackend resolves "auto" to the first backend whose binary is
// installed, preferring PipeWire.
func determineBackend(name string) (BackendType, error) {
	switch strings.ToLower(name) {
	case string(BackendTypeFFmpeg):
		return BackendTypeFFmpeg, nil
	case string(BackendTypePipeWire):
		return BackendTypePipeWire, nil
	case "", string(BackendTypeAuto):
		available := GetAvailableBackends()
		if len(available) == 0 {
			return "", fmt.Errorf("no capture backend found (need pw-record or ffmpeg in PATH)")
		}
		return available[0], nil
	default:
		return "", fmt.Errorf("unknown audio backend: %s", name)
	}
}

// GetAvailableBackends returns list of available backends on current system
func GetAvailableBackends() []BackendType {
	backends := []BackendType{}

	if _, err := lookPath("pw-record"); err == nil {
		backends = append(backends, BackendTypePipeWire)
	}
	if _, err := lookPath("ffmpeg"); err == nil {
		backends = append(backends, BackendTypeFFmpeg)
	}

	return backends
}
