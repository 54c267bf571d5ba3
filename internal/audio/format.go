package audio

import (
	"errors"
	"fmt"
)

// Format describes the capture format.
type Format struct {
	SampleRate int
	Channels   int
	Container  string
	Codec      string
}

// DefaultFormat is 44.1kHz mono 16-bit PCM in a CAF container.
var DefaultFormat = Format{
	SampleRate: 44100,
	Channels:   1,
	Container:  "caf",
	Codec:      "pcm_s16le",
}

var ErrInvalidFormat = errors.New("invalid audio format")

// Validate reports whether the format can be handed to a capture backend.
func (f Format) Validate() error {
	if f.SampleRate < 8000 || f.SampleRate > 192000 {
		return fmt.Errorf("%w: sample rate %d out of range", ErrInvalidFormat, f.SampleRate)
	}
	if f.Channels != 1 && f.Channels != 2 {
		return fmt.Errorf("%w: %d channels (want 1 or 2)", ErrInvalidFormat, f.Channels)
	}
	if f.Container == "" {
		return fmt.Errorf("%w: container is required", ErrInvalidFormat)
	}
	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%s", f.SampleRate, f.Channels, f.Container)
}

// NewFormat builds a format for a container, picking the codec ffmpeg uses
// for it.
func NewFormat(sampleRate, channels int, container string) Format {
	codec := "pcm_s16le"
	if container == "flac" {
		codec = "flac"
	}
	return Format{
		SampleRate: sampleRate,
		Channels:   channels,
		Container:  container,
		Codec:      codec,
	}
}
