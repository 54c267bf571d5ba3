package audio

import "fmt"

// Event is a message delivered into the controller inbox.
type Event interface {
	event()
}

// PlaybackFinished is emitted once when playback reaches end-of-media or
// stops because of a decode failure.
type PlaybackFinished struct {
	Source  string
	Success bool
}

// DecodeFailed reports a decode error during playback. Diagnostic only.
type DecodeFailed struct {
	Source string
	Err    error
}

// RecordingFinished is emitted exactly once per capture session when the
// capture process has exited.
type RecordingFinished struct {
	Path    string
	Success bool
}

// EncodeFailed reports an encoder failure during capture. Diagnostic only.
type EncodeFailed struct {
	Path string
	Err  error
}

// LoadFinished carries the result of a background load. Exactly one of
// Playback and Err is set.
type LoadFinished struct {
	Source   string
	Playback Playback
	Err      error
}

// Tick is a refresh tick. It never mutates state.
type Tick struct{}

func (PlaybackFinished) event()  {}
func (DecodeFailed) event()      {}
func (RecordingFinished) event() {}
func (EncodeFailed) event()      {}
func (LoadFinished) event()      {}
func (Tick) event()              {}

func (e DecodeFailed) String() string {
	return fmt.Sprintf("decode error on %s: %v", e.Source, e.Err)
}

func (e EncodeFailed) String() string {
	return fmt.Sprintf("encode error on %s: %v", e.Path, e.Err)
}
