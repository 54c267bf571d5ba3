package audio

import (
	"time"
)

// Notify delivers an asynchronous completion or error event to the owner of
// a session. Implementations must not block.
type Notify func(Event)

// Playback is an open handle to decoded audio content.
type Playback interface {
	Play() error
	Pause()
	CurrentTime() time.Duration
	Duration() time.Duration
	IsPlaying() bool
	Source() string
	Close() error
}

// Loader opens playback sessions.
type Loader interface {
	Load(source string, notify Notify) (Playback, error)
}

// Capture is an open handle to a capture destination.
type Capture interface {
	Start() error
	Stop() error
	IsRecording() bool
	Path() string
}

// Capturer opens capture sessions writing to a file.
type Capturer interface {
	Open(path string, format Format, notify Notify) (Capture, error)
}
