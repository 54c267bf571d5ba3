package controller

import (
	"errors"
	"fmt"
)

var ErrClosed = errors.New("controller is closed")

// LoadError reports that an audio source could not be opened for playback.
// The previously loaded session, if any, stays in place.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// RecordError reports a capture failure. Op is one of "allocate", "open",
// "start" or "stop".
type RecordError struct {
	Path string
	Op   string
	Err  error
}

func (e *RecordError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("record %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("record %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
