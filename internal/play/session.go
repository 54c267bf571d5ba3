package play

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/audiolibrelab/taperecorder/internal/audio"
)

const monitorInterval = 20 * time.Millisecond

var errSessionClosed = errors.New("playback session is closed")

// Session plays decoded PCM held in memory. It implements audio.Playback.
type Session struct {
	source         string
	notify         audio.Notify
	reader         *volumeReader
	player         Player
	bytesPerSecond int64

	mu      sync.Mutex
	playing bool
	closed  bool
	stop    chan struct{}
}

func newSession(source string, pcm []byte, sampleRate int, volume float64, output Output, notify audio.Notify) *Session {
	if notify == nil {
		notify = func(audio.Event) {}
	}

	reader := &volumeReader{reader: bytes.NewReader(pcm), volume: volume}
	return &Session{
		source:         source,
		notify:         notify,
		reader:         reader,
		player:         output.NewPlayer(reader),
		bytesPerSecond: int64(sampleRate * frameSize),
	}
}

func (s *Session) Source() string {
	return s.source
}

// Play starts or resumes playback. At end-of-media it rewinds first.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errSessionClosed
	}
	if s.playing {
		return nil
	}

	if s.reader.Len() == 0 && s.player.BufferedSize() == 0 {
		if _, err := s.player.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("failed to rewind %s: %w", s.source, err)
		}
	}

	s.player.Play()
	s.playing = true
	s.stop = make(chan struct{})
	go s.monitorPlayback(s.stop)

	return nil
}

func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return
	}
	s.player.Pause()
	s.halt()
}

func (s *Session) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// CurrentTime is the position of the sample being heard, which lags the
// reader by whatever oto still has buffered.
func (s *Session) CurrentTime() time.Duration {
	consumed := s.reader.Size() - int64(s.reader.Len())
	pos := consumed - int64(s.player.BufferedSize())
	if pos < 0 {
		pos = 0
	}
	return s.bytesToDuration(pos)
}

func (s *Session) Duration() time.Duration {
	return s.bytesToDuration(s.reader.Size())
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if s.playing {
		s.player.Pause()
		s.halt()
	}
	s.closed = true
	return s.player.Close()
}

// halt stops the monitor. Callers hold s.mu.
func (s *Session) halt() {
	s.playing = false
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// monitorPlayback watches for end-of-media and player errors.
func (s *Session) monitorPlayback(stop <-chan struct{}) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := s.player.Err(); err != nil {
				s.finish(stop, err)
				return
			}
			if !s.player.IsPlaying() && s.reader.Len() == 0 {
				s.finish(stop, nil)
				return
			}
		}
	}
}

// finish emits the completion events once for the run identified by stop.
func (s *Session) finish(stop <-chan struct{}, err error) {
	s.mu.Lock()
	if !s.playing || s.stop == nil || (<-chan struct{})(s.stop) != stop {
		s.mu.Unlock()
		return
	}
	s.halt()
	s.mu.Unlock()

	if err != nil {
		s.notify(audio.DecodeFailed{Source: s.source, Err: err})
	}
	s.notify(audio.PlaybackFinished{Source: s.source, Success: err == nil})
}

func (s *Session) bytesToDuration(n int64) time.Duration {
	if s.bytesPerSecond == 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(s.bytesPerSecond)
}

// volumeReader scales samples as oto pulls them.
type volumeReader struct {
	mu     sync.Mutex
	reader *bytes.Reader
	volume float64
}

func (vr *volumeReader) Read(p []byte) (int, error) {
	vr.mu.Lock()
	defer vr.mu.Unlock()

	// Whole frames only so samples never split across reads.
	p = p[:len(p)/frameSize*frameSize]
	n, err := vr.reader.Read(p)

	if vr.volume < 1 {
		for i := 0; i+1 < n; i += bytesPerSample {
			sample := int16(uint16(p[i]) | uint16(p[i+1])<<8)
			sample = int16(float64(sample) * vr.volume)
			p[i] = byte(sample)
			p[i+1] = byte(sample >> 8)
		}
	}
	return n, err
}

func (vr *volumeReader) Seek(offset int64, whence int) (int64, error) {
	vr.mu.Lock()
	defer vr.mu.Unlock()
	return vr.reader.Seek(offset, whence)
}

func (vr *volumeReader) Len() int {
	vr.mu.Lock()
	defer vr.mu.Unlock()
	return vr.reader.Len()
}

func (vr *volumeReader) Size() int64 {
	return vr.reader.Size()
}
