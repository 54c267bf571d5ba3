// Package controller implements the record/playback widget state machine.
//
// A Controller owns at most one playback session and at most one capture
// session. Every method must be called from a single owner goroutine;
// asynchronous completions from sessions and the refresh timer arrive as
// audio.Event values in the controller inbox and are applied by HandleEvent
// in arrival order.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/audiolibrelab/taperecorder/internal/audio"
)

const (
	DefaultRefreshInterval = 30 * time.Millisecond
	defaultInboxSize       = 64
)

// Display receives the projection of controller state.
type Display interface {
	SetPlayButtonLabel(label string)
	SetRecordButtonLabel(label string)
	SetTimeLabel(text string)
	SetRemainingLabel(text string)
	SetSliderRange(min, max float64)
	SetSliderValue(value float64)
	SetPlayEnabled(enabled bool)
	SetRecordEnabled(enabled bool)
	SetStatus(text string)
}

// PathAllocator hands out a fresh recording path for an instant.
type PathAllocator interface {
	NextPath(now time.Time) (string, error)
}

type Options struct {
	Recordings            PathAllocator
	Format                audio.Format
	RefreshInterval       time.Duration
	PausePlaybackOnRecord bool
	Clock                 func() time.Time
	InboxSize             int
}

type Controller struct {
	loader   audio.Loader
	capturer audio.Capturer
	display  Display
	opts     Options

	playback audio.Playback
	capture  audio.Capture
	timer    *RefreshTimer
	inbox    chan audio.Event
	done     chan struct{}

	// stopped captures that have not reported RecordingFinished yet
	finishing []audio.Capture

	// guards pending.Add against Close
	asyncMu  sync.Mutex
	shutdown bool
	pending  sync.WaitGroup

	recordEnabled bool
	status        string
	closed        bool
}

func New(loader audio.Loader, capturer audio.Capturer, display Display, opts Options) (*Controller, error) {
	if loader == nil || capturer == nil || display == nil {
		return nil, errors.New("controller requires a loader, a capturer and a display")
	}
	if opts.Recordings == nil {
		return nil, errors.New("controller requires a recordings allocator")
	}
	if opts.Format == (audio.Format{}) {
		opts.Format = audio.DefaultFormat
	}
	if err := opts.Format.Validate(); err != nil {
		return nil, err
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = defaultInboxSize
	}

	c := &Controller{
		loader:        loader,
		capturer:      capturer,
		display:       display,
		opts:          opts,
		inbox:         make(chan audio.Event, opts.InboxSize),
		done:          make(chan struct{}),
		recordEnabled: true,
	}
	c.timer = NewRefreshTimer(opts.RefreshInterval, c.Notify)
	c.RefreshDisplay()
	return c, nil
}

// Events returns the inbox. Owners that run their own loop read from it and
// pass each event to HandleEvent.
func (c *Controller) Events() <-chan audio.Event {
	return c.inbox
}

// Notify posts an event without blocking the caller. Ticks are dropped when
// the inbox is full since the next one carries the same information.
func (c *Controller) Notify(ev audio.Event) {
	select {
	case c.inbox <- ev:
		return
	default:
	}

	if _, ok := ev.(audio.Tick); ok {
		return
	}
	slog.Debug("Controller inbox full, delivering event asynchronously", "event", fmt.Sprintf("%T", ev))
	c.deliver(ev, nil)
}

// deliver posts ev from a new goroutine. If the controller closes first,
// discard runs instead.
func (c *Controller) deliver(ev audio.Event, discard func()) {
	c.asyncMu.Lock()
	if c.shutdown {
		c.asyncMu.Unlock()
		if discard != nil {
			discard()
		}
		return
	}
	c.pending.Add(1)
	c.asyncMu.Unlock()

	go func() {
		defer c.pending.Done()
		select {
		case c.inbox <- ev:
		case <-c.done:
			if discard != nil {
				discard()
			}
		}
	}()
}

// LoadAudio opens source for playback. On failure the current session is
// left untouched and a *LoadError is returned.
func (c *Controller) LoadAudio(source string) error {
	if c.closed {
		return ErrClosed
	}

	slog.Debug("Loading audio", "source", source)
	pb, err := c.loader.Load(source, c.Notify)
	if err != nil {
		return c.loadFailed(source, err)
	}
	c.install(pb)
	return nil
}

// LoadAudioAsync decodes source on another goroutine and installs it when
// the resulting LoadFinished event is handled. Failures surface in the
// status line only.
func (c *Controller) LoadAudioAsync(source string) {
	if c.closed {
		return
	}

	slog.Debug("Loading audio in background", "source", source)
	c.asyncMu.Lock()
	c.pending.Add(1)
	c.asyncMu.Unlock()

	go func() {
		defer c.pending.Done()
		pb, err := c.loader.Load(source, c.Notify)
		c.deliver(audio.LoadFinished{Source: source, Playback: pb, Err: err}, func() {
			if pb != nil {
				_ = pb.Close()
			}
		})
	}()
}

func (c *Controller) install(pb audio.Playback) {
	c.timer.Cancel()
	c.releasePlayback()
	c.playback = pb
	c.status = ""
	slog.Info("Audio loaded", "source", pb.Source(), "duration", pb.Duration())
	c.RefreshDisplay()
}

func (c *Controller) loadFailed(source string, err error) error {
	loadErr := &LoadError{Source: source, Err: err}
	slog.Error("Failed to load audio", "source", source, "error", err)
	c.status = loadErr.Error()
	c.RefreshDisplay()
	return loadErr
}

// Play starts or resumes playback and the refresh timer. Without a loaded
// session it does nothing.
func (c *Controller) Play() error {
	if c.closed {
		return ErrClosed
	}
	if c.playback == nil {
		slog.Debug("Play ignored, no audio loaded")
		return nil
	}

	if err := c.playback.Play(); err != nil {
		slog.Error("Failed to start playback", "source", c.playback.Source(), "error", err)
		c.status = fmt.Sprintf("play %s: %v", c.playback.Source(), err)
		c.RefreshDisplay()
		return fmt.Errorf("failed to start playback: %w", err)
	}

	c.timer.Start()
	c.RefreshDisplay()
	return nil
}

func (c *Controller) Pause() {
	if c.playback != nil {
		c.playback.Pause()
	}
	c.timer.Cancel()
	c.RefreshDisplay()
}

func (c *Controller) PlayPause() error {
	if c.IsPlaying() {
		c.Pause()
		return nil
	}
	return c.Play()
}

// Record starts a new capture into a freshly named file. Calling it while
// already recording is a no-op.
func (c *Controller) Record() error {
	if c.closed {
		return ErrClosed
	}
	if c.IsRecording() {
		slog.Debug("Record ignored, already recording", "path", c.capture.Path())
		return nil
	}
	c.capture = nil

	if c.opts.PausePlaybackOnRecord && c.IsPlaying() {
		slog.Debug("Pausing playback before recording")
		c.Pause()
	}

	path, err := c.opts.Recordings.NextPath(c.opts.Clock())
	if err != nil {
		return c.recordFailed(&RecordError{Op: "allocate", Err: err})
	}

	capture, err := c.capturer.Open(path, c.opts.Format, c.Notify)
	if err != nil {
		return c.recordFailed(&RecordError{Path: path, Op: "open", Err: err})
	}
	if err := capture.Start(); err != nil {
		return c.recordFailed(&RecordError{Path: path, Op: "start", Err: err})
	}

	c.capture = capture
	c.recordEnabled = true
	c.status = ""
	slog.Info("Recording started", "path", path, "format", c.opts.Format.String())
	c.RefreshDisplay()
	return nil
}

// Stop asks the active capture to finish and returns without waiting for it.
// The new file is loaded for playback once the capture reports
// RecordingFinished.
func (c *Controller) Stop() error {
	if !c.IsRecording() {
		c.capture = nil
		return nil
	}

	capture := c.capture
	c.capture = nil
	c.finishing = append(c.finishing, capture)
	err := capture.Stop()
	c.RefreshDisplay()
	if err != nil {
		recErr := &RecordError{Path: capture.Path(), Op: "stop", Err: err}
		slog.Error("Failed to stop recording", "path", capture.Path(), "error", err)
		c.status = recErr.Error()
		c.RefreshDisplay()
		return recErr
	}

	slog.Info("Recording stopping", "path", capture.Path())
	return nil
}

func (c *Controller) RecordToggle() error {
	if c.IsRecording() {
		return c.Stop()
	}
	return c.Record()
}

func (c *Controller) IsPlaying() bool {
	return c.playback != nil && c.playback.IsPlaying()
}

func (c *Controller) IsRecording() bool {
	return c.capture != nil && c.capture.IsRecording()
}

// RecordingPath is the file of the active capture, or "" when idle.
func (c *Controller) RecordingPath() string {
	if c.capture == nil {
		return ""
	}
	return c.capture.Path()
}

// Playback returns the loaded session or nil.
func (c *Controller) Playback() audio.Playback {
	return c.playback
}

func (c *Controller) TimerActive() bool {
	return c.timer.Active()
}

// HandleEvent applies one inbox event.
func (c *Controller) HandleEvent(ev audio.Event) {
	if c.closed {
		if loaded, ok := ev.(audio.LoadFinished); ok && loaded.Playback != nil {
			_ = loaded.Playback.Close()
		}
		return
	}

	switch e := ev.(type) {
	case audio.Tick:
		c.RefreshDisplay()

	case audio.PlaybackFinished:
		// A replaced session may still report completion.
		if c.IsPlaying() {
			slog.Debug("Ignoring stale playback completion", "source", e.Source)
			return
		}
		slog.Info("Playback finished", "source", e.Source, "success", e.Success)
		c.timer.Cancel()
		c.RefreshDisplay()

	case audio.RecordingFinished:
		if c.capture != nil && c.capture.Path() == e.Path {
			c.capture = nil
		}
		c.forget(e.Path)
		if !e.Success {
			slog.Warn("Recording finished unsuccessfully", "path", e.Path)
			c.status = fmt.Sprintf("recording %s failed", e.Path)
			c.RefreshDisplay()
			return
		}
		slog.Info("Recording finished", "path", e.Path)
		c.LoadAudioAsync(e.Path)

	case audio.LoadFinished:
		if e.Err != nil {
			_ = c.loadFailed(e.Source, e.Err)
			return
		}
		c.install(e.Playback)

	case audio.DecodeFailed:
		slog.Error("Decode error", "source", e.Source, "error", e.Err)
		c.status = e.String()
		c.RefreshDisplay()

	case audio.EncodeFailed:
		slog.Error("Encode error", "path", e.Path, "error", e.Err)
		c.status = e.String()
		c.RefreshDisplay()

	default:
		slog.Warn("Unknown controller event", "event", fmt.Sprintf("%T", ev))
	}
}

// Drain applies all queued events without blocking and returns how many
// were handled.
func (c *Controller) Drain() int {
	n := 0
	for {
		select {
		case ev := <-c.inbox:
			c.HandleEvent(ev)
			n++
		default:
			return n
		}
	}
}

// Run applies inbox events until ctx is done or until returns true for an
// event that has just been handled. A nil until never stops the loop.
func (c *Controller) Run(ctx context.Context, until func(audio.Event) bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.inbox:
			c.HandleEvent(ev)
			if until != nil && until(ev) {
				return nil
			}
		}
	}
}

// RefreshDisplay projects the current session state onto the display.
func (c *Controller) RefreshDisplay() {
	var elapsed, total time.Duration
	if c.playback != nil {
		elapsed = c.playback.CurrentTime()
		total = c.playback.Duration()
	}
	if elapsed > total {
		elapsed = total
	}

	if c.IsPlaying() {
		c.display.SetPlayButtonLabel("Pause")
	} else {
		c.display.SetPlayButtonLabel("Play")
	}
	if c.IsRecording() {
		c.display.SetRecordButtonLabel("Stop")
	} else {
		c.display.SetRecordButtonLabel("Record")
	}

	c.display.SetTimeLabel(FormatClock(elapsed))
	c.display.SetRemainingLabel("-" + FormatClock(total-elapsed))
	c.display.SetSliderRange(0, total.Seconds())
	c.display.SetSliderValue(elapsed.Seconds())
	c.display.SetPlayEnabled(c.playback != nil)
	c.display.SetRecordEnabled(c.recordEnabled)
	c.display.SetStatus(c.status)
}

// Close tears down both sessions and the timer. Both state machines end in
// their initial state.
func (c *Controller) Close() error {
	if c.closed {
		return nil
	}

	c.timer.Cancel()

	var errs []error
	if c.IsRecording() {
		c.finishing = append(c.finishing, c.capture)
		if err := c.capture.Stop(); err != nil {
			errs = append(errs, &RecordError{Path: c.capture.Path(), Op: "stop", Err: err})
		}
	}
	c.capture = nil

	for _, capture := range c.finishing {
		if err := waitFinalized(capture); err != nil {
			errs = append(errs, &RecordError{Path: capture.Path(), Op: "stop", Err: err})
		}
	}
	c.finishing = nil

	if err := c.releasePlayback(); err != nil {
		errs = append(errs, err)
	}
	c.closed = true

	c.asyncMu.Lock()
	c.shutdown = true
	close(c.done)
	c.asyncMu.Unlock()
	c.pending.Wait()

	// release sessions loaded in the background that nobody will install
	c.Drain()

	return errors.Join(errs...)
}

// waiter is implemented by captures that can block until the file is
// finalized.
type waiter interface {
	Wait() error
}

// waitFinalized blocks until a stopped capture has written its file. Only
// teardown waits, so the file is not cut off when the process exits.
func waitFinalized(capture audio.Capture) error {
	if w, ok := capture.(waiter); ok {
		return w.Wait()
	}
	return nil
}

func (c *Controller) forget(path string) {
	kept := c.finishing[:0]
	for _, capture := range c.finishing {
		if capture.Path() != path {
			kept = append(kept, capture)
		}
	}
	c.finishing = kept
}

func (c *Controller) recordFailed(err *RecordError) error {
	slog.Error("Failed to start recording", "op", err.Op, "path", err.Path, "error", err.Err)
	c.recordEnabled = false
	c.status = err.Error()
	c.RefreshDisplay()
	return err
}

func (c *Controller) releasePlayback() error {
	if c.playback == nil {
		return nil
	}
	pb := c.playback
	c.playback = nil
	pb.Pause()
	if err := pb.Close(); err != nil {
		slog.Warn("Failed to close playback session", "source", pb.Source(), "error", err)
		return fmt.Errorf("failed to close %s: %w", pb.Source(), err)
	}
	return nil
}
