package controller

import (
	"time"

	"github.com/audiolibrelab/taperecorder/internal/audio"
)

// RefreshTimer posts audio.Tick events at a fixed interval while active.
// Start and Cancel must be called from the goroutine that owns the
// controller; ticks are delivered through the controller inbox.
type RefreshTimer struct {
	interval time.Duration
	post     func(audio.Event)
	stop     chan struct{}
}

func NewRefreshTimer(interval time.Duration, post func(audio.Event)) *RefreshTimer {
	return &RefreshTimer{interval: interval, post: post}
}

// Start cancels any running ticker and starts a new one.
func (t *RefreshTimer) Start() {
	t.Cancel()

	stop := make(chan struct{})
	t.stop = stop

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				t.post(audio.Tick{})
			}
		}
	}()
}

// Cancel stops the ticker. Cancelling an inactive timer is a no-op.
func (t *RefreshTimer) Cancel() {
	if t.stop == nil {
		return
	}
	close(t.stop)
	t.stop = nil
}

func (t *RefreshTimer) Active() bool {
	return t.stop != nil
}
