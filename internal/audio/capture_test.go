package audio

import (
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) notify(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) snapshot() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// shellCapture runs script in place of an encoder. The script sees the
// output path as $1.
func shellCapture(t *testing.T, script string, log *eventLog) *processCapture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "take.caf")
	argv := []string{"sh", "-c", script, "sh", path}
	return newProcessCapture(path, argv, nil, log.notify, nil)
}

func waitFinished(t *testing.T, log *eventLog) RecordingFinished {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, ev := range log.snapshot() {
			if finished, ok := ev.(RecordingFinished); ok {
				return finished
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("RecordingFinished was not emitted")
	return RecordingFinished{}
}

func TestProcessCapture_StopFinalizesRecording(t *testing.T) {
	requireShell(t)
	log := &eventLog{}
	c := shellCapture(t, `head -c 4096 /dev/zero > "$1"; trap 'exit 0' INT; while :; do sleep 0.05; done`, log)

	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !c.IsRecording() {
		t.Fatal("Expected capture to be recording after Start")
	}
	time.Sleep(100 * time.Millisecond)

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	finished := waitFinished(t, log)
	if !finished.Success || finished.Path != c.Path() {
		t.Errorf("Unexpected completion: %+v", finished)
	}
	if err := c.Wait(); err != nil {
		t.Errorf("Wait returned: %v", err)
	}
	if c.IsRecording() {
		t.Error("Expected capture to be idle after it finished")
	}

	count := 0
	for _, ev := range log.snapshot() {
		if _, ok := ev.(RecordingFinished); ok {
			count++
		}
		if _, ok := ev.(EncodeFailed); ok {
			t.Errorf("Unexpected EncodeFailed: %v", ev)
		}
	}
	if count != 1 {
		t.Errorf("Expected exactly one RecordingFinished, got %d", count)
	}

	if err := c.Stop(); err != nil {
		t.Errorf("Second Stop should be a no-op, got: %v", err)
	}
}

func TestProcessCapture_TooSmallOutput(t *testing.T) {
	requireShell(t)
	log := &eventLog{}
	c := shellCapture(t, `printf caff > "$1"; trap 'exit 0' INT; while :; do sleep 0.05; done`, log)

	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if finished := waitFinished(t, log); finished.Success {
		t.Error("Expected unsuccessful completion")
	}
	if err := c.Wait(); err == nil || !strings.Contains(err.Error(), "file too small") {
		t.Errorf("Expected 'file too small' error, got: %v", err)
	}
}

func TestProcessCapture_StopReturnsBeforeEncoderExits(t *testing.T) {
	requireShell(t)
	log := &eventLog{}
	c := shellCapture(t, `trap '' INT; exec sleep 30`, log)
	c.stopTimeout = 300 * time.Millisecond

	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Stop blocked for %v", elapsed)
	}
	if !c.IsRecording() {
		t.Error("Expected encoder to still be running right after Stop")
	}

	// the encoder ignores SIGINT, so it is killed after the grace period
	if finished := waitFinished(t, log); finished.Success {
		t.Error("Expected unsuccessful completion without an output file")
	}
	if err := c.Stop(); err != nil {
		t.Errorf("Stop after finish should be a no-op, got: %v", err)
	}
}

func TestProcessCapture_KillReachesChildProcesses(t *testing.T) {
	requireShell(t)
	log := &eventLog{}
	// the background sleep keeps stderr open after the shell dies
	c := shellCapture(t, `trap '' INT; sleep 30 & sleep 30`, log)
	c.stopTimeout = 200 * time.Millisecond

	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.Wait() }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("capture did not finish after the grace period")
	}
	waitFinished(t, log)
}

func TestProcessCapture_UnexpectedExit(t *testing.T) {
	requireShell(t)
	log := &eventLog{}
	c := shellCapture(t, `echo "device busy" >&2; exit 1`, log)

	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	finished := waitFinished(t, log)
	if finished.Success {
		t.Error("Expected unsuccessful completion")
	}
	if c.IsRecording() {
		t.Error("Expected capture to be idle after process exit")
	}

	var encodeErr *EncodeFailed
	for _, ev := range log.snapshot() {
		if e, ok := ev.(EncodeFailed); ok {
			encodeErr = &e
		}
	}
	if encodeErr == nil {
		t.Fatal("Expected EncodeFailed event")
	}
	if !strings.Contains(encodeErr.Err.Error(), "device busy") {
		t.Errorf("Expected stderr in error, got: %v", encodeErr.Err)
	}
}

func TestProcessCapture_StartTwice(t *testing.T) {
	requireShell(t)
	log := &eventLog{}
	c := shellCapture(t, `head -c 4096 /dev/zero > "$1"; trap 'exit 0' INT; while :; do sleep 0.05; done`, log)

	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer c.Stop()

	if err := c.Start(); err == nil {
		t.Error("Expected error on second Start")
	}
}

func TestProcessCapture_MissingBinary(t *testing.T) {
	c := newProcessCapture("/tmp/none.caf", []string{"definitely-not-a-real-encoder"}, nil, nil, nil)

	if err := c.Start(); err == nil {
		t.Error("Expected error for missing binary")
	}
	if c.IsRecording() {
		t.Error("Expected capture to stay idle")
	}
}

func TestExitError(t *testing.T) {
	if err := exitError(nil, false); err != nil {
		t.Errorf("Expected nil for clean exit, got: %v", err)
	}
}
