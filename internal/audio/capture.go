package audio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const (
	// stopTimeout is how long a capture process gets to finalize the file
	// after SIGINT before it is killed.
	stopTimeout = 5 * time.Second
	// minOutputSize is the smallest file accepted as a recording. Anything
	// below is a bare container header.
	minOutputSize = 128
)

// processCapture records into a file by running an external encoder process.
// Exactly one RecordingFinished event is emitted per started capture.
type processCapture struct {
	path      string
	argv      []string
	env       []string
	notify    Notify
	logWriter io.Writer
	minSize   int64

	// grace period between SIGINT and kill
	stopTimeout time.Duration

	mu        sync.Mutex
	cmd       *exec.Cmd
	recording bool
	stopping  bool
	started   bool
	done      chan struct{}
	result    error
	stderrBuf strings.Builder
}

func newProcessCapture(path string, argv, env []string, notify Notify, logWriter io.Writer) *processCapture {
	if logWriter == nil {
		logWriter = io.Discard
	}
	if notify == nil {
		notify = func(Event) {}
	}

	return &processCapture{
		path:        path,
		argv:        argv,
		env:         env,
		notify:      notify,
		logWriter:   logWriter,
		minSize:     minOutputSize,
		stopTimeout: stopTimeout,
	}
}

func (c *processCapture) Path() string {
	return c.path
}

func (c *processCapture) IsRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// Start launches the encoder process. A capture can be started once.
func (c *processCapture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("capture for %s already started", c.path)
	}

	slog.Info("Starting capture process", "command", strings.Join(c.argv, " "))

	cmd := exec.Command(c.argv[0], c.argv[1:]...)
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}
	cmd.Stdout = c.logWriter
	detach(cmd)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", c.argv[0], err)
	}

	c.cmd = cmd
	c.started = true
	c.recording = true
	c.done = make(chan struct{})

	outputDone := make(chan struct{})
	go c.readOutput(stderr, outputDone)
	go c.watch(outputDone)

	return nil
}

// Stop asks the encoder to finalize the file and returns at once. The
// outcome arrives as RecordingFinished; an encoder that ignores SIGINT is
// killed after the grace period.
func (c *processCapture) Stop() error {
	c.mu.Lock()
	if !c.recording || c.stopping {
		c.mu.Unlock()
		return nil
	}
	c.stopping = true
	proc := c.cmd.Process
	done := c.done
	c.mu.Unlock()

	slog.Debug("Sending SIGINT to capture process", "path", c.path)
	if err := proc.Signal(os.Interrupt); err != nil {
		slog.Debug("Failed to send interrupt to capture process, killing", "error", err)
		_ = killGroup(proc)
		return nil
	}

	go func() {
		timer := time.NewTimer(c.stopTimeout)
		defer timer.Stop()

		select {
		case <-done:
		case <-timer.C:
			slog.Warn("Capture process did not exit within timeout, force killing", "path", c.path)
			_ = killGroup(proc)
		}
	}()

	return nil
}

// Wait blocks until the encoder has exited and returns the outcome also
// reported by RecordingFinished.
func (c *processCapture) Wait() error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return nil
	}
	<-done
	return c.result
}

// watch waits for the process, validates the output and emits the
// completion event.
func (c *processCapture) watch(outputDone <-chan struct{}) {
	<-outputDone
	waitErr := c.cmd.Wait()

	c.mu.Lock()
	stopping := c.stopping
	c.recording = false
	stderr := c.stderrBuf.String()
	c.mu.Unlock()

	result := exitError(waitErr, stopping)
	if result != nil {
		slog.Debug("Capture process stderr", "output", stderr)
	}
	if !stopping {
		cause := errors.Join(waitErr, lastLine(stderr))
		if cause == nil {
			cause = errors.New("exit status 0")
		}
		unexpected := fmt.Errorf("capture process exited before stop: %w", cause)
		slog.Error("Capture process exited unexpectedly", "path", c.path, "error", unexpected)
		c.notify(EncodeFailed{Path: c.path, Err: unexpected})
		if result == nil {
			result = unexpected
		}
	}
	if result == nil {
		result = validateOutputFile(c.path, c.minSize)
	}

	c.mu.Lock()
	c.result = result
	c.mu.Unlock()
	c.notify(RecordingFinished{Path: c.path, Success: result == nil})
	close(c.done)
}

func (c *processCapture) readOutput(pipe io.ReadCloser, done chan<- struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		line := scanner.Text()
		c.mu.Lock()
		c.stderrBuf.WriteString(line + "\n")
		c.mu.Unlock()
		fmt.Fprintln(c.logWriter, line)
		slog.Debug("Capture output", "line", line)
	}
}

// exitError interprets the encoder exit status. Exits caused by our own
// interrupt are not failures.
func exitError(err error, stopping bool) error {
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if stopping && errors.As(err, &exitErr) {
		// ffmpeg exits with 255 after a graceful interrupt
		if exitErr.ExitCode() == 255 {
			return nil
		}
		if exitErr.ProcessState != nil {
			state := exitErr.ProcessState.String()
			if state == "signal: interrupt" || state == "signal: killed" {
				return nil
			}
		}
	}

	return fmt.Errorf("capture process failed: %w", err)
}

func validateOutputFile(path string, minSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("recording file not found: %s", path)
	}
	if info.Size() < minSize {
		return fmt.Errorf("recording failed: file too small (%d bytes)", info.Size())
	}

	slog.Debug("Recording output validated", "path", path, "size", info.Size())
	return nil
}

func lastLine(output string) error {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 || lines[len(lines)-1] == "" {
		return nil
	}
	return errors.New(lines[len(lines)-1])
}
