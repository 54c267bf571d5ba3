package audio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

const defaultInputFormat = "pulse"

// FFmpegBackend captures through ffmpeg from a pulse or alsa device.
type FFmpegBackend struct {
	InputFormat string
	Source      string
	LogWriter   io.Writer
}

func (f *FFmpegBackend) Open(path string, format Format, notify Notify) (Capture, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if _, err := lookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	return newProcessCapture(path, ffmpegArgs(f.InputFormat, f.Source, format, path), nil, notify, f.LogWriter), nil
}

func ffmpegArgs(inputFormat, source string, format Format, path string) []string {
	if inputFormat == "" {
		inputFormat = defaultInputFormat
	}
	if source == "" {
		source = "default"
	}
	codec := format.Codec
	if codec == "" {
		codec = NewFormat(format.SampleRate, format.Channels, format.Container).Codec
	}
	return []string{
		"ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-f", inputFormat,
		"-i", source,
		"-ar", strconv.Itoa(format.SampleRate),
		"-ac", strconv.Itoa(format.Channels),
		"-c:a", codec,
		"-f", format.Container,
		"-y",
		path,
	}
}

// ListSources returns the devices ffmpeg reports for the input format.
func (f *FFmpegBackend) ListSources() ([]string, error) {
	inputFormat := f.InputFormat
	if inputFormat == "" {
		inputFormat = defaultInputFormat
	}
	cmd := exec.Command("ffmpeg", "-hide_banner", "-sources", inputFormat)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s sources: %w", inputFormat, err)
	}
	return parseFFmpegSources(output), nil
}

// parseFFmpegSources extracts device names from `ffmpeg -sources` output.
// Device lines look like "* alsa_input.pci [Built-in Audio]".
func parseFFmpegSources(output []byte) []string {
	var sources []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "* ")
		if line == "" || strings.HasPrefix(line, "Auto-detected sources") {
			continue
		}
		if i := strings.Index(line, " ["); i > 0 {
			line = line[:i]
		}
		sources = append(sources, line)
	}
	return sources
}

func (f *FFmpegBackend) ValidateSource(source string) error {
	if source == "" || source == "default" {
		return nil
	}
	sources, err := f.ListSources()
	if err != nil {
		return err
	}
	for _, s := range sources {
		if s == source {
			return nil
		}
	}
	return fmt.Errorf("source not found: %s", source)
}

func (f *FFmpegBackend) GetType() BackendType {
	return BackendTypeFFmpeg
}
