package audio

import (
	"errors"
	"strings"
	"testing"

	"github.com/audiolibrelab/taperecorder/internal/config"
)

func withLookPath(t *testing.T, found ...string) {
	t.Helper()
	orig := lookPath
	lookPath = func(name string) (string, error) {
		for _, f := range found {
			if f == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("executable file not found in $PATH")
	}
	t.Cleanup(func() { lookPath = orig })
}

func TestDetermineBackend_AutoPrefersPipeWire(t *testing.T) {
	withLookPath(t, "ffmpeg", "pw-record")

	got, err := determineBackend("auto")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != BackendTypePipeWire {
		t.Errorf("Expected pipewire, got %s", got)
	}
}

func TestDetermineBackend_AutoFallsBackToFFmpeg(t *testing.T) {
	withLookPath(t, "ffmpeg")

	got, err := determineBackend("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != BackendTypeFFmpeg {
		t.Errorf("Expected ffmpeg, got %s", got)
	}
}

func TestDetermineBackend_NothingInstalled(t *testing.T) {
	withLookPath(t)

	if _, err := determineBackend("auto"); err == nil {
		t.Error("Expected error when no backend is installed")
	}
}

func TestDetermineBackend_Explicit(t *testing.T) {
	withLookPath(t)

	got, err := determineBackend("FFmpeg")
	if err != nil || got != BackendTypeFFmpeg {
		t.Errorf("Expected ffmpeg, got %s (%v)", got, err)
	}

	if _, err := determineBackend("jack"); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestNewBackend_FFmpegCarriesConfig(t *testing.T) {
	withLookPath(t, "ffmpeg")

	cfg := config.Default()
	cfg.Audio.Backend = "ffmpeg"
	cfg.Audio.InputFormat = "alsa"
	cfg.Audio.Source = "hw:1"

	backend, err := NewBackend(cfg, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ff, ok := backend.(*FFmpegBackend)
	if !ok {
		t.Fatalf("Expected *FFmpegBackend, got %T", backend)
	}
	if ff.InputFormat != "alsa" || ff.Source != "hw:1" {
		t.Errorf("Backend did not carry config: %+v", ff)
	}
}

func TestOpen_MissingBinary(t *testing.T) {
	withLookPath(t)

	backend := &FFmpegBackend{InputFormat: "pulse"}
	if _, err := backend.Open("/tmp/x.caf", DefaultFormat, nil); err == nil {
		t.Error("Expected error when ffmpeg is missing")
	}
}

func TestOpen_InvalidFormat(t *testing.T) {
	withLookPath(t, "pw-record")

	backend := &PipeWireBackend{}
	_, err := backend.Open("/tmp/x.caf", Format{SampleRate: 44100, Channels: 6, Container: "caf"}, nil)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat, got: %v", err)
	}
}

func TestFFmpegArgs(t *testing.T) {
	got := strings.Join(ffmpegArgs("pulse", "", DefaultFormat, "/tmp/a.caf"), " ")
	want := "ffmpeg -hide_banner -loglevel error -f pulse -i default -ar 44100 -ac 1 -c:a pcm_s16le -f caf -y /tmp/a.caf"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestParseFFmpegSources(t *testing.T) {
	output := []byte(`Auto-detected sources for pulse:
* alsa_input.pci-0000_00_1f.3.analog-stereo [Built-in Audio Analog Stereo] (none)
  alsa_output.pci-0000_00_1f.3.analog-stereo.monitor [Monitor of Built-in Audio] (none)
`)

	sources := parseFFmpegSources(output)
	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d: %v", len(sources), sources)
	}
	if sources[0] != "alsa_input.pci-0000_00_1f.3.analog-stereo" {
		t.Errorf("Unexpected first source: %q", sources[0])
	}
}
