package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestMergeConfigs_SelectionAndFallback(t *testing.T) {
	base := Default()
	base.Output.Directory = "~/Audio/Default"

	profile := &Config{
		Audio: AudioConfig{
			SampleRate: 48000, // Override sample rate
			Backend:    "pipewire",
		},
		Playback: PlaybackConfig{
			Volume: floatPtr(0), // Explicit zero is still an override
		},
		Recording: RecordingConfig{
			PausePlayback: boolPtr(false),
		},
		Output: OutputConfig{
			Directory: "~/Audio/Studio",
		},
	}

	result := mergeConfigs(base, profile)

	if result.Audio.SampleRate != 48000 {
		t.Errorf("Expected sample rate 48000, got %d", result.Audio.SampleRate)
	}
	if result.Audio.Channels != 1 {
		t.Errorf("Expected inherited channel count 1, got %d", result.Audio.Channels)
	}
	if result.Audio.Backend != "pipewire" {
		t.Errorf("Expected backend 'pipewire', got %s", result.Audio.Backend)
	}
	if result.Audio.Source != "default" {
		t.Errorf("Expected inherited source 'default', got %s", result.Audio.Source)
	}
	if result.PlaybackVolume() != 0 {
		t.Errorf("Expected explicit volume 0, got %.2f", result.PlaybackVolume())
	}
	if result.PausePlaybackOnRecord() {
		t.Error("Expected pause_playback override to be false")
	}
	if result.Output.Directory != "~/Audio/Studio" {
		t.Errorf("Expected directory '~/Audio/Studio', got %s", result.Output.Directory)
	}
	if result.Output.Format != "caf" {
		t.Errorf("Expected inherited format 'caf', got %s", result.Output.Format)
	}

	if result.Inheritance == nil {
		t.Fatal("Inheritance tracking not initialized")
	}
	if result.Inheritance.Audio.SampleRate != "profile-specific" {
		t.Errorf("Expected sample rate to be profile-specific, got %s", result.Inheritance.Audio.SampleRate)
	}
	if result.Inheritance.Audio.Channels != "default" {
		t.Errorf("Expected channels to come from defaults, got %s", result.Inheritance.Audio.Channels)
	}
	if result.Inheritance.Playback.Volume != "profile-specific" {
		t.Errorf("Expected volume to be profile-specific (explicitly set to 0), got %s", result.Inheritance.Playback.Volume)
	}
	if result.Inheritance.Output.Format != "default" {
		t.Errorf("Expected format to come from defaults, got %s", result.Inheritance.Output.Format)
	}

	// base must not be mutated through the shared inheritance record
	if base.Inheritance.Audio.SampleRate != "default" {
		t.Errorf("Base inheritance was mutated: %s", base.Inheritance.Audio.SampleRate)
	}
}

func TestMergeConfigs_NilProfile(t *testing.T) {
	base := Default()
	result := mergeConfigs(base, nil)

	if result.Audio != base.Audio {
		t.Errorf("Audio config not preserved: %+v", result.Audio)
	}
	if result.Output != base.Output {
		t.Errorf("Output config not preserved: %+v", result.Output)
	}
}

func TestLoadWithProfile_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	cfg, err := LoadWithProfile(path, "")
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got error: %v", err)
	}

	if cfg.Audio.SampleRate != 44100 || cfg.Audio.Channels != 1 {
		t.Errorf("Expected 44100Hz mono defaults, got %+v", cfg.Audio)
	}
	if cfg.Playback.RefreshInterval != 30*time.Millisecond {
		t.Errorf("Expected 30ms refresh interval, got %s", cfg.Playback.RefreshInterval)
	}
	if cfg.Output.Format != "caf" {
		t.Errorf("Expected caf output format, got %s", cfg.Output.Format)
	}
	if !cfg.PausePlaybackOnRecord() {
		t.Error("Expected pause_playback to default to true")
	}
}

func TestLoadWithProfile_MissingFileUnknownProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := LoadWithProfile(path, "studio"); err == nil {
		t.Error("Expected error for named profile without a config file")
	}
}

func TestLoadWithProfile_ProfileOverDefault(t *testing.T) {
	content := `
active_config: studio

configs:
  default:
    audio:
      backend: ffmpeg
      input_format: alsa
    output:
      directory: ~/Recordings
  studio:
    audio:
      source: hw:1,0
    playback:
      refresh_interval: 100ms
      volume: 0.5
`
	configFile := createTempConfig(t, content)

	cfg, err := LoadWithProfile(configFile, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Profile != "studio" {
		t.Errorf("Expected active profile 'studio', got %s", cfg.Profile)
	}
	if cfg.Audio.Backend != "ffmpeg" || cfg.Audio.InputFormat != "alsa" {
		t.Errorf("Expected ffmpeg/alsa inherited from default profile, got %+v", cfg.Audio)
	}
	if cfg.Audio.Source != "hw:1,0" {
		t.Errorf("Expected source 'hw:1,0', got %s", cfg.Audio.Source)
	}
	if cfg.Playback.RefreshInterval != 100*time.Millisecond {
		t.Errorf("Expected 100ms refresh interval, got %s", cfg.Playback.RefreshInterval)
	}
	if cfg.PlaybackVolume() != 0.5 {
		t.Errorf("Expected volume 0.5, got %.2f", cfg.PlaybackVolume())
	}

	home, _ := os.UserHomeDir()
	if cfg.Output.Directory != filepath.Join(home, "Recordings") {
		t.Errorf("Expected expanded directory, got %s", cfg.Output.Directory)
	}

	if cfg.Inheritance.Audio.Backend != "inherited" {
		t.Errorf("Expected backend to be inherited, got %s", cfg.Inheritance.Audio.Backend)
	}
	if cfg.Inheritance.Audio.Source != "profile-specific" {
		t.Errorf("Expected source to be profile-specific, got %s", cfg.Inheritance.Audio.Source)
	}
	if cfg.Inheritance.Audio.SampleRate != "default" {
		t.Errorf("Expected sample rate from defaults, got %s", cfg.Inheritance.Audio.SampleRate)
	}
}

func TestLoadWithProfile_FlagOverridesActiveConfig(t *testing.T) {
	content := `
active_config: studio
configs:
  default: {}
  studio:
    audio:
      sample_rate: 48000
  field:
    audio:
      sample_rate: 22050
`
	configFile := createTempConfig(t, content)

	cfg, err := LoadWithProfile(configFile, "field")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Audio.SampleRate != 22050 {
		t.Errorf("Expected sample rate 22050 from 'field' profile, got %d", cfg.Audio.SampleRate)
	}
}

func TestLoadWithProfile_SingleProfileFile(t *testing.T) {
	content := `
audio:
  channels: 2
output:
  format: wav
`
	configFile := createTempConfig(t, content)

	cfg, err := LoadWithProfile(configFile, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Audio.Channels != 2 {
		t.Errorf("Expected 2 channels, got %d", cfg.Audio.Channels)
	}
	if cfg.Output.Format != "wav" {
		t.Errorf("Expected wav format, got %s", cfg.Output.Format)
	}
}

func TestLoadWithProfile_UnknownProfile(t *testing.T) {
	configFile := createTempConfig(t, "configs:\n  default: {}\n")

	if _, err := LoadWithProfile(configFile, "nope"); err == nil {
		t.Error("Expected error for unknown profile")
	}
}

func TestUpdateActiveConfig(t *testing.T) {
	content := `
active_config: default
configs:
  default: {}
  studio:
    audio:
      sample_rate: 48000
`
	configFile := createTempConfig(t, content)

	if err := UpdateActiveConfig(configFile, "studio"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	root, err := ReadRoot(configFile)
	if err != nil {
		t.Fatalf("Expected no error re-reading, got: %v", err)
	}
	if root.ActiveConfig != "studio" {
		t.Errorf("Expected active_config 'studio', got %s", root.ActiveConfig)
	}

	if err := UpdateActiveConfig(configFile, "missing"); err == nil {
		t.Error("Expected error switching to an unknown profile")
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	if got := expandPath("~/x/y"); got != filepath.Join(home, "x", "y") {
		t.Errorf("Expected home expansion, got %s", got)
	}
	if got := expandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("Expected absolute path unchanged, got %s", got)
	}
	if got := expandPath(""); got != "" {
		t.Errorf("Expected empty path unchanged, got %s", got)
	}
}

func TestDocumentsDir_XDG(t *testing.T) {
	t.Setenv("XDG_DOCUMENTS_DIR", "/srv/docs")

	if got := DocumentsDir(); got != filepath.Join("/srv/docs", "TapeRecorder") {
		t.Errorf("Expected XDG documents dir, got %s", got)
	}
}
