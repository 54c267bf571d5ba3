package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	inheritedDefault  = "default"
	inheritedProfile  = "inherited"
	profileSpecific   = "profile-specific"
	defaultProfile    = "default"
	envPrefix         = "TAPERECORDER"
	defaultRefreshStr = "30ms"
)

// RootConfig is the on-disk layout: named profiles plus the active one.
type RootConfig struct {
	ActiveConfig string             `mapstructure:"active_config" yaml:"active_config"`
	Configs      map[string]*Config `mapstructure:"configs" yaml:"configs"`
}

type Config struct {
	Audio     AudioConfig     `mapstructure:"audio" yaml:"audio"`
	Playback  PlaybackConfig  `mapstructure:"playback" yaml:"playback"`
	Recording RecordingConfig `mapstructure:"recording" yaml:"recording"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`

	// Name of the profile this config was resolved from
	Profile string `mapstructure:"-" yaml:"-"`
	// Internal field to track inheritance information for info command
	Inheritance *InheritanceInfo `mapstructure:"-" yaml:"-"`
}

type InheritanceInfo struct {
	Audio struct {
		SampleRate  string
		Channels    string
		Backend     string
		Source      string
		InputFormat string
	}
	Playback struct {
		Asset           string
		Volume          string
		RefreshInterval string
		SampleRate      string
	}
	Recording struct {
		PausePlayback string
	}
	Output struct {
		Directory string
		Format    string
	}
}

type AudioConfig struct {
	SampleRate  int    `mapstructure:"sample_rate" yaml:"sample_rate" validate:"omitempty,min=8000,max=192000"`
	Channels    int    `mapstructure:"channels" yaml:"channels" validate:"omitempty,oneof=1 2"`
	Backend     string `mapstructure:"backend" yaml:"backend" validate:"omitempty,oneof=auto ffmpeg pipewire"`
	Source      string `mapstructure:"source" yaml:"source"`             // capture device or PipeWire target
	InputFormat string `mapstructure:"input_format" yaml:"input_format"` // ffmpeg -f input: pulse, alsa
}

type PlaybackConfig struct {
	Asset           string        `mapstructure:"asset" yaml:"asset"`
	Volume          *float64      `mapstructure:"volume" yaml:"volume,omitempty" validate:"omitempty,gte=0,lte=1"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval" validate:"omitempty,min=1ms"`
	SampleRate      int           `mapstructure:"sample_rate" yaml:"sample_rate" validate:"omitempty,oneof=44100 48000"`
}

type RecordingConfig struct {
	PausePlayback *bool `mapstructure:"pause_playback" yaml:"pause_playback,omitempty"`
}

type OutputConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
	Format    string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=caf wav flac"`
}

var validate = validator.New()

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	volume := 1.0
	pause := true
	refresh, _ := time.ParseDuration(defaultRefreshStr)

	cfg := &Config{
		Audio: AudioConfig{
			SampleRate:  44100,
			Channels:    1,
			Backend:     "auto",
			Source:      "default",
			InputFormat: "pulse",
		},
		Playback: PlaybackConfig{
			Volume:          &volume,
			RefreshInterval: refresh,
			SampleRate:      44100,
		},
		Recording: RecordingConfig{
			PausePlayback: &pause,
		},
		Output: OutputConfig{
			Directory: DocumentsDir(),
			Format:    "caf",
		},
		Profile: defaultProfile,
	}
	cfg.Inheritance = newInheritance(inheritedDefault)
	return cfg
}

// DocumentsDir returns the per-user documents area used for recordings.
func DocumentsDir() string {
	if dir := os.Getenv("XDG_DOCUMENTS_DIR"); dir != "" {
		return filepath.Join(dir, "TapeRecorder")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "TapeRecorder"
	}
	return filepath.Join(home, "Documents", "TapeRecorder")
}

// DefaultPath returns $HOME/.config/taperecorder.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "taperecorder.yaml")
}

// LoadWithProfile resolves the named profile (or the file's active_config)
// over the "default" profile and the built-in defaults. A missing file
// yields the built-in defaults.
func LoadWithProfile(configFile, profile string) (*Config, error) {
	if configFile == "" {
		return nil, fmt.Errorf("no config file specified, use --config flag")
	}

	if _, err := os.Stat(configFile); errors.Is(err, os.ErrNotExist) {
		if profile != "" && profile != defaultProfile {
			return nil, fmt.Errorf("configuration profile '%s' not found: %s does not exist", profile, configFile)
		}
		cfg := Default()
		return cfg, cfg.Validate()
	}

	rootConfig, err := ReadRoot(configFile)
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// Determine which config to use
	configName := profile
	if configName == "" {
		configName = rootConfig.ActiveConfig
	}
	if configName == "" {
		configName = defaultProfile
	}

	selectedProfile, exists := rootConfig.Configs[configName]
	if !exists {
		if configName != defaultProfile {
			return nil, fmt.Errorf("configuration profile '%s' not found", configName)
		}
		selectedProfile = &Config{}
	}

	base := Default()
	if configName != defaultProfile {
		if defaultCfg, ok := rootConfig.Configs[defaultProfile]; ok {
			base = mergeConfigs(base, defaultCfg)
			base.Inheritance.demote()
		}
	}

	selectedConfig := mergeConfigs(base, selectedProfile)
	selectedConfig.Profile = configName

	selectedConfig.Output.Directory = expandPath(selectedConfig.Output.Directory)
	selectedConfig.Playback.Asset = expandPath(selectedConfig.Playback.Asset)

	if err := selectedConfig.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return selectedConfig, nil
}

// ReadRoot parses the config file. A file without a configs section is
// treated as a single "default" profile.
func ReadRoot(configFile string) (*RootConfig, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if err := v.BindEnv("active_config", envPrefix+"_PROFILE"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	var rootConfig RootConfig
	if err := v.Unmarshal(&rootConfig); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if len(rootConfig.Configs) == 0 {
		var single Config
		if err := v.Unmarshal(&single); err != nil {
			return nil, fmt.Errorf("error unmarshaling config: %w", err)
		}
		rootConfig.Configs = map[string]*Config{defaultProfile: &single}
	}

	for name, profile := range rootConfig.Configs {
		if profile == nil {
			rootConfig.Configs[name] = &Config{}
			continue
		}
		if err := validateProfile(profile); err != nil {
			return nil, fmt.Errorf("invalid config '%s': %w", name, err)
		}
	}

	return &rootConfig, nil
}

// UpdateActiveConfig updates the active_config field in the config file
func UpdateActiveConfig(configFile, newActiveConfig string) error {
	if configFile == "" {
		return fmt.Errorf("no config file specified")
	}

	rootConfig, err := ReadRoot(configFile)
	if err != nil {
		return err
	}
	if _, ok := rootConfig.Configs[newActiveConfig]; !ok {
		return fmt.Errorf("configuration profile '%s' not found", newActiveConfig)
	}

	// Create a new viper instance to avoid interfering with other readers
	v := viper.New()
	v.SetConfigFile(configFile)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	v.Set("active_config", newActiveConfig)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("error writing config file %s: %w", configFile, err)
	}

	return nil
}

// Validate checks a resolved configuration.
func (c *Config) Validate() error {
	if err := validateProfile(c); err != nil {
		return err
	}
	if c.Output.Directory == "" {
		return fmt.Errorf("output.directory is required")
	}
	if c.Audio.Backend == "ffmpeg" && c.Audio.InputFormat == "" {
		return fmt.Errorf("audio.input_format is required for the ffmpeg backend")
	}
	return nil
}

// PausePlaybackOnRecord reports whether starting a recording pauses playback.
func (c *Config) PausePlaybackOnRecord() bool {
	return c.Recording.PausePlayback == nil || *c.Recording.PausePlayback
}

// PlaybackVolume returns the configured playback volume.
func (c *Config) PlaybackVolume() float64 {
	if c.Playback.Volume == nil {
		return 1
	}
	return *c.Playback.Volume
}

func validateProfile(c *Config) error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: invalid value %v (rule %s)", yamlPath(fe.Namespace()), fe.Value(), fe.Tag())
		}
		return err
	}
	return nil
}

// yamlPath turns "Config.Audio.SampleRate" into "audio.sample_rate".
func yamlPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func newInheritance(mark string) *InheritanceInfo {
	info := &InheritanceInfo{}
	for _, f := range info.fields() {
		*f = mark
	}
	return info
}

func (i *InheritanceInfo) fields() []*string {
	return []*string{
		&i.Audio.SampleRate, &i.Audio.Channels, &i.Audio.Backend, &i.Audio.Source, &i.Audio.InputFormat,
		&i.Playback.Asset, &i.Playback.Volume, &i.Playback.RefreshInterval, &i.Playback.SampleRate,
		&i.Recording.PausePlayback,
		&i.Output.Directory, &i.Output.Format,
	}
}

// demote marks values set by a parent profile as inherited.
func (i *InheritanceInfo) demote() {
	for _, f := range i.fields() {
		if *f == profileSpecific {
			*f = inheritedProfile
		}
	}
}

// mergeConfigs overlays the fields a profile sets onto base. Zero values in
// the profile fall back to base; pointer fields distinguish "unset" from an
// explicit zero.
func mergeConfigs(base, profile *Config) *Config {
	result := &Config{}

	if base != nil {
		result.Audio = base.Audio
		result.Playback = base.Playback
		result.Recording = base.Recording
		result.Output = base.Output
		result.Profile = base.Profile
		if base.Inheritance != nil {
			copied := *base.Inheritance
			result.Inheritance = &copied
		}
	}
	if result.Inheritance == nil {
		result.Inheritance = newInheritance(inheritedProfile)
	}

	if profile == nil {
		return result
	}

	in := result.Inheritance

	if profile.Audio.SampleRate != 0 {
		result.Audio.SampleRate = profile.Audio.SampleRate
		in.Audio.SampleRate = profileSpecific
	}
	if profile.Audio.Channels != 0 {
		result.Audio.Channels = profile.Audio.Channels
		in.Audio.Channels = profileSpecific
	}
	if profile.Audio.Backend != "" {
		result.Audio.Backend = profile.Audio.Backend
		in.Audio.Backend = profileSpecific
	}
	if profile.Audio.Source != "" {
		result.Audio.Source = profile.Audio.Source
		in.Audio.Source = profileSpecific
	}
	if profile.Audio.InputFormat != "" {
		result.Audio.InputFormat = profile.Audio.InputFormat
		in.Audio.InputFormat = profileSpecific
	}

	if profile.Playback.Asset != "" {
		result.Playback.Asset = profile.Playback.Asset
		in.Playback.Asset = profileSpecific
	}
	if profile.Playback.Volume != nil {
		v := *profile.Playback.Volume
		result.Playback.Volume = &v
		in.Playback.Volume = profileSpecific
	}
	if profile.Playback.RefreshInterval != 0 {
		result.Playback.RefreshInterval = profile.Playback.RefreshInterval
		in.Playback.RefreshInterval = profileSpecific
	}
	if profile.Playback.SampleRate != 0 {
		result.Playback.SampleRate = profile.Playback.SampleRate
		in.Playback.SampleRate = profileSpecific
	}

	if profile.Recording.PausePlayback != nil {
		p := *profile.Recording.PausePlayback
		result.Recording.PausePlayback = &p
		in.Recording.PausePlayback = profileSpecific
	}

	if profile.Output.Directory != "" {
		result.Output.Directory = profile.Output.Directory
		in.Output.Directory = profileSpecific
	}
	if profile.Output.Format != "" {
		result.Output.Format = profile.Output.Format
		in.Output.Format = profileSpecific
	}

	return result
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
