package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keagan/videomaker/internal/ffmpeg"
	"github.com/keagan/videomaker/internal/overlays"
	"github.com/keagan/videomaker/internal/timeline"
	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Parent for render work dirs. Empty uses the OS temp dir.
	TempDir string `yaml:"temp_dir"`

	Timeline TimelineConfig `yaml:"timeline"`
	FFmpeg   FFmpegConfig   `yaml:"ffmpeg"`
	Overlays OverlayConfig  `yaml:"overlays"`
}

type TimelineConfig struct {
	DisplayWidth int `yaml:"display_width"`
}

type FFmpegConfig struct {
	// BinaryPath names ffmpeg; when it is a path, an ffprobe in the same
	// directory is preferred over the one on PATH
	BinaryPath string `yaml:"binary_path"`
	Threads    int    `yaml:"threads"`
	Preset     string `yaml:"preset"`
	CRF        int    `yaml:"crf"`
	VideoCodec string `yaml:"video_codec"`
	AudioCodec string `yaml:"audio_codec"`
}

type OverlayConfig struct {
	DefaultAnchor string            `yaml:"default_anchor"`
	Overlays      map[string]string `yaml:"overlays"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values the rest of the program relies on
func (c *Config) Validate() error {
	if c.Timeline.DisplayWidth <= 0 {
		return fmt.Errorf("timeline.display_width must be positive, got %d", c.Timeline.DisplayWidth)
	}
	if c.FFmpeg.CRF < 0 || c.FFmpeg.CRF > 51 {
		return fmt.Errorf("ffmpeg.crf must be between 0 and 51, got %d", c.FFmpeg.CRF)
	}
	if c.FFmpeg.Threads < 0 {
		return fmt.Errorf("ffmpeg.threads cannot be negative")
	}
	if _, err := c.DefaultAnchor(); err != nil {
		return err
	}
	return nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultAnchor parses overlays.default_anchor
func (c *Config) DefaultAnchor() (overlays.Anchor, error) {
	return overlays.ParseAnchor(c.Overlays.DefaultAnchor)
}

// Registry builds the named overlay registry
func (c *Config) Registry() *overlays.Registry {
	return overlays.NewRegistryFrom(c.Overlays.Overlays)
}

// ExecutorOptions maps the ffmpeg section onto executor options
func (c *Config) ExecutorOptions() ffmpeg.Options {
	return ffmpeg.Options{
		BinaryPath: c.FFmpeg.BinaryPath,
		Threads:    c.FFmpeg.Threads,
		Encode: ffmpeg.EncodeOptions{
			VideoCodec: c.FFmpeg.VideoCodec,
			AudioCodec: c.FFmpeg.AudioCodec,
			CRF:        c.FFmpeg.CRF,
			Preset:     c.FFmpeg.Preset,
		},
	}
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		TempDir: "",
		Timeline: TimelineConfig{
			DisplayWidth: timeline.DefaultDisplayWidth,
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			Threads:    0,
			Preset:     ffmpeg.DefaultPreset,
			CRF:        ffmpeg.DefaultCRF,
			VideoCodec: ffmpeg.DefaultVideoCodec,
			AudioCodec: ffmpeg.DefaultAudioCodec,
		},
		Overlays: OverlayConfig{
			DefaultAnchor: overlays.RightBottom.String(),
			Overlays:      make(map[string]string),
		},
	}
}

// DefaultPath is where `config init` writes when no path is given
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".videomaker", "config.yaml")
}

func findConfigFile() string {
	candidates := []string{
		"./videomaker.yaml",
		"./videomaker.yml",
		DefaultPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
