package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kikiluvv/slopstudio/internal/compositor"
	"github.com/kikiluvv/slopstudio/internal/editor"
	"github.com/kikiluvv/slopstudio/internal/playback"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir string `yaml:"work_dir"`
	TempDir string `yaml:"temp_dir"`

	Timeline TimelineConfig `yaml:"timeline"`
	Playback PlaybackConfig `yaml:"playback"`
	Surface  SurfaceConfig  `yaml:"surface"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	Audio AudioConfig `yaml:"audio"`
}

type TimelineConfig struct {
	MinClipDuration      time.Duration `yaml:"min_clip_duration"`
	DefaultImageDuration time.Duration `yaml:"default_image_duration"`
	PixelsPerSecond      float64       `yaml:"pixels_per_second"`
	MinPixelsPerSecond   float64       `yaml:"min_pixels_per_second"`
	MaxPixelsPerSecond   float64       `yaml:"max_pixels_per_second"`
}

type PlaybackConfig struct {
	DriftThreshold time.Duration `yaml:"drift_threshold"`
	PreloadWindow  time.Duration `yaml:"preload_window"`
	FrameRate      float64       `yaml:"frame_rate"`
}

type SurfaceConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"`
	Preset     string `yaml:"preset"`
	CRF        int    `yaml:"crf"`
}

type AudioConfig struct {
	Enabled    bool          `yaml:"enabled"`
	SampleRate int           `yaml:"sample_rate"`
	Buffer     time.Duration `yaml:"buffer"`
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
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings the engine cannot run with
func (c *Config) Validate() error {
	t := c.Timeline
	if t.MinClipDuration <= 0 {
		return fmt.Errorf("timeline.min_clip_duration must be positive")
	}
	if t.DefaultImageDuration < t.MinClipDuration {
		return fmt.Errorf("timeline.default_image_duration must be at least min_clip_duration")
	}
	if t.MinPixelsPerSecond <= 0 || t.MaxPixelsPerSecond < t.MinPixelsPerSecond {
		return fmt.Errorf("timeline zoom bounds %v..%v are invalid", t.MinPixelsPerSecond, t.MaxPixelsPerSecond)
	}
	if t.PixelsPerSecond < t.MinPixelsPerSecond || t.PixelsPerSecond > t.MaxPixelsPerSecond {
		return fmt.Errorf("timeline.pixels_per_second %v is outside %v..%v", t.PixelsPerSecond, t.MinPixelsPerSecond, t.MaxPixelsPerSecond)
	}

	p := c.Playback
	if p.DriftThreshold <= 0 {
		return fmt.Errorf("playback.drift_threshold must be positive")
	}
	if p.PreloadWindow < 0 {
		return fmt.Errorf("playback.preload_window must not be negative")
	}
	if p.FrameRate <= 0 {
		return fmt.Errorf("playback.frame_rate must be positive")
	}

	if c.Surface.Width <= 0 || c.Surface.Height <= 0 {
		return fmt.Errorf("surface size %dx%d is invalid", c.Surface.Width, c.Surface.Height)
	}
	if _, err := compositor.ParseHexColor(c.Surface.Background); err != nil {
		return fmt.Errorf("surface.background: %w", err)
	}

	if c.FFmpeg.CRF < 0 || c.FFmpeg.CRF > 51 {
		return fmt.Errorf("ffmpeg.crf %d is outside 0..51", c.FFmpeg.CRF)
	}
	if c.Audio.Enabled && c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive")
	}

	return nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		WorkDir: "./work",
		TempDir: "./temp",
		Timeline: TimelineConfig{
			MinClipDuration:      100 * time.Millisecond,
			DefaultImageDuration: editor.DefaultImageDuration,
			PixelsPerSecond:      editor.DefaultPixelsPerSecond,
			MinPixelsPerSecond:   editor.MinPixelsPerSecond,
			MaxPixelsPerSecond:   editor.MaxPixelsPerSecond,
		},
		Playback: PlaybackConfig{
			DriftThreshold: playback.DefaultDriftThreshold,
			PreloadWindow:  playback.DefaultPreloadWindow,
			FrameRate:      30,
		},
		Surface: SurfaceConfig{
			Width:      1280,
			Height:     720,
			Background: "#000000",
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
			Preset:     "medium",
			CRF:        23,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			Buffer:     100 * time.Millisecond,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./slopstudio.yaml",
		"./slopstudio.yml",
		filepath.Join(os.Getenv("HOME"), ".slopstudio", "config.yaml"),
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
