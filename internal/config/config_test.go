package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slopstudio.yaml")
	data := []byte(`
work_dir: /tmp/work
playback:
  drift_threshold: 150ms
  frame_rate: 24
surface:
  width: 640
  height: 360
  background: "#202020"
audio:
  enabled: false
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WorkDir != "/tmp/work" {
		t.Errorf("WorkDir = %q", cfg.WorkDir)
	}
	if cfg.Playback.DriftThreshold != 150*time.Millisecond || cfg.Playback.FrameRate != 24 {
		t.Errorf("Playback = %+v", cfg.Playback)
	}
	// untouched keys keep their defaults
	if cfg.Playback.PreloadWindow != 2*time.Second {
		t.Errorf("PreloadWindow = %v, want default 2s", cfg.Playback.PreloadWindow)
	}
	if cfg.Surface.Width != 640 || cfg.Surface.Background != "#202020" {
		t.Errorf("Surface = %+v", cfg.Surface)
	}
	if cfg.Audio.Enabled {
		t.Error("Audio.Enabled = true, want false")
	}
	if cfg.Timeline.MinClipDuration != 100*time.Millisecond {
		t.Errorf("MinClipDuration = %v", cfg.Timeline.MinClipDuration)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Surface.Width != 1280 {
		t.Errorf("Surface.Width = %d, want default", cfg.Surface.Width)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero drift", "playback:\n  drift_threshold: 0s\n"},
		{"bad colour", "surface:\n  background: purple\n"},
		{"zero width", "surface:\n  width: 0\n"},
		{"zoom outside bounds", "timeline:\n  pixels_per_second: 5\n"},
		{"crf range", "ffmpeg:\n  crf: 60\n"},
		{"malformed", "playback: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() error = nil")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Playback.FrameRate = 60
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Playback.FrameRate != 60 || loaded.Playback.DriftThreshold != cfg.Playback.DriftThreshold {
		t.Errorf("Playback = %+v", loaded.Playback)
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()).Surface.Width != 1280 {
		t.Error("FromContext() without config did not return defaults")
	}
	cfg := Default()
	cfg.WorkDir = "elsewhere"
	if got := FromContext(WithConfig(context.Background(), cfg)); got != cfg {
		t.Error("FromContext() did not return stored config")
	}
}
