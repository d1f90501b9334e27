package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kikiluvv/slopstudio/internal/clips"
	"github.com/kikiluvv/slopstudio/internal/config"
	"github.com/kikiluvv/slopstudio/internal/playback"
)

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Name", "Value"}, [][]string{{"kind", "video"}, {"short"}}, []columnAlignment{alignLeft, alignRight})
	for _, want := range []string{"NAME", "VALUE", "kind", "video", "short"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if renderTable(nil, nil, nil) != "" {
		t.Error("table without headers is not empty")
	}
}

func TestRenderActivations(t *testing.T) {
	store := clips.NewStore("demo")
	if _, err := store.AddClip(clips.KindVideo, "a.mp4", 5*time.Second); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddClip(clips.KindImage, "card.png", 2*time.Second); err != nil {
		t.Fatal(err)
	}

	out := renderActivations(playback.Evaluate(store.Clips(), 6*time.Second))
	if !strings.Contains(out, "card") || !strings.Contains(out, "yes") {
		t.Errorf("active image row missing:\n%s", out)
	}
	if !strings.Contains(out, "00:00:01.000") {
		t.Errorf("local time of card missing:\n%s", out)
	}
}

func TestDurationResolver(t *testing.T) {
	resolve := durationResolver(nil, 4*time.Second)

	d, err := resolve(context.Background(), clips.KindImage, "card.png")
	if err != nil || d != 4*time.Second {
		t.Errorf("image duration = %v, %v", d, err)
	}
	if _, err := resolve(context.Background(), clips.KindVideo, "a.mp4"); err == nil {
		t.Error("timed source resolved without ffprobe")
	}
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yaml")
	data := "clips:\n  - {source: a.mp4, duration: 3s}\n  - {source: b.png}\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := loadProject(context.Background(), config.Default(), nil, path)
	if err != nil {
		t.Fatalf("loadProject() error = %v", err)
	}
	if store.Name() != "demo" || store.Len() != 2 || store.Duration() != 8*time.Second {
		t.Errorf("store = %s with %d clips, %v", store.Name(), store.Len(), store.Duration())
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		w, h    int
		wantErr bool
	}{
		{name: "empty", in: ""},
		{name: "size", in: "640x360", w: 640, h: 360},
		{name: "garbage", in: "wide", wantErr: true},
		{name: "zero", in: "0x360", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := parseSize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if w != tt.w || h != tt.h {
				t.Errorf("parseSize(%q) = %dx%d, want %dx%d", tt.in, w, h, tt.w, tt.h)
			}
		})
	}
}
