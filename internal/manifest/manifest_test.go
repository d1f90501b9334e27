package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kikiluvv/slopstudio/internal/clips"
)

const demo = `
name: demo
clips:
  - id: intro
    source: intro.mp4
    duration: 5s
  - id: music
    kind: audio
    source: /abs/music.mp3
    start: 2s
    volume: 0.5
    name: Soundtrack
  - id: card
    source: card.png
    effects: [fade-in, fade-out]
edits:
  - op: resize
    clip: intro
    edge: right
    boundary: 2s
  - op: update
    clip: card
    property: effects
    value: [blur]
`

func TestParseFillsKinds(t *testing.T) {
	m, err := Parse([]byte(demo))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(m.Clips) != 3 || len(m.Edits) != 2 {
		t.Fatalf("got %d clips, %d edits", len(m.Clips), len(m.Edits))
	}
	want := []clips.Kind{clips.KindVideo, clips.KindAudio, clips.KindImage}
	for i, k := range want {
		if m.Clips[i].Kind != k {
			t.Errorf("clip %d kind = %s, want %s", i, m.Clips[i].Kind, k)
		}
	}
	if m.Clips[1].Start == nil || *m.Clips[1].Start != 2*time.Second {
		t.Errorf("music start = %v", m.Clips[1].Start)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing source", "clips:\n  - duration: 1s\n"},
		{"unknown extension", "clips:\n  - source: notes.txt\n"},
		{"bad kind", "clips:\n  - source: a.mp4\n    kind: hologram\n"},
		{"duplicate id", "clips:\n  - {id: a, source: a.mp4}\n  - {id: a, source: b.mp4}\n"},
		{"unknown edit target", "clips:\n  - {id: a, source: a.mp4}\nedits:\n  - {op: remove, clip: b}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("Parse() error = nil")
			}
		})
	}
}

func TestLoadResolvesRelativeSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	if err := os.WriteFile(path, []byte("clips:\n  - source: media/a.mp4\n    duration: 1s\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := filepath.Join(dir, "media", "a.mp4"); m.Clips[0].Source != want {
		t.Errorf("Source = %q, want %q", m.Clips[0].Source, want)
	}
	if m.Name != "project" {
		t.Errorf("Name = %q, want file stem", m.Name)
	}
}

func TestApply(t *testing.T) {
	m, err := Parse([]byte(demo))
	if err != nil {
		t.Fatal(err)
	}
	store := clips.NewStore(m.Name)

	var resolved []string
	resolve := func(_ context.Context, kind clips.Kind, source string) (time.Duration, error) {
		resolved = append(resolved, source)
		if kind == clips.KindImage {
			return 3 * time.Second, nil
		}
		return 10 * time.Second, nil
	}

	ids, err := m.Apply(context.Background(), store, resolve)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(resolved) != 2 {
		t.Errorf("resolved %v, want music and card only", resolved)
	}

	intro, _ := store.Clip(ids["intro"])
	if intro.Start != 0 || intro.Duration != 2*time.Second {
		t.Errorf("intro = [%v +%v], want resized to 2s", intro.Start, intro.Duration)
	}
	music, _ := store.Clip(ids["music"])
	if music.Start != 2*time.Second || music.Volume != 0.5 || music.Name != "Soundtrack" {
		t.Errorf("music = %+v", music)
	}
	// card was appended after music, which ended at 12s when card was added
	card, _ := store.Clip(ids["card"])
	if card.Start != 12*time.Second || len(card.Effects) != 1 || card.Effects[0] != "blur" {
		t.Errorf("card = %+v", card)
	}
	if store.Duration() != 15*time.Second {
		t.Errorf("Duration() = %v, want 15s", store.Duration())
	}
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		resolve DurationFunc
	}{
		{"no resolver", "clips:\n  - source: a.mp4\n", nil},
		{"resolver failure", "clips:\n  - source: a.mp4\n", func(context.Context, clips.Kind, string) (time.Duration, error) {
			return 0, errors.New("probe failed")
		}},
		{"image volume", "clips:\n  - {source: a.png, duration: 1s, volume: 0.3}\n", nil},
		{"unknown op", "clips:\n  - {id: a, source: a.mp4, duration: 1s}\nedits:\n  - {op: split, clip: a}\n", nil},
		{"bad edge", "clips:\n  - {id: a, source: a.mp4, duration: 1s}\nedits:\n  - {op: resize, clip: a, edge: top}\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.yaml))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := m.Apply(context.Background(), clips.NewStore("x"), tt.resolve); err == nil {
				t.Error("Apply() error = nil")
			}
		})
	}
}

func TestApplyRemove(t *testing.T) {
	m, err := Parse([]byte("clips:\n  - {id: a, source: a.mp4, duration: 1s}\n  - {id: b, source: b.mp4, duration: 2s}\nedits:\n  - {op: remove, clip: a}\n  - {op: move, clip: b, start: 0s}\n"))
	if err != nil {
		t.Fatal(err)
	}
	store := clips.NewStore("x")
	if _, err := m.Apply(context.Background(), store, nil); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 1 || store.Duration() != 2*time.Second {
		t.Errorf("Len() = %d Duration() = %v", store.Len(), store.Duration())
	}
}
