package gui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/slopstudio/internal/clips"
	"github.com/kikiluvv/slopstudio/internal/compositor"
	"github.com/kikiluvv/slopstudio/internal/editor"
	"github.com/kikiluvv/slopstudio/internal/media"
	"github.com/kikiluvv/slopstudio/internal/playback"
)

func newTestPreview(t *testing.T, muted bool) (*preview, *clips.Store) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	n := 0
	store := clips.NewStore("gui", clips.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("clip_%d", n)
	}))
	registry := media.NewRegistry(media.FactoryFunc(func(clips.Clip) (media.Adapter, error) {
		return nil, errors.New("no media in tests")
	}), zerolog.Nop())
	surface := compositor.NewRGBASurface(64, 36, color.Black)
	engine := playback.NewEngine(store, registry, surface, playback.EngineOptions{Logger: zerolog.Nop()})
	engine.Controller().SetMuted(muted)
	ed := editor.New(store, engine.Clock(), editor.Options{Logger: zerolog.Nop()})

	p := &preview{
		engine: engine,
		editor: ed,
		opts:   PreviewOptions{Title: "test", FrameRate: 30, Surface: surface},
		logger: zerolog.Nop(),
	}
	p.build(context.Background(), a)
	return p, store
}

func TestPreviewMuteReflectsController(t *testing.T) {
	p, _ := newTestPreview(t, true)
	if !p.mute.Checked {
		t.Error("mute check is unchecked while audio is muted")
	}

	p.mute.SetChecked(false)
	if p.engine.Controller().Muted() {
		t.Error("unchecking mute left the controller muted")
	}
}

func TestPreviewKeysEditSelectedClip(t *testing.T) {
	p, store := newTestPreview(t, false)
	c, err := store.AddClip(clips.KindVideo, "a.mp4", 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	p.editor.Select(c.ID)

	typed := p.window.Canvas().OnTypedKey()
	typed(&fyne.KeyEvent{Name: fyne.KeyRight})
	typed(&fyne.KeyEvent{Name: fyne.KeyComma})

	got, _ := store.Clip(c.ID)
	if got.Start != 100*time.Millisecond {
		t.Errorf("start after right arrow = %v, want 100ms", got.Start)
	}
	if got.Duration != 1900*time.Millisecond {
		t.Errorf("duration after trim = %v, want 1.9s", got.Duration)
	}

	before := p.editor.Zoom()
	typed(&fyne.KeyEvent{Name: fyne.KeyEqual})
	if p.editor.Zoom() <= before {
		t.Errorf("zoom did not grow: %v -> %v", before, p.editor.Zoom())
	}
	if p.ruler.Max != p.editor.PixelAt(store.Duration()) {
		t.Errorf("ruler max %v not rescaled to zoom", p.ruler.Max)
	}
}
