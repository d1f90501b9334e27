package gui

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/slopstudio/internal/clips"
	"github.com/kikiluvv/slopstudio/internal/compositor"
	"github.com/kikiluvv/slopstudio/internal/editor"
	"github.com/kikiluvv/slopstudio/internal/playback"
	"github.com/kikiluvv/slopstudio/pkg/util"
)

// Uploader turns a dropped file into a timeline asset
type Uploader interface {
	Upload(ctx context.Context, path string) (editor.Asset, error)
}

// PreviewOptions configures the preview window
type PreviewOptions struct {
	Title     string
	FrameRate float64
	Surface   *compositor.RGBASurface
	Uploader  Uploader
	Logger    zerolog.Logger
}

// NewApp creates the fyne application hosting the preview
func NewApp() fyne.App {
	return app.NewWithID("slopstudio")
}

// Dispatch runs fn on the fyne UI goroutine and waits for it
func Dispatch(fn func()) {
	fyne.DoAndWait(fn)
}

// keyboard editing steps for the selected clip and the ruler zoom
const (
	nudgePixels = 10
	zoomStep    = 1.25
)

type preview struct {
	engine *playback.Engine
	editor *editor.Editor
	opts   PreviewOptions
	logger zerolog.Logger

	window  fyne.Window
	picture *canvas.Image
	play    *widget.Button
	mute    *widget.Check
	ruler   *widget.Slider
	time    *widget.Label
	list    *widget.List
	rows    []clips.Clip
}

// RunPreview shows the engine's surface in a window and blocks until it is
// closed. The engine must have been created with Dispatch so that ticks run
// on the UI goroutine.
func RunPreview(ctx context.Context, a fyne.App, engine *playback.Engine, ed *editor.Editor, opts PreviewOptions) error {
	if opts.FrameRate <= 0 {
		opts.FrameRate = 30
	}
	if opts.Title == "" {
		opts.Title = "slopstudio"
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := &preview{
		engine: engine,
		editor: ed,
		opts:   opts,
		logger: opts.Logger.With().Str("component", "preview").Logger(),
	}
	p.build(ctx, a)

	interval := time.Duration(float64(time.Second) / opts.FrameRate)
	go func() {
		if err := engine.Run(ctx, interval, p.onFrame); err != nil && ctx.Err() == nil {
			p.logger.Error().Err(err).Msg("playback loop stopped")
		}
	}()

	p.window.SetOnClosed(cancel)
	p.window.ShowAndRun()
	return nil
}

func (p *preview) build(ctx context.Context, a fyne.App) {
	w := a.NewWindow(p.opts.Title)
	p.window = w

	size := p.opts.Surface.Size()
	p.picture = canvas.NewImageFromImage(p.opts.Surface.Image())
	p.picture.FillMode = canvas.ImageFillContain
	p.picture.ScaleMode = canvas.ImageScaleFastest
	p.picture.SetMinSize(fyne.NewSize(float32(size.X)/2, float32(size.Y)/2))

	p.play = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		p.engine.Clock().Toggle()
	})
	p.mute = widget.NewCheck("Mute", func(on bool) {
		p.engine.Controller().SetMuted(on)
	})
	p.mute.SetChecked(p.engine.Controller().Muted())
	p.time = widget.NewLabel(util.FormatTimecode(0))

	// the ruler is laid out in timeline pixels at the editor's zoom
	p.ruler = widget.NewSlider(0, 1)
	p.ruler.Step = 1
	p.ruler.OnChangeEnded = func(px float64) {
		p.editor.ClickRuler(px)
	}

	p.list = widget.NewList(
		func() int { return len(p.rows) },
		func() fyne.CanvasObject { return widget.NewLabel("clip") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			c := p.rows[i]
			o.(*widget.Label).SetText(fmt.Sprintf("%-6s %s  %s - %s",
				c.Kind, c.Name, util.FormatTimecode(c.Start), util.FormatTimecode(c.End())))
		},
	)
	p.list.OnSelected = func(i widget.ListItemID) {
		if i < len(p.rows) {
			p.editor.Select(p.rows[i].ID)
		}
	}

	w.Canvas().SetOnTypedKey(func(k *fyne.KeyEvent) {
		switch k.Name {
		case fyne.KeySpace:
			p.engine.Clock().Toggle()
		case fyne.KeyDelete, fyne.KeyBackspace:
			if id := p.engine.Store().Selected(); id != "" {
				p.editor.Remove(id)
				p.list.UnselectAll()
			}
		case fyne.KeyHome:
			p.engine.Clock().Seek(0)
		case fyne.KeyLeft:
			p.editor.Nudge(-nudgePixels)
		case fyne.KeyRight:
			p.editor.Nudge(nudgePixels)
		case fyne.KeyComma:
			p.editor.Trim(clips.EdgeRight, -nudgePixels)
		case fyne.KeyPeriod:
			p.editor.Trim(clips.EdgeRight, nudgePixels)
		case fyne.KeyMinus:
			p.editor.ZoomBy(1 / zoomStep)
			p.refreshClips()
		case fyne.KeyEqual:
			p.editor.ZoomBy(zoomStep)
			p.refreshClips()
		}
	})

	w.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		for _, u := range uris {
			p.upload(ctx, u.Path())
		}
	})

	controls := container.NewBorder(nil, nil,
		container.NewHBox(p.play, p.mute), p.time, p.ruler)
	w.SetContent(container.NewBorder(nil,
		container.NewVBox(controls, container.NewGridWrap(fyne.NewSize(float32(size.X)/2, 120), p.list)),
		nil, nil, p.picture))
	w.Resize(fyne.NewSize(float32(size.X)/2, float32(size.Y)/2+200))

	p.refreshClips()
	p.engine.Store().Subscribe(func(clips.Event) { p.refreshClips() })
}

// upload runs outside the UI goroutine; only the resulting drop is applied
// on it
func (p *preview) upload(ctx context.Context, path string) {
	if p.opts.Uploader == nil {
		p.logger.Warn().Str("file", path).Msg("no uploader configured, drop ignored")
		return
	}
	go func() {
		asset, err := p.opts.Uploader.Upload(ctx, path)
		if err != nil {
			p.logger.Warn().Err(err).Str("file", path).Msg("upload failed")
			return
		}
		fyne.Do(func() { p.editor.DropAsset(asset) })
	}()
}

func (p *preview) refreshClips() {
	p.rows = p.engine.Store().Clips()
	p.list.Refresh()
	p.ruler.Max = p.editor.PixelAt(p.engine.Store().Duration())
	if p.ruler.Max <= 0 {
		p.ruler.Max = 1
	}
	p.ruler.Refresh()
}

func (p *preview) onFrame(f playback.Frame) {
	p.picture.Refresh()

	p.ruler.Value = p.editor.PixelAt(f.Time)
	p.ruler.Refresh()
	p.time.SetText(fmt.Sprintf("%s / %s",
		util.FormatTimecode(f.Time), util.FormatTimecode(p.engine.Store().Duration())))

	if f.Playing {
		p.play.SetIcon(theme.MediaPauseIcon())
	} else {
		p.play.SetIcon(theme.MediaPlayIcon())
	}
}
