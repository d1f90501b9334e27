// Package editor maps timeline gestures onto clip store edits and clock seeks.
package editor

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/slopstudio/internal/clips"
	"github.com/kikiluvv/slopstudio/internal/playback"
)

// Default timeline zoom in pixels per second
const (
	DefaultPixelsPerSecond = 100.0
	MinPixelsPerSecond     = 10.0
	MaxPixelsPerSecond     = 1000.0
)

// Asset is an uploaded file ready to be placed on the timeline
type Asset struct {
	Kind     clips.Kind
	Source   string
	Duration time.Duration
	Name     string
}

// Options configures an Editor
type Options struct {
	PixelsPerSecond    float64
	MinPixelsPerSecond float64
	MaxPixelsPerSecond float64
	Logger             zerolog.Logger
}

type gestureKind uint8

const (
	gestureNone gestureKind = iota
	gestureDrag
	gestureResize
)

type gesture struct {
	kind   gestureKind
	clipID string
	edge   clips.Edge
	// grab is the distance from the clip start to the pointer at drag start
	grab time.Duration
}

// Editor owns no state of its own beyond zoom and the gesture in progress.
// Store rejections are logged and reported as false; they never surface as
// errors.
type Editor struct {
	store   *clips.Store
	clock   *playback.Clock
	pps     float64
	minPPS  float64
	maxPPS  float64
	current gesture
	logger  zerolog.Logger
}

// New creates an editor over store and clock
func New(store *clips.Store, clock *playback.Clock, opts Options) *Editor {
	if opts.MinPixelsPerSecond <= 0 {
		opts.MinPixelsPerSecond = MinPixelsPerSecond
	}
	if opts.MaxPixelsPerSecond < opts.MinPixelsPerSecond {
		opts.MaxPixelsPerSecond = math.Max(MaxPixelsPerSecond, opts.MinPixelsPerSecond)
	}
	e := &Editor{
		store:  store,
		clock:  clock,
		minPPS: opts.MinPixelsPerSecond,
		maxPPS: opts.MaxPixelsPerSecond,
		logger: opts.Logger.With().Str("component", "editor").Logger(),
	}
	if opts.PixelsPerSecond <= 0 {
		opts.PixelsPerSecond = DefaultPixelsPerSecond
	}
	e.SetZoom(opts.PixelsPerSecond)
	return e
}

// Zoom returns the current pixels per second
func (e *Editor) Zoom() float64 { return e.pps }

// SetZoom changes pixels per second within the configured bounds and
// returns the value applied
func (e *Editor) SetZoom(pps float64) float64 {
	e.pps = math.Min(math.Max(pps, e.minPPS), e.maxPPS)
	return e.pps
}

// TimeAt converts a horizontal pixel offset into timeline time
func (e *Editor) TimeAt(px float64) time.Duration {
	return time.Duration(px / e.pps * float64(time.Second))
}

// PixelAt converts timeline time into a horizontal pixel offset
func (e *Editor) PixelAt(t time.Duration) float64 {
	return t.Seconds() * e.pps
}

// ClickRuler seeks the clock to the time under px
func (e *Editor) ClickRuler(px float64) {
	e.clock.Seek(e.TimeAt(px))
}

// Select marks id as the selected clip
func (e *Editor) Select(id string) bool {
	return e.check("select", id, e.store.Select(id))
}

// BeginDrag starts moving clip id, grabbed at pointer px
func (e *Editor) BeginDrag(id string, px float64) bool {
	c, ok := e.store.Clip(id)
	if !ok {
		e.logger.Debug().Str("clip", id).Msg("drag on unknown clip")
		return false
	}
	e.current = gesture{kind: gestureDrag, clipID: id, grab: e.TimeAt(px) - c.Start}
	e.store.Select(id)
	return true
}

// DragTo moves the dragged clip so the grab point follows px
func (e *Editor) DragTo(px float64) bool {
	if e.current.kind != gestureDrag {
		return false
	}
	start := e.TimeAt(px) - e.current.grab
	return e.check("move", e.current.clipID, e.store.MoveClip(e.current.clipID, start))
}

// BeginResize starts dragging one edge of clip id
func (e *Editor) BeginResize(id string, edge clips.Edge) bool {
	if _, ok := e.store.Clip(id); !ok {
		e.logger.Debug().Str("clip", id).Msg("resize on unknown clip")
		return false
	}
	e.current = gesture{kind: gestureResize, clipID: id, edge: edge}
	e.store.Select(id)
	return true
}

// ResizeTo puts the resized edge under px
func (e *Editor) ResizeTo(px float64) bool {
	if e.current.kind != gestureResize {
		return false
	}
	err := e.store.ResizeClip(e.current.clipID, e.current.edge, e.TimeAt(px))
	return e.check("resize", e.current.clipID, err)
}

// EndGesture finishes the drag or resize in progress
func (e *Editor) EndGesture() {
	e.current = gesture{}
}

// Nudge drags the selected clip dpx pixels along the timeline
func (e *Editor) Nudge(dpx float64) bool {
	c, ok := e.store.Clip(e.store.Selected())
	if !ok {
		return false
	}
	from := e.PixelAt(c.Start)
	if !e.BeginDrag(c.ID, from) {
		return false
	}
	defer e.EndGesture()
	return e.DragTo(from + dpx)
}

// Trim drags one edge of the selected clip dpx pixels
func (e *Editor) Trim(edge clips.Edge, dpx float64) bool {
	c, ok := e.store.Clip(e.store.Selected())
	if !ok {
		return false
	}
	from := c.Start
	if edge == clips.EdgeRight {
		from = c.End()
	}
	if !e.BeginResize(c.ID, edge) {
		return false
	}
	defer e.EndGesture()
	return e.ResizeTo(e.PixelAt(from) + dpx)
}

// ZoomBy scales pixels per second by factor
func (e *Editor) ZoomBy(factor float64) float64 {
	return e.SetZoom(e.pps * factor)
}

// DropAsset appends an uploaded asset to the timeline
func (e *Editor) DropAsset(a Asset) (clips.Clip, bool) {
	c, err := e.store.AddClip(a.Kind, a.Source, a.Duration)
	if !e.check("add", a.Source, err) {
		return clips.Clip{}, false
	}
	if a.Name != "" {
		if e.check("name", c.ID, e.store.UpdateClipProperty(c.ID, clips.PropertyName, a.Name)) {
			c, _ = e.store.Clip(c.ID)
		}
	}
	return c, true
}

// Remove deletes clip id
func (e *Editor) Remove(id string) bool {
	if e.current.clipID == id {
		e.EndGesture()
	}
	return e.check("remove", id, e.store.RemoveClip(id))
}

// SetVolume updates the level of clip id
func (e *Editor) SetVolume(id string, v float64) bool {
	return e.check("volume", id, e.store.UpdateClipProperty(id, clips.PropertyVolume, v))
}

func (e *Editor) check(op, id string, err error) bool {
	if err == nil {
		return true
	}
	e.logger.Debug().Err(err).Str("op", op).Str("clip", id).Msg("edit rejected")
	return false
}
