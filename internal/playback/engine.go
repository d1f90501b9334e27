package playback

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/slopstudio/internal/clips"
	"github.com/kikiluvv/slopstudio/internal/compositor"
	"github.com/kikiluvv/slopstudio/internal/media"
)

// Frame summarises one tick
type Frame struct {
	Time        time.Duration
	Playing     bool
	Activations []Activation
	// Drawn is the number of visual layers composited
	Drawn int
}

// EngineOptions configures an Engine
type EngineOptions struct {
	Sync SyncOptions
	// Dispatch runs each tick of Run; hosts with a UI thread hand it over there
	Dispatch func(func())
	Logger   zerolog.Logger
}

// Engine ties clock, synchronisation and compositing into one tick. All
// methods must be called from the same goroutine.
type Engine struct {
	store      *clips.Store
	clock      *Clock
	sync       *Controller
	compositor *compositor.Compositor
	surface    compositor.Surface
	dispatch   func(func())
	logger     zerolog.Logger
}

// NewEngine wires an engine over store drawing into surface
func NewEngine(store *clips.Store, registry *media.Registry, surface compositor.Surface, opts EngineOptions) *Engine {
	opts.Sync.Logger = opts.Logger
	dispatch := opts.Dispatch
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Engine{
		store:      store,
		clock:      NewClock(store),
		sync:       NewController(store, registry, opts.Sync),
		compositor: compositor.New(opts.Logger),
		surface:    surface,
		dispatch:   dispatch,
		logger:     opts.Logger.With().Str("component", "engine").Logger(),
	}
}

// Clock returns the playhead
func (e *Engine) Clock() *Clock { return e.clock }

// Controller returns the synchronisation controller
func (e *Engine) Controller() *Controller { return e.sync }

// Store returns the clip store
func (e *Engine) Store() *clips.Store { return e.store }

// Surface returns the output surface
func (e *Engine) Surface() compositor.Surface { return e.surface }

// Tick advances the clock by delta, synchronises adapters and composites,
// in that order
func (e *Engine) Tick(delta time.Duration) Frame {
	e.clock.Advance(delta)
	t := e.clock.Current()
	acts := e.sync.Sync(t, e.clock.Playing())
	return e.compose(t, acts)
}

// RenderFrame produces the frame at t exactly. Playback is paused, and every
// active visual adapter is waited on until its frame is decoded.
func (e *Engine) RenderFrame(ctx context.Context, t time.Duration) (Frame, error) {
	e.clock.Pause()
	e.clock.Seek(t)
	t = e.clock.Current()
	acts := e.sync.SyncExact(t)

	for _, act := range acts {
		if !act.Active || !act.Adapter || !act.Clip.Kind.Visual() {
			continue
		}
		a, ok := e.sync.Registry().Get(act.Clip.ID)
		if !ok {
			continue
		}
		if w, ok := a.(media.Waiter); ok && a.State() == media.StateLoading {
			if err := w.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return Frame{}, ctx.Err()
				}
				e.logger.Debug().Err(err).Str("clip", act.Clip.ID).Msg("clip skipped in render")
				continue
			}
			// loaded after the sync pass; align it now
			a.SeekTo(act.LocalTime)
		}
		if p, ok := a.(media.Preparer); ok && a.State() == media.StateReady {
			if err := p.Prepare(ctx); err != nil {
				if ctx.Err() != nil {
					return Frame{}, ctx.Err()
				}
				e.logger.Debug().Err(err).Str("clip", act.Clip.ID).Msg("frame not decoded")
			}
		}
	}

	return e.compose(t, acts), nil
}

// Run ticks the engine every interval with the measured wall-clock delta
// until ctx is cancelled. onFrame, if set, sees every frame.
func (e *Engine) Run(ctx context.Context, interval time.Duration, onFrame func(Frame)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			e.dispatch(func() {
				f := e.Tick(delta)
				if onFrame != nil {
					onFrame(f)
				}
			})
		}
	}
}

func (e *Engine) compose(t time.Duration, acts []Activation) Frame {
	var layers []compositor.Layer
	for _, act := range acts {
		if !act.Active || !act.Clip.Kind.Visual() {
			continue
		}
		a, ok := e.sync.Registry().Get(act.Clip.ID)
		if !ok {
			continue
		}
		v, ok := a.(media.Visual)
		if !ok || a.State() != media.StateReady {
			continue
		}
		if img := v.Frame(); img != nil {
			layers = append(layers, compositor.Layer{ClipID: act.Clip.ID, Image: img})
		}
	}

	return Frame{
		Time:        t,
		Playing:     e.clock.Playing(),
		Activations: acts,
		Drawn:       e.compositor.Compose(e.surface, layers),
	}
}

// Close releases all adapters
func (e *Engine) Close() error {
	return e.sync.Close()
}
