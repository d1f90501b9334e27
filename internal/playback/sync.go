package playback

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/slopstudio/internal/clips"
	"github.com/kikiluvv/slopstudio/internal/media"
)

// Default synchronisation tolerances
const (
	DefaultDriftThreshold = 200 * time.Millisecond
	DefaultPreloadWindow  = 2 * time.Second
)

// Activation is the synchronisation outcome for one clip at one instant
type Activation struct {
	Clip      clips.Clip
	Active    bool
	LocalTime time.Duration
	// State is the adapter state; Adapter is false when none exists yet
	State   media.State
	Adapter bool
	Seeked  bool
}

// Evaluate computes which clips are active at t and their local offsets
func Evaluate(list []clips.Clip, t time.Duration) []Activation {
	out := make([]Activation, len(list))
	for i, c := range list {
		out[i] = Activation{Clip: c, Active: c.ActiveAt(t)}
		if out[i].Active {
			out[i].LocalTime = c.LocalTime(t)
		}
	}
	return out
}

// SyncOptions tunes a Controller
type SyncOptions struct {
	// DriftThreshold is the largest tolerated gap between an adapter's
	// reported position and its commanded local time before it is re-seeked
	DriftThreshold time.Duration
	// PreloadWindow creates adapters for clips starting this far ahead
	PreloadWindow time.Duration
	Logger        zerolog.Logger
}

// Controller pushes the playhead into every clip's adapter. It owns the
// adapter registry and tears adapters down when their clip is removed.
type Controller struct {
	store       *clips.Store
	registry    *media.Registry
	threshold   time.Duration
	preload     time.Duration
	muted       bool
	logger      zerolog.Logger
	unsubscribe func()
}

// NewController creates a controller over store and registry
func NewController(store *clips.Store, registry *media.Registry, opts SyncOptions) *Controller {
	if opts.DriftThreshold <= 0 {
		opts.DriftThreshold = DefaultDriftThreshold
	}
	if opts.PreloadWindow < 0 {
		opts.PreloadWindow = 0
	}

	c := &Controller{
		store:     store,
		registry:  registry,
		threshold: opts.DriftThreshold,
		preload:   opts.PreloadWindow,
		logger:    opts.Logger.With().Str("component", "sync").Logger(),
	}
	c.unsubscribe = store.Subscribe(c.onEvent)
	return c
}

func (c *Controller) onEvent(ev clips.Event) {
	if ev.Type != clips.EventRemoved {
		return
	}
	if err := c.registry.Release(ev.Clip.ID); err != nil {
		c.logger.Warn().Err(err).Str("clip", ev.Clip.ID).Msg("failed to release adapter")
	}
}

// SetMuted silences every audible adapter from the next sync on
func (c *Controller) SetMuted(muted bool) { c.muted = muted }

// Muted reports the global mute state
func (c *Controller) Muted() bool { return c.muted }

// DriftThreshold returns the configured seek tolerance
func (c *Controller) DriftThreshold() time.Duration { return c.threshold }

// Registry returns the adapter registry
func (c *Controller) Registry() *media.Registry { return c.registry }

// Sync aligns every adapter with playhead t
func (c *Controller) Sync(t time.Duration, playing bool) []Activation {
	return c.sync(t, playing, c.threshold)
}

// SyncExact is Sync with zero drift tolerance, for offline rendering
func (c *Controller) SyncExact(t time.Duration) []Activation {
	return c.sync(t, false, 0)
}

func (c *Controller) sync(t time.Duration, playing bool, threshold time.Duration) []Activation {
	acts := Evaluate(c.store.Clips(), t)
	for i := range acts {
		act := &acts[i]
		a := c.adapterFor(act.Clip, act.Active, t)
		if a == nil {
			continue
		}
		act.Adapter = true
		act.State = a.State()
		if act.State != media.StateReady {
			// loading and failed adapters are transparent
			continue
		}

		if !act.Active {
			if a.Playing() {
				a.SetPlaying(false)
			}
			continue
		}

		if drift(a, act.LocalTime) > threshold {
			a.SeekTo(act.LocalTime)
			act.Seeked = true
		}
		if a.Playing() != playing {
			a.SetPlaying(playing)
		}
		if act.Clip.Kind.Audible() {
			v := act.Clip.Volume
			if c.muted {
				v = 0
			}
			a.SetVolume(v)
		}
	}
	return acts
}

// adapterFor returns the clip's adapter, creating it when the clip is
// active or about to become active
func (c *Controller) adapterFor(clip clips.Clip, active bool, t time.Duration) media.Adapter {
	if a, ok := c.registry.Get(clip.ID); ok {
		return a
	}
	upcoming := clip.Start > t && clip.Start-t <= c.preload
	if !active && !upcoming {
		return nil
	}
	a, err := c.registry.Acquire(clip)
	if err != nil {
		c.logger.Warn().Err(err).Str("clip", clip.ID).Msg("no adapter for clip")
		return nil
	}
	return a
}

// drift measures how far the adapter is from local, ignoring the part of
// local that lies beyond the source's natural end
func drift(a media.Adapter, local time.Duration) time.Duration {
	target := local
	if nd, ok := a.NaturalDuration(); ok && target > nd {
		target = nd
	}
	d := a.Position() - target
	if d < 0 {
		d = -d
	}
	return d
}

// Close releases every adapter and stops listening to the store
func (c *Controller) Close() error {
	c.unsubscribe()
	return c.registry.ReleaseAll()
}
