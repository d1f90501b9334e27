package media

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/slopstudio/internal/clips"
)

// AudioBackend is the decoder handle behind an AudioAdapter
type AudioBackend interface {
	// Open decodes headers and returns the natural duration
	Open() (time.Duration, error)
	Seek(local time.Duration) error
	SetPaused(paused bool)
	Position() time.Duration
	SetVolume(v float64)
	// Clocked reports whether Position advances on its own, i.e. an output
	// device is pulling samples
	Clocked() bool
	Close() error
}

// AudioAdapter keeps an AudioBackend aligned with commanded state. Commands
// issued while loading are replayed onto the backend once it is open.
type AudioAdapter struct {
	*lifecycle
	backend  AudioBackend
	logger   zerolog.Logger
	duration time.Duration

	head     playhead
	volume   float64
	attached bool

	// serialises the loader's hand-off with Close
	openMu sync.Mutex
}

var (
	_ Adapter = (*AudioAdapter)(nil)
	_ Waiter  = (*AudioAdapter)(nil)
)

// NewAudioAdapter creates an adapter and opens backend in the background
func NewAudioAdapter(clip clips.Clip, backend AudioBackend, opts Options) *AudioAdapter {
	a := &AudioAdapter{
		lifecycle: newLifecycle(opts.Context, clip),
		backend:   backend,
		logger:    opts.logger().With().Str("component", "audio-adapter").Str("clip", clip.ID).Logger(),
		head:      newPlayhead(opts.Clock),
		volume:    clip.Volume,
	}
	go a.load()
	return a
}

func (a *AudioAdapter) load() {
	d, err := a.backend.Open()

	a.openMu.Lock()
	defer a.openMu.Unlock()
	if err != nil {
		a.logger.Warn().Err(err).Msg("audio source failed to load")
		a.finish(fmt.Errorf("open audio: %w", err))
		return
	}
	if a.State() == StateClosed {
		_ = a.backend.Close()
		return
	}
	a.duration = d
	a.finish(nil)
	a.logger.Debug().Dur("duration", d).Msg("audio source ready")
}

// attach pushes the commanded state to the backend the first time the
// adapter is used after loading completed
func (a *AudioAdapter) attach() bool {
	if !a.ready() {
		return false
	}
	if !a.attached {
		a.attached = true
		a.backend.SetVolume(a.volume)
		if err := a.backend.Seek(a.head.position()); err != nil {
			a.logger.Debug().Err(err).Msg("initial seek failed")
		}
		a.backend.SetPaused(!a.head.playing)
	}
	return true
}

func (a *AudioAdapter) SeekTo(local time.Duration) {
	a.head.seek(local)
	if a.attach() {
		if err := a.backend.Seek(local); err != nil {
			a.logger.Debug().Err(err).Dur("local", local).Msg("seek failed")
		}
	}
}

func (a *AudioAdapter) SetPlaying(playing bool) {
	if a.head.playing == playing {
		a.attach()
		return
	}
	if a.attach() && a.backend.Clocked() {
		// the device clock is authoritative; carry its position over
		a.head.seek(a.backend.Position())
	}
	a.head.setPlaying(playing)
	if a.ready() {
		a.backend.SetPaused(!playing)
	}
}

func (a *AudioAdapter) Playing() bool {
	return a.head.playing
}

func (a *AudioAdapter) Position() time.Duration {
	if a.attach() && a.backend.Clocked() {
		return a.backend.Position()
	}
	pos := a.head.position()
	if a.ready() && a.duration > 0 && pos > a.duration {
		pos = a.duration
	}
	return pos
}

func (a *AudioAdapter) NaturalDuration() (time.Duration, bool) {
	if !a.ready() || a.duration <= 0 {
		return 0, false
	}
	return a.duration, true
}

func (a *AudioAdapter) SetVolume(v float64) {
	if v == a.volume && a.attached {
		return
	}
	a.volume = v
	if a.attach() {
		a.backend.SetVolume(v)
	}
}

// Volume returns the last commanded level
func (a *AudioAdapter) Volume() float64 {
	return a.volume
}

func (a *AudioAdapter) Close() error {
	a.head.setPlaying(false)

	a.openMu.Lock()
	wasReady := a.ready()
	a.close()
	a.openMu.Unlock()

	if !wasReady {
		// the loader closes a backend that finishes opening after this point
		return nil
	}
	a.backend.SetPaused(true)
	return a.backend.Close()
}
