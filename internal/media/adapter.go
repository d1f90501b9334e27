// Package media wraps decodable sources behind a uniform seek/play contract.
//
// Adapters start loading on a background goroutine as soon as they are
// created. Every other method is meant to be called from the single goroutine
// that drives playback; until State reports StateReady the playback engine
// treats the adapter as absent.
package media

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kikiluvv/slopstudio/internal/clips"
)

// State is the load lifecycle of an adapter
type State int32

const (
	StateLoading State = iota
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Adapter is the uniform contract over one clip's decodable source
type Adapter interface {
	ClipID() string
	Kind() clips.Kind
	State() State
	// Err returns the load failure once State is StateFailed
	Err() error
	SeekTo(local time.Duration)
	SetPlaying(playing bool)
	Playing() bool
	// Position reports the local time the source is currently at
	Position() time.Duration
	// NaturalDuration returns the intrinsic length; ok is false for images
	// and for sources that have not finished loading
	NaturalDuration() (d time.Duration, ok bool)
	SetVolume(v float64)
	Close() error
}

// Visual is implemented by adapters that produce pictures
type Visual interface {
	Adapter
	// Frame returns the most recently decoded picture, nil if none yet
	Frame() image.Image
}

// Preparer is implemented by adapters that can block until the frame for
// their current position has been decoded
type Preparer interface {
	Prepare(ctx context.Context) error
}

// Waiter blocks until loading finished, successfully or not
type Waiter interface {
	Wait(ctx context.Context) error
}

// lifecycle carries the state shared by every adapter implementation
type lifecycle struct {
	clipID string
	kind   clips.Kind

	state  atomic.Int32
	errMu  sync.Mutex
	err    error
	loaded chan struct{}
	once   sync.Once

	ctx    context.Context
	cancel context.CancelFunc
}

func newLifecycle(parent context.Context, clip clips.Clip) *lifecycle {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &lifecycle{
		clipID: clip.ID,
		kind:   clip.Kind,
		loaded: make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (l *lifecycle) ClipID() string   { return l.clipID }
func (l *lifecycle) Kind() clips.Kind { return l.kind }
func (l *lifecycle) State() State     { return State(l.state.Load()) }

func (l *lifecycle) Err() error {
	l.errMu.Lock()
	defer l.errMu.Unlock()
	return l.err
}

func (l *lifecycle) ready() bool { return l.State() == StateReady }

// finish records the outcome of loading; a closed adapter stays closed
func (l *lifecycle) finish(err error) {
	l.once.Do(func() {
		if err != nil {
			l.errMu.Lock()
			l.err = err
			l.errMu.Unlock()
			l.state.CompareAndSwap(int32(StateLoading), int32(StateFailed))
		} else {
			l.state.CompareAndSwap(int32(StateLoading), int32(StateReady))
		}
		close(l.loaded)
	})
}

func (l *lifecycle) close() {
	l.state.Store(int32(StateClosed))
	l.cancel()
	l.finish(fmt.Errorf("adapter closed"))
}

// Wait blocks until loading completed and returns the load error, if any
func (l *lifecycle) Wait(ctx context.Context) error {
	select {
	case <-l.loaded:
		return l.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
