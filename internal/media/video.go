package media

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/slopstudio/internal/clips"
)

const defaultFPS = 30.0

// SourceInfo describes a probed video source
type SourceInfo struct {
	Duration time.Duration
	Width    int
	Height   int
	FPS      float64
}

// FrameSource decodes pictures out of a video file
type FrameSource interface {
	Probe(ctx context.Context) (SourceInfo, error)
	FrameAt(ctx context.Context, at time.Duration) (image.Image, error)
}

// VideoAdapter drives a FrameSource from its own wall-clock anchored
// playhead. Frames are decoded by a background worker; Frame never blocks
// and returns the latest picture available.
type VideoAdapter struct {
	*lifecycle
	src    FrameSource
	logger zerolog.Logger
	info   SourceInfo

	head   playhead
	volume float64

	mu         sync.Mutex
	frame      image.Image
	frameIdx   int64
	pendingIdx int64
	requests   chan int64
}

var (
	_ Visual   = (*VideoAdapter)(nil)
	_ Preparer = (*VideoAdapter)(nil)
	_ Waiter   = (*VideoAdapter)(nil)
)

// NewVideoAdapter creates an adapter and starts probing src in the background
func NewVideoAdapter(clip clips.Clip, src FrameSource, opts Options) *VideoAdapter {
	a := &VideoAdapter{
		lifecycle:  newLifecycle(opts.Context, clip),
		src:        src,
		logger:     opts.logger().With().Str("component", "video-adapter").Str("clip", clip.ID).Logger(),
		head:       newPlayhead(opts.Clock),
		volume:     clip.Volume,
		frameIdx:   -1,
		pendingIdx: -1,
		requests:   make(chan int64, 1),
	}
	go a.load()
	return a
}

func (a *VideoAdapter) load() {
	info, err := a.src.Probe(a.ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("video source failed to load")
		a.finish(fmt.Errorf("probe video: %w", err))
		return
	}
	if info.FPS <= 0 {
		info.FPS = defaultFPS
	}
	a.info = info
	a.finish(nil)

	a.logger.Debug().
		Dur("duration", info.Duration).
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", info.FPS).
		Msg("video source ready")

	a.decodeLoop()
}

func (a *VideoAdapter) decodeLoop() {
	for {
		select {
		case <-a.ctx.Done():
			return
		case idx := <-a.requests:
			img, err := a.src.FrameAt(a.ctx, a.frameTime(idx))
			if err != nil {
				if a.ctx.Err() == nil {
					a.logger.Debug().Err(err).Int64("frame", idx).Msg("frame decode failed")
				}
				continue
			}
			a.mu.Lock()
			if idx == a.pendingIdx {
				a.frame = img
				a.frameIdx = idx
			}
			a.mu.Unlock()
		}
	}
}

// Info returns the probed source description once ready
func (a *VideoAdapter) Info() (SourceInfo, bool) {
	if !a.ready() {
		return SourceInfo{}, false
	}
	return a.info, true
}

func (a *VideoAdapter) SeekTo(local time.Duration) {
	a.head.seek(local)
}

func (a *VideoAdapter) SetPlaying(playing bool) {
	a.head.setPlaying(playing)
}

func (a *VideoAdapter) Playing() bool {
	return a.head.playing
}

func (a *VideoAdapter) Position() time.Duration {
	pos := a.head.position()
	if a.ready() && a.info.Duration > 0 && pos > a.info.Duration {
		pos = a.info.Duration
	}
	return pos
}

func (a *VideoAdapter) NaturalDuration() (time.Duration, bool) {
	if !a.ready() || a.info.Duration <= 0 {
		return 0, false
	}
	return a.info.Duration, true
}

// SetVolume records the level; frame-only sources emit no sound
func (a *VideoAdapter) SetVolume(v float64) {
	a.volume = v
}

// Volume returns the last commanded level
func (a *VideoAdapter) Volume() float64 {
	return a.volume
}

// Frame returns the latest decoded picture and schedules decoding of the
// frame for the current position when it differs
func (a *VideoAdapter) Frame() image.Image {
	if !a.ready() {
		return nil
	}
	idx := a.frameIndex(a.Position())

	a.mu.Lock()
	defer a.mu.Unlock()
	if idx != a.frameIdx && idx != a.pendingIdx {
		a.pendingIdx = idx
		// latest request wins
		select {
		case <-a.requests:
		default:
		}
		a.requests <- idx
	}
	return a.frame
}

// Prepare decodes the frame for the current position synchronously
func (a *VideoAdapter) Prepare(ctx context.Context) error {
	if err := a.Wait(ctx); err != nil {
		return err
	}
	idx := a.frameIndex(a.Position())

	a.mu.Lock()
	current := a.frameIdx
	a.pendingIdx = idx
	a.mu.Unlock()
	if current == idx {
		return nil
	}

	img, err := a.src.FrameAt(ctx, a.frameTime(idx))
	if err != nil {
		return fmt.Errorf("decode frame %d: %w", idx, err)
	}

	a.mu.Lock()
	a.frame = img
	a.frameIdx = idx
	a.mu.Unlock()
	return nil
}

func (a *VideoAdapter) Close() error {
	a.head.setPlaying(false)
	a.close()
	return nil
}

func (a *VideoAdapter) frameIndex(pos time.Duration) int64 {
	return int64(pos.Seconds() * a.info.FPS)
}

func (a *VideoAdapter) frameTime(idx int64) time.Duration {
	return time.Duration(float64(idx) / a.info.FPS * float64(time.Second))
}
