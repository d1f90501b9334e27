package media

import (
	"sync"
	"time"
)

// TimeSource supplies the wall clock that timed adapters advance against
type TimeSource interface {
	Now() time.Time
}

// SystemClock reads the real wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a TimeSource that only moves when told to. Offline renders
// and tests use it so adapters advance in lock-step with virtual time.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock frozen at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// playhead is the internal clock of a timed adapter: a local position
// anchored to a wall-clock instant, advancing while playing
type playhead struct {
	clock      TimeSource
	anchorPos  time.Duration
	anchorWall time.Time
	playing    bool
}

func newPlayhead(clock TimeSource) playhead {
	if clock == nil {
		clock = SystemClock{}
	}
	return playhead{clock: clock, anchorWall: clock.Now()}
}

func (p *playhead) position() time.Duration {
	pos := p.anchorPos
	if p.playing {
		pos += p.clock.Now().Sub(p.anchorWall)
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

func (p *playhead) seek(local time.Duration) {
	if local < 0 {
		local = 0
	}
	p.anchorPos = local
	p.anchorWall = p.clock.Now()
}

func (p *playhead) setPlaying(playing bool) {
	if p.playing == playing {
		return
	}
	// re-anchor so the transition does not jump
	p.anchorPos = p.position()
	p.anchorWall = p.clock.Now()
	p.playing = playing
}
