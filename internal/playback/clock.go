// Package playback owns the virtual playhead and keeps media adapters and
// the compositor in step with it.
package playback

import "time"

// DurationSource reports the current project length
type DurationSource interface {
	Duration() time.Duration
}

// Clock is the single authoritative playhead of a project
type Clock struct {
	project DurationSource
	current time.Duration
	playing bool
}

// NewClock creates a stopped clock at 0
func NewClock(project DurationSource) *Clock {
	return &Clock{project: project}
}

// Current returns the playhead position
func (c *Clock) Current() time.Duration { return c.current }

// Playing reports whether the clock advances on Advance
func (c *Clock) Playing() bool { return c.playing }

// Play starts playback. At the end of the project it rewinds to 0 first; an
// empty project stays stopped.
func (c *Clock) Play() {
	if c.playing {
		return
	}
	d := c.project.Duration()
	if d <= 0 {
		return
	}
	if c.current >= d {
		c.current = 0
	}
	c.playing = true
}

// Pause stops playback, keeping the position
func (c *Clock) Pause() {
	c.playing = false
}

// Toggle switches between Play and Pause
func (c *Clock) Toggle() {
	if c.playing {
		c.Pause()
	} else {
		c.Play()
	}
}

// Seek moves the playhead, clamped to [0, duration]. Reaching the end stops
// playback.
func (c *Clock) Seek(t time.Duration) {
	c.current = t
	c.clamp()
}

// Advance moves a playing clock forward by the measured wall-clock delta
func (c *Clock) Advance(delta time.Duration) {
	if c.playing && delta > 0 {
		c.current += delta
	}
	c.clamp()
}

func (c *Clock) clamp() {
	d := c.project.Duration()
	if c.current < 0 {
		c.current = 0
	}
	if c.current >= d {
		c.current = d
		c.playing = false
	}
}
