package clips

import (
	"errors"
	"fmt"
	"time"
)

// Clip is a single media reference placed on the project timeline
type Clip struct {
	ID       string
	Name     string
	Kind     Kind
	Source   string
	Start    time.Duration
	Duration time.Duration
	Volume   float64
	Effects  []string
}

// End returns the timeline position where the clip stops being active
func (c Clip) End() time.Duration {
	return c.Start + c.Duration
}

// ActiveAt reports whether t falls in the half-open window [Start, End)
func (c Clip) ActiveAt(t time.Duration) bool {
	return t >= c.Start && t < c.End()
}

// LocalTime converts a timeline position into an offset from the clip start
func (c Clip) LocalTime(t time.Duration) time.Duration {
	return t - c.Start
}

func (c Clip) clone() Clip {
	if c.Effects != nil {
		c.Effects = append([]string(nil), c.Effects...)
	}
	return c
}

// Edge selects which side of a clip a resize gesture moves
type Edge uint8

const (
	EdgeLeft Edge = iota + 1
	EdgeRight
)

func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	default:
		return fmt.Sprintf("edge(%d)", uint8(e))
	}
}

// Property names a field that UpdateClipProperty may change
type Property string

const (
	PropertyVolume  Property = "volume"
	PropertyName    Property = "name"
	PropertyEffects Property = "effects"
)

var (
	// ErrClipNotFound is returned when an operation names an unknown clip
	ErrClipNotFound = errors.New("clip not found")
	// ErrInvariant is matched by every InvariantError
	ErrInvariant = errors.New("clip invariant violation")
)

// InvariantError describes a rejected mutation
type InvariantError struct {
	Op     string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

func invariant(op, format string, args ...any) error {
	return &InvariantError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
