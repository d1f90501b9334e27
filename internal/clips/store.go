package clips

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMinDuration is the shortest extent a clip may be resized to
const DefaultMinDuration = 100 * time.Millisecond

// EventType describes what happened to a clip
type EventType uint8

const (
	EventAdded EventType = iota + 1
	EventChanged
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventChanged:
		return "changed"
	case EventRemoved:
		return "removed"
	default:
		return fmt.Sprintf("event(%d)", uint8(t))
	}
}

// Event is delivered to subscribers after a mutation has been applied
type Event struct {
	Type EventType
	Clip Clip
}

// Project is a point-in-time snapshot of the store
type Project struct {
	ID       string
	Name     string
	Clips    []Clip
	Duration time.Duration
}

// Option configures a Store
type Option func(*Store)

// WithMinDuration overrides the minimum clip duration
func WithMinDuration(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.minDuration = d
		}
	}
}

// WithIDGenerator overrides how clip identifiers are minted
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Store holds the ordered clip list of a project and enforces its invariants.
// It is owned by a single controller and is not safe for concurrent use.
type Store struct {
	id          string
	name        string
	clips       []Clip
	duration    time.Duration
	selected    string
	minDuration time.Duration
	newID       func() string
	listeners   map[int]func(Event)
	nextListen  int
}

// NewStore creates an empty project
func NewStore(name string, opts ...Option) *Store {
	s := &Store{
		id:          uuid.NewString(),
		name:        name,
		clips:       make([]Clip, 0),
		minDuration: DefaultMinDuration,
		newID:       uuid.NewString,
		listeners:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the project identifier
func (s *Store) ID() string { return s.id }

// Name returns the project display name
func (s *Store) Name() string { return s.name }

// MinDuration returns the minimum clip duration enforced by resize
func (s *Store) MinDuration() time.Duration { return s.minDuration }

// Duration returns max(start+duration) over all clips, 0 when empty
func (s *Store) Duration() time.Duration { return s.duration }

// Len returns the number of clips
func (s *Store) Len() int { return len(s.clips) }

// Clips returns a copy of the clips in list order
func (s *Store) Clips() []Clip {
	out := make([]Clip, len(s.clips))
	for i, c := range s.clips {
		out[i] = c.clone()
	}
	return out
}

// Clip looks up a clip by ID
func (s *Store) Clip(id string) (Clip, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Clip{}, false
	}
	return s.clips[i].clone(), true
}

// Project returns a snapshot of the whole project
func (s *Store) Project() Project {
	return Project{
		ID:       s.id,
		Name:     s.name,
		Clips:    s.Clips(),
		Duration: s.duration,
	}
}

// Subscribe registers fn for change events and returns a function that removes it
func (s *Store) Subscribe(fn func(Event)) func() {
	key := s.nextListen
	s.nextListen++
	s.listeners[key] = fn
	return func() { delete(s.listeners, key) }
}

// AddClip appends a clip directly after the current end of the project
func (s *Store) AddClip(kind Kind, source string, duration time.Duration) (Clip, error) {
	if !kind.Valid() {
		return Clip{}, invariant("add clip", "invalid kind %d", uint8(kind))
	}
	if duration <= 0 {
		return Clip{}, invariant("add clip", "duration must be positive, got %v", duration)
	}
	if duration < s.minDuration {
		duration = s.minDuration
	}

	clip := Clip{
		ID:       s.newID(),
		Name:     defaultName(source),
		Kind:     kind,
		Source:   source,
		Start:    s.duration,
		Duration: duration,
		Volume:   1.0,
	}
	if !kind.Audible() {
		clip.Volume = 0
	}

	s.clips = append(s.clips, clip)
	s.recompute()
	s.emit(EventAdded, clip)
	return clip.clone(), nil
}

// MoveClip places a clip at a new timeline offset, clamped to 0
func (s *Store) MoveClip(id string, start time.Duration) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("move clip %s: %w", id, ErrClipNotFound)
	}
	if start < 0 {
		start = 0
	}
	if s.clips[i].Start == start {
		return nil
	}
	s.clips[i].Start = start
	s.recompute()
	s.emit(EventChanged, s.clips[i])
	return nil
}

// ResizeClip moves one edge of a clip to boundary, a timeline position.
// Moving the left edge preserves the right edge; moving the right edge keeps
// the start. The duration never drops below the store minimum.
func (s *Store) ResizeClip(id string, edge Edge, boundary time.Duration) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("resize clip %s: %w", id, ErrClipNotFound)
	}

	c := s.clips[i]
	switch edge {
	case EdgeLeft:
		end := c.End()
		start := boundary
		if start < 0 {
			start = 0
		}
		// end >= minDuration always holds, so latest is never negative
		if latest := end - s.minDuration; start > latest {
			start = latest
		}
		c.Start = start
		c.Duration = end - start
	case EdgeRight:
		d := boundary - c.Start
		if d < s.minDuration {
			d = s.minDuration
		}
		c.Duration = d
	default:
		return invariant("resize clip", "unknown edge %v", edge)
	}

	if c.Start == s.clips[i].Start && c.Duration == s.clips[i].Duration {
		return nil
	}
	s.clips[i] = c
	s.recompute()
	s.emit(EventChanged, c)
	return nil
}

// RemoveClip deletes a clip, clearing the selection if it pointed at it
func (s *Store) RemoveClip(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("remove clip %s: %w", id, ErrClipNotFound)
	}
	removed := s.clips[i]
	s.clips = slices.Delete(s.clips, i, i+1)
	if s.selected == id {
		s.selected = ""
	}
	s.recompute()
	s.emit(EventRemoved, removed)
	return nil
}

// UpdateClipProperty changes the volume, name or effects of a clip
func (s *Store) UpdateClipProperty(id string, prop Property, value any) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("update clip %s: %w", id, ErrClipNotFound)
	}

	c := s.clips[i]
	switch prop {
	case PropertyVolume:
		if !c.Kind.Audible() {
			return invariant("update clip", "%s clips have no volume", c.Kind)
		}
		v, ok := toFloat(value)
		if !ok {
			return invariant("update clip", "volume must be numeric, got %T", value)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invariant("update clip", "volume must be finite, got %v", v)
		}
		c.Volume = clampUnit(v)
	case PropertyName:
		name, ok := value.(string)
		if !ok {
			return invariant("update clip", "name must be a string, got %T", value)
		}
		c.Name = name
	case PropertyEffects:
		effects, ok := value.([]string)
		if !ok {
			return invariant("update clip", "effects must be a string list, got %T", value)
		}
		c.Effects = append([]string(nil), effects...)
	default:
		return invariant("update clip", "unknown property %q", prop)
	}

	s.clips[i] = c
	s.emit(EventChanged, c)
	return nil
}

// Select marks a clip as the current selection
func (s *Store) Select(id string) error {
	if s.indexOf(id) < 0 {
		return fmt.Errorf("select clip %s: %w", id, ErrClipNotFound)
	}
	s.selected = id
	return nil
}

// Selected returns the selected clip ID, empty when nothing is selected
func (s *Store) Selected() string { return s.selected }

// ClearSelection drops the current selection
func (s *Store) ClearSelection() { s.selected = "" }

func (s *Store) indexOf(id string) int {
	for i := range s.clips {
		if s.clips[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) recompute() {
	var end time.Duration
	for _, c := range s.clips {
		if e := c.End(); e > end {
			end = e
		}
	}
	s.duration = end
}

func (s *Store) emit(t EventType, c Clip) {
	if len(s.listeners) == 0 {
		return
	}
	keys := make([]int, 0, len(s.listeners))
	for k := range s.listeners {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if fn, ok := s.listeners[k]; ok {
			fn(Event{Type: t, Clip: c.clone()})
		}
	}
}

func defaultName(source string) string {
	base := filepath.Base(source)
	if base == "." || base == "/" || base == "" {
		return source
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
