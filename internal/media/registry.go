package media

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/slopstudio/internal/clips"
)

// Registry owns the adapters of a project keyed by clip ID. It is used from
// the playback goroutine only.
type Registry struct {
	factory  Factory
	adapters map[string]Adapter
	logger   zerolog.Logger
}

// NewRegistry creates an empty registry that builds adapters with factory
func NewRegistry(factory Factory, logger zerolog.Logger) *Registry {
	return &Registry{
		factory:  factory,
		adapters: make(map[string]Adapter),
		logger:   logger.With().Str("component", "registry").Logger(),
	}
}

// Get returns the adapter for id if one exists
func (r *Registry) Get(id string) (Adapter, bool) {
	a, ok := r.adapters[id]
	return a, ok
}

// Acquire returns the adapter for clip, creating it on first use
func (r *Registry) Acquire(clip clips.Clip) (Adapter, error) {
	if a, ok := r.adapters[clip.ID]; ok {
		return a, nil
	}
	a, err := r.factory.New(clip)
	if err != nil {
		return nil, fmt.Errorf("create adapter for %s: %w", clip.ID, err)
	}
	r.adapters[clip.ID] = a
	r.logger.Debug().
		Str("clip", clip.ID).
		Str("kind", clip.Kind.String()).
		Str("source", clip.Source).
		Msg("adapter created")
	return a, nil
}

// Release stops and closes the adapter for id
func (r *Registry) Release(id string) error {
	a, ok := r.adapters[id]
	if !ok {
		return nil
	}
	delete(r.adapters, id)
	a.SetPlaying(false)
	if err := a.Close(); err != nil {
		return fmt.Errorf("close adapter %s: %w", id, err)
	}
	r.logger.Debug().Str("clip", id).Msg("adapter released")
	return nil
}

// ReleaseAll closes every adapter
func (r *Registry) ReleaseAll() error {
	var errs []error
	for _, id := range r.IDs() {
		if err := r.Release(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of live adapters
func (r *Registry) Len() int { return len(r.adapters) }

// IDs returns the clip IDs that have adapters, sorted
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
