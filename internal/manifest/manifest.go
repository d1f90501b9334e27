// Package manifest loads a YAML description of a timeline and replays it
// into a clip store as ordinary edits.
package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kikiluvv/slopstudio/internal/clips"
)

// Manifest is an ordered list of clips followed by edits against them
type Manifest struct {
	Name  string     `yaml:"name"`
	Clips []ClipSpec `yaml:"clips"`
	Edits []Edit     `yaml:"edits,omitempty"`
}

// ClipSpec adds one clip. Kind is taken from the file extension and a zero
// Duration is resolved from the media itself when omitted.
type ClipSpec struct {
	ID       string         `yaml:"id,omitempty"`
	Kind     clips.Kind     `yaml:"kind,omitempty"`
	Source   string         `yaml:"source"`
	Duration time.Duration  `yaml:"duration,omitempty"`
	Start    *time.Duration `yaml:"start,omitempty"`
	Volume   *float64       `yaml:"volume,omitempty"`
	Name     string         `yaml:"name,omitempty"`
	Effects  []string       `yaml:"effects,omitempty"`
}

// Edit is a store operation applied after all clips were added
type Edit struct {
	Op       string         `yaml:"op"`
	Clip     string         `yaml:"clip"`
	Start    time.Duration  `yaml:"start,omitempty"`
	Edge     string         `yaml:"edge,omitempty"`
	Boundary time.Duration  `yaml:"boundary,omitempty"`
	Property clips.Property `yaml:"property,omitempty"`
	Value    any            `yaml:"value,omitempty"`
}

// DurationFunc resolves the natural duration of a source
type DurationFunc func(ctx context.Context, kind clips.Kind, source string) (time.Duration, error)

// Load reads a manifest and resolves relative sources against its directory
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range m.Clips {
		if src := m.Clips[i].Source; src != "" && !filepath.IsAbs(src) {
			m.Clips[i].Source = filepath.Join(base, src)
		}
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// Parse decodes a manifest and fills in kinds from source extensions
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	labels := make(map[string]bool)
	for i := range m.Clips {
		c := &m.Clips[i]
		if c.Source == "" {
			return nil, fmt.Errorf("clip %d: source is required", i)
		}
		if c.Kind == 0 {
			kind, err := clips.KindFromPath(c.Source)
			if err != nil {
				return nil, fmt.Errorf("clip %d: %w", i, err)
			}
			c.Kind = kind
		}
		if c.ID != "" {
			if labels[c.ID] {
				return nil, fmt.Errorf("clip %d: duplicate id %q", i, c.ID)
			}
			labels[c.ID] = true
		}
	}
	for i, e := range m.Edits {
		if !labels[e.Clip] {
			return nil, fmt.Errorf("edit %d: unknown clip %q", i, e.Clip)
		}
	}
	return &m, nil
}

// Apply adds every clip to store and replays the edits. It returns the store
// IDs of labelled clips.
func (m *Manifest) Apply(ctx context.Context, store *clips.Store, resolve DurationFunc) (map[string]string, error) {
	ids := make(map[string]string, len(m.Clips))

	for i, spec := range m.Clips {
		d := spec.Duration
		if d <= 0 {
			if resolve == nil {
				return ids, fmt.Errorf("clip %d: duration is required", i)
			}
			var err error
			if d, err = resolve(ctx, spec.Kind, spec.Source); err != nil {
				return ids, fmt.Errorf("clip %d: %w", i, err)
			}
		}

		c, err := store.AddClip(spec.Kind, spec.Source, d)
		if err != nil {
			return ids, fmt.Errorf("clip %d: %w", i, err)
		}
		if spec.ID != "" {
			ids[spec.ID] = c.ID
		}

		if spec.Start != nil {
			if err := store.MoveClip(c.ID, *spec.Start); err != nil {
				return ids, fmt.Errorf("clip %d: %w", i, err)
			}
		}
		if spec.Volume != nil {
			if err := store.UpdateClipProperty(c.ID, clips.PropertyVolume, *spec.Volume); err != nil {
				return ids, fmt.Errorf("clip %d: %w", i, err)
			}
		}
		if spec.Name != "" {
			if err := store.UpdateClipProperty(c.ID, clips.PropertyName, spec.Name); err != nil {
				return ids, fmt.Errorf("clip %d: %w", i, err)
			}
		}
		if len(spec.Effects) > 0 {
			if err := store.UpdateClipProperty(c.ID, clips.PropertyEffects, spec.Effects); err != nil {
				return ids, fmt.Errorf("clip %d: %w", i, err)
			}
		}
	}

	for i, e := range m.Edits {
		if err := applyEdit(store, ids[e.Clip], e); err != nil {
			return ids, fmt.Errorf("edit %d (%s %s): %w", i, e.Op, e.Clip, err)
		}
	}
	return ids, nil
}

func applyEdit(store *clips.Store, id string, e Edit) error {
	switch e.Op {
	case "move":
		return store.MoveClip(id, e.Start)
	case "resize":
		edge, err := parseEdge(e.Edge)
		if err != nil {
			return err
		}
		return store.ResizeClip(id, edge, e.Boundary)
	case "remove":
		return store.RemoveClip(id)
	case "update":
		return store.UpdateClipProperty(id, e.Property, normalizeValue(e.Value))
	default:
		return fmt.Errorf("unknown op %q", e.Op)
	}
}

func parseEdge(s string) (clips.Edge, error) {
	switch strings.ToLower(s) {
	case "left", "start":
		return clips.EdgeLeft, nil
	case "right", "end":
		return clips.EdgeRight, nil
	default:
		return 0, fmt.Errorf("unknown edge %q", s)
	}
}

// normalizeValue turns YAML sequences into the string lists the store expects
func normalizeValue(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, fmt.Sprint(item))
	}
	return out
}
