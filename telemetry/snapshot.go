package telemetry

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/sandfall/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete simulation state for replay.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	Width  int `json:"width"`
	Height int `json:"height"`

	Tick int64 `json:"tick"`

	Types []TypeState    `json:"types"`
	Rules []systems.Rule `json:"rules"`
	Cells []CellState    `json:"cells"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// TypeState holds one registered type definition.
type TypeState struct {
	Name    string       `json:"name"`
	Kind    systems.Kind `json:"kind"`
	Color   color.RGBA   `json:"color"`
	Density float32      `json:"density"`
}

// CellState holds one occupied cell. The particle's own copy of its type
// fields is stored, not a reference to the registry.
type CellState struct {
	X       int          `json:"x"`
	Y       int          `json:"y"`
	Type    string       `json:"type"`
	Kind    systems.Kind `json:"kind"`
	Color   color.RGBA   `json:"color"`
	Density float32      `json:"density"`
}

// CaptureSnapshot records the registry, rules and occupied cells of ps.
func CaptureSnapshot(ps *systems.ParticleSystem, seed int64) *Snapshot {
	snap := &Snapshot{
		Version: SnapshotVersion,
		RNGSeed: seed,
		Width:   ps.Width(),
		Height:  ps.Height(),
		Tick:    ps.Tick(),
		Rules:   ps.Interactions.Rules(),
	}

	for _, name := range ps.Registry.Names() {
		def, _ := ps.Registry.Lookup(name)
		snap.Types = append(snap.Types, TypeState{
			Name:    def.Name,
			Kind:    def.Kind,
			Color:   def.Color,
			Density: def.Density,
		})
	}

	for y := 0; y < ps.Height(); y++ {
		for x := 0; x < ps.Width(); x++ {
			p := ps.Grid.CellAt(x, y)
			if p.Empty() {
				continue
			}
			snap.Cells = append(snap.Cells, CellState{
				X:       x,
				Y:       y,
				Type:    p.Type,
				Kind:    p.Kind,
				Color:   p.Color,
				Density: p.Density,
			})
		}
	}

	return snap
}

// Restore replaces the contents of ps with the snapshot. Types and rules are
// registered on top of whatever ps already has. The snapshot is checked in
// full first, so a rejected snapshot leaves ps untouched.
func (s *Snapshot) Restore(ps *systems.ParticleSystem) error {
	if err := s.validate(ps); err != nil {
		return err
	}

	for _, ts := range s.Types {
		def := systems.TypeDef{Name: ts.Name, Kind: ts.Kind, Color: ts.Color, Density: ts.Density}
		if err := ps.Register(def); err != nil {
			return fmt.Errorf("restoring type: %w", err)
		}
	}
	for _, r := range s.Rules {
		if err := ps.SetInteraction(r.A, r.B, r.Result); err != nil {
			return fmt.Errorf("restoring rule: %w", err)
		}
	}

	ps.Clear()
	for _, c := range s.Cells {
		p := systems.Particle{Type: c.Type, Kind: c.Kind, Color: c.Color, Density: c.Density}
		if err := ps.Grid.Place(p, c.X, c.Y); err != nil {
			return fmt.Errorf("restoring cell: %w", err)
		}
	}
	ps.SetTick(s.Tick)
	ps.Reseed(s.RNGSeed + s.Tick)

	return nil
}

// validate checks everything Restore would reject, without touching ps.
func (s *Snapshot) validate(ps *systems.ParticleSystem) error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("snapshot version %d, want %d", s.Version, SnapshotVersion)
	}
	if s.Width != ps.Width() || s.Height != ps.Height() {
		return fmt.Errorf("snapshot grid %dx%d does not match %dx%d", s.Width, s.Height, ps.Width(), ps.Height())
	}

	known := make(map[string]bool, len(s.Types))
	for _, ts := range s.Types {
		if ts.Name == "" || ts.Kind == systems.KindEmpty {
			return fmt.Errorf("snapshot type %q: missing name or kind", ts.Name)
		}
		known[ts.Name] = true
	}
	has := func(name string) bool { return known[name] || ps.Registry.Has(name) }

	for _, r := range s.Rules {
		for _, name := range [...]string{r.A, r.B, r.Result} {
			if !has(name) {
				return fmt.Errorf("snapshot rule %s+%s->%s: %q: %w", r.A, r.B, r.Result, name, systems.ErrNotFound)
			}
		}
	}
	for _, c := range s.Cells {
		if !ps.Grid.InBounds(c.X, c.Y) {
			return fmt.Errorf("snapshot cell (%d,%d): %w", c.X, c.Y, systems.ErrOutOfBounds)
		}
		if c.Kind == systems.KindEmpty {
			return fmt.Errorf("snapshot cell (%d,%d): empty kind", c.X, c.Y)
		}
	}
	return nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
