package systems

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
)

// Layer is one type's color buffer, ready for upload to a texture.
type Layer struct {
	Name   string
	Pixels []color.RGBA
}

// ParticleSystem ties the registry, interaction table, grid and engine
// together and is the single entry point used by input sources and render
// sinks.
type ParticleSystem struct {
	Registry     *Registry
	Interactions *InteractionTable
	Grid         *Grid
	Shaders      *ShaderBindings

	engine *Engine
	cellW  float32
	cellH  float32
	tick   int64
}

// NewParticleSystem creates a system whose grid covers a screen of
// screenW x screenH pixels with cells of cellW x cellH pixels.
func NewParticleSystem(screenW, screenH, cellW, cellH float32, seed int64) *ParticleSystem {
	if cellW <= 0 {
		cellW = 1
	}
	if cellH <= 0 {
		cellH = 1
	}
	w, h := GridSize(screenW, screenH, cellW, cellH)
	reg := NewRegistry()
	rules := NewInteractionTable()
	grid := NewGrid(w, h)
	return &ParticleSystem{
		Registry:     reg,
		Interactions: rules,
		Grid:         grid,
		Shaders:      NewShaderBindings(),
		engine:       NewEngine(grid, reg, rules, seed),
		cellW:        cellW,
		cellH:        cellH,
	}
}

// Register adds or overwrites a particle type and allocates its color buffer.
func (s *ParticleSystem) Register(def TypeDef) error {
	if err := s.Registry.Register(def); err != nil {
		return err
	}
	s.Grid.AllocateBuffer(def.Name)
	return nil
}

// Lookup returns a registered type definition.
func (s *ParticleSystem) Lookup(name string) (TypeDef, bool) {
	return s.Registry.Lookup(name)
}

// SetInteraction makes a and b react into result when they meet.
func (s *ParticleSystem) SetInteraction(a, b, result string) error {
	return s.Interactions.Set(s.Registry, a, b, result)
}

// Interaction returns the reaction result for a pair, in either order.
func (s *ParticleSystem) Interaction(a, b string) (string, bool) {
	return s.Interactions.Lookup(a, b)
}

// InsertParticle places a fresh particle of the named type at cell (x, y),
// replacing whatever was there. Unknown types and out-of-range cells leave the
// grid untouched.
func (s *ParticleSystem) InsertParticle(typeName string, x, y int) error {
	def, ok := s.Registry.Lookup(typeName)
	if !ok {
		return fmt.Errorf("inserting %q at (%d,%d): %w", typeName, x, y, ErrNotFound)
	}
	return s.Grid.InsertParticle(def, x, y)
}

// InsertDisc inserts the named type into every in-bounds cell within radius of
// (cx, cy) and returns how many cells were written. Radius 0 is a single cell.
func (s *ParticleSystem) InsertDisc(typeName string, cx, cy, radius int) (int, error) {
	def, ok := s.Registry.Lookup(typeName)
	if !ok {
		return 0, fmt.Errorf("inserting %q at (%d,%d): %w", typeName, cx, cy, ErrNotFound)
	}
	if radius < 0 {
		radius = 0
	}
	n := 0
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			if s.Grid.InsertParticle(def, cx+dx, cy+dy) == nil {
				n++
			}
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("inserting %q at (%d,%d): %w", typeName, cx, cy, ErrOutOfBounds)
	}
	return n, nil
}

// EraseDisc empties every in-bounds cell within radius of (cx, cy) and
// returns how many particles were removed. It fails only when the whole disc
// lies outside the grid.
func (s *ParticleSystem) EraseDisc(cx, cy, radius int) (int, error) {
	radius = max(radius, 0)
	inBounds, removed := 0, 0
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := cx+dx, cy+dy
			if dx*dx+dy*dy > r2 || !s.Grid.InBounds(x, y) {
				continue
			}
			inBounds++
			if !s.Grid.CellAt(x, y).Empty() {
				removed++
			}
			if err := s.Grid.Remove(x, y); err != nil {
				return removed, err
			}
		}
	}
	if inBounds == 0 {
		return 0, fmt.Errorf("erasing at (%d,%d): %w", cx, cy, ErrOutOfBounds)
	}
	return removed, nil
}

// Update runs one simulation tick.
func (s *ParticleSystem) Update() TickStats {
	s.tick++
	return s.engine.Step()
}

// RecomputeColorBuffers refreshes every type's color buffer from the grid.
func (s *ParticleSystem) RecomputeColorBuffers() {
	s.Grid.RecomputeColorBuffers()
}

// Layers returns the color buffers in registration order.
func (s *ParticleSystem) Layers() []Layer {
	names := s.Registry.Names()
	layers := make([]Layer, 0, len(names))
	for _, name := range names {
		layers = append(layers, Layer{Name: name, Pixels: s.Grid.ColorBuffer(name)})
	}
	return layers
}

// ScreenToCanvas converts pixel coordinates to cell coordinates, flooring.
func (s *ParticleSystem) ScreenToCanvas(px, py float32) (int, int) {
	return int(math.Floor(float64(px / s.cellW))), int(math.Floor(float64(py / s.cellH)))
}

// PixelScale returns the per-cell pixel size.
func (s *ParticleSystem) PixelScale() (float32, float32) {
	return s.cellW, s.cellH
}

// AddShader binds a fragment shader to a registered type.
func (s *ParticleSystem) AddShader(typeName, path string) error {
	return s.Shaders.Bind(s.Registry, typeName, path)
}

// UpdateShader queues a uniform update for the shader bound to a type.
func (s *ParticleSystem) UpdateShader(typeName, uniform string, value any) error {
	return s.Shaders.SetUniform(typeName, uniform, value)
}

// Clear empties the grid. Types and rules are kept.
func (s *ParticleSystem) Clear() {
	s.Grid.Clear()
}

// Reseed resets the engine's random stream.
func (s *ParticleSystem) Reseed(seed int64) {
	s.engine.Seed(seed)
}

// Rand exposes the simulation's random source.
func (s *ParticleSystem) Rand() *rand.Rand {
	return s.engine.Rand()
}

// Width returns the grid width in cells.
func (s *ParticleSystem) Width() int { return s.Grid.Width() }

// Height returns the grid height in cells.
func (s *ParticleSystem) Height() int { return s.Grid.Height() }

// Count returns the number of particles on the grid.
func (s *ParticleSystem) Count() int { return s.Grid.Count() }

// Tick returns the number of updates run so far.
func (s *ParticleSystem) Tick() int64 { return s.tick }

// SetTick restores the update counter, e.g. when loading a snapshot.
func (s *ParticleSystem) SetTick(t int64) { s.tick = t }
