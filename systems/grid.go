package systems

import (
	"fmt"
	"image/color"
)

// Grid is a fixed-size row-major array of cells with origin at the top left.
// It also owns one color buffer per registered type for the render sink.
type Grid struct {
	width, height int
	cells         []Particle

	buffers map[string][]color.RGBA
}

// NewGrid allocates an empty grid. Dimensions below 1 are raised to 1.
func NewGrid(width, height int) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Grid{
		width:   width,
		height:  height,
		cells:   make([]Particle, width*height),
		buffers: make(map[string][]color.RGBA),
	}
}

// GridSize derives grid dimensions from a screen size and per-cell pixel size,
// flooring both.
func GridSize(screenW, screenH, cellW, cellH float32) (int, int) {
	if cellW <= 0 || cellH <= 0 {
		return 0, 0
	}
	return int(screenW / cellW), int(screenH / cellH)
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Index returns the linear index for (x, y).
func (g *Grid) Index(x, y int) int { return y*g.width + x }

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// CellAt returns the cell at (x, y). Coordinates are not checked; callers
// must validate them with InBounds first.
func (g *Grid) CellAt(x, y int) *Particle {
	return &g.cells[y*g.width+x]
}

// Cells exposes the backing slice.
func (g *Grid) Cells() []Particle { return g.cells }

// InsertParticle overwrites the cell at (x, y) with a fresh instance of def.
func (g *Grid) InsertParticle(def TypeDef, x, y int) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("inserting %s at (%d,%d): %w", def.Name, x, y, ErrOutOfBounds)
	}
	g.cells[g.Index(x, y)] = NewParticle(def)
	return nil
}

// Place writes an existing particle value into cell (x, y), keeping its
// own copy of the type fields.
func (g *Grid) Place(p Particle, x, y int) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("placing %s at (%d,%d): %w", p.Type, x, y, ErrOutOfBounds)
	}
	g.cells[g.Index(x, y)] = p
	return nil
}

// Remove empties the cell at (x, y).
func (g *Grid) Remove(x, y int) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("removing at (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	g.cells[g.Index(x, y)] = Particle{}
	return nil
}

// Clear empties every cell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = Particle{}
	}
}

// Count returns the number of occupied cells.
func (g *Grid) Count() int {
	n := 0
	for i := range g.cells {
		if !g.cells[i].Empty() {
			n++
		}
	}
	return n
}

// CountByKind returns occupied cell counts per kind.
func (g *Grid) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for i := range g.cells {
		if k := g.cells[i].Kind; k != KindEmpty {
			counts[k]++
		}
	}
	return counts
}

// CountByType returns occupied cell counts per type name.
func (g *Grid) CountByType() map[string]int {
	counts := make(map[string]int)
	for i := range g.cells {
		if !g.cells[i].Empty() {
			counts[g.cells[i].Type]++
		}
	}
	return counts
}

// AllocateBuffer creates the color buffer for a type if it does not exist.
func (g *Grid) AllocateBuffer(name string) {
	if _, ok := g.buffers[name]; ok {
		return
	}
	g.buffers[name] = make([]color.RGBA, g.width*g.height)
}

// ColorBuffer returns the color buffer for a type, or nil.
func (g *Grid) ColorBuffer(name string) []color.RGBA {
	return g.buffers[name]
}

// RecomputeColorBuffers clears every buffer to transparent and paints each
// occupied cell into the buffer of its type. Cells are never modified.
func (g *Grid) RecomputeColorBuffers() {
	for _, buf := range g.buffers {
		clear(buf)
	}
	for i := range g.cells {
		p := &g.cells[i]
		if p.Empty() {
			continue
		}
		if buf, ok := g.buffers[p.Type]; ok {
			buf[i] = p.Color
		}
	}
}
