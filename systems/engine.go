package systems

import "math/rand"

// TickStats counts what happened during one Step.
type TickStats struct {
	Moves     int // moves into empty cells
	Swaps     int // density displacements
	Reactions int // pairwise reactions (each removes one particle)
}

// Add accumulates another tick's counts.
func (s *TickStats) Add(o TickStats) {
	s.Moves += o.Moves
	s.Swaps += o.Swaps
	s.Reactions += o.Reactions
}

type offset struct {
	dx, dy int
}

// Candidate directions in priority order.
var (
	solidMoves = [...]offset{{0, 1}, {1, 1}, {-1, 1}} // bottom, bottom-right, bottom-left
	fluidMoves = [...]offset{{0, 1}, {1, 0}, {-1, 0}} // bottom, right, left
)

// Engine advances the grid one tick at a time.
//
// Rows are visited bottom-up starting at the second row from the bottom, so a
// particle that falls into row y+1 is never visited again in the same pass.
// Columns within a row are visited in a freshly shuffled order each tick to
// avoid a directional bias. Particles that arrived in a cell during the
// current tick (lateral flow, upward displacement, reaction results) are
// skipped until the next tick.
type Engine struct {
	grid  *Grid
	reg   *Registry
	rules *InteractionTable
	rng   *rand.Rand

	order []int
	stamp []uint32
	tick  uint32
}

// NewEngine creates an engine over the given grid, registry and rules,
// seeded deterministically.
func NewEngine(grid *Grid, reg *Registry, rules *InteractionTable, seed int64) *Engine {
	order := make([]int, grid.Width())
	for i := range order {
		order[i] = i
	}
	return &Engine{
		grid:  grid,
		reg:   reg,
		rules: rules,
		rng:   rand.New(rand.NewSource(seed)),
		order: order,
		stamp: make([]uint32, grid.Width()*grid.Height()),
	}
}

// Seed resets the random source and the scan state carried between ticks
// (column permutation and move stamps). Equal seeds over equal grids then
// produce equal runs no matter how many ticks came before.
func (e *Engine) Seed(seed int64) {
	e.rng.Seed(seed)
	for i := range e.order {
		e.order[i] = i
	}
	clear(e.stamp)
	e.tick = 0
}

// Rand exposes the engine's random source for collaborators that must share
// the single simulation stream (emitters, terrain).
func (e *Engine) Rand() *rand.Rand { return e.rng }

// Step performs exactly one full-grid update pass.
func (e *Engine) Step() TickStats {
	var stats TickStats

	e.tick++
	if e.tick == 0 {
		clear(e.stamp)
		e.tick = 1
	}

	g := e.grid
	w, h := g.width, g.height
	cells := g.cells

	for y := h - 2; y >= 0; y-- {
		e.rng.Shuffle(len(e.order), func(i, j int) {
			e.order[i], e.order[j] = e.order[j], e.order[i]
		})

		for _, x := range e.order {
			idx := y*w + x
			p := &cells[idx]
			if p.Empty() || e.stamp[idx] == e.tick {
				continue
			}

			var moves []offset
			switch p.Kind {
			case KindSolid:
				moves = solidMoves[:]
			case KindFluid:
				moves = fluidMoves[:]
			default:
				// Static never moves; Gas has no rules yet.
				continue
			}

			for _, m := range moves {
				nx, ny := x+m.dx, y+m.dy
				if !g.InBounds(nx, ny) {
					continue
				}
				gated := p.Kind == KindSolid && m.dx != 0
				if e.resolve(idx, ny*w+nx, gated, &stats) {
					break
				}
			}
		}
	}

	return stats
}

// resolve applies the first matching rule between the particle at idx and
// its neighbor at nidx. It reports whether the particle is done for this tick.
func (e *Engine) resolve(idx, nidx int, gated bool, stats *TickStats) bool {
	cells := e.grid.cells
	cur := &cells[idx]
	nb := &cells[nidx]

	if nb.Empty() {
		if gated && e.rng.Float64() >= float64(cur.Density) {
			return false
		}
		*nb = *cur
		*cur = Particle{}
		e.stamp[nidx] = e.tick
		stats.Moves++
		return true
	}

	if result, ok := e.rules.Lookup(cur.Type, nb.Type); ok {
		def, ok := e.reg.Lookup(result)
		if !ok {
			return false
		}
		*nb = NewParticle(def)
		*cur = Particle{}
		e.stamp[nidx] = e.tick
		stats.Reactions++
		return true
	}

	if nb.Kind == KindFluid {
		diff := float64(cur.Density - nb.Density)
		if diff > 0 && e.rng.Float64() < diff {
			*cur, *nb = *nb, *cur
			e.stamp[idx] = e.tick
			e.stamp[nidx] = e.tick
			stats.Swaps++
			return true
		}
	}

	return false
}
