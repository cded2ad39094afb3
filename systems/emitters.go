package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sandfall/components"
)

// EmitterSystem drives particle sources stored as ECS entities.
type EmitterSystem struct {
	world  *ecs.World
	mapper *ecs.Map2[components.Position, components.Emitter]
	filter *ecs.Filter2[components.Position, components.Emitter]
}

// NewEmitterSystem creates an emitter system backed by the given world.
func NewEmitterSystem(world *ecs.World) *EmitterSystem {
	return &EmitterSystem{
		world:  world,
		mapper: ecs.NewMap2[components.Position, components.Emitter](world),
		filter: ecs.NewFilter2[components.Position, components.Emitter](world),
	}
}

// Spawn creates an emitter at cell (x, y). The type must be registered and the
// cell in bounds.
func (s *EmitterSystem) Spawn(ps *ParticleSystem, x, y int, em components.Emitter) (ecs.Entity, error) {
	if !ps.Registry.Has(em.Type) {
		return ecs.Entity{}, fmt.Errorf("spawning emitter at (%d,%d): %q: %w", x, y, em.Type, ErrNotFound)
	}
	if !ps.Grid.InBounds(x, y) {
		return ecs.Entity{}, fmt.Errorf("spawning %s emitter at (%d,%d): %w", em.Type, x, y, ErrOutOfBounds)
	}
	if em.Interval < 1 {
		em.Interval = 1
	}
	if em.Chance <= 0 || em.Chance > 1 {
		em.Chance = 1
	}
	pos := components.Position{X: x, Y: y}
	return s.mapper.NewEntity(&pos, &em), nil
}

// Remove deletes an emitter.
func (s *EmitterSystem) Remove(e ecs.Entity) {
	if s.world.Alive(e) {
		s.world.RemoveEntity(e)
	}
}

// RemoveWithin deletes every emitter within radius of (cx, cy) and returns
// how many were removed.
func (s *EmitterSystem) RemoveWithin(cx, cy, radius int) int {
	var doomed []ecs.Entity
	r2 := radius * radius
	query := s.filter.Query()
	for query.Next() {
		pos, _ := query.Get()
		dx, dy := pos.X-cx, pos.Y-cy
		if dx*dx+dy*dy <= r2 {
			doomed = append(doomed, query.Entity())
		}
	}
	for _, e := range doomed {
		s.Remove(e)
	}
	return len(doomed)
}

// Count returns the number of live emitters.
func (s *EmitterSystem) Count() int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Update lets every due emitter insert into its cell if that cell is empty.
// Call it before ParticleSystem.Update. Returns the number of inserted
// particles.
func (s *EmitterSystem) Update(ps *ParticleSystem) int {
	tick := ps.Tick()
	rng := ps.Rand()
	inserted := 0

	query := s.filter.Query()
	for query.Next() {
		pos, em := query.Get()

		if tick%int64(em.Interval) != 0 {
			continue
		}
		if em.Chance < 1 && rng.Float64() >= em.Chance {
			continue
		}
		if !ps.Grid.CellAt(pos.X, pos.Y).Empty() {
			continue
		}
		if err := ps.InsertParticle(em.Type, pos.X, pos.Y); err != nil {
			continue
		}
		em.Emitted++
		inserted++
	}

	return inserted
}

// Emitted returns the total particles inserted by all emitters.
func (s *EmitterSystem) Emitted() int {
	total := 0
	query := s.filter.Query()
	for query.Next() {
		_, em := query.Get()
		total += em.Emitted
	}
	return total
}
