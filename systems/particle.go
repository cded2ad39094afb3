package systems

import "image/color"

// TypeDef is a registered particle prototype.
type TypeDef struct {
	Name  string
	Kind  Kind
	Color color.RGBA
	// Density drives diagonal sliding and displacement for solids and fluids.
	// Static types carry it but never read it.
	Density float32
}

// Particle is the content of one grid cell: a value copy of a TypeDef taken
// when the particle was inserted or produced by a reaction. The zero value
// (KindEmpty) is an empty cell.
type Particle struct {
	Type    string
	Kind    Kind
	Color   color.RGBA
	Density float32
}

// NewParticle copies the prototype fields into a fresh instance.
func NewParticle(def TypeDef) Particle {
	return Particle{
		Type:    def.Name,
		Kind:    def.Kind,
		Color:   def.Color,
		Density: def.Density,
	}
}

// Empty reports whether the cell holds no particle.
func (p Particle) Empty() bool {
	return p.Kind == KindEmpty
}
