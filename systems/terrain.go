package systems

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"
)

// TerrainParams shapes the generated ground profile.
type TerrainParams struct {
	Type      string  // static particle type used for the ground
	Scale     float64 // noise frequency along x (cells)
	Base      float64 // mean ground height as a fraction of grid height
	Amplitude float64 // height variation as a fraction of grid height
	Seed      int64
}

// GenerateTerrain fills every column from a noise-driven height down to the
// bottom row with the given static type. Returns the number of cells written.
func GenerateTerrain(ps *ParticleSystem, p TerrainParams) (int, error) {
	def, ok := ps.Registry.Lookup(p.Type)
	if !ok {
		return 0, fmt.Errorf("generating terrain: %q: %w", p.Type, ErrNotFound)
	}
	if def.Kind != KindStatic {
		return 0, fmt.Errorf("generating terrain: %q is %s, want static", p.Type, def.Kind)
	}

	noise := opensimplex.New(p.Seed)
	w, h := ps.Width(), ps.Height()
	written := 0

	for x := 0; x < w; x++ {
		n := noise.Eval2(float64(x)*p.Scale, 0)
		height := int((p.Base + p.Amplitude*n) * float64(h))
		if height < 0 {
			height = 0
		}
		if height > h {
			height = h
		}
		for y := h - height; y < h; y++ {
			if ps.Grid.InsertParticle(def, x, y) == nil {
				written++
			}
		}
	}

	return written, nil
}
