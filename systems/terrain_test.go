package systems

import (
	"errors"
	"testing"
)

func TestGenerateTerrainFlat(t *testing.T) {
	ps := newTestSystem(t, 10, 10)
	mustRegister(t, ps, wallDef(), sandDef(0.5))

	n, err := GenerateTerrain(ps, TerrainParams{Type: "WALL", Scale: 0.1, Base: 0.3, Amplitude: 0, Seed: 4})
	if err != nil {
		t.Fatalf("GenerateTerrain: %v", err)
	}
	if n != 30 {
		t.Errorf("written = %d, want 30", n)
	}
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			want := y >= 7
			if got := ps.Grid.CellAt(x, y).Type == "WALL"; got != want {
				t.Errorf("cell (%d,%d) wall = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestGenerateTerrainClampsHeight(t *testing.T) {
	ps := newTestSystem(t, 4, 4)
	mustRegister(t, ps, wallDef())

	n, err := GenerateTerrain(ps, TerrainParams{Type: "WALL", Base: 2})
	if err != nil {
		t.Fatal(err)
	}
	if n != 16 {
		t.Errorf("written = %d, want 16", n)
	}
}

func TestGenerateTerrainSameSeedSameProfile(t *testing.T) {
	gen := func() []Particle {
		ps := newTestSystem(t, 32, 16)
		mustRegister(t, ps, wallDef())
		if _, err := GenerateTerrain(ps, TerrainParams{Type: "WALL", Scale: 0.08, Base: 0.25, Amplitude: 0.15, Seed: 12}); err != nil {
			t.Fatal(err)
		}
		return snapshot(ps.Grid)
	}

	a, b := gen(), gen()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("profiles differ at cell %d", i)
		}
	}
}

func TestGenerateTerrainRejectsType(t *testing.T) {
	ps := newTestSystem(t, 4, 4)
	mustRegister(t, ps, sandDef(0.5))

	if _, err := GenerateTerrain(ps, TerrainParams{Type: "ROCK"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown type err = %v, want ErrNotFound", err)
	}
	if _, err := GenerateTerrain(ps, TerrainParams{Type: "SAND"}); err == nil {
		t.Error("non-static type accepted")
	}
	if ps.Count() != 0 {
		t.Errorf("rejected terrain wrote %d cells", ps.Count())
	}
}
