package systems

import (
	"slices"
	"testing"
)

func TestRegistryRegister(t *testing.T) {
	tests := []struct {
		name    string
		def     TypeDef
		wantErr bool
	}{
		{"solid", sandDef(0.5), false},
		{"static without density", wallDef(), false},
		{"empty name", TypeDef{Kind: KindSolid}, true},
		{"empty kind", TypeDef{Name: "VOID"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			err := reg.Register(tt.def)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Register err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && reg.Len() != 0 {
				t.Errorf("failed registration left %d types", reg.Len())
			}
		})
	}
}

func TestRegistryOverwrite(t *testing.T) {
	ps := newTestSystem(t, 3, 3)
	mustRegister(t, ps, sandDef(0.2), waterDef())
	mustInsert(t, ps, "SAND", 0, 0)

	heavier := sandDef(0.8)
	heavier.Color = mudColor
	mustRegister(t, ps, heavier)

	if got := ps.Registry.Names(); !slices.Equal(got, []string{"SAND", "WATER"}) {
		t.Errorf("Names = %v, want [SAND WATER]", got)
	}
	if def, _ := ps.Lookup("SAND"); def.Density != 0.8 || def.Color != mudColor {
		t.Errorf("Lookup(SAND) = %+v, want overwritten definition", def)
	}

	// Existing particle keeps the definition it was created with.
	if got := ps.Grid.CellAt(0, 0); got.Density != 0.2 || got.Color != sandColor {
		t.Errorf("existing SAND = %+v, want original copy", *got)
	}

	mustInsert(t, ps, "SAND", 1, 0)
	if got := ps.Grid.CellAt(1, 0); got.Density != 0.8 || got.Color != mudColor {
		t.Errorf("new SAND = %+v, want overwritten copy", *got)
	}
}

func TestRegistryNamesIsACopy(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(sandDef(0.5)); err != nil {
		t.Fatal(err)
	}
	names := reg.Names()
	names[0] = "MUTATED"

	if !reg.Has("SAND") || reg.Names()[0] != "SAND" {
		t.Error("mutating Names() result changed the registry")
	}
}

func TestRegistryByKind(t *testing.T) {
	reg := NewRegistry()
	for _, def := range []TypeDef{
		sandDef(0.5),
		waterDef(),
		wallDef(),
		{Name: "LAVA", Kind: KindFluid, Density: 0.4},
	} {
		if err := reg.Register(def); err != nil {
			t.Fatal(err)
		}
	}

	if got := reg.ByKind(KindFluid); !slices.Equal(got, []string{"WATER", "LAVA"}) {
		t.Errorf("ByKind(fluid) = %v", got)
	}
	if got := reg.ByKind(KindGas); len(got) != 0 {
		t.Errorf("ByKind(gas) = %v, want none", got)
	}
}
