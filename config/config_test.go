package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/sandfall/systems"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Derived.GridW != 53 || cfg.Derived.GridH != 40 {
		t.Errorf("grid = %dx%d, want 53x40", cfg.Derived.GridW, cfg.Derived.GridH)
	}
	if cfg.Derived.Background != (color.RGBA{R: 0, G: 82, B: 172, A: 255}) {
		t.Errorf("background = %v", cfg.Derived.Background)
	}

	want := map[string]systems.Kind{
		"STONE": systems.KindSolid, "OBSIDIAN": systems.KindSolid, "WATER": systems.KindFluid,
		"LAVA": systems.KindFluid, "SAND": systems.KindSolid, "MUD": systems.KindSolid,
		"WALL": systems.KindStatic,
	}
	if len(cfg.Derived.TypeDefs) != len(want) {
		t.Fatalf("TypeDefs = %d, want %d", len(cfg.Derived.TypeDefs), len(want))
	}
	for _, def := range cfg.Derived.TypeDefs {
		if kind, ok := want[def.Name]; !ok || kind != def.Kind {
			t.Errorf("type %s kind %v, want %v", def.Name, def.Kind, kind)
		}
	}
	if len(cfg.Interactions) != 2 {
		t.Errorf("interactions = %d, want 2", len(cfg.Interactions))
	}

	tests := []struct {
		button, modifier, want string
	}{
		{"left", "", "SAND"},
		{"right", "", "WATER"},
		{"right", "shift", "LAVA"},
		{"middle", "", "STONE"},
		{"left", "ctrl", EraseBinding},
	}
	for _, tt := range tests {
		got, ok := cfg.Binding(tt.button, tt.modifier)
		if !ok || got != tt.want {
			t.Errorf("Binding(%s, %q) = %q, %v, want %q", tt.button, tt.modifier, got, ok, tt.want)
		}
	}
	if _, ok := cfg.Binding("left", "ctrl"); ok {
		t.Error("Binding(left, ctrl) found, want none")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
grid:
  cell_width: 10
  cell_height: 10
simulation:
  steps_per_update: 0
particles:
  - { name: GRAVEL, kind: solid, color: "#808080", density: 0.7 }
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Screen.Width != 800 {
		t.Errorf("screen width = %d, want default 800", cfg.Screen.Width)
	}
	if cfg.Derived.GridW != 80 || cfg.Derived.GridH != 60 {
		t.Errorf("grid = %dx%d, want 80x60", cfg.Derived.GridW, cfg.Derived.GridH)
	}
	if cfg.Simulation.StepsPerUpdate != 1 {
		t.Errorf("steps_per_update = %d, want clamped to 1", cfg.Simulation.StepsPerUpdate)
	}
	if len(cfg.Derived.TypeDefs) != 1 || cfg.Derived.TypeDefs[0].Name != "GRAVEL" {
		t.Errorf("TypeDefs = %+v, want only GRAVEL", cfg.Derived.TypeDefs)
	}
	if d := cfg.Derived.TypeDefs[0].Density; d != 0.7 {
		t.Errorf("density = %v, want 0.7", d)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"unknown kind", `particles: [{ name: X, kind: plasma, color: "#000000" }]`, "plasma"},
		{"missing kind", `particles: [{ name: X, color: "#000000" }]`, "missing kind"},
		{"bad color", `particles: [{ name: X, kind: solid, color: "teal" }]`, "invalid color"},
		{"density range", `particles: [{ name: X, kind: fluid, color: "#000000", density: 1.5 }]`, "density"},
		{"zero cell", "grid: { cell_width: 0 }", "cell size"},
		{"bad button", `input: { bindings: [{ button: thumb, type: SAND }] }`, "unknown button"},
		{"bad background", `background: { color: "#zzzzzz" }`, "background"},
		{"reserved name", `particles: [{ name: ERASE, kind: solid, color: "#000000" }]`, "reserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#d3b083", color.RGBA{R: 211, G: 176, B: 131, A: 255}, false},
		{"#00000080", color.RGBA{A: 128}, false},
		{"d3b083", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load snapshot: %v", err)
	}
	if len(again.Derived.TypeDefs) != len(cfg.Derived.TypeDefs) {
		t.Errorf("snapshot has %d types, want %d", len(again.Derived.TypeDefs), len(cfg.Derived.TypeDefs))
	}
	for i, def := range cfg.Derived.TypeDefs {
		if again.Derived.TypeDefs[i] != def {
			t.Errorf("type %d = %+v, want %+v", i, again.Derived.TypeDefs[i], def)
		}
	}
}
