package game

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/sandfall/config"
	"github.com/pthm-cable/sandfall/telemetry"
)

func loadDefaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func newHeadless(t *testing.T, cfg *config.Config, mutate func(*Options)) *Game {
	t.Helper()
	opts := Options{Config: cfg, Seed: 1, Headless: true}
	if mutate != nil {
		mutate(&opts)
	}
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func TestNewGameHeadlessDefaults(t *testing.T) {
	g := newHeadless(t, loadDefaults(t), nil)
	ps := g.ParticleSystem()

	if ps.Width() != 53 || ps.Height() != 40 {
		t.Errorf("grid = %dx%d, want 53x40", ps.Width(), ps.Height())
	}
	if n := ps.Registry.Len(); n != 7 {
		t.Errorf("types = %d, want 7", n)
	}
	if got, ok := ps.Interaction("WATER", "SAND"); !ok || got != "MUD" {
		t.Errorf("WATER+SAND = %q, %v; want MUD", got, ok)
	}
	if got, ok := ps.Interaction("LAVA", "WATER"); !ok || got != "OBSIDIAN" {
		t.Errorf("LAVA+WATER = %q, %v; want OBSIDIAN", got, ok)
	}
	if ps.Count() != 0 {
		t.Errorf("Count = %d, want empty grid", ps.Count())
	}
	if g.selected != "SAND" {
		t.Errorf("selected = %q, want SAND", g.selected)
	}
}

func TestInvalidConfiguredRuleIsSkipped(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Interactions = append(cfg.Interactions, config.InteractionConfig{A: "SAND", B: "GLASS", Result: "MUD"})

	g := newHeadless(t, cfg, nil)
	if n := g.ParticleSystem().Interactions.Len(); n != 2 {
		t.Errorf("rules = %d, want 2", n)
	}
}

func TestUpdateHeadlessStopsAtMaxTicks(t *testing.T) {
	g := newHeadless(t, loadDefaults(t), func(o *Options) {
		o.MaxTicks = 5
		o.StepsPerUpdate = 3
	})

	g.UpdateHeadless()
	if g.Tick() != 3 || g.Done() {
		t.Fatalf("after one update tick = %d, done = %v", g.Tick(), g.Done())
	}
	g.UpdateHeadless()
	if g.Tick() != 5 || !g.Done() {
		t.Fatalf("after two updates tick = %d, done = %v", g.Tick(), g.Done())
	}
	g.UpdateHeadless()
	if g.Tick() != 5 {
		t.Errorf("update past the limit advanced to tick %d", g.Tick())
	}
}

func TestPaintAndStep(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Input.BrushRadius = 0
	g := newHeadless(t, cfg, nil)
	ps := g.ParticleSystem()

	g.brushRadius = 0
	g.Paint("SAND", 20, 20) // 15px cells: cell (1,1)
	if got := ps.Grid.CellAt(1, 1).Type; got != "SAND" {
		t.Fatalf("cell (1,1) = %q, want SAND", got)
	}

	g.Step()
	if !ps.Grid.CellAt(1, 1).Empty() || ps.Grid.CellAt(1, 2).Type != "SAND" {
		t.Error("SAND should fall one cell per tick")
	}

	g.Paint("SAND", -100, -100)
	g.Paint("GLASS", 20, 20)
	if ps.Count() != 1 {
		t.Errorf("Count = %d, want 1 after rejected paints", ps.Count())
	}
}

func TestBindingFor(t *testing.T) {
	g := newHeadless(t, loadDefaults(t), nil)

	tests := []struct {
		button, modifier string
		selected         string
		want             string
	}{
		{"left", "", "SAND", "SAND"},
		{"left", "", "LAVA", "LAVA"},
		{"right", "", "SAND", "WATER"},
		{"right", "shift", "SAND", "LAVA"},
		{"right", "ctrl", "SAND", "WATER"},
		{"middle", "", "SAND", "STONE"},
		{"left", "ctrl", "SAND", config.EraseBinding},
		{"left", "", config.EraseBinding, config.EraseBinding},
	}

	for _, tt := range tests {
		t.Run(tt.button+"+"+tt.modifier+"/"+tt.selected, func(t *testing.T) {
			g.selected = tt.selected
			got, ok := g.bindingFor(tt.button, tt.modifier)
			if !ok || got != tt.want {
				t.Errorf("bindingFor = %q, %v; want %q", got, ok, tt.want)
			}
		})
	}
}

func TestEraseRemovesParticlesAndEmitters(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Emitters = []config.EmitterConfig{
		{X: 1, Y: 1, Type: "WATER", Interval: 1000},
		{X: 40, Y: 1, Type: "WATER", Interval: 1000},
	}
	g := newHeadless(t, cfg, nil)
	ps := g.ParticleSystem()
	g.brushRadius = 0

	g.Paint("SAND", 20, 20) // cell (1,1)
	g.Erase(20, 20)
	if ps.Count() != 0 {
		t.Errorf("Count = %d after erase, want 0", ps.Count())
	}
	if n := g.emitters.Count(); n != 1 {
		t.Errorf("emitters = %d, want only the one outside the brush", n)
	}

	g.Erase(-100, -100)
	s := g.collector.Flush(g.Tick(), ps.Grid)
	if s.Erased != 1 || s.Rejected != 1 || s.Inserted != 1 {
		t.Errorf("window = %d erased %d rejected %d inserted, want 1 each", s.Erased, s.Rejected, s.Inserted)
	}
}

func TestPaletteGroupsByKind(t *testing.T) {
	g := newHeadless(t, loadDefaults(t), nil)

	var names []string
	for _, sw := range g.paletteSwatches() {
		names = append(names, sw.Name)
	}
	want := []string{"STONE", "OBSIDIAN", "SAND", "MUD", "WATER", "LAVA", "WALL", config.EraseBinding}
	if !slices.Equal(names, want) {
		t.Errorf("palette = %v, want %v", names, want)
	}
}

func TestEmittersFromConfig(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Emitters = []config.EmitterConfig{
		{X: 5, Y: 0, Type: "SAND", Interval: 1, Chance: 1},
		{X: 6, Y: 0, Type: "GLASS", Interval: 1},
		{X: 500, Y: 0, Type: "WATER", Interval: 1},
	}

	g := newHeadless(t, cfg, func(o *Options) { o.MaxTicks = 10 })
	if n := g.emitters.Count(); n != 1 {
		t.Fatalf("emitters = %d, want 1", n)
	}

	for !g.Done() {
		g.UpdateHeadless()
	}
	if n := g.ParticleSystem().Count(); n != 10 {
		t.Errorf("Count = %d, want one particle per tick", n)
	}
}

func TestTerrainAndReset(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Terrain.Enabled = true
	cfg.Terrain.Base = 0.3
	cfg.Terrain.Amplitude = 0

	g := newHeadless(t, cfg, nil)
	ps := g.ParticleSystem()

	want := 53 * 12
	if ps.Count() != want {
		t.Fatalf("terrain cells = %d, want %d", ps.Count(), want)
	}

	g.Clear()
	if ps.Count() != 0 {
		t.Errorf("Count after Clear = %d, want 0", ps.Count())
	}
	g.Reset()
	if ps.Count() != want {
		t.Errorf("Count after Reset = %d, want %d", ps.Count(), want)
	}
}

func TestTelemetryOutput(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Telemetry.StatsWindow = 5
	dir := t.TempDir()

	var windows []telemetry.WindowStats
	g := newHeadless(t, cfg, func(o *Options) {
		o.OutputDir = dir
		o.StatsCallback = func(s telemetry.WindowStats) { windows = append(windows, s) }
	})
	g.Paint("WATER", 100, 100)

	for i := 0; i < 10; i++ {
		g.UpdateHeadless()
	}

	if len(windows) != 2 {
		t.Fatalf("windows = %d, want 2", len(windows))
	}
	if windows[0].WindowEndTick != 5 || windows[1].WindowEndTick != 10 {
		t.Errorf("window ends = %d, %d; want 5, 10", windows[0].WindowEndTick, windows[1].WindowEndTick)
	}
	if windows[0].Inserted == 0 || windows[0].Fluid == 0 {
		t.Errorf("first window = %+v, want the painted water counted", windows[0])
	}

	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "bookmarks.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := newHeadless(t, loadDefaults(t), func(o *Options) { o.OutputDir = t.TempDir() })
	ps := g.ParticleSystem()

	g.Paint("SAND", 100, 100)
	g.Paint("WATER", 300, 100)
	g.Step()
	want := ps.Count()

	path, err := g.SaveSnapshot(nil)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	g.Clear()
	if err := g.LoadSnapshot(path); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if ps.Count() != want || g.Tick() != 1 {
		t.Errorf("restored count = %d tick = %d, want %d and 1", ps.Count(), g.Tick(), want)
	}

	g2 := newHeadless(t, loadDefaults(t), func(o *Options) { o.SnapshotPath = path })
	if g2.ParticleSystem().Count() != want {
		t.Errorf("startup restore count = %d, want %d", g2.ParticleSystem().Count(), want)
	}
}

func TestLoadEarlierSnapshotKeepsFlushing(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Telemetry.StatsWindow = 5

	var ends []int64
	g := newHeadless(t, cfg, func(o *Options) {
		o.OutputDir = t.TempDir()
		o.StatsCallback = func(s telemetry.WindowStats) { ends = append(ends, s.WindowEndTick) }
	})
	g.Paint("SAND", 100, 100)

	g.Step()
	g.Step()
	path, err := g.SaveSnapshot(nil)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	for g.Tick() < 9 {
		g.Step()
	}

	if err := g.LoadSnapshot(path); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if g.Tick() != 2 {
		t.Fatalf("Tick = %d after restore, want 2", g.Tick())
	}
	for i := 0; i < 5; i++ {
		g.Step()
	}

	if !slices.Equal(ends, []int64{5, 7}) {
		t.Errorf("window ends = %v, want [5 7]", ends)
	}
}

func TestRunConsoleStopsAtMaxTicks(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen.Init: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(20, 11)

	cfg := loadDefaults(t)
	cfg.Console.TickMS = 1
	g, err := NewGameWithOptions(Options{
		Config:     cfg,
		Seed:       1,
		Console:    true,
		MaxTicks:   3,
		GridWidth:  20,
		GridHeight: 10,
	})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	defer g.Unload()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := g.RunConsole(ctx, screen); err != nil {
		t.Fatalf("RunConsole: %v", err)
	}
	if g.Tick() != 3 {
		t.Errorf("tick = %d, want 3", g.Tick())
	}
	if w, h := g.ParticleSystem().Width(), g.ParticleSystem().Height(); w != 20 || h != 10 {
		t.Errorf("grid = %dx%d, want 20x10", w, h)
	}
}
