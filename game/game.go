// Package game wires the particle system to its input sources, render sinks
// and telemetry.
package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sandfall/audio"
	"github.com/pthm-cable/sandfall/config"
	"github.com/pthm-cable/sandfall/renderer"
	"github.com/pthm-cable/sandfall/systems"
	"github.com/pthm-cable/sandfall/telemetry"
	"github.com/pthm-cable/sandfall/ui"
)

// Options configures a Game.
type Options struct {
	Config         *config.Config // nil = config.Cfg()
	Seed           int64
	Headless       bool // no window; renderer, HUD and audio stay nil
	Console        bool // terminal front-end; renderer and HUD stay nil
	StepsPerUpdate int  // 0 = use config
	MaxTicks       int  // 0 = use config
	LogStats       bool
	OutputDir      string
	SnapshotPath   string // restore this snapshot after setup

	// Grid size override in cells. Terminal mode sizes the grid to the screen.
	GridWidth  int
	GridHeight int

	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg  *config.Config
	seed int64

	ps       *systems.ParticleSystem
	world    *ecs.World
	emitters *systems.EmitterSystem

	// Telemetry
	collector        *telemetry.Collector
	frames           *telemetry.FrameProfiler
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	lastSnapshot     string

	// Front-end (nil when headless)
	background *renderer.BackgroundRenderer
	layers     *renderer.LayerRenderer
	hud        *ui.HUD
	cue        *audio.Cue

	// State
	headless       bool
	paused         bool
	stepsPerUpdate int
	maxTicks       int64
	totalReactions int
	selected       string // type painted with the left button
	brushRadius    int
	showHUD        bool
	showPerf       bool
	hudHovered     bool
	startTime      time.Time
}

// NewGameWithOptions builds the particle system from the configuration and,
// unless headless, the renderers. A window must already be open in graphical
// mode.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	steps := cfg.Simulation.StepsPerUpdate
	if opts.StepsPerUpdate > 0 {
		steps = opts.StepsPerUpdate
	}
	maxTicks := cfg.Simulation.MaxTicks
	if opts.MaxTicks > 0 {
		maxTicks = opts.MaxTicks
	}

	screenW, screenH := cfg.Derived.ScreenW32, cfg.Derived.ScreenH32
	if opts.GridWidth > 0 && opts.GridHeight > 0 {
		screenW = float32(opts.GridWidth) * cfg.Derived.CellW32
		screenH = float32(opts.GridHeight) * cfg.Derived.CellH32
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:              cfg,
		seed:             opts.Seed,
		ps:               systems.NewParticleSystem(screenW, screenH, cfg.Derived.CellW32, cfg.Derived.CellH32, opts.Seed),
		world:            world,
		emitters:         systems.NewEmitterSystem(world),
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
		headless:         opts.Headless,
		stepsPerUpdate:   steps,
		maxTicks:         int64(maxTicks),
		brushRadius:      cfg.Input.BrushRadius,
		showHUD:          true,
		startTime:        time.Now(),
	}
	g.frames = telemetry.NewFrameProfiler(cfg.Telemetry.PerfWindow, g.ps.Width()*g.ps.Height())
	g.selected, _ = cfg.Binding("left", "")

	if err := g.setupParticleSystem(); err != nil {
		return nil, err
	}

	if opts.SnapshotPath != "" {
		if err := g.LoadSnapshot(opts.SnapshotPath); err != nil {
			return nil, err
		}
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	if !opts.Headless {
		if cfg.Audio.Enabled {
			g.cue = audio.NewCue(audio.Settings{
				SampleRate: cfg.Audio.SampleRate,
				Frequency:  cfg.Audio.Frequency,
				Duration:   time.Duration(cfg.Audio.DurationMS) * time.Millisecond,
				Cooldown:   time.Duration(cfg.Audio.CooldownMS) * time.Millisecond,
			})
		}
		if !opts.Console {
			g.initRenderers()
		}
	}

	slog.Info("particle system ready",
		"grid_w", g.ps.Width(),
		"grid_h", g.ps.Height(),
		"types", g.ps.Registry.Len(),
		"rules", g.ps.Interactions.Len(),
		"emitters", g.emitters.Count(),
		"particles", g.ps.Count(),
	)

	return g, nil
}

// initRenderers creates the raylib sinks. Requires an open window.
func (g *Game) initRenderers() {
	cfg := g.cfg
	sw, sh := int32(cfg.Screen.Width), int32(cfg.Screen.Height)

	g.background = renderer.NewBackgroundRenderer(sw, sh, cfg.Derived.Background, cfg.Background.Image, cfg.Background.Shader)
	g.background.Init()

	g.layers = renderer.NewLayerRenderer(g.ps, sw, sh, cfg.Shaders.PixelScaleUniform, cfg.Shaders.TimeUniform)
	g.hud = ui.NewHUD()
}

// ParticleSystem exposes the simulated system.
func (g *Game) ParticleSystem() *systems.ParticleSystem { return g.ps }

// Tick returns the number of simulation ticks run so far.
func (g *Game) Tick() int64 { return g.ps.Tick() }

// Seed returns the seed the simulation was started with.
func (g *Game) Seed() int64 { return g.seed }

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool { return g.paused }

// Done reports whether the configured tick limit has been reached.
func (g *Game) Done() bool {
	return g.maxTicks > 0 && g.ps.Tick() >= g.maxTicks
}

// Unload releases GPU resources, audio and output files.
func (g *Game) Unload() {
	if g.layers != nil {
		g.layers.Unload()
	}
	if g.background != nil {
		g.background.Unload()
	}
	if g.cue != nil {
		g.cue.Close()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
