package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sandfall/config"
	"github.com/pthm-cable/sandfall/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	consoleMode := flag.Bool("console", false, "Run inside the terminal")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logFile := flag.String("log-file", "", "Write logs to this file (console mode defaults to discarding them)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, snapshots and config copy")
	snapshot := flag.String("snapshot", "", "Restore this snapshot file at startup")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = use config)")
	stepsPerUpdate := flag.Int("steps-per-update", 0, "Simulation ticks per update call (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger, closeLog, err := newLogger(*logFile, *consoleMode)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Simulation.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		OutputDir:      *outputDir,
		SnapshotPath:   *snapshot,
		Headless:       *headless,
		Console:        *consoleMode,
		StepsPerUpdate: *stepsPerUpdate,
		MaxTicks:       *maxTicks,
	}

	switch {
	case *headless:
		runHeadless(opts)
	case *consoleMode:
		runConsole(opts)
	default:
		runWindow(opts, cfg)
	}
}

// newLogger returns a JSON logger on stdout, or on the given file. Terminal
// mode owns stdout, so it logs to the file or nowhere.
func newLogger(path string, consoleMode bool) (*slog.Logger, func(), error) {
	if path == "" {
		if consoleMode {
			return slog.New(slog.DiscardHandler), func() {}, nil
		}
		return slog.New(slog.NewJSONHandler(os.Stdout, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewTextHandler(f, nil)), func() { f.Close() }, nil
}

func runHeadless(opts game.Options) {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_ticks", opts.MaxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for ctx.Err() == nil {
		g.UpdateHeadless()
		if g.Done() {
			slog.Info("max ticks reached", "tick", g.Tick(), "particles", g.ParticleSystem().Count())
			return
		}
	}
	slog.Info("interrupted", "tick", g.Tick())
}

func runConsole(opts game.Options) {
	screen, err := tcell.NewScreen()
	if err != nil {
		slog.Error("failed to create terminal screen", "error", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		slog.Error("failed to initialize terminal screen", "error", err)
		os.Exit(1)
	}

	// One cell per terminal cell; the last row is the status line.
	w, h := screen.Size()
	opts.GridWidth, opts.GridHeight = w, h-1

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		screen.Fini()
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = g.RunConsole(ctx, screen)
	screen.Fini()
	if err != nil && ctx.Err() == nil {
		slog.Error("console stopped", "error", err)
	}
	slog.Info("console closed", "tick", g.Tick(), "particles", g.ParticleSystem().Count())
}

func runWindow(opts game.Options, cfg *config.Config) {
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		return
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if g.Done() {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}
}
