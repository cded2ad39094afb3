package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/sandfall/components"
	"github.com/pthm-cable/sandfall/systems"
	"github.com/pthm-cable/sandfall/telemetry"
)

// setupParticleSystem registers the configured types, rules, shaders and
// emitters and lays down the terrain. Invalid rules, shaders and emitters are
// logged and skipped; an invalid type is fatal.
func (g *Game) setupParticleSystem() error {
	cfg := g.cfg

	for _, def := range cfg.Derived.TypeDefs {
		if err := g.ps.Register(def); err != nil {
			return fmt.Errorf("registering particle types: %w", err)
		}
	}

	for _, r := range cfg.Interactions {
		if err := g.ps.SetInteraction(r.A, r.B, r.Result); err != nil {
			slog.Warn("interaction rejected", "a", r.A, "b", r.B, "result", r.Result, "error", err)
		}
	}

	for _, p := range cfg.Particles {
		if p.Shader == "" {
			continue
		}
		if err := g.ps.AddShader(p.Name, p.Shader); err != nil {
			slog.Warn("shader rejected", "type", p.Name, "path", p.Shader, "error", err)
		}
	}

	for _, e := range cfg.Emitters {
		_, err := g.emitters.Spawn(g.ps, e.X, e.Y, components.Emitter{
			Type:     e.Type,
			Interval: e.Interval,
			Chance:   e.Chance,
		})
		if err != nil {
			slog.Warn("emitter rejected", "x", e.X, "y", e.Y, "type", e.Type, "error", err)
		}
	}

	g.generateTerrain()
	return nil
}

// generateTerrain lays down the configured ground, if enabled.
func (g *Game) generateTerrain() {
	t := g.cfg.Terrain
	if !t.Enabled {
		return
	}
	n, err := systems.GenerateTerrain(g.ps, systems.TerrainParams{
		Type:      t.Type,
		Scale:     t.Scale,
		Base:      t.Base,
		Amplitude: t.Amplitude,
		Seed:      t.Seed,
	})
	if err != nil {
		slog.Warn("terrain skipped", "error", err)
		return
	}
	slog.Debug("terrain generated", "cells", n)
}

// Clear empties the grid.
func (g *Game) Clear() {
	g.ps.Clear()
}

// Reset empties the grid and lays the terrain down again.
func (g *Game) Reset() {
	g.ps.Clear()
	g.generateTerrain()
}

// SaveSnapshot writes the current grid to the output directory, or to
// ./snapshots when output is disabled. Returns the written path.
func (g *Game) SaveSnapshot(bookmark *telemetry.Bookmark) (string, error) {
	snap := telemetry.CaptureSnapshot(g.ps, g.seed)
	snap.Bookmark = bookmark

	var (
		path string
		err  error
	)
	if g.outputManager != nil {
		path, err = g.outputManager.WriteSnapshot(snap)
	} else {
		path, err = telemetry.SaveSnapshot(snap, "snapshots")
	}
	if err != nil {
		return "", err
	}
	g.lastSnapshot = path
	return path, nil
}

// LoadSnapshot replaces the grid, types and rules with a saved snapshot.
func (g *Game) LoadSnapshot(path string) error {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	if err := snap.Restore(g.ps); err != nil {
		return fmt.Errorf("restoring %s: %w", path, err)
	}
	g.collector.Reset(g.ps.Tick())
	g.bookmarkDetector.Reset()
	g.lastSnapshot = path
	slog.Info("snapshot restored", "path", path, "tick", snap.Tick, "particles", g.ps.Count())
	return nil
}
