package main

import (
	"fmt"
	"math"
	"sync"

	"github.com/pthm-cable/sandfall/config"
	"github.com/pthm-cable/sandfall/game"
	"github.com/pthm-cable/sandfall/systems"
)

// FitnessEvaluator pours piles of each tuned type in headless runs and scores
// how far their slopes land from the target.
type FitnessEvaluator struct {
	params      *ParamVector
	configPath  string
	maxTicks    int
	seeds       []int64
	targetSlope float64

	mu        sync.Mutex
	lastSlope []float64 // mean slope per type from the most recent Evaluate
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, configPath string, maxTicks int, seeds []int64, target float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		configPath:  configPath,
		maxTicks:    maxTicks,
		seeds:       seeds,
		targetSlope: target,
	}
}

// LastSlopes returns the mean slope per tuned type from the most recent call.
func (fe *FitnessEvaluator) LastSlopes() []float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return append([]float64(nil), fe.lastSlope...)
}

// Evaluate computes fitness for a raw parameter vector (lower = better): the
// mean squared slope error over every type and seed.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	nTypes := len(fe.params.Specs)
	slopes := make([][]float64, nTypes)
	for i := range slopes {
		slopes[i] = make([]float64, len(fe.seeds))
	}

	var wg sync.WaitGroup
	for ti, spec := range fe.params.Specs {
		for si, seed := range fe.seeds {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s, err := fe.pour(x, spec.Name, seed)
				if err != nil {
					s = math.Inf(1)
				}
				slopes[ti][si] = s
			}()
		}
	}
	wg.Wait()

	var sqErr float64
	means := make([]float64, nTypes)
	for ti := range slopes {
		for _, s := range slopes[ti] {
			d := s - fe.targetSlope
			sqErr += d * d
			means[ti] += s
		}
		means[ti] /= float64(len(fe.seeds))
	}

	fe.mu.Lock()
	fe.lastSlope = means
	fe.mu.Unlock()

	return sqErr / float64(nTypes*len(fe.seeds))
}

// pour runs one headless simulation with a single emitter above the middle
// column and returns the resulting pile slope.
func (fe *FitnessEvaluator) pour(x []float64, typeName string, seed int64) (float64, error) {
	cfg, err := config.Load(fe.configPath)
	if err != nil {
		return 0, err
	}
	fe.params.ApplyToConfig(cfg, x)

	cfg.Interactions = nil
	cfg.Terrain.Enabled = false
	cfg.Emitters = []config.EmitterConfig{
		{X: cfg.Derived.GridW / 2, Y: 0, Type: typeName, Interval: 1, Chance: 1},
	}

	g, err := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           seed,
		Headless:       true,
		StepsPerUpdate: 1,
		MaxTicks:       fe.maxTicks,
	})
	if err != nil {
		return 0, fmt.Errorf("pouring %s: %w", typeName, err)
	}
	defer g.Unload()

	for !g.Done() {
		g.UpdateHeadless()
	}
	return pileSlope(g.ParticleSystem().Grid), nil
}

// pileSlope returns peak height over half the base width of everything
// resting on the grid. An empty grid has slope 0.
func pileSlope(grid *systems.Grid) float64 {
	w, h := grid.Width(), grid.Height()
	peak, base := 0, 0
	for x := 0; x < w; x++ {
		height := 0
		for y := 0; y < h; y++ {
			if !grid.CellAt(x, y).Empty() {
				height = h - y
				break
			}
		}
		if height > 0 {
			base++
		}
		peak = max(peak, height)
	}
	if base == 0 {
		return 0
	}
	return float64(peak) / (float64(base) / 2)
}
