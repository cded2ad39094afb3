package game

import (
	"github.com/pthm-cable/sandfall/systems"
	"github.com/pthm-cable/sandfall/telemetry"
)

// simulationStep runs emitters, one engine tick and the telemetry bookkeeping.
func (g *Game) simulationStep() systems.TickStats {
	g.frames.Enter(telemetry.PhaseEmitters)
	if n := g.emitters.Update(g.ps); n > 0 {
		g.collector.RecordEmitted(n)
	}

	g.frames.Enter(telemetry.PhaseUpdate)
	stats := g.ps.Update()
	g.frames.CountTick()

	g.frames.Enter(telemetry.PhaseTelemetry)
	g.collector.RecordTick(stats)
	g.totalReactions += stats.Reactions
	if stats.Reactions > 0 && g.cue != nil {
		g.cue.Trigger()
	}
	g.flushTelemetry()

	return stats
}

// runSteps runs up to stepsPerUpdate ticks, stopping at the tick limit.
func (g *Game) runSteps() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		if g.Done() {
			return
		}
		g.simulationStep()
	}
}

// UpdateHeadless advances the simulation without input or rendering.
func (g *Game) UpdateHeadless() {
	g.frames.BeginFrame()
	g.runSteps()
	g.frames.EndFrame()
}

// Update handles input and advances the simulation for one frame. Draw
// completes the frame's timing sample.
func (g *Game) Update() {
	g.frames.BeginFrame()

	g.frames.Enter(telemetry.PhaseInput)
	g.handleInput()

	if !g.paused {
		g.runSteps()
	}

	g.frames.Enter(telemetry.PhaseColors)
	g.ps.RecomputeColorBuffers()
}

// Step advances exactly one tick regardless of pause state.
func (g *Game) Step() systems.TickStats {
	return g.simulationStep()
}

// TotalReactions returns the number of reactions since start.
func (g *Game) TotalReactions() int { return g.totalReactions }
