package game

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sandfall/config"
	"github.com/pthm-cable/sandfall/systems"
	"github.com/pthm-cable/sandfall/telemetry"
	"github.com/pthm-cable/sandfall/ui"
)

const controlsLegend = "[Space] pause  [N] step  [C] clear  [R] reset  [</>] speed  [H] HUD  [P] perf  [Ctrl+LMB] erase  [F5/F9] save/load"

// Draw renders the frame: background, particle layers, then the HUD.
func (g *Game) Draw() {
	g.frames.Enter(telemetry.PhaseRender)

	t := float32(time.Since(g.startTime).Seconds())

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.background.Draw(t)
	g.layers.Draw(t)

	if g.showHUD {
		g.drawHUD()
	} else {
		g.hudHovered = false
	}

	if g.showPerf {
		g.drawPerf()
	}

	rl.EndDrawing()

	g.frames.EndFrame()
}

// paletteKinds orders the HUD palette.
var paletteKinds = []systems.Kind{systems.KindSolid, systems.KindFluid, systems.KindGas, systems.KindStatic}

// paletteSwatches lists the registered types grouped by kind, followed by
// the eraser.
func (g *Game) paletteSwatches() []ui.Swatch {
	swatches := make([]ui.Swatch, 0, g.ps.Registry.Len()+1)
	for _, kind := range paletteKinds {
		for _, name := range g.ps.Registry.ByKind(kind) {
			def, _ := g.ps.Lookup(name)
			swatches = append(swatches, ui.Swatch{Name: name, Color: def.Color})
		}
	}
	return append(swatches, ui.Swatch{Name: config.EraseBinding, Color: g.cfg.Derived.Background})
}

func (g *Game) drawHUD() {
	swatches := g.paletteSwatches()

	res := g.hud.Draw(ui.HUDData{
		Tick:        g.ps.Tick(),
		Particles:   g.ps.Count(),
		Reactions:   g.totalReactions,
		FPS:         rl.GetFPS(),
		Steps:       g.stepsPerUpdate,
		Paused:      g.paused,
		Selected:    g.selected,
		BrushRadius: g.brushRadius,
		Swatches:    swatches,
	})
	g.selected = res.Selected
	g.brushRadius = res.BrushRadius
	g.hudHovered = res.Hovered

	g.hud.DrawControls(int32(rl.GetScreenHeight()), controlsLegend)
}

func (g *Game) drawPerf() {
	stats := g.frames.Stats()
	phases := telemetry.Phases()
	rows := make([]ui.PerfPhase, 0, len(phases))
	for _, p := range phases {
		rows = append(rows, ui.PerfPhase{
			Name:    p.String(),
			Avg:     stats.PhaseAvg[p],
			Percent: stats.PhaseShare[p],
		})
	}
	summary := fmt.Sprintf("%.1f ticks/frame  %s/tick", stats.TicksPerFrame, stats.TickCost.Round(time.Microsecond))
	g.hud.DrawPerf(int32(rl.GetScreenWidth()), summary, rows)
}
