package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sandfall/config"
)

// mouseButtons maps config button names to raylib buttons.
var mouseButtons = []struct {
	name   string
	button rl.MouseButton
}{
	{"left", rl.MouseButtonLeft},
	{"right", rl.MouseButtonRight},
	{"middle", rl.MouseButtonMiddle},
}

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyN) && g.paused {
		g.simulationStep()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.Clear()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.Reset()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyH) {
		g.showHUD = !g.showHUD
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}

	if rl.IsKeyPressed(rl.KeyF5) {
		if path, err := g.SaveSnapshot(nil); err != nil {
			slog.Error("failed to save snapshot", "error", err)
		} else {
			slog.Info("snapshot saved", "path", path)
		}
	}
	if rl.IsKeyPressed(rl.KeyF9) && g.lastSnapshot != "" {
		if err := g.LoadSnapshot(g.lastSnapshot); err != nil {
			slog.Error("failed to load snapshot", "error", err)
		}
	}

	g.handleMouse()
}

// handleMouse paints the bound type under the cursor for every held button.
func (g *Game) handleMouse() {
	if g.showHUD && g.hudHovered {
		return
	}

	modifier := ""
	switch {
	case rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift):
		modifier = "shift"
	case rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl):
		modifier = "ctrl"
	}

	pos := rl.GetMousePosition()
	for _, mb := range mouseButtons {
		if !rl.IsMouseButtonDown(mb.button) {
			continue
		}
		typeName, ok := g.bindingFor(mb.name, modifier)
		if !ok {
			continue
		}
		if typeName == config.EraseBinding {
			g.Erase(pos.X, pos.Y)
			continue
		}
		g.Paint(typeName, pos.X, pos.Y)
	}
}

// bindingFor resolves the type for a button. The HUD palette overrides the
// unmodified left button; a modified press falls back to the plain binding.
func (g *Game) bindingFor(button, modifier string) (string, bool) {
	if button == "left" && modifier == "" && g.selected != "" {
		return g.selected, true
	}
	if t, ok := g.cfg.Binding(button, modifier); ok {
		return t, true
	}
	if modifier != "" {
		return g.bindingFor(button, "")
	}
	return "", false
}

// Paint inserts a brush disc of typeName at screen position (px, py).
func (g *Game) Paint(typeName string, px, py float32) {
	x, y := g.ps.ScreenToCanvas(px, py)
	n, err := g.ps.InsertDisc(typeName, x, y, g.brushRadius)
	if err != nil {
		g.collector.RecordReject()
		return
	}
	g.collector.RecordInsert(n)
}

// Erase empties a brush disc at screen position (px, py) and deletes any
// emitter inside it.
func (g *Game) Erase(px, py float32) {
	x, y := g.ps.ScreenToCanvas(px, py)
	n, err := g.ps.EraseDisc(x, y, g.brushRadius)
	if err != nil {
		g.collector.RecordReject()
		return
	}
	if removed := g.emitters.RemoveWithin(x, y, g.brushRadius); removed > 0 {
		slog.Debug("emitters erased", "x", x, "y", y, "count", removed)
	}
	g.collector.RecordErase(n)
}
