package ui

import (
	"fmt"
	"image/color"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Swatch is one selectable particle type.
type Swatch struct {
	Name  string
	Color color.RGBA
}

// HUDData holds the values shown on the HUD.
type HUDData struct {
	Tick        int64
	Particles   int
	Reactions   int
	FPS         int32
	Steps       int
	Paused      bool
	Selected    string
	BrushRadius int
	Swatches    []Swatch
}

// HUDResult reports what the user changed through the HUD this frame.
type HUDResult struct {
	Selected    string
	BrushRadius int
	Hovered     bool // mouse is over the panel; suppress painting
}

// HUD renders the stats panel and the type palette.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHUD creates a HUD anchored at the top-left corner.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer(), x: 10, y: 10, width: 200}
}

// Draw renders the HUD and returns the palette and brush state after user
// interaction.
func (h *HUD) Draw(data HUDData) HUDResult {
	r := h.renderer
	th := r.Theme
	res := HUDResult{Selected: data.Selected, BrushRadius: data.BrushRadius}

	rows := int32(len(data.Swatches)+1) / 2
	height := th.Padding*2 + th.LineHeight*6 + rows*int32(th.ButtonHeight+4) + int32(th.ButtonHeight) + 8
	r.DrawPanel(h.x, h.y, h.width, height)

	x := h.x + th.Padding
	y := h.y + th.Padding

	status := "Running"
	statusColor := th.ValueColor
	if data.Paused {
		status = "PAUSED"
		statusColor = th.Highlight
	}
	rl.DrawText(status, x, y, th.HeaderFontSize, statusColor)
	y += th.LineHeight + 2

	y = r.DrawLabelValue(x, y, "Tick", fmt.Sprintf("%d", data.Tick))
	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d", data.Particles))
	y = r.DrawLabelValue(x, y, "Reactions", fmt.Sprintf("%d", data.Reactions))
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d  (%dx)", data.FPS, data.Steps))
	y += 4

	for i, sw := range data.Swatches {
		bx := float32(x) + float32(i%2)*(th.ButtonWidth+8)
		by := float32(y) + float32(i/2)*(th.ButtonHeight+4)
		bounds := rl.Rectangle{X: bx, Y: by, Width: th.ButtonWidth, Height: th.ButtonHeight}

		rl.DrawRectangle(int32(bx)-4, int32(by), 3, int32(th.ButtonHeight), rl.Color(sw.Color))
		if gui.Button(bounds, sw.Name) {
			res.Selected = sw.Name
		}
		if sw.Name == res.Selected {
			rl.DrawRectangleLinesEx(bounds, 2, th.Highlight)
		}
	}
	y += rows * int32(th.ButtonHeight+4)

	radius := gui.SliderBar(
		rl.Rectangle{X: float32(x) + 40, Y: float32(y) + 4, Width: float32(h.width) - 90, Height: th.ButtonHeight - 6},
		"Brush", fmt.Sprintf("%d", res.BrushRadius),
		float32(res.BrushRadius), 0, 8,
	)
	res.BrushRadius = int(radius + 0.5)

	panel := rl.Rectangle{X: float32(h.x), Y: float32(h.y), Width: float32(h.width), Height: float32(height)}
	res.Hovered = rl.CheckCollisionPointRec(rl.GetMousePosition(), panel)
	return res
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-22, 14, rl.LightGray)
}

// PerfPhase is one row of the perf panel.
type PerfPhase struct {
	Name    string
	Avg     time.Duration
	Percent float64
}

// DrawPerf renders per-phase frame timing at the top-right corner.
func (h *HUD) DrawPerf(screenWidth int32, summary string, phases []PerfPhase) {
	r := h.renderer
	th := r.Theme
	width := int32(220)
	x := screenWidth - width - 10
	y := int32(10)
	r.DrawPanel(x, y, width, th.Padding*2+th.LineHeight*int32(len(phases)+2))

	x += th.Padding
	y += th.Padding
	rl.DrawText("Frame phases", x, y, th.HeaderFontSize, th.SectionHeader)
	y += th.LineHeight
	rl.DrawText(summary, x, y, th.FontSize, th.ValueColor)
	y += th.LineHeight
	for _, p := range phases {
		y = r.DrawLabelValue(x, y, p.Name, fmt.Sprintf("%6s  %4.1f%%", p.Avg.Round(time.Microsecond), p.Percent))
	}
}
