// Package console renders a particle system into a terminal and turns mouse
// and key events into insertions.
package console

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/sandfall/systems"
)

// Recorder receives brush outcomes. telemetry.Collector satisfies it.
type Recorder interface {
	RecordInsert(n int)
	RecordErase(n int)
	RecordReject()
}

// Options configures a Console.
type Options struct {
	Primary     string        // type inserted with the primary button
	Secondary   string        // type inserted with the secondary button; the middle button erases
	BrushRadius int           // disc radius in cells
	Background  color.RGBA    // color of empty cells
	TickEvery   time.Duration // wall time between simulation steps
	Recorder    Recorder      // optional
	Step        func()        // advances the simulation; defaults to ps.Update
}

// Console is a terminal sink and input source for a ParticleSystem. The grid
// maps one cell to one terminal cell; the bottom terminal row is a status line.
type Console struct {
	screen tcell.Screen
	ps     *systems.ParticleSystem
	opts   Options
	paused bool
}

// New creates a console on an initialized screen.
func New(screen tcell.Screen, ps *systems.ParticleSystem, opts Options) *Console {
	if opts.TickEvery <= 0 {
		opts.TickEvery = 33 * time.Millisecond
	}
	if opts.Step == nil {
		opts.Step = func() { ps.Update() }
	}
	return &Console{screen: screen, ps: ps, opts: opts}
}

// Paused reports whether stepping is suspended.
func (c *Console) Paused() bool { return c.paused }

// Run steps and draws until the context ends or the user quits.
func (c *Console) Run(ctx context.Context) error {
	c.screen.EnableMouse()
	defer c.screen.DisableMouse()

	ticker := time.NewTicker(c.opts.TickEvery)
	defer ticker.Stop()

	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	c.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !c.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			if !c.paused {
				c.opts.Step()
			}
			c.Draw()
		}
	}
}

// HandleEvent applies one terminal event. It returns false when the user asked
// to quit.
func (c *Console) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				c.paused = !c.paused
			case 'c':
				c.ps.Clear()
			case 'n':
				if c.paused {
					c.opts.Step()
				}
			}
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		buttons := ev.Buttons()
		switch {
		case buttons&tcell.ButtonPrimary != 0:
			c.insert(c.opts.Primary, x, y)
		case buttons&tcell.ButtonSecondary != 0:
			c.insert(c.opts.Secondary, x, y)
		case buttons&tcell.ButtonMiddle != 0:
			c.erase(x, y)
		}

	case *tcell.EventResize:
		c.screen.Sync()
	}

	return true
}

func (c *Console) insert(typeName string, x, y int) {
	if typeName == "" {
		return
	}
	n, err := c.ps.InsertDisc(typeName, x, y, c.opts.BrushRadius)
	if c.opts.Recorder == nil {
		return
	}
	if err != nil {
		c.opts.Recorder.RecordReject()
		return
	}
	c.opts.Recorder.RecordInsert(n)
}

func (c *Console) erase(x, y int) {
	n, err := c.ps.EraseDisc(x, y, c.opts.BrushRadius)
	if c.opts.Recorder == nil {
		return
	}
	if err != nil {
		c.opts.Recorder.RecordReject()
		return
	}
	c.opts.Recorder.RecordErase(n)
}

// Draw paints the grid and status line and shows the screen.
func (c *Console) Draw() {
	c.screen.Clear()
	c.ps.RecomputeColorBuffers()
	layers := c.ps.Layers()

	sw, sh := c.screen.Size()
	w, h := c.ps.Width(), c.ps.Height()
	if w > sw {
		w = sw
	}
	if h > sh-1 {
		h = sh - 1
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			col := CellColor(layers, c.ps.Grid.Index(x, y), c.opts.Background)
			style := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(col.R), int32(col.G), int32(col.B)))
			c.screen.SetContent(x, y, ' ', nil, style)
		}
	}

	if sh > 0 {
		status := fmt.Sprintf("tick %d  particles %d  [%s/%s]", c.ps.Tick(), c.ps.Count(), c.opts.Primary, c.opts.Secondary)
		if c.paused {
			status += "  PAUSED"
		}
		drawText(c.screen, 0, sh-1, sw, status, tcell.StyleDefault.Foreground(tcell.ColorWhite))
	}

	c.screen.Show()
}

func drawText(s tcell.Screen, x, y, maxW int, text string, style tcell.Style) {
	for _, r := range text {
		if x >= maxW {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// CellColor composites the top-most visible layer pixel at idx over bg. Layers
// are ordered bottom to top.
func CellColor(layers []systems.Layer, idx int, bg color.RGBA) color.RGBA {
	for i := len(layers) - 1; i >= 0; i-- {
		px := layers[i].Pixels[idx]
		if px.A == 0 {
			continue
		}
		if px.A == 255 {
			return color.RGBA{R: px.R, G: px.G, B: px.B, A: 255}
		}
		base := colorful.Color{R: float64(bg.R) / 255, G: float64(bg.G) / 255, B: float64(bg.B) / 255}
		top := colorful.Color{R: float64(px.R) / 255, G: float64(px.G) / 255, B: float64(px.B) / 255}
		r, g, b := base.BlendRgb(top, float64(px.A)/255).Clamped().RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return bg
}
