package game

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/sandfall/console"
)

// RunConsole drives the simulation inside a terminal until the user quits,
// the context ends, or the tick limit is reached.
func (g *Game) RunConsole(ctx context.Context, screen tcell.Screen) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cc := g.cfg.Console
	c := console.New(screen, g.ps, console.Options{
		Primary:     cc.Primary,
		Secondary:   cc.Secondary,
		BrushRadius: g.brushRadius,
		Background:  g.cfg.Derived.Background,
		TickEvery:   time.Duration(cc.TickMS) * time.Millisecond,
		Recorder:    g.collector,
		Step: func() {
			g.UpdateHeadless()
			if g.Done() {
				cancel()
			}
		},
	})

	err := c.Run(ctx)
	if errors.Is(err, context.Canceled) && g.Done() {
		return nil
	}
	return err
}
