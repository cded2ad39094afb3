// Package telemetry provides simulation statistics, performance tracking,
// bookmarks, snapshots, and CSV output.
package telemetry

import "github.com/pthm-cable/sandfall/systems"

// Collector accumulates per-tick counts within windows and produces WindowStats.
type Collector struct {
	windowTicks int64

	// Current window tracking
	windowStartTick int64

	// Counters for current window
	inserted    int
	rejected    int
	emitted     int
	erased      int
	totals      systems.TickStats
	activeTicks int
	reactions   []float64
}

// NewCollector creates a collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks: int64(windowTicks),
		reactions:   make([]float64, 0, windowTicks),
	}
}

// RecordInsert records an accepted insertion command.
func (c *Collector) RecordInsert(n int) {
	c.inserted += n
}

// RecordReject records a rejected insertion command.
func (c *Collector) RecordReject() {
	c.rejected++
}

// RecordErase records particles removed by the eraser.
func (c *Collector) RecordErase(n int) {
	c.erased += n
}

// RecordEmitted records particles inserted by emitters.
func (c *Collector) RecordEmitted(n int) {
	c.emitted += n
}

// RecordTick records one engine step.
func (c *Collector) RecordTick(s systems.TickStats) {
	c.totals.Add(s)
	if s.Moves+s.Swaps+s.Reactions > 0 {
		c.activeTicks++
	}
	c.reactions = append(c.reactions, float64(s.Reactions))
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats from the window's counters and the grid's
// current occupancy, then resets for the next window.
func (c *Collector) Flush(currentTick int64, grid *systems.Grid) WindowStats {
	mean, std, p50, p90 := ComputeSeriesStats(c.reactions)
	kinds := grid.CountByKind()

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Particles: grid.Count(),
		Static:    kinds[systems.KindStatic],
		Solid:     kinds[systems.KindSolid],
		Fluid:     kinds[systems.KindFluid],
		Gas:       kinds[systems.KindGas],

		Inserted: c.inserted,
		Rejected: c.rejected,
		Emitted:  c.emitted,
		Erased:   c.erased,

		Moves:       c.totals.Moves,
		Swaps:       c.totals.Swaps,
		Reactions:   c.totals.Reactions,
		ActiveTicks: c.activeTicks,

		ReactionsMean: mean,
		ReactionsStd:  std,
		ReactionsP50:  p50,
		ReactionsP90:  p90,
	}

	c.Reset(currentTick)
	return stats
}

// Reset drops the window's counters and starts a new window at tick. Use it
// when the tick counter jumps, as on snapshot restore.
func (c *Collector) Reset(tick int64) {
	c.windowStartTick = tick
	c.inserted = 0
	c.rejected = 0
	c.emitted = 0
	c.erased = 0
	c.totals = systems.TickStats{}
	c.activeTicks = 0
	c.reactions = c.reactions[:0]
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int64 {
	return c.windowTicks
}
