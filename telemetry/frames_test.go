package telemetry

import (
	"math"
	"testing"
	"time"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time          { return c.t }
func (c *stepClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestProfiler(window, cells int) (*FrameProfiler, *stepClock) {
	clk := &stepClock{t: time.Unix(1000, 0)}
	fp := NewFrameProfiler(window, cells)
	fp.now = clk.now
	return fp, clk
}

// runFrame simulates one frame: 1ms of input, ticks engine steps of 2ms
// each, then 4ms of rendering.
func runFrame(fp *FrameProfiler, clk *stepClock, ticks int) {
	fp.BeginFrame()
	fp.Enter(PhaseInput)
	clk.advance(time.Millisecond)
	for i := 0; i < ticks; i++ {
		fp.Enter(PhaseUpdate)
		clk.advance(2 * time.Millisecond)
		fp.CountTick()
	}
	fp.Enter(PhaseRender)
	clk.advance(4 * time.Millisecond)
	fp.EndFrame()
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

func TestFrameProfilerTickCost(t *testing.T) {
	fp, clk := newTestProfiler(10, 1000)
	runFrame(fp, clk, 3)

	s := fp.Stats()
	if s.Frames != 1 {
		t.Fatalf("Frames = %d, want 1", s.Frames)
	}
	if s.AvgFrame != 11*time.Millisecond {
		t.Errorf("AvgFrame = %v, want 11ms", s.AvgFrame)
	}
	if s.TicksPerFrame != 3 {
		t.Errorf("TicksPerFrame = %v, want 3", s.TicksPerFrame)
	}
	if s.TickCost != 2*time.Millisecond {
		t.Errorf("TickCost = %v, want 2ms", s.TickCost)
	}
	// 3 sweeps of 1000 cells in 6ms of update time.
	if !closeTo(s.CellsPerSec, 500000) {
		t.Errorf("CellsPerSec = %v, want 500000", s.CellsPerSec)
	}
	if !closeTo(s.PhaseShare[PhaseUpdate], 600.0/11) {
		t.Errorf("update share = %v, want %v", s.PhaseShare[PhaseUpdate], 600.0/11)
	}
	if s.PhaseAvg[PhaseRender] != 4*time.Millisecond {
		t.Errorf("render avg = %v, want 4ms", s.PhaseAvg[PhaseRender])
	}
}

func TestFrameProfilerPausedFramesKeepTickCost(t *testing.T) {
	fp, clk := newTestProfiler(10, 100)
	runFrame(fp, clk, 2)
	runFrame(fp, clk, 0)
	runFrame(fp, clk, 0)

	s := fp.Stats()
	if s.TickCost != 2*time.Millisecond {
		t.Errorf("TickCost = %v, want 2ms regardless of paused frames", s.TickCost)
	}
	if !closeTo(s.TicksPerFrame, 2.0/3) {
		t.Errorf("TicksPerFrame = %v, want 2/3", s.TicksPerFrame)
	}
}

func TestFrameProfilerWindowDropsOldFrames(t *testing.T) {
	fp, clk := newTestProfiler(2, 100)
	for _, ticks := range []int{1, 2, 3} {
		runFrame(fp, clk, ticks)
	}

	s := fp.Stats()
	if s.Frames != 2 {
		t.Errorf("Frames = %d, want 2", s.Frames)
	}
	if s.TicksPerFrame != 2.5 {
		t.Errorf("TicksPerFrame = %v, want 2.5 over the last two frames", s.TicksPerFrame)
	}
	if s.MaxFrame != 11*time.Millisecond {
		t.Errorf("MaxFrame = %v, want 11ms", s.MaxFrame)
	}
}

func TestFrameProfilerFrameRate(t *testing.T) {
	fp, clk := newTestProfiler(10, 100)
	for i := 0; i < 4; i++ {
		fp.BeginFrame()
		clk.advance(5 * time.Millisecond)
		fp.EndFrame()
		clk.advance(15 * time.Millisecond)
	}

	if got := fp.Stats().FrameRate; !closeTo(got, 50) {
		t.Errorf("FrameRate = %v, want 50 for frames begun every 20ms", got)
	}
}

func TestFrameProfilerIgnoresCallsOutsideFrame(t *testing.T) {
	fp, clk := newTestProfiler(10, 100)

	fp.Enter(PhaseUpdate)
	fp.CountTick()
	clk.advance(time.Second)
	fp.EndFrame()

	s := fp.Stats()
	if s.Frames != 0 || s.TickCost != 0 || s.CellsPerSec != 0 {
		t.Errorf("stats = %+v, want zero values", s)
	}
}

func TestFrameProfilerBeginClosesOpenFrame(t *testing.T) {
	fp, clk := newTestProfiler(10, 100)
	fp.BeginFrame()
	fp.Enter(PhaseUpdate)
	clk.advance(3 * time.Millisecond)
	fp.CountTick()
	fp.BeginFrame()
	fp.EndFrame()

	s := fp.Stats()
	if s.Frames != 2 {
		t.Fatalf("Frames = %d, want 2", s.Frames)
	}
	if s.TickCost != 3*time.Millisecond {
		t.Errorf("TickCost = %v, want 3ms", s.TickCost)
	}
}

func TestPhaseNames(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseInput, "input"},
		{PhaseUpdate, "update"},
		{PhaseRender, "render"},
		{phaseCount, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
	if got := len(Phases()); got != int(phaseCount) {
		t.Errorf("len(Phases()) = %d, want %d", got, phaseCount)
	}
}

func TestFrameStatsRow(t *testing.T) {
	fp, clk := newTestProfiler(10, 1000)
	runFrame(fp, clk, 3)

	row := fp.Stats().Row(600)
	if row.WindowEnd != 600 || row.Frames != 1 || row.TickCostUS != 2000 || row.AvgFrameUS != 11000 {
		t.Errorf("row = %+v", row)
	}
	if row.EmittersPct != 0 || row.RenderPct == 0 {
		t.Errorf("phase shares = emitters %v render %v", row.EmittersPct, row.RenderPct)
	}
}
