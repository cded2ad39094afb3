package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one stage of a frame.
type Phase uint8

// Frame stages in the order a frame runs them. Emitters, update and telemetry
// repeat once per engine tick inside a frame.
const (
	PhaseInput Phase = iota
	PhaseEmitters
	PhaseUpdate
	PhaseTelemetry
	PhaseColors
	PhaseRender
	phaseCount
)

var phaseNames = [phaseCount]string{
	PhaseInput:     "input",
	PhaseEmitters:  "emitters",
	PhaseUpdate:    "update",
	PhaseTelemetry: "telemetry",
	PhaseColors:    "colors",
	PhaseRender:    "render",
}

func (p Phase) String() string {
	if p >= phaseCount {
		return "unknown"
	}
	return phaseNames[p]
}

// Phases returns every phase in frame order.
func Phases() []Phase {
	out := make([]Phase, phaseCount)
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

// frameSample is the cost of one finished frame.
type frameSample struct {
	total    time.Duration
	interval time.Duration // since the previous frame began; 0 for the first
	ticks    int
	phases   [phaseCount]time.Duration
}

// FrameProfiler times frames phase by phase and counts the engine ticks each
// frame ran. With several steps per update the engine cost is reported per
// tick, and paused frames (zero ticks) do not dilute it.
type FrameProfiler struct {
	now   func() time.Time
	cells int // grid cells swept by one engine tick

	ring   []frameSample
	next   int
	filled int

	open       bool
	cur        frameSample
	frameStart time.Time
	lastBegin  time.Time
	phase      Phase
	phaseStart time.Time
	inPhase    bool
}

// NewFrameProfiler keeps the last window frames. cells is the grid size used
// for the throughput figure.
func NewFrameProfiler(window, cells int) *FrameProfiler {
	if window < 1 {
		window = 60
	}
	return &FrameProfiler{
		now:   time.Now,
		cells: cells,
		ring:  make([]frameSample, window),
	}
}

// BeginFrame starts a frame, closing one left open.
func (fp *FrameProfiler) BeginFrame() {
	if fp.open {
		fp.EndFrame()
	}
	now := fp.now()
	fp.cur = frameSample{}
	if !fp.lastBegin.IsZero() {
		fp.cur.interval = now.Sub(fp.lastBegin)
	}
	fp.lastBegin = now
	fp.frameStart = now
	fp.inPhase = false
	fp.open = true
}

// Enter switches the running phase. Outside a frame it does nothing.
func (fp *FrameProfiler) Enter(p Phase) {
	if !fp.open || p >= phaseCount {
		return
	}
	now := fp.now()
	fp.closePhase(now)
	fp.phase = p
	fp.phaseStart = now
	fp.inPhase = true
}

// CountTick records that the engine advanced one tick in this frame.
func (fp *FrameProfiler) CountTick() {
	if fp.open {
		fp.cur.ticks++
	}
}

// EndFrame closes the running phase and stores the frame.
func (fp *FrameProfiler) EndFrame() {
	if !fp.open {
		return
	}
	now := fp.now()
	fp.closePhase(now)
	fp.cur.total = now.Sub(fp.frameStart)

	fp.ring[fp.next] = fp.cur
	fp.next = (fp.next + 1) % len(fp.ring)
	if fp.filled < len(fp.ring) {
		fp.filled++
	}
	fp.open = false
}

func (fp *FrameProfiler) closePhase(now time.Time) {
	if fp.inPhase {
		fp.cur.phases[fp.phase] += now.Sub(fp.phaseStart)
		fp.inPhase = false
	}
}

// FrameStats summarizes the frames in the window.
type FrameStats struct {
	Frames        int
	AvgFrame      time.Duration
	MaxFrame      time.Duration
	TicksPerFrame float64
	TickCost      time.Duration // update phase time per engine tick
	CellsPerSec   float64       // grid cells swept per second of update time
	FrameRate     float64       // frames begun per wall-clock second

	PhaseAvg   [phaseCount]time.Duration
	PhaseShare [phaseCount]float64 // percent of frame time
}

// Stats aggregates the window. An empty window yields zero values.
func (fp *FrameProfiler) Stats() FrameStats {
	var s FrameStats
	s.Frames = fp.filled
	if fp.filled == 0 {
		return s
	}

	var (
		total, intervals time.Duration
		spans, ticks     int
		phaseSum         [phaseCount]time.Duration
	)
	for _, f := range fp.ring[:fp.filled] {
		total += f.total
		s.MaxFrame = max(s.MaxFrame, f.total)
		ticks += f.ticks
		if f.interval > 0 {
			intervals += f.interval
			spans++
		}
		for p, d := range f.phases {
			phaseSum[p] += d
		}
	}

	n := time.Duration(fp.filled)
	s.AvgFrame = total / n
	s.TicksPerFrame = float64(ticks) / float64(fp.filled)
	for p := range phaseSum {
		s.PhaseAvg[p] = phaseSum[p] / n
		if total > 0 {
			s.PhaseShare[p] = float64(phaseSum[p]) / float64(total) * 100
		}
	}

	if update := phaseSum[PhaseUpdate]; ticks > 0 {
		s.TickCost = update / time.Duration(ticks)
		if update > 0 {
			s.CellsPerSec = float64(fp.cells*ticks) / update.Seconds()
		}
	}
	if spans > 0 && intervals > 0 {
		s.FrameRate = float64(spans) / intervals.Seconds()
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s FrameStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("frames", s.Frames),
		slog.Int64("avg_frame_us", s.AvgFrame.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrame.Microseconds()),
		slog.Float64("ticks_per_frame", s.TicksPerFrame),
		slog.Int64("tick_cost_us", s.TickCost.Microseconds()),
		slog.Float64("cells_per_sec", s.CellsPerSec),
	}
	if s.FrameRate > 0 {
		attrs = append(attrs, slog.Float64("frame_rate", s.FrameRate))
	}
	for _, p := range Phases() {
		if s.PhaseShare[p] > 0 {
			attrs = append(attrs, slog.Float64(p.String()+"_pct", s.PhaseShare[p]))
		}
	}
	return slog.GroupValue(attrs...)
}

// FrameStatsRow is one perf.csv row.
type FrameStatsRow struct {
	WindowEnd     int64   `csv:"window_end"`
	Frames        int     `csv:"frames"`
	AvgFrameUS    int64   `csv:"avg_frame_us"`
	MaxFrameUS    int64   `csv:"max_frame_us"`
	TicksPerFrame float64 `csv:"ticks_per_frame"`
	TickCostUS    int64   `csv:"tick_cost_us"`
	CellsPerSec   float64 `csv:"cells_per_sec"`
	FrameRate     float64 `csv:"frame_rate"`
	InputPct      float64 `csv:"input_pct"`
	EmittersPct   float64 `csv:"emitters_pct"`
	UpdatePct     float64 `csv:"update_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
	ColorsPct     float64 `csv:"colors_pct"`
	RenderPct     float64 `csv:"render_pct"`
}

// Row flattens the stats for the window ending at windowEnd.
func (s FrameStats) Row(windowEnd int64) FrameStatsRow {
	return FrameStatsRow{
		WindowEnd:     windowEnd,
		Frames:        s.Frames,
		AvgFrameUS:    s.AvgFrame.Microseconds(),
		MaxFrameUS:    s.MaxFrame.Microseconds(),
		TicksPerFrame: s.TicksPerFrame,
		TickCostUS:    s.TickCost.Microseconds(),
		CellsPerSec:   s.CellsPerSec,
		FrameRate:     s.FrameRate,
		InputPct:      s.PhaseShare[PhaseInput],
		EmittersPct:   s.PhaseShare[PhaseEmitters],
		UpdatePct:     s.PhaseShare[PhaseUpdate],
		TelemetryPct:  s.PhaseShare[PhaseTelemetry],
		ColorsPct:     s.PhaseShare[PhaseColors],
		RenderPct:     s.PhaseShare[PhaseRender],
	}
}
