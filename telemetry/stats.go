package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int64 `csv:"-"`
	WindowEndTick   int64 `csv:"window_end"`

	// Occupancy at window end
	Particles int `csv:"particles"`
	Static    int `csv:"static"`
	Solid     int `csv:"solid"`
	Fluid     int `csv:"fluid"`
	Gas       int `csv:"gas"`

	// Input during window
	Inserted int `csv:"inserted"`
	Rejected int `csv:"rejected"`
	Emitted  int `csv:"emitted"`
	Erased   int `csv:"erased"`

	// Engine activity during window
	Moves       int `csv:"moves"`
	Swaps       int `csv:"swaps"`
	Reactions   int `csv:"reactions"`
	ActiveTicks int `csv:"active_ticks"` // ticks where anything changed

	// Reactions per tick distribution
	ReactionsMean float64 `csv:"reactions_mean"`
	ReactionsStd  float64 `csv:"reactions_std"`
	ReactionsP50  float64 `csv:"reactions_p50"`
	ReactionsP90  float64 `csv:"reactions_p90"`
}

// Settled reports whether nothing moved during the window.
func (s WindowStats) Settled() bool {
	return s.Moves == 0 && s.Swaps == 0 && s.Reactions == 0
}

// ComputeSeriesStats calculates mean, standard deviation and percentiles of a
// per-tick series.
func ComputeSeriesStats(values []float64) (mean, std, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}
	if n == 1 {
		return values[0], 0, values[0], values[0]
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, std, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Int("particles", s.Particles),
		slog.Int("static", s.Static),
		slog.Int("solid", s.Solid),
		slog.Int("fluid", s.Fluid),
		slog.Int("gas", s.Gas),
		slog.Int("inserted", s.Inserted),
		slog.Int("rejected", s.Rejected),
		slog.Int("emitted", s.Emitted),
		slog.Int("erased", s.Erased),
		slog.Int("moves", s.Moves),
		slog.Int("swaps", s.Swaps),
		slog.Int("reactions", s.Reactions),
		slog.Int("active_ticks", s.ActiveTicks),
		slog.Float64("reactions_mean", s.ReactionsMean),
		slog.Float64("reactions_std", s.ReactionsStd),
		slog.Float64("reactions_p50", s.ReactionsP50),
		slog.Float64("reactions_p90", s.ReactionsP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"particles", s.Particles,
		"solid", s.Solid,
		"fluid", s.Fluid,
		"static", s.Static,
		"inserted", s.Inserted,
		"rejected", s.Rejected,
		"emitted", s.Emitted,
		"erased", s.Erased,
		"moves", s.Moves,
		"swaps", s.Swaps,
		"reactions", s.Reactions,
		"active_ticks", s.ActiveTicks,
		"reactions_mean", s.ReactionsMean,
		"reactions_p90", s.ReactionsP90,
	)
}
