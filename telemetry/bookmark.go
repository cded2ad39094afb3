package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkReactionBurst BookmarkType = "reaction_burst"
	BookmarkParticleSpike BookmarkType = "particle_spike"
	BookmarkExtinction    BookmarkType = "extinction"
	BookmarkSettled       BookmarkType = "settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// kindCount is one kind's occupancy in a window.
type kindCount struct {
	kind string
	n    int
}

func kindCounts(s WindowStats) [4]kindCount {
	return [4]kindCount{
		{"static", s.Static},
		{"solid", s.Solid},
		{"fluid", s.Fluid},
		{"gas", s.Gas},
	}
}

// BookmarkDetector watches window stats for reaction bursts, particle-count
// spikes, kinds dying out, and the grid coming to rest.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	wasSettled bool

	minBurst   int // reactions a window needs before it can be a burst
	minSpike   int // particles a window must gain over the average to spike
	minExtinct int // particles a kind must have had to count as dying out
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		minBurst:    10,
		minSpike:    20,
		minExtinct:  10,
	}
}

// Reset forgets the history, as after the grid was replaced wholesale.
func (bd *BookmarkDetector) Reset() {
	clear(bd.history)
	bd.historyIdx = 0
	bd.historyFull = false
	bd.wasSettled = false
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkReactionBurst(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkParticleSpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	bookmarks = append(bookmarks, bd.checkExtinction(stats)...)
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// previous returns the most recent window before the one being checked.
func (bd *BookmarkDetector) previous() (WindowStats, bool) {
	if !bd.historyFull && bd.historyIdx == 0 {
		return WindowStats{}, false
	}
	return bd.history[(bd.historyIdx+bd.historySize-1)%bd.historySize], true
}

// average returns the mean of field over the history.
func (bd *BookmarkDetector) average(field func(WindowStats) int) (float64, bool) {
	history := bd.getHistory()
	if len(history) < 3 {
		return 0, false
	}
	total := 0
	for _, h := range history {
		total += field(h)
	}
	return float64(total) / float64(len(history)), true
}

func (bd *BookmarkDetector) checkReactionBurst(stats WindowStats) *Bookmark {
	if stats.Reactions < bd.minBurst {
		return nil
	}
	avg, ok := bd.average(func(s WindowStats) int { return s.Reactions })
	if !ok || float64(stats.Reactions) <= avg*2 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkReactionBurst,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d reactions vs rolling average %.1f", stats.Reactions, avg),
	}
}

// checkParticleSpike fires when the grid holds half again as many particles
// as the rolling average, by at least minSpike.
func (bd *BookmarkDetector) checkParticleSpike(stats WindowStats) *Bookmark {
	avg, ok := bd.average(func(s WindowStats) int { return s.Particles })
	if !ok {
		return nil
	}
	gain := float64(stats.Particles) - avg
	if gain < float64(bd.minSpike) || float64(stats.Particles) <= avg*1.5 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkParticleSpike,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d particles vs rolling average %.1f", stats.Particles, avg),
	}
}

// checkExtinction reports every kind that had at least minExtinct particles
// in the previous window and has none now.
func (bd *BookmarkDetector) checkExtinction(stats WindowStats) []Bookmark {
	prev, ok := bd.previous()
	if !ok {
		return nil
	}
	var out []Bookmark
	now := kindCounts(stats)
	for i, was := range kindCounts(prev) {
		if was.n < bd.minExtinct || now[i].n > 0 {
			continue
		}
		out = append(out, Bookmark{
			Type:        BookmarkExtinction,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("all %d %s particles gone", was.n, was.kind),
		})
	}
	return out
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	settled := stats.Settled() && stats.Particles > 0
	prev := bd.wasSettled
	bd.wasSettled = settled

	// Trigger once per transition from activity to rest
	if !settled || prev || (!bd.historyFull && bd.historyIdx == 0) {
		return nil
	}

	return &Bookmark{
		Type:        BookmarkSettled,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Grid at rest with %d particles", stats.Particles),
	}
}
