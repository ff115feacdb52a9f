package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSplash      BookmarkType = "splash"
	BookmarkCompression BookmarkType = "compression"
	BookmarkOverflow    BookmarkType = "overflow"
	BookmarkSettled     BookmarkType = "settled"
)

// Detector thresholds.
const (
	splashFactor       = 2.0  // energy per particle vs rolling average
	splashMinEnergy    = 1e-4 // ignore spikes on a nearly still fluid
	compressionFactor  = 1.5  // density p90 vs rest
	settledEnergy      = 1e-5 // energy per particle
	settledWindowCount = 3    // consecutive quiet windows
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
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

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	rest float64

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	lastOverflows int
	compressed    bool // last window was over the compression threshold
	quietWindows  int  // consecutive windows below settledEnergy
	settled       bool // settled bookmark already fired for this quiet run
}

// NewBookmarkDetector creates a detector with the given history size.
// rest is the rest density used for compression checks.
func NewBookmarkDetector(historySize int, rest float64) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		rest:        rest,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkSplash(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkCompression(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkOverflow(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
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

// energyPerParticle returns the mean kinetic energy, or 0 with no particles.
func energyPerParticle(s WindowStats) float64 {
	if s.Particles == 0 {
		return 0
	}
	return s.KineticEnergy / float64(s.Particles)
}

func (bd *BookmarkDetector) checkSplash(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += energyPerParticle(h)
	}
	avg := total / float64(len(history))

	cur := energyPerParticle(stats)
	if cur < splashMinEnergy || cur <= avg*splashFactor {
		return nil
	}

	desc := fmt.Sprintf("Energy per particle %.2e is above %.1fx average", cur, splashFactor)
	if avg > 0 {
		desc = fmt.Sprintf("Energy per particle %.2e is %.1fx average (%.2e)", cur, cur/avg, avg)
	}
	return &Bookmark{
		Type:        BookmarkSplash,
		Tick:        stats.WindowEndTick,
		Description: desc,
	}
}

func (bd *BookmarkDetector) checkCompression(stats WindowStats) *Bookmark {
	if bd.rest <= 0 || stats.Particles == 0 {
		bd.compressed = false
		return nil
	}

	over := stats.DensityP90 > bd.rest*compressionFactor
	fire := over && !bd.compressed
	bd.compressed = over
	if !fire {
		return nil
	}

	return &Bookmark{
		Type:        BookmarkCompression,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Density p90 %.2f is %.2fx rest (%.2f)", stats.DensityP90, stats.DensityP90/bd.rest, bd.rest),
	}
}

func (bd *BookmarkDetector) checkOverflow(stats WindowStats) *Bookmark {
	prev := bd.lastOverflows
	bd.lastOverflows = stats.Overflows
	if stats.Overflows <= prev {
		return nil
	}

	return &Bookmark{
		Type:        BookmarkOverflow,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d items dropped at capacity this window", stats.Overflows-prev),
	}
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.Particles == 0 || energyPerParticle(stats) >= settledEnergy {
		bd.quietWindows = 0
		bd.settled = false
		return nil
	}

	bd.quietWindows++
	if bd.settled || bd.quietWindows < settledWindowCount {
		return nil
	}

	bd.settled = true
	return &Bookmark{
		Type:        BookmarkSettled,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Fluid quiet for %d windows (%d particles)", bd.quietWindows, stats.Particles),
	}
}
