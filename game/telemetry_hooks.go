package game

import (
	"github.com/pthm-cable/drops/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and emits it.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleKernel())
	g.lastStats = stats
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteStats(stats); err != nil {
		g.logger.Error("failed to write stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		g.logger.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			g.logger.Error("failed to write bookmark", "error", err)
		}
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sampleKernel reads the kernel state for the window that just ended.
func (g *Game) sampleKernel() telemetry.KernelSample {
	k := g.kernel
	ps := k.Particles()
	ms := k.MeshStats()
	return telemetry.KernelSample{
		Particles:     k.ParticleCount(),
		Pairs:         k.PairCount(),
		Densities:     ps.Densities(),
		KineticEnergy: ps.KineticEnergy(),
		Vertices:      k.MeshVertexCount(),
		Triangles:     k.MeshTriangleCount(),
		MeshArea:      ms.Area,
		MeshVolume:    ms.Volume,
		BoundaryEdges: ms.BoundaryEdges,
		Overflows:     k.Overflows().Total(),
	}
}
