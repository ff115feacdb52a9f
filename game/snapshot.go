package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drops/telemetry"
	"github.com/pthm-cable/drops/ui"
)

// defaultSnapshotDir is used for manual snapshots when no directory was configured.
const defaultSnapshotDir = "snapshots"

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	dir := g.snapshotDir
	if dir == "" {
		dir = defaultSnapshotDir
	}
	path, err := telemetry.SaveSnapshot(g.Snapshot(bookmark), dir)
	if err != nil {
		g.logger.Error("failed to save snapshot", "error", err)
		return
	}
	g.logger.Info("snapshot saved", "path", path, "tick", g.tick)
}

// Snapshot captures the particles and live solver settings.
func (g *Game) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	p := g.params
	snap := &telemetry.Snapshot{
		Version: telemetry.SnapshotVersion,
		RNGSeed: g.seed,
		Tick:    g.tick,
		Solver: telemetry.SolverState{
			Threshold: p.Threshold,
			Substeps:  p.Substeps,
			K:         p.K,
			K2:        p.K2,
			Gamma:     p.Gamma,
			Viscosity: p.Viscosity,
		},
		Bookmark: bookmark,
	}

	ps := g.kernel.Particles()
	n := ps.Count()
	snap.Particles = make([]telemetry.ParticleState, n)
	for i := 0; i < n; i++ {
		snap.Particles[i] = telemetry.ParticleState{
			Pos: ps.Position(i),
			Vel: ps.Velocity(i),
		}
	}
	return snap
}

// RestoreSnapshot replaces the particles and solver settings with the
// snapshot's. The scene is rebuilt without fill blocks; emitters start over.
// Particles past kernel capacity are dropped and reported in the error.
func (g *Game) RestoreSnapshot(snap *telemetry.Snapshot) error {
	g.kernel.Reset()
	g.setupWorld(false)

	s := snap.Solver
	g.SetParams(ui.Params{
		Threshold: s.Threshold,
		Substeps:  s.Substeps,
		K:         s.K,
		K2:        s.K2,
		Gamma:     s.Gamma,
		Viscosity: s.Viscosity,
	})
	g.tick = snap.Tick
	g.meshDirty = true
	// Discard the partial window so the next one starts at the restored tick.
	g.collector.Flush(g.tick, telemetry.KernelSample{})

	dropped := 0
	for _, p := range snap.Particles {
		if err := g.kernel.AddParticle(mgl32.Vec3(p.Pos), mgl32.Vec3(p.Vel)); err != nil {
			dropped++
		}
	}
	if dropped > 0 {
		return fmt.Errorf("restore snapshot: %d of %d particles over capacity", dropped, len(snap.Particles))
	}
	return nil
}
