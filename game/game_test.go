package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/drops/config"
	"github.com/pthm-cable/drops/telemetry"
)

// smallConfig returns defaults shrunk to a quick scene.
func smallConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Kernel.MaxParticles = 4096
	cfg.Kernel.HashShift = 12
	cfg.Scene.Fills = []config.FillConfig{{
		Center:      config.Vec3{0, -3, 0},
		HalfExtents: config.Vec3{0.9, 0.9, 0.9},
	}}
	cfg.Scene.Emitters = []config.EmitterConfig{{
		Position: config.Vec3{0, 2, 0},
		Dir:      config.Vec3{0, -1, 0},
		Rate:     2,
		Speed:    0.05,
		Spread:   0.2,
		Total:    20,
	}}
	cfg.Scene.Obstacles = nil
	cfg.Telemetry.StatsWindow = 10
	cfg.Mesh.EveryNTicks = 5
	return cfg
}

func newHeadless(t *testing.T, cfg *config.Config, cb func(telemetry.WindowStats)) *Game {
	t.Helper()
	g := NewGameWithOptions(Options{Config: cfg, Seed: 1, Headless: true, StatsCallback: cb})
	t.Cleanup(g.Unload)
	return g
}

func TestHeadless_SpawnsAndMeshes(t *testing.T) {
	var windows []telemetry.WindowStats
	g := newHeadless(t, smallConfig(t), func(s telemetry.WindowStats) {
		windows = append(windows, s)
	})

	for g.Tick() < 20 {
		g.UpdateHeadless()
	}

	// 6x6x6 block plus the emitter's 20
	if got := g.ParticleCount(); got != 216+20 {
		t.Errorf("particle count = %d, want 236", got)
	}
	if g.Kernel().PairCount() == 0 {
		t.Error("expected neighbor pairs")
	}
	if g.Kernel().MeshTriangleCount() == 0 {
		t.Error("expected a surface mesh")
	}

	if len(windows) != 2 {
		t.Fatalf("expected 2 stats windows, got %d", len(windows))
	}
	spawned := windows[0].Spawned + windows[1].Spawned
	if spawned != g.ParticleCount() {
		t.Errorf("spawned %d across windows, want %d", spawned, g.ParticleCount())
	}
	if windows[1].MeshRebuilds != 2 {
		t.Errorf("mesh rebuilds in second window = %d, want 2", windows[1].MeshRebuilds)
	}
	if windows[1].Overflows != 0 {
		t.Errorf("unexpected overflows: %d", windows[1].Overflows)
	}
}

func TestHeadless_ParticlesStayInContainer(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Scene.Obstacles = []config.ObstacleConfig{{
		Shape: "sphere", Position: config.Vec3{0, -1, 0}, Radius: 0.8,
		OrbitRadius: 1.5, OrbitSpeed: 0.05,
	}}
	g := newHeadless(t, cfg, nil)

	for g.Tick() < 60 {
		g.UpdateHeadless()
	}

	ct := cfg.Scene.Container
	const eps = 1e-4
	ps := g.Kernel().Particles()
	px, py, pz := ps.Positions()
	for i := range px {
		p := [3]float32{px[i], py[i], pz[i]}
		for a := 0; a < 3; a++ {
			lo := float32(ct.Center[a] - ct.HalfExtents[a])
			hi := float32(ct.Center[a] + ct.HalfExtents[a])
			if p[a] < lo-eps || p[a] > hi+eps {
				t.Fatalf("particle %d escaped the container: %v", i, p)
			}
		}
	}
}

func TestHeadless_Reset(t *testing.T) {
	g := newHeadless(t, smallConfig(t), nil)
	for g.Tick() < 5 {
		g.UpdateHeadless()
	}

	g.Reset()
	if g.ParticleCount() != 0 {
		t.Fatalf("reset left %d particles", g.ParticleCount())
	}

	g.UpdateHeadless()
	if got := g.ParticleCount(); got != 216+2 {
		t.Errorf("after reset and one tick: %d particles, want 218", got)
	}
}

func TestHeadless_CapacityRejects(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Kernel.MaxParticles = 100

	var rejected int
	g := newHeadless(t, cfg, func(s telemetry.WindowStats) { rejected += s.Rejected })
	for g.Tick() < 10 {
		g.UpdateHeadless()
	}

	if g.ParticleCount() != 100 {
		t.Errorf("particle count = %d, want capacity 100", g.ParticleCount())
	}
	if rejected == 0 {
		t.Error("expected rejected spawns")
	}
	if g.Kernel().Overflows().Total() == 0 {
		t.Error("expected particle overflows to be counted")
	}
}

func TestHeadless_OutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	g := NewGameWithOptions(Options{Config: smallConfig(t), Headless: true, OutputDir: dir})
	for g.Tick() < 10 {
		g.UpdateHeadless()
	}
	g.Unload()

	for _, name := range []string{"stats.csv", "perf.csv", "bookmarks.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestSetParamsClamps(t *testing.T) {
	g := newHeadless(t, smallConfig(t), nil)
	p := g.Params()
	p.Substeps = 100
	p.Threshold = -1
	g.SetParams(p)

	got := g.Params()
	if got.Substeps != 12 || got.Threshold != 0.05 {
		t.Errorf("params not clamped: %+v", got)
	}
}

func TestSnapshotRestore(t *testing.T) {
	cfg := smallConfig(t)
	g := newHeadless(t, cfg, nil)
	for g.Tick() < 8 {
		g.UpdateHeadless()
	}
	p := g.Params()
	p.K = 0.07
	g.SetParams(p)

	snap := g.Snapshot(nil)
	if len(snap.Particles) != g.ParticleCount() {
		t.Fatalf("snapshot holds %d particles, game has %d", len(snap.Particles), g.ParticleCount())
	}

	dir := t.TempDir()
	path, err := telemetry.SaveSnapshot(snap, dir)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	loaded, err := telemetry.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	h := newHeadless(t, cfg, nil)
	if err := h.RestoreSnapshot(loaded); err != nil {
		t.Fatalf("RestoreSnapshot: %v", err)
	}
	if h.Tick() != 8 {
		t.Errorf("tick = %d, want 8", h.Tick())
	}
	if h.ParticleCount() != g.ParticleCount() {
		t.Errorf("restored %d particles, want %d", h.ParticleCount(), g.ParticleCount())
	}
	if h.Params().K != 0.07 {
		t.Errorf("K = %v, want 0.07", h.Params().K)
	}
	src, dst := g.Kernel().Particles(), h.Kernel().Particles()
	for i := 0; i < src.Count(); i++ {
		if src.Position(i) != dst.Position(i) || src.Velocity(i) != dst.Velocity(i) {
			t.Fatalf("particle %d differs after restore", i)
		}
	}

	// The fill block is not spawned again.
	h.UpdateHeadless()
	if h.ParticleCount() > g.ParticleCount()+2 {
		t.Errorf("fill respawned: %d particles", h.ParticleCount())
	}
}

func TestRestoreSnapshotOverCapacity(t *testing.T) {
	cfg := smallConfig(t)
	g := newHeadless(t, cfg, nil)
	g.UpdateHeadless()
	snap := g.Snapshot(nil)

	small := smallConfig(t)
	small.Kernel.MaxParticles = 100
	h := newHeadless(t, small, nil)
	if err := h.RestoreSnapshot(snap); err == nil {
		t.Error("expected an error when the snapshot exceeds capacity")
	}
	if h.ParticleCount() != 100 {
		t.Errorf("particle count = %d, want 100", h.ParticleCount())
	}
}
