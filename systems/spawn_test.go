package systems

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drops/components"
	"github.com/pthm-cable/drops/fluid"
)

// fakeSpawner records particles up to a fixed capacity.
type fakeSpawner struct {
	capacity int
	pos      []mgl32.Vec3
	vel      []mgl32.Vec3
}

func (f *fakeSpawner) AddParticle(pos, vel mgl32.Vec3) error {
	if len(f.pos) >= f.capacity {
		return fluid.ErrParticleCapacity
	}
	f.pos = append(f.pos, pos)
	f.vel = append(f.vel, vel)
	return nil
}

// ---------- Fill ----------

func TestLatticeDims(t *testing.T) {
	tests := []struct {
		name string
		half mgl32.Vec3
		want [3]int
	}{
		{"tiny block", mgl32.Vec3{0.01, 0.01, 0.01}, [3]int{1, 1, 1}},
		{"exact multiples", mgl32.Vec3{0.6, 0.3, 0.15}, [3]int{4, 2, 1}},
		{"non multiples", mgl32.Vec3{0.65, 1.0, 0.45}, [3]int{4, 6, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LatticeDims(tt.half); got != tt.want {
				t.Errorf("LatticeDims(%v) = %v, want %v", tt.half, got, tt.want)
			}
		})
	}
}

func TestFillSystem_SpawnsOnce(t *testing.T) {
	w := ecs.NewWorld()
	m := ecs.NewMap2[components.Transform, components.Fill](w)
	center := mgl32.Vec3{1, 2, -1}
	m.NewEntity(&components.Transform{Pos: center}, &components.Fill{HalfExtents: mgl32.Vec3{0.6, 0.6, 0.6}})

	sys := NewFillSystem(w)
	sp := &fakeSpawner{capacity: 1000}

	res, err := sys.Update(w, sp)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Spawned != 64 || res.Rejected != 0 {
		t.Fatalf("expected 64 spawned, got %+v", res)
	}

	var mean mgl32.Vec3
	for _, p := range sp.pos {
		mean = mean.Add(p)
	}
	mean = mean.Mul(1 / float32(len(sp.pos)))
	if !mean.ApproxEqualThreshold(center, 1e-4) {
		t.Errorf("block centered at %v, want %v", mean, center)
	}

	res, err = sys.Update(w, sp)
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if res.Spawned != 0 {
		t.Errorf("fill should spawn once, second update spawned %d", res.Spawned)
	}
}

func TestFillSystem_LatticeSpacing(t *testing.T) {
	w := ecs.NewWorld()
	m := ecs.NewMap2[components.Transform, components.Fill](w)
	m.NewEntity(&components.Transform{}, &components.Fill{HalfExtents: mgl32.Vec3{0.3, 0.15, 0.15}})

	sp := &fakeSpawner{capacity: 100}
	if _, err := NewFillSystem(w).Update(w, sp); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(sp.pos) != 2 {
		t.Fatalf("expected 2 particles, got %d", len(sp.pos))
	}
	d := sp.pos[1].Sub(sp.pos[0]).Len()
	if math.Abs(float64(d-fluid.Interval)) > 1e-5 {
		t.Errorf("lattice spacing = %v, want %v", d, fluid.Interval)
	}
}

func TestFillSystem_RejectsWhenFull(t *testing.T) {
	w := ecs.NewWorld()
	m := ecs.NewMap2[components.Transform, components.Fill](w)
	m.NewEntity(&components.Transform{}, &components.Fill{HalfExtents: mgl32.Vec3{0.6, 0.6, 0.6}, Jitter: 0.01, Seed: 3})

	sp := &fakeSpawner{capacity: 10}
	res, err := NewFillSystem(w).Update(w, sp)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Spawned != 10 || res.Rejected != 54 {
		t.Errorf("expected 10 spawned and 54 rejected, got %+v", res)
	}
}

// ---------- Emitter ----------

func TestEmitterSystem_RateAndRemaining(t *testing.T) {
	w := ecs.NewWorld()
	m := ecs.NewMap2[components.Transform, components.Emitter](w)
	m.NewEntity(&components.Transform{}, &components.Emitter{
		Rate: 3, Speed: 0.1, Spread: 0.2, Dir: mgl32.Vec3{0, -1, 0}, Remaining: 5,
	})

	sys := NewEmitterSystem(w)
	sp := &fakeSpawner{capacity: 100}

	for tick, want := range []int{3, 2, 0} {
		res, err := sys.Update(w, sp)
		if err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		if res.Spawned != want {
			t.Errorf("tick %d: spawned %d, want %d", tick, res.Spawned, want)
		}
	}
}

func TestEmitterSystem_ConeVelocities(t *testing.T) {
	w := ecs.NewWorld()
	m := ecs.NewMap2[components.Transform, components.Emitter](w)
	dir := mgl32.Vec3{1, 1, 0}.Normalize()
	spread := float32(0.3)
	m.NewEntity(&components.Transform{Pos: mgl32.Vec3{0, 1, 0}}, &components.Emitter{
		Rate: 50, Speed: 0.2, Spread: spread, Dir: dir, Remaining: -1,
	})

	sp := &fakeSpawner{capacity: 100}
	if _, err := NewEmitterSystem(w).Update(w, sp); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(sp.vel) != 50 {
		t.Fatalf("expected 50 particles, got %d", len(sp.vel))
	}

	distinct := map[mgl32.Vec3]bool{}
	for i, v := range sp.vel {
		if math.Abs(float64(v.Len()-0.2)) > 1e-4 {
			t.Errorf("particle %d: speed %v, want 0.2", i, v.Len())
		}
		angle := math.Acos(math.Min(1, float64(v.Normalize().Dot(dir))))
		if angle > float64(spread)+1e-3 {
			t.Errorf("particle %d: angle %v outside cone %v", i, angle, spread)
		}
		distinct[sp.pos[i]] = true
	}
	if len(distinct) < 45 {
		t.Errorf("spawn positions should not coincide, got %d distinct", len(distinct))
	}
}

func TestEmitterSystem_StopsWhenFull(t *testing.T) {
	w := ecs.NewWorld()
	m := ecs.NewMap2[components.Transform, components.Emitter](w)
	m.NewEntity(&components.Transform{}, &components.Emitter{
		Rate: 4, Speed: 0.1, Dir: mgl32.Vec3{0, 0, 1}, Remaining: 10,
	})

	sys := NewEmitterSystem(w)
	sp := &fakeSpawner{capacity: 2}
	res, err := sys.Update(w, sp)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Spawned != 2 || res.Rejected != 1 {
		t.Errorf("expected 2 spawned and 1 rejected, got %+v", res)
	}

	// The refused particle is not charged against Remaining.
	sp.capacity = 100
	total := 2
	for i := 0; i < 5; i++ {
		res, _ = sys.Update(w, sp)
		total += res.Spawned
	}
	if total != 10 {
		t.Errorf("emitter spawned %d in total, want 10", total)
	}
}
