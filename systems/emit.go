package systems

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drops/components"
	"github.com/pthm-cable/drops/fluid"
)

// goldenAngle spreads successive spawns evenly around the cone axis.
const goldenAngle = 2.39996323

// EmitterSystem spawns particles from Emitter entities every tick.
type EmitterSystem struct {
	filter ecs.Filter2[components.Transform, components.Emitter]
}

// NewEmitterSystem creates a new emitter system.
func NewEmitterSystem(w *ecs.World) *EmitterSystem {
	return &EmitterSystem{
		filter: *ecs.NewFilter2[components.Transform, components.Emitter](w),
	}
}

// Update spawns Rate particles per emitter. An emitter stops for the tick
// as soon as the kernel refuses a particle.
func (s *EmitterSystem) Update(w *ecs.World, sp Spawner) (SpawnResult, error) {
	var res SpawnResult

	query := s.filter.Query()
	for query.Next() {
		tr, em := query.Get()
		if em.Exhausted() || em.Rate <= 0 {
			continue
		}

		b1, b2 := coneBasis(em.Dir)
		for r := 0; r < em.Rate && !em.Exhausted(); r++ {
			pos, vel := coneSample(tr.Pos, em, b1, b2, em.Next())
			full, err := spawn(sp, pos, vel, &res)
			if err != nil {
				query.Close()
				return res, err
			}
			if full {
				break
			}
			if em.Remaining > 0 {
				em.Remaining--
			}
		}
	}
	return res, nil
}

// coneBasis returns two unit vectors orthogonal to dir and to each other.
func coneBasis(dir mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	ref := mgl32.Vec3{0, 1, 0}
	if math.Abs(float64(dir.Dot(ref))) > 0.9*float64(dir.Len()) {
		ref = mgl32.Vec3{1, 0, 0}
	}
	b1 := dir.Cross(ref).Normalize()
	b2 := dir.Cross(b1).Normalize()
	return b1, b2
}

// coneSample places spawn n on a sunflower pattern: the angle off the axis
// grows with sqrt of the sequence fraction, the azimuth by the golden angle.
func coneSample(origin mgl32.Vec3, em *components.Emitter, b1, b2 mgl32.Vec3, n int) (mgl32.Vec3, mgl32.Vec3) {
	dir := em.Dir.Normalize()
	frac := float32(math.Mod(float64(n)*0.6180339887, 1))
	radial := sqrt32(frac)

	sinPhi, cosPhi := sincos32(float32(n) * goldenAngle)
	side := b1.Mul(cosPhi).Add(b2.Mul(sinPhi))

	sinT, cosT := sincos32(em.Spread * radial)
	v := dir.Mul(cosT).Add(side.Mul(sinT)).Mul(em.Speed)

	// Offset across the nozzle so consecutive particles do not coincide.
	pos := origin.Add(side.Mul(radial * 0.5 * fluid.Interval))
	return pos, v
}
