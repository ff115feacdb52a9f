package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drops/components"
)

// OrbitSystem moves orbiting obstacles on a horizontal circle.
type OrbitSystem struct {
	filter ecs.Filter2[components.Transform, components.Orbit]
}

// NewOrbitSystem creates a new orbit system.
func NewOrbitSystem(w *ecs.World) *OrbitSystem {
	return &OrbitSystem{
		filter: *ecs.NewFilter2[components.Transform, components.Orbit](w),
	}
}

// Update advances every orbit by one tick.
func (s *OrbitSystem) Update(w *ecs.World) {
	query := s.filter.Query()
	for query.Next() {
		tr, orb := query.Get()
		orb.Phase = normalizeHeading(orb.Phase + orb.Speed)
		tr.Pos = OrbitPosition(orb)
	}
}

// OrbitPosition returns the point on the orbit at the current phase.
func OrbitPosition(orb *components.Orbit) mgl32.Vec3 {
	sin, cos := sincos32(orb.Phase)
	return mgl32.Vec3{
		orb.Center[0] + cos*orb.Radius,
		orb.Center[1],
		orb.Center[2] + sin*orb.Radius,
	}
}
