package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drops/components"
	"github.com/pthm-cable/drops/fluid"
)

// placedCollider is a collider snapshot taken at the start of an update.
type placedCollider struct {
	pos mgl32.Vec3
	col components.Collider
}

// CollideSystem keeps particles out of solid colliders and inside containers.
type CollideSystem struct {
	filter    ecs.Filter2[components.Transform, components.Collider]
	colliders []placedCollider
}

// NewCollideSystem creates a new collision system.
func NewCollideSystem(w *ecs.World) *CollideSystem {
	return &CollideSystem{
		filter: *ecs.NewFilter2[components.Transform, components.Collider](w),
	}
}

// Update resolves every particle against every collider and returns the
// number of contacts.
func (s *CollideSystem) Update(w *ecs.World, ps *fluid.Particles) int {
	s.colliders = s.colliders[:0]
	query := s.filter.Query()
	for query.Next() {
		tr, col := query.Get()
		s.colliders = append(s.colliders, placedCollider{pos: tr.Pos, col: *col})
	}

	contacts := 0
	n := ps.Count()
	for i := 0; i < n; i++ {
		p := mgl32.Vec3{ps.PX[i], ps.PY[i], ps.PZ[i]}
		v := mgl32.Vec3{ps.VX[i], ps.VY[i], ps.VZ[i]}
		hit := false
		for c := range s.colliders {
			if Resolve(&s.colliders[c].col, s.colliders[c].pos, &p, &v) {
				hit = true
			}
		}
		if hit {
			contacts++
			ps.PX[i], ps.PY[i], ps.PZ[i] = p[0], p[1], p[2]
			ps.VX[i], ps.VY[i], ps.VZ[i] = v[0], v[1], v[2]
		}
	}
	return contacts
}

// Resolve moves p onto the allowed side of one collider and reflects the
// inward velocity component with the collider's restitution. It reports
// whether p was moved.
func Resolve(col *components.Collider, center mgl32.Vec3, p, v *mgl32.Vec3) bool {
	switch {
	case col.Shape == components.ShapeSphere && col.Container:
		return sphereInside(center, col.Radius, col.Restitution, p, v)
	case col.Shape == components.ShapeSphere:
		return sphereOutside(center, col.Radius, col.Restitution, p, v)
	case col.Container:
		return boxInside(center, col.HalfExtents, col.Restitution, p, v)
	default:
		return boxOutside(center, col.HalfExtents, col.Restitution, p, v)
	}
}

// reflect removes the component of v along n that points against n and
// returns it scaled by restitution.
func reflect(v *mgl32.Vec3, n mgl32.Vec3, restitution float32) {
	vn := v.Dot(n)
	if vn < 0 {
		*v = v.Sub(n.Mul((1 + restitution) * vn))
	}
}

func sphereOutside(c mgl32.Vec3, r, e float32, p, v *mgl32.Vec3) bool {
	d := p.Sub(c)
	dist2 := d.LenSqr()
	if dist2 >= r*r {
		return false
	}
	n := mgl32.Vec3{0, 1, 0}
	if dist2 > 0 {
		n = d.Mul(1 / sqrt32(dist2))
	}
	*p = c.Add(n.Mul(r))
	reflect(v, n, e)
	return true
}

func sphereInside(c mgl32.Vec3, r, e float32, p, v *mgl32.Vec3) bool {
	d := p.Sub(c)
	dist2 := d.LenSqr()
	if dist2 <= r*r {
		return false
	}
	n := d.Mul(-1 / sqrt32(dist2))
	*p = c.Sub(n.Mul(r))
	reflect(v, n, e)
	return true
}

func boxInside(c, half mgl32.Vec3, e float32, p, v *mgl32.Vec3) bool {
	moved := false
	for a := 0; a < 3; a++ {
		lo, hi := c[a]-half[a], c[a]+half[a]
		switch {
		case p[a] < lo:
			p[a] = lo
			if v[a] < 0 {
				v[a] = -v[a] * e
			}
			moved = true
		case p[a] > hi:
			p[a] = hi
			if v[a] > 0 {
				v[a] = -v[a] * e
			}
			moved = true
		}
	}
	return moved
}

// boxOutside pushes p out through the face with the smallest penetration.
func boxOutside(c, half mgl32.Vec3, e float32, p, v *mgl32.Vec3) bool {
	axis, depth, sign := -1, float32(0), float32(0)
	for a := 0; a < 3; a++ {
		d := p[a] - c[a]
		if abs32(d) >= half[a] {
			return false
		}
		pen := half[a] - abs32(d)
		if axis < 0 || pen < depth {
			axis, depth = a, pen
			sign = 1
			if d < 0 {
				sign = -1
			}
		}
	}
	p[axis] = c[axis] + sign*half[axis]
	var n mgl32.Vec3
	n[axis] = sign
	reflect(v, n, e)
	return true
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
