package game

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drops/components"
	"github.com/pthm-cable/drops/config"
	"github.com/pthm-cable/drops/systems"
)

// defaultEmitDir is used when an emitter has no direction.
var defaultEmitDir = mgl32.Vec3{0, -1, 0}

// spawnScene creates the container, fills, emitters and obstacles from the config.
func (g *Game) spawnScene(fills bool) {
	sc := g.cfg.Scene
	restitution := float32(g.cfg.Host.Restitution)

	ct := sc.Container
	ctRest := float32(ct.Restitution)
	if ctRest == 0 {
		ctRest = restitution
	}
	g.colliderMapper.NewEntity(
		&components.Transform{Pos: ct.Center.Vec()},
		&components.Collider{
			Shape:       components.ShapeBox,
			HalfExtents: ct.HalfExtents.Vec(),
			Container:   true,
			Restitution: ctRest,
		},
	)

	for i, f := range sc.Fills {
		if !fills {
			break
		}
		g.fillMapper.NewEntity(
			&components.Transform{Pos: f.Center.Vec()},
			&components.Fill{
				HalfExtents: f.HalfExtents.Vec(),
				Jitter:      float32(f.Jitter),
				Seed:        g.seed + int64(i),
			},
		)
	}

	for _, e := range sc.Emitters {
		g.emitterMapper.NewEntity(
			&components.Transform{Pos: e.Position.Vec()},
			newEmitter(e),
		)
	}

	for _, o := range sc.Obstacles {
		shape, _ := components.ParseShape(o.Shape)
		col := &components.Collider{
			Shape:       shape,
			HalfExtents: o.HalfExtents.Vec(),
			Radius:      float32(o.Radius),
			Restitution: restitution,
		}
		if o.OrbitRadius > 0 {
			orb := &components.Orbit{
				Center: o.Position.Vec(),
				Radius: float32(o.OrbitRadius),
				Speed:  float32(o.OrbitSpeed),
			}
			g.orbitMapper.NewEntity(&components.Transform{Pos: systems.OrbitPosition(orb)}, col, orb)
			continue
		}
		g.colliderMapper.NewEntity(&components.Transform{Pos: o.Position.Vec()}, col)
	}
}

func newEmitter(e config.EmitterConfig) *components.Emitter {
	dir := e.Dir.Vec()
	if dir.Len() == 0 {
		dir = defaultEmitDir
	}
	remaining := e.Total
	if remaining <= 0 {
		remaining = -1
	}
	return &components.Emitter{
		Rate:      e.Rate,
		Speed:     float32(e.Speed),
		Spread:    float32(e.Spread),
		Dir:       dir.Normalize(),
		Remaining: remaining,
	}
}
