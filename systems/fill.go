package systems

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drops/components"
	"github.com/pthm-cable/drops/fluid"
)

// FillSystem spawns a lattice block for each Fill entity once, then removes
// the Fill component so the block is never spawned twice.
type FillSystem struct {
	filter  ecs.Filter2[components.Transform, components.Fill]
	fillMap *ecs.Map[components.Fill]
	done    []ecs.Entity
}

// NewFillSystem creates a new fill system.
func NewFillSystem(w *ecs.World) *FillSystem {
	return &FillSystem{
		filter:  *ecs.NewFilter2[components.Transform, components.Fill](w),
		fillMap: ecs.NewMap[components.Fill](w),
	}
}

// Update spawns pending blocks into sp.
func (s *FillSystem) Update(w *ecs.World, sp Spawner) (SpawnResult, error) {
	var res SpawnResult
	s.done = s.done[:0]

	query := s.filter.Query()
	for query.Next() {
		tr, fill := query.Get()
		s.done = append(s.done, query.Entity())

		r, err := spawnBlock(sp, tr.Pos, fill)
		res.merge(r)
		if err != nil {
			query.Close()
			return res, err
		}
	}

	// Structural changes are not allowed while the query holds the world.
	for _, e := range s.done {
		s.fillMap.Remove(e)
	}
	return res, nil
}

// LatticeDims returns the number of lattice points per axis for a block.
func LatticeDims(halfExtents mgl32.Vec3) [3]int {
	var dims [3]int
	for a := 0; a < 3; a++ {
		n := int(2*halfExtents[a]/fluid.Interval + 1e-3)
		if n < 1 {
			n = 1
		}
		dims[a] = n
	}
	return dims
}

func spawnBlock(sp Spawner, center mgl32.Vec3, fill *components.Fill) (SpawnResult, error) {
	var res SpawnResult
	dims := LatticeDims(fill.HalfExtents)
	total := dims[0] * dims[1] * dims[2]

	var origin mgl32.Vec3
	for a := 0; a < 3; a++ {
		origin[a] = center[a] - float32(dims[a]-1)*0.5*fluid.Interval
	}

	rng := rand.New(rand.NewSource(fill.Seed))
	jitter := func() float32 {
		if fill.Jitter <= 0 {
			return 0
		}
		return (rng.Float32()*2 - 1) * fill.Jitter
	}

	i := 0
	for z := 0; z < dims[2]; z++ {
		for y := 0; y < dims[1]; y++ {
			for x := 0; x < dims[0]; x++ {
				pos := mgl32.Vec3{
					origin[0] + float32(x)*fluid.Interval + jitter(),
					origin[1] + float32(y)*fluid.Interval + jitter(),
					origin[2] + float32(z)*fluid.Interval + jitter(),
				}
				i++
				full, err := spawn(sp, pos, mgl32.Vec3{}, &res)
				if err != nil {
					return res, err
				}
				if full {
					res.Rejected += total - i
					return res, nil
				}
			}
		}
	}
	return res, nil
}
