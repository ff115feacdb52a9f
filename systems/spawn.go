// Package systems contains the host-side ECS systems that feed and move
// the particles owned by a kernel context.
package systems

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drops/fluid"
)

// Spawner accepts new particles. *kernel.Context satisfies it.
type Spawner interface {
	AddParticle(pos, vel mgl32.Vec3) error
}

// SpawnResult counts particles added and refused during one update.
type SpawnResult struct {
	Spawned  int
	Rejected int
}

func (r *SpawnResult) merge(o SpawnResult) {
	r.Spawned += o.Spawned
	r.Rejected += o.Rejected
}

// spawn adds one particle. full is true once the store refused a particle
// for lack of capacity; any other error is returned as is.
func spawn(sp Spawner, pos, vel mgl32.Vec3, res *SpawnResult) (full bool, err error) {
	if err := sp.AddParticle(pos, vel); err != nil {
		if errors.Is(err, fluid.ErrCapacity) {
			res.Rejected++
			return true, nil
		}
		return false, err
	}
	res.Spawned++
	return false, nil
}
