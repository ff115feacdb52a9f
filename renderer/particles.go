package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drops/fluid"
)

// ParticleRenderer draws particles as small cubes colored by density.
type ParticleRenderer struct {
	Size float32
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{Size: fluid.Interval * 0.3}
}

// DensityColor maps density relative to rest onto blue (sparse), white
// (rest) and red (compressed).
func DensityColor(d, rest float32) rl.Color {
	if rest <= 0 {
		return rl.White
	}
	t := d/rest - 1
	if t < -1 {
		t = -1
	}
	if t > 1 {
		t = 1
	}
	if t < 0 {
		k := uint8(255 * (1 + t))
		return rl.Color{R: k, G: k, B: 255, A: 255}
	}
	k := uint8(255 * (1 - t))
	return rl.Color{R: 255, G: k, B: k, A: 255}
}

// Draw renders all live particles.
func (r *ParticleRenderer) Draw(ps *fluid.Particles, rest float32) {
	px, py, pz := ps.Positions()
	d := ps.Densities()
	for i := range px {
		rl.DrawCube(rl.Vector3{X: px[i], Y: py[i], Z: pz[i]}, r.Size, r.Size, r.Size, DensityColor(d[i], rest))
	}
}
