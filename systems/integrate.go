package systems

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/drops/config"
	"github.com/pthm-cable/drops/fluid"
)

// Offsets decorrelate the three wind components sampled from one noise field.
const (
	windOffsetY = 17.3
	windOffsetZ = 41.9
)

// IntegrateSystem moves particles for the host. Drift advances positions
// once per solver substep; Update applies gravity and wind and clamps speed
// once per tick.
type IntegrateSystem struct {
	Gravity   float32
	MaxSpeed  float32
	WindScale float32
	WindFreq  float32
	WindSpeed float32

	noise opensimplex.Noise32
	time  float32
}

// NewIntegrateSystem creates an integrator from the host config section.
func NewIntegrateSystem(cfg config.HostConfig, seed int64) *IntegrateSystem {
	return &IntegrateSystem{
		Gravity:   float32(cfg.Gravity),
		MaxSpeed:  float32(cfg.MaxSpeed),
		WindScale: float32(cfg.WindScale),
		WindFreq:  float32(cfg.WindFreq),
		WindSpeed: float32(cfg.WindSpeed),
		noise:     opensimplex.New32(seed),
	}
}

// Wind returns the wind velocity increment at a point for the current time.
func (s *IntegrateSystem) Wind(x, y, z float32) (float32, float32, float32) {
	if s.WindScale == 0 {
		return 0, 0, 0
	}
	f := s.WindFreq
	wx := s.noise.Eval3(y*f, z*f, s.time)
	wy := s.noise.Eval3(z*f+windOffsetY, x*f, s.time)
	wz := s.noise.Eval3(x*f+windOffsetZ, y*f, s.time)
	return wx * s.WindScale, wy * s.WindScale, wz * s.WindScale
}

// Update applies wind and gravity to every velocity in ps and clamps speed.
// Positions are left to Drift.
func (s *IntegrateSystem) Update(ps *fluid.Particles) {
	n := ps.Count()
	maxSpeed2 := s.MaxSpeed * s.MaxSpeed

	for i := 0; i < n; i++ {
		wx, wy, wz := s.Wind(ps.PX[i], ps.PY[i], ps.PZ[i])
		vx := ps.VX[i] + wx
		vy := ps.VY[i] + wy - s.Gravity
		vz := ps.VZ[i] + wz

		if s.MaxSpeed > 0 {
			if sp2 := vx*vx + vy*vy + vz*vz; sp2 > maxSpeed2 {
				scale := s.MaxSpeed / sqrt32(sp2)
				vx *= scale
				vy *= scale
				vz *= scale
			}
		}

		ps.VX[i], ps.VY[i], ps.VZ[i] = vx, vy, vz
	}
	s.time += s.WindSpeed
}

// Drift adds each velocity to its position. Between BeginSubsteps and
// EndSubsteps velocities are per substep, so one Drift per substep covers
// a full tick and the solver sees the moved particles.
func (s *IntegrateSystem) Drift(ps *fluid.Particles) {
	px, py, pz := ps.Positions()
	vx, vy, vz := ps.Velocities()
	for i := range px {
		px[i] += vx[i]
		py[i] += vy[i]
		pz[i] += vz[i]
	}
}
