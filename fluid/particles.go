// Package fluid implements the particle side of the kernel: the particle
// store, the spatial hash used for neighbor search, the pair list and the
// pressure/viscosity solver that runs over it.
package fluid

import (
	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/blas/blas32"
)

// Geometry constants shared by the neighbor search, the solver and the
// rasterizer.
const (
	Interval    = 0.3                    // nominal particle spacing
	RadiusRatio = 2.1                    // interaction radius in units of Interval
	Radius      = Interval * RadiusRatio // interaction radius (RE)
	InvRadius   = 1 / Radius
	FattenScale = 1.1

	// FatRadius2 is the squared admission radius for pairs. Slightly larger
	// than Radius so pairs survive small motions between rebuilds.
	FatRadius2 = (Radius * FattenScale) * (Radius * FattenScale)

	// SentinelCoord places the padding particle far from everything.
	SentinelCoord = 1e9
)

// Particles is a struct-of-arrays particle store with a fixed capacity.
// Slices are sized capacity+1; the last live slot after Count() holds the
// sentinel used to pad 4-wide batches.
type Particles struct {
	PX, PY, PZ []float32
	VX, VY, VZ []float32
	NX, NY, NZ []float32 // smoothed normal sums
	D          []float32 // density
	P          []float32 // pressure

	n     int
	guard *Guard
}

// NewParticles allocates a store for up to capacity particles.
func NewParticles(capacity int, guard *Guard) *Particles {
	if capacity < 0 {
		capacity = 0
	}
	size := capacity + 1
	ps := &Particles{
		PX: make([]float32, size), PY: make([]float32, size), PZ: make([]float32, size),
		VX: make([]float32, size), VY: make([]float32, size), VZ: make([]float32, size),
		NX: make([]float32, size), NY: make([]float32, size), NZ: make([]float32, size),
		D:     make([]float32, size),
		P:     make([]float32, size),
		guard: guard,
	}
	ps.placeSentinel()
	return ps
}

// Reset drops all particles.
func (ps *Particles) Reset() {
	ps.n = 0
	ps.placeSentinel()
}

// Add appends a particle with zeroed normal, density and pressure.
func (ps *Particles) Add(pos, vel mgl32.Vec3) error {
	if ps.n >= ps.Capacity() {
		ps.guard.Report(OverflowParticles, ps.Capacity())
		return ErrParticleCapacity
	}
	i := ps.n
	ps.PX[i], ps.PY[i], ps.PZ[i] = pos[0], pos[1], pos[2]
	ps.VX[i], ps.VY[i], ps.VZ[i] = vel[0], vel[1], vel[2]
	ps.NX[i], ps.NY[i], ps.NZ[i] = 0, 0, 0
	ps.D[i] = 0
	ps.P[i] = 0
	ps.n++
	ps.placeSentinel()
	return nil
}

// Count returns the number of live particles.
func (ps *Particles) Count() int { return ps.n }

// Capacity returns the maximum number of particles.
func (ps *Particles) Capacity() int { return len(ps.PX) - 1 }

// Sentinel returns the index of the padding particle.
func (ps *Particles) Sentinel() int32 { return int32(ps.n) }

func (ps *Particles) Position(i int) mgl32.Vec3 {
	return mgl32.Vec3{ps.PX[i], ps.PY[i], ps.PZ[i]}
}

func (ps *Particles) Velocity(i int) mgl32.Vec3 {
	return mgl32.Vec3{ps.VX[i], ps.VY[i], ps.VZ[i]}
}

func (ps *Particles) Normal(i int) mgl32.Vec3 {
	return mgl32.Vec3{ps.NX[i], ps.NY[i], ps.NZ[i]}
}

func (ps *Particles) SetPosition(i int, p mgl32.Vec3) {
	ps.PX[i], ps.PY[i], ps.PZ[i] = p[0], p[1], p[2]
}

func (ps *Particles) SetVelocity(i int, v mgl32.Vec3) {
	ps.VX[i], ps.VY[i], ps.VZ[i] = v[0], v[1], v[2]
}

func (ps *Particles) Density(i int) float32  { return ps.D[i] }
func (ps *Particles) Pressure(i int) float32 { return ps.P[i] }

// Positions returns the live position arrays.
func (ps *Particles) Positions() (x, y, z []float32) {
	return ps.PX[:ps.n], ps.PY[:ps.n], ps.PZ[:ps.n]
}

// Velocities returns the live velocity arrays.
func (ps *Particles) Velocities() (x, y, z []float32) {
	return ps.VX[:ps.n], ps.VY[:ps.n], ps.VZ[:ps.n]
}

// Densities returns the live density array.
func (ps *Particles) Densities() []float32 { return ps.D[:ps.n] }

// placeSentinel parks the padding slot far away with zero velocity.
func (ps *Particles) placeSentinel() {
	s := ps.n
	ps.PX[s], ps.PY[s], ps.PZ[s] = SentinelCoord, SentinelCoord, SentinelCoord
	ps.VX[s], ps.VY[s], ps.VZ[s] = 0, 0, 0
	ps.NX[s], ps.NY[s], ps.NZ[s] = 0, 0, 0
	ps.D[s] = 0
	ps.P[s] = 0
}

// ScaleVelocities multiplies every live velocity by s.
func (ps *Particles) ScaleVelocities(s float32) {
	if ps.n == 0 {
		return
	}
	for _, data := range [][]float32{ps.VX, ps.VY, ps.VZ} {
		blas32.Scal(s, blas32.Vector{N: ps.n, Inc: 1, Data: data})
	}
}

// KineticEnergy returns 0.5*sum(|v|^2) over live particles (unit mass).
func (ps *Particles) KineticEnergy() float64 {
	if ps.n == 0 {
		return 0
	}
	var sum float32
	for _, data := range [][]float32{ps.VX, ps.VY, ps.VZ} {
		v := blas32.Vector{N: ps.n, Inc: 1, Data: data}
		sum += blas32.Dot(v, v)
	}
	return 0.5 * float64(sum)
}

// MeanDensity returns the average density of live particles.
// Densities are sums of squares, so Asum equals the plain sum.
func (ps *Particles) MeanDensity() float64 {
	if ps.n == 0 {
		return 0
	}
	sum := blas32.Asum(blas32.Vector{N: ps.n, Inc: 1, Data: ps.D})
	return float64(sum) / float64(ps.n)
}

// LatticeRestDensity is the density of an interior particle of a cubic
// lattice with spacing Interval.
func LatticeRestDensity() float32 {
	rr := float64(RadiusRatio)
	reach := int(rr) + 1
	var d float64
	for x := -reach; x <= reach; x++ {
		for y := -reach; y <= reach; y++ {
			for z := -reach; z <= reach; z++ {
				if x == 0 && y == 0 && z == 0 {
					continue
				}
				r := Interval * sqrt64(float64(x*x+y*y+z*z))
				w := 1 - r/Radius
				if w > 0 {
					d += w * w
				}
			}
		}
	}
	return float32(d)
}
