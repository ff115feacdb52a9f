// Package kernel is the single-owner boundary around the particle solver
// and the surface mesher. A Context holds every buffer; there is no
// package-level mutable state, so independent contexts can run on
// separate goroutines.
package kernel

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drops/config"
	"github.com/pthm-cable/drops/fluid"
	"github.com/pthm-cable/drops/surface"
)

// Options sizes a Context.
type Options struct {
	MaxParticles int
	MaxPairs     int
	HashShift    int
	CellCapacity int
	MaxMarked    int
	MaxVertices  int
	MaxTriangles int
	Lanes        int // 4 for batched passes, 1 for scalar
	Overflow     fluid.OverflowPolicy
	Logger       *slog.Logger
}

// DefaultOptions returns the stock capacities.
func DefaultOptions() Options {
	return Options{
		MaxParticles: 1 << 17,
		MaxPairs:     fluid.DefaultMaxPairs,
		HashShift:    fluid.DefaultHashShift,
		CellCapacity: fluid.DefaultCellCapacity,
		MaxMarked:    surface.Cells,
		MaxVertices:  surface.DefaultMaxVertices,
		MaxTriangles: surface.DefaultMaxTriangles,
		Lanes:        4,
		Overflow:     fluid.OverflowTruncate,
	}
}

// OptionsFromConfig maps the kernel section of a config.
func OptionsFromConfig(cfg *config.Config) Options {
	k := cfg.Kernel
	return Options{
		MaxParticles: k.MaxParticles,
		MaxPairs:     k.MaxPairs,
		HashShift:    k.HashShift,
		CellCapacity: k.CellCapacity,
		MaxMarked:    k.MaxMarked,
		MaxVertices:  k.MaxVertices,
		MaxTriangles: k.MaxTriangles,
		Lanes:        k.Lanes,
		Overflow:     cfg.Derived.Overflow,
	}
}

// Context owns the particle store, neighbor structures, solver and surface.
type Context struct {
	guard     *fluid.Guard
	particles *fluid.Particles
	pairs     *fluid.Pairs
	builder   *fluid.NeighborBuilder
	solver    *fluid.Solver
	surface   *surface.Surface
}

// New allocates a context. Zero capacities fall back to DefaultOptions.
func New(opts Options) *Context {
	def := DefaultOptions()
	if opts.MaxParticles <= 0 {
		opts.MaxParticles = def.MaxParticles
	}
	if opts.Lanes != 1 {
		opts.Lanes = 4
	}

	guard := fluid.NewGuard(opts.Overflow, opts.Logger)
	ps := fluid.NewParticles(opts.MaxParticles, guard)
	pairs := fluid.NewPairs(opts.MaxPairs, guard)
	grid := fluid.NewHashGrid(opts.HashShift, opts.CellCapacity, guard)

	return &Context{
		guard:     guard,
		particles: ps,
		pairs:     pairs,
		builder:   fluid.NewNeighborBuilder(grid, opts.Lanes),
		solver:    fluid.NewSolver(ps, pairs, opts.Lanes),
		surface: surface.New(surface.Options{
			MaxMarked:    opts.MaxMarked,
			MaxVertices:  opts.MaxVertices,
			MaxTriangles: opts.MaxTriangles,
			Guard:        guard,
		}),
	}
}

// Reset removes all particles and pairs.
func (c *Context) Reset() {
	c.particles.Reset()
	c.pairs.Reset()
}

// AddParticle appends a particle; fails with fluid.ErrParticleCapacity
// when full.
func (c *Context) AddParticle(pos, vel mgl32.Vec3) error {
	return c.particles.Add(pos, vel)
}

func (c *Context) Particles() *fluid.Particles { return c.particles }
func (c *Context) ParticleCount() int          { return c.particles.Count() }
func (c *Context) PairCount() int              { return c.pairs.Len() }

// RebuildNeighbors recomputes the pair list from current positions.
func (c *Context) RebuildNeighbors() {
	c.builder.Build(c.particles, c.pairs)
}

// BeginSubsteps divides velocities by n.
func (c *Context) BeginSubsteps(n int) { c.solver.PreStep(n) }

// RunSubstep runs one density and force pass over the current pairs.
func (c *Context) RunSubstep(k, k2, gamma, visc, restDensity float32) {
	c.solver.Substep(fluid.Coefficients{K: k, K2: k2, Gamma: gamma, C: visc, RestDensity: restDensity})
}

// EndSubsteps multiplies velocities back by n.
func (c *Context) EndSubsteps(n int) { c.solver.PostStep(n) }

// RebuildMesh regenerates the surface. With refreshDensity set, densities
// are first recomputed from the current pairs and positions.
func (c *Context) RebuildMesh(threshold, restDensity float32, refreshDensity bool) {
	if refreshDensity {
		c.solver.RefreshDensity()
	}
	px, py, pz := c.particles.Positions()
	c.surface.Rebuild(px, py, pz, c.particles.Densities(), restDensity, threshold)
}

func (c *Context) MeshVertexCount() int         { return c.surface.VertexCount() }
func (c *Context) MeshVertexBuffer() []float32  { return c.surface.VertexBuffer() }
func (c *Context) MeshTriangleCount() int       { return c.surface.TriangleCount() }
func (c *Context) MeshTriangleBuffer() []uint32 { return c.surface.TriangleBuffer() }

// Field exposes the weight grid of the last rebuild.
func (c *Context) Field() *surface.Field { return c.surface.Field() }

// CaseTable exposes the generated cube table.
func (c *Context) CaseTable() *surface.Table { return surface.CaseTable() }

// MeshStats reports area, volume and open edges of the current mesh.
func (c *Context) MeshStats() surface.Stats { return c.surface.Stats() }

// MeshTimings reports stage durations of the last mesh rebuild.
func (c *Context) MeshTimings() surface.Timings { return c.surface.LastTimings() }

// Overflows reports dropped items per capacity kind.
func (c *Context) Overflows() fluid.OverflowCounts { return c.guard.Overflows() }
