package surface

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/drops/fluid"
)

// VertexStride is the number of floats per exported vertex: x y z nx ny nz.
const VertexStride = 6

// Options sizes the surface buffers.
type Options struct {
	MaxMarked    int
	MaxVertices  int
	MaxTriangles int
	Guard        *fluid.Guard
}

// Timings records the duration of each rebuild stage.
type Timings struct {
	Raster  time.Duration
	Extract time.Duration
	Smooth  time.Duration
}

// Surface owns the field, extractor, smoother and output buffers.
type Surface struct {
	field    *Field
	ext      *Extractor
	smoother *Smoother
	mesh     *Mesh
	vbuf     []float32
	timings  Timings
}

// New allocates a surface.
func New(opts Options) *Surface {
	if opts.MaxVertices <= 0 {
		opts.MaxVertices = DefaultMaxVertices
	}
	if opts.MaxTriangles <= 0 {
		opts.MaxTriangles = DefaultMaxTriangles
	}
	return &Surface{
		field:    NewField(opts.MaxMarked, opts.Guard),
		ext:      NewExtractor(opts.Guard),
		smoother: NewSmoother(opts.MaxVertices),
		mesh:     NewMesh(opts.MaxVertices, opts.MaxTriangles),
		vbuf:     make([]float32, 0, VertexStride*opts.MaxVertices),
	}
}

// Field returns the density field.
func (s *Surface) Field() *Field { return s.field }

// Mesh returns the current mesh.
func (s *Surface) Mesh() *Mesh { return s.mesh }

// LastTimings returns the stage durations of the last rebuild.
func (s *Surface) LastTimings() Timings { return s.timings }

// Rebuild rasterizes particles and regenerates the mesh.
func (s *Surface) Rebuild(px, py, pz, d []float32, restDensity, threshold float32) {
	start := time.Now()
	s.field.Clear()
	s.field.Splat(px, py, pz, d, restDensity, threshold)
	s.field.Dilate()
	s.timings.Raster = time.Since(start)
	s.polygonize(threshold)
}

// Polygonize regenerates the mesh from the field as it stands. Used with
// fields built through Set and MarkAbove.
func (s *Surface) Polygonize(threshold float32) {
	s.timings.Raster = 0
	s.field.Dilate()
	s.polygonize(threshold)
}

func (s *Surface) polygonize(threshold float32) {
	start := time.Now()
	s.ext.Extract(s.field, threshold, s.mesh)
	s.timings.Extract = time.Since(start)

	start = time.Now()
	s.smoother.Smooth(s.mesh)
	s.export()
	s.timings.Smooth = time.Since(start)
}

func (s *Surface) export() {
	m := s.mesh
	s.vbuf = s.vbuf[:0]
	for i, p := range m.Positions {
		nrm := m.Normals[i]
		s.vbuf = append(s.vbuf, p[0], p[1], p[2], nrm[0], nrm[1], nrm[2])
	}
}

// VertexCount returns the number of exported vertices.
func (s *Surface) VertexCount() int { return s.mesh.VertexCount() }

// VertexBuffer returns VertexStride floats per vertex.
func (s *Surface) VertexBuffer() []float32 { return s.vbuf }

// TriangleCount returns the number of exported triangles.
func (s *Surface) TriangleCount() int { return s.mesh.TriangleCount() }

// TriangleBuffer returns three vertex indices per triangle.
func (s *Surface) TriangleBuffer() []uint32 { return s.mesh.Indices }

// Stats summarizes mesh geometry.
type Stats struct {
	Area          float64
	Volume        float64 // signed, positive for outward winding
	BoundaryEdges int     // edges not shared by exactly two triangles
}

// MeshStats computes area, enclosed volume and open edges of m.
func MeshStats(m *Mesh) Stats {
	var st Stats
	edges := make(map[[2]uint32]int, len(m.Indices))
	vec := func(i uint32) r3.Vec {
		p := m.Positions[i]
		return r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
	}
	for t := 0; t < m.TriangleCount(); t++ {
		a, b, c := m.Triangle(t)
		pa, pb, pc := vec(a), vec(b), vec(c)
		st.Area += 0.5 * r3.Norm(r3.Cross(r3.Sub(pb, pa), r3.Sub(pc, pa)))
		st.Volume += r3.Dot(pa, r3.Cross(pb, pc)) / 6

		for _, e := range [3][2]uint32{{a, b}, {b, c}, {c, a}} {
			if e[0] > e[1] {
				e[0], e[1] = e[1], e[0]
			}
			edges[e]++
		}
	}
	for _, n := range edges {
		if n != 2 {
			st.BoundaryEdges++
		}
	}
	return st
}

// Stats computes MeshStats for the current mesh.
func (s *Surface) Stats() Stats { return MeshStats(s.mesh) }
