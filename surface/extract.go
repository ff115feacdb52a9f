package surface

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drops/fluid"
)

// Default mesh capacities.
const (
	DefaultMaxVertices  = 65536
	DefaultMaxTriangles = 65536
)

// Mesh is an indexed triangle mesh with fixed capacity.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32 // three per triangle

	maxVerts int
	maxTris  int
}

// NewMesh allocates a mesh with the given capacities.
func NewMesh(maxVerts, maxTris int) *Mesh {
	if maxVerts <= 0 {
		maxVerts = DefaultMaxVertices
	}
	if maxTris <= 0 {
		maxTris = DefaultMaxTriangles
	}
	return &Mesh{
		Positions: make([]mgl32.Vec3, 0, maxVerts),
		Normals:   make([]mgl32.Vec3, 0, maxVerts),
		Indices:   make([]uint32, 0, 3*maxTris),
		maxVerts:  maxVerts,
		maxTris:   maxTris,
	}
}

// Reset empties the mesh.
func (m *Mesh) Reset() {
	m.Positions = m.Positions[:0]
	m.Normals = m.Normals[:0]
	m.Indices = m.Indices[:0]
}

func (m *Mesh) VertexCount() int   { return len(m.Positions) }
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Triangle returns the vertex indices of triangle t.
func (m *Mesh) Triangle(t int) (a, b, c uint32) {
	return m.Indices[3*t], m.Indices[3*t+1], m.Indices[3*t+2]
}

// Extractor walks marked voxels and emits triangles from the cube table.
// Vertices on shared grid edges are created once.
type Extractor struct {
	table        *Table
	edgeToVertex []int32 // dir<<18 | idx1
	used         []int32 // keys set during the last extraction
	guard        *fluid.Guard
}

// NewExtractor creates an extractor using the generated cube table.
func NewExtractor(guard *fluid.Guard) *Extractor {
	e := &Extractor{
		table:        CaseTable(),
		edgeToVertex: make([]int32, 3*Cells),
		guard:        guard,
	}
	for i := range e.edgeToVertex {
		e.edgeToVertex[i] = -1
	}
	return e
}

func (e *Extractor) resetEdges() {
	for _, k := range e.used {
		e.edgeToVertex[k] = -1
	}
	e.used = e.used[:0]
}

// CornerCode returns the cube code of the cube whose lowest corner is
// (x, y, z). Bit c is set when corner c lies below threshold.
func CornerCode(f *Field, x, y, z int, threshold float32) uint8 {
	var code uint8
	for c := 0; c < 8; c++ {
		cx, cy, cz := cornerXYZ(c)
		if f.At(x+cx, y+cy, z+cz) < threshold {
			code |= 1 << c
		}
	}
	return code
}

// Extract fills m from the marked voxels of f. Cubes touching the high
// boundary are skipped. Extraction stops at the first triangle that does
// not fit.
func (e *Extractor) Extract(f *Field, threshold float32, m *Mesh) {
	e.resetEdges()
	m.Reset()

	for _, idx := range f.marked {
		x, y, z := Coords(int(idx))
		if x == Mask || y == Mask || z == Mask {
			continue
		}
		code := CornerCode(f, x, y, z, threshold)
		if code == 0 || code == 0xff {
			continue
		}
		cs := &e.table[code]
		for t := 0; t < int(cs.Count); t++ {
			if m.TriangleCount() >= m.maxTris {
				e.guard.Report(fluid.OverflowTriangles, m.maxTris)
				return
			}
			if m.VertexCount()+3 > m.maxVerts {
				e.guard.Report(fluid.OverflowVertices, m.maxVerts)
				return
			}
			for k := 0; k < 3; k++ {
				m.Indices = append(m.Indices, e.edgeVertex(f, x, y, z, cs.Edges[3*t+k], threshold, m))
			}
		}
	}
}

// edgeVertex returns the vertex on an encoded cube edge, creating it on
// first use.
func (e *Extractor) edgeVertex(f *Field, x, y, z int, code uint8, threshold float32, m *Mesh) uint32 {
	ax, ay, az, bx, by, bz := EdgeEndpoints(code)
	x1, y1, z1 := x+ax, y+ay, z+az
	x2, y2, z2 := x+bx, y+by, z+bz

	dir := 0
	if y1 != y2 {
		dir = 1
	} else if z1 != z2 {
		dir = 2
	}
	i1 := Index(x1, y1, z1)
	key := int32(dir<<(3*Shift) | i1)
	if v := e.edgeToVertex[key]; v >= 0 {
		return uint32(v)
	}

	w1 := f.weights[i1]
	w2 := f.weights[Index(x2, y2, z2)]
	t := (threshold - w1) / (w2 - w1)
	p1x, p1y, p1z := GridPoint(x1, y1, z1)
	p2x, p2y, p2z := GridPoint(x2, y2, z2)
	p := mgl32.Vec3{
		p1x + (p2x-p1x)*t,
		p1y + (p2y-p1y)*t,
		p1z + (p2z-p1z)*t,
	}

	v := int32(len(m.Positions))
	m.Positions = append(m.Positions, p)
	e.edgeToVertex[key] = v
	e.used = append(e.used, key)
	return uint32(v)
}
