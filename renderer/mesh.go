// Package renderer draws the fluid scene with raylib: the isosurface mesh,
// particles, collider outlines and debug overlays.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drops/surface"
)

// MeshRenderer draws the exported surface buffers as lit triangles.
type MeshRenderer struct {
	Base     rl.Color
	Back     rl.Color
	Wire     rl.Color
	LightDir mgl32.Vec3 // direction toward the light, unit length
	Ambient  float32
}

// NewMeshRenderer creates a renderer with a water-blue palette.
func NewMeshRenderer() *MeshRenderer {
	return &MeshRenderer{
		Base:     rl.Color{R: 60, G: 140, B: 220, A: 255},
		Back:     rl.Color{R: 30, G: 60, B: 110, A: 255},
		Wire:     rl.Color{R: 150, G: 210, B: 255, A: 255},
		LightDir: mgl32.Vec3{0.4, 0.8, 0.45}.Normalize(),
		Ambient:  0.25,
	}
}

// Shade returns base scaled by a Lambert term for normal n.
func (r *MeshRenderer) Shade(n mgl32.Vec3, base rl.Color) rl.Color {
	lambert := n.Dot(r.LightDir)
	if lambert < 0 {
		lambert = 0
	}
	k := r.Ambient + (1-r.Ambient)*lambert
	return rl.Color{
		R: uint8(float32(base.R)*k + 0.5),
		G: uint8(float32(base.G)*k + 0.5),
		B: uint8(float32(base.B)*k + 0.5),
		A: base.A,
	}
}

func vertexAt(vbuf []float32, i uint32) (pos, nrm mgl32.Vec3) {
	o := int(i) * surface.VertexStride
	return mgl32.Vec3{vbuf[o], vbuf[o+1], vbuf[o+2]}, mgl32.Vec3{vbuf[o+3], vbuf[o+4], vbuf[o+5]}
}

// Draw renders triCount triangles from interleaved vertex and index buffers.
// Each triangle is drawn in both windings so the back side is visible.
func (r *MeshRenderer) Draw(vbuf []float32, ibuf []uint32, triCount int) {
	for t := 0; t < triCount; t++ {
		a, na := vertexAt(vbuf, ibuf[3*t])
		b, nb := vertexAt(vbuf, ibuf[3*t+1])
		c, nc := vertexAt(vbuf, ibuf[3*t+2])

		n := na.Add(nb).Add(nc)
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}

		va, vb, vc := toRL(a), toRL(b), toRL(c)
		rl.DrawTriangle3D(va, vb, vc, r.Shade(n, r.Base))
		rl.DrawTriangle3D(va, vc, vb, r.Shade(n.Mul(-1), r.Back))
	}
}

// DrawWireframe renders triangle edges only.
func (r *MeshRenderer) DrawWireframe(vbuf []float32, ibuf []uint32, triCount int) {
	for t := 0; t < triCount; t++ {
		a, _ := vertexAt(vbuf, ibuf[3*t])
		b, _ := vertexAt(vbuf, ibuf[3*t+1])
		c, _ := vertexAt(vbuf, ibuf[3*t+2])
		va, vb, vc := toRL(a), toRL(b), toRL(c)
		rl.DrawLine3D(va, vb, r.Wire)
		rl.DrawLine3D(vb, vc, r.Wire)
		rl.DrawLine3D(vc, va, r.Wire)
	}
}

// DrawNormals renders each vertex normal as a short line.
func (r *MeshRenderer) DrawNormals(vbuf []float32, vertCount int, length float32) {
	for i := 0; i < vertCount; i++ {
		p, n := vertexAt(vbuf, uint32(i))
		rl.DrawLine3D(toRL(p), toRL(p.Add(n.Mul(length))), rl.Yellow)
	}
}

func toRL(v mgl32.Vec3) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}
