package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drops/camera"
	"github.com/pthm-cable/drops/components"
	"github.com/pthm-cable/drops/surface"
)

// Camera3D converts an orbit camera to a raylib camera.
func Camera3D(c *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   toRL(c.Eye()),
		Target:     toRL(c.Target),
		Up:         toRL(c.Up()),
		Fovy:       c.Fovy,
		Projection: rl.CameraPerspective,
	}
}

// DrawCollider outlines one collider.
func DrawCollider(pos mgl32.Vec3, col *components.Collider) {
	color := rl.Orange
	if col.Container {
		color = rl.Gray
	}
	switch col.Shape {
	case components.ShapeSphere:
		rl.DrawSphereWires(toRL(pos), col.Radius, 12, 16, color)
	case components.ShapeBox:
		h := col.HalfExtents
		rl.DrawCubeWires(toRL(pos), 2*h[0], 2*h[1], 2*h[2], color)
	}
}

// DrawMarkedCells draws a point for every grid point the rasterizer marked.
func DrawMarkedCells(f *surface.Field) {
	for _, idx := range f.Marked() {
		x, y, z := surface.GridPoint(surface.Coords(int(idx)))
		rl.DrawPoint3D(rl.Vector3{X: x, Y: y, Z: z}, rl.Lime)
	}
}
