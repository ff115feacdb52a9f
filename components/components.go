// Package components defines ECS components for the host scene.
package components

import "github.com/go-gl/mathgl/mgl32"

// Shape selects the collider geometry.
type Shape uint8

const (
	ShapeSphere Shape = iota
	ShapeBox
)

// ParseShape maps a config name to a Shape.
func ParseShape(name string) (Shape, bool) {
	switch name {
	case "sphere":
		return ShapeSphere, true
	case "box":
		return ShapeBox, true
	}
	return ShapeSphere, false
}

func (s Shape) String() string {
	if s == ShapeBox {
		return "box"
	}
	return "sphere"
}

// Transform is an entity's world position.
type Transform struct {
	Pos mgl32.Vec3
}

// Emitter spawns particles every tick in a cone around Dir.
type Emitter struct {
	Rate      int        // particles per tick
	Speed     float32    // initial speed per tick
	Spread    float32    // cone half-angle (radians)
	Dir       mgl32.Vec3 // unit direction
	Remaining int        // particles left; negative = unlimited

	accum int // spawn sequence, advances the cone pattern
}

// Next returns the current spawn sequence number and advances it.
func (e *Emitter) Next() int {
	n := e.accum
	e.accum++
	return n
}

// Exhausted reports whether the emitter has no particles left.
func (e *Emitter) Exhausted() bool {
	return e.Remaining == 0
}

// Fill is a lattice block spawned once around the entity's Transform.
type Fill struct {
	HalfExtents mgl32.Vec3
	Jitter      float32 // max random offset per axis
	Seed        int64
}

// Collider pushes particles out of a solid, or keeps them inside a container.
type Collider struct {
	Shape       Shape
	HalfExtents mgl32.Vec3 // box
	Radius      float32    // sphere
	Container   bool       // particles live inside instead of outside
	Restitution float32    // fraction of normal speed kept on reflection
}

// Orbit moves an entity on a horizontal circle around Center.
type Orbit struct {
	Center mgl32.Vec3
	Radius float32
	Speed  float32 // radians per tick
	Phase  float32 // current angle (radians)
}
