// Package camera provides an orbit camera for viewing the fluid volume.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits a target point at a given distance.
// Yaw rotates around the world Y axis, pitch tilts toward the poles.
type Camera struct {
	// Target is the point the camera looks at
	Target mgl32.Vec3

	// Yaw and Pitch in radians
	Yaw, Pitch float32

	// Distance from target
	Distance float32

	// Distance constraints
	MinDistance, MaxDistance float32

	// Field of view in degrees
	Fovy float32

	initial orbitState
}

// orbitState is the state restored by Reset.
type orbitState struct {
	Yaw, Pitch, Distance float32
}

// maxPitch keeps the camera off the poles so the up vector stays valid.
const maxPitch = 1.5

// New creates a camera looking at target from the given distance.
func New(target mgl32.Vec3, distance float32) *Camera {
	c := &Camera{
		Target:      target,
		Yaw:         0.6,
		Pitch:       0.35,
		Distance:    distance,
		MinDistance: 1,
		MaxDistance: 60,
		Fovy:        45,
	}
	c.initial = orbitState{Yaw: c.Yaw, Pitch: c.Pitch, Distance: c.Distance}
	return c
}

// Eye returns the camera position in world coordinates.
func (c *Camera) Eye() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	offset := mgl32.Vec3{
		cp * float32(math.Sin(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
		cp * float32(math.Cos(float64(c.Yaw))),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

// Forward returns the unit view direction.
func (c *Camera) Forward() mgl32.Vec3 {
	return c.Target.Sub(c.Eye()).Normalize()
}

// Up is the world up vector.
func (c *Camera) Up() mgl32.Vec3 { return mgl32.Vec3{0, 1, 0} }

// Orbit rotates the camera around the target.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw = wrapAngle(c.Yaw + dYaw)
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// SetDistance sets the distance, clamped to min/max.
func (c *Camera) SetDistance(d float32) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy multiplies the current distance by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetDistance(c.Distance * factor)
}

// Reset returns the camera to its initial orientation and distance.
func (c *Camera) Reset() {
	c.Yaw = c.initial.Yaw
	c.Pitch = c.initial.Pitch
	c.Distance = c.initial.Distance
}

// wrapAngle maps an angle into [-pi, pi).
func wrapAngle(a float32) float32 {
	r := math.Mod(float64(a)+math.Pi, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	w := float32(r - math.Pi)
	if w >= math.Pi {
		w -= 2 * math.Pi
	}
	return w
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
