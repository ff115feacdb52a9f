package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// BackgroundRenderer draws a vertical gradient behind the scene and a floor
// grid under the container.
type BackgroundRenderer struct {
	Top    rl.Color
	Bottom rl.Color
	Grid   rl.Color
}

// NewBackgroundRenderer creates a renderer with the given base color. The
// gradient runs from a lifted top to a darkened bottom.
func NewBackgroundRenderer(baseR, baseG, baseB uint8) *BackgroundRenderer {
	base := rl.Color{R: baseR, G: baseG, B: baseB, A: 255}
	return &BackgroundRenderer{
		Top:    Lerp(base, rl.Color{R: 90, G: 110, B: 130, A: 255}, 0.35),
		Bottom: Lerp(base, rl.Black, 0.5),
		Grid:   Lerp(base, rl.White, 0.15),
	}
}

// Lerp blends a toward b by t in [0, 1], rounding each channel.
func Lerp(a, b rl.Color, t float32) rl.Color {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	mix := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t + 0.5)
	}
	return rl.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// Draw fills the screen with the gradient. Call before BeginMode3D.
func (b *BackgroundRenderer) Draw(screenW, screenH int32) {
	rl.DrawRectangleGradientV(0, 0, screenW, screenH, b.Top, b.Bottom)
}

// DrawFloor draws a square grid of 2*half per side at height y, one line per
// spacing. Call inside BeginMode3D.
func (b *BackgroundRenderer) DrawFloor(cx, y, cz, half, spacing float32) {
	if spacing <= 0 || half <= 0 {
		return
	}
	n := int(half / spacing)
	for i := -n; i <= n; i++ {
		o := float32(i) * spacing
		rl.DrawLine3D(
			rl.Vector3{X: cx + o, Y: y, Z: cz - half},
			rl.Vector3{X: cx + o, Y: y, Z: cz + half},
			b.Grid,
		)
		rl.DrawLine3D(
			rl.Vector3{X: cx - half, Y: y, Z: cz + o},
			rl.Vector3{X: cx + half, Y: y, Z: cz + o},
			b.Grid,
		)
	}
}
