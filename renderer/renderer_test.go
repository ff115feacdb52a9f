package renderer

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drops/camera"
)

func TestShade(t *testing.T) {
	r := NewMeshRenderer()
	base := rl.Color{R: 200, G: 100, B: 50, A: 255}

	lit := r.Shade(r.LightDir, base)
	if lit != base {
		t.Errorf("normal facing the light should keep the base color, got %v", lit)
	}

	dark := r.Shade(r.LightDir.Mul(-1), base)
	want := rl.Color{R: 50, G: 25, B: 13, A: 255}
	if dark != want {
		t.Errorf("normal facing away should get ambient only: got %v, want %v", dark, want)
	}
}

func TestDensityColor(t *testing.T) {
	tests := []struct {
		name    string
		d, rest float32
		want    rl.Color
	}{
		{"at rest", 3, 3, rl.Color{R: 255, G: 255, B: 255, A: 255}},
		{"empty", 0, 3, rl.Color{R: 0, G: 0, B: 255, A: 255}},
		{"double", 6, 3, rl.Color{R: 255, G: 0, B: 0, A: 255}},
		{"beyond double", 12, 3, rl.Color{R: 255, G: 0, B: 0, A: 255}},
		{"no rest", 5, 0, rl.White},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DensityColor(tt.d, tt.rest); got != tt.want {
				t.Errorf("DensityColor(%v, %v) = %v, want %v", tt.d, tt.rest, got, tt.want)
			}
		})
	}
}

func TestCamera3D(t *testing.T) {
	c := camera.New(mgl32.Vec3{1, 2, 3}, 10)
	rc := Camera3D(c)

	if rc.Target != (rl.Vector3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("target = %v", rc.Target)
	}
	if rc.Up != (rl.Vector3{X: 0, Y: 1, Z: 0}) {
		t.Errorf("up = %v", rc.Up)
	}
	eye := c.Eye()
	if rc.Position != (rl.Vector3{X: eye[0], Y: eye[1], Z: eye[2]}) {
		t.Errorf("position = %v, want %v", rc.Position, eye)
	}
}

func TestLerp(t *testing.T) {
	a := rl.Color{R: 0, G: 100, B: 200, A: 255}
	b := rl.Color{R: 100, G: 100, B: 0, A: 255}

	tests := []struct {
		name string
		t    float32
		want rl.Color
	}{
		{"start", 0, a},
		{"end", 1, b},
		{"half", 0.5, rl.Color{R: 50, G: 100, B: 100, A: 255}},
		{"clamped low", -1, a},
		{"clamped high", 2, b},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lerp(a, b, tt.t); got != tt.want {
				t.Errorf("Lerp(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}
