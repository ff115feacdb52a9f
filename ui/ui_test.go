package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drops/config"
)

func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()

	if !reg.IsEnabled(OverlayMesh) || !reg.IsEnabled(OverlayColliders) {
		t.Error("mesh and colliders should start enabled")
	}
	if reg.IsEnabled(OverlayParticles) || reg.IsEnabled(OverlayWireframe) {
		t.Error("particles and wireframe should start disabled")
	}
}

func TestOverlayExclusive(t *testing.T) {
	reg := NewOverlayRegistry()

	id, state, ok := reg.HandleKeyPress(rl.KeyW)
	if !ok || id != OverlayWireframe || !state {
		t.Fatalf("W should enable wireframe, got %q %v %v", id, state, ok)
	}
	if reg.IsEnabled(OverlayMesh) {
		t.Error("wireframe should disable the shaded mesh")
	}

	reg.SetEnabled(OverlayMesh, true)
	if reg.IsEnabled(OverlayWireframe) {
		t.Error("mesh should disable wireframe")
	}

	if _, _, ok := reg.HandleKeyPress(rl.KeyF12); ok {
		t.Error("unbound key should not toggle anything")
	}
}

func TestOverlayCategories(t *testing.T) {
	reg := NewOverlayRegistry()
	cats := reg.Categories()
	want := []string{"surface", "scene", "debug"}
	if len(cats) != len(want) {
		t.Fatalf("categories = %v, want %v", cats, want)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("category %d = %q, want %q", i, cats[i], want[i])
		}
	}
	if n := len(reg.ByCategory("debug")); n != 2 {
		t.Errorf("debug overlays = %d, want 2", n)
	}
}

func TestParamsClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Params
		want Params
	}{
		{
			name: "in range untouched",
			in:   Params{Threshold: 0.7, Substeps: 4, K: 0.04, K2: 0.1, Gamma: 0.03, Viscosity: 0.05},
			want: Params{Threshold: 0.7, Substeps: 4, K: 0.04, K2: 0.1, Gamma: 0.03, Viscosity: 0.05},
		},
		{
			name: "below range",
			in:   Params{Threshold: 0, Substeps: 0, K: -1, K2: -1, Gamma: -1, Viscosity: -1},
			want: Params{Threshold: 0.05, Substeps: 1},
		},
		{
			name: "above range",
			in:   Params{Threshold: 9, Substeps: 40, K: 1, K2: 1, Gamma: 1, Viscosity: 1},
			want: Params{Threshold: 3, Substeps: 12, K: 0.2, K2: 0.5, Gamma: 0.2, Viscosity: 0.3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Clamp()
			if p != tt.want {
				t.Errorf("Clamp() = %+v, want %+v", p, tt.want)
			}
		})
	}
}

func TestParamsFromConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := ParamsFromConfig(cfg)
	if p.Substeps != cfg.Solver.Substeps || p.K != float32(cfg.Solver.K) {
		t.Errorf("params %+v do not match config", p)
	}
	if p.Threshold != float32(cfg.Mesh.Threshold) {
		t.Errorf("threshold = %v, want %v", p.Threshold, cfg.Mesh.Threshold)
	}
}

func TestFluidSummaryBars(t *testing.T) {
	tests := []struct {
		name        string
		s           FluidSummary
		fill, press float32
	}{
		{"empty", FluidSummary{}, 0, 0},
		{"half full at rest", FluidSummary{Particles: 50, Capacity: 100, DensityP50: 3, RestDensity: 3}, 0.5, 0.5},
		{"compressed", FluidSummary{Particles: 100, Capacity: 100, DensityP50: 6, RestDensity: 3}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.FillFraction(); got != tt.fill {
				t.Errorf("FillFraction = %v, want %v", got, tt.fill)
			}
			if got := tt.s.Compression(); got != tt.press {
				t.Errorf("Compression = %v, want %v", got, tt.press)
			}
		})
	}
}

func TestControlsPanelHeightGrowsWithOverlays(t *testing.T) {
	c := NewControlsPanel(0, 0, 200)
	reg := NewOverlayRegistry()
	before := c.Height(reg)

	reg.Register(OverlayDescriptor{ID: "extra", Name: "Extra", Category: "debug"})
	if after := c.Height(reg); after != before+c.renderer.Theme.LineHeight {
		t.Errorf("height %d -> %d, want one more line", before, after)
	}
}
