package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drops/config"
)

// Params are the solver and mesh settings adjustable while running.
type Params struct {
	Threshold float32
	Substeps  int
	K         float32
	K2        float32
	Gamma     float32
	Viscosity float32
}

// ParamsFromConfig copies the adjustable values out of a config.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Threshold: cfg.Derived.Threshold32,
		Substeps:  cfg.Solver.Substeps,
		K:         cfg.Derived.K32,
		K2:        cfg.Derived.K232,
		Gamma:     cfg.Derived.Gamma32,
		Viscosity: cfg.Derived.C32,
	}
}

// slider describes one row of the solver panel.
type slider struct {
	Label    string
	Min, Max float32
	Format   string
	Get      func(*Params) float32
	Set      func(*Params, float32)
}

var solverSliders = []slider{
	{"Threshold", 0.05, 3, "%.2f",
		func(p *Params) float32 { return p.Threshold },
		func(p *Params, v float32) { p.Threshold = v }},
	{"Substeps", 1, 12, "%.0f",
		func(p *Params) float32 { return float32(p.Substeps) },
		func(p *Params, v float32) { p.Substeps = int(v + 0.5) }},
	{"Pressure k", 0, 0.2, "%.3f",
		func(p *Params) float32 { return p.K },
		func(p *Params, v float32) { p.K = v }},
	{"Near k2", 0, 0.5, "%.3f",
		func(p *Params) float32 { return p.K2 },
		func(p *Params, v float32) { p.K2 = v }},
	{"Gamma", 0, 0.2, "%.3f",
		func(p *Params) float32 { return p.Gamma },
		func(p *Params, v float32) { p.Gamma = v }},
	{"Viscosity", 0, 0.3, "%.3f",
		func(p *Params) float32 { return p.Viscosity },
		func(p *Params, v float32) { p.Viscosity = v }},
}

// Clamp keeps every value inside its slider range.
func (p *Params) Clamp() {
	for _, s := range solverSliders {
		v := s.Get(p)
		if v < s.Min {
			v = s.Min
		}
		if v > s.Max {
			v = s.Max
		}
		s.Set(p, v)
	}
}

// SolverAction is a button pressed on the solver panel.
type SolverAction int

const (
	ActionNone SolverAction = iota
	ActionReset
	ActionDefaults
)

// SolverPanel renders raygui sliders for Params.
type SolverPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewSolverPanel creates a new solver panel.
func NewSolverPanel(x, y, width int32) *SolverPanel {
	return &SolverPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (s *SolverPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Toggle switches panel visibility.
func (s *SolverPanel) Toggle() bool {
	s.visible = !s.visible
	return s.visible
}

// Draw renders the panel, writes slider changes into params and reports
// which button was pressed.
func (s *SolverPanel) Draw(params *Params) SolverAction {
	if !s.visible {
		return ActionNone
	}

	r := s.renderer
	padding := r.Theme.Padding
	rowHeight := int32(38)
	panelHeight := padding*3 + 20 + rowHeight*int32(len(solverSliders)) + 34
	r.DrawPanel(s.x, s.y, s.width, panelHeight)

	x := float32(s.x + padding)
	y := float32(s.y + padding)
	barWidth := float32(s.width - padding*2 - 60)

	rl.DrawText("Solver", int32(x), int32(y), 16, rl.White)
	y += 24

	for _, sl := range solverSliders {
		rl.DrawText(sl.Label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		y += 14
		cur := sl.Get(params)
		next := gui.SliderBar(
			rl.Rectangle{X: x, Y: y, Width: barWidth, Height: 16},
			"", "",
			cur, sl.Min, sl.Max,
		)
		if next != cur {
			sl.Set(params, next)
		}
		rl.DrawText(fmt.Sprintf(sl.Format, sl.Get(params)), int32(x+barWidth+8), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
		y += float32(rowHeight - 14)
	}

	action := ActionNone
	y += 4
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 90, Height: 26}, "Reset Scene") {
		action = ActionReset
	}
	if gui.Button(rl.Rectangle{X: x + 100, Y: y, Width: 90, Height: 26}, "Defaults") {
		action = ActionDefaults
	}
	return action
}
