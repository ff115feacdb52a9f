package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// FluidSummary is the fluid section of the controls panel, taken from the
// last stats window.
type FluidSummary struct {
	Particles     int
	Capacity      int
	DensityP50    float64
	RestDensity   float64
	EnergyPerPart float64
	MeshArea      float64
	MeshVolume    float64
	BoundaryEdges int
}

// FillFraction is the share of kernel capacity in use.
func (s FluidSummary) FillFraction() float32 {
	if s.Capacity <= 0 {
		return 0
	}
	return float32(s.Particles) / float32(s.Capacity)
}

// Compression is the median density relative to rest, halved so 1.0 of rest
// sits mid-bar.
func (s FluidSummary) Compression() float32 {
	if s.RestDensity <= 0 {
		return 0
	}
	return float32(s.DensityP50 / s.RestDensity / 2)
}

var categoryLabels = map[string]string{
	"surface": "Surface",
	"scene":   "Scene",
	"debug":   "Debug",
}

var (
	toggleOn  = rl.Color{R: 90, G: 170, B: 230, A: 255}
	toggleOff = rl.Color{R: 70, G: 75, B: 80, A: 255}
	keyColor  = rl.Color{R: 140, G: 150, B: 160, A: 255}
)

// fluidRows is the line count of the fluid section, header included.
const fluidRows = 7

// ControlsPanel lists overlay toggles and a short fluid summary.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a hidden panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Height returns the panel height for the given overlay set.
func (c *ControlsPanel) Height(overlays *OverlayRegistry) int32 {
	th := c.renderer.Theme
	rows := 0
	for _, cat := range overlays.Categories() {
		rows += len(overlays.ByCategory(cat)) + 1
	}
	rows += fluidRows
	return int32(rows)*th.LineHeight + th.Padding*2 + 4*int32(len(overlays.Categories())+1)
}

// Draw renders the panel and returns the Y below it. A hidden panel
// returns its top.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, fluid FluidSummary) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	pad := r.Theme.Padding
	inner := c.width - pad*2
	bottom := c.y + c.Height(overlays)
	r.DrawPanel(c.x, c.y, c.width, bottom-c.y)

	x := c.x + pad
	y := c.y + pad
	for _, cat := range overlays.Categories() {
		label, ok := categoryLabels[cat]
		if !ok {
			label = cat
		}
		y = r.DrawSectionHeader(x, y, label)
		for _, desc := range overlays.ByCategory(cat) {
			c.drawToggle(x, y, desc, overlays.IsEnabled(desc.ID), inner)
			y += r.Theme.LineHeight
		}
		y = r.DrawSpacer(y, 4)
	}

	y = r.DrawSectionHeader(x, y, "Fluid")
	y = r.DrawBar(x, y, "Fill", fluid.FillFraction(), inner)
	y = r.DrawBar(x, y, "Density", fluid.Compression(), inner)
	y = r.DrawLabelValue(x, y, "Energy", fmt.Sprintf("%.2e", fluid.EnergyPerPart), inner)
	y = r.DrawLabelValue(x, y, "Area", fmt.Sprintf("%.1f", fluid.MeshArea), inner)
	y = r.DrawLabelValue(x, y, "Volume", fmt.Sprintf("%.1f", fluid.MeshVolume), inner)
	r.DrawLabelValue(x, y, "Open", fmt.Sprintf("%d edges", fluid.BoundaryEdges), inner)

	return bottom
}

// drawToggle draws one overlay line: state dot, name, key right-aligned.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer
	fs := r.Theme.FontSize

	center := rl.Vector2{X: float32(x + 4), Y: float32(y + fs/2)}
	if enabled {
		rl.DrawCircleV(center, 4, toggleOn)
		rl.DrawText(desc.Name, x+14, y, fs, rl.White)
	} else {
		rl.DrawCircleLines(int32(center.X), int32(center.Y), 4, toggleOff)
		r.DrawLabel(x+14, y, desc.Name)
	}

	if desc.KeyLabel != "" {
		key := desc.KeyLabel
		rl.DrawText(key, x+width-rl.MeasureText(key, fs), y, fs, keyColor)
	}
}
