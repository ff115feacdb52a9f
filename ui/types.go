// Package ui draws the viewer panels: overlay toggles, solver sliders,
// the HUD and the per-phase timing panel.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 14, G: 20, B: 28, A: 235},
		PanelBorder:    rl.Color{R: 48, G: 72, B: 96, A: 255},
		SectionHeader:  rl.SkyBlue,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		BarBg:          rl.Color{R: 30, G: 38, B: 48, A: 255},
		BarFill:        rl.Color{R: 90, G: 170, B: 230, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     64,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
