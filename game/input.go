package game

import rl "github.com/gen2brain/raylib-go/raylib"

// Camera sensitivity
const (
	orbitSpeed = 0.005 // radians per pixel
	zoomStep   = 0.9
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	// Single step while paused
	if g.paused && rl.IsKeyPressed(rl.KeyRight) {
		g.simulationStep()
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.Reset()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.controlsPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF1) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyF2) {
		g.solverPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF5) {
		g.saveSnapshot(nil)
	}

	if key := rl.GetKeyPressed(); key != 0 {
		g.overlays.HandleKeyPress(key)
	}

	g.handleCameraInput()
}

// handleCameraInput orbits with the right mouse button and zooms with the wheel.
func (g *Game) handleCameraInput() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.camera.Orbit(-d.X*orbitSpeed, d.Y*orbitSpeed)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		if wheel > 0 {
			g.camera.ZoomBy(zoomStep)
		} else {
			g.camera.ZoomBy(1 / zoomStep)
		}
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
