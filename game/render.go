package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drops/camera"
	"github.com/pthm-cable/drops/renderer"
	"github.com/pthm-cable/drops/telemetry"
	"github.com/pthm-cable/drops/ui"
)

const controlsLegend = "[Space] pause  [Right] step  [<>] speed  [R] reset  [Tab] overlays  [F1] perf  [F2] solver  [F5] snapshot  [RMB] orbit  [Wheel] zoom"

// floorSpacing is the grid line spacing under the container.
const floorSpacing = 0.6

// setupViewer creates the camera, renderers and panels. Requires an open window.
func (g *Game) setupViewer() {
	ct := g.cfg.Scene.Container
	g.camera = camera.New(ct.Center.Vec(), 3*float32(ct.HalfExtents[0]+ct.HalfExtents[1]))
	g.background = renderer.NewBackgroundRenderer(18, 22, 28)
	g.meshRenderer = renderer.NewMeshRenderer()
	g.particleDraw = renderer.NewParticleRenderer()
	g.overlays = ui.NewOverlayRegistry()
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(10, 140)
	g.solverPanel = ui.NewSolverPanel(g.cfg.Screen.Width-250, 10, 240)
	g.controlsPanel = ui.NewControlsPanel(10, 140, 220)
}

// Update handles input and runs simulation steps for the window.
func (g *Game) Update() {
	g.handleInput()
	g.perfCollector.RecordFrame()

	if g.paused {
		if g.meshDirty {
			g.rebuildMesh()
		}
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// Draw renders the scene and the panels.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(g.background.Bottom)
	g.background.Draw(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))

	rl.BeginMode3D(renderer.Camera3D(g.camera))
	g.drawScene()
	rl.EndMode3D()

	g.drawUI()
	rl.EndDrawing()
}

func (g *Game) drawScene() {
	k := g.kernel

	ct := g.cfg.Scene.Container
	half := float32(max(ct.HalfExtents[0], ct.HalfExtents[2]))
	g.background.DrawFloor(
		float32(ct.Center[0]),
		float32(ct.Center[1]-ct.HalfExtents[1]),
		float32(ct.Center[2]),
		half, floorSpacing,
	)

	if g.overlays.IsEnabled(ui.OverlayMesh) {
		g.meshRenderer.Draw(k.MeshVertexBuffer(), k.MeshTriangleBuffer(), k.MeshTriangleCount())
	}
	if g.overlays.IsEnabled(ui.OverlayWireframe) {
		g.meshRenderer.DrawWireframe(k.MeshVertexBuffer(), k.MeshTriangleBuffer(), k.MeshTriangleCount())
	}
	if g.overlays.IsEnabled(ui.OverlayNormals) {
		g.meshRenderer.DrawNormals(k.MeshVertexBuffer(), k.MeshVertexCount(), 0.2)
	}
	if g.overlays.IsEnabled(ui.OverlayParticles) {
		g.particleDraw.Draw(k.Particles(), g.cfg.Derived.RestDensity32)
	}
	if g.overlays.IsEnabled(ui.OverlayMarked) {
		renderer.DrawMarkedCells(k.Field())
	}
	if g.overlays.IsEnabled(ui.OverlayColliders) {
		query := g.colliderFilter.Query()
		for query.Next() {
			tr, col := query.Get()
			renderer.DrawCollider(tr.Pos, col)
		}
	}
}

func (g *Game) drawUI() {
	k := g.kernel
	screenW := int32(rl.GetScreenWidth())
	screenH := int32(rl.GetScreenHeight())

	g.hud.Draw(ui.HUDData{
		Title:        "Drops",
		Particles:    k.ParticleCount(),
		Capacity:     k.Particles().Capacity(),
		Pairs:        k.PairCount(),
		Vertices:     k.MeshVertexCount(),
		Triangles:    k.MeshTriangleCount(),
		Overflows:    k.Overflows().Total(),
		Tick:         g.tick,
		Speed:        g.stepsPerUpdate,
		FPS:          rl.GetFPS(),
		Paused:       g.paused,
		ScreenWidth:  screenW,
		ScreenHeight: screenH,
	})
	g.hud.DrawControls(screenW, screenH, controlsLegend)

	y := g.controlsPanel.Draw(g.overlays, g.fluidSummary())
	if g.showPerf {
		stats := g.perfCollector.Stats()
		g.perfPanel.SetPosition(10, y+10)
		g.perfPanel.Draw(ui.PerfPanelData{PhaseTimes: stats.PhaseAvg, Total: stats.AvgTickDuration}, telemetry.Phases)
	}

	g.solverPanel.SetPosition(screenW-250, 10)
	before := g.params
	switch g.solverPanel.Draw(&g.params) {
	case ui.ActionReset:
		g.Reset()
	case ui.ActionDefaults:
		g.params = ui.ParamsFromConfig(g.cfg)
	}
	if g.params.Threshold != before.Threshold {
		g.meshDirty = true
	}
}

// fluidSummary fills the controls panel from live counts and the last stats window.
func (g *Game) fluidSummary() ui.FluidSummary {
	s := g.lastStats
	var energy float64
	if s.Particles > 0 {
		energy = s.KineticEnergy / float64(s.Particles)
	}
	return ui.FluidSummary{
		Particles:     g.kernel.ParticleCount(),
		Capacity:      g.kernel.Particles().Capacity(),
		DensityP50:    s.DensityP50,
		RestDensity:   float64(g.cfg.Derived.RestDensity32),
		EnergyPerPart: energy,
		MeshArea:      s.MeshArea,
		MeshVolume:    s.MeshVolume,
		BoundaryEdges: s.BoundaryEdges,
	}
}
