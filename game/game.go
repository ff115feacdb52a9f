// Package game wires the kernel context to the host scene: ECS entities
// that feed and steer particles, the per-tick pipeline, telemetry and the
// raylib viewer.
package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drops/camera"
	"github.com/pthm-cable/drops/components"
	"github.com/pthm-cable/drops/config"
	"github.com/pthm-cable/drops/kernel"
	"github.com/pthm-cable/drops/renderer"
	"github.com/pthm-cable/drops/systems"
	"github.com/pthm-cable/drops/telemetry"
	"github.com/pthm-cable/drops/ui"
)

// Options configures game initialization.
type Options struct {
	Config         *config.Config // nil = config.Cfg()
	Seed           int64
	LogStats       bool
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
	StatsCallback  func(telemetry.WindowStats)
	SnapshotDir    string       // snapshots on bookmarks and F5; empty disables bookmark snapshots
	Logger         *slog.Logger // nil = slog.Default()
}

// Game holds the complete simulation state.
type Game struct {
	cfg    *config.Config
	seed   int64
	logger *slog.Logger

	kernel *kernel.Context
	params ui.Params

	world          *ecs.World
	fillMapper     *ecs.Map2[components.Transform, components.Fill]
	emitterMapper  *ecs.Map2[components.Transform, components.Emitter]
	colliderMapper *ecs.Map2[components.Transform, components.Collider]
	orbitMapper    *ecs.Map3[components.Transform, components.Collider, components.Orbit]
	colliderFilter *ecs.Filter2[components.Transform, components.Collider]

	fillSystem      *systems.FillSystem
	emitterSystem   *systems.EmitterSystem
	orbitSystem     *systems.OrbitSystem
	integrateSystem *systems.IntegrateSystem
	collideSystem   *systems.CollideSystem

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	bookmarkDetector *telemetry.BookmarkDetector
	lastStats        telemetry.WindowStats
	snapshotDir      string

	// State
	tick           int32
	paused         bool
	headless       bool
	stepsPerUpdate int
	meshDirty      bool

	// Viewer (nil when headless)
	camera        *camera.Camera
	background    *renderer.BackgroundRenderer
	meshRenderer  *renderer.MeshRenderer
	particleDraw  *renderer.ParticleRenderer
	overlays      *ui.OverlayRegistry
	hud           *ui.HUD
	perfPanel     *ui.PerfPanel
	solverPanel   *ui.SolverPanel
	controlsPanel *ui.ControlsPanel
	showPerf      bool
}

// NewGameWithOptions creates a game with the given options.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	kopts := kernel.OptionsFromConfig(cfg)
	kopts.Logger = logger

	g := &Game{
		cfg:            cfg,
		seed:           opts.Seed,
		logger:         logger,
		kernel:         kernel.New(kopts),
		params:         ui.ParamsFromConfig(cfg),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector:      telemetry.NewCollector(int32(cfg.Telemetry.StatsWindow)),
		statsCallback:  opts.StatsCallback,
		logStats:       opts.LogStats,
		snapshotDir:    opts.SnapshotDir,
		headless:       opts.Headless,
		stepsPerUpdate: steps,
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			logger.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				logger.Error("failed to write config", "error", err)
			}
		}
	}

	g.bookmarkDetector = telemetry.NewBookmarkDetector(bookmarkHistory, float64(cfg.Derived.RestDensity32))
	g.setupWorld(true)

	if !g.headless {
		g.setupViewer()
	}
	return g
}

// bookmarkHistory is the number of stats windows the bookmark detector averages over.
const bookmarkHistory = 10

// setupWorld creates a fresh ECS world, its systems and the scene entities.
// Fill blocks are skipped when restoring particles from a snapshot.
func (g *Game) setupWorld(fills bool) {
	w := ecs.NewWorld()
	g.world = w
	g.fillMapper = ecs.NewMap2[components.Transform, components.Fill](w)
	g.emitterMapper = ecs.NewMap2[components.Transform, components.Emitter](w)
	g.colliderMapper = ecs.NewMap2[components.Transform, components.Collider](w)
	g.orbitMapper = ecs.NewMap3[components.Transform, components.Collider, components.Orbit](w)
	g.colliderFilter = ecs.NewFilter2[components.Transform, components.Collider](w)

	g.fillSystem = systems.NewFillSystem(w)
	g.emitterSystem = systems.NewEmitterSystem(w)
	g.orbitSystem = systems.NewOrbitSystem(w)
	g.integrateSystem = systems.NewIntegrateSystem(g.cfg.Host, g.seed)
	g.collideSystem = systems.NewCollideSystem(w)

	g.spawnScene(fills)
}

// Reset drops every particle and rebuilds the scene from the config.
func (g *Game) Reset() {
	g.kernel.Reset()
	g.setupWorld(true)
	g.meshDirty = true
}

// Kernel returns the kernel context.
func (g *Game) Kernel() *kernel.Context {
	return g.kernel
}

// Params returns the current solver settings.
func (g *Game) Params() ui.Params {
	return g.params
}

// SetParams replaces the solver settings; values are clamped to the panel ranges.
func (g *Game) SetParams(p ui.Params) {
	p.Clamp()
	g.params = p
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// ParticleCount returns the number of live particles.
func (g *Game) ParticleCount() int {
	return g.kernel.ParticleCount()
}

// Unload releases output files.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		g.logger.Error("failed to close output", "error", err)
	}
}
