package game

import "github.com/pthm-cable/drops/telemetry"

// UpdateHeadless runs simulation steps without any rendering.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// simulationStep runs a single tick: host systems, neighbor search, solver
// substeps with a drift after each, body forces and collisions, then the
// periodic mesh rebuild.
func (g *Game) simulationStep() {
	g.perfCollector.StartTick()

	// 1. Host systems feed the kernel
	g.perfCollector.StartPhase(telemetry.PhaseHost)
	g.orbitSystem.Update(g.world)
	g.spawn()

	// 2. Neighbor pairs for this tick
	g.perfCollector.StartPhase(telemetry.PhaseNeighbors)
	g.kernel.RebuildNeighbors()

	// 3. Solver substeps and drift
	g.perfCollector.StartPhase(telemetry.PhaseSubsteps)
	g.runSubsteps()

	// 4. Body forces and collisions
	g.perfCollector.StartPhase(telemetry.PhaseHost)
	ps := g.kernel.Particles()
	g.integrateSystem.Update(ps)
	g.collector.RecordCollisions(g.collideSystem.Update(g.world, ps))
	g.perfCollector.EndPhase()

	// 5. Surface
	g.tick++
	if g.shouldRebuildMesh() {
		g.rebuildMesh()
	}

	g.perfCollector.EndTick()
	g.flushTelemetry()
}

// spawn runs fill and emitter systems and records the results.
func (g *Game) spawn() {
	fill, err := g.fillSystem.Update(g.world, g.kernel)
	if err != nil {
		g.logger.Error("fill failed", "error", err)
	}
	emit, err := g.emitterSystem.Update(g.world, g.kernel)
	if err != nil {
		g.logger.Error("emit failed", "error", err)
	}
	spawned := fill.Spawned + emit.Spawned
	g.collector.RecordSpawn(spawned)
	g.collector.RecordRejected(fill.Rejected + emit.Rejected)
	if spawned > 0 {
		g.meshDirty = true
	}
}

func (g *Game) runSubsteps() {
	n := g.params.Substeps
	if n < 1 {
		n = 1
	}
	rest := g.cfg.Derived.RestDensity32
	ps := g.kernel.Particles()
	g.kernel.BeginSubsteps(n)
	for i := 0; i < n; i++ {
		g.kernel.RunSubstep(g.params.K, g.params.K2, g.params.Gamma, g.params.Viscosity, rest)
		g.integrateSystem.Drift(ps)
	}
	g.kernel.EndSubsteps(n)
}

func (g *Game) shouldRebuildMesh() bool {
	every := int32(g.cfg.Mesh.EveryNTicks)
	if every <= 0 {
		return false
	}
	return g.tick%every == 0
}

// rebuildMesh runs the rasterizer, extractor and smoother and folds their
// timings into the perf phases.
func (g *Game) rebuildMesh() {
	g.kernel.RebuildMesh(g.params.Threshold, g.cfg.Derived.RestDensity32, g.cfg.Mesh.RefreshDensity)
	t := g.kernel.MeshTimings()
	g.perfCollector.AddPhase(telemetry.PhaseRaster, t.Raster)
	g.perfCollector.AddPhase(telemetry.PhaseExtract, t.Extract)
	g.perfCollector.AddPhase(telemetry.PhaseSmooth, t.Smooth)
	g.collector.RecordMeshRebuild()
	g.meshDirty = false
}

// RebuildMesh forces a surface rebuild outside the tick schedule.
func (g *Game) RebuildMesh() {
	g.rebuildMesh()
}
