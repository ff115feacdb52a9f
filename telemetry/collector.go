package telemetry

// Collector accumulates host events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks     int32
	windowStartTick int32

	// Event counters for current window
	spawned      int
	rejected     int
	collisions   int
	meshRebuilds int
}

// NewCollector creates a new stats collector flushing every windowTicks ticks.
func NewCollector(windowTicks int32) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// RecordSpawn records particles added by fills and emitters.
func (c *Collector) RecordSpawn(n int) {
	c.spawned += n
}

// RecordRejected records particles refused because the kernel was full.
func (c *Collector) RecordRejected(n int) {
	c.rejected += n
}

// RecordCollisions records particles pushed out of colliders.
func (c *Collector) RecordCollisions(n int) {
	c.collisions += n
}

// RecordMeshRebuild records a surface rebuild.
func (c *Collector) RecordMeshRebuild() {
	c.meshRebuilds++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// KernelSample is the kernel state sampled at the end of a window.
type KernelSample struct {
	Particles     int
	Pairs         int
	Densities     []float32
	KineticEnergy float64
	Vertices      int
	Triangles     int
	MeshArea      float64
	MeshVolume    float64
	BoundaryEdges int
	Overflows     int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, k KernelSample) WindowStats {
	densities := make([]float64, len(k.Densities))
	for i, d := range k.Densities {
		densities[i] = float64(d)
	}
	mean, p10, p50, p90 := ComputeDistribution(densities)

	var pairsPer float64
	if k.Particles > 0 {
		pairsPer = 2 * float64(k.Pairs) / float64(k.Particles)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Particles:        k.Particles,
		Pairs:            k.Pairs,
		NeighborsPerPart: pairsPer,

		Spawned:      c.spawned,
		Rejected:     c.rejected,
		Collisions:   c.collisions,
		MeshRebuilds: c.meshRebuilds,

		DensityMean: mean,
		DensityP10:  p10,
		DensityP50:  p50,
		DensityP90:  p90,

		KineticEnergy: k.KineticEnergy,

		Vertices:      k.Vertices,
		Triangles:     k.Triangles,
		MeshArea:      k.MeshArea,
		MeshVolume:    k.MeshVolume,
		BoundaryEdges: k.BoundaryEdges,
		Overflows:     k.Overflows,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.spawned = 0
	c.rejected = 0
	c.collisions = 0
	c.meshRebuilds = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int32 {
	return c.windowTicks
}
