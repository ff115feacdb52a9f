package telemetry

import (
	"log/slog"
	"sort"
)

// WindowStats holds aggregated statistics for a tick window.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Kernel counts at window end
	Particles        int     `csv:"particles"`
	Pairs            int     `csv:"pairs"`
	NeighborsPerPart float64 `csv:"neighbors_per_particle"`

	// Events during window
	Spawned      int `csv:"spawned"`
	Rejected     int `csv:"rejected"`
	Collisions   int `csv:"collisions"`
	MeshRebuilds int `csv:"mesh_rebuilds"`

	// Density distribution (sampled at window end)
	DensityMean float64 `csv:"density_mean"`
	DensityP10  float64 `csv:"density_p10"`
	DensityP50  float64 `csv:"density_p50"`
	DensityP90  float64 `csv:"density_p90"`

	KineticEnergy float64 `csv:"kinetic_energy"`

	// Surface
	Vertices      int     `csv:"vertices"`
	Triangles     int     `csv:"triangles"`
	MeshArea      float64 `csv:"mesh_area"`
	MeshVolume    float64 `csv:"mesh_volume"`
	BoundaryEdges int     `csv:"boundary_edges"`

	// Items dropped at fixed capacities since start
	Overflows int `csv:"overflows"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean and percentiles of values.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("particles", s.Particles),
		slog.Int("pairs", s.Pairs),
		slog.Float64("neighbors_per_particle", s.NeighborsPerPart),
		slog.Int("spawned", s.Spawned),
		slog.Int("rejected", s.Rejected),
		slog.Int("collisions", s.Collisions),
		slog.Int("mesh_rebuilds", s.MeshRebuilds),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_p10", s.DensityP10),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("density_p90", s.DensityP90),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Int("vertices", s.Vertices),
		slog.Int("triangles", s.Triangles),
		slog.Float64("mesh_area", s.MeshArea),
		slog.Float64("mesh_volume", s.MeshVolume),
		slog.Int("boundary_edges", s.BoundaryEdges),
		slog.Int("overflows", s.Overflows),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
