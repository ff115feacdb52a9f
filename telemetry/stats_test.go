package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{3.2, 0.4, 2.8, 3.1, 1.0, 3.0, 2.9, 3.3, 0.2, 3.1}
	mean, p10, p50, p90 := ComputeDistribution(values)

	if math.Abs(mean-2.3) > 0.001 {
		t.Errorf("mean = %v, want 2.3", mean)
	}
	if p10 > p50 || p50 > p90 {
		t.Errorf("percentiles out of order: %v %v %v", p10, p50, p90)
	}
	if math.Abs(p50-2.95) > 0.001 {
		t.Errorf("p50 = %v, want 2.95", p50)
	}
	// Input must not be reordered.
	if values[0] != 3.2 || values[1] != 0.4 {
		t.Error("ComputeDistribution modified its input")
	}
}

func TestComputeDistributionEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeDistribution([]float64{})

	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(10)

	if c.ShouldFlush(9) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(10) {
		t.Error("should flush at the window end")
	}

	c.RecordSpawn(5)
	c.RecordSpawn(3)
	c.RecordRejected(2)
	c.RecordCollisions(7)
	c.RecordMeshRebuild()

	stats := c.Flush(10, KernelSample{
		Particles: 4,
		Pairs:     6,
		Densities: []float32{1, 2, 3, 4},
		Vertices:  12,
		Triangles: 20,
	})

	if stats.Spawned != 8 || stats.Rejected != 2 || stats.Collisions != 7 || stats.MeshRebuilds != 1 {
		t.Errorf("unexpected event counts: %+v", stats)
	}
	if stats.NeighborsPerPart != 3 {
		t.Errorf("neighbors per particle = %v, want 3", stats.NeighborsPerPart)
	}
	if math.Abs(stats.DensityMean-2.5) > 1e-9 {
		t.Errorf("density mean = %v, want 2.5", stats.DensityMean)
	}

	// Counters reset and the window restarts at the flush tick.
	next := c.Flush(20, KernelSample{})
	if next.Spawned != 0 || next.WindowStartTick != 10 {
		t.Errorf("expected reset window, got %+v", next)
	}
	if c.ShouldFlush(25) {
		t.Error("window should restart at the last flush")
	}
}
