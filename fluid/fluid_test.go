package fluid

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bufferedGuard returns a guard whose log output is captured.
func bufferedGuard(policy OverflowPolicy) (*Guard, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return NewGuard(policy, logger), &buf
}

// latticeBlock fills an nx*ny*nz block with spacing Interval, optionally jittered.
func latticeBlock(t testing.TB, ps *Particles, nx, ny, nz int, jitter float32, seed int64) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				p := mgl32.Vec3{float32(x) * Interval, float32(y) * Interval, float32(z) * Interval}
				if jitter > 0 {
					p = p.Add(mgl32.Vec3{
						(rng.Float32()*2 - 1) * jitter,
						(rng.Float32()*2 - 1) * jitter,
						(rng.Float32()*2 - 1) * jitter,
					})
				}
				v := mgl32.Vec3{
					(rng.Float32()*2 - 1) * 0.01,
					(rng.Float32()*2 - 1) * 0.01,
					(rng.Float32()*2 - 1) * 0.01,
				}
				require.NoError(t, ps.Add(p, v))
			}
		}
	}
}

func TestParseOverflowPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    OverflowPolicy
		wantErr bool
	}{
		{"", OverflowTruncate, false},
		{"truncate", OverflowTruncate, false},
		{"panic", OverflowPanic, false},
		{"explode", OverflowTruncate, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOverflowPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParticlesAddAtCapacity(t *testing.T) {
	guard, buf := bufferedGuard(OverflowTruncate)
	ps := NewParticles(2, guard)

	require.NoError(t, ps.Add(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{}))
	require.NoError(t, ps.Add(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}))

	for i := 0; i < 3; i++ {
		err := ps.Add(mgl32.Vec3{2, 0, 0}, mgl32.Vec3{})
		assert.True(t, errors.Is(err, ErrParticleCapacity))
		assert.True(t, errors.Is(err, ErrCapacity))
	}
	assert.Equal(t, 2, ps.Count())
	assert.Equal(t, 3, guard.Overflows()[OverflowParticles])
	assert.Equal(t, 1, strings.Count(buf.String(), "capacity exceeded"), "overflow should be logged once")
}

func TestParticlesPanicPolicy(t *testing.T) {
	guard, _ := bufferedGuard(OverflowPanic)
	ps := NewParticles(1, guard)
	require.NoError(t, ps.Add(mgl32.Vec3{}, mgl32.Vec3{}))
	assert.Panics(t, func() { _ = ps.Add(mgl32.Vec3{}, mgl32.Vec3{}) })
}

func TestSentinelFollowsCount(t *testing.T) {
	ps := NewParticles(4, nil)
	assert.Equal(t, int32(0), ps.Sentinel())
	assert.Equal(t, float32(SentinelCoord), ps.PX[0])

	require.NoError(t, ps.Add(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{}))
	assert.Equal(t, int32(1), ps.Sentinel())
	assert.Equal(t, float32(1), ps.PX[0])
	assert.Equal(t, float32(SentinelCoord), ps.PZ[1])

	ps.Reset()
	assert.Equal(t, 0, ps.Count())
	assert.Equal(t, float32(SentinelCoord), ps.PX[0])
}

func TestLatticeRestDensity(t *testing.T) {
	// 6 face, 12 edge, 8 corner and 6 second-shell neighbors fall inside RE.
	assert.InDelta(t, 3.185, LatticeRestDensity(), 0.01)

	shells := []struct {
		count int
		dist  float64
	}{
		{6, 1}, {12, math.Sqrt2}, {8, math.Sqrt(3)}, {6, 2},
	}
	var want float64
	for _, sh := range shells {
		w := 1 - sh.dist*Interval/Radius
		want += float64(sh.count) * w * w
	}
	assert.InDelta(t, want, LatticeRestDensity(), 1e-5)
}

func TestKineticEnergyAndMeanDensity(t *testing.T) {
	ps := NewParticles(4, nil)
	require.NoError(t, ps.Add(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}))
	require.NoError(t, ps.Add(mgl32.Vec3{}, mgl32.Vec3{0, 2, 0}))
	ps.D[0], ps.D[1] = 1, 3

	assert.InDelta(t, 2.5, ps.KineticEnergy(), 1e-6)
	assert.InDelta(t, 2.0, ps.MeanDensity(), 1e-6)

	ps.ScaleVelocities(0.5)
	assert.InDelta(t, 0.625, ps.KineticEnergy(), 1e-6)
}

func TestHashNegativeCells(t *testing.T) {
	g := NewHashGrid(8, 4, nil)
	cells := [][3]int32{{0, 0, 0}, {-1, -1, -1}, {-1000, 5, 7}, {1 << 30, -(1 << 30), 3}}
	for _, c := range cells {
		h := g.Hash(c)
		assert.Less(t, h, uint32(g.Buckets()))
		assert.Equal(t, h, g.Hash(c), "hash must be deterministic")
	}
}

func TestHash4MatchesScalar(t *testing.T) {
	xs := [4]int32{0, -3, 17, 1 << 20}
	ys := [4]int32{1, -2, -17, 4}
	zs := [4]int32{2, 9, 0, -(1 << 20)}
	var out [4]uint32
	mask := uint32(1<<16 - 1)
	hash4(&xs, &ys, &zs, mask, &out)
	for l := 0; l < 4; l++ {
		assert.Equal(t, hashCell(xs[l], ys[l], zs[l], mask), out[l])
	}
}

func TestCellOf(t *testing.T) {
	assert.Equal(t, [3]int32{0, 0, 0}, CellOf(0.1, 0.2, 0.3))
	assert.Equal(t, [3]int32{-1, 1, -2}, CellOf(-0.1, 0.7, -0.7))
}

func TestBucketOverflowTruncates(t *testing.T) {
	guard, buf := bufferedGuard(OverflowTruncate)
	g := NewHashGrid(4, 2, guard)
	cell := [3]int32{1, 2, 3}
	for i := int32(0); i < 5; i++ {
		g.Insert(i, cell)
	}
	assert.Equal(t, 2, g.BucketLen(cell))
	assert.Equal(t, 3, guard.Overflows()[OverflowBucket])
	assert.Equal(t, 1, strings.Count(buf.String(), "capacity exceeded"))

	g.Clear()
	assert.Equal(t, 0, g.BucketLen(cell))
}

func TestLookup27GathersCollidingBucketsOnce(t *testing.T) {
	// Two buckets: the 27 neighbor cells collide heavily.
	g := NewHashGrid(1, 16, nil)
	g.Insert(7, [3]int32{0, 0, 0})
	g.Insert(8, [3]int32{5, 5, 5})

	got := g.Lookup27([3]int32{0, 0, 0}, nil)
	seen := map[int32]int{}
	for _, r := range got {
		seen[r]++
	}
	for ref, n := range seen {
		assert.Equal(t, 1, n, "ref %d gathered %d times", ref, n)
	}
	assert.Contains(t, got, int32(7))
}

func TestBuildNeighbors(t *testing.T) {
	tests := []struct {
		name  string
		pos   []mgl32.Vec3
		pairs int
	}{
		{"empty", nil, 0},
		{"single", []mgl32.Vec3{{0, 0, 0}}, 0},
		{"close pair", []mgl32.Vec3{{0, 0, 0}, {0.1, 0, 0}}, 1},
		{"far pair", []mgl32.Vec3{{0, 0, 0}, {0.8, 0, 0}}, 0},
		{"triangle", []mgl32.Vec3{{0, 0, 0}, {0.3, 0, 0}, {0, 0.3, 0}}, 3},
		{"across negative cells", []mgl32.Vec3{{-0.05, -0.05, -0.05}, {0.05, 0.05, 0.05}}, 1},
	}
	for _, tt := range tests {
		for _, lanes := range []int{1, 4} {
			t.Run(tt.name, func(t *testing.T) {
				ps := NewParticles(8, nil)
				for _, p := range tt.pos {
					require.NoError(t, ps.Add(p, mgl32.Vec3{}))
				}
				pairs := NewPairs(64, nil)
				BuildNeighbors(ps, NewHashGrid(8, 16, nil), pairs, lanes)
				assert.Equal(t, tt.pairs, pairs.Len(), "lanes=%d", lanes)
			})
		}
	}
}

// checkPairs verifies uniqueness, admission and completeness against brute force.
func checkPairs(t *testing.T, ps *Particles, pairs *Pairs) {
	t.Helper()
	type key struct{ a, b int32 }
	found := make(map[key]bool, pairs.Len())
	for k := 0; k < pairs.Len(); k++ {
		a, b := pairs.A[k], pairs.B[k]
		require.Greater(t, a, b, "pairs are emitted from the later particle")
		require.False(t, found[key{a, b}], "duplicate pair (%d,%d)", a, b)
		found[key{a, b}] = true

		d := ps.Position(int(a)).Sub(ps.Position(int(b)))
		require.Less(t, d.Dot(d), float32(FatRadius2))
	}

	n := ps.Count()
	inner := float32(Radius * 0.99)
	for a := 0; a < n; a++ {
		for b := 0; b < a; b++ {
			d := ps.Position(a).Sub(ps.Position(b))
			if d.Len() < inner {
				require.True(t, found[key{int32(a), int32(b)}], "missing pair (%d,%d)", a, b)
			}
		}
	}
}

func TestBuildNeighborsMatchesBruteForce(t *testing.T) {
	for _, shift := range []int{1, 4, 16} {
		ps := NewParticles(1000, nil)
		latticeBlock(t, ps, 8, 8, 8, 0.12, 42)
		pairs := NewPairs(1<<16, nil)
		BuildNeighbors(ps, NewHashGrid(shift, 1024, nil), pairs, 4)
		checkPairs(t, ps, pairs)
	}
}

func TestBuildNeighborsScalarMatchesBatched(t *testing.T) {
	ps := NewParticles(600, nil)
	latticeBlock(t, ps, 7, 8, 9, 0.1, 3)

	p4 := NewPairs(1<<15, nil)
	p1 := NewPairs(1<<15, nil)
	BuildNeighbors(ps, NewHashGrid(10, 64, nil), p4, 4)
	BuildNeighbors(ps, NewHashGrid(10, 64, nil), p1, 1)

	require.Equal(t, p1.Len(), p4.Len())
	assert.Equal(t, p1.A[:p1.Len()], p4.A[:p4.Len()])
	assert.Equal(t, p1.B[:p1.Len()], p4.B[:p4.Len()])
}

func TestPairOverflowTruncates(t *testing.T) {
	guard, buf := bufferedGuard(OverflowTruncate)
	ps := NewParticles(8, guard)
	for i := 0; i < 4; i++ {
		require.NoError(t, ps.Add(mgl32.Vec3{float32(i) * 0.05, 0, 0}, mgl32.Vec3{}))
	}
	pairs := NewPairs(2, guard)
	BuildNeighbors(ps, NewHashGrid(8, 16, guard), pairs, 4)

	assert.Equal(t, 2, pairs.Len())
	assert.Equal(t, 4, guard.Overflows()[OverflowPairs])
	assert.Equal(t, 1, strings.Count(buf.String(), "capacity exceeded"))
}

func TestPairsPad(t *testing.T) {
	pairs := NewPairs(8, nil)
	pairs.Add(1, 0)
	pairs.Add(2, 1)
	pairs.Add(3, 2)
	assert.Equal(t, 4, pairs.Pad(9))
	assert.Equal(t, 3, pairs.Len())
	assert.Equal(t, int32(9), pairs.A[3])
	assert.Equal(t, int32(9), pairs.B[3])

	pairs.Add(4, 3)
	assert.Equal(t, 4, pairs.Pad(9), "already a multiple of 4")
}
