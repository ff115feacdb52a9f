// Package surface turns particle densities into a smoothed triangle mesh:
// a B-spline splat onto a periodic voxel grid, cube-table extraction over
// the marked voxels and a two-pass area-weighted smoother.
package surface

import (
	"github.com/pthm-cable/drops/fluid"
)

// Grid geometry.
const (
	Shift       = 6
	Res         = 1 << Shift
	Mask        = Res - 1
	Cells       = Res * Res * Res
	CellSize    = fluid.Interval
	InvCellSize = 1 / CellSize
	half        = Res / 2
)

// Index returns the flat voxel index; coordinates wrap modulo Res.
func Index(x, y, z int) int {
	return (x&Mask)<<(2*Shift) | (y&Mask)<<Shift | z&Mask
}

// Coords is the inverse of Index.
func Coords(idx int) (x, y, z int) {
	return idx >> (2 * Shift) & Mask, idx >> Shift & Mask, idx & Mask
}

// GridPoint returns the world position of a voxel corner.
func GridPoint(x, y, z int) (float32, float32, float32) {
	return (float32(x) - (half - 0.5)) * CellSize,
		(float32(y) - (half - 0.5)) * CellSize,
		(float32(z) - (half - 0.5)) * CellSize
}

// Field is the periodic weight grid with its list of marked voxels.
type Field struct {
	weights   []float32
	visited   []bool
	marked    []int32
	maxMarked int
	guard     *fluid.Guard
}

// NewField allocates a field. maxMarked <= 0 allows every voxel.
func NewField(maxMarked int, guard *fluid.Guard) *Field {
	if maxMarked <= 0 || maxMarked > Cells {
		maxMarked = Cells
	}
	return &Field{
		weights:   make([]float32, Cells),
		visited:   make([]bool, Cells),
		marked:    make([]int32, 0, maxMarked),
		maxMarked: maxMarked,
		guard:     guard,
	}
}

// Clear zeroes all weights and the marked list.
func (f *Field) Clear() {
	clear(f.weights)
	clear(f.visited)
	f.marked = f.marked[:0]
}

// Weights returns the weight grid indexed by Index. Callers must not
// modify it.
func (f *Field) Weights() []float32 { return f.weights }

// Marked returns the marked voxel indices.
func (f *Field) Marked() []int32 { return f.marked }

// At returns the weight at a wrapped voxel coordinate.
func (f *Field) At(x, y, z int) float32 { return f.weights[Index(x, y, z)] }

// Set overwrites one voxel weight without marking it.
func (f *Field) Set(x, y, z int, w float32) { f.weights[Index(x, y, z)] = w }

func (f *Field) mark(idx int) {
	if f.visited[idx] {
		return
	}
	if len(f.marked) >= f.maxMarked {
		f.guard.Report(fluid.OverflowMarked, f.maxMarked)
		return
	}
	f.visited[idx] = true
	f.marked = append(f.marked, int32(idx))
}

// MarkAbove marks every voxel whose weight is at least threshold.
func (f *Field) MarkAbove(threshold float32) {
	for i, w := range f.weights {
		if w >= threshold {
			f.mark(i)
		}
	}
}

// splatLane holds the base voxel, taps and inflation of one particle.
type splatLane struct {
	ix, iy, iz int
	tx, ty, tz [3]float32
}

func bspline(f float32) [3]float32 {
	a := 0.5 - f
	b := 0.5 + f
	return [3]float32{0.5 * a * a, 0.75 - f*f, 0.5 * b * b}
}

func floorInt(x float32) int {
	i := int(x)
	if x < float32(i) {
		i--
	}
	return i
}

// Splat deposits each particle with quadratic B-spline taps, four
// particles at a time. Every axis's taps are scaled by
// 1 + max(0, 1 - d/restDensity), so a sparse particle deposits up to 8.
// Voxels whose weight reaches threshold are marked. A restDensity <= 0
// disables the inflation.
func (f *Field) Splat(px, py, pz, d []float32, restDensity, threshold float32) {
	n := len(px)
	var invRest float32
	if restDensity > 0 {
		invRest = 1 / restDensity
	}

	var lanes [4]splatLane
	for base := 0; base < n; base += 4 {
		live := min(4, n-base)
		for l := 0; l < live; l++ {
			i := base + l
			gx := px[i]*InvCellSize + half
			gy := py[i]*InvCellSize + half
			gz := pz[i]*InvCellSize + half
			ln := &lanes[l]
			ln.ix, ln.iy, ln.iz = floorInt(gx), floorInt(gy), floorInt(gz)
			ln.tx = bspline(gx - float32(ln.ix) - 0.5)
			ln.ty = bspline(gy - float32(ln.iy) - 0.5)
			ln.tz = bspline(gz - float32(ln.iz) - 0.5)
			if invRest > 0 {
				s := 1 + max(0, 1-d[i]*invRest)
				for t := range 3 {
					ln.tx[t] *= s
					ln.ty[t] *= s
					ln.tz[t] *= s
				}
			}
		}

		for di := 0; di < 3; di++ {
			for dj := 0; dj < 3; dj++ {
				for dk := 0; dk < 3; dk++ {
					for l := 0; l < live; l++ {
						ln := &lanes[l]
						idx := Index(ln.ix+di-1, ln.iy+dj-1, ln.iz+dk-1)
						w := f.weights[idx] + ln.tx[di]*ln.ty[dj]*ln.tz[dk]
						f.weights[idx] = w
						if w >= threshold {
							f.mark(idx)
						}
					}
				}
			}
		}
	}
}

var dilateOffsets = [8][3]int{
	{-1, -1, -1}, {-1, -1, 0}, {-1, 0, -1}, {-1, 0, 0},
	{0, -1, -1}, {0, -1, 0}, {0, 0, -1}, {0, 0, 0},
}

// Dilate adds, for each originally marked voxel, the 8 voxels whose cube
// has it as a corner.
func (f *Field) Dilate() {
	n := len(f.marked)
	for k := 0; k < n; k++ {
		x, y, z := Coords(int(f.marked[k]))
		for _, o := range dilateOffsets {
			f.mark(Index(x+o[0], y+o[1], z+o[2]))
		}
	}
}
