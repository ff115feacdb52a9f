package fluid

// Hash constants.
const (
	hashOdd uint32 = 0x9e3779b9
	hashAdd uint32 = 0x2d1c40e2
)

// DefaultHashShift and DefaultCellCapacity size the bucket table.
const (
	DefaultHashShift    = 18
	DefaultCellCapacity = 128
)

// neighborOffsets lists the 27 cells of a 3x3x3 neighborhood, x fastest,
// padded to 28 so it splits into seven 4-wide groups. The last lane
// repeats the center and is never gathered.
var neighborOffsets = func() [28][3]int32 {
	var offs [28][3]int32
	n := 0
	for z := int32(-1); z <= 1; z++ {
		for y := int32(-1); y <= 1; y++ {
			for x := int32(-1); x <= 1; x++ {
				offs[n] = [3]int32{x, y, z}
				n++
			}
		}
	}
	return offs
}()

// HashGrid is a fixed-size spatial hash. Each bucket stores up to
// cellCapacity particle references; excess references are dropped.
type HashGrid struct {
	mask     uint32
	capacity int
	refs     []int32 // buckets*capacity
	counts   []int32
	guard    *Guard

	gathered [28]uint32 // bucket indices seen in the current Lookup27
}

// NewHashGrid creates a grid with 1<<shift buckets.
func NewHashGrid(shift, cellCapacity int, guard *Guard) *HashGrid {
	if shift <= 0 {
		shift = DefaultHashShift
	}
	if cellCapacity <= 0 {
		cellCapacity = DefaultCellCapacity
	}
	buckets := 1 << shift
	return &HashGrid{
		mask:     uint32(buckets - 1),
		capacity: cellCapacity,
		refs:     make([]int32, buckets*cellCapacity),
		counts:   make([]int32, buckets),
		guard:    guard,
	}
}

// Buckets returns the number of buckets.
func (g *HashGrid) Buckets() int { return len(g.counts) }

// CellCapacity returns the per-bucket capacity.
func (g *HashGrid) CellCapacity() int { return g.capacity }

// Clear empties every bucket.
func (g *HashGrid) Clear() {
	clear(g.counts)
}

// CellOf returns the integer cell containing a point.
func CellOf(x, y, z float32) [3]int32 {
	return [3]int32{
		floorInt32(x * InvRadius),
		floorInt32(y * InvRadius),
		floorInt32(z * InvRadius),
	}
}

// Hash maps a cell to its bucket index. Arithmetic wraps on uint32 so
// negative coordinates hash like any other.
func (g *HashGrid) Hash(cell [3]int32) uint32 {
	return hashCell(cell[0], cell[1], cell[2], g.mask)
}

func hashCell(x, y, z int32, mask uint32) uint32 {
	h := uint32(x)
	h = h*hashOdd + hashAdd
	h = h<<5 ^ h>>27
	h ^= uint32(y)
	h = h*hashOdd + hashAdd
	h = h<<5 ^ h>>27
	h ^= uint32(z)
	return h & mask
}

// hash4 hashes four cells at once.
func hash4(xs, ys, zs *[4]int32, mask uint32, out *[4]uint32) {
	var h [4]uint32
	for l := 0; l < 4; l++ {
		h[l] = uint32(xs[l])
	}
	for l := 0; l < 4; l++ {
		h[l] = h[l]*hashOdd + hashAdd
		h[l] = h[l]<<5 ^ h[l]>>27
		h[l] ^= uint32(ys[l])
	}
	for l := 0; l < 4; l++ {
		h[l] = h[l]*hashOdd + hashAdd
		h[l] = h[l]<<5 ^ h[l]>>27
		h[l] ^= uint32(zs[l])
		out[l] = h[l] & mask
	}
}

// Insert appends a reference to the bucket of cell.
func (g *HashGrid) Insert(ref int32, cell [3]int32) {
	b := g.Hash(cell)
	c := g.counts[b]
	if int(c) >= g.capacity {
		g.guard.Report(OverflowBucket, g.capacity)
		return
	}
	g.refs[int(b)*g.capacity+int(c)] = ref
	g.counts[b] = c + 1
}

// BucketLen returns the number of references stored for cell.
func (g *HashGrid) BucketLen(cell [3]int32) int {
	return int(g.counts[g.Hash(cell)])
}

// Lookup27 appends the contents of the 27 buckets around cell to dst.
// A bucket shared by two neighbor cells is gathered once.
func (g *HashGrid) Lookup27(cell [3]int32, dst []int32) []int32 {
	var xs, ys, zs [4]int32
	var bs [4]uint32
	seen := 0
	for group := 0; group < 7; group++ {
		for l := 0; l < 4; l++ {
			off := neighborOffsets[group*4+l]
			xs[l] = cell[0] + off[0]
			ys[l] = cell[1] + off[1]
			zs[l] = cell[2] + off[2]
		}
		hash4(&xs, &ys, &zs, g.mask, &bs)
		lanes := 4
		if group == 6 {
			lanes = 3
		}
	lane:
		for l := 0; l < lanes; l++ {
			b := bs[l]
			for s := 0; s < seen; s++ {
				if g.gathered[s] == b {
					continue lane
				}
			}
			g.gathered[seen] = b
			seen++
			base := int(b) * g.capacity
			dst = append(dst, g.refs[base:base+int(g.counts[b])]...)
		}
	}
	return dst
}
