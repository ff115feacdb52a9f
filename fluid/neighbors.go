package fluid

// DefaultMaxPairs bounds the pair list.
const DefaultMaxPairs = 1 << 20

// Pairs is the list of interacting particle pairs. A and B carry three
// slots past the capacity so the list can be padded to a multiple of 4.
type Pairs struct {
	A, B  []int32
	n     int
	max   int
	guard *Guard
}

// NewPairs allocates a pair list holding up to maxPairs pairs.
func NewPairs(maxPairs int, guard *Guard) *Pairs {
	if maxPairs <= 0 {
		maxPairs = DefaultMaxPairs
	}
	return &Pairs{
		A:     make([]int32, maxPairs+3),
		B:     make([]int32, maxPairs+3),
		max:   maxPairs,
		guard: guard,
	}
}

// Len returns the number of real pairs.
func (p *Pairs) Len() int { return p.n }

// Cap returns the pair capacity.
func (p *Pairs) Cap() int { return p.max }

// Reset empties the list.
func (p *Pairs) Reset() { p.n = 0 }

// Add appends a pair; when the list is full the pair is dropped.
func (p *Pairs) Add(a, b int32) bool {
	if p.n >= p.max {
		p.guard.Report(OverflowPairs, p.max)
		return false
	}
	p.A[p.n] = a
	p.B[p.n] = b
	p.n++
	return true
}

// Pad writes sentinel self-pairs after Len up to the next multiple of 4
// and returns the padded length. Padding is not counted by Len.
func (p *Pairs) Pad(sentinel int32) int {
	padded := (p.n + 3) &^ 3
	for k := p.n; k < padded; k++ {
		p.A[k] = sentinel
		p.B[k] = sentinel
	}
	return padded
}

// NeighborBuilder rebuilds the pair list from particle positions.
type NeighborBuilder struct {
	grid  *HashGrid
	lanes int
	cand  []int32
}

// NewNeighborBuilder creates a builder. lanes is 4 for batched tests,
// anything else selects the scalar path.
func NewNeighborBuilder(grid *HashGrid, lanes int) *NeighborBuilder {
	return &NeighborBuilder{
		grid:  grid,
		lanes: lanes,
		cand:  make([]int32, 0, 27*grid.CellCapacity()+3),
	}
}

// Grid returns the hash grid used by the builder.
func (nb *NeighborBuilder) Grid() *HashGrid { return nb.grid }

// BuildNeighbors is a convenience wrapper around NeighborBuilder.Build.
func BuildNeighbors(ps *Particles, grid *HashGrid, pairs *Pairs, lanes int) {
	NewNeighborBuilder(grid, lanes).Build(ps, pairs)
}

// Build clears the grid and the pair list, then inserts particles one by
// one. Each particle is paired with already-inserted particles in its
// 27-cell neighborhood, so every unordered pair is found exactly once.
func (nb *NeighborBuilder) Build(ps *Particles, pairs *Pairs) {
	nb.grid.Clear()
	pairs.Reset()
	ps.placeSentinel()
	sentinel := ps.Sentinel()

	n := ps.Count()
	for i := 0; i < n; i++ {
		cell := CellOf(ps.PX[i], ps.PY[i], ps.PZ[i])
		nb.cand = nb.grid.Lookup27(cell, nb.cand[:0])

		if nb.lanes == 4 {
			for len(nb.cand)&3 != 0 {
				nb.cand = append(nb.cand, sentinel)
			}
			nb.test4(ps, pairs, int32(i))
		} else {
			nb.test1(ps, pairs, int32(i))
		}

		nb.grid.Insert(int32(i), cell)
	}
}

func (nb *NeighborBuilder) test1(ps *Particles, pairs *Pairs, i int32) {
	px, py, pz := ps.PX[i], ps.PY[i], ps.PZ[i]
	for _, j := range nb.cand {
		dx := px - ps.PX[j]
		dy := py - ps.PY[j]
		dz := pz - ps.PZ[j]
		if dx*dx+dy*dy+dz*dz < FatRadius2 {
			pairs.Add(i, j)
		}
	}
}

func (nb *NeighborBuilder) test4(ps *Particles, pairs *Pairs, i int32) {
	px, py, pz := ps.PX[i], ps.PY[i], ps.PZ[i]
	var r2 [4]float32
	for k := 0; k < len(nb.cand); k += 4 {
		c := nb.cand[k : k+4 : k+4]
		for l := 0; l < 4; l++ {
			dx := px - ps.PX[c[l]]
			dy := py - ps.PY[c[l]]
			dz := pz - ps.PZ[c[l]]
			r2[l] = dx*dx + dy*dy + dz*dz
		}
		for l := 0; l < 4; l++ {
			if r2[l] < FatRadius2 {
				pairs.Add(i, c[l])
			}
		}
	}
}
