package fluid

// Coefficients are the per-substep solver parameters.
type Coefficients struct {
	K           float32 // pressure stiffness
	K2          float32 // near-pressure stiffness on w^3
	Gamma       float32 // surface/elastic term along the normal difference
	C           float32 // viscosity along the pair axis
	RestDensity float32
}

// pairBatch caches per-pair quantities from the density pass for the
// force pass, four pairs at a time.
type pairBatch struct {
	w             [4]float32
	wnx, wny, wnz [4]float32
	rvn           [4]float32
}

// Solver runs substeps over a particle store and its pair list.
type Solver struct {
	ps      *Particles
	pairs   *Pairs
	lanes   int
	batches []pairBatch
}

// NewSolver binds a solver to its particles and pairs. lanes selects the
// 4-wide (4) or scalar (anything else) path.
func NewSolver(ps *Particles, pairs *Pairs, lanes int) *Solver {
	return &Solver{
		ps:      ps,
		pairs:   pairs,
		lanes:   lanes,
		batches: make([]pairBatch, (pairs.Cap()+3)/4),
	}
}

// PreStep divides velocities by the substep count.
func (s *Solver) PreStep(substeps int) {
	if substeps <= 0 {
		return
	}
	s.ps.ScaleVelocities(1 / float32(substeps))
}

// PostStep multiplies velocities back by the substep count.
func (s *Solver) PostStep(substeps int) {
	if substeps <= 0 {
		return
	}
	s.ps.ScaleVelocities(float32(substeps))
}

// clearAccumulators zeroes N and D for live particles and the sentinel.
func (s *Solver) clearAccumulators() {
	ps := s.ps
	m := ps.Count() + 1
	clear(ps.NX[:m])
	clear(ps.NY[:m])
	clear(ps.NZ[:m])
	clear(ps.D[:m])
	ps.P[ps.Count()] = 0
}

// Substep runs one density pass and one force pass.
func (s *Solver) Substep(co Coefficients) {
	ps := s.ps
	s.clearAccumulators()
	ps.placeSentinel()

	if s.lanes == 4 {
		padded := s.pairs.Pad(ps.Sentinel())
		s.densityPass4(padded)
	} else {
		s.densityPass1()
	}

	n := ps.Count()
	for i := 0; i < n; i++ {
		ps.NX[i] *= 1 / RadiusRatio
		ps.NY[i] *= 1 / RadiusRatio
		ps.NZ[i] *= 1 / RadiusRatio
		ps.P[i] = co.K * (ps.D[i] - co.RestDensity)
	}

	if s.lanes == 4 {
		s.forcePass4(co, (s.pairs.Len()+3)&^3)
	} else {
		s.forcePass1(co)
	}
	ps.placeSentinel()
}

// RefreshDensity recomputes only the densities from the current pairs.
func (s *Solver) RefreshDensity() {
	ps := s.ps
	m := ps.Count() + 1
	clear(ps.D[:m])
	ps.placeSentinel()
	A, B := s.pairs.A, s.pairs.B
	for k := 0; k < s.pairs.Len(); k++ {
		a, b := A[k], B[k]
		dx := ps.PX[a] - ps.PX[b]
		dy := ps.PY[a] - ps.PY[b]
		dz := ps.PZ[a] - ps.PZ[b]
		w := 1 - sqrt32(dx*dx+dy*dy+dz*dz)*InvRadius
		if w > 0 {
			ps.D[a] += w * w
			ps.D[b] += w * w
		}
	}
	ps.D[ps.Count()] = 0
}

func (s *Solver) densityPass4(padded int) {
	ps := s.ps
	A, B := s.pairs.A, s.pairs.B
	for k := 0; k < padded; k += 4 {
		bt := &s.batches[k>>2]
		a := A[k : k+4 : k+4]
		b := B[k : k+4 : k+4]

		var dx, dy, dz, invR [4]float32
		for l := 0; l < 4; l++ {
			dx[l] = ps.PX[a[l]] - ps.PX[b[l]]
			dy[l] = ps.PY[a[l]] - ps.PY[b[l]]
			dz[l] = ps.PZ[a[l]] - ps.PZ[b[l]]
		}
		for l := 0; l < 4; l++ {
			r := sqrt32(dx[l]*dx[l] + dy[l]*dy[l] + dz[l]*dz[l])
			invR[l] = 1 / max32(r, 1e-9)
			bt.w[l] = max32(0, 1-r*InvRadius)
		}
		for l := 0; l < 4; l++ {
			nx := dx[l] * invR[l]
			ny := dy[l] * invR[l]
			nz := dz[l] * invR[l]
			bt.rvn[l] = (ps.VX[a[l]]-ps.VX[b[l]])*nx +
				(ps.VY[a[l]]-ps.VY[b[l]])*ny +
				(ps.VZ[a[l]]-ps.VZ[b[l]])*nz
			w := bt.w[l]
			bt.wnx[l] = w * nx
			bt.wny[l] = w * ny
			bt.wnz[l] = w * nz
		}
		// Scatter lane by lane; a particle may appear in several lanes.
		for l := 0; l < 4; l++ {
			ia, ib := a[l], b[l]
			ww := bt.w[l] * bt.w[l]
			ps.NX[ia] += bt.wnx[l]
			ps.NY[ia] += bt.wny[l]
			ps.NZ[ia] += bt.wnz[l]
			ps.NX[ib] -= bt.wnx[l]
			ps.NY[ib] -= bt.wny[l]
			ps.NZ[ib] -= bt.wnz[l]
			ps.D[ia] += ww
			ps.D[ib] += ww
		}
	}
}

func (s *Solver) forcePass4(co Coefficients, padded int) {
	ps := s.ps
	A, B := s.pairs.A, s.pairs.B
	for k := 0; k < padded; k += 4 {
		bt := &s.batches[k>>2]
		a := A[k : k+4 : k+4]
		b := B[k : k+4 : k+4]

		var fx, fy, fz [4]float32
		for l := 0; l < 4; l++ {
			w := bt.w[l]
			p := ps.P[a[l]] + ps.P[b[l]] + co.K2*w*w*w
			q := p - co.C*bt.rvn[l]
			g := w * co.Gamma
			fx[l] = bt.wnx[l]*q + (ps.NX[a[l]]-ps.NX[b[l]])*g
			fy[l] = bt.wny[l]*q + (ps.NY[a[l]]-ps.NY[b[l]])*g
			fz[l] = bt.wnz[l]*q + (ps.NZ[a[l]]-ps.NZ[b[l]])*g
		}
		for l := 0; l < 4; l++ {
			ia, ib := a[l], b[l]
			ps.VX[ia] += fx[l]
			ps.VY[ia] += fy[l]
			ps.VZ[ia] += fz[l]
			ps.VX[ib] -= fx[l]
			ps.VY[ib] -= fy[l]
			ps.VZ[ib] -= fz[l]
		}
	}
}

func (s *Solver) densityPass1() {
	ps := s.ps
	A, B := s.pairs.A, s.pairs.B
	for k := 0; k < s.pairs.Len(); k++ {
		bt := &s.batches[k>>2]
		l := k & 3
		a, b := A[k], B[k]

		dx := ps.PX[a] - ps.PX[b]
		dy := ps.PY[a] - ps.PY[b]
		dz := ps.PZ[a] - ps.PZ[b]
		r := sqrt32(dx*dx + dy*dy + dz*dz)
		invR := 1 / max32(r, 1e-9)
		w := max32(0, 1-r*InvRadius)
		nx, ny, nz := dx*invR, dy*invR, dz*invR

		bt.w[l] = w
		bt.wnx[l], bt.wny[l], bt.wnz[l] = w*nx, w*ny, w*nz
		bt.rvn[l] = (ps.VX[a]-ps.VX[b])*nx + (ps.VY[a]-ps.VY[b])*ny + (ps.VZ[a]-ps.VZ[b])*nz

		ps.NX[a] += bt.wnx[l]
		ps.NY[a] += bt.wny[l]
		ps.NZ[a] += bt.wnz[l]
		ps.NX[b] -= bt.wnx[l]
		ps.NY[b] -= bt.wny[l]
		ps.NZ[b] -= bt.wnz[l]
		ps.D[a] += w * w
		ps.D[b] += w * w
	}
}

func (s *Solver) forcePass1(co Coefficients) {
	ps := s.ps
	A, B := s.pairs.A, s.pairs.B
	for k := 0; k < s.pairs.Len(); k++ {
		bt := &s.batches[k>>2]
		l := k & 3
		a, b := A[k], B[k]

		w := bt.w[l]
		p := ps.P[a] + ps.P[b] + co.K2*w*w*w
		q := p - co.C*bt.rvn[l]
		g := w * co.Gamma
		fx := bt.wnx[l]*q + (ps.NX[a]-ps.NX[b])*g
		fy := bt.wny[l]*q + (ps.NY[a]-ps.NY[b])*g
		fz := bt.wnz[l]*q + (ps.NZ[a]-ps.NZ[b])*g

		ps.VX[a] += fx
		ps.VY[a] += fy
		ps.VZ[a] += fz
		ps.VX[b] -= fx
		ps.VY[b] -= fy
		ps.VZ[b] -= fz
	}
}
