package surface

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// NormalPasses is the number of normal averaging iterations.
const NormalPasses = 4

// Smoother relaxes mesh vertices toward their area-weighted one-ring
// centroid and computes averaged vertex normals. Scratch buffers are
// reused across rebuilds.
type Smoother struct {
	weight []float32
	acc    []mgl32.Vec3
	tmp    []mgl32.Vec3
	nrm    []mgl32.Vec3
}

// NewSmoother allocates scratch space for up to maxVerts vertices.
func NewSmoother(maxVerts int) *Smoother {
	if maxVerts <= 0 {
		maxVerts = DefaultMaxVertices
	}
	return &Smoother{
		weight: make([]float32, maxVerts),
		acc:    make([]mgl32.Vec3, maxVerts),
		tmp:    make([]mgl32.Vec3, maxVerts),
		nrm:    make([]mgl32.Vec3, maxVerts),
	}
}

// relax accumulates area weights and weighted opposite-edge sums from src
// and writes (src + acc/weight)/2 into dst.
func (s *Smoother) relax(idx []uint32, src, dst []mgl32.Vec3) {
	n := len(src)
	weight, acc := s.weight[:n], s.acc[:n]
	clear(weight)
	clear(acc)

	for t := 0; t+2 < len(idx); t += 3 {
		a, b, c := idx[t], idx[t+1], idx[t+2]
		pa, pb, pc := src[a], src[b], src[c]
		area := pb.Sub(pa).Cross(pc.Sub(pa)).Len()
		h := 0.5 * area
		weight[a] += area
		weight[b] += area
		weight[c] += area
		acc[a] = acc[a].Add(pb.Add(pc).Mul(h))
		acc[b] = acc[b].Add(pc.Add(pa).Mul(h))
		acc[c] = acc[c].Add(pa.Add(pb).Mul(h))
	}

	for i := range dst {
		var inv float32
		if weight[i] != 0 {
			inv = 1 / weight[i]
		}
		dst[i] = src[i].Add(acc[i].Mul(inv)).Mul(0.5)
	}
}

// Smooth runs two relaxation passes over m and fills m.Normals.
func (s *Smoother) Smooth(m *Mesh) {
	n := len(m.Positions)
	if n == 0 {
		m.Normals = m.Normals[:0]
		return
	}
	tmp := s.tmp[:n]
	s.relax(m.Indices, m.Positions, tmp)
	s.relax(m.Indices, tmp, m.Positions)
	s.normals(m)
}

func (s *Smoother) normals(m *Mesh) {
	n := len(m.Positions)
	idx := m.Indices
	sum := s.nrm[:n]
	clear(sum)
	for t := 0; t+2 < len(idx); t += 3 {
		a, b, c := idx[t], idx[t+1], idx[t+2]
		pa := m.Positions[a]
		fn := m.Positions[b].Sub(pa).Cross(m.Positions[c].Sub(pa))
		sum[a] = sum[a].Add(fn)
		sum[b] = sum[b].Add(fn)
		sum[c] = sum[c].Add(fn)
	}

	unit := s.tmp[:n]
	for pass := 0; pass < NormalPasses; pass++ {
		for i, v := range sum {
			unit[i] = v.Mul(1 / float32(math.Sqrt(float64(v.Dot(v)+1e-9))))
		}
		clear(sum)
		for t := 0; t+2 < len(idx); t += 3 {
			a, b, c := idx[t], idx[t+1], idx[t+2]
			fn := unit[a].Add(unit[b]).Add(unit[c])
			sum[a] = sum[a].Add(fn)
			sum[b] = sum[b].Add(fn)
			sum[c] = sum[c].Add(fn)
		}
	}

	m.Normals = m.Normals[:n]
	for i, v := range sum {
		if l := v.Len(); l > 0 {
			m.Normals[i] = v.Mul(1 / l)
		} else {
			m.Normals[i] = mgl32.Vec3{}
		}
	}
}
