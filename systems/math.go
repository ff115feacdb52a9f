package systems

import "math"

// normalizeHeading wraps an angle to [0, 2*Pi).
func normalizeHeading(h float32) float32 {
	const twoPi = 2 * math.Pi
	for h < 0 {
		h += twoPi
	}
	for h >= twoPi {
		h -= twoPi
	}
	return h
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func sincos32(a float32) (s, c float32) {
	sf, cf := math.Sincos(float64(a))
	return float32(sf), float32(cf)
}
