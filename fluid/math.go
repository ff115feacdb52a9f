package fluid

import "math"

func sqrt32(x float32) float32 { return float32(math.Sqrt(float64(x))) }

func sqrt64(x float64) float64 { return math.Sqrt(x) }

// floorInt32 is floor for cell coordinates; int32 conversion truncates
// toward zero, so negative values are adjusted.
func floorInt32(x float32) int32 {
	i := int32(x)
	if x < float32(i) {
		i--
	}
	return i
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
