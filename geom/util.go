package geom

import "math"

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// NormalizeAngle wraps a to [-Pi, Pi]. Infinite input yields NaN.
func NormalizeAngle(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}
