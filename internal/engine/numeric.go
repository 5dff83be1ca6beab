package engine

import "math"

// finiteNumber returns v, or fallback when v is NaN or infinite.
func finiteNumber(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// clampFinite coerces v to a finite number inside [lo, hi].
func clampFinite(v, lo, hi, fallback float64) float64 {
	v = finiteNumber(v, fallback)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundInt(v float64) int {
	return int(math.Round(finiteNumber(v, 0)))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
