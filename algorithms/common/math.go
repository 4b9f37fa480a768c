package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Tiny is the smallest positive normal float64. It keeps log() finite and
// guards divisions in the difference-function normalization.
const Tiny = 0x1p-1022

// Clip limits x to [lo, hi]
func Clip(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// SafeLog returns log(p + Tiny) so that zero probabilities map to a large
// negative but finite value
func SafeLog(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		p = 0
	}
	return math.Log(p + Tiny)
}

// AllFinite reports whether every value is neither NaN nor ±Inf
func AllFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Sum returns the sum of data using gonum
func Sum(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Sum(data)
}

// ArgMin returns the index of the smallest value (lowest index on ties), -1 if empty
func ArgMin(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MinIdx(data)
}

// ArgMax returns the index of the largest value (lowest index on ties), -1 if empty
func ArgMax(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MaxIdx(data)
}

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// SemitonesBetween returns 12*log2(hi/lo)
func SemitonesBetween(lo, hi float64) float64 {
	return 12 * math.Log2(hi/lo)
}
