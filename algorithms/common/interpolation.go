package common

import "math"

// ParabolicShift returns the sub-sample offset of the extremum of the parabola
// through (−1, prev), (0, center), (+1, next).
//
// The offset is only trusted when it stays inside (−1, 1); otherwise 0 is returned,
// as it is for a flat neighbourhood.
func ParabolicShift(prev, center, next float64) float64 {
	a := next + prev - 2*center
	b := (next - prev) / 2
	if math.Abs(b) >= math.Abs(a) {
		return 0
	}
	shift := -b / a
	if math.IsNaN(shift) || math.IsInf(shift, 0) {
		return 0
	}
	return shift
}
