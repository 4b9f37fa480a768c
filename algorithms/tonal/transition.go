package tonal

import (
	"math"
)

// transitionModel is the banded log-probability transition structure of the
// pitch HMM.
//
// Decoding runs over 2*numBins hidden states: voiced pitch bins
// 0..numBins-1 and, for every bin k, an unvoiced copy numBins+k. Both halves
// share the same local pitch band: a state at bin j moves to bin k with
// |k-j| <= half using triangular weights normalized over the row (truncated
// at the axis ends). The move keeps its voicing with 1-switchProb and flips
// it with switchProb. Unvoiced copies emit the unvoiced observation mass
// spread evenly over the copies, so staying unvoiced is never cheaper than
// staying on a pitch for the same evidence.
//
// The public track knows a single unvoiced state; see publicState.
type transitionModel struct {
	numBins int
	half    int

	logTriangle []float64 // log triangle weight, indexed by k-j+half
	logRowScale []float64 // -log(row sum) per source bin

	logStay   float64 // log(1-switchProb)
	logSwitch float64 // log(switchProb)
}

func newTransitionModel(numBins, width int, switchProb float64) *transitionModel {
	half := width / 2
	tm := &transitionModel{
		numBins:     numBins,
		half:        half,
		logTriangle: make([]float64, 2*half+1),
		logRowScale: make([]float64, numBins),
		logStay:     math.Log1p(-switchProb),
		logSwitch:   math.Log(switchProb),
	}

	triangle := make([]float64, 2*half+1)
	peak := float64(width+1) / 2
	for i := range triangle {
		triangle[i] = 1 - math.Abs(float64(i-half))/peak
		tm.logTriangle[i] = math.Log(triangle[i])
	}

	for j := range numBins {
		sum := 0.0
		for k := max(j-half, 0); k <= min(j+half, numBins-1); k++ {
			sum += triangle[k-j+half]
		}
		tm.logRowScale[j] = -math.Log(sum)
	}

	return tm
}

// numStates returns the size of the hidden state space
func (tm *transitionModel) numStates() int {
	return 2 * tm.numBins
}

// publicState folds every unvoiced copy into the single unvoiced state
// numBins of the result
func (tm *transitionModel) publicState(s int) int {
	return min(s, tm.numBins)
}

// logProb returns log P(to | from) over hidden states; moves outside the
// pitch band are -Inf
func (tm *transitionModel) logProb(from, to int) float64 {
	fromBin, fromVoiced := from%tm.numBins, from < tm.numBins
	toBin, toVoiced := to%tm.numBins, to < tm.numBins

	d := toBin - fromBin
	if d < -tm.half || d > tm.half {
		return math.Inf(-1)
	}

	p := tm.logTriangle[d+tm.half] + tm.logRowScale[fromBin]
	if fromVoiced == toVoiced {
		return p + tm.logStay
	}
	return p + tm.logSwitch
}
