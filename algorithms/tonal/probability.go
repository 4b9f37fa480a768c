package tonal

import (
	"math"

	"github.com/RyanBlaney/sonido-pyin/algorithms/common"
	"github.com/RyanBlaney/sonido-pyin/algorithms/stats"
)

// candidateMass distributes the threshold prior over a frame's candidates.
//
// For each threshold the surviving candidates (Value below it) share that
// threshold's prior mass by a Boltzmann distribution over their lag order.
// A threshold nobody survives hands NoTroughProb of its mass to the
// candidate with the lowest Value.
func (t *Tracker) candidateMass(candidates []Candidate) []float64 {
	mass := make([]float64, len(candidates))
	if len(candidates) == 0 {
		return mass
	}

	values := make([]float64, len(candidates))
	for i, c := range candidates {
		values[i] = c.Value
	}
	best := common.ArgMin(values)

	lambda := t.config.BoltzmannParameter
	survivors := make([]int, 0, len(candidates))
	for i, beta := range t.prior.Mass {
		upper := t.prior.Upper(i)

		survivors = survivors[:0]
		for j, v := range values {
			if v < upper {
				survivors = append(survivors, j)
			}
		}

		if len(survivors) == 0 {
			mass[best] += t.config.NoTroughProb * beta
			continue
		}
		for k, j := range survivors {
			mass[j] += beta * stats.BoltzmannPMF(k, lambda, len(survivors))
		}
	}

	return mass
}

// pitchBin maps a frequency to the nearest pitch bin, clamped to the axis
func (t *Tracker) pitchBin(freq float64) int {
	bins := float64(12*t.layout.binsPerSemitone) * math.Log2(freq/t.config.FMin)
	k := int(math.Round(bins))
	return min(max(k, 0), t.layout.numBins-1)
}

// BinFrequency returns the center frequency (Hz) of pitch bin k
func (t *Tracker) BinFrequency(k int) float64 {
	return t.config.FMin * math.Exp2(float64(k)/float64(12*t.layout.binsPerSemitone))
}

// NumBins returns the number of voiced pitch bins. Observations and states
// use one more slot, at index NumBins, for the unvoiced state.
func (t *Tracker) NumBins() int {
	return t.layout.numBins
}

// Observation converts a frame's candidates into a probability distribution
// over the pitch bins plus the unvoiced state (last element). The result
// always sums to one; with no candidates all mass is unvoiced.
func (t *Tracker) Observation(candidates []Candidate) []float64 {
	unvoiced := t.layout.numBins
	obs := make([]float64, unvoiced+1)

	mass := t.candidateMass(candidates)
	for i, c := range candidates {
		if math.IsNaN(c.Frequency) || c.Frequency <= 0 {
			continue
		}
		// Accumulate: several troughs may round into one bin
		obs[t.pitchBin(c.Frequency)] += mass[i]
	}

	voiced := common.Sum(obs[:unvoiced])
	switch {
	case math.IsNaN(voiced) || math.IsInf(voiced, 0):
		clear(obs)
		voiced = 0
	case voiced > 1:
		for k := range unvoiced {
			obs[k] /= voiced
		}
		voiced = 1
	}
	obs[unvoiced] = 1 - common.Clip(voiced, 0, 1)

	return obs
}

// voicedMass returns the total voiced probability of an observation
func voicedMass(obs []float64) float64 {
	return common.Clip(common.Sum(obs[:len(obs)-1]), 0, 1)
}
