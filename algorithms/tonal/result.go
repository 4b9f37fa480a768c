package tonal

import (
	"math"

	"github.com/RyanBlaney/sonido-pyin/algorithms/common"
)

// Result is a decoded pitch track with one entry per frame in every slice
type Result struct {
	F0         []float64 `json:"f0"`          // Pitch in Hz, FillUnvoiced (NaN) where unvoiced
	VoicedFlag []bool    `json:"voiced_flag"` // Decoded state is a pitch bin
	VoicedProb []float64 `json:"voiced_prob"` // Voiced observation mass, in [0, 1]
	Times      []float64 `json:"times"`       // Frame center times (s)
	States     []int     `json:"states"`      // Decoded HMM states, NumBins() is unvoiced
}

// Len returns the number of frames
func (r *Result) Len() int {
	return len(r.F0)
}

// VoicedCount returns how many frames were decoded as voiced
func (r *Result) VoicedCount() int {
	count := 0
	for _, v := range r.VoicedFlag {
		if v {
			count++
		}
	}
	return count
}

// MeanVoicedF0 returns the mean pitch over voiced frames, NaN if there are none
func (r *Result) MeanVoicedF0() float64 {
	voiced := make([]float64, 0, len(r.F0))
	for i, f := range r.F0 {
		if r.VoicedFlag[i] {
			voiced = append(voiced, f)
		}
	}
	if len(voiced) == 0 {
		return math.NaN()
	}
	return common.Mean(voiced)
}

// assemble maps decoded hidden states back to Hz and attaches the voiced
// mass of each frame's observation, independent of the decoded state
func (t *Tracker) assemble(path []int, observations [][]float64, times []float64) *Result {
	n := len(path)
	res := &Result{
		F0:         make([]float64, n),
		VoicedFlag: make([]bool, n),
		VoicedProb: make([]float64, n),
		Times:      times,
		States:     make([]int, n),
	}

	for i, hidden := range path {
		s := t.transition.publicState(hidden)
		res.States[i] = s
		res.VoicedProb[i] = voicedMass(observations[i])
		if s < t.layout.numBins {
			res.F0[i] = t.BinFrequency(s)
			res.VoicedFlag[i] = true
		} else {
			res.F0[i] = t.layout.fill
		}
	}

	return res
}
