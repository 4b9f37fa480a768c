package tonal

import (
	"github.com/RyanBlaney/sonido-pyin/algorithms/common"
)

// Candidate is one trough of a frame's normalized difference function
type Candidate struct {
	Lag        int     `json:"lag"`         // Integer lag of the trough (samples)
	RefinedLag float64 `json:"refined_lag"` // Lag after parabolic refinement
	Frequency  float64 `json:"frequency"`   // SampleRate / RefinedLag (Hz)
	Value      float64 `json:"value"`       // Normalized difference at Lag
}

// findTroughs returns the indices of local minima of y. The first and last
// samples count when they sit strictly below their only neighbour; interior
// plateaus report their first sample.
func findTroughs(y []float64) []int {
	n := len(y)
	if n < 2 {
		return nil
	}

	var troughs []int
	if y[0] < y[1] {
		troughs = append(troughs, 0)
	}
	for i := 1; i < n-1; i++ {
		if y[i] < y[i-1] && y[i] <= y[i+1] {
			troughs = append(troughs, i)
		}
	}
	if y[n-1] < y[n-2] {
		troughs = append(troughs, n-1)
	}

	return troughs
}

// extractCandidates turns the normalized difference function of one frame
// into refined pitch candidates ordered by lag
func (t *Tracker) extractCandidates(cmndf []float64) []Candidate {
	lo, hi := t.layout.minPeriod, t.layout.maxPeriod
	y := cmndf[lo : hi+1]

	troughs := findTroughs(y)
	if len(troughs) == 0 {
		return nil
	}

	sr := float64(t.config.SampleRate)
	candidates := make([]Candidate, 0, len(troughs))
	for _, i := range troughs {
		if y[i] >= t.config.TroughCeiling {
			continue
		}

		shift := 0.0
		if i > 0 && i < len(y)-1 {
			shift = common.ParabolicShift(y[i-1], y[i], y[i+1])
		}
		refined := float64(lo+i) + shift

		candidates = append(candidates, Candidate{
			Lag:        lo + i,
			RefinedLag: refined,
			Frequency:  sr / refined,
			Value:      y[i],
		})
	}

	return candidates
}

// Candidates returns the pitch candidates of a single frame of FrameLength
// samples. Frames holding NaN or Inf samples, or of the wrong length, have
// no candidates.
func (t *Tracker) Candidates(frame []float64) []Candidate {
	candidates, _ := t.frameCandidates(frame)
	return candidates
}

// frameCandidates also reports whether the frame was numerically degenerate
func (t *Tracker) frameCandidates(frame []float64) ([]Candidate, bool) {
	if len(frame) != t.config.FrameLength || !common.AllFinite(frame) {
		return nil, true
	}

	cmndf, err := t.difference.Normalized(frame)
	if err != nil || !common.AllFinite(cmndf) {
		return nil, true
	}

	return t.extractCandidates(cmndf), false
}
