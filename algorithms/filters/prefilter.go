package filters

import (
	"fmt"
)

// Prefilter is the optional conditioning applied to decoded audio before
// pitch tracking. Zero values disable a stage; stages run in the order DC
// blocker, low cut, high cut.
type Prefilter struct {
	DCCutoff float64 `json:"dc_cutoff,omitempty" yaml:"dc_cutoff,omitempty"` // DC blocker corner (Hz)
	LowCut   float64 `json:"low_cut,omitempty" yaml:"low_cut,omitempty"`     // High-pass corner (Hz)
	HighCut  float64 `json:"high_cut,omitempty" yaml:"high_cut,omitempty"`   // Low-pass corner (Hz)
	Q        float64 `json:"q,omitempty" yaml:"q,omitempty"`                 // Quality factor of both cuts, 0 means DefaultQ
}

// Enabled reports whether any stage is active
func (p Prefilter) Enabled() bool {
	return p.DCCutoff > 0 || p.LowCut > 0 || p.HighCut > 0
}

// Apply returns a filtered copy of samples. Samples is returned unchanged
// when no stage is enabled.
func (p Prefilter) Apply(samples []float32, sampleRate int) ([]float32, error) {
	if p.DCCutoff < 0 || p.LowCut < 0 || p.HighCut < 0 {
		return nil, fmt.Errorf("%w: cutoffs must not be negative", ErrInvalidCutoff)
	}
	if p.Q < 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidQ, p.Q)
	}
	if !p.Enabled() {
		return samples, nil
	}
	if p.LowCut > 0 && p.HighCut > 0 && p.LowCut >= p.HighCut {
		return nil, fmt.Errorf("%w: low cut %g Hz must be below high cut %g Hz", ErrInvalidCutoff, p.LowCut, p.HighCut)
	}

	q := p.Q
	if q == 0 {
		q = DefaultQ
	}

	var stages []func([]float32)
	if p.DCCutoff > 0 {
		dc, err := NewDCRemoval(sampleRate, p.DCCutoff)
		if err != nil {
			return nil, fmt.Errorf("dc blocker: %w", err)
		}
		stages = append(stages, dc.ProcessInPlace)
	}
	if p.LowCut > 0 {
		hp, err := NewBiquad(HighPass, sampleRate, p.LowCut, q)
		if err != nil {
			return nil, fmt.Errorf("low cut: %w", err)
		}
		stages = append(stages, hp.ProcessInPlace)
	}
	if p.HighCut > 0 {
		lp, err := NewBiquad(LowPass, sampleRate, p.HighCut, q)
		if err != nil {
			return nil, fmt.Errorf("high cut: %w", err)
		}
		stages = append(stages, lp.ProcessInPlace)
	}

	out := make([]float32, len(samples))
	copy(out, samples)
	for _, stage := range stages {
		stage(out)
	}
	return out, nil
}
