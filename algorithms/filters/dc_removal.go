package filters

import (
	"errors"
	"math"
)

// DefaultDCCutoff is the -3dB corner used by the tracker front end. It sits
// well below the lowest pitch a YIN frame can resolve.
const DefaultDCCutoff = 10.0

// ErrInvalidCutoff is returned when the cutoff is not inside (0, sampleRate/2)
var ErrInvalidCutoff = errors.New("invalid filter cutoff")

// DCRemoval is a one-pole DC blocker
//
//	y[n] = x[n] - x[n-1] + R*y[n-1]
//
// A constant offset inflates the energy terms of the difference function
// and raises every trough, so decoded audio is optionally passed through
// this filter before tracking.
//
// References:
// - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications", DC Blocker
type DCRemoval struct {
	pole float64 // R, 0 < R < 1

	x1 float64
	y1 float64
}

// NewDCRemoval builds a DC blocker with a -3dB corner near cutoff Hz
func NewDCRemoval(sampleRate int, cutoff float64) (*DCRemoval, error) {
	if sampleRate <= 0 || cutoff <= 0 || cutoff >= float64(sampleRate)/2 {
		return nil, ErrInvalidCutoff
	}

	// Small angle approximation of the pole radius
	pole := 1 - 2*math.Pi*cutoff/float64(sampleRate)
	pole = min(max(pole, 0.001), 0.9999)

	return &DCRemoval{pole: pole}, nil
}

// Pole returns R
func (dc *DCRemoval) Pole() float64 {
	return dc.pole
}

// Process filters a single sample
func (dc *DCRemoval) Process(x float64) float64 {
	y := x - dc.x1 + dc.pole*dc.y1
	dc.x1 = x
	dc.y1 = y
	return y
}

// ProcessInPlace filters a float32 buffer, carrying state across calls
func (dc *DCRemoval) ProcessInPlace(samples []float32) {
	for i, s := range samples {
		samples[i] = float32(dc.Process(float64(s)))
	}
}

// Reset clears the filter state. Call it between discontinuous signals.
func (dc *DCRemoval) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}

// Magnitude returns |H(e^jw)| at frequency Hz
func (dc *DCRemoval) Magnitude(frequency float64, sampleRate int) float64 {
	w := 2 * math.Pi * frequency / float64(sampleRate)
	cosW, sinW := math.Cos(w), math.Sin(w)

	num := math.Hypot(1-cosW, sinW)
	den := math.Hypot(1-dc.pole*cosW, dc.pole*sinW)
	if den == 0 {
		return 0
	}
	return num / den
}
