package filters

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// DefaultQ is the quality factor used when none is given
const DefaultQ = 1.0

// ErrInvalidQ is returned for a non-positive or non-finite quality factor
var ErrInvalidQ = errors.New("invalid filter quality factor")

// BiquadType selects the cookbook response of a Biquad
type BiquadType int

const (
	// HighPass removes content below the cutoff (a "low cut")
	HighPass BiquadType = iota
	// LowPass removes content above the cutoff (a "high cut")
	LowPass
)

func (t BiquadType) String() string {
	switch t {
	case HighPass:
		return "highpass"
	case LowPass:
		return "lowpass"
	default:
		return "unknown"
	}
}

// Biquad is a second order IIR section designed with Robert Bristow-Johnson's
// cookbook formulae.
//
// References:
// - Bristow-Johnson, R. "Cookbook formulae for audio EQ biquad filter coefficients", https://webaudio.github.io/Audio-EQ-Cookbook/audio-eq-cookbook.html
type Biquad struct {
	sampleRate int

	// Coefficients normalized by a0
	b0, b1, b2 float64
	a1, a2     float64

	// Transposed direct form II state
	z1, z2 float64
}

// NewBiquad designs a high-pass or low-pass section with its -3dB corner
// (for q = 1/√2) at cutoff Hz. Higher q gives a sharper, resonant knee.
func NewBiquad(kind BiquadType, sampleRate int, cutoff, q float64) (*Biquad, error) {
	if sampleRate <= 0 || !(cutoff > 0) || cutoff >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("%w: %g Hz at %d Hz", ErrInvalidCutoff, cutoff, sampleRate)
	}
	if !(q > 0) || math.IsInf(q, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidQ, q)
	}

	w0 := 2 * math.Pi * cutoff / float64(sampleRate)
	cosW0, sinW0 := math.Cos(w0), math.Sin(w0)
	alpha := sinW0 / (2 * q)

	bq := &Biquad{sampleRate: sampleRate}

	var b0, b1, b2 float64
	switch kind {
	case HighPass:
		b0 = (1 + cosW0) / 2
		b1 = -(1 + cosW0)
		b2 = (1 + cosW0) / 2
	case LowPass:
		b0 = (1 - cosW0) / 2
		b1 = 1 - cosW0
		b2 = (1 - cosW0) / 2
	default:
		return nil, fmt.Errorf("unsupported biquad type %d", kind)
	}

	a0 := 1 + alpha
	bq.b0, bq.b1, bq.b2 = b0/a0, b1/a0, b2/a0
	bq.a1 = -2 * cosW0 / a0
	bq.a2 = (1 - alpha) / a0

	return bq, nil
}

// Process filters a single sample
func (bq *Biquad) Process(x float64) float64 {
	y := bq.b0*x + bq.z1
	bq.z1 = bq.b1*x - bq.a1*y + bq.z2
	bq.z2 = bq.b2*x - bq.a2*y
	return y
}

// ProcessInPlace filters a float32 buffer, carrying state across calls
func (bq *Biquad) ProcessInPlace(samples []float32) {
	for i, s := range samples {
		samples[i] = float32(bq.Process(float64(s)))
	}
}

// Reset clears the filter state
func (bq *Biquad) Reset() {
	bq.z1, bq.z2 = 0, 0
}

// Magnitude returns |H(e^jw)| at frequency Hz
func (bq *Biquad) Magnitude(frequency float64) float64 {
	w := 2 * math.Pi * frequency / float64(bq.sampleRate)
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	num := complex(bq.b0, 0) + complex(bq.b1, 0)*z1 + complex(bq.b2, 0)*z2
	den := 1 + complex(bq.a1, 0)*z1 + complex(bq.a2, 0)*z2
	return cmplx.Abs(num / den)
}
