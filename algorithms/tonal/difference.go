package tonal

import (
	"math"

	"github.com/RyanBlaney/sonido-pyin/algorithms/common"
	"github.com/RyanBlaney/sonido-pyin/algorithms/spectral"
)

// snapThreshold zeroes autocorrelation and energy terms that are pure FFT
// round-off, so that exact silence stays exactly zero
const snapThreshold = 1e-6

// DifferenceFunction computes the YIN difference function and its cumulative
// mean normalized form for single frames.
//
// For a frame x, integration window W and lag τ:
//
//	d(τ)  = Σ_{j<W} (x_j - x_{j+τ})² = E(0) + E(τ) - 2 r(τ)
//	d'(τ) = d(τ) / ((1/τ) Σ_{k=1..τ} d(k)),  d'(0) = 1
//
// where r is the windowed autocorrelation (computed by FFT) and E(τ) the
// energy of x[τ:τ+W].
//
// References:
// - de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental frequency estimator for speech and music"
type DifferenceFunction struct {
	window int
	maxLag int
	fft    *spectral.FFT
}

// NewDifferenceFunction creates a difference function over lags 0..maxLag
// with the given integration window
func NewDifferenceFunction(window, maxLag int) *DifferenceFunction {
	return &DifferenceFunction{
		window: window,
		maxLag: maxLag,
		fft:    spectral.NewFFT(),
	}
}

// Raw returns d(τ) for τ = 0..maxLag
func (df *DifferenceFunction) Raw(frame []float64) ([]float64, error) {
	acf, err := df.fft.WindowedAutocorrelation(frame, df.window, df.maxLag)
	if err != nil {
		return nil, err
	}

	// prefix[i] = Σ_{j<i} x_j²
	span := df.window + df.maxLag
	prefix := make([]float64, span+1)
	for i := range span {
		prefix[i+1] = prefix[i] + frame[i]*frame[i]
	}

	energy0 := snap(prefix[df.window])
	diff := make([]float64, df.maxLag+1)
	for tau := 1; tau <= df.maxLag; tau++ {
		energy := snap(prefix[tau+df.window] - prefix[tau])
		d := energy0 + energy - 2*snap(acf[tau])
		diff[tau] = math.Max(d, 0)
	}

	return diff, nil
}

// Normalized returns d'(τ) for τ = 0..maxLag. Lags whose running mean is
// zero or non-finite are set to 1, so a silent frame yields all ones.
func (df *DifferenceFunction) Normalized(frame []float64) ([]float64, error) {
	diff, err := df.Raw(frame)
	if err != nil {
		return nil, err
	}

	cmndf := make([]float64, len(diff))
	cmndf[0] = 1

	running := 0.0
	for tau := 1; tau < len(diff); tau++ {
		running += diff[tau]
		mean := running / float64(tau)

		if !(mean > common.Tiny) || math.IsInf(mean, 0) {
			cmndf[tau] = 1
			continue
		}
		cmndf[tau] = diff[tau] / mean
	}

	return cmndf, nil
}

func snap(v float64) float64 {
	if math.Abs(v) < snapThreshold {
		return 0
	}
	return v
}
