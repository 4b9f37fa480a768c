package spectral

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality
type FFT struct {
	// No state needed; go-dsp caches its twiddle factors internally
}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the FFT of a real signal using mjibson/go-dsp
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(x)
}

// ComputeInverseReal computes the inverse FFT and returns the real part only
func (f *FFT) ComputeInverseReal(x []complex128) []float64 {
	if len(x) == 0 {
		return []float64{}
	}

	result := fft.IFFT(x)
	realResult := make([]float64, len(result))

	for i, val := range result {
		realResult[i] = real(val)
	}

	return realResult
}

// WindowedAutocorrelation computes
//
//	r[τ] = Σ_{j=0}^{window-1} frame[j] * frame[j+τ]    for τ = 0..maxLag
//
// through a zero-padded FFT. The frame must hold at least window+maxLag samples.
func (f *FFT) WindowedAutocorrelation(frame []float64, window, maxLag int) ([]float64, error) {
	if window <= 0 || maxLag < 0 {
		return nil, fmt.Errorf("window (%d) must be positive and max lag (%d) non-negative", window, maxLag)
	}
	if len(frame) < window+maxLag {
		return nil, fmt.Errorf("frame length (%d) shorter than window + max lag (%d)", len(frame), window+maxLag)
	}

	// Power-of-two size keeps go-dsp on its radix-2 path and avoids circular wrap
	size := NextPowerOfTwo(len(frame) + window)

	a := make([]float64, size)
	copy(a, frame)
	b := make([]float64, size)
	copy(b, frame[:window])

	specA := f.Compute(a)
	specB := f.Compute(b)
	for i := range specA {
		specA[i] *= cmplx.Conj(specB[i])
	}

	corr := f.ComputeInverseReal(specA)
	return corr[:maxLag+1], nil
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1)
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
