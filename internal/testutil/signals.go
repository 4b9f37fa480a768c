package testutil

import (
	"math"
	"math/rand"
)

// Sine generates a deterministic float32 sine wave starting at phase 0
func Sine(freqHz float64, sampleRate int, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	step := 2 * math.Pi * freqHz / float64(sampleRate)
	for i := range out {
		out[i] = float32(amplitude * math.Sin(step*float64(i)))
	}
	return out
}

// Chirp generates a linear sweep from f0 to f1 Hz over length samples
func Chirp(f0, f1 float64, sampleRate int, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	sr := float64(sampleRate)
	duration := float64(length) / sr
	rate := (f1 - f0) / duration
	for i := range out {
		t := float64(i) / sr
		out[i] = float32(amplitude * math.Sin(2*math.Pi*(f0*t+0.5*rate*t*t)))
	}
	return out
}

// Noise generates white noise with a fixed seed for reproducibility
func Noise(seed int64, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * amplitude)
	}
	return out
}

// Silence returns length zero samples
func Silence(length int) []float32 {
	return make([]float32, length)
}

// Concat joins signals end to end
func Concat(parts ...[]float32) []float32 {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]float32, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Float64 widens samples to float64
func Float64(samples []float32) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s)
	}
	return out
}
