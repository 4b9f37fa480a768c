package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ThresholdPrior is a discretized Beta distribution over YIN thresholds.
//
// Thresholds are evenly spaced on [0, 1]; Mass[i] is the probability that the
// true threshold lies in (Thresholds[i], Thresholds[i+1]]. Mass always sums to
// one regardless of how many thresholds are used.
//
// References:
// - Mauch, M., Dixon, S. (2014). "pYIN: A fundamental frequency estimator using probabilistic threshold distributions"
type ThresholdPrior struct {
	Thresholds []float64 `json:"thresholds"` // len N+1, Thresholds[0] = 0
	Mass       []float64 `json:"mass"`       // len N
	Alpha      float64   `json:"alpha"`
	Beta       float64   `json:"beta"`
}

// NewThresholdPrior builds the prior for n thresholds of a Beta(alpha, beta) distribution
func NewThresholdPrior(n int, alpha, beta float64) (*ThresholdPrior, error) {
	if n < 1 {
		return nil, fmt.Errorf("threshold count must be positive, got %d", n)
	}
	if !(alpha > 0) || !(beta > 0) {
		return nil, fmt.Errorf("beta parameters must be positive, got (%g, %g)", alpha, beta)
	}

	dist := distuv.Beta{Alpha: alpha, Beta: beta}

	thresholds := make([]float64, n+1)
	floats.Span(thresholds, 0, 1)

	cdf := make([]float64, n+1)
	for i, t := range thresholds {
		cdf[i] = dist.CDF(t)
	}
	// Pin the ends so the masses telescope to exactly one
	cdf[0], cdf[n] = 0, 1

	mass := make([]float64, n)
	for i := range mass {
		mass[i] = math.Max(cdf[i+1]-cdf[i], 0)
	}

	return &ThresholdPrior{
		Thresholds: thresholds,
		Mass:       mass,
		Alpha:      alpha,
		Beta:       beta,
	}, nil
}

// Len returns the number of thresholds swept
func (p *ThresholdPrior) Len() int {
	return len(p.Mass)
}

// Upper returns the i-th threshold a trough must fall below (i in [0, Len()))
func (p *ThresholdPrior) Upper(i int) float64 {
	return p.Thresholds[i+1]
}

// BoltzmannPMF evaluates the truncated Boltzmann (discrete exponential)
// distribution on {0, ..., n-1}:
//
//	P(k) = (1 - e^{-λ}) e^{-λk} / (1 - e^{-λn})
//
// Lower k (earlier troughs) receive more weight.
func BoltzmannPMF(k int, lambda float64, n int) float64 {
	if n <= 0 || k < 0 || k >= n || !(lambda > 0) {
		return 0
	}
	return -math.Expm1(-lambda) * math.Exp(-lambda*float64(k)) / -math.Expm1(-lambda*float64(n))
}

// BoltzmannWeights returns P(0..n-1) for the truncated Boltzmann distribution
func BoltzmannWeights(lambda float64, n int) []float64 {
	w := make([]float64, max(n, 0))
	for k := range w {
		w[k] = BoltzmannPMF(k, lambda, n)
	}
	return w
}
