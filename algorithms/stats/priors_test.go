package stats

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestThresholdPriorSumsToOne(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 10, 100, 1000} {
		p, err := NewThresholdPrior(n, 2, 18)
		if err != nil {
			t.Fatalf("NewThresholdPrior(%d) error = %v", n, err)
		}
		if p.Len() != n || len(p.Thresholds) != n+1 {
			t.Fatalf("n=%d: got %d masses, %d thresholds", n, p.Len(), len(p.Thresholds))
		}
		if sum := floats.Sum(p.Mass); math.Abs(sum-1) > 1e-12 {
			t.Errorf("n=%d: mass sums to %v, want 1", n, sum)
		}
		if p.Thresholds[0] != 0 || p.Upper(n-1) != 1 {
			t.Errorf("n=%d: thresholds span [%v, %v], want [0, 1]", n, p.Thresholds[0], p.Upper(n-1))
		}
	}
}

func TestThresholdPriorFavorsLowThresholds(t *testing.T) {
	t.Parallel()

	p, err := NewThresholdPrior(100, 2, 18)
	if err != nil {
		t.Fatalf("NewThresholdPrior() error = %v", err)
	}

	// Beta(2, 18) has its mode at 1/18 and almost no mass above 0.5
	peak := floats.MaxIdx(p.Mass)
	if peak < 3 || peak > 7 {
		t.Errorf("mass peaks at threshold index %d, want near 5", peak)
	}
	if tail := floats.Sum(p.Mass[50:]); tail > 1e-4 {
		t.Errorf("mass above 0.5 = %v, want ~0", tail)
	}
}

func TestThresholdPriorRejectsBadParameters(t *testing.T) {
	t.Parallel()

	if _, err := NewThresholdPrior(0, 2, 18); err == nil {
		t.Error("expected error for zero thresholds")
	}
	if _, err := NewThresholdPrior(10, 0, 18); err == nil {
		t.Error("expected error for zero alpha")
	}
	if _, err := NewThresholdPrior(10, 2, math.NaN()); err == nil {
		t.Error("expected error for NaN beta")
	}
}

func TestBoltzmannWeights(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 5, 40} {
		w := BoltzmannWeights(2, n)
		if sum := floats.Sum(w); math.Abs(sum-1) > 1e-12 {
			t.Errorf("n=%d: weights sum to %v", n, sum)
		}
		for k := 1; k < n; k++ {
			if w[k] >= w[k-1] {
				t.Errorf("n=%d: weight %d (%v) not below weight %d (%v)", n, k, w[k], k-1, w[k-1])
			}
		}
	}

	if got := BoltzmannPMF(0, 2, 1); got != 1 {
		t.Errorf("single trough weight = %v, want 1", got)
	}
	if got := BoltzmannPMF(3, 2, 3); got != 0 {
		t.Errorf("out of range weight = %v, want 0", got)
	}
	if len(BoltzmannWeights(2, 0)) != 0 {
		t.Error("expected no weights for n=0")
	}
}
