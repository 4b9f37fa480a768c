package common

import (
	"math"
	"sync/atomic"
	"testing"
)

func TestParabolicShift(t *testing.T) {
	t.Parallel()

	// Parabola y = (x - 0.3)^2 sampled at -1, 0, 1
	f := func(x float64) float64 { return (x - 0.3) * (x - 0.3) }
	if got := ParabolicShift(f(-1), f(0), f(1)); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("ParabolicShift() = %v, want 0.3", got)
	}

	if got := ParabolicShift(1, 1, 1); got != 0 {
		t.Errorf("flat shift = %v, want 0", got)
	}

	// Monotone ramp: vertex would land outside the neighbourhood
	if got := ParabolicShift(0, 1, 2); got != 0 {
		t.Errorf("ramp shift = %v, want 0", got)
	}
}

func TestSafeLogFinite(t *testing.T) {
	t.Parallel()

	for _, p := range []float64{0, -1, math.NaN(), 1e-320} {
		if v := SafeLog(p); math.IsInf(v, 0) || math.IsNaN(v) {
			t.Errorf("SafeLog(%v) = %v, want finite", p, v)
		}
	}
	if v := SafeLog(1); math.Abs(v) > 1e-12 {
		t.Errorf("SafeLog(1) = %v, want 0", v)
	}
}

func TestArgHelpers(t *testing.T) {
	t.Parallel()

	data := []float64{3, 1, 4, 1, 5}
	if got := ArgMin(data); got != 1 {
		t.Errorf("ArgMin() = %d, want 1", got)
	}
	if got := ArgMax(data); got != 4 {
		t.Errorf("ArgMax() = %d, want 4", got)
	}
	if ArgMin(nil) != -1 || ArgMax(nil) != -1 {
		t.Error("expected -1 for empty input")
	}
	if Sum(nil) != 0 || Mean(nil) != 0 {
		t.Error("expected zero sum and mean for empty input")
	}
	if !AllFinite(data) || AllFinite([]float64{1, math.Inf(1)}) {
		t.Error("AllFinite() misreported")
	}
	if Clip(2, 0, 1) != 1 || Clip(-2, 0, 1) != 0 || Clip(0.5, 0, 1) != 0.5 {
		t.Error("Clip() misbehaved")
	}
}

func TestParallelForVisitsEachIndexOnce(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{0, 1, 3, 64} {
		const n = 257
		var counts [n]int32
		ParallelFor(n, workers, func(i int) {
			atomic.AddInt32(&counts[i], 1)
		})
		for i, c := range counts {
			if c != 1 {
				t.Fatalf("workers=%d: index %d visited %d times", workers, i, c)
			}
		}
	}
}

func TestWorkerCount(t *testing.T) {
	t.Parallel()

	if WorkerCount(0, 4) != 0 {
		t.Error("expected no workers for no jobs")
	}
	if WorkerCount(3, 8) != 3 {
		t.Error("requested workers should be capped at job count")
	}
	if w := WorkerCount(10, 0); w < 1 || w > 10 {
		t.Errorf("WorkerCount(10, 0) = %d", w)
	}
}
