package irt

import (
	"math"
	"testing"
)

func TestProbabilityBoundsAndMonotonicity(t *testing.T) {
	thetas := []float64{-3, -1.5, 0, 1.5, 3}
	bs := []float64{-2, 0, 2}
	for _, b := range bs {
		prev := -1.0
		for _, th := range thetas {
			p := Probability(th, b)
			if p <= 0 || p >= 1 {
				t.Fatalf("Probability(%v,%v)=%v outside (0,1)", th, b, p)
			}
			if p <= prev {
				t.Fatalf("Probability not increasing in theta at theta=%v b=%v", th, b)
			}
			prev = p
		}
	}
	// decreasing in b for fixed theta
	if !(Probability(0, -1) > Probability(0, 0) && Probability(0, 0) > Probability(0, 1)) {
		t.Fatalf("Probability not decreasing in b")
	}
}

func TestEstimateEmptyInput(t *testing.T) {
	e := NewEstimator()
	if got := e.Estimate(nil, nil); got != 0.0 {
		t.Fatalf("Estimate(nil,nil)=%v, want 0", got)
	}
	if got := e.Estimate([]int{}, []float64{}); got != 0.0 {
		t.Fatalf("Estimate(empty)=%v, want 0", got)
	}
}

func TestEstimateAllCorrectVsAllIncorrect(t *testing.T) {
	e := NewEstimator()
	diffs := []float64{-1, -0.5, 0, 0.5, 1}
	correct := []int{1, 1, 1, 1, 1}
	incorrect := []int{0, 0, 0, 0, 0}

	hi := e.Estimate(correct, diffs)
	lo := e.Estimate(incorrect, diffs)
	if hi < lo {
		t.Fatalf("all-correct theta %v < all-incorrect theta %v", hi, lo)
	}
	// A perfect script should push the bounded estimate to the top of the
	// interval, a blank one to the bottom.
	if hi < 2.9 {
		t.Fatalf("all-correct theta %v, want near %v", hi, e.ThetaMax)
	}
	if lo > -2.9 {
		t.Fatalf("all-incorrect theta %v, want near %v", lo, e.ThetaMin)
	}
}

func TestEstimateStaysInBounds(t *testing.T) {
	e := NewEstimator()
	cases := [][]int{
		{1, 0, 1, 0, 1},
		{1, 1, 0, 0, 0},
		{0, 1, 1, 1, 0},
	}
	diffs := []float64{-2, -1, 0, 1, 2}
	for _, resp := range cases {
		got := e.Estimate(resp, diffs)
		if got < e.ThetaMin || got > e.ThetaMax {
			t.Fatalf("Estimate(%v)=%v outside [%v,%v]", resp, got, e.ThetaMin, e.ThetaMax)
		}
	}
}

func TestEstimateDeterministic(t *testing.T) {
	e := NewEstimator()
	resp := []int{1, 0, 1, 1, 0, 1, 0, 0}
	diffs := []float64{-1.2, -0.7, -0.1, 0.2, 0.4, 0.9, 1.3, 2.0}
	a := e.Estimate(resp, diffs)
	b := e.Estimate(resp, diffs)
	if a != b {
		t.Fatalf("Estimate not deterministic: %v vs %v", a, b)
	}
}

func TestEstimateMatchesGridSearch(t *testing.T) {
	e := NewEstimator()
	resp := []int{1, 1, 0, 1, 0, 0, 1, 0, 1, 1}
	diffs := []float64{-1.5, -1.0, -0.5, -0.2, 0.0, 0.3, 0.6, 1.0, 1.4, 2.0}

	got := e.Estimate(resp, diffs)

	best, bestLL := e.ThetaMin, math.Inf(-1)
	for th := e.ThetaMin; th <= e.ThetaMax; th += 0.001 {
		if ll := e.LogLikelihood(th, resp, diffs); ll > bestLL {
			best, bestLL = th, ll
		}
	}
	if math.Abs(got-best) > 0.01 {
		t.Fatalf("Estimate=%v, grid search max=%v", got, best)
	}
}

func TestScaleLinear(t *testing.T) {
	e := NewEstimator()
	if got := e.Scale(e.ThetaMin); got != 0.0 {
		t.Fatalf("Scale(min)=%v, want 0", got)
	}
	if got := e.Scale(e.ThetaMax); got != 100.0 {
		t.Fatalf("Scale(max)=%v, want 100", got)
	}
	if got := e.Scale(0); math.Abs(got-50.0) > 1e-9 {
		t.Fatalf("Scale(0)=%v, want 50", got)
	}
	// monotonic, no clamp
	if !(e.Scale(-1) < e.Scale(0) && e.Scale(0) < e.Scale(1)) {
		t.Fatalf("Scale not monotonic")
	}
	if got := e.Scale(4); got <= 100 {
		t.Fatalf("Scale(4)=%v, expected above 100 (no clamp)", got)
	}
}
