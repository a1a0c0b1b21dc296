package irt

import "math"

const (
	// DefaultThetaMin and DefaultThetaMax bound the latent ability scale.
	DefaultThetaMin = -3.0
	DefaultThetaMax = 3.0

	probEpsilon = 1e-10
	searchTol   = 1e-6
	maxIters    = 200
)

// Probability returns the 1PL (Rasch) probability that an examinee with
// ability theta answers an item of difficulty b correctly. The value is
// strictly inside (0,1).
func Probability(theta, b float64) float64 {
	return 1.0 / (1.0 + math.Exp(-(theta - b)))
}

// Estimator computes maximum-likelihood ability estimates restricted to a
// fixed interval. The zero value is not usable; construct with NewEstimator
// or set both bounds explicitly.
type Estimator struct {
	ThetaMin float64
	ThetaMax float64
}

func NewEstimator() *Estimator {
	return &Estimator{ThetaMin: DefaultThetaMin, ThetaMax: DefaultThetaMax}
}

// LogLikelihood evaluates the Rasch log-likelihood of the response vector at
// theta. Probabilities are clamped away from 0 and 1 so the log stays finite.
// responses and difficulties are paired by index.
func (e *Estimator) LogLikelihood(theta float64, responses []int, difficulties []float64) float64 {
	n := len(responses)
	if len(difficulties) < n {
		n = len(difficulties)
	}
	ll := 0.0
	for i := 0; i < n; i++ {
		p := Probability(theta, difficulties[i])
		if p < probEpsilon {
			p = probEpsilon
		} else if p > 1-probEpsilon {
			p = 1 - probEpsilon
		}
		if responses[i] == 1 {
			ll += math.Log(p)
		} else {
			ll += math.Log(1 - p)
		}
	}
	return ll
}

// Estimate returns the theta in [ThetaMin, ThetaMax] maximizing the
// log-likelihood of the given responses. Empty input carries no signal and
// yields the neutral estimate 0.0, as does a search that fails to converge.
func (e *Estimator) Estimate(responses []int, difficulties []float64) float64 {
	if len(responses) == 0 || len(difficulties) == 0 {
		return 0.0
	}
	theta, ok := maximize(func(t float64) float64 {
		return e.LogLikelihood(t, responses, difficulties)
	}, e.ThetaMin, e.ThetaMax)
	if !ok {
		return 0.0
	}
	return theta
}

// Scale maps theta linearly onto the 0-100 reporting scale. No clamping:
// a theta outside the bounds maps outside 0-100.
func (e *Estimator) Scale(theta float64) float64 {
	return (theta - e.ThetaMin) / (e.ThetaMax - e.ThetaMin) * 100.0
}

var invPhi = (math.Sqrt(5) - 1) / 2

// maximize runs a golden-section search for the maximum of f over [lo, hi].
// Deterministic for identical inputs. The second return is false when the
// bracket fails to shrink below tolerance within the iteration cap.
func maximize(f func(float64) float64, lo, hi float64) (float64, bool) {
	a, b := lo, hi
	c := b - (b-a)*invPhi
	d := a + (b-a)*invPhi
	fc, fd := f(c), f(d)
	for i := 0; i < maxIters; i++ {
		if b-a < searchTol {
			return (a + b) / 2, true
		}
		if fc > fd {
			b = d
			d, fd = c, fc
			c = b - (b-a)*invPhi
			fc = f(c)
		} else {
			a = c
			c, fc = d, fd
			d = a + (b-a)*invPhi
			fd = f(d)
		}
	}
	return 0, false
}
