// SPDX-License-Identifier: MIT
// Package unfolding: the D'Agostini iterative Bayesian algorithm.

package unfolding

import (
	"fmt"
	"math"

	"github.com/katalvlaran/unfold/matrix"
)

const (
	// DefaultMaxIterations caps figure-of-merit runs that never reach their
	// threshold; hitting the cap degrades the result instead of failing.
	DefaultMaxIterations = 1000

	// fomFloor guards the figure-of-merit denominator against vanishing
	// iterates.
	fomFloor = 1e-12
)

// dagostiniStop selects the stopping rule.
type dagostiniStop int

const (
	stopIterations dagostiniStop = iota
	stopFigureOfMerit
)

// DAgostini is the iterative Bayesian unfolder.
//
// Each pass updates every true bin by Bayes' rule with the response matrix
// as likelihood and the current iterate as prior:
//
//	θ'_t = (θ_t / eff_t) · Σ_r R[r,t] · d_r / pred_r,   pred = R·θ
//
// where eff_t is the column sum (efficiency) of true bin t. Zero-efficiency
// bins carry no data constraint and keep their prior value; zero-prediction
// reco bins are skipped inside the sum. The run stops after a fixed number
// of passes, or when the mean squared relative step
//
//	fom = (1/n_t) · Σ_t (θ'_t − θ_t)² / max(|θ_t|, floor)
//
// drops below a threshold. Covariance is propagated through the first-order
// linearization of the final update.
type DAgostini struct {
	stop      dagostiniStop
	threshold float64
	maxIter   int
}

// NewDAgostiniIterations returns a fixed-pass unfolder; n == 0 returns the
// prior untouched (the degenerate but legal closure configuration).
func NewDAgostiniIterations(n int) (*DAgostini, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: iteration count %d", ErrBadOptions, n)
	}

	return &DAgostini{stop: stopIterations, maxIter: n}, nil
}

// NewDAgostiniFOM returns a converging unfolder that stops once the
// figure of merit drops below threshold, degrading after maxIter passes;
// maxIter <= 0 selects DefaultMaxIterations.
func NewDAgostiniFOM(threshold float64, maxIter int) (*DAgostini, error) {
	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("%w: figure-of-merit threshold %g", ErrBadOptions, threshold)
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	return &DAgostini{stop: stopFigureOfMerit, threshold: threshold, maxIter: maxIter}, nil
}

// Name implements Algorithm.
func (d *DAgostini) Name() string { return "dagostini" }

// Run implements Algorithm.
// Complexity: O(iterations · n_t · n_r).
func (d *DAgostini) Run(p *Problem) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	eff, err := matrix.ColSums(p.Smearcept)
	if err != nil {
		return nil, fmt.Errorf("unfolding: dagostini: %w", err)
	}

	nt := p.NTrue()
	theta := make([]float64, nt)
	copy(theta, p.Prior)

	res := &Result{Status: StatusComplete}
	// prev/pred hold the linearization point: the iterate entering the last
	// executed update, and its reco-space prediction.
	prev := theta
	pred, err := matrix.MatVec(p.Smearcept, theta)
	if err != nil {
		return nil, fmt.Errorf("unfolding: dagostini: %w", err)
	}

	for pass := 1; pass <= d.maxIter; pass++ {
		next := d.update(p, theta, eff, pred)
		res.FigureOfMerit = figureOfMerit(theta, next)
		prev, theta = theta, next
		res.Iterations = pass

		done := d.stop == stopFigureOfMerit && res.FigureOfMerit < d.threshold
		if !done && pass == d.maxIter {
			if d.stop == stopFigureOfMerit {
				res.Status = StatusDegraded
			}
			done = true
		}
		if done {
			break
		}
		if pred, err = matrix.MatVec(p.Smearcept, theta); err != nil {
			return nil, fmt.Errorf("unfolding: dagostini: %w", err)
		}
	}

	res.Unfolded = theta
	if res.UnfoldingMatrix, err = d.linearize(p, prev, eff, pred); err != nil {
		return nil, err
	}
	if err = finishResult(p, res); err != nil {
		return nil, err
	}

	return res, nil
}

// update performs one Bayes pass from theta (with prediction pred) and
// returns the next iterate.
func (d *DAgostini) update(p *Problem, theta, eff, pred []float64) []float64 {
	nt, nr := p.NTrue(), p.NReco()
	next := make([]float64, nt)
	var sum, r float64
	for t := 0; t < nt; t++ {
		if eff[t] == 0 || theta[t] == 0 {
			next[t] = theta[t] // no data constraint, or a dead bin: carry over
			continue
		}
		sum = 0
		for i := 0; i < nr; i++ {
			if pred[i] == 0 {
				continue
			}
			if r, _ = p.Smearcept.At(i, t); r != 0 {
				sum += r * p.Signal[i] / pred[i]
			}
		}
		next[t] = theta[t] / eff[t] * sum
	}

	return next
}

// linearize builds the first-order error-propagation matrix of the update at
// the iterate theta: M[t,r] = (θ_t/eff_t) · R[r,t] / pred_r, treating the
// prediction as data-independent. At a fixed point M·signal reproduces the
// unfolded iterate exactly.
func (d *DAgostini) linearize(p *Problem, theta, eff, pred []float64) (*matrix.Dense, error) {
	nt, nr := p.NTrue(), p.NReco()
	m, err := matrix.NewDense(nt, nr)
	if err != nil {
		return nil, fmt.Errorf("unfolding: dagostini: %w", err)
	}
	var rv float64
	for t := 0; t < nt; t++ {
		if eff[t] == 0 || theta[t] == 0 {
			continue
		}
		scale := theta[t] / eff[t]
		for r := 0; r < nr; r++ {
			if pred[r] == 0 {
				continue
			}
			if rv, _ = p.Smearcept.At(r, t); rv == 0 {
				continue
			}
			if err = m.Set(t, r, scale*rv/pred[r]); err != nil {
				return nil, fmt.Errorf("unfolding: dagostini: %w", err)
			}
		}
	}

	return m, nil
}

// figureOfMerit is the mean squared relative step between two iterates.
func figureOfMerit(prev, next []float64) float64 {
	var fom, d float64
	for t := range prev {
		d = next[t] - prev[t]
		fom += d * d / math.Max(math.Abs(prev[t]), fomFloor)
	}

	return fom / float64(len(prev))
}
