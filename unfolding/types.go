// SPDX-License-Identifier: MIT
// Package unfolding: problem/result containers and the Algorithm contract.

package unfolding

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/unfold/matrix"
)

var (
	// ErrNilProblem indicates a nil problem handed to an algorithm.
	ErrNilProblem = errors.New("unfolding: nil problem")

	// ErrBadProblem indicates a problem whose pieces disagree in shape or
	// carry non-finite values.
	ErrBadProblem = errors.New("unfolding: malformed problem")

	// ErrBadOptions indicates an algorithm constructed with invalid
	// parameters (unknown regularization kind, negative iteration count,
	// non-positive threshold).
	ErrBadOptions = errors.New("unfolding: invalid algorithm options")
)

// Problem is one unfolding task: a measured reco-space signal with its
// covariance, the response matrix relating true to reco space, and the
// true-space prior. Shapes: Signal and Covariance live in reco space
// (n_r, n_r×n_r), Smearcept is n_r×n_t, Prior is n_t. Algorithms never
// mutate a Problem.
type Problem struct {
	Signal     []float64
	Covariance *matrix.Dense
	Smearcept  *matrix.Dense
	Prior      []float64
}

// NTrue returns the true-space dimension.
func (p *Problem) NTrue() int { return len(p.Prior) }

// NReco returns the reco-space dimension.
func (p *Problem) NReco() int { return len(p.Signal) }

// Validate fail-fast checks the problem: shapes consistent, every value
// finite, covariance square and symmetric. Negative signal entries are
// legitimate (background subtraction can overshoot) and pass.
func (p *Problem) Validate() error {
	if p == nil {
		return ErrNilProblem
	}
	if err := matrix.ValidateNotNil(p.Smearcept); err != nil {
		return fmt.Errorf("%w: smearcept: %v", ErrBadProblem, err)
	}
	nr, nt := p.Smearcept.Rows(), p.Smearcept.Cols()
	if len(p.Signal) != nr {
		return fmt.Errorf("%w: signal has %d bins, smearcept expects %d", ErrBadProblem, len(p.Signal), nr)
	}
	if len(p.Prior) != nt {
		return fmt.Errorf("%w: prior has %d bins, smearcept expects %d", ErrBadProblem, len(p.Prior), nt)
	}
	if err := matrix.ValidateNotNil(p.Covariance); err != nil {
		return fmt.Errorf("%w: covariance: %v", ErrBadProblem, err)
	}
	if p.Covariance.Rows() != nr || p.Covariance.Cols() != nr {
		return fmt.Errorf("%w: covariance is %dx%d, want %dx%d",
			ErrBadProblem, p.Covariance.Rows(), p.Covariance.Cols(), nr, nr)
	}
	scale, err := matrix.MaxAbs(p.Covariance)
	if err != nil {
		return fmt.Errorf("%w: covariance: %v", ErrBadProblem, err)
	}
	if scale < 1 {
		scale = 1
	}
	if err = matrix.ValidateSymmetric(p.Covariance, matrix.DefaultEigenTol*scale); err != nil {
		return fmt.Errorf("%w: covariance: %v", ErrBadProblem, err)
	}
	if err := matrix.ValidateFiniteVec(p.Signal); err != nil {
		return fmt.Errorf("%w: signal: %v", ErrBadProblem, err)
	}
	if err := matrix.ValidateFiniteVec(p.Prior); err != nil {
		return fmt.Errorf("%w: prior: %v", ErrBadProblem, err)
	}
	if err := matrix.ValidateFinite(p.Smearcept); err != nil {
		return fmt.Errorf("%w: smearcept: %v", ErrBadProblem, err)
	}
	if err := matrix.ValidateFinite(p.Covariance); err != nil {
		return fmt.Errorf("%w: covariance: %v", ErrBadProblem, err)
	}

	return nil
}

// Status reports how a run ended.
type Status int

const (
	// StatusComplete: the algorithm met its own stopping criterion.
	StatusComplete Status = iota

	// StatusDegraded: the result is usable but the stopping criterion was
	// not met (iteration cap reached before the figure-of-merit threshold).
	StatusDegraded
)

// String implements fmt.Stringer.
func (s Status) String() string {
	if s == StatusComplete {
		return "complete"
	}

	return "degraded"
}

// Result is the output of one unfolding run.
//
// Unfolded and Covariance live in true space. UnfoldingMatrix M (n_t×n_r)
// is the linear(ized) map from reco to true space actually applied, so
// Covariance = M·problem.Covariance·Mᵀ holds exactly. AddSmear = M·R − I is
// the additional smearing a theory prediction must receive before being
// compared to Unfolded; it vanishes when M inverts R exactly.
//
// Iterations and FigureOfMerit are populated by iterative algorithms.
// SingularValues and FilterWeights are populated by spectral algorithms.
type Result struct {
	Unfolded        []float64
	Covariance      *matrix.Dense
	UnfoldingMatrix *matrix.Dense
	AddSmear        *matrix.Dense
	Status          Status

	Iterations     int
	FigureOfMerit  float64
	SingularValues []float64
	FilterWeights  []float64
}

// Algorithm is a stateless unfolding strategy. Run never mutates the
// problem; implementations are safe for concurrent use after construction.
type Algorithm interface {
	// Name returns a short lowercase identifier (config/log token).
	Name() string

	// Run unfolds one problem.
	Run(p *Problem) (*Result, error)
}

// finishResult derives the propagated covariance and the additional-smearing
// matrix from the unfolding matrix. Shared by every algorithm.
func finishResult(p *Problem, res *Result) error {
	var err error
	if res.Covariance, err = matrix.Sandwich(res.UnfoldingMatrix, p.Covariance); err != nil {
		return fmt.Errorf("unfolding: propagate covariance: %w", err)
	}
	mr, err := matrix.Mul(res.UnfoldingMatrix, p.Smearcept)
	if err != nil {
		return fmt.Errorf("unfolding: additional smearing: %w", err)
	}
	eye, err := matrix.NewIdentity(mr.Rows())
	if err != nil {
		return fmt.Errorf("unfolding: additional smearing: %w", err)
	}
	if res.AddSmear, err = matrix.Sub(mr, eye); err != nil {
		return fmt.Errorf("unfolding: additional smearing: %w", err)
	}

	return nil
}
