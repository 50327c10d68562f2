// SPDX-License-Identifier: MIT
// Package unfolding_test covers the D'Agostini iterative algorithm.
package unfolding_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unfold/matrix"
	"github.com/katalvlaran/unfold/unfolding"
)

// closureProblem builds a 2×2 task whose signal is the exact forward-folded
// image of a known truth, so the iteration has a reachable fixed point.
func closureProblem(t *testing.T, truth []float64) *unfolding.Problem {
	t.Helper()
	smear, err := matrix.NewDenseFrom([][]float64{
		{0.9, 0.1},
		{0.1, 0.9},
	})
	require.NoError(t, err)
	signal, err := matrix.MatVec(smear, truth)
	require.NoError(t, err)
	cov, err := matrix.NewDiagonal(signal)
	require.NoError(t, err)

	return &unfolding.Problem{
		Signal:     signal,
		Covariance: cov,
		Smearcept:  smear,
		Prior:      []float64{100, 100},
	}
}

func TestDAgostiniZeroIterationsReturnsPrior(t *testing.T) {
	alg, err := unfolding.NewDAgostiniIterations(0)
	require.NoError(t, err)
	p := closureProblem(t, []float64{150, 50})

	res, err := alg.Run(p)
	require.NoError(t, err)
	assert.Equal(t, p.Prior, res.Unfolded)
	assert.Equal(t, 0, res.Iterations)
	assert.Equal(t, unfolding.StatusComplete, res.Status)

	// Even the degenerate run propagates covariance through a real map.
	require.NotNil(t, res.UnfoldingMatrix)
	assert.NoError(t, matrix.ValidateSymmetric(res.Covariance, tol))
}

func TestDAgostiniConvergesToTruth(t *testing.T) {
	truth := []float64{150, 50}
	alg, err := unfolding.NewDAgostiniFOM(1e-14, 0)
	require.NoError(t, err)

	res, err := alg.Run(closureProblem(t, truth))
	require.NoError(t, err)
	assert.Equal(t, unfolding.StatusComplete, res.Status)
	assert.Less(t, res.Iterations, unfolding.DefaultMaxIterations)
	assert.Less(t, res.FigureOfMerit, 1e-14)
	assert.InDeltaSlice(t, truth, res.Unfolded, 1e-4)
}

func TestDAgostiniStepsApproachTruth(t *testing.T) {
	truth := []float64{150, 50}
	p := closureProblem(t, truth)

	dist := func(iters int) float64 {
		alg, err := unfolding.NewDAgostiniIterations(iters)
		require.NoError(t, err)
		res, err := alg.Run(p)
		require.NoError(t, err)
		assert.Equal(t, iters, res.Iterations)
		var d float64
		for i := range truth {
			d += math.Abs(res.Unfolded[i] - truth[i])
		}

		return d
	}

	d1, d5, d20 := dist(1), dist(5), dist(20)
	assert.Less(t, d5, d1, "5 passes closer than 1")
	assert.Less(t, d20, d5, "20 passes closer than 5")
}

func TestDAgostiniDegradesOnIterationCap(t *testing.T) {
	alg, err := unfolding.NewDAgostiniFOM(1e-300, 3) // unreachable threshold
	require.NoError(t, err)

	res, err := alg.Run(closureProblem(t, []float64{150, 50}))
	require.NoError(t, err)
	assert.Equal(t, unfolding.StatusDegraded, res.Status)
	assert.Equal(t, 3, res.Iterations)
	assert.NoError(t, matrix.ValidateFiniteVec(res.Unfolded), "degraded result still usable")
}

func TestDAgostiniFixedPointMatchesLinearization(t *testing.T) {
	// At convergence the linearized map reproduces the iterate:
	// M·signal = unfolded.
	alg, err := unfolding.NewDAgostiniFOM(1e-14, 0)
	require.NoError(t, err)
	p := closureProblem(t, []float64{150, 50})

	res, err := alg.Run(p)
	require.NoError(t, err)
	applied, err := matrix.MatVec(res.UnfoldingMatrix, p.Signal)
	require.NoError(t, err)
	assert.InDeltaSlice(t, res.Unfolded, applied, 1e-6)
}

func TestDAgostiniZeroEfficiencyKeepsPrior(t *testing.T) {
	// True bin 1 never reconstructs: no data constraint exists, the prior
	// value carries through every pass.
	smear, err := matrix.NewDenseFrom([][]float64{
		{0.9, 0},
		{0.1, 0},
	})
	require.NoError(t, err)
	cov, err := matrix.NewDiagonal([]float64{90, 10})
	require.NoError(t, err)
	p := &unfolding.Problem{
		Signal:     []float64{90, 10},
		Covariance: cov,
		Smearcept:  smear,
		Prior:      []float64{100, 70},
	}

	alg, err := unfolding.NewDAgostiniIterations(5)
	require.NoError(t, err)
	res, err := alg.Run(p)
	require.NoError(t, err)
	assert.Equal(t, 70.0, res.Unfolded[1])
}

func TestDAgostiniCovarianceIsSandwich(t *testing.T) {
	alg, err := unfolding.NewDAgostiniIterations(4)
	require.NoError(t, err)
	p := closureProblem(t, []float64{150, 50})

	res, err := alg.Run(p)
	require.NoError(t, err)
	want, err := matrix.Sandwich(res.UnfoldingMatrix, p.Covariance)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			w, _ := want.At(i, j)
			g, _ := res.Covariance.At(i, j)
			assert.InDelta(t, w, g, tol, "cov[%d,%d]", i, j)
		}
	}
}

func TestNewDAgostiniValidation(t *testing.T) {
	_, err := unfolding.NewDAgostiniIterations(-1)
	assert.ErrorIs(t, err, unfolding.ErrBadOptions)

	_, err = unfolding.NewDAgostiniFOM(0, 10)
	assert.ErrorIs(t, err, unfolding.ErrBadOptions)

	_, err = unfolding.NewDAgostiniFOM(math.NaN(), 10)
	assert.ErrorIs(t, err, unfolding.ErrBadOptions)
}
