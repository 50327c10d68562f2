// SPDX-License-Identifier: MIT
// Package matrix_test contains unit tests for the multiplicative kernels.
package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unfold/matrix"
)

const tol = 1e-10

// mustDense builds a Dense from rows or fails the test.
func mustDense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(rows)
	require.NoError(t, err)

	return m
}

// assertMatEqual compares every entry of got against want within tol.
func assertMatEqual(t *testing.T, want [][]float64, got *matrix.Dense) {
	t.Helper()
	require.Equal(t, len(want), got.Rows(), "row count")
	require.Equal(t, len(want[0]), got.Cols(), "col count")
	for i := range want {
		for j := range want[i] {
			v, err := got.At(i, j)
			require.NoError(t, err)
			assert.InDelta(t, want[i][j], v, tol, "entry [%d,%d]", i, j)
		}
	}
}

func TestAddSub(t *testing.T) {
	a := mustDense(t, [][]float64{{1, 2}, {3, 4}})
	b := mustDense(t, [][]float64{{10, 20}, {30, 40}})

	sum, err := matrix.Add(a, b)
	require.NoError(t, err)
	assertMatEqual(t, [][]float64{{11, 22}, {33, 44}}, sum)

	diff, err := matrix.Sub(b, a)
	require.NoError(t, err)
	assertMatEqual(t, [][]float64{{9, 18}, {27, 36}}, diff)

	c := mustDense(t, [][]float64{{1, 2, 3}})
	_, err = matrix.Add(a, c)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestMul(t *testing.T) {
	a := mustDense(t, [][]float64{{1, 2}, {3, 4}})
	b := mustDense(t, [][]float64{{5, 6}, {7, 8}})

	prod, err := matrix.Mul(a, b)
	require.NoError(t, err)
	assertMatEqual(t, [][]float64{{19, 22}, {43, 50}}, prod)

	_, err = matrix.Mul(a, mustDense(t, [][]float64{{1, 2}}))
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = matrix.Mul(nil, b)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestMulIdentityNeutral(t *testing.T) {
	a := mustDense(t, [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	id, err := matrix.NewIdentity(3)
	require.NoError(t, err)

	left, err := matrix.Mul(id, a)
	require.NoError(t, err)
	assertMatEqual(t, [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}, left)

	right, err := matrix.Mul(a, id)
	require.NoError(t, err)
	assertMatEqual(t, [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}, right)
}

func TestTranspose(t *testing.T) {
	a := mustDense(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	at, err := matrix.Transpose(a)
	require.NoError(t, err)
	assertMatEqual(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, at)
}

func TestMatVec(t *testing.T) {
	a := mustDense(t, [][]float64{{1, 2}, {3, 4}})
	y, err := matrix.MatVec(a, []float64{1, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 7}, y, tol)

	_, err = matrix.MatVec(a, []float64{1})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.MatVec(a, nil)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestSandwichMatchesExplicitProduct(t *testing.T) {
	m := mustDense(t, [][]float64{{1, 2, 0}, {0, 1, 3}})
	c := mustDense(t, [][]float64{{4, 1, 0}, {1, 5, 2}, {0, 2, 6}})

	got, err := matrix.Sandwich(m, c)
	require.NoError(t, err)

	mt, err := matrix.Transpose(m)
	require.NoError(t, err)
	mc, err := matrix.Mul(m, c)
	require.NoError(t, err)
	want, err := matrix.Mul(mc, mt)
	require.NoError(t, err)

	for i := 0; i < want.Rows(); i++ {
		for j := 0; j < want.Cols(); j++ {
			wv, _ := want.At(i, j)
			gv, _ := got.At(i, j)
			assert.InDelta(t, wv, gv, tol, "entry [%d,%d]", i, j)
		}
	}
}

func TestColSums(t *testing.T) {
	m := mustDense(t, [][]float64{{0.9, 0.1}, {0.05, 0.8}})
	sums, err := matrix.ColSums(m)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.95, 0.9}, sums, tol)
}

func TestInverseRoundTrip(t *testing.T) {
	a := mustDense(t, [][]float64{{4, 7}, {2, 6}})
	inv, err := matrix.Inverse(a)
	require.NoError(t, err)

	prod, err := matrix.Mul(a, inv)
	require.NoError(t, err)
	assertMatEqual(t, [][]float64{{1, 0}, {0, 1}}, prod)
}

func TestInverseSingular(t *testing.T) {
	// Second row is a multiple of the first: exactly singular.
	a := mustDense(t, [][]float64{{1, 2}, {2, 4}})
	_, err := matrix.Inverse(a)
	assert.ErrorIs(t, err, matrix.ErrSingular)
}
