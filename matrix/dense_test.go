// SPDX-License-Identifier: MIT
// Package matrix_test contains unit tests for the Dense type and validators.
package matrix_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unfold/matrix"
)

func TestNewDenseDefaultZero(t *testing.T) {
	for _, tc := range []struct{ rows, cols int }{
		{1, 1},
		{3, 3},
		{2, 5},
	} {
		name := fmt.Sprintf("%dx%d", tc.rows, tc.cols)
		t.Run(name, func(t *testing.T) {
			m, err := matrix.NewDense(tc.rows, tc.cols)
			require.NoError(t, err)
			for i := 0; i < tc.rows; i++ {
				for j := 0; j < tc.cols; j++ {
					v, err := m.At(i, j)
					require.NoError(t, err)
					if v != 0.0 {
						t.Fatalf("element [%d,%d] of a new Dense must be 0, got %g", i, j, v)
					}
				}
			}
		})
	}
}

func TestNewDenseRejectsBadShape(t *testing.T) {
	for _, tc := range []struct{ rows, cols int }{
		{0, 3}, {3, 0}, {-1, 2}, {0, 0},
	} {
		_, err := matrix.NewDense(tc.rows, tc.cols)
		assert.ErrorIs(t, err, matrix.ErrBadShape, "shape %dx%d must be rejected", tc.rows, tc.cols)
	}
}

func TestNewDenseFrom(t *testing.T) {
	m, err := matrix.NewDenseFrom([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	v, err := m.At(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	_, err = matrix.NewDenseFrom([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch, "ragged rows must be rejected")

	_, err = matrix.NewDenseFrom(nil)
	assert.ErrorIs(t, err, matrix.ErrBadShape)
}

func TestAtSetBounds(t *testing.T) {
	m, err := matrix.NewDense(2, 2)
	require.NoError(t, err)

	_, err = m.At(2, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	_, err = m.At(0, -1)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	err = m.Set(0, 2, 1.0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)

	require.NoError(t, m.Set(1, 1, 42))
	v, err := m.At(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}

func TestCloneIsDeep(t *testing.T) {
	m, err := matrix.NewDenseFrom([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	cp := m.Clone()
	require.NoError(t, cp.Set(0, 0, 99))

	orig, err := m.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, orig, "mutating a clone must not touch the original")
}

func TestSubmatrixSelection(t *testing.T) {
	m, err := matrix.NewDenseFrom([][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	})
	require.NoError(t, err)

	sub, err := m.Submatrix([]int{0, 2}, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Rows())
	assert.Equal(t, 2, sub.Cols())
	want := [][]float64{{2, 3}, {8, 9}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v, err := sub.At(i, j)
			require.NoError(t, err)
			assert.Equal(t, want[i][j], v, "sub[%d,%d]", i, j)
		}
	}

	_, err = m.Submatrix([]int{3}, []int{0})
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	_, err = m.Submatrix(nil, []int{0})
	assert.ErrorIs(t, err, matrix.ErrBadShape)
}

func TestValidateSymmetric(t *testing.T) {
	sym, err := matrix.NewDenseFrom([][]float64{{2, 1}, {1, 2}})
	require.NoError(t, err)
	assert.NoError(t, matrix.ValidateSymmetric(sym, 1e-12))

	asym, err := matrix.NewDenseFrom([][]float64{{2, 1}, {0.5, 2}})
	require.NoError(t, err)
	assert.ErrorIs(t, matrix.ValidateSymmetric(asym, 1e-12), matrix.ErrAsymmetry)

	rect, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	assert.ErrorIs(t, matrix.ValidateSymmetric(rect, 1e-12), matrix.ErrNonSquare)
}
