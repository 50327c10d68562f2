// SPDX-License-Identifier: MIT
// Package matrix_test contains unit tests for the SVD and pseudo-inverse.
package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unfold/matrix"
)

// reconstructSVD rebuilds U·diag(s)·Vᵀ and asserts it matches a within delta.
func reconstructSVD(t *testing.T, a, u *matrix.Dense, s []float64, v *matrix.Dense, delta float64) {
	t.Helper()
	sd, err := matrix.NewDiagonal(s)
	require.NoError(t, err)
	us, err := matrix.Mul(u, sd)
	require.NoError(t, err)
	vt, err := matrix.Transpose(v)
	require.NoError(t, err)
	rec, err := matrix.Mul(us, vt)
	require.NoError(t, err)

	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			av, _ := a.At(i, j)
			rv, _ := rec.At(i, j)
			assert.InDelta(t, av, rv, delta, "entry [%d,%d]", i, j)
		}
	}
}

func TestSVDDiagonalSpectrum(t *testing.T) {
	a, err := matrix.NewDiagonal([]float64{3, 1, 2})
	require.NoError(t, err)
	u, s, v, err := matrix.SVD(a, matrix.DefaultSVDTol, matrix.DefaultSVDMaxSweeps)
	require.NoError(t, err)

	// Singular values come back sorted descending.
	assert.InDeltaSlice(t, []float64{3, 2, 1}, s, tol)
	reconstructSVD(t, a, u, s, v, 1e-9)
}

func TestSVDTallReconstruction(t *testing.T) {
	a := mustDense(t, [][]float64{
		{1, 0},
		{0.5, 2},
		{0.1, 0.3},
	})
	u, s, v, err := matrix.SVD(a, matrix.DefaultSVDTol, matrix.DefaultSVDMaxSweeps)
	require.NoError(t, err)
	require.Len(t, s, 2)
	assert.GreaterOrEqual(t, s[0], s[1], "descending order")
	reconstructSVD(t, a, u, s, v, 1e-9)
}

func TestSVDWideReconstruction(t *testing.T) {
	a := mustDense(t, [][]float64{
		{1, 0.5, 0.1},
		{0, 2, 0.3},
	})
	u, s, v, err := matrix.SVD(a, matrix.DefaultSVDTol, matrix.DefaultSVDMaxSweeps)
	require.NoError(t, err)
	require.Len(t, s, 2)
	require.Equal(t, 2, u.Rows())
	require.Equal(t, 3, v.Rows())
	reconstructSVD(t, a, u, s, v, 1e-9)
}

func TestSVDOrthonormalColumns(t *testing.T) {
	a := mustDense(t, [][]float64{{2, 1}, {1, 3}, {0, 1}})
	u, _, v, err := matrix.SVD(a, matrix.DefaultSVDTol, matrix.DefaultSVDMaxSweeps)
	require.NoError(t, err)

	// UᵀU and VᵀV must both be the identity.
	for _, f := range []*matrix.Dense{u, v} {
		ft, err := matrix.Transpose(f)
		require.NoError(t, err)
		gram, err := matrix.Mul(ft, f)
		require.NoError(t, err)
		for i := 0; i < gram.Rows(); i++ {
			for j := 0; j < gram.Cols(); j++ {
				want := 0.0
				if i == j {
					want = 1.0
				}
				gv, _ := gram.At(i, j)
				assert.InDelta(t, want, gv, 1e-9, "gram [%d,%d]", i, j)
			}
		}
	}
}

func TestSVDRankDeficient(t *testing.T) {
	// Rank-1 matrix: one singular value must be (numerically) zero and the
	// decomposition must still succeed — no error on exact singularity.
	a := mustDense(t, [][]float64{{1, 2}, {2, 4}})
	u, s, v, err := matrix.SVD(a, matrix.DefaultSVDTol, matrix.DefaultSVDMaxSweeps)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, s[1], 1e-9, "second singular value vanishes")
	reconstructSVD(t, a, u, s, v, 1e-9)
}

func TestPseudoInverseFullRankMatchesInverse(t *testing.T) {
	a := mustDense(t, [][]float64{{4, 7}, {2, 6}})
	pinv, err := matrix.PseudoInverse(a, matrix.DefaultRankTol)
	require.NoError(t, err)
	inv, err := matrix.Inverse(a)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			pv, _ := pinv.At(i, j)
			iv, _ := inv.At(i, j)
			assert.InDelta(t, iv, pv, 1e-9, "entry [%d,%d]", i, j)
		}
	}
}

func TestPseudoInverseSingularInput(t *testing.T) {
	// Exactly singular: Inverse fails, PseudoInverse must not.
	a := mustDense(t, [][]float64{{1, 2}, {2, 4}})
	pinv, err := matrix.PseudoInverse(a, matrix.DefaultRankTol)
	require.NoError(t, err)

	// Moore–Penrose identity: A·A⁺·A = A.
	ap, err := matrix.Mul(a, pinv)
	require.NoError(t, err)
	apa, err := matrix.Mul(ap, a)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			av, _ := a.At(i, j)
			rv, _ := apa.At(i, j)
			assert.InDelta(t, av, rv, 1e-9, "entry [%d,%d]", i, j)
		}
	}
}
