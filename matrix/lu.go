// SPDX-License-Identifier: MIT
// Package matrix: Doolittle LU factorization and LU-based inversion.
// No pivoting by design: deterministic, reproducible results for identical
// inputs. A zero pivot surfaces as ErrSingular; callers with rank-deficient
// inputs fall back to PseudoInverse (see svd.go).

package matrix

// LU computes the Doolittle factorization A = L*U with unit diagonal on L.
// Stage 1 (Validate): square, non-nil input; allocate L, U; diag(L)=1.
// Stage 2 (Execute): for i=0..n-1 build row i of U, then column i of L, in
// fixed order on the flat slices.
// Errors: ErrNilMatrix, ErrNonSquare, ErrSingular (zero U[i,i] mid-factorization).
// Complexity: O(n³) time, O(n²) space.
func LU(m *Dense) (l, u *Dense, err error) {
	if err = ValidateSquare(m); err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}
	n := m.r
	if l, err = NewDense(n, n); err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}
	if u, err = NewDense(n, n); err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}
	for i := 0; i < n; i++ {
		l.data[i*n+i] = 1.0 // unit lower triangular
	}

	var sum, pivot float64
	var baseI, baseJ int
	for i := 0; i < n; i++ {
		baseI = i * n
		// Row i of U: U[i,j] = A[i,j] - Σ_{k<i} L[i,k]*U[k,j] for j >= i.
		for j := i; j < n; j++ {
			sum = 0
			for k := 0; k < i; k++ {
				sum += l.data[baseI+k] * u.data[k*n+j]
			}
			u.data[baseI+j] = m.data[baseI+j] - sum
		}
		// Zero-pivot guard: deterministic singularity detection.
		pivot = u.data[baseI+i]
		if pivot == 0 {
			return nil, nil, matrixErrorf(opLU, ErrSingular)
		}
		// Column i of L: L[j,i] = (A[j,i] - Σ_{k<i} L[j,k]*U[k,i]) / U[i,i].
		for j := i + 1; j < n; j++ {
			baseJ = j * n
			sum = 0
			for k := 0; k < i; k++ {
				sum += l.data[baseJ+k] * u.data[k*n+i]
			}
			l.data[baseJ+i] = (m.data[baseJ+i] - sum) / pivot
		}
	}

	return l, u, nil
}

// Inverse computes A⁻¹ via LU factorization and n triangular solves against
// the canonical basis vectors.
// Stage 1 (Validate + Factorize): LU(m) → L, U.
// Stage 2 (Execute): per column, forward solve L·y = e_col top-down, backward
// solve U·x = y bottom-up, write x into the result column.
// Errors: ErrNilMatrix, ErrNonSquare, ErrSingular.
// Complexity: O(n³) time, O(n²) space.
func Inverse(m *Dense) (*Dense, error) {
	l, u, err := LU(m)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	n := m.r
	inv, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	var sum, pivot float64
	y := make([]float64, n) // forward-substitution workspace
	x := make([]float64, n) // backward-substitution workspace
	for col := 0; col < n; col++ {
		// Forward substitution: L·y = e_col.
		for i := 0; i < n; i++ {
			sum = 0
			base := i * n
			for k := 0; k < i; k++ {
				sum += l.data[base+k] * y[k]
			}
			if i == col {
				y[i] = 1.0 - sum
			} else {
				y[i] = -sum
			}
		}
		// Backward substitution: U·x = y.
		for i := n - 1; i >= 0; i-- {
			sum = 0
			base := i * n
			for k := i + 1; k < n; k++ {
				sum += u.data[base+k] * x[k]
			}
			pivot = u.data[base+i]
			if pivot == 0 {
				return nil, matrixErrorf(opInverse, ErrSingular)
			}
			x[i] = (y[i] - sum) / pivot
		}
		// Write x into column col.
		for i := 0; i < n; i++ {
			inv.data[i*n+col] = x[i]
		}
	}

	return inv, nil
}
