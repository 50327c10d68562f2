// SPDX-License-Identifier: MIT
// Package matrix: multiplicative and element-wise kernels.
// All kernels validate first, allocate one result, then run fixed-order loops
// over the flat backing slices. Operands are never mutated.

package matrix

import "fmt"

// Operation name constants for unified error wrapping (no magic strings).
const (
	opAdd       = "Add"
	opSub       = "Sub"
	opScale     = "Scale"
	opMul       = "Mul"
	opTranspose = "Transpose"
	opMatVec    = "MatVec"
	opSandwich  = "Sandwich"
	opInverse   = "Inverse"
	opLU        = "LU"
	opEigen     = "EigenSym"
	opSVD       = "SVD"
	opPinv      = "PseudoInverse"
	opInvSqrt   = "SymInverseSqrt"
)

// matrixErrorf wraps err with an operation tag, preserving the sentinel via %w.
// Call only with err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// addSub computes out = a + sign*b for sign ∈ {+1, -1}; shared by Add/Sub.
// Stage 1 (Validate): same shape. Stage 2 (Execute): single flat loop.
// Complexity: O(r*c) time and space.
func addSub(a, b *Dense, sign float64, tag string) (*Dense, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(tag, err)
	}
	res, err := NewDense(a.r, a.c)
	if err != nil {
		return nil, matrixErrorf(tag, err)
	}
	for idx := range a.data { // deterministic 0..n-1
		res.data[idx] = a.data[idx] + sign*b.data[idx]
	}

	return res, nil
}

// Add computes the element-wise sum C = A + B into a fresh Dense.
func Add(a, b *Dense) (*Dense, error) { return addSub(a, b, +1, opAdd) }

// Sub computes the element-wise difference C = A - B into a fresh Dense.
func Sub(a, b *Dense) (*Dense, error) { return addSub(a, b, -1, opSub) }

// Scale returns a new matrix with elements alpha*m[i,j]. O(r*c).
func Scale(m *Dense, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	res, err := NewDense(m.r, m.c)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	for idx := range m.data {
		res.data[idx] = m.data[idx] * alpha
	}

	return res, nil
}

// Mul performs matrix multiplication C = A × B.
// Stage 1 (Validate): inner dimensions must agree.
// Stage 2 (Execute): i→k→j order with row-major strides; zero A[i,k] entries
// are skipped, which pays off on sparse migration matrices.
// Complexity: O(r*n*c) time, O(r*c) space.
func Mul(a, b *Dense) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	res, err := NewDense(a.r, b.c)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	var av float64
	var baseA, baseB, baseR int
	for i := 0; i < a.r; i++ {
		baseA = i * a.c
		baseR = i * b.c
		for k := 0; k < a.c; k++ {
			av = a.data[baseA+k]
			if av == 0 {
				continue // skip zero for performance
			}
			baseB = k * b.c
			for j := 0; j < b.c; j++ {
				res.data[baseR+j] += av * b.data[baseB+j]
			}
		}
	}

	return res, nil
}

// Transpose returns mᵀ as a fresh Dense. O(r*c).
func Transpose(m *Dense) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	res, err := NewDense(m.c, m.r)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	for i := 0; i < m.r; i++ {
		base := i * m.c
		for j := 0; j < m.c; j++ {
			res.data[j*m.r+i] = m.data[base+j]
		}
	}

	return res, nil
}

// MatVec computes y = m·x for a column vector x with len(x) == m.Cols().
// One flat pass per row; zero x[j] entries are skipped.
// Complexity: O(r*c) time, O(r) space.
func MatVec(m *Dense, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.c); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]float64, m.r)
	var acc, xv float64
	for i := 0; i < m.r; i++ {
		acc = 0
		base := i * m.c
		for j := 0; j < m.c; j++ {
			xv = x[j]
			if xv != 0 {
				acc += m.data[base+j] * xv
			}
		}
		y[i] = acc
	}

	return y, nil
}

// Sandwich computes M·C·Mᵀ, the covariance-propagation product: applying the
// linear map M (t×r) to a covariance C (r×r) yields the t×t covariance of the
// mapped vector. The intermediate M·C is materialized once.
// Complexity: O(t*r² + t²*r) time, O(t*r) scratch.
func Sandwich(m, c *Dense) (*Dense, error) {
	if err := ValidateMulCompatible(m, c); err != nil {
		return nil, matrixErrorf(opSandwich, err)
	}
	if err := ValidateSquare(c); err != nil {
		return nil, matrixErrorf(opSandwich, err)
	}
	mc, err := Mul(m, c)
	if err != nil {
		return nil, matrixErrorf(opSandwich, err)
	}
	// out[i,j] = Σ_k mc[i,k] * m[j,k]  (multiply by Mᵀ without forming it).
	out, err := NewDense(m.r, m.r)
	if err != nil {
		return nil, matrixErrorf(opSandwich, err)
	}
	var acc float64
	for i := 0; i < m.r; i++ {
		baseI := i * c.c
		for j := 0; j < m.r; j++ {
			baseJ := j * m.c
			acc = 0
			for k := 0; k < c.c; k++ {
				acc += mc.data[baseI+k] * m.data[baseJ+k]
			}
			out.data[i*m.r+j] = acc
		}
	}

	return out, nil
}

// MaxAbs returns the largest absolute entry of m; 0 for the all-zero matrix.
// Used to turn relative tolerances into absolute ones at the caller's scale.
// O(r*c).
func MaxAbs(m *Dense) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf("MaxAbs", err)
	}
	var maxAbs float64
	for _, v := range m.data {
		if v < 0 {
			v = -v
		}
		if v > maxAbs {
			maxAbs = v
		}
	}

	return maxAbs, nil
}

// ColSums returns the per-column sums of m. For a smearing matrix this is the
// per-true-bin detector efficiency. O(r*c).
func ColSums(m *Dense) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf("ColSums", err)
	}
	sums := make([]float64, m.c)
	for i := 0; i < m.r; i++ {
		base := i * m.c
		for j := 0; j < m.c; j++ {
			sums[j] += m.data[base+j]
		}
	}

	return sums, nil
}
