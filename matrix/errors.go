// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// This file defines ONLY package-level sentinel errors. All kernels return
// these sentinels (optionally wrapped with an operation tag via %w) and tests
// check them with errors.Is. No kernel panics on user-triggered conditions.

package matrix

import "errors"

var (
	// ErrBadShape is returned when a requested shape is invalid (rows or cols <= 0).
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange indicates that a row or column index is outside valid bounds.
	// Public indexers (At/Set) return this, they never panic.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g. Add/Sub on different shapes, or Mul where a.Cols != b.Rows.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrAsymmetry signals that a matrix expected to be symmetric violated
	// symmetry within the requested tolerance.
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within tol")

	// ErrNaNInf signals a NaN or ±Inf entry where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil *Dense was passed where a value is required.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrSingular is returned when a zero pivot is encountered during LU-based
	// inversion. Callers that can tolerate rank deficiency should fall back to
	// PseudoInverse.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrEigenFailed indicates the Jacobi eigen-solver did not reach the
	// requested off-diagonal tolerance within its iteration budget.
	ErrEigenFailed = errors.New("matrix: eigen decomposition failed to converge")

	// ErrSVDFailed indicates the one-sided Jacobi SVD did not converge within
	// its sweep budget.
	ErrSVDFailed = errors.New("matrix: singular value decomposition failed to converge")

	// ErrNotPSD is returned when a matrix required to be positive semi-definite
	// (within tolerance) exposes a significantly negative eigenvalue.
	ErrNotPSD = errors.New("matrix: matrix is not positive semi-definite within tol")
)
