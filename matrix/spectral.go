// SPDX-License-Identifier: MIT
// Package matrix: spectral kernels for symmetric matrices.
// EigenSym is a classical Jacobi rotation solver (largest off-diagonal pivot,
// deterministic scan order). SymInverseSqrt builds C^{-1/2} from the eigen
// system with pseudo-inverse semantics on the (near-)null space, which is what
// whitening a finite-sample covariance estimate requires.

package matrix

import "math"

// Spectral defaults (single source of truth).
const (
	// DefaultEigenTol is the off-diagonal convergence threshold for EigenSym.
	DefaultEigenTol = 1e-12

	// DefaultEigenMaxIter caps the number of Jacobi rotations.
	DefaultEigenMaxIter = 10000

	// DefaultRankTol is the relative eigenvalue/singular-value cutoff below
	// which a mode is treated as null (pseudo-inverse semantics).
	DefaultRankTol = 1e-12
)

// EigenSym computes eigenvalues and eigenvectors of a symmetric matrix via
// Jacobi rotations.
// Stage 1 (Validate): square and symmetric within tol.
// Stage 2 (Execute): repeatedly pick the largest |A[p,q]| in fixed i→j order
// and rotate it to zero, accumulating the rotations into Q.
// Returns the eigenvalues (diagonal of the rotated matrix, unsorted) and Q
// whose columns are the matching eigenvectors.
// Errors: ErrNilMatrix, ErrNonSquare, ErrAsymmetry, ErrEigenFailed (tolerance
// not reached within maxIter rotations).
// Complexity: O(maxIter·n²) pivot scans plus O(n) per rotation; Space O(n²).
func EigenSym(m *Dense, tol float64, maxIter int) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, tol); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	n := m.r
	a := m.Clone()
	q, err := NewIdentity(n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}

	var (
		p, pivQ            int
		maxOff, off        float64
		app, aqq, apq      float64
		aip, aiq, qip, qiq float64
		theta, t, c, s     float64
	)
	for iter := 0; iter < maxIter; iter++ {
		// Pivot search: largest |A[p,q]| over the strict upper triangle.
		maxOff = 0
		for i := 0; i < n; i++ {
			base := i * n
			for j := i + 1; j < n; j++ {
				off = math.Abs(a.data[base+j])
				if off > maxOff {
					maxOff, p, pivQ = off, i, j
				}
			}
		}
		if maxOff < tol {
			break // converged
		}

		app = a.data[p*n+p]
		aqq = a.data[pivQ*n+pivQ]
		apq = a.data[p*n+pivQ]
		// Rotation parameters: θ = (aqq−app)/(2·apq), t = sign(θ)/(|θ|+√(θ²+1)).
		theta = (aqq - app) / (2 * apq)
		t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
		c = 1.0 / math.Sqrt(t*t+1)
		s = t * c

		// Apply the rotation to A, preserving symmetry.
		for i := 0; i < n; i++ {
			if i == p || i == pivQ {
				continue
			}
			aip = a.data[i*n+p]
			aiq = a.data[i*n+pivQ]
			a.data[i*n+p], a.data[p*n+i] = c*aip-s*aiq, c*aip-s*aiq
			a.data[i*n+pivQ], a.data[pivQ*n+i] = s*aip+c*aiq, s*aip+c*aiq
		}
		a.data[p*n+p] = c*c*app - 2*c*s*apq + s*s*aqq
		a.data[pivQ*n+pivQ] = s*s*app + 2*c*s*apq + c*c*aqq
		a.data[p*n+pivQ], a.data[pivQ*n+p] = 0, 0

		// Accumulate the rotation into Q.
		for i := 0; i < n; i++ {
			qip = q.data[i*n+p]
			qiq = q.data[i*n+pivQ]
			q.data[i*n+p] = c*qip - s*qiq
			q.data[i*n+pivQ] = s*qip + c*qiq
		}
	}

	// Final convergence check on the strict upper triangle.
	maxOff = 0
	for i := 0; i < n; i++ {
		base := i * n
		for j := i + 1; j < n; j++ {
			off = math.Abs(a.data[base+j])
			if off > maxOff {
				maxOff = off
			}
		}
	}
	if maxOff >= tol {
		return nil, nil, matrixErrorf(opEigen, ErrEigenFailed)
	}

	eigs := make([]float64, n)
	for i := 0; i < n; i++ {
		eigs[i] = a.data[i*n+i]
	}

	return eigs, q, nil
}

// SymInverseSqrt computes C^{-1/2} for a symmetric positive semi-definite
// matrix via its eigen system: C^{-1/2} = Q·diag(f(λ))·Qᵀ with f(λ) = 1/√λ.
//
// Pseudo-inverse semantics on the null space: eigenvalues λ ≤ rankTol·λmax are
// mapped to 0 instead of blowing up — the whitening transform simply ignores
// directions the covariance carries no information about. Eigenvalues more
// negative than -rankTol·λmax violate positive semi-definiteness beyond the
// finite-sample tolerance and surface as ErrNotPSD.
//
// Errors: ErrNilMatrix, ErrNonSquare, ErrAsymmetry, ErrEigenFailed, ErrNotPSD.
// Complexity: dominated by EigenSym, then O(n³) for the recomposition.
func SymInverseSqrt(c *Dense, rankTol float64) (*Dense, error) {
	if rankTol <= 0 {
		rankTol = DefaultRankTol
	}
	// Convergence and symmetry thresholds scale with the matrix magnitude:
	// a covariance of counts lives many orders above 1.
	scale, err := MaxAbs(c)
	if err != nil {
		return nil, matrixErrorf(opInvSqrt, err)
	}
	if scale < 1 {
		scale = 1
	}
	eigs, q, err := EigenSym(c, DefaultEigenTol*scale, DefaultEigenMaxIter)
	if err != nil {
		return nil, matrixErrorf(opInvSqrt, err)
	}
	n := c.r

	// Largest eigenvalue sets the absolute cutoff scale.
	var lambdaMax float64
	for _, l := range eigs {
		if l > lambdaMax {
			lambdaMax = l
		}
	}
	cutoff := rankTol * lambdaMax

	// f(λ): 1/√λ above the cutoff, 0 at/below it; reject significant negatives.
	f := make([]float64, n)
	for i, l := range eigs {
		switch {
		case l > cutoff:
			f[i] = 1.0 / math.Sqrt(l)
		case l < -cutoff:
			return nil, matrixErrorf(opInvSqrt, ErrNotPSD)
		default:
			f[i] = 0 // null direction: pseudo-inverse semantics
		}
	}

	// Recompose: out[i,j] = Σ_k Q[i,k]·f[k]·Q[j,k].
	out, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opInvSqrt, err)
	}
	var acc, fk float64
	for k := 0; k < n; k++ {
		fk = f[k]
		if fk == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			acc = fk * q.data[i*n+k]
			if acc == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out.data[i*n+j] += acc * q.data[j*n+k]
			}
		}
	}

	return out, nil
}
