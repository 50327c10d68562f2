// SPDX-License-Identifier: MIT
// Package matrix: one-sided Jacobi singular value decomposition.
// The engine's matrices are small and dense; Hestenes' one-sided Jacobi is
// simple, deterministic, and accurate for this regime. Column pairs are
// orthogonalized in fixed sweep order until every pair is orthogonal within
// tolerance, then singular values fall out as column norms.

package matrix

import (
	"math"
	"sort"
)

// SVD sweep defaults (single source of truth).
const (
	// DefaultSVDTol is the relative column-orthogonality threshold.
	DefaultSVDTol = 1e-12

	// DefaultSVDMaxSweeps caps the number of full column-pair sweeps.
	DefaultSVDMaxSweeps = 60
)

// SVD computes the thin singular value decomposition A = U·diag(s)·Vᵀ with
// k = min(rows, cols): U is rows×k with orthonormal columns, s holds the k
// singular values in descending order, V is cols×k with orthonormal columns.
//
// Stage 1 (Validate): non-nil, finite input. Tall-or-square inputs are
// processed directly; wide inputs (rows < cols) are decomposed through Aᵀ and
// the factors swapped, so callers never need to care about orientation.
// Stage 2 (Execute): one-sided Jacobi sweeps over all column pairs (p<q) in
// fixed order; each rotation orthogonalizes one pair in the working copy and
// is mirrored into V. Sweeps repeat until no pair exceeded tol or the sweep
// budget is exhausted.
// Stage 3 (Finalize): s_j = ‖B[:,j]‖; U[:,j] = B[:,j]/s_j (zero columns stay
// zero for exactly rank-deficient inputs); factors are sorted by descending s.
//
// Errors: ErrNilMatrix, ErrNaNInf, ErrSVDFailed (tol not reached in budget).
// Complexity: O(sweeps·rows·cols²) time, O(rows·cols) space.
func SVD(a *Dense, tol float64, maxSweeps int) (u *Dense, s []float64, v *Dense, err error) {
	if err = ValidateNotNil(a); err != nil {
		return nil, nil, nil, matrixErrorf(opSVD, err)
	}
	if err = ValidateFinite(a); err != nil {
		return nil, nil, nil, matrixErrorf(opSVD, err)
	}
	if tol <= 0 {
		tol = DefaultSVDTol
	}
	if maxSweeps <= 0 {
		maxSweeps = DefaultSVDMaxSweeps
	}

	// Wide input: decompose the transpose and swap the factors.
	if a.r < a.c {
		at, terr := Transpose(a)
		if terr != nil {
			return nil, nil, nil, matrixErrorf(opSVD, terr)
		}
		ut, st, vt, serr := SVD(at, tol, maxSweeps)
		if serr != nil {
			return nil, nil, nil, serr
		}

		return vt, st, ut, nil // Aᵀ = U'SV'ᵀ  ⇒  A = V'SU'ᵀ
	}

	m, n := a.r, a.c
	b := a.Clone()
	v, err = NewIdentity(n)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opSVD, err)
	}

	// Jacobi sweeps: orthogonalize every column pair (p,q), p<q.
	var (
		alpha, beta, gamma float64 // ‖b_p‖², ‖b_q‖², b_p·b_q
		zeta, t, c, sn     float64 // rotation parameters
		bp, bq, vp, vq     float64
		converged          bool
	)
	for sweep := 0; sweep < maxSweeps; sweep++ {
		converged = true
		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				// Column moments in one pass.
				alpha, beta, gamma = 0, 0, 0
				for i := 0; i < m; i++ {
					bp = b.data[i*n+p]
					bq = b.data[i*n+q]
					alpha += bp * bp
					beta += bq * bq
					gamma += bp * bq
				}
				// Orthogonal enough within relative tolerance: skip.
				if math.Abs(gamma) <= tol*math.Sqrt(alpha*beta) {
					continue
				}
				converged = false
				// Jacobi rotation zeroing the (p,q) inner product.
				zeta = (beta - alpha) / (2 * gamma)
				t = math.Copysign(1.0/(math.Abs(zeta)+math.Hypot(zeta, 1)), zeta)
				c = 1.0 / math.Hypot(t, 1)
				sn = c * t
				// Rotate columns p,q of B and of V.
				for i := 0; i < m; i++ {
					bp = b.data[i*n+p]
					bq = b.data[i*n+q]
					b.data[i*n+p] = c*bp - sn*bq
					b.data[i*n+q] = sn*bp + c*bq
				}
				for i := 0; i < n; i++ {
					vp = v.data[i*n+p]
					vq = v.data[i*n+q]
					v.data[i*n+p] = c*vp - sn*vq
					v.data[i*n+q] = sn*vp + c*vq
				}
			}
		}
		if converged {
			break
		}
	}
	if !converged {
		return nil, nil, nil, matrixErrorf(opSVD, ErrSVDFailed)
	}

	// Column norms become singular values; normalized columns become U.
	s = make([]float64, n)
	u, err = NewDense(m, n)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opSVD, err)
	}
	var norm float64
	for j := 0; j < n; j++ {
		norm = 0
		for i := 0; i < m; i++ {
			norm += b.data[i*n+j] * b.data[i*n+j]
		}
		norm = math.Sqrt(norm)
		s[j] = norm
		if norm == 0 {
			continue // exactly null column: leave U[:,j] zero
		}
		for i := 0; i < m; i++ {
			u.data[i*n+j] = b.data[i*n+j] / norm
		}
	}

	// Sort by descending singular value, permuting U and V columns alongside.
	order := make([]int, n)
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(x, y int) bool { return s[order[x]] > s[order[y]] })
	sortedS := make([]float64, n)
	sortedU, _ := NewDense(m, n)
	sortedV, _ := NewDense(n, n)
	for dst, src := range order {
		sortedS[dst] = s[src]
		for i := 0; i < m; i++ {
			sortedU.data[i*n+dst] = u.data[i*n+src]
		}
		for i := 0; i < n; i++ {
			sortedV.data[i*n+dst] = v.data[i*n+src]
		}
	}

	return sortedU, sortedS, sortedV, nil
}

// PseudoInverse computes the Moore–Penrose pseudo-inverse A⁺ = V·diag(s⁺)·Uᵀ,
// where s⁺ inverts singular values above rankTol·s_max and zeroes the rest.
// This is the well-defined fallback for exactly singular or ill-conditioned
// systems: it never fails on rank deficiency.
// Errors: ErrNilMatrix, ErrNaNInf, ErrSVDFailed.
// Complexity: dominated by SVD, then O(cols²·rows) for the recomposition.
func PseudoInverse(a *Dense, rankTol float64) (*Dense, error) {
	if rankTol <= 0 {
		rankTol = DefaultRankTol
	}
	u, s, v, err := SVD(a, DefaultSVDTol, DefaultSVDMaxSweeps)
	if err != nil {
		return nil, matrixErrorf(opPinv, err)
	}
	k := len(s)
	cutoff := 0.0
	if k > 0 {
		cutoff = rankTol * s[0] // s is sorted descending
	}

	// out[j,i] = Σ_t V[j,t]·(1/s_t)·U[i,t] over retained modes t.
	out, err := NewDense(a.c, a.r)
	if err != nil {
		return nil, matrixErrorf(opPinv, err)
	}
	var w, vj float64
	for t := 0; t < k; t++ {
		if s[t] <= cutoff || s[t] == 0 {
			continue // null mode: contributes nothing
		}
		w = 1.0 / s[t]
		for j := 0; j < a.c; j++ {
			vj = w * v.data[j*k+t]
			if vj == 0 {
				continue
			}
			for i := 0; i < a.r; i++ {
				out.data[j*a.r+i] += vj * u.data[i*k+t]
			}
		}
	}

	return out, nil
}
