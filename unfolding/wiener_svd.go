// SPDX-License-Identifier: MIT
// Package unfolding: the Wiener-SVD spectral algorithm.

package unfolding

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/unfold/matrix"
)

// RegKind selects the regularization matrix shaping the Wiener filter.
type RegKind int

const (
	// RegIdentity regularizes in the raw true-bin basis.
	RegIdentity RegKind = iota

	// RegFirstDeriv regularizes the discrete first difference over true-bin
	// order — damps slopes, favours flat spectra.
	RegFirstDeriv

	// RegSecondDeriv regularizes the discrete second difference — damps
	// curvature, favours smooth spectra.
	RegSecondDeriv
)

// String implements fmt.Stringer; the value doubles as the config token.
func (k RegKind) String() string {
	switch k {
	case RegFirstDeriv:
		return "first-deriv"
	case RegSecondDeriv:
		return "second-deriv"
	default:
		return "identity"
	}
}

// ParseRegKind maps a config token to its RegKind.
func ParseRegKind(s string) (RegKind, error) {
	switch s {
	case "identity":
		return RegIdentity, nil
	case "first-deriv":
		return RegFirstDeriv, nil
	case "second-deriv":
		return RegSecondDeriv, nil
	default:
		return 0, fmt.Errorf("%w: regularization kind %q", ErrBadOptions, s)
	}
}

// DefaultRegEpsilon is the diagonal shift added to the difference-operator
// regularization matrices so they stay invertible; identity needs none.
const DefaultRegEpsilon = 1e-6

// WienerSVD is the one-shot spectral unfolder.
//
// Pipeline: whiten the response and the signal with C⁻¹ᐟ² of the measurement
// covariance; change basis with the regularization matrix; SVD the composite
// operator; damp each mode k by w_k = σ_k²/(σ_k² + σ_min²) where σ_min is the
// smallest retained singular value (or pass every retained mode through when
// the filter is off); assemble the unfolding matrix from the factors. Null
// modes (σ_k below the rank cutoff) are dropped, which gives pseudo-inverse
// semantics on exactly singular systems instead of a failure.
type WienerSVD struct {
	applyFilter bool
	reg         RegKind
}

// NewWienerSVD validates the regularization kind and returns the algorithm.
// With applyFilter == false the run degenerates to a pure (pseudo-inverse)
// least-squares inversion; on a square well-conditioned response with
// identity regularization that is exactly M = smearcept⁻¹.
func NewWienerSVD(applyFilter bool, reg RegKind) (*WienerSVD, error) {
	switch reg {
	case RegIdentity, RegFirstDeriv, RegSecondDeriv:
	default:
		return nil, fmt.Errorf("%w: regularization kind %d", ErrBadOptions, reg)
	}

	return &WienerSVD{applyFilter: applyFilter, reg: reg}, nil
}

// Name implements Algorithm.
func (w *WienerSVD) Name() string { return "wiener-svd" }

// Run implements Algorithm.
// Complexity: dominated by the SVD, O(max(n_r,n_t)·min(n_r,n_t)² · sweeps).
func (w *WienerSVD) Run(p *Problem) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// Whitening transform: rank-deficient covariances get pseudo-inverse
	// treatment inside SymInverseSqrt, so exactly singular inputs pass.
	white, err := matrix.SymInverseSqrt(p.Covariance, matrix.DefaultRankTol)
	if err != nil {
		return nil, fmt.Errorf("unfolding: wiener-svd: whiten covariance: %w", err)
	}
	whitened, err := matrix.Mul(white, p.Smearcept)
	if err != nil {
		return nil, fmt.Errorf("unfolding: wiener-svd: whiten response: %w", err)
	}

	regInv, err := regInverse(w.reg, p.NTrue())
	if err != nil {
		return nil, fmt.Errorf("unfolding: wiener-svd: %w", err)
	}
	composite, err := matrix.Mul(whitened, regInv)
	if err != nil {
		return nil, fmt.Errorf("unfolding: wiener-svd: %w", err)
	}

	u, s, v, err := matrix.SVD(composite, matrix.DefaultSVDTol, matrix.DefaultSVDMaxSweeps)
	if err != nil {
		return nil, fmt.Errorf("unfolding: wiener-svd: %w", err)
	}
	weights := w.filterWeights(s)

	unfoldM, err := assembleUnfolding(regInv, u, s, weights, v, white)
	if err != nil {
		return nil, fmt.Errorf("unfolding: wiener-svd: %w", err)
	}

	res := &Result{
		UnfoldingMatrix: unfoldM,
		Status:          StatusComplete,
		SingularValues:  s,
		FilterWeights:   weights,
	}
	if res.Unfolded, err = matrix.MatVec(unfoldM, p.Signal); err != nil {
		return nil, fmt.Errorf("unfolding: wiener-svd: %w", err)
	}
	if err = finishResult(p, res); err != nil {
		return nil, err
	}

	return res, nil
}

// filterWeights computes per-mode damping. Modes below the rank cutoff
// (relative to the largest singular value) are null and weighted zero; the
// damping scale is the square of the smallest retained singular value, so the
// weakest surviving mode always lands at weight 1/2 when the filter is on.
func (w *WienerSVD) filterWeights(s []float64) []float64 {
	weights := make([]float64, len(s))
	if len(s) == 0 || s[0] == 0 {
		return weights
	}
	cutoff := matrix.DefaultRankTol * s[0]
	retained := 0
	for _, sv := range s {
		if sv > cutoff {
			retained++
		}
	}
	if retained == 0 {
		return weights
	}
	if !w.applyFilter {
		for k := 0; k < retained; k++ {
			weights[k] = 1
		}

		return weights
	}
	damping := s[retained-1] * s[retained-1]
	for k := 0; k < retained; k++ {
		weights[k] = s[k] * s[k] / (s[k]*s[k] + damping)
	}

	return weights
}

// regInverse builds the regularization matrix for n true bins and inverts
// it, falling back to the pseudo-inverse on exactly singular operators.
func regInverse(kind RegKind, n int) (*matrix.Dense, error) {
	reg, err := regMatrix(kind, n)
	if err != nil {
		return nil, err
	}
	inv, err := matrix.Inverse(reg)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, matrix.ErrSingular) {
		return nil, err
	}

	return matrix.PseudoInverse(reg, matrix.DefaultRankTol)
}

// regMatrix materializes the chosen regularization operator. The difference
// kinds use one-sided stencils at the boundary rows and carry a small
// diagonal shift; below their minimum meaningful size (2 bins for the first
// difference, 3 for the second) they collapse to the identity.
func regMatrix(kind RegKind, n int) (*matrix.Dense, error) {
	switch {
	case kind == RegIdentity, kind == RegFirstDeriv && n < 2, kind == RegSecondDeriv && n < 3:
		return matrix.NewIdentity(n)
	}

	reg, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}
	set := func(i, j int, v float64) {
		// Bounds are static by construction of the loops below.
		_ = reg.Set(i, j, v)
	}
	if kind == RegFirstDeriv {
		for i := 0; i < n-1; i++ {
			set(i, i, -1+DefaultRegEpsilon)
			set(i, i+1, 1)
		}
		set(n-1, n-2, -1)
		set(n-1, n-1, 1+DefaultRegEpsilon)

		return reg, nil
	}
	// Second difference: one-sided curvature at both ends.
	set(0, 0, -2+DefaultRegEpsilon)
	set(0, 1, 1)
	for i := 1; i < n-1; i++ {
		set(i, i-1, 1)
		set(i, i, -2+DefaultRegEpsilon)
		set(i, i+1, 1)
	}
	set(n-1, n-2, 1)
	set(n-1, n-1, -2+DefaultRegEpsilon)

	return reg, nil
}

// assembleUnfolding forms M = Creg⁻¹ · V · diag(w_k/σ_k) · Uᵀ · C⁻¹ᐟ².
// The middle factor is built by scaling Uᵀ rows, so no diagonal matrix is
// ever materialized; zero-weight modes contribute nothing.
func assembleUnfolding(regInv, u *matrix.Dense, s, weights []float64, v, white *matrix.Dense) (*matrix.Dense, error) {
	k, nr := u.Cols(), u.Rows()
	scaled, err := matrix.NewDense(k, nr)
	if err != nil {
		return nil, err
	}
	var f float64
	for mode := 0; mode < k; mode++ {
		if weights[mode] == 0 || s[mode] == 0 {
			continue
		}
		f = weights[mode] / s[mode]
		for r := 0; r < nr; r++ {
			uv, atErr := u.At(r, mode)
			if atErr != nil {
				return nil, atErr
			}
			if uv == 0 {
				continue
			}
			if err = scaled.Set(mode, r, f*uv); err != nil {
				return nil, err
			}
		}
	}

	m, err := matrix.Mul(v, scaled)
	if err != nil {
		return nil, err
	}
	if m, err = matrix.Mul(regInv, m); err != nil {
		return nil, err
	}

	return matrix.Mul(m, white)
}
