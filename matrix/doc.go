// SPDX-License-Identifier: MIT

// Package matrix provides the dense linear-algebra kernels used by the
// unfolding engine: a row-major Dense type backed by a flat slice, element-wise
// and multiplicative kernels, a symmetric Jacobi eigen-solver, a one-sided
// Jacobi singular value decomposition, and the derived spectral operators the
// engine needs (inverse square root of a positive semi-definite covariance,
// Moore–Penrose pseudo-inverse).
//
// Design rules, enforced across the package:
//
//   - Determinism: every kernel uses fixed loop orders; identical inputs yield
//     bit-identical outputs. No randomness, no global state.
//   - Fail-fast validation: shape/nil/finiteness checks run before any numeric
//     work and return package sentinel errors (see errors.go) matched with
//     errors.Is. Kernels never panic on user-triggered conditions.
//   - Immutability: kernels never mutate their operands; results are freshly
//     allocated Dense values.
//
// The package is self-contained and dependency-free on purpose: the engine's
// covariance matrices are small (tens to a few hundred bins per block), so
// O(n³) dense kernels with predictable behavior beat a heavyweight BLAS
// binding for this workload.
package matrix
