// SPDX-License-Identifier: MIT

// Package unfolding inverts detector smearing: given a measured reco-space
// signal, its covariance, a smearing (response) matrix and a true-space
// prior, it produces the unfolded true-space signal and its covariance.
//
// Two interchangeable algorithms implement the Algorithm interface:
//
//   - WienerSVD — a one-shot linear estimator: whiten the response with the
//     inverse square root of the measurement covariance, decompose via SVD,
//     damp the noisy modes with a Wiener filter shaped by a regularization
//     matrix (identity, first- or second-difference), and assemble the
//     unfolding matrix from the factors. With the filter disabled it reduces
//     to a pure (pseudo-inverse) least-squares inversion.
//
//   - DAgostini — the iterative Bayesian estimator: starting from the prior,
//     repeatedly update each true bin by Bayes' rule with the smearing matrix
//     as likelihood, until a fixed iteration count or a figure-of-merit
//     threshold is reached. A hard iteration cap guards against oscillation;
//     hitting the cap degrades the result instead of aborting.
//
// Blockwise runs either algorithm independently per disconnected observable
// block and reassembles a whole-space result with exactly zero cross-block
// covariance — physically independent observables never acquire correlations
// from a shared fit.
//
// Every run leaves its inputs untouched; algorithms are stateless after
// construction and safe for concurrent use.
package unfolding
