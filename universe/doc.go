// SPDX-License-Identifier: MIT

// Package universe models the multiverse input of the covariance estimator: a
// nominal (central-value) prediction plus groups of systematically reweighted
// predictions. Each universe owns three histograms over a shared binning — a
// reco-space vector, a true-space vector, and a true×reco migration matrix
// (rows = true bins, cols = reco bins).
//
// Universes are produced by the upstream event-loop stage and consumed
// read-only here; Collection.Validate is the fail-fast gate that rejects
// inconsistent binning before any numeric work begins.
package universe
