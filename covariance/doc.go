// SPDX-License-Identifier: MIT

// Package covariance converts a multiverse universe collection into the four
// inputs of the unfolding engine:
//
//   - data_signal: background-subtracted measured counts over ordinary reco
//     bins (negative entries after subtraction are legitimate);
//   - data_covmat: the summed systematic covariance across all variation
//     groups plus a diagonal statistical term, symmetric by construction;
//   - smearcept: the nominal detector-response matrix, reco×true, whose
//     column t sums to the detector efficiency of true bin t;
//   - prior_true_signal: the nominal true-space prediction.
//
// Each variation group contributes a sample covariance of its universes'
// reco-space predictions, centered either on the nominal prediction (unisim
// convention) or on the group mean (multisim convention) — an explicit
// per-group runtime setting, never a process-global flag. Groups are
// independent and evaluated concurrently.
package covariance
