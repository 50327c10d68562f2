// SPDX-License-Identifier: MIT

// Package bins holds the static bin metadata the unfolding engine is built
// around: true-space and reco-space bins, their type tags (only ordinary
// signal bins participate in unfolding; sideband bins are bookkeeping for the
// upstream selection), and their grouping into blocks — disconnected observable
// subspaces that are unfolded independently so that a shared global fit never
// injects spurious cross-observable correlations.
//
// The package also owns the blocks-file text grammar:
//
//	<num_true_bins>
//	<true_bin_index> <block_index>   (repeated num_true_bins times)
//	<num_reco_bins>
//	<reco_bin_index> <block_index>   (repeated num_reco_bins times)
//
// Indices reference ordinary bins only. ParseBlocks and WriteBlocks round-trip
// losslessly.
package bins
