// Package unfold turns detector-smeared particle-physics measurements into
// differential cross-section results: true-space spectra with fully
// propagated covariance.
//
// 🚀 What is unfold?
//
//	A pipeline of small, composable packages:
//		• matrix/      — dense linear algebra: LU, symmetric eigen, SVD, pseudo-inverse
//		• bins/        — bin bookkeeping: kinds, types, blocks and the blocks-file grammar
//		• universe/    — multiverse containers: nominal prediction + systematic throws
//		• covariance/  — multiverse covariance estimator, response matrix, data signal
//		• unfolding/   — Wiener-SVD and D'Agostini algorithms, blockwise orchestration
//		• unfoldio/    — matrix containers, configuration grammar, end-to-end driver
//		• cmd/unfolder — the command line: run configurations, inspect containers
//
// The numeric core (matrix through unfolding) is pure computation: no I/O,
// no logging, deterministic results, safe for concurrent use. Files and
// structured logging live in unfoldio and the CLI.
//
// A typical run: the covariance estimator condenses hundreds of systematic
// universes into one reco-space covariance and a response matrix; the
// blockwise orchestrator splits disconnected observables apart; each block
// is unfolded by the configured algorithm; results reassemble with exactly
// zero cross-block covariance and are persisted as named matrix records.
//
//	go get github.com/katalvlaran/unfold
package unfold
