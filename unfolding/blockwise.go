// SPDX-License-Identifier: MIT
// Package unfolding: blockwise orchestration over disconnected observables.

package unfolding

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/unfold/bins"
	"github.com/katalvlaran/unfold/matrix"
)

// ErrAssignmentMismatch indicates a block assignment whose bin counts do not
// match the problem.
var ErrAssignmentMismatch = errors.New("unfolding: block assignment does not match problem")

// Blockwise unfolds each disconnected observable block independently with
// alg and reassembles a whole-space result. Cross-block entries of the
// returned covariance, unfolding and additional-smearing matrices are exactly
// zero — never computed, not merely small. Blocks run concurrently (workers
// <= 0 selects GOMAXPROCS); any block failure fails the whole invocation.
//
// A single-block assignment reproduces whole-space unfolding bit for bit.
// The aggregate Status degrades if any block degraded; Iterations and
// FigureOfMerit report the worst block. Per-mode spectral diagnostics are
// block-local and therefore left empty on the assembled result.
func Blockwise(ctx context.Context, alg Algorithm, p *Problem, assign *bins.BlockAssignment, workers int) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := assign.Validate(); err != nil {
		return nil, fmt.Errorf("unfolding: %w", err)
	}
	if len(assign.True) != p.NTrue() || len(assign.Reco) != p.NReco() {
		return nil, fmt.Errorf("%w: assignment %d/%d bins, problem %d/%d",
			ErrAssignmentMismatch, len(assign.True), len(assign.Reco), p.NTrue(), p.NReco())
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	blocks := assign.Blocks()
	results := make([]*Result, len(blocks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for bi := range blocks {
		bi := bi
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sub, err := subproblem(p, &blocks[bi])
			if err != nil {
				return fmt.Errorf("block %d: %w", blocks[bi].ID, err)
			}
			if results[bi], err = alg.Run(sub); err != nil {
				return fmt.Errorf("block %d: %w", blocks[bi].ID, err)
			}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("unfolding: blockwise: %w", err)
	}

	return assemble(p, blocks, results)
}

// subproblem restricts the whole-space problem to one block's bins,
// preserving original bin order within the block.
func subproblem(p *Problem, blk *bins.Block) (*Problem, error) {
	cov, err := p.Covariance.Submatrix(blk.Reco, blk.Reco)
	if err != nil {
		return nil, err
	}
	smear, err := p.Smearcept.Submatrix(blk.Reco, blk.True)
	if err != nil {
		return nil, err
	}
	sub := &Problem{
		Signal:     make([]float64, len(blk.Reco)),
		Covariance: cov,
		Smearcept:  smear,
		Prior:      make([]float64, len(blk.True)),
	}
	for k, r := range blk.Reco {
		sub.Signal[k] = p.Signal[r]
	}
	for k, t := range blk.True {
		sub.Prior[k] = p.Prior[t]
	}

	return sub, nil
}

// assemble scatters per-block results into preallocated whole-space
// containers. Blocks own disjoint index sets, so every off-block entry stays
// at its zero initialization.
func assemble(p *Problem, blocks []bins.Block, results []*Result) (*Result, error) {
	nt, nr := p.NTrue(), p.NReco()
	whole := &Result{
		Unfolded: make([]float64, nt),
		Status:   StatusComplete,
	}
	var err error
	if whole.Covariance, err = matrix.NewDense(nt, nt); err != nil {
		return nil, fmt.Errorf("unfolding: blockwise: %w", err)
	}
	if whole.UnfoldingMatrix, err = matrix.NewDense(nt, nr); err != nil {
		return nil, fmt.Errorf("unfolding: blockwise: %w", err)
	}
	if whole.AddSmear, err = matrix.NewDense(nt, nt); err != nil {
		return nil, fmt.Errorf("unfolding: blockwise: %w", err)
	}

	for bi := range blocks {
		blk, res := &blocks[bi], results[bi]
		for k, t := range blk.True {
			whole.Unfolded[t] = res.Unfolded[k]
		}
		if err = scatter(whole.Covariance, res.Covariance, blk.True, blk.True); err != nil {
			return nil, fmt.Errorf("unfolding: blockwise: block %d: %w", blk.ID, err)
		}
		if err = scatter(whole.UnfoldingMatrix, res.UnfoldingMatrix, blk.True, blk.Reco); err != nil {
			return nil, fmt.Errorf("unfolding: blockwise: block %d: %w", blk.ID, err)
		}
		if err = scatter(whole.AddSmear, res.AddSmear, blk.True, blk.True); err != nil {
			return nil, fmt.Errorf("unfolding: blockwise: block %d: %w", blk.ID, err)
		}
		if res.Status == StatusDegraded {
			whole.Status = StatusDegraded
		}
		if res.Iterations > whole.Iterations {
			whole.Iterations = res.Iterations
		}
		if res.FigureOfMerit > whole.FigureOfMerit {
			whole.FigureOfMerit = res.FigureOfMerit
		}
	}

	return whole, nil
}

// scatter writes the block matrix src into dst at the given row/col index
// sets.
func scatter(dst, src *matrix.Dense, rows, cols []int) error {
	var v float64
	var err error
	for i, di := range rows {
		for j, dj := range cols {
			if v, err = src.At(i, j); err != nil {
				return err
			}
			if v == 0 {
				continue
			}
			if err = dst.Set(di, dj, v); err != nil {
				return err
			}
		}
	}

	return nil
}
