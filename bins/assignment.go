// SPDX-License-Identifier: MIT
// Package bins: the block assignment and its partition views.

package bins

import (
	"fmt"
	"sort"
)

// BlockAssignment maps every ordinary bin to its block: True[i] is the block
// index of true bin i, Reco[j] the block index of reco bin j. Block indices
// are non-negative but need not be contiguous.
type BlockAssignment struct {
	True []int
	Reco []int
}

// SingleBlock returns the degenerate assignment mapping every bin to block 0.
// Blockwise unfolding under this assignment reduces to whole-space unfolding,
// which is the regression anchor for the orchestrator.
func SingleBlock(nTrue, nReco int) *BlockAssignment {
	return &BlockAssignment{
		True: make([]int, nTrue),
		Reco: make([]int, nReco),
	}
}

// Block is an index-set view over one disconnected observable group: the
// positions (not detector bin IDs) of its true and reco bins within the
// ordinary-bin vectors, in original bin order.
type Block struct {
	ID   int
	True []int
	Reco []int
}

// Validate checks the partition invariants:
//   - both sides non-empty,
//   - every block index non-negative,
//   - every block present on both the true and the reco side (a block with
//     bins on only one side cannot be unfolded).
func (a *BlockAssignment) Validate() error {
	if len(a.True) == 0 || len(a.Reco) == 0 {
		return ErrEmptyRegistry
	}
	trueBlocks := map[int]bool{}
	for i, blk := range a.True {
		if blk < 0 {
			return fmt.Errorf("bins: true bin %d: %w", i, ErrNegativeBlock)
		}
		trueBlocks[blk] = true
	}
	recoBlocks := map[int]bool{}
	for j, blk := range a.Reco {
		if blk < 0 {
			return fmt.Errorf("bins: reco bin %d: %w", j, ErrNegativeBlock)
		}
		recoBlocks[blk] = true
	}
	for blk := range trueBlocks {
		if !recoBlocks[blk] {
			return fmt.Errorf("bins: block %d has no reco bins: %w", blk, ErrLonelyBlock)
		}
	}
	for blk := range recoBlocks {
		if !trueBlocks[blk] {
			return fmt.Errorf("bins: block %d has no true bins: %w", blk, ErrLonelyBlock)
		}
	}

	return nil
}

// Blocks partitions the assignment into per-block index-set views, ordered by
// ascending block ID; within a block, bin positions keep original order.
// Complexity: O(n log n) in the number of distinct blocks.
func (a *BlockAssignment) Blocks() []Block {
	byID := map[int]*Block{}
	var ids []int
	for i, blk := range a.True {
		v, ok := byID[blk]
		if !ok {
			v = &Block{ID: blk}
			byID[blk] = v
			ids = append(ids, blk)
		}
		v.True = append(v.True, i)
	}
	for j, blk := range a.Reco {
		v, ok := byID[blk]
		if !ok {
			v = &Block{ID: blk}
			byID[blk] = v
			ids = append(ids, blk)
		}
		v.Reco = append(v.Reco, j)
	}
	sort.Ints(ids)

	out := make([]Block, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byID[id])
	}

	return out
}
