// SPDX-License-Identifier: MIT
// Package bins: bin metadata and the registry.

package bins

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRegistry indicates a registry with no ordinary bin on one side.
	ErrEmptyRegistry = errors.New("bins: registry has no ordinary bins")

	// ErrNegativeBlock indicates a bin carrying a negative block index.
	ErrNegativeBlock = errors.New("bins: negative block index")

	// ErrDuplicateBin indicates the same bin index declared twice on one side.
	ErrDuplicateBin = errors.New("bins: duplicate bin index")

	// ErrLonelyBlock indicates a block index present on only one of the true
	// and reco sides; such a block cannot be unfolded.
	ErrLonelyBlock = errors.New("bins: block missing true or reco bins")
)

// Kind tells whether a bin lives in true space or reco space.
type Kind int

const (
	// KindTrue marks a true-space (pre-smearing) bin.
	KindTrue Kind = iota

	// KindReco marks a reco-space (post-smearing, measured) bin.
	KindReco
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == KindTrue {
		return "true"
	}

	return "reco"
}

// Type is the bin type tag. Only ordinary (signal) bins participate in
// unfolding; sideband bins constrain backgrounds upstream and are excluded
// from every matrix this module handles.
type Type int

const (
	// TypeOrdinary marks a signal bin that participates in unfolding.
	TypeOrdinary Type = iota

	// TypeSideband marks a background/sideband bin, excluded from unfolding.
	TypeSideband
)

// String implements fmt.Stringer.
func (t Type) String() string {
	if t == TypeOrdinary {
		return "ordinary"
	}

	return "sideband"
}

// Bin is one bin's static metadata. Index is the bin's position within its
// kind's ordinary-bin vector; Block groups bins spanning the same disconnected
// observable.
type Bin struct {
	Index int
	Kind  Kind
	Type  Type
	Block int
}

// Registry is the immutable bin table shared by the covariance estimator and
// the block orchestrator. Construct with NewRegistry; the zero value is not
// usable.
type Registry struct {
	trueBins []Bin
	recoBins []Bin
}

// NewRegistry validates and freezes a bin table.
// Stage 1: split by kind, reject duplicate indices per side.
// Stage 2: reject negative block indices on ordinary bins.
// The per-block true/reco pairing is validated later by Assignment, once
// sideband bins have been filtered out.
func NewRegistry(all []Bin) (*Registry, error) {
	r := &Registry{}
	seenTrue := map[int]bool{}
	seenReco := map[int]bool{}
	for _, b := range all {
		seen := seenTrue
		if b.Kind == KindReco {
			seen = seenReco
		}
		if seen[b.Index] {
			return nil, fmt.Errorf("bins: %s bin %d: %w", b.Kind, b.Index, ErrDuplicateBin)
		}
		seen[b.Index] = true
		if b.Type == TypeOrdinary && b.Block < 0 {
			return nil, fmt.Errorf("bins: %s bin %d: %w", b.Kind, b.Index, ErrNegativeBlock)
		}
		if b.Kind == KindTrue {
			r.trueBins = append(r.trueBins, b)
		} else {
			r.recoBins = append(r.recoBins, b)
		}
	}

	return r, nil
}

// TrueBins returns a copy of the true-space bin list in declaration order.
func (r *Registry) TrueBins() []Bin { return append([]Bin(nil), r.trueBins...) }

// RecoBins returns a copy of the reco-space bin list in declaration order.
func (r *Registry) RecoBins() []Bin { return append([]Bin(nil), r.recoBins...) }

// OrdinaryTrue returns the indices of ordinary true bins, declaration order.
func (r *Registry) OrdinaryTrue() []int { return ordinaryIndices(r.trueBins) }

// OrdinaryReco returns the indices of ordinary reco bins, declaration order.
func (r *Registry) OrdinaryReco() []int { return ordinaryIndices(r.recoBins) }

func ordinaryIndices(bs []Bin) []int {
	var out []int
	for _, b := range bs {
		if b.Type == TypeOrdinary {
			out = append(out, b.Index)
		}
	}

	return out
}

// Assignment derives the block assignment over ordinary bins: position i of
// each side holds the block index of the i-th ordinary bin. The result is
// validated (see BlockAssignment.Validate).
func (r *Registry) Assignment() (*BlockAssignment, error) {
	a := &BlockAssignment{}
	for _, b := range r.trueBins {
		if b.Type == TypeOrdinary {
			a.True = append(a.True, b.Block)
		}
	}
	for _, b := range r.recoBins {
		if b.Type == TypeOrdinary {
			a.Reco = append(a.Reco, b.Block)
		}
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	return a, nil
}
