// SPDX-License-Identifier: MIT
// Package universe: universe, variation group and collection types.

package universe

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/unfold/matrix"
)

var (
	// ErrInconsistentBinning indicates that a universe disagrees with the
	// collection's bin counts. This is a fatal configuration error: the
	// upstream table-filling stage produced incompatible histograms.
	ErrInconsistentBinning = errors.New("universe: inconsistent binning across universes")

	// ErrNoNominal indicates a collection without a central-value universe.
	ErrNoNominal = errors.New("universe: collection has no nominal universe")

	// ErrEmptyGroup indicates a variation group that carries no universes.
	ErrEmptyGroup = errors.New("universe: empty variation group")

	// ErrNegativePrior indicates a nominal true-space prediction with a
	// negative entry; priors are counts and must be non-negative.
	ErrNegativePrior = errors.New("universe: negative nominal true-space prediction")
)

// CenterMode selects the covariance center convention of a variation group.
type CenterMode int

const (
	// CenterNominal computes deviations against the nominal prediction —
	// the convention for unisim (detector/model parameter shift) variations.
	CenterNominal CenterMode = iota

	// CenterMean computes deviations against the group's own mean — the
	// convention for multisim (many-throw reweighting) variations.
	CenterMean
)

// String implements fmt.Stringer.
func (c CenterMode) String() string {
	if c == CenterNominal {
		return "nominal"
	}

	return "mean"
}

// Universe is a single prediction: one systematic throw, or the nominal.
// Migration rows are true bins, columns are reco bins. All three containers
// share the collection's binning.
type Universe struct {
	Name      string
	Index     int
	Reco      []float64
	True      []float64
	Migration *matrix.Dense
}

// validate checks this universe against the expected bin counts.
func (u *Universe) validate(nTrue, nReco int) error {
	if len(u.Reco) != nReco || len(u.True) != nTrue {
		return fmt.Errorf("universe %s[%d]: reco=%d true=%d, want reco=%d true=%d: %w",
			u.Name, u.Index, len(u.Reco), len(u.True), nReco, nTrue, ErrInconsistentBinning)
	}
	if u.Migration == nil {
		return fmt.Errorf("universe %s[%d]: nil migration: %w", u.Name, u.Index, ErrInconsistentBinning)
	}
	if u.Migration.Rows() != nTrue || u.Migration.Cols() != nReco {
		return fmt.Errorf("universe %s[%d]: migration %dx%d, want %dx%d: %w",
			u.Name, u.Index, u.Migration.Rows(), u.Migration.Cols(), nTrue, nReco, ErrInconsistentBinning)
	}

	return nil
}

// Group is one systematic variation: a named set of universes sharing a
// covariance-center convention.
type Group struct {
	Name      string
	Center    CenterMode
	Universes []*Universe
}

// Collection is the full multiverse input: the nominal universe, the
// variation groups, the measured reco-space data and the non-signal (to be
// subtracted) prediction. Vectors span the full bin set; the covariance
// estimator restricts to ordinary bins through the bin registry.
type Collection struct {
	Nominal *Universe
	Groups  []Group

	// Data is the measured reco-space count vector.
	Data []float64

	// Background is the non-signal MC prediction subtracted from Data to form
	// the data signal. May be nil when nothing is subtracted.
	Background []float64
}

// NTrue returns the number of true bins, taken from the nominal universe.
func (c *Collection) NTrue() int {
	if c.Nominal == nil {
		return 0
	}

	return len(c.Nominal.True)
}

// NReco returns the number of reco bins, taken from the nominal universe.
func (c *Collection) NReco() int {
	if c.Nominal == nil {
		return 0
	}

	return len(c.Nominal.Reco)
}

// Validate fail-fast checks the whole collection: nominal present with
// non-negative true-space prediction, every group non-empty, every universe
// consistent with the nominal binning, data/background lengths matching the
// reco side. Runs before any covariance work.
// Complexity: O(total universes + bins).
func (c *Collection) Validate() error {
	if c.Nominal == nil {
		return ErrNoNominal
	}
	nTrue, nReco := c.NTrue(), c.NReco()
	if nTrue == 0 || nReco == 0 {
		return fmt.Errorf("universe: nominal has %d true / %d reco bins: %w", nTrue, nReco, ErrInconsistentBinning)
	}
	if err := c.Nominal.validate(nTrue, nReco); err != nil {
		return err
	}
	for i, v := range c.Nominal.True {
		if v < 0 {
			return fmt.Errorf("universe: nominal true bin %d = %g: %w", i, v, ErrNegativePrior)
		}
	}
	for _, g := range c.Groups {
		if len(g.Universes) == 0 {
			return fmt.Errorf("universe: group %q: %w", g.Name, ErrEmptyGroup)
		}
		for _, u := range g.Universes {
			if err := u.validate(nTrue, nReco); err != nil {
				return fmt.Errorf("universe: group %q: %w", g.Name, err)
			}
		}
	}
	if c.Data != nil && len(c.Data) != nReco {
		return fmt.Errorf("universe: data vector has %d bins, want %d: %w", len(c.Data), nReco, ErrInconsistentBinning)
	}
	if c.Background != nil && len(c.Background) != nReco {
		return fmt.Errorf("universe: background vector has %d bins, want %d: %w", len(c.Background), nReco, ErrInconsistentBinning)
	}

	return nil
}
