// SPDX-License-Identifier: MIT
// Package unfoldio: record-name conventions and engine bridging.

package unfoldio

import (
	"fmt"

	"github.com/katalvlaran/unfold/matrix"
	"github.com/katalvlaran/unfold/unfolding"
)

// Input record names.
const (
	RecordDataSignal      = "data_signal"
	RecordDataCovmat      = "data_covmat"
	RecordSmearcept       = "smearcept"
	RecordPriorTrueSignal = "prior_true_signal"
)

// Output record names.
const (
	RecordUnfoldedSignal  = "unfolded_signal"
	RecordCovMatrix       = "cov_matrix"
	RecordUnfoldingMatrix = "unfolding_matrix"
	RecordAddSmearMatrix  = "add_smear_matrix"
)

// ProblemFromContainer extracts the four input records and checks their
// mutual dimensions: smearcept is N_reco×N_true, data_signal and the
// covariance side match N_reco, prior_true_signal matches N_true. Vector
// records are stored as n×1 matrices.
func ProblemFromContainer(c *Container) (*unfolding.Problem, error) {
	signal, err := vectorRecord(c, RecordDataSignal)
	if err != nil {
		return nil, err
	}
	prior, err := vectorRecord(c, RecordPriorTrueSignal)
	if err != nil {
		return nil, err
	}
	covmat, err := c.get(RecordDataCovmat)
	if err != nil {
		return nil, err
	}
	smear, err := c.get(RecordSmearcept)
	if err != nil {
		return nil, err
	}

	nr, nt := smear.Rows(), smear.Cols()
	if len(signal) != nr {
		return nil, fmt.Errorf("%w: %s has %d bins, %s expects %d rows",
			ErrBadContainer, RecordDataSignal, len(signal), RecordSmearcept, nr)
	}
	if len(prior) != nt {
		return nil, fmt.Errorf("%w: %s has %d bins, %s expects %d columns",
			ErrBadContainer, RecordPriorTrueSignal, len(prior), RecordSmearcept, nt)
	}
	if covmat.Rows() != nr || covmat.Cols() != nr {
		return nil, fmt.Errorf("%w: %s is %dx%d, want %dx%d",
			ErrBadContainer, RecordDataCovmat, covmat.Rows(), covmat.Cols(), nr, nr)
	}

	return &unfolding.Problem{
		Signal:     signal,
		Covariance: covmat,
		Smearcept:  smear,
		Prior:      prior,
	}, nil
}

// ContainerFromResult packs the four output records.
func ContainerFromResult(res *unfolding.Result) (*Container, error) {
	unfolded, err := columnMatrix(res.Unfolded)
	if err != nil {
		return nil, fmt.Errorf("unfoldio: %s: %w", RecordUnfoldedSignal, err)
	}
	c := NewContainer()
	for _, rec := range []struct {
		name string
		m    *matrix.Dense
	}{
		{RecordUnfoldedSignal, unfolded},
		{RecordCovMatrix, res.Covariance},
		{RecordUnfoldingMatrix, res.UnfoldingMatrix},
		{RecordAddSmearMatrix, res.AddSmear},
	} {
		if err = c.Put(rec.name, rec.m); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// vectorRecord fetches an n×1 record as a slice.
func vectorRecord(c *Container, name string) ([]float64, error) {
	m, err := c.get(name)
	if err != nil {
		return nil, err
	}
	if m.Cols() != 1 {
		return nil, fmt.Errorf("%w: %s is %dx%d, want a column vector",
			ErrBadContainer, name, m.Rows(), m.Cols())
	}

	return m.Col(0), nil
}

// columnMatrix packs a slice as an n×1 matrix.
func columnMatrix(v []float64) (*matrix.Dense, error) {
	m, err := matrix.NewDense(len(v), 1)
	if err != nil {
		return nil, err
	}
	for i, x := range v {
		if err = m.Set(i, 0, x); err != nil {
			return nil, err
		}
	}

	return m, nil
}
