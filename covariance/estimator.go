// SPDX-License-Identifier: MIT
// Package covariance: the multiverse covariance estimator.

package covariance

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/unfold/bins"
	"github.com/katalvlaran/unfold/matrix"
	"github.com/katalvlaran/unfold/universe"
)

var (
	// ErrMissingData indicates a collection without a measured data vector;
	// the data signal and the statistical term cannot be formed without it.
	ErrMissingData = errors.New("covariance: collection carries no measured data")

	// ErrBadStatMode indicates an unknown statistical-uncertainty mode.
	ErrBadStatMode = errors.New("covariance: unknown statistical mode")

	// ErrMissingTrials indicates binomial statistics requested without a
	// trials vector.
	ErrMissingTrials = errors.New("covariance: binomial statistics require a trials vector")
)

// StatMode selects the diagonal statistical-uncertainty term added to the
// systematic covariance.
type StatMode int

const (
	// StatPoisson uses var_i = max(data_i, 0): counting statistics.
	StatPoisson StatMode = iota

	// StatBinomial uses var_i = n_i·p_i·(1−p_i) with p_i = data_i/n_i, where
	// n_i comes from Options.Trials — for efficiency-like measurements.
	StatBinomial

	// StatNone adds no statistical term (closure tests on pure MC).
	StatNone
)

// Options configures the estimator.
//   - Stat: statistical-uncertainty mode (default StatPoisson).
//   - Trials: per-reco-bin trial counts, required iff Stat == StatBinomial.
//   - Workers: concurrent group evaluations; <= 0 means GOMAXPROCS.
type Options struct {
	Stat    StatMode
	Trials  []float64
	Workers int
}

// Inputs bundles the four matrices handed to the unfolding engine, plus the
// per-group covariance contributions kept for diagnostics. Value object:
// computed once, never mutated downstream.
type Inputs struct {
	DataSignal      []float64
	DataCovmat      *matrix.Dense
	Smearcept       *matrix.Dense
	PriorTrueSignal []float64

	// GroupCovariances maps variation-group name to its summand of DataCovmat
	// (ordinary reco bins, same ordering as DataCovmat).
	GroupCovariances map[string]*matrix.Dense
}

// Estimator computes Inputs from a universe collection. Safe for concurrent
// use; it holds only immutable options.
type Estimator struct {
	opts Options
}

// NewEstimator validates opts and returns a ready estimator.
func NewEstimator(opts Options) (*Estimator, error) {
	switch opts.Stat {
	case StatPoisson, StatNone:
	case StatBinomial:
		if len(opts.Trials) == 0 {
			return nil, ErrMissingTrials
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadStatMode, opts.Stat)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	return &Estimator{opts: opts}, nil
}

// Compute runs the full estimation:
// Stage 1 (Validate): collection consistency (fatal before any numeric work),
// data presence, registry restriction indices.
// Stage 2 (Execute): smearcept + prior from the nominal universe; per-group
// sample covariances concurrently; background-subtracted data signal.
// Stage 3 (Finalize): sum group covariances, add the statistical diagonal,
// mirror the upper triangle.
//
// reg selects the ordinary bins; a nil registry treats every bin as ordinary.
// Complexity: O(U·n_r²) over all universes U, plus O(n_t·n_r) for the response.
func (e *Estimator) Compute(ctx context.Context, coll *universe.Collection, reg *bins.Registry) (*Inputs, error) {
	if err := coll.Validate(); err != nil {
		return nil, fmt.Errorf("covariance: %w", err)
	}
	if coll.Data == nil {
		return nil, ErrMissingData
	}

	trueIdx, recoIdx := ordinary(coll, reg)
	if e.opts.Stat == StatBinomial && len(e.opts.Trials) != len(coll.Data) {
		return nil, fmt.Errorf("covariance: trials length %d, want %d: %w",
			len(e.opts.Trials), len(coll.Data), ErrMissingTrials)
	}

	smear, err := smearcept(coll.Nominal, trueIdx, recoIdx)
	if err != nil {
		return nil, err
	}
	prior := gather(coll.Nominal.True, trueIdx)
	signal := dataSignal(coll, recoIdx)

	groupCovs, err := e.groupCovariances(ctx, coll, recoIdx)
	if err != nil {
		return nil, err
	}

	covmat, err := e.totalCovariance(coll, recoIdx, groupCovs)
	if err != nil {
		return nil, err
	}

	return &Inputs{
		DataSignal:       signal,
		DataCovmat:       covmat,
		Smearcept:        smear,
		PriorTrueSignal:  prior,
		GroupCovariances: groupCovs,
	}, nil
}

// ordinary resolves the ordinary-bin index lists from the registry, falling
// back to the identity selection when reg is nil.
func ordinary(coll *universe.Collection, reg *bins.Registry) (trueIdx, recoIdx []int) {
	if reg != nil {
		return reg.OrdinaryTrue(), reg.OrdinaryReco()
	}
	trueIdx = make([]int, coll.NTrue())
	for i := range trueIdx {
		trueIdx[i] = i
	}
	recoIdx = make([]int, coll.NReco())
	for j := range recoIdx {
		recoIdx[j] = j
	}

	return trueIdx, recoIdx
}

// gather copies v at the given indices, preserving order.
func gather(v []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = v[i]
	}

	return out
}

// smearcept builds the response matrix from the nominal universe:
// smear[r,t] = Migration[t,r] / True[t], with an all-zero column when
// True[t] == 0 — no signal can ever migrate out of an empty true bin, and the
// division is never performed.
func smearcept(nom *universe.Universe, trueIdx, recoIdx []int) (*matrix.Dense, error) {
	smear, err := matrix.NewDense(len(recoIdx), len(trueIdx))
	if err != nil {
		return nil, fmt.Errorf("covariance: smearcept: %w", err)
	}
	var denom, mig float64
	for tc, t := range trueIdx {
		denom = nom.True[t]
		if denom == 0 {
			continue // empty true bin: column stays all-zero
		}
		for rc, r := range recoIdx {
			mig, err = nom.Migration.At(t, r)
			if err != nil {
				return nil, fmt.Errorf("covariance: smearcept: %w", err)
			}
			if mig == 0 {
				continue
			}
			if err = smear.Set(rc, tc, mig/denom); err != nil {
				return nil, fmt.Errorf("covariance: smearcept: %w", err)
			}
		}
	}

	return smear, nil
}

// dataSignal forms measured − background over ordinary reco bins. Negative
// entries after subtraction are legitimate and preserved.
func dataSignal(coll *universe.Collection, recoIdx []int) []float64 {
	out := gather(coll.Data, recoIdx)
	if coll.Background != nil {
		for k, r := range recoIdx {
			out[k] -= coll.Background[r]
		}
	}

	return out
}

// groupCovariances evaluates every variation group concurrently. Each group
// reads only immutable inputs and writes its own result slot, so the fan-out
// needs no locking; the errgroup collects the first failure.
func (e *Estimator) groupCovariances(ctx context.Context, coll *universe.Collection, recoIdx []int) (map[string]*matrix.Dense, error) {
	results := make([]*matrix.Dense, len(coll.Groups))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for gi := range coll.Groups {
		gi := gi
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cov, err := sampleCovariance(&coll.Groups[gi], coll.Nominal, recoIdx)
			if err != nil {
				return err
			}
			results[gi] = cov

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("covariance: %w", err)
	}

	out := make(map[string]*matrix.Dense, len(coll.Groups))
	for gi := range coll.Groups {
		out[coll.Groups[gi].Name] = results[gi]
	}

	return out, nil
}

// sampleCovariance computes one group's contribution:
// cov[i,j] = (1/N) Σ_u (x_u,i − c_i)(x_u,j − c_j) over the group's N
// universes, with the center c chosen by the group's CenterMode. Only the
// upper triangle is computed; the mirror happens here so every summand is
// symmetric by construction.
func sampleCovariance(grp *universe.Group, nom *universe.Universe, recoIdx []int) (*matrix.Dense, error) {
	n := len(recoIdx)
	cov, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, fmt.Errorf("covariance: group %q: %w", grp.Name, err)
	}

	// Resolve the covariance center.
	center := make([]float64, n)
	switch grp.Center {
	case universe.CenterMean:
		for _, u := range grp.Universes {
			for k, r := range recoIdx {
				center[k] += u.Reco[r]
			}
		}
		inv := 1.0 / float64(len(grp.Universes))
		for k := range center {
			center[k] *= inv
		}
	default: // CenterNominal
		for k, r := range recoIdx {
			center[k] = nom.Reco[r]
		}
	}

	// Accumulate deviations universe by universe, upper triangle only.
	// At/Set errors cannot fire after the shape validation above.
	dev := make([]float64, n)
	inv := 1.0 / float64(len(grp.Universes))
	var cij float64
	for _, u := range grp.Universes {
		for k, r := range recoIdx {
			dev[k] = u.Reco[r] - center[k]
		}
		for i := 0; i < n; i++ {
			if dev[i] == 0 {
				continue // zero deviation contributes nothing to row i
			}
			for j := i; j < n; j++ {
				cij, _ = cov.At(i, j)
				_ = cov.Set(i, j, cij+inv*dev[i]*dev[j])
			}
		}
	}

	// Mirror the upper triangle: symmetric by construction.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v, _ := cov.At(i, j)
			if err = cov.Set(j, i, v); err != nil {
				return nil, fmt.Errorf("covariance: group %q: %w", grp.Name, err)
			}
		}
	}

	return cov, nil
}

// totalCovariance sums all group contributions and adds the diagonal
// statistical term.
func (e *Estimator) totalCovariance(coll *universe.Collection, recoIdx []int, groupCovs map[string]*matrix.Dense) (*matrix.Dense, error) {
	n := len(recoIdx)
	total, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, fmt.Errorf("covariance: %w", err)
	}
	for gi := range coll.Groups {
		total, err = matrix.Add(total, groupCovs[coll.Groups[gi].Name])
		if err != nil {
			return nil, fmt.Errorf("covariance: %w", err)
		}
	}

	// Diagonal statistical term.
	var variance, d, trials, p float64
	for k, r := range recoIdx {
		switch e.opts.Stat {
		case StatNone:
			continue
		case StatBinomial:
			d, trials = coll.Data[r], e.opts.Trials[r]
			if trials <= 0 {
				continue
			}
			p = d / trials
			variance = trials * p * (1 - p)
		default: // StatPoisson
			variance = coll.Data[r]
			if variance < 0 {
				variance = 0
			}
		}
		v, _ := total.At(k, k)
		if err = total.Set(k, k, v+variance); err != nil {
			return nil, fmt.Errorf("covariance: %w", err)
		}
	}

	return total, nil
}
