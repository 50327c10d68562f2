// SPDX-License-Identifier: MIT
// Package unfoldio: the end-to-end driver.

package unfoldio

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/katalvlaran/unfold/bins"
	"github.com/katalvlaran/unfold/unfolding"
)

// Driver executes one configuration: load the input container, restrict to
// blocks, unfold, persist the output records. Numeric work stays in the
// unfolding package; the driver only moves bytes and logs.
type Driver struct {
	log     *zap.Logger
	workers int
}

// NewDriver returns a driver logging through log (nil selects a no-op
// logger); workers bounds concurrent block unfoldings, <= 0 meaning
// GOMAXPROCS.
func NewDriver(log *zap.Logger, workers int) *Driver {
	if log == nil {
		log = zap.NewNop()
	}

	return &Driver{log: log, workers: workers}
}

// RunConfigFile parses the configuration at path and runs it. Relative
// InputFile/OutputFile/BlocksFile paths resolve against the process working
// directory, not the configuration file.
func (d *Driver) RunConfigFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unfoldio: open configuration: %w", err)
	}
	defer f.Close()

	cfg, err := ParseConfig(f)
	if err != nil {
		return fmt.Errorf("unfoldio: %s: %w", path, err)
	}

	return d.Run(ctx, cfg)
}

// Run executes a parsed configuration.
func (d *Driver) Run(ctx context.Context, cfg *Config) error {
	p, err := d.loadProblem(cfg.InputFile)
	if err != nil {
		return err
	}
	assign, err := d.loadAssignment(cfg.BlocksFile, p)
	if err != nil {
		return err
	}

	d.log.Info("unfolding",
		zap.String("algorithm", cfg.Algorithm.Name()),
		zap.Int("true_bins", p.NTrue()),
		zap.Int("reco_bins", p.NReco()),
		zap.Int("blocks", len(assign.Blocks())))

	res, err := unfolding.Blockwise(ctx, cfg.Algorithm, p, assign, d.workers)
	if err != nil {
		return err
	}
	if res.Status == unfolding.StatusDegraded {
		d.log.Warn("iteration cap hit before convergence; result degraded",
			zap.Int("iterations", res.Iterations),
			zap.Float64("figure_of_merit", res.FigureOfMerit))
	}

	if err = d.writeResult(cfg.OutputFile, res); err != nil {
		return err
	}
	d.log.Info("results written",
		zap.String("output", cfg.OutputFile),
		zap.Stringer("status", res.Status))

	return nil
}

// Inspect loads the container at path and describes its records.
func (d *Driver) Inspect(path string) ([]RecordInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unfoldio: open container: %w", err)
	}
	defer f.Close()

	c, err := ParseContainer(f)
	if err != nil {
		return nil, fmt.Errorf("unfoldio: %s: %w", path, err)
	}

	return c.Describe(), nil
}

func (d *Driver) loadProblem(path string) (*unfolding.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unfoldio: open input: %w", err)
	}
	defer f.Close()

	c, err := ParseContainer(f)
	if err != nil {
		return nil, fmt.Errorf("unfoldio: %s: %w", path, err)
	}

	p, err := ProblemFromContainer(c)
	if err != nil {
		return nil, fmt.Errorf("unfoldio: %s: %w", path, err)
	}

	return p, nil
}

func (d *Driver) loadAssignment(path string, p *unfolding.Problem) (*bins.BlockAssignment, error) {
	if path == "" {
		return bins.SingleBlock(p.NTrue(), p.NReco()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unfoldio: open blocks file: %w", err)
	}
	defer f.Close()

	a, err := bins.ParseBlocks(f)
	if err != nil {
		return nil, fmt.Errorf("unfoldio: %s: %w", path, err)
	}

	return a, nil
}

func (d *Driver) writeResult(path string, res *unfolding.Result) error {
	c, err := ContainerFromResult(res)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unfoldio: create output: %w", err)
	}
	if err = WriteContainer(f, c); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}
