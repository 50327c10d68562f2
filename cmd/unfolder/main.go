// SPDX-License-Identifier: MIT

// Command unfolder executes unfolding configurations and inspects matrix
// containers.
//
//	unfolder run config.txt
//	unfolder inspect input.mat
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/unfold/unfoldio"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		workers int
		verbose bool
	)
	root := &cobra.Command{
		Use:           "unfolder",
		Short:         "Differential cross-section unfolding",
		Long:          "Unfolds detector-smeared measurements into true-space spectra with full covariance propagation.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().IntVar(&workers, "workers", 0, "concurrent block unfoldings (0 = all CPUs)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.AddCommand(newRunCmd(&workers, &verbose), newInspectCmd())

	return root
}

func newRunCmd(workers *int, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "run <config>",
		Short: "Execute an unfolding configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(*verbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return unfoldio.NewDriver(log, *workers).RunConfigFile(cmd.Context(), args[0])
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <container>",
		Short: "List the records of a matrix container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := unfoldio.NewDriver(nil, 0).Inspect(args[0])
			if err != nil {
				return err
			}
			for _, rec := range info {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d x %d\n", rec.Name, rec.Rows, rec.Cols)
			}

			return nil
		},
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}

	return cfg.Build()
}
