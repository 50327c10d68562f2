// SPDX-License-Identifier: MIT
// Package unfoldio: the line-oriented configuration grammar.
//
//	InputFile  <path>
//	OutputFile <path>
//	BlocksFile <path>                                  (optional)
//	Unfold WienerSVD <0|1> <identity|first-deriv|second-deriv>
//	Unfold DAgostini iter <int>
//	Unfold DAgostini fm <float>
//
// Tokens are whitespace-separated; blank lines and #-comments are ignored.
// Exactly one Unfold command selects the algorithm; every command may appear
// at most once. Unknown commands are fatal.

package unfoldio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/unfold/unfolding"
)

// ErrBadConfig tags every configuration parse failure.
var ErrBadConfig = errors.New("unfoldio: malformed configuration")

// Config is a fully parsed, validated run description.
type Config struct {
	InputFile  string
	OutputFile string

	// BlocksFile is empty when the whole space is one block.
	BlocksFile string

	Algorithm unfolding.Algorithm
}

// configCommands maps the leading token to its handler. args excludes the
// command token itself.
var configCommands = map[string]func(cfg *Config, args []string) error{
	"InputFile":  func(cfg *Config, args []string) error { return setPath(&cfg.InputFile, "InputFile", args) },
	"OutputFile": func(cfg *Config, args []string) error { return setPath(&cfg.OutputFile, "OutputFile", args) },
	"BlocksFile": func(cfg *Config, args []string) error { return setPath(&cfg.BlocksFile, "BlocksFile", args) },
	"Unfold":     setAlgorithm,
}

// algorithmFactories maps the Unfold sub-token to its constructor.
var algorithmFactories = map[string]func(args []string) (unfolding.Algorithm, error){
	"WienerSVD": newWienerSVDFromArgs,
	"DAgostini": newDAgostiniFromArgs,
}

// ParseConfig reads and validates a configuration.
func ParseConfig(r io.Reader) (*Config, error) {
	cfg := &Config{}
	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		text := strings.TrimSpace(s.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		handler, ok := configCommands[fields[0]]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown command %q: %w", line, fields[0], ErrBadConfig)
		}
		if err := handler(cfg, fields[1:]); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("unfoldio: read configuration: %w", err)
	}

	switch {
	case cfg.InputFile == "":
		return nil, fmt.Errorf("%w: no InputFile command", ErrBadConfig)
	case cfg.OutputFile == "":
		return nil, fmt.Errorf("%w: no OutputFile command", ErrBadConfig)
	case cfg.Algorithm == nil:
		return nil, fmt.Errorf("%w: no Unfold command", ErrBadConfig)
	}

	return cfg, nil
}

func setPath(dst *string, cmd string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: %s takes exactly one path, got %d tokens", ErrBadConfig, cmd, len(args))
	}
	if *dst != "" {
		return fmt.Errorf("%w: repeated %s command", ErrBadConfig, cmd)
	}
	*dst = args[0]

	return nil
}

func setAlgorithm(cfg *Config, args []string) error {
	if cfg.Algorithm != nil {
		return fmt.Errorf("%w: repeated Unfold command", ErrBadConfig)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: Unfold needs an algorithm name", ErrBadConfig)
	}
	factory, ok := algorithmFactories[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown algorithm %q", ErrBadConfig, args[0])
	}
	alg, err := factory(args[1:])
	if err != nil {
		return err
	}
	cfg.Algorithm = alg

	return nil
}

// newWienerSVDFromArgs handles "Unfold WienerSVD <0|1> <regularization>".
func newWienerSVDFromArgs(args []string) (unfolding.Algorithm, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%w: Unfold WienerSVD takes <0|1> <regularization>, got %d tokens",
			ErrBadConfig, len(args))
	}
	var filter bool
	switch args[0] {
	case "0":
	case "1":
		filter = true
	default:
		return nil, fmt.Errorf("%w: filter toggle %q, want 0 or 1", ErrBadConfig, args[0])
	}
	kind, err := unfolding.ParseRegKind(args[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadConfig, err)
	}

	return unfolding.NewWienerSVD(filter, kind)
}

// newDAgostiniFromArgs handles "Unfold DAgostini iter <n>" and
// "Unfold DAgostini fm <threshold>".
func newDAgostiniFromArgs(args []string) (unfolding.Algorithm, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%w: Unfold DAgostini takes <iter|fm> <value>, got %d tokens",
			ErrBadConfig, len(args))
	}
	switch args[0] {
	case "iter":
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("%w: iteration count %q", ErrBadConfig, args[1])
		}

		return unfolding.NewDAgostiniIterations(n)
	case "fm":
		threshold, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: figure-of-merit threshold %q", ErrBadConfig, args[1])
		}

		return unfolding.NewDAgostiniFOM(threshold, 0)
	default:
		return nil, fmt.Errorf("%w: unknown DAgostini mode %q, want iter or fm", ErrBadConfig, args[0])
	}
}
