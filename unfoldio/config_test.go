// SPDX-License-Identifier: MIT
// Package unfoldio_test covers the configuration grammar.
package unfoldio_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unfold/unfoldio"
)

func TestParseConfigWienerSVD(t *testing.T) {
	text := `
# unfold the muon momentum spectrum
InputFile  in.mat
OutputFile out.mat
BlocksFile blocks.txt
Unfold WienerSVD 1 second-deriv
`
	cfg, err := unfoldio.ParseConfig(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, "in.mat", cfg.InputFile)
	assert.Equal(t, "out.mat", cfg.OutputFile)
	assert.Equal(t, "blocks.txt", cfg.BlocksFile)
	require.NotNil(t, cfg.Algorithm)
	assert.Equal(t, "wiener-svd", cfg.Algorithm.Name())
}

func TestParseConfigDAgostini(t *testing.T) {
	for _, unfoldLine := range []string{
		"Unfold DAgostini iter 4",
		"Unfold DAgostini fm 1e-6",
	} {
		cfg, err := unfoldio.ParseConfig(strings.NewReader(
			"InputFile a\nOutputFile b\n" + unfoldLine + "\n"))
		require.NoError(t, err, unfoldLine)
		assert.Equal(t, "dagostini", cfg.Algorithm.Name(), unfoldLine)
		assert.Empty(t, cfg.BlocksFile, "BlocksFile is optional")
	}
}

func TestParseConfigErrors(t *testing.T) {
	for name, text := range map[string]string{
		"unknown command":    "InputFile a\nOutputFile b\nSmooth 3\nUnfold DAgostini iter 1\n",
		"unknown algorithm":  "InputFile a\nOutputFile b\nUnfold TSVD 1\n",
		"bad filter toggle":  "InputFile a\nOutputFile b\nUnfold WienerSVD 2 identity\n",
		"bad regularization": "InputFile a\nOutputFile b\nUnfold WienerSVD 1 cubic\n",
		"bad iter count":     "InputFile a\nOutputFile b\nUnfold DAgostini iter many\n",
		"bad dagostini mode": "InputFile a\nOutputFile b\nUnfold DAgostini steps 3\n",
		"missing input":      "OutputFile b\nUnfold DAgostini iter 1\n",
		"missing output":     "InputFile a\nUnfold DAgostini iter 1\n",
		"missing unfold":     "InputFile a\nOutputFile b\n",
		"repeated input":     "InputFile a\nInputFile c\nOutputFile b\nUnfold DAgostini iter 1\n",
		"repeated unfold":    "InputFile a\nOutputFile b\nUnfold DAgostini iter 1\nUnfold DAgostini iter 2\n",
		"path with spaces":   "InputFile a b\nOutputFile c\nUnfold DAgostini iter 1\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := unfoldio.ParseConfig(strings.NewReader(text))
			assert.ErrorIs(t, err, unfoldio.ErrBadConfig)
		})
	}
}

func TestParseConfigReportsLineNumber(t *testing.T) {
	_, err := unfoldio.ParseConfig(strings.NewReader(
		"InputFile a\n\n# comment\nNope\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
}
