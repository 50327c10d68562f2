// SPDX-License-Identifier: MIT
package unfoldio_test

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/unfold/unfoldio"
)

// ExampleParseConfig parses a complete run description.
func ExampleParseConfig() {
	text := `# CC-inclusive muon spectrum
InputFile  inputs.mat
OutputFile results.mat
BlocksFile blocks.txt
Unfold WienerSVD 1 second-deriv
`
	cfg, _ := unfoldio.ParseConfig(strings.NewReader(text))
	fmt.Printf("%s -> %s via %s\n", cfg.InputFile, cfg.OutputFile, cfg.Algorithm.Name())
	// Output:
	// inputs.mat -> results.mat via wiener-svd
}

// ExampleParseContainer reads a container and lists its records.
func ExampleParseContainer() {
	text := `record data_signal 2 1
95
95
record data_covmat 2 2
95 0
0 95
`
	c, _ := unfoldio.ParseContainer(strings.NewReader(text))
	for _, rec := range c.Describe() {
		fmt.Printf("%s: %dx%d\n", rec.Name, rec.Rows, rec.Cols)
	}
	// Output:
	// data_signal: 2x1
	// data_covmat: 2x2
}
