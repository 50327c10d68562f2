// SPDX-License-Identifier: MIT
package unfolding_test

import (
	"fmt"

	"github.com/katalvlaran/unfold/matrix"
	"github.com/katalvlaran/unfold/unfolding"
)

// ExampleWienerSVD unfolds a 2-bin measurement with the filter disabled, so
// the run reduces to inverting the response exactly.
func ExampleWienerSVD() {
	smear, _ := matrix.NewDenseFrom([][]float64{
		{0.9, 0.1},
		{0.1, 0.9},
	})
	cov, _ := matrix.NewDiagonal([]float64{95, 95})
	p := &unfolding.Problem{
		Signal:     []float64{95, 95},
		Covariance: cov,
		Smearcept:  smear,
		Prior:      []float64{100, 100},
	}

	alg, _ := unfolding.NewWienerSVD(false, unfolding.RegIdentity)
	res, _ := alg.Run(p)
	fmt.Printf("unfolded: [%.1f %.1f] (%s)\n", res.Unfolded[0], res.Unfolded[1], res.Status)
	// Output:
	// unfolded: [95.0 95.0] (complete)
}

// ExampleDAgostini iterates until the figure of merit drops below 1e-10.
func ExampleDAgostini() {
	smear, _ := matrix.NewDenseFrom([][]float64{
		{0.9, 0.1},
		{0.1, 0.9},
	})
	cov, _ := matrix.NewDiagonal([]float64{140, 60})
	p := &unfolding.Problem{
		Signal:     []float64{140, 60}, // folded image of truth [150, 50]
		Covariance: cov,
		Smearcept:  smear,
		Prior:      []float64{100, 100},
	}

	alg, _ := unfolding.NewDAgostiniFOM(1e-10, 0)
	res, _ := alg.Run(p)
	fmt.Printf("unfolded: [%.0f %.0f] (%s)\n", res.Unfolded[0], res.Unfolded[1], res.Status)
	// Output:
	// unfolded: [150 50] (complete)
}
