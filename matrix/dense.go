// SPDX-License-Identifier: MIT
// Package matrix: the Dense type.
// Dense is the single concrete matrix representation used by the engine:
// row-major float64 storage in one flat slice for cache friendliness and
// deterministic traversal.

package matrix

import (
	"fmt"
	"strings"
)

// Dense is a row-major matrix of float64 values.
// r is rows, c is columns, data holds r*c elements in row-major order.
type Dense struct {
	r, c int
	data []float64
}

// denseErrorf wraps an underlying error with Dense method context.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// NewDense creates an r×c Dense matrix initialized to zeros.
// Stage 1 (Validate): rows and cols must be > 0.
// Stage 2 (Allocate): one flat backing slice.
// Complexity: O(r*c) time and memory.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrBadShape
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewDenseFrom builds a Dense from row slices. All rows must be non-empty and
// of equal length; the input is copied, never aliased.
// Complexity: O(r*c).
func NewDenseFrom(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrBadShape
	}
	r, c := len(rows), len(rows[0])
	m, err := NewDense(r, c)
	if err != nil {
		return nil, err
	}
	for i := 0; i < r; i++ {
		if len(rows[i]) != c {
			return nil, fmt.Errorf("NewDenseFrom: row %d: %w", i, ErrDimensionMismatch)
		}
		copy(m.data[i*c:(i+1)*c], rows[i])
	}

	return m, nil
}

// NewIdentity returns the n×n identity matrix.
// Complexity: O(n²) zeroing plus O(n) diagonal writes.
func NewIdentity(n int) (*Dense, error) {
	m, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1.0
	}

	return m, nil
}

// NewDiagonal returns a square matrix with d on the diagonal, zeros elsewhere.
// Complexity: O(n²).
func NewDiagonal(d []float64) (*Dense, error) {
	n := len(d)
	if n == 0 {
		return nil, ErrBadShape
	}
	m, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = d[i]
	}

	return m, nil
}

// Rows returns the number of rows. O(1).
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns. O(1).
func (m *Dense) Cols() int { return m.c }

// indexOf computes the flat index for (row, col) or returns ErrOutOfRange.
func (m *Dense) indexOf(method string, row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, denseErrorf(method, row, col, ErrOutOfRange)
	}
	if col < 0 || col >= m.c {
		return 0, denseErrorf(method, row, col, ErrOutOfRange)
	}

	return row*m.c + col, nil
}

// At retrieves the element at (row, col) with bounds checking. O(1).
func (m *Dense) At(row, col int) (float64, error) {
	idx, err := m.indexOf("At", row, col)
	if err != nil {
		return 0, err
	}

	return m.data[idx], nil
}

// Set assigns v at (row, col) with bounds checking. O(1).
func (m *Dense) Set(row, col int, v float64) error {
	idx, err := m.indexOf("Set", row, col)
	if err != nil {
		return err
	}
	m.data[idx] = v

	return nil
}

// at reads (row, col) without bounds checking. Internal kernels only; callers
// must have validated shapes upfront.
func (m *Dense) at(row, col int) float64 { return m.data[row*m.c+col] }

// set writes (row, col) without bounds checking. Internal kernels only.
func (m *Dense) set(row, col int, v float64) { m.data[row*m.c+col] = v }

// Clone returns a deep copy. O(r*c).
func (m *Dense) Clone() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp}
}

// Row returns a copy of row i, or nil if i is out of range. O(c).
func (m *Dense) Row(i int) []float64 {
	if i < 0 || i >= m.r {
		return nil
	}
	out := make([]float64, m.c)
	copy(out, m.data[i*m.c:(i+1)*m.c])

	return out
}

// Col returns a copy of column j, or nil if j is out of range. O(r).
func (m *Dense) Col(j int) []float64 {
	if j < 0 || j >= m.c {
		return nil
	}
	out := make([]float64, m.r)
	for i := 0; i < m.r; i++ {
		out[i] = m.data[i*m.c+j]
	}

	return out
}

// Submatrix extracts the rows/cols named by the given index lists into a fresh
// Dense, preserving list order. Index lists must be non-empty and in range.
// This is the row/column selection primitive the block orchestrator uses to
// carve per-block views out of whole-space matrices.
// Complexity: O(len(rows)*len(cols)).
func (m *Dense) Submatrix(rows, cols []int) (*Dense, error) {
	if len(rows) == 0 || len(cols) == 0 {
		return nil, fmt.Errorf("Dense.Submatrix: %w", ErrBadShape)
	}
	out, err := NewDense(len(rows), len(cols))
	if err != nil {
		return nil, err
	}
	for i, ri := range rows {
		if ri < 0 || ri >= m.r {
			return nil, denseErrorf("Submatrix", ri, 0, ErrOutOfRange)
		}
		base := ri * m.c
		for j, cj := range cols {
			if cj < 0 || cj >= m.c {
				return nil, denseErrorf("Submatrix", ri, cj, ErrOutOfRange)
			}
			out.data[i*len(cols)+j] = m.data[base+cj]
		}
	}

	return out, nil
}

// String implements fmt.Stringer for debugging. O(r*c).
func (m *Dense) String() string {
	var b strings.Builder
	for i := 0; i < m.r; i++ {
		b.WriteByte('[')
		for j := 0; j < m.c; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%g", m.data[i*m.c+j])
		}
		b.WriteString("]\n")
	}

	return b.String()
}
