// SPDX-License-Identifier: MIT
// Package unfoldio: the named-record matrix container.
// Text format, one record after another:
//
//	record <name> <rows> <cols>
//	<cols whitespace-separated floats>   × rows
//
// Blank lines and #-comments are ignored. Record names are unique within a
// container; insertion order is preserved on write.

package unfoldio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/unfold/matrix"
)

var (
	// ErrBadContainer tags every container parse failure.
	ErrBadContainer = errors.New("unfoldio: malformed matrix container")

	// ErrDuplicateRecord indicates two records sharing a name.
	ErrDuplicateRecord = errors.New("unfoldio: duplicate record name")

	// ErrMissingRecord indicates a required record absent from a container.
	ErrMissingRecord = errors.New("unfoldio: missing record")
)

// Container is an ordered set of named dense matrices.
type Container struct {
	records map[string]*matrix.Dense
	order   []string
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{records: map[string]*matrix.Dense{}}
}

// Put adds a record; names are unique.
func (c *Container) Put(name string, m *matrix.Dense) error {
	if err := matrix.ValidateNotNil(m); err != nil {
		return fmt.Errorf("unfoldio: record %q: %w", name, err)
	}
	if _, ok := c.records[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateRecord, name)
	}
	c.records[name] = m
	c.order = append(c.order, name)

	return nil
}

// Get returns the named record.
func (c *Container) Get(name string) (*matrix.Dense, bool) {
	m, ok := c.records[name]

	return m, ok
}

// get returns the named record or a wrapped ErrMissingRecord.
func (c *Container) get(name string) (*matrix.Dense, error) {
	m, ok := c.records[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingRecord, name)
	}

	return m, nil
}

// Names lists the record names in insertion order.
func (c *Container) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)

	return out
}

// RecordInfo describes one record for inspection output.
type RecordInfo struct {
	Name string
	Rows int
	Cols int
}

// Describe lists every record's name and shape, in insertion order.
func (c *Container) Describe() []RecordInfo {
	out := make([]RecordInfo, 0, len(c.order))
	for _, name := range c.order {
		m := c.records[name]
		out = append(out, RecordInfo{Name: name, Rows: m.Rows(), Cols: m.Cols()})
	}

	return out
}

// ParseContainer reads a container in the format above.
func ParseContainer(r io.Reader) (*Container, error) {
	c := NewContainer()
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024) // wide covariance rows
	line := 0
	next := func() (string, bool) {
		for s.Scan() {
			line++
			text := strings.TrimSpace(s.Text())
			if text == "" || strings.HasPrefix(text, "#") {
				continue
			}

			return text, true
		}

		return "", false
	}
	errf := func(format string, args ...any) error {
		return fmt.Errorf("line %d: %s: %w", line, fmt.Sprintf(format, args...), ErrBadContainer)
	}

	for {
		header, ok := next()
		if !ok {
			break
		}
		fields := strings.Fields(header)
		if len(fields) != 4 || fields[0] != "record" {
			return nil, errf("expected \"record <name> <rows> <cols>\", got %q", header)
		}
		name := fields[1]
		rows, err := strconv.Atoi(fields[2])
		if err != nil || rows <= 0 {
			return nil, errf("invalid row count %q", fields[2])
		}
		cols, err := strconv.Atoi(fields[3])
		if err != nil || cols <= 0 {
			return nil, errf("invalid column count %q", fields[3])
		}

		m, err := matrix.NewDense(rows, cols)
		if err != nil {
			return nil, errf("record %q: %v", name, err)
		}
		for i := 0; i < rows; i++ {
			text, ok := next()
			if !ok {
				return nil, errf("record %q: declared %d rows but found only %d", name, rows, i)
			}
			vals := strings.Fields(text)
			if len(vals) != cols {
				return nil, errf("record %q row %d: %d values, want %d", name, i, len(vals), cols)
			}
			for j, tok := range vals {
				v, err := strconv.ParseFloat(tok, 64)
				if err != nil {
					return nil, errf("record %q row %d: invalid value %q", name, i, tok)
				}
				if err = m.Set(i, j, v); err != nil {
					return nil, errf("record %q: %v", name, err)
				}
			}
		}
		if err = c.Put(name, m); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("unfoldio: read container: %w", err)
	}

	return c, nil
}

// WriteContainer persists the container; ParseContainer round-trips it.
// Values are written in %.17g so the round trip is bit-exact for float64.
func WriteContainer(w io.Writer, c *Container) error {
	bw := bufio.NewWriter(w)
	for _, name := range c.order {
		m := c.records[name]
		if _, err := fmt.Fprintf(bw, "record %s %d %d\n", name, m.Rows(), m.Cols()); err != nil {
			return fmt.Errorf("unfoldio: write container: %w", err)
		}
		for i := 0; i < m.Rows(); i++ {
			for j := 0; j < m.Cols(); j++ {
				v, err := m.At(i, j)
				if err != nil {
					return fmt.Errorf("unfoldio: write container: %w", err)
				}
				sep := " "
				if j == 0 {
					sep = ""
				}
				if _, err = fmt.Fprintf(bw, "%s%.17g", sep, v); err != nil {
					return fmt.Errorf("unfoldio: write container: %w", err)
				}
			}
			if _, err := fmt.Fprintln(bw); err != nil {
				return fmt.Errorf("unfoldio: write container: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("unfoldio: write container: %w", err)
	}

	return nil
}
