// SPDX-License-Identifier: MIT
// Package bins: blocks-file grammar.
// The format is deliberately minimal (whitespace-separated integers) so that
// assignments can be produced by hand or by the upstream binning stage:
//
//	<num_true_bins>
//	<true_bin_index> <block_index>   × num_true_bins
//	<num_reco_bins>
//	<reco_bin_index> <block_index>   × num_reco_bins
//
// Bin indices on each side must cover 0..n-1 exactly once; the parser reports
// the offending line on any violation.

package bins

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrBadBlocksFile tags every blocks-file parse failure; the wrapping message
// carries the line number and cause.
var ErrBadBlocksFile = errors.New("bins: malformed blocks file")

// blockScanner yields non-empty, comment-stripped lines with line numbers.
type blockScanner struct {
	s    *bufio.Scanner
	line int
}

// next returns the next payload line, or io.EOF.
func (bs *blockScanner) next() (string, error) {
	for bs.s.Scan() {
		bs.line++
		text := strings.TrimSpace(bs.s.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue // blank lines and comments are not payload
		}

		return text, nil
	}
	if err := bs.s.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (bs *blockScanner) errf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s: %w", bs.line, fmt.Sprintf(format, args...), ErrBadBlocksFile)
}

// ParseBlocks reads a block assignment in the grammar above.
// Fails with a descriptive error if a declared count does not match the number
// of subsequent pair lines, if a pair is malformed, if a bin index is out of
// range or duplicated, or if the resulting assignment violates the partition
// invariants (Validate).
func ParseBlocks(r io.Reader) (*BlockAssignment, error) {
	bs := &blockScanner{s: bufio.NewScanner(r)}

	trueSide, err := parseSide(bs, "true")
	if err != nil {
		return nil, err
	}
	recoSide, err := parseSide(bs, "reco")
	if err != nil {
		return nil, err
	}

	a := &BlockAssignment{True: trueSide, Reco: recoSide}
	if err = a.Validate(); err != nil {
		return nil, err
	}

	return a, nil
}

// parseSide reads one "<count>" header plus count "<index> <block>" pairs and
// returns the per-position block vector.
func parseSide(bs *blockScanner, side string) ([]int, error) {
	header, err := bs.next()
	if err != nil {
		return nil, bs.errf("missing %s bin count", side)
	}
	n, err := strconv.Atoi(header)
	if err != nil || n <= 0 {
		return nil, bs.errf("invalid %s bin count %q", side, header)
	}

	out := make([]int, n)
	seen := make([]bool, n)
	for k := 0; k < n; k++ {
		text, err := bs.next()
		if err != nil {
			return nil, bs.errf("declared %d %s bins but found only %d pair lines", n, side, k)
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, bs.errf("expected \"<bin_index> <block_index>\", got %q", text)
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, bs.errf("invalid bin index %q", fields[0])
		}
		blk, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, bs.errf("invalid block index %q", fields[1])
		}
		if idx < 0 || idx >= n {
			return nil, bs.errf("%s bin index %d outside [0,%d)", side, idx, n)
		}
		if seen[idx] {
			return nil, bs.errf("%s bin %d assigned twice", side, idx)
		}
		if blk < 0 {
			return nil, bs.errf("%s bin %d: negative block index %d", side, idx, blk)
		}
		seen[idx] = true
		out[idx] = blk
	}

	return out, nil
}

// WriteBlocks persists an assignment in the grammar above, bins in index
// order. ParseBlocks(WriteBlocks(a)) reproduces a exactly.
func WriteBlocks(w io.Writer, a *BlockAssignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d\n", len(a.True)); err != nil {
		return err
	}
	for i, blk := range a.True {
		if _, err := fmt.Fprintf(bw, "%d %d\n", i, blk); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "%d\n", len(a.Reco)); err != nil {
		return err
	}
	for j, blk := range a.Reco {
		if _, err := fmt.Fprintf(bw, "%d %d\n", j, blk); err != nil {
			return err
		}
	}

	return bw.Flush()
}
