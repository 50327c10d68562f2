// SPDX-License-Identifier: MIT

// Package unfoldio adapts the unfolding engine to files: a named-record
// text container for dense matrices, the line-oriented configuration
// grammar, and a driver that loads the inputs, unfolds blockwise and
// persists the four output records.
//
// All I/O lives here; the numeric packages never touch the filesystem.
package unfoldio
