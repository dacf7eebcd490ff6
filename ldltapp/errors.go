// Copyright ©2024 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldltapp

// Sentinel return values of Factor, matching the C ABI this package's
// algorithm descends from: the caller branches on these rather than on a Go
// error, so they are returned rather than wrapped.
const (
	errMLessThanN = -1
	errLdaLessThanN = -4
)

// Panic messages. badPad and badBlockSize report internal invariant
// violations (spec.md §7.5), a bug in this package; shortPerm, shortA and
// shortD report a caller passing slices too short for m, n and lda. None of
// them is raised for a numerical condition.
const (
	badPad       = "ldltapp: pad out of range"
	badBlockSize = "ldltapp: BlockSize must be a positive even number"
	shortPerm    = "ldltapp: perm too short"
	shortA       = "ldltapp: a too short for m, n, lda"
	shortD       = "ldltapp: d too short for n"
)
