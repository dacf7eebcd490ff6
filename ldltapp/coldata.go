// Copyright ©2024 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldltapp

import "sync"

// colData holds the per-block-column metadata of spec.md §3: how many of this
// column's BlockSize candidate pivots are phantom padding, how many have been
// confirmed eliminated, how many tentatively passed the threshold test during
// the current sweep, and the slices of the caller's perm/D arrays this column
// owns.
//
// permRaw and dRaw are already offset so that index npad is their first
// element — spec.md's "perm offset so that perm[npad..B] are the real
// indices" — which lets every other kernel address a column by its logical
// BlockSize-relative index without re-deriving the offset. The C++ original
// achieves the same thing with a pointer computed before the array start;
// Go slices cannot express a negative base, so perm/d offsets are carried
// explicitly instead.
type colData struct {
	npad  int
	nelim int
	npass int

	permRaw []int
	dRaw    []float64

	mu sync.Mutex
}

func (c *colData) perm(i int) int       { return c.permRaw[i-c.npad] }
func (c *colData) setPerm(i, v int)     { c.permRaw[i-c.npad] = v }
func (c *colData) d(col, k int) float64 { return c.dRaw[2*(col-c.npad)+k] }

// permute reorders this column's permutation entries to match lperm, the
// within-block reordering ldlt_tpp_factor/block_ldlt chose while searching
// for pivots. Always a no-op under the sequential accept-in-order strategy
// of tpp.go (lperm is always identity there), but kept general since the
// underlying block kernels are written to support genuine reordering.
func (c *colData) permute(lperm []int, pad int) {
	tmp := make([]int, BlockSize-pad)
	for i := pad; i < BlockSize; i++ {
		tmp[i-pad] = c.perm(lperm[i])
	}
	for i := pad; i < BlockSize; i++ {
		c.setPerm(i, tmp[i-pad])
	}
}

// mergePass lowers npass to blkpass if blkpass is smaller, under c.mu — the
// monotonic-min merge of spec.md §4.4 step 3/4, safe to call concurrently
// from the per-block apply tasks runElimColumn fans out for this column.
func (c *colData) mergePass(blkpass int) {
	c.mu.Lock()
	if blkpass < c.npass {
		c.npass = blkpass
	}
	c.mu.Unlock()
}
