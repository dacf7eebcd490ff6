// Copyright ©2024 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldltapp

import (
	"fmt"
	"io"
	"os"
)

// Options configures Factor: the runtime knobs spec.md §6 names (the
// threshold pair and an optional debug trace), as opposed to BlockSize,
// which stays a compile-time constant because the dense kernels are tuned
// for it.
type Options struct {
	// U is the pivot threshold, u ∈ (0, 0.5]: a column fails if any entry
	// below an accepted pivot exceeds 1/U in magnitude.
	U float64
	// Small bounds the zero-pivot cutoff: entries smaller than Small divided
	// by a zero pivot become 0 rather than ±∞.
	Small float64
	// Debug enables Trace output of per-block-column pivot decisions.
	Debug bool
	// Trace receives debug output when Debug is true; os.Stderr if nil.
	Trace io.Writer
}

func (o Options) trace() io.Writer {
	if o.Trace != nil {
		return o.Trace
	}
	return os.Stderr
}

func (o Options) logf(format string, args ...interface{}) {
	if !o.Debug {
		return
	}
	fmt.Fprintf(o.trace(), format, args...)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func divCeil(a, b int) int { return (a + b - 1) / b }

// rowBlockInfo returns the physical row at which block-row iblk's local
// index 0 lands (rowBase, which may coincide with a phantom-padded leading
// edge) and the pad (phantom pre-eliminated leading rows) for that block
// row, for both the pivot region (iblk < nblk) and the trailing rectangular
// extension (iblk >= nblk), per spec.md §3's overlap rule.
func rowBlockInfo(m, n, nblk, iblk int) (rowBase, pad int) {
	if iblk < nblk {
		pad = maxInt(0, (iblk+1)*BlockSize-n)
		return iblk*BlockSize - pad, pad
	}
	rr := iblk - nblk
	rows := m - n
	pad = maxInt(0, (rr+1)*BlockSize-rows)
	return n + rr*BlockSize - pad, pad
}

// colBlockInfo is the column analogue of rowBlockInfo; only the pivot
// region has columns.
func colBlockInfo(n, jblk int) (colBase, pad int) {
	pad = maxInt(0, (jblk+1)*BlockSize-n)
	return jblk*BlockSize - pad, pad
}

// panel holds the block/column metadata built once per Factor call and
// threaded through the scheduler.
type panel struct {
	m, n, lda int
	a         []float64
	d         []float64
	opts      Options

	nblk, mblk int
	blocks     [][]*blockData // blocks[i][j], valid for j <= i, j < nblk, i < mblk
	cdata      []*colData

	pool     *blockPool
	nextElim int
}

func newPanel(m, n, lda int, a, d []float64, opts Options) *panel {
	nblk := divCeil(n, BlockSize)
	mblk := nblk
	if m > n {
		mblk = nblk + divCeil(m-n, BlockSize)
	}

	p := &panel{
		m: m, n: n, lda: lda, a: a, d: d, opts: opts,
		nblk: nblk, mblk: mblk,
	}

	p.blocks = make([][]*blockData, mblk)
	for i := 0; i < mblk; i++ {
		jmax := i
		if jmax > nblk-1 {
			jmax = nblk - 1
		}
		p.blocks[i] = make([]*blockData, jmax+1)
		rowBase, _ := rowBlockInfo(m, n, nblk, i)
		for j := 0; j <= jmax; j++ {
			colBase, _ := colBlockInfo(n, j)
			p.blocks[i][j] = &blockData{a: a, lda: lda, rowBase: rowBase, colBase: colBase, diag: i == j}
		}
	}

	p.cdata = make([]*colData, nblk)
	for j := 0; j < nblk; j++ {
		lo := j * BlockSize
		hi := lo + BlockSize
		if hi > n {
			hi = n
		}
		_, pad := colBlockInfo(n, j)
		c := &colData{
			npad: pad, nelim: pad, npass: BlockSize,
			permRaw: make([]int, hi-lo),
			dRaw:    make([]float64, 2*(BlockSize-pad)),
		}
		p.cdata[j] = c
	}

	poolSize := p.nblk*(p.nblk+1)/2 + p.mblk*p.nblk
	if poolSize < 1 {
		poolSize = 1
	}
	p.pool = newBlockPool(poolSize)
	return p
}

// Factor implements spec.md §4.5/§6: a blocked, threshold-pivoted LDLᵀ
// factorization of the m×n panel A (m ≥ n, column-major, leading dimension
// lda), producing a permutation in perm, a unit-lower-triangular L
// overwriting A's accepted columns, and pivots in d. It returns the number
// of pivots accepted; entries perm[num_elim:n] are delayed pivots in no
// particular order.
//
// Factor returns -1 if m < n, -4 if lda < n, matching the sentinel return
// contract of the C ABI this algorithm descends from — the sparse solver
// that calls it branches on the code rather than recovering from a panic.
func Factor(m, n int, perm []int, a []float64, lda int, d []float64, opts Options) int {
	if m < n {
		return errMLessThanN
	}
	if lda < n {
		return errLdaLessThanN
	}
	if n == 0 {
		return 0
	}
	if len(perm) < n {
		panic(shortPerm)
	}
	if len(a) < (n-1)*lda+m {
		panic(shortA)
	}
	if len(d) < 2*n {
		panic(shortD)
	}
	if BlockSize <= 0 || BlockSize%2 != 0 {
		panic(badBlockSize)
	}

	p := newPanel(m, n, lda, a, d, opts)

	for j, c := range p.cdata {
		lo := j * BlockSize
		hi := lo + len(c.permRaw)
		copy(c.permRaw, perm[lo:hi])
	}

	for blk := 0; blk < p.nblk; blk++ {
		p.runElimColumn(blk)
	}

	return p.compact(perm)
}

// pivotEntry names one surviving BlockSize candidate by both its physical
// column index in the working panel (used to address p.a) and its caller-
// facing label (the permutation value reported in perm) — the two diverge
// once elimination order stops matching physical column order.
type pivotEntry struct {
	phys, label int
	d0, d1      float64
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// physCol returns the physical (array) column index of column block j's
// local position i.
func physCol(j, i int, cdata []*colData) int {
	return j*BlockSize - cdata[j].npad + i
}

// compact assembles spec.md §4.5 steps 6-9: surviving pivots (in elimination
// order) to the front of perm and A, delayed pivots to the tail. It reads
// every original (row, col) position's current (fully Schur-updated) value
// out of the working panel — addressed by physical column index, since a
// non-identity input perm means label and physical position diverge — and
// writes the reordered result back in.
func (p *panel) compact(perm []int) int {
	n, m, lda := p.n, p.m, p.lda
	numElim := p.nextElim

	entries := make([]pivotEntry, 0, n)
	for j, c := range p.cdata {
		for i := c.npad; i < c.nelim; i++ {
			entries = append(entries, pivotEntry{
				phys: physCol(j, i, p.cdata), label: c.perm(i),
				d0: c.d(i, 0), d1: c.d(i, 1),
			})
		}
	}
	for j, c := range p.cdata {
		for i := c.nelim; i < BlockSize; i++ {
			entries = append(entries, pivotEntry{phys: physCol(j, i, p.cdata), label: c.perm(i)})
		}
	}

	at := func(row, col int) float64 {
		return p.a[col*lda+row]
	}
	sym := func(r, c int) float64 {
		return at(maxInt(r, c), minInt(r, c))
	}

	newA := make([]float64, m*n)
	newD := make([]float64, 2*n)
	for k := 0; k < n; k++ {
		accepted := k < numElim
		physK := entries[k].phys
		for i := 0; i < n; i++ {
			physI := entries[i].phys
			var v float64
			switch {
			case accepted && i == k:
				v = 1
			case accepted && i == k+1 && entries[k].d1 != 0:
				// k is the first half of an accepted 2×2 pivot and i is its
				// partner row: that relation lives in D (entries[k].d1), not
				// L — commit2x2 never overwrites this position, so without
				// this case the pre-elimination Schur value would leak into
				// L where the spec requires 0 (the pair's L block is
				// implicitly the 2×2 identity).
				v = 0
			case accepted && i > k:
				v = sym(physI, physK)
			case accepted:
				v = 0
			case i < numElim:
				v = 0
			default:
				v = sym(physI, physK)
			}
			newA[k*m+i] = v
		}
		for i := n; i < m; i++ {
			newA[k*m+i] = at(i, physK)
		}
		if accepted {
			newD[2*k] = entries[k].d0
			newD[2*k+1] = entries[k].d1
		}
	}

	for k := 0; k < n; k++ {
		for i := 0; i < m; i++ {
			p.a[k*lda+i] = newA[k*m+i]
		}
	}
	copy(p.d, newD)
	for k, e := range entries {
		perm[k] = e.label
	}

	return numElim
}
