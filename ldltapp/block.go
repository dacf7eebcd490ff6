// Copyright ©2024 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldltapp

import "math"

// blockData is a BlockSize×BlockSize view into the panel, addressed through
// rowBase/colBase rather than a raw sub-slice: the overlap rule of spec.md §3
// can make the block's nominal top-left corner fall before A's own start
// (whenever BlockSize exceeds the matrix it is padding), and Go slices cannot
// express a negative base the way the reference's pointer arithmetic does.
// Every access goes through at/set, which only ever land on valid, in-bounds
// positions of a because callers only ever touch rows/cols at or past the
// block's pad.
type blockData struct {
	a       []float64
	lda     int
	rowBase int
	colBase int
	diag    bool // true for blocks on the block-diagonal (i == j)

	lwork []float64 // BlockSize*BlockSize scratch from the pool; nil when idle
}

func (b *blockData) idx(row, col int) int { return (b.colBase+col)*b.lda + b.rowBase + row }
func (b *blockData) at(row, col int) float64 {
	return b.a[b.idx(row, col)]
}
func (b *blockData) set(row, col int, v float64) {
	b.a[b.idx(row, col)] = v
}

// sub returns the slice and leading dimension gonum's blas64 wrappers need to
// address the (rfrom..BlockSize)×(cfrom..BlockSize) corner of the block.
func (b *blockData) sub(rfrom, cfrom int) ([]float64, int) {
	return b.a[b.idx(rfrom, cfrom):], b.lda
}

// createRestorePoint saves the block's (pad..BlockSize)×(pad..BlockSize)
// corner into lwork before speculative pivot application. Diagonal blocks
// only carry their own lower triangle (the panel never materializes the
// upper half of a symmetric block), so only r≥c entries are saved there.
func (b *blockData) createRestorePoint(pad int) {
	for c := pad; c < BlockSize; c++ {
		rfrom := pad
		if b.diag && c > rfrom {
			rfrom = c
		}
		for r := rfrom; r < BlockSize; r++ {
			b.lwork[c*BlockSize+r] = b.at(r, c)
		}
	}
}

// createRestorePointWithColPerm saves the (rpad..BlockSize)×(cpad..BlockSize)
// corner into lwork with column c read from column lperm[c], then writes that
// permuted copy back into the block. It is used for the blocks below a pivot
// block.
func (b *blockData) createRestorePointWithColPerm(rpad, cpad int, lperm []int) {
	for c := cpad; c < BlockSize; c++ {
		for r := rpad; r < BlockSize; r++ {
			b.lwork[c*BlockSize+r] = b.at(r, lperm[c])
		}
	}
	for c := cpad; c < BlockSize; c++ {
		for r := rpad; r < BlockSize; r++ {
			b.set(r, c, b.lwork[c*BlockSize+r])
		}
	}
}

// restorePart writes the (rfrom..BlockSize)×(cfrom..BlockSize) corner of
// lwork back into the block, undoing a speculative apply whose pivots
// ultimately failed.
func (b *blockData) restorePart(rfrom, cfrom int) {
	for c := cfrom; c < BlockSize; c++ {
		for r := rfrom; r < BlockSize; r++ {
			b.set(r, c, b.lwork[c*BlockSize+r])
		}
	}
}

// restorePartWithSymPerm restores a diagonal block, undoing the symmetric
// permutation its own factorization applied. lwork only holds the lower
// triangle (see createRestorePoint), so a destination entry (r,c) with
// lperm[r] < lperm[c] is read from the mirrored position.
func (b *blockData) restorePartWithSymPerm(from int, lperm []int) {
	for c := from; c < BlockSize; c++ {
		for r := c; r < BlockSize; r++ {
			pr, pc := lperm[r], lperm[c]
			if pr < pc {
				pr, pc = pc, pr
			}
			b.set(r, c, b.lwork[pc*BlockSize+pr])
		}
	}
}

func isFinite64(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }

// isOnePivot reports whether column/row c of pivCol begins a 1×1 pivot
// rather than the first half of a 2×2, per the isfinite(d[2(c+1)]) test of
// spec.md §3. The last slot of a block can never look ahead into a pivot
// pair that would cross the block boundary, since block_ldlt/ldlt_tpp_factor
// only ever pair columns within the same diagonal block.
func isOnePivot(pivCol *colData, c int) bool {
	if c+1 >= BlockSize {
		return true
	}
	return isFinite64(pivCol.d(c+1, 0))
}

// scaleZeroPivot implements spec.md §4.3's zero-pivot rule: entries smaller
// than small collapse to zero, everything else saturates to a signed
// infinity, and NaN passes through unchanged.
func scaleZeroPivot(v, small float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	if math.Abs(v) < small {
		return 0
	}
	return math.Copysign(math.Inf(1), v)
}

// applyDInverseCols scales columns [cfrom,BlockSize) of rows [rfrom,BlockSize)
// by the inverse pivots recorded in pivCol, used by apply_pivot<OP_N> and by
// calcLD<OP_N>.
func applyDInverseCols(b *blockData, rfrom, cfrom int, pivCol *colData, small float64) {
	for c := cfrom; c < BlockSize; {
		if isOnePivot(pivCol, c) {
			d1 := pivCol.d(c, 0)
			if d1 == 0 {
				for r := rfrom; r < BlockSize; r++ {
					b.set(r, c, scaleZeroPivot(b.at(r, c), small))
				}
			} else {
				for r := rfrom; r < BlockSize; r++ {
					b.set(r, c, b.at(r, c)*d1)
				}
			}
			c++
			continue
		}
		d11, d21 := pivCol.d(c, 0), pivCol.d(c, 1)
		d22 := pivCol.d(c+1, 1)
		for r := rfrom; r < BlockSize; r++ {
			v1, v2 := b.at(r, c), b.at(r, c+1)
			b.set(r, c, d11*v1+d21*v2)
			b.set(r, c+1, d21*v1+d22*v2)
		}
		c += 2
	}
}

// applyPivotN computes L21 ← A21·L11⁻ᵀ·D1⁻¹ in place on b, the off-diagonal
// block below the pivot column: first a trsm from the right against the
// pivot block's unit lower triangle, then a column-wise D scaling.
func applyPivotN(b, pivot *blockData, rfrom, cfrom int, pivCol *colData, small float64) {
	m, n := BlockSize-rfrom, BlockSize-cfrom
	if m <= 0 || n <= 0 {
		return
	}
	aSub, lda := pivot.sub(cfrom, cfrom)
	bSub, ldb := b.sub(rfrom, cfrom)
	hostTrsm(SideRight, FillLower, OpT, DiagUnit, m, n, 1, aSub, lda, bSub, ldb)
	applyDInverseCols(b, rfrom, cfrom, pivCol, small)
}

// checkThresholdN scans the uneliminated (rfrom..BlockSize)×(cfrom..BlockSize)
// corner of b for the first entry exceeding 1/u, returning the column it
// falls in (BlockSize if every entry passes). On a diagonal block only the
// lower triangle (r>=c) holds live data — the upper half is never
// materialized — so rows above the diagonal are skipped there.
func checkThresholdN(b *blockData, rfrom, cfrom int, u float64) int {
	bound := 1 / u
	for c := cfrom; c < BlockSize; c++ {
		rstart := rfrom
		if b.diag && c > rstart {
			rstart = c
		}
		for r := rstart; r < BlockSize; r++ {
			if math.Abs(b.at(r, c)) > bound {
				return c
			}
		}
	}
	return BlockSize
}

// calcLD fills ld (BlockSize×k, leading dimension BlockSize) with L·D⁻¹ built
// from the eliminated columns [pad,pad+k) of l. Only the column-wise
// (OP_N-direction) scaling survives here: the right-looking restructuring of
// the trailing update (see scheduler.go) only ever builds LD from a block
// below the pivot column, never to its left, so the transposed row-wise
// variant the reference also has never gets called.
func calcLD(l *blockData, pad, k int, pivCol *colData, ld []float64) {
	// applyDInverseCols always scans BlockSize columns, so scale a full-size
	// copy and keep only its first k columns.
	full := make([]float64, BlockSize*BlockSize)
	for c := 0; c < k; c++ {
		for r := 0; r < BlockSize; r++ {
			full[c*BlockSize+r] = l.at(r, pad+c)
		}
	}
	view := &blockData{a: full, lda: BlockSize, rowBase: 0, colBase: 0}
	applyDInverseCols(view, 0, 0, pivCol, 0)
	copy(ld, full[:BlockSize*k])
}

// update applies the rank-k Schur complement correction target ← target − L·LDᵀ
// to the (rfrom..BlockSize)×(cfrom..BlockSize) corner of target.
func update(target *blockData, rfrom, cfrom, k int, l []float64, ldl int, ld []float64, ldld int) {
	m, n := BlockSize-rfrom, BlockSize-cfrom
	if m <= 0 || n <= 0 || k <= 0 {
		return
	}
	cSub, ldc := target.sub(rfrom, cfrom)
	hostGemm(OpN, OpT, m, n, k, -1, l, ldl, ld, ldld, 1, cSub, ldc)
}
