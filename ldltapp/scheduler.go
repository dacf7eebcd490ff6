// Copyright ©2024 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldltapp

import (
	"math"

	"golang.org/x/sync/errgroup"
)

// runElimColumn drives one block column of spec.md §4.4's task graph: factor
// the diagonal block, apply its pivots to every block that touches column
// blk (fanned out with an errgroup — the sanctioned fork-join stand-in for
// the reference's OpenMP task graph), merge the threshold verdicts into
// npass, settle on a final nelim, restore whatever speculative work didn't
// survive, and push the accepted rank-k update into the trailing
// submatrix.
func (p *panel) runElimColumn(blk int) {
	c := p.cdata[blk]
	pad := c.npad
	if pad >= BlockSize {
		c.nelim = BlockSize
		return
	}

	diag := p.blocks[blk][blk]
	diag.lwork = p.pool.getWait()
	diag.createRestorePoint(pad)

	lperm := make([]int, BlockSize)
	dLocal := make([]float64, 2*BlockSize)
	base := diag.colBase*diag.lda + diag.rowBase
	diagElim := ldltTPPFactor(pad, diag.a, diag.lda, base, dLocal, lperm, p.opts.U, p.opts.Small)
	c.permute(lperm, pad)
	copy(c.dRaw, dLocal[2*pad:2*BlockSize])
	c.npass = BlockSize
	// ldltTPPFactor has already applied the threshold test inside the
	// diagonal block; its count (relative to pad) bounds what can pass.
	c.mergePass(pad + diagElim)

	// Blocks to the left of the diagonal (row blk, col < blk) were already
	// finalized to L while their own pivot column was processed — the
	// trailing rank-k update below applies as each earlier column
	// completes, not lazily when this one starts — so there is no
	// transpose-direction apply left to do here; only the blocks below the
	// diagonal are still raw Schur complement entries needing this
	// column's pivots applied.
	var g errgroup.Group
	for iblk := blk + 1; iblk < p.mblk; iblk++ {
		iblk := iblk
		g.Go(func() error {
			i := p.blocks[iblk][blk]
			ipad := p.rowPad(iblk)
			i.lwork = p.pool.getWait()
			i.createRestorePointWithColPerm(ipad, pad, lperm)
			applyPivotN(i, diag, ipad, pad, c, p.opts.Small)
			c.mergePass(checkThresholdN(i, ipad, pad, p.opts.U))
			return nil
		})
	}
	g.Wait()

	npass := c.npass
	if npass > pad && npass-1 >= pad {
		if c.d(npass-1, 1) != 0 && !math.IsInf(c.d(npass-1, 0), 1) {
			npass--
		}
	}
	c.nelim = npass
	p.opts.logf("column %d: pad=%d nelim=%d\n", blk, pad, npass)

	diag.restorePartWithSymPerm(npass, lperm)
	p.pool.release(diag.lwork)
	diag.lwork = nil

	for iblk := blk + 1; iblk < p.mblk; iblk++ {
		i := p.blocks[iblk][blk]
		ipad := p.rowPad(iblk)
		i.restorePart(ipad, npass)
		p.pool.release(i.lwork)
		i.lwork = nil
	}

	k := npass - pad
	p.nextElim += k
	if k <= 0 {
		return
	}

	var ug errgroup.Group
	for jblk2 := blk + 1; jblk2 < p.nblk; jblk2++ {
		jblk2 := jblk2
		ug.Go(func() error {
			ldSrc := p.blocks[jblk2][blk]
			ldBuf := make([]float64, BlockSize*k)
			calcLD(ldSrc, pad, k, c, ldBuf)
			cfrom := p.cdata[jblk2].npad

			var ig errgroup.Group
			for iblk2 := jblk2; iblk2 < p.mblk; iblk2++ {
				iblk2 := iblk2
				ig.Go(func() error {
					target := p.blocks[iblk2][jblk2]
					lSrc := p.blocks[iblk2][blk]
					rfrom := p.rowPad(iblk2)
					lSub, ldl := lSrc.sub(rfrom, pad)
					update(target, rfrom, cfrom, k, lSub, ldl, ldBuf[cfrom:], BlockSize)
					return nil
				})
			}
			return ig.Wait()
		})
	}
	ug.Wait()
}

// rowPad returns block-row iblk's pad (phantom leading rows), covering both
// the pivot region and the trailing rectangular extension.
func (p *panel) rowPad(iblk int) int {
	_, pad := rowBlockInfo(p.m, p.n, p.nblk, iblk)
	return pad
}
