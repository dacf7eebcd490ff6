// Copyright ©2024 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldltapp

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

// newTestColData builds a colData spanning a full block's worth of D slots
// (applyDInverseCols always scans [0,BlockSize)), with the given pivot
// inverses in the leading columns and zero (D=0) 1×1 pivots elsewhere.
func newTestColData(pivots []float64) *colData {
	c := &colData{npad: 0, nelim: BlockSize, npass: BlockSize, dRaw: make([]float64, 2*BlockSize)}
	for i, v := range pivots {
		c.dRaw[2*i] = v
	}
	return c
}

func TestApplyDInverseColsOnePivots(t *testing.T) {
	// Two independent 1×1 pivots with inverses 2 and 0.5, applied to a
	// 1-row block so the scaling is easy to check by hand.
	b := &blockData{a: make([]float64, BlockSize*BlockSize), lda: BlockSize}
	b.set(0, 0, 3)
	b.set(0, 1, 5)
	c := newTestColData([]float64{2, 0.5})

	applyDInverseCols(b, 0, 0, c, 1e-20)

	if got, want := b.at(0, 0), 6.0; got != want {
		t.Errorf("column 0 = %v, want %v", got, want)
	}
	if got, want := b.at(0, 1), 2.5; got != want {
		t.Errorf("column 1 = %v, want %v", got, want)
	}
}

func TestApplyDInverseColsTwoByTwoPivot(t *testing.T) {
	c := &colData{npad: 0, nelim: 2, npass: 2, dRaw: make([]float64, 2*BlockSize)}
	c.dRaw[0], c.dRaw[1], c.dRaw[2], c.dRaw[3] = -4, 1, math.Inf(1), -1e-20
	b := &blockData{a: make([]float64, BlockSize*BlockSize), lda: BlockSize}
	b.set(0, 0, 1)
	b.set(0, 1, 0)

	applyDInverseCols(b, 0, 0, c, 1e-20)

	// [v1,v2]·[[d11,d21],[d21,d22]] with v=(1,0): result is (d11, d21).
	if got, want := b.at(0, 0), -4.0; got != want {
		t.Errorf("column 0 = %v, want %v", got, want)
	}
	if got, want := b.at(0, 1), 1.0; got != want {
		t.Errorf("column 1 = %v, want %v", got, want)
	}
}

func TestApplyDInverseColsZeroPivot(t *testing.T) {
	c := newTestColData([]float64{0})
	b := &blockData{a: make([]float64, BlockSize*BlockSize), lda: BlockSize}
	b.set(0, 0, 1e-25) // below small: collapses to 0
	b.set(1, 0, 5)      // above small: saturates to +Inf

	applyDInverseCols(b, 0, 0, c, 1e-20)

	if got := b.at(0, 0); got != 0 {
		t.Errorf("sub-small entry = %v, want 0", got)
	}
	if got := b.at(1, 0); !math.IsInf(got, 1) {
		t.Errorf("above-small entry = %v, want +Inf", got)
	}
}

func TestCheckThresholdNSkipsUpperTriangleOnDiagonalBlock(t *testing.T) {
	b := &blockData{a: make([]float64, BlockSize*BlockSize), lda: BlockSize, diag: true}
	// A huge value strictly above the diagonal must never trigger a
	// rejection: the panel never materializes that half of a symmetric
	// diagonal block.
	b.set(0, 1, 1e30)

	if got := checkThresholdN(b, 0, 0, 0.01); got != BlockSize {
		t.Errorf("checkThresholdN = %d, want %d (upper-triangle garbage ignored)", got, BlockSize)
	}

	b.set(1, 0, 1e30) // same magnitude, now in the lower triangle: must trip
	if got := checkThresholdN(b, 0, 0, 0.01); got != 0 {
		t.Errorf("checkThresholdN = %d, want 0 (lower-triangle entry exceeds bound)", got)
	}
}

func TestCheckThresholdNOffDiagonalBlockScansFullRectangle(t *testing.T) {
	b := &blockData{a: make([]float64, BlockSize*BlockSize), lda: BlockSize, diag: false}
	b.set(0, 1, 1e30)
	if got := checkThresholdN(b, 0, 0, 0.01); got != 1 {
		t.Errorf("checkThresholdN = %d, want 1 (off-diagonal blocks have no triangle restriction)", got)
	}
}

func TestCreateAndRestorePoint(t *testing.T) {
	b := &blockData{a: make([]float64, BlockSize*BlockSize), lda: BlockSize, diag: true}
	b.lwork = make([]float64, BlockSize*BlockSize)
	b.set(0, 0, 7)
	b.set(1, 0, 11)
	b.set(1, 1, 13)

	b.createRestorePoint(0)
	b.set(0, 0, 999)
	b.set(1, 0, 999)
	b.set(1, 1, 999)

	b.restorePart(0, 0)
	if got, want := b.at(0, 0), 7.0; got != want {
		t.Errorf("restored (0,0) = %v, want %v", got, want)
	}
	if got, want := b.at(1, 0), 11.0; got != want {
		t.Errorf("restored (1,0) = %v, want %v", got, want)
	}
	if got, want := b.at(1, 1), 13.0; got != want {
		t.Errorf("restored (1,1) = %v, want %v", got, want)
	}
}

func TestCalcLDMatchesManualScaling(t *testing.T) {
	l := &blockData{a: make([]float64, BlockSize*BlockSize), lda: BlockSize}
	l.set(0, 0, 1)
	l.set(1, 0, 2)
	l.set(2, 0, 3)
	c := newTestColData([]float64{0.5})

	ld := make([]float64, BlockSize*1)
	calcLD(l, 0, 1, c, ld)

	want := []float64{0.5, 1, 1.5}
	for i, w := range want {
		if got := ld[i]; !scalar.EqualWithinAbsOrRel(got, w, 1e-12, 1e-12) {
			t.Errorf("ld[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestUpdateAppliesRankKCorrection(t *testing.T) {
	// rfrom=cfrom=BlockSize-1 restricts the update to a single (1×1) entry
	// so the expected correction can be computed by hand.
	last := BlockSize - 1
	target := &blockData{a: make([]float64, BlockSize*BlockSize), lda: BlockSize}
	target.set(last, last, 10)

	l := []float64{2} // 1×1, k=1
	ld := []float64{3}

	update(target, last, last, 1, l, 1, ld, 1)

	if got, want := target.at(last, last), 10.0-2*3; got != want {
		t.Errorf("target(%d,%d) = %v, want %v", last, last, got, want)
	}
}
