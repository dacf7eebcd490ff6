// Copyright ©2024 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldltapp

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

// newPaddedBlock builds a BlockSize×BlockSize, column-major buffer whose
// bottom-right corner (the last len(rows) rows/cols) holds rows, everything
// else zero, mirroring the padding convention of spec.md §3: the returned
// pad is BlockSize-len(rows), the column at which real data starts.
func newPaddedBlock(rows [][]float64) (a []float64, pad int) {
	k := len(rows)
	pad = BlockSize - k
	a = make([]float64, BlockSize*BlockSize)
	for r := 0; r < k; r++ {
		for c := 0; c < k; c++ {
			a[(pad+c)*BlockSize+pad+r] = rows[r][c]
		}
	}
	return a, pad
}

func TestLdltTPPFactorOnePivot(t *testing.T) {
	a, pad := newPaddedBlock([][]float64{
		{2, 1},
		{1, 2},
	})
	d := make([]float64, 2*BlockSize)
	lperm := make([]int, BlockSize)
	n := ldltTPPFactor(pad, a, BlockSize, 0, d, lperm, 0.01, 1e-20)

	if n != 2 {
		t.Fatalf("eliminated %d columns, want 2", n)
	}
	if got, want := a[tppIdx(BlockSize, 0, pad+1, pad)], 0.5; !scalar.EqualWithinAbsOrRel(got, want, 1e-12, 1e-12) {
		t.Errorf("L[1,0] = %v, want %v", got, want)
	}
	if got, want := d[2*pad], 0.5; !scalar.EqualWithinAbsOrRel(got, want, 1e-12, 1e-12) {
		t.Errorf("D[0] = %v, want %v", got, want)
	}
	for i := pad; i < BlockSize; i++ {
		if lperm[i] != i {
			t.Errorf("lperm[%d] = %d, want %d (no reordering under sequential accept)", i, lperm[i], i)
		}
	}
}

func TestLdltTPPFactorTwoByTwoPivot(t *testing.T) {
	a, pad := newPaddedBlock([][]float64{
		{0, 1},
		{1, 0},
	})
	d := make([]float64, 2*BlockSize)
	lperm := make([]int, BlockSize)
	n := ldltTPPFactor(pad, a, BlockSize, 0, d, lperm, 0.01, 1e-20)

	if n != 2 {
		t.Fatalf("eliminated %d columns, want 2", n)
	}
	if !math.IsInf(d[2*(pad+1)], 1) {
		t.Errorf("D[2] = %v, want +Inf sentinel", d[2*(pad+1)])
	}
	if got, want := d[2*pad+1], 1.0; got != want {
		t.Errorf("D[1] = %v, want %v", got, want)
	}
}

func TestLdltTPPFactorDelaysIllConditionedColumn(t *testing.T) {
	// Column 0's pivot is tiny and strongly coupled to both other rows:
	// neither the 1×1 test nor pairing with column 1 as a 2×2 survives the
	// threshold, so column 0 (and everything after it) is delayed.
	a, pad := newPaddedBlock([][]float64{
		{1e-20, 1, 100},
		{1, 4, 0},
		{100, 0, 4},
	})
	d := make([]float64, 2*BlockSize)
	lperm := make([]int, BlockSize)
	n := ldltTPPFactor(pad, a, BlockSize, 0, d, lperm, 0.01, 1e-20)

	if n != 0 {
		t.Fatalf("eliminated %d columns, want 0 (first column delays everything after it)", n)
	}
}

func TestLdltTPPFactorLoneColumnForcedZeroPivot(t *testing.T) {
	a, pad := newPaddedBlock([][]float64{{0}})
	d := make([]float64, 2*BlockSize)
	lperm := make([]int, BlockSize)
	n := ldltTPPFactor(pad, a, BlockSize, 0, d, lperm, 0.01, 1e-20)

	if n != 1 {
		t.Fatalf("eliminated %d columns, want 1 (lone candidate always force-accepted)", n)
	}
	if d[2*pad] != 0 {
		t.Errorf("D[0] = %v, want 0 (zero pivot)", d[2*pad])
	}
}

func TestLdltTPPFactorBadPadPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for pad >= BlockSize")
		}
	}()
	d := make([]float64, 2*BlockSize)
	lperm := make([]int, BlockSize)
	ldltTPPFactor(BlockSize, make([]float64, BlockSize*BlockSize), BlockSize, 0, d, lperm, 0.01, 1e-20)
}

func TestScaleZeroPivot(t *testing.T) {
	const small = 1e-10
	if got := scaleZeroPivot(1e-15, small); got != 0 {
		t.Errorf("scaleZeroPivot(1e-15) = %v, want 0", got)
	}
	if got := scaleZeroPivot(1.0, small); !math.IsInf(got, 1) {
		t.Errorf("scaleZeroPivot(1.0) = %v, want +Inf", got)
	}
	if got := scaleZeroPivot(-1.0, small); !math.IsInf(got, -1) {
		t.Errorf("scaleZeroPivot(-1.0) = %v, want -Inf", got)
	}
	if got := scaleZeroPivot(math.NaN(), small); !math.IsNaN(got) {
		t.Errorf("scaleZeroPivot(NaN) = %v, want NaN", got)
	}
}
