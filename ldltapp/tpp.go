// Copyright ©2024 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldltapp

import "math"

// ldltTPPFactor runs a right-looking LDLᵀ with threshold partial pivoting
// over a single BlockSize×BlockSize diagonal block, whose leading pad
// rows/cols are phantom pre-eliminated entries (spec.md §3's padding
// convention). a, lda, base address the block's own backing storage: base
// is the flat offset such that base+c*lda+r lands on logical (row=r,col=c)
// of the block, so a caller whose block's (0,0) falls before its backing
// array's own start (rowBase/colBase negative, from the overlap rule) can
// still hand ldltTPPFactor the real array without ever slicing at a
// negative index — every access this function makes has col,row >= pad,
// which keeps base+c*lda+r in bounds. d receives pivots in the layout of
// doc.go; lperm receives the permutation chosen among the block's B
// candidate positions (identity, since this implementation accepts
// candidates strictly in order rather than searching for the best available
// one — see DESIGN.md). It returns the number of columns eliminated,
// counting from pad.
//
// At each remaining candidate col, a 1×1 pivot is tried first; failing
// that, pairing col with col+1 as a 2×2 pivot; failing that, col and every
// candidate after it are delayed and the loop stops. The sole exception is
// the last remaining candidate, which is always accepted — including as a
// zero pivot — because there is nothing left to pair it with or delay in
// its favor (spec.md §8 scenario 4).
func ldltTPPFactor(pad int, a []float64, lda, base int, d []float64, lperm []int, u, small float64) int {
	if pad < 0 || pad >= BlockSize {
		panic(badPad)
	}
	for i := pad; i < BlockSize; i++ {
		lperm[i] = i
	}
	col := pad
	last := BlockSize - 1
	for col <= last {
		if col == last {
			piv := a[tppIdx(lda, base, col, col)]
			var d1 float64
			if piv != 0 {
				d1 = 1 / piv
			}
			commit1x1(a, lda, base, d, col, last, d1, small)
			col++
			continue
		}

		if piv := a[tppIdx(lda, base, col, col)]; piv != 0 {
			d1 := 1 / piv
			if oneByOneOK(a, lda, base, col, last, d1, u) {
				commit1x1(a, lda, base, d, col, last, d1, small)
				col++
				continue
			}
		}

		rr := col + 1
		a11 := a[tppIdx(lda, base, col, col)]
		a21 := a[tppIdx(lda, base, rr, col)]
		a22 := a[tppIdx(lda, base, rr, rr)]
		det := a11*a22 - a21*a21
		if det != 0 {
			d11, d21, d22 := a22/det, -a21/det, a11/det
			if twoByTwoOK(a, lda, base, col, rr, last, d11, d21, d22, u) {
				commit2x2(a, lda, base, d, col, rr, last, d11, d21, d22)
				col += 2
				continue
			}
		}

		break // col, and everything after it, is delayed.
	}
	return col - pad
}

// blockLDLT is the pad=0, aligned-storage specialization of spec.md §4.1.
// The reference hand-vectorizes this path for aligned memory; without a way
// to build or benchmark SIMD code in this exercise (see DESIGN.md), it
// shares ldltTPPFactor's scalar elimination core instead of risking an
// unverifiable hand-rolled kernel.
func blockLDLT(a []float64, lda int, d []float64, lperm []int, u, small float64) int {
	return ldltTPPFactor(0, a, lda, 0, d, lperm, u, small)
}

func tppIdx(lda, base, r, c int) int { return base + c*lda + r }

func oneByOneOK(a []float64, lda, base, col, last int, d1, u float64) bool {
	bound := 1 / u
	for r := col + 1; r <= last; r++ {
		if math.Abs(a[tppIdx(lda, base, r, col)]*d1) > bound {
			return false
		}
	}
	return true
}

func twoByTwoOK(a []float64, lda, base, col, rr, last int, d11, d21, d22, u float64) bool {
	bound := 1 / u
	for r := rr + 1; r <= last; r++ {
		v1, v2 := a[tppIdx(lda, base, r, col)], a[tppIdx(lda, base, r, rr)]
		if math.Abs(v1*d11+v2*d21) > bound || math.Abs(v1*d21+v2*d22) > bound {
			return false
		}
	}
	return true
}

// commit1x1 eliminates column col as a 1×1 pivot with inverse d1 (zero when
// the pivot itself is zero), updating the trailing Schur complement and
// writing L into column col.
func commit1x1(a []float64, lda, base int, d []float64, col, last int, d1, small float64) {
	n := last - col
	if n > 0 {
		v := make([]float64, n)
		for k := 0; k < n; k++ {
			v[k] = a[tppIdx(lda, base, col+1+k, col)]
		}
		for kc := 0; kc < n; kc++ {
			c := col + 1 + kc
			for kr := kc; kr < n; kr++ {
				r := col + 1 + kr
				a[tppIdx(lda, base, r, c)] -= v[kr] * v[kc] * d1
			}
		}
		for k := 0; k < n; k++ {
			r := col + 1 + k
			if d1 == 0 {
				a[tppIdx(lda, base, r, col)] = scaleZeroPivot(v[k], small)
			} else {
				a[tppIdx(lda, base, r, col)] = v[k] * d1
			}
		}
	}
	d[2*col] = d1
	d[2*col+1] = 0
}

// commit2x2 eliminates the pair (col,rr) as a 2×2 pivot with inverse block
// [[d11,d21],[d21,d22]], updating the trailing Schur complement and writing
// L into columns col and rr. rr must equal col+1: spec.md §3's sentinel
// encoding requires the second half of a 2×2 to occupy the very next D slot.
func commit2x2(a []float64, lda, base int, d []float64, col, rr, last int, d11, d21, d22 float64) {
	n := last - rr
	if n > 0 {
		v1 := make([]float64, n)
		v2 := make([]float64, n)
		l1 := make([]float64, n)
		l2 := make([]float64, n)
		for k := 0; k < n; k++ {
			r := rr + 1 + k
			v1[k] = a[tppIdx(lda, base, r, col)]
			v2[k] = a[tppIdx(lda, base, r, rr)]
			l1[k] = v1[k]*d11 + v2[k]*d21
			l2[k] = v1[k]*d21 + v2[k]*d22
		}
		for kc := 0; kc < n; kc++ {
			c := rr + 1 + kc
			for kr := kc; kr < n; kr++ {
				r := rr + 1 + kr
				a[tppIdx(lda, base, r, c)] -= l1[kr]*v1[kc] + l2[kr]*v2[kc]
			}
		}
		for k := 0; k < n; k++ {
			r := rr + 1 + k
			a[tppIdx(lda, base, r, col)] = l1[k]
			a[tppIdx(lda, base, r, rr)] = l2[k]
		}
	}
	d[2*col] = d11
	d[2*col+1] = d21
	d[2*rr] = math.Inf(1)
	d[2*rr+1] = d22
}
