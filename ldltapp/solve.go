// Copyright ©2024 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldltapp

import "math"

// SolveForward applies L⁻¹ to the nrhs right-hand sides stored column-major
// in x (leading dimension ldx), where L is the m×n unit lower triangular
// factor Factor produced (n columns, leading dimension ldl). The leading n
// rows are solved by a triangular solve; if m > n, the rectangular
// contribution rows n..m-1 are then reduced by the L[n:,:n]·x[:n,:] term
// already captured in L's rectangular extension.
func SolveForward(m, n int, l []float64, ldl, nrhs int, x []float64, ldx int) {
	if n == 0 {
		return
	}
	if nrhs == 1 {
		hostTrsv(FillLower, OpN, DiagUnit, n, l, ldl, x, 1)
		if m > n {
			hostGemv(OpN, m-n, n, -1, l[n:], ldl, x, 1, 1, x[n:], 1)
		}
		return
	}
	hostTrsm(SideLeft, FillLower, OpN, DiagUnit, n, nrhs, 1, l, ldl, x, ldx)
	if m > n {
		hostGemm(OpN, OpN, m-n, nrhs, n, -1, l[n:], ldl, x, ldx, 1, x[n:], ldx)
	}
}

// SolveDiag applies D⁻¹ to the leading n rows of x in place, honoring the
// 1×1/2×2 sentinel encoding of doc.go: d holds pivots already inverted, so
// each block is a direct linear combination, never a further division.
func SolveDiag(n int, d []float64, x []float64) {
	for c := 0; c < n; {
		if c+1 >= n || isFiniteD(d, c+1) {
			d1 := d[2*c]
			x[c] *= d1
			c++
			continue
		}
		d11, d21, d22 := d[2*c], d[2*c+1], d[2*(c+1)+1]
		v1, v2 := x[c], x[c+1]
		x[c] = d11*v1 + d21*v2
		x[c+1] = d21*v1 + d22*v2
		c += 2
	}
}

func isFiniteD(d []float64, col int) bool {
	v := d[2*col]
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// SolveBackward applies L⁻ᵀ to the leading n rows of x, folding in the
// rectangular contribution rows n..m-1 first when m > n — the transposed
// mirror of SolveForward, run in the opposite order.
func SolveBackward(m, n int, l []float64, ldl, nrhs int, x []float64, ldx int) {
	if n == 0 {
		return
	}
	if nrhs == 1 {
		if m > n {
			hostGemv(OpT, m-n, n, -1, l[n:], ldl, x[n:], 1, 1, x, 1)
		}
		hostTrsv(FillLower, OpT, DiagUnit, n, l, ldl, x, 1)
		return
	}
	if m > n {
		hostGemm(OpT, OpN, n, nrhs, m-n, -1, l[n:], ldl, x[n:], ldx, 1, x, ldx)
	}
	hostTrsm(SideLeft, FillLower, OpT, DiagUnit, n, nrhs, 1, l, ldl, x, ldx)
}
