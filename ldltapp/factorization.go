// Copyright ©2024 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldltapp

import "math"

// Factorization is a convenience wrapper around Factor/SolveForward/
// SolveDiag/SolveBackward, in the spirit of mat64.Cholesky: it owns the
// working copy of L and D and exposes Solve/Det instead of making every
// caller thread permutation and block bookkeeping through by hand. Unlike
// mat64.Cholesky it does not assume every pivot is accepted — NumElim may be
// less than N, and callers that care (this dense kernel, not a Non-goal,
// leaves retrying delayed pivots to its sparse-solver caller) should check
// it before trusting Det/Solve.
type Factorization struct {
	m, n, lda int
	l         []float64
	d         []float64
	perm      []int
	numElim   int
}

// Factorize runs Factor on a copy of a (m×n, column-major, leading dimension
// lda) and stores the result. perm is the initial row/column labeling,
// typically 0..n-1; it is not modified, a copy is taken. It returns the
// number of pivots accepted, same as Factor.
func (f *Factorization) Factorize(m, n int, a []float64, lda int, perm []int, opts Options) int {
	f.m, f.n, f.lda = m, n, lda
	f.l = append(f.l[:0], a[:(n-1)*lda+m]...)
	f.d = make([]float64, 2*n)
	f.perm = append(f.perm[:0], perm[:n]...)
	f.numElim = Factor(m, n, f.perm, f.l, lda, f.d, opts)
	return f.numElim
}

// NumElim returns the number of pivots Factorize accepted; NumElim == N
// means every pivot was accepted and Solve/Det operate on the whole system.
func (f *Factorization) NumElim() int { return f.numElim }

// LogDet returns the log-determinant of the leading NumElim×NumElim block
// that was actually factorized — the sum of log|d| over 1×1 pivots and
// log|det 2×2 block| over 2×2 pivots, recovered from the already-inverted
// scalars doc.go describes.
func (f *Factorization) LogDet() float64 {
	var sum float64
	for c := 0; c < f.numElim; {
		if c+1 >= f.numElim || isFiniteD(f.d, c+1) {
			sum += math.Log(math.Abs(1 / f.d[2*c]))
			c++
			continue
		}
		d11, d21, d22 := f.d[2*c], f.d[2*c+1], f.d[2*(c+1)+1]
		// The stored block is already D⁻¹; its determinant's reciprocal is
		// the determinant of the original 2×2 pivot.
		detInv := d11*d22 - d21*d21
		sum += -math.Log(math.Abs(detInv))
		c += 2
	}
	return sum
}

// Det returns the determinant of the factorized NumElim×NumElim block.
func (f *Factorization) Det() float64 {
	return math.Exp(f.LogDet())
}

// Solve solves A·x = b for the nrhs right-hand sides stored column-major in
// x (leading dimension ldx, n rows), permuting rows into pivot order before
// the three solve phases and back afterward. This solves the square leading
// system only — the rectangular rows Factorize's m > n carries describe a
// contribution block for a parent solver, not part of this system. It only
// produces a meaningful result when NumElim == N; Factorize's caller is
// responsible for deciding what to do with a partial factorization (spec.md
// treats retrying delayed pivots as the enclosing sparse solver's job, not
// this kernel's).
func (f *Factorization) Solve(nrhs int, x []float64, ldx int) {
	n := f.n
	perm := make([]float64, n*nrhs)
	for i := 0; i < n; i++ {
		src := f.perm[i]
		for j := 0; j < nrhs; j++ {
			perm[j*n+i] = x[j*ldx+src]
		}
	}

	SolveForward(n, n, f.l, f.lda, nrhs, perm, n)
	for j := 0; j < nrhs; j++ {
		SolveDiag(n, f.d, perm[j*n:])
	}
	SolveBackward(n, n, f.l, f.lda, nrhs, perm, n)

	for i := 0; i < n; i++ {
		dst := f.perm[i]
		for j := 0; j < nrhs; j++ {
			x[j*ldx+dst] = perm[j*n+i]
		}
	}
}
