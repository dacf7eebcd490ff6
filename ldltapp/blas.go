// Copyright ©2024 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldltapp

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// Operation, Side, Fill and Diag name the BLAS enums spec.md §6 requires
// ("operation ∈ {N, T}", "side ∈ {LEFT, RIGHT}", "fill_mode ∈ {LWR, UPR}",
// "diag ∈ {UNIT, NON_UNIT}"), kept distinct from gonum's own blas.Transpose
// etc. because this package's panel A is column-major while blas64's
// Implementation assumes row-major storage; hostTrsm/hostTrsv/hostGemm/hostGemv
// translate between the two conventions below.
type (
	Operation byte
	Side      byte
	Fill      byte
	Diag      byte
)

const (
	OpN Operation = 'N'
	OpT Operation = 'T'

	SideLeft  Side = 'L'
	SideRight Side = 'R'

	FillLower Fill = 'L'
	FillUpper Fill = 'U'

	DiagUnit    Diag = 'U'
	DiagNonUnit Diag = 'N'
)

var impl = blas64.Implementation()

func (op Operation) blas() blas.Transpose {
	if op == OpT {
		return blas.Trans
	}
	return blas.NoTrans
}

func flipOp(op Operation) blas.Transpose {
	if op == OpT {
		return blas.NoTrans
	}
	return blas.Trans
}

func flipSide(s Side) blas.Side {
	if s == SideLeft {
		return blas.Right
	}
	return blas.Left
}

func flipFill(f Fill) blas.Uplo {
	if f == FillLower {
		return blas.Upper
	}
	return blas.Lower
}

func (d Diag) blas() blas.Diag {
	if d == DiagUnit {
		return blas.Unit
	}
	return blas.NonUnit
}

// hostGemm computes the column-major update C := alpha*op(A)*op(B) + beta*C,
// where C is m×n, op(A) is m×k and op(B) is k×n, all stored column-major with
// the given leading dimensions. gonum's blas64.Implementation assumes
// row-major storage, so this reinterprets each column-major (p×q, ld) buffer
// as its own row-major transpose (q×p, same ld) and solves the transposed
// equation instead: Cᵀ = alpha*op(B)ᵀ*op(A)ᵀ + beta*Cᵀ, which swaps the A/B
// operands and the m/n dimensions but leaves every op flag, ld and scalar
// unchanged.
func hostGemm(opA, opB Operation, m, n, k int, alpha float64, a []float64, lda int, b []float64, ldb int, beta float64, c []float64, ldc int) {
	if m == 0 || n == 0 {
		return
	}
	impl.Dgemm(opB.blas(), opA.blas(), n, m, k, alpha, b, ldb, a, lda, beta, c, ldc)
}

// hostGemv computes the column-major update y := alpha*op(A)*x + beta*y where
// op(A) is m×n. See hostGemm for the row/column-major translation; for a
// vector the extra transpose needed to express x, y as row vectors flips the
// op flag (it does not flip for matrix/matrix operands), and m, n swap to
// describe A's physical row/column counts instead of op(A)'s logical ones.
func hostGemv(op Operation, m, n int, alpha float64, a []float64, lda int, x []float64, incX int, beta float64, y []float64, incY int) {
	if m == 0 || n == 0 {
		return
	}
	impl.Dgemv(flipOp(op), n, m, alpha, a, lda, x, incX, beta, y, incY)
}

// hostTrsm solves, overwriting B with X, op(A)·X = alpha·B (side == SideLeft,
// A is m×m) or X·op(A) = alpha·B (side == SideRight, A is n×n); B and X are
// m×n, column-major. See hostGemm for the general translation; for a
// triangular operand the fill mode also flips, because a column-major
// lower-triangular buffer is upper-triangular under its own row-major
// reinterpretation.
func hostTrsm(side Side, fill Fill, op Operation, diag Diag, m, n int, alpha float64, a []float64, lda int, b []float64, ldb int) {
	if m == 0 || n == 0 {
		return
	}
	impl.Dtrsm(flipSide(side), flipFill(fill), op.blas(), diag.blas(), n, m, alpha, a, lda, b, ldb)
}

// hostTrsv solves op(A)·x = b in place (x aliases b), A an n×n triangular
// matrix stored column-major. Unlike hostTrsm, x is reinterpreted as a row
// vector to reuse the same buffer-transpose trick, which flips both the op
// flag and the fill mode (see hostGemv for why a vector operand flips op
// where a matrix operand does not).
func hostTrsv(fill Fill, op Operation, diag Diag, n int, a []float64, lda int, x []float64, incX int) {
	if n == 0 {
		return
	}
	impl.Dtrsv(flipFill(fill), flipOp(op), diag.blas(), n, a, lda, x, incX)
}
