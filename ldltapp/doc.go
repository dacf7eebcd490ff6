// Copyright ©2024 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ldltapp factorizes a dense symmetric indefinite panel A = P·L·D·Lᵀ·Pᵀ
// using a blocked, threshold-pivoted algorithm with task-parallel block-column
// scheduling.
//
// It is the supernodal inner kernel of a sparse direct solver: given one dense
// frontal panel of size m×n (m ≥ n, the leading n×n block holds the pivot
// candidates, the trailing (m−n)×n block is the update/contribution region),
// Factor produces a unit-lower-triangular L, a block-diagonal D with 1×1 and
// 2×2 pivots, a permutation of the n pivot candidates, and the count of pivots
// that satisfied the threshold partial pivoting test. Columns that fail the
// threshold are delayed: they are moved to the tail of the permutation with no
// entry written to D, for a parent computation to retry.
//
// D holds two slots per column and stores inverted pivots. A 1×1 pivot p in
// column c gives d[2c] = 1/p (0 for a zero pivot) and d[2c+1] = 0. A 2×2
// pivot on columns c, c+1 stores its inverse block [[d11, d21], [d21, d22]]
// as d[2c] = d11, d[2c+1] = d21, d[2c+3] = d22, and sets d[2c+2] = +Inf to
// mark column c+1 as the second half of the pair; a finite d[2(c+1)] means
// column c is a 1×1 pivot.
package ldltapp

// BlockSize is the fixed block dimension used to partition the panel. Factor
// panics unless it is a positive even number. blockLDLT has no code unrolled
// for a particular size; it shares ldltTPPFactor's scalar loops.
const BlockSize = 32
