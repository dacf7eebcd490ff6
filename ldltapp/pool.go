// Copyright ©2024 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldltapp

// blockPool is a concurrent-safe pool of fixed-size scratch buffers used to
// hold per-block restore points (spec.md §4.2). getWait blocks the caller
// until a buffer is available; release returns one. There is no ordering
// guarantee between waiters — the channel buffer plays the role the
// reference's condition-variable-backed pool plays, without favoring
// first-come-first-served.
type blockPool struct {
	free chan []float64
}

// newBlockPool allocates n buffers of BlockSize*BlockSize elements each. n
// should be the pessimal bound of spec.md §4.2,
// nblk*(nblk+1)/2 + mblk*nblk, so that getWait never deadlocks against the
// scheduler's own concurrency.
func newBlockPool(n int) *blockPool {
	p := &blockPool{free: make(chan []float64, n)}
	for i := 0; i < n; i++ {
		p.free <- make([]float64, BlockSize*BlockSize)
	}
	return p
}

func (p *blockPool) getWait() []float64 {
	return <-p.free
}

func (p *blockPool) release(buf []float64) {
	p.free <- buf
}
