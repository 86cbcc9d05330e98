// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

import "sync"

// scratchPool hands out reusable per-goroutine working buffers so the
// per-individual fan-out doesn't allocate a fresh slice set on every
// task (the per-window fan-out allocates its own matrices). Each buffer is sized on first use and grown as needed;
// callers must reset length to 0 before reuse, which get does for
// them.
type scratchPool struct {
	pool sync.Pool
}

// individualScratch is what one individual's Connector +
// BreakpointSearch + Mosaic task needs across the whole window walk.
type individualScratch struct {
	candidates [][]fullPair
	set1       []*haploSet
	set2       []*haploSet
	X          []float64
	missing    []bool
}

func newScratchPool() *scratchPool {
	return &scratchPool{pool: sync.Pool{New: func() interface{} { return &individualScratch{} }}}
}

func (p *scratchPool) get() *individualScratch {
	s := p.pool.Get().(*individualScratch)
	s.candidates = s.candidates[:0]
	s.set1 = s.set1[:0]
	s.set2 = s.set2[:0]
	s.X = s.X[:0]
	s.missing = s.missing[:0]
	return s
}

func (p *scratchPool) put(s *individualScratch) {
	p.pool.Put(s)
}
