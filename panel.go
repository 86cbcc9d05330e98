// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

import (
	"fmt"

	"golang.org/x/crypto/blake2b"
	"gonum.org/v1/gonum/mat"
)

// NewWindowFromHaplotypes builds a Window from a raw p×D haplotype
// matrix (haps[row] is one typed marker's D 0/1 values), de-duplicating
// identical columns the way tileLibrary.getRef de-duplicates tile
// sequences: by content hash. This is a convenience path for callers
// (and tests) without a pre-windowing collaborator; the primary
// pipeline consumes Windows that already carry UniqueH/HapMap.
func NewWindowFromHaplotypes(refStart, refEnd int, haps [][]byte, altFreq []float64) (*Window, error) {
	p := len(haps)
	if p == 0 {
		return nil, newError(EmptyWindow, "NewWindowFromHaplotypes: zero typed markers")
	}
	d := len(haps[0])
	if d == 0 {
		return nil, newError(EmptyWindow, "NewWindowFromHaplotypes: zero haplotypes")
	}
	for _, row := range haps {
		if len(row) != d {
			return nil, fmt.Errorf("NewWindowFromHaplotypes: ragged haplotype matrix")
		}
	}

	type col struct {
		hash [blake2b.Size256]byte
	}
	hashes := make([]col, d)
	for j := 0; j < d; j++ {
		buf := make([]byte, p)
		for i := 0; i < p; i++ {
			buf[i] = haps[i][j]
		}
		hashes[j] = col{hash: blake2b.Sum256(buf)}
	}

	hapMap := make([]int, d)
	uniqueIdx := map[[blake2b.Size256]byte]int{}
	var uniqueCols []int // column index (into haps) of each unique haplotype, 0-based
	for j := 0; j < d; j++ {
		if idx, ok := uniqueIdx[hashes[j].hash]; ok {
			hapMap[j] = idx
			continue
		}
		uniqueCols = append(uniqueCols, j)
		idx := len(uniqueCols)
		uniqueIdx[hashes[j].hash] = idx
		hapMap[j] = idx
	}

	dense := mat.NewDense(p, len(uniqueCols), nil)
	for i := 0; i < p; i++ {
		for u, j := range uniqueCols {
			dense.Set(i, u, float64(haps[i][j]))
		}
	}

	return &Window{
		UniqueH:  DenseHaplotypes{M: dense},
		HapMap:   hapMap,
		RefStart: refStart,
		RefEnd:   refEnd,
		AltFreq:  altFreq,
		NumTyped: p,
	}, nil
}

// allele returns the 0/1 value of full-panel haplotype h (1-based) at
// this window's local typed-marker row (0-based).
func (w *Window) allele(localMarker, h int) float64 {
	uniq := w.HapMap[h-1]
	dense := w.UniqueH.Dense()
	return dense.At(localMarker, uniq-1)
}

// invertHapMap returns, for each unique column index (1-based), the
// sorted list of full-panel haplotype indices (1-based) that map to
// it. The result is computed once per window and cached, since every
// individual's RedundantExpansion in a window reuses the same inverse
// map (§C2).
func (w *Window) invertHapMap() [][]int {
	if w.inverse != nil {
		return w.inverse
	}
	_, d := w.UniqueH.Dims()
	inv := make([][]int, d+1) // 1-based; index 0 unused
	for full, uniq := range w.HapMap {
		inv[uniq] = append(inv[uniq], full+1)
	}
	w.inverse = inv
	return inv
}
