// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

import "gonum.org/v1/gonum/mat"

// HaplotypeSource is any source of p×d 0/1 values with a column
// materialization primitive into floats. A caller whose reference
// panel is bit-packed can implement this directly instead of paying
// for a dense float expansion of the whole panel up front.
type HaplotypeSource interface {
	// Dims returns the number of typed rows (p) and haplotype
	// columns (d) in this window.
	Dims() (p, d int)
	// Column writes haplotype j's values (1-based, j in 1..d) into
	// dst, which must have length p.
	Column(j int, dst []float64)
	// Dense returns the whole source as a p×d gonum matrix of 0/1
	// floats, materializing it if necessary.
	Dense() *mat.Dense
}

// DenseHaplotypes is the straightforward HaplotypeSource backed by an
// in-memory gonum matrix.
type DenseHaplotypes struct {
	M *mat.Dense
}

func (d DenseHaplotypes) Dims() (int, int) { return d.M.Dims() }

func (d DenseHaplotypes) Column(j int, dst []float64) {
	p, _ := d.M.Dims()
	for i := 0; i < p; i++ {
		dst[i] = d.M.At(i, j-1)
	}
}

func (d DenseHaplotypes) Dense() *mat.Dense { return d.M }

// Window is one fixed-width (except possibly the last) block of
// reference markers, together with its de-duplicated haplotype
// columns and the map back to full-panel haplotype indices.
type Window struct {
	// UniqueH is the p×d_g matrix of distinct haplotype columns
	// over this window's typed markers.
	UniqueH HaplotypeSource
	// HapMap maps full-panel haplotype index (1-based, 1..D) to its
	// representative column index (1-based) in UniqueH.
	HapMap []int
	// RefStart, RefEnd are the reference-marker range (0-based indices
	// into Panel.Pos, inclusive) covered by this window.
	RefStart, RefEnd int
	// AltFreq is the optional per-marker alt-allele frequency over
	// this window's typed markers, aligned with UniqueH's rows.
	AltFreq []float64
	// NumTyped is the number of typed markers in this window.
	NumTyped int
	// XRowStart is the starting row index into the target
	// GenotypeMatrix's Data/Pos for this window's typed markers (a
	// contiguous block of NumTyped rows, since typed markers and
	// windows are both laid out in reference-position order).
	XRowStart int

	// inverse caches the unique-column -> full-index preimage
	// (built lazily by invertHapMap, §C2).
	inverse [][]int
}

// Panel is the immutable, fully-phased reference haplotype panel.
type Panel struct {
	// Pos holds sorted reference marker positions, length P.
	Pos []int
	// Windows holds the W windows in reference order.
	Windows []*Window
	// D is the number of full-panel haplotypes (2×number of
	// reference individuals, for a diploid panel).
	D int
	// Width is the configured window size in markers.
	Width int
}

const missingGenotype int8 = -1

// GenotypeMatrix is the unphased, partially-missing diploid target
// genotype matrix X, Pt×N, over the typed marker subset of the
// reference panel.
type GenotypeMatrix struct {
	// Data is row-major Pt×N: Data[r*N+i] is sample i's dosage at
	// typed marker r, or missingGenotype.
	Data []int8
	// N is the number of target samples.
	N int
	// Pos holds the typed marker positions, sorted strictly
	// increasing, length Pt.
	Pos []int
	// SampleID holds the N sample identifiers, aligned with Data's
	// columns.
	SampleID []string
	// XtoHIdx[r] is the reference-panel marker index (0-based, into
	// Panel.Pos) that typed marker r maps to. Built once at
	// ingestion.
	XtoHIdx []int
}

func (g *GenotypeMatrix) at(row, col int) int8 {
	return g.Data[row*g.N+col]
}

// Segment is one contiguous run of a mosaic: from StartMarker
// (inclusive, a reference marker index, 0-based) until the next
// segment's StartMarker (or the reference end), the strand is
// explained by haplotype HapLabel (a full-panel index, 1..D) drawn
// from window WindowID.
type Segment struct {
	StartMarker int
	WindowID    int
	HapLabel    int
}

// Mosaic is one individual's two phased strands.
type Mosaic [2][]Segment

// PhaseResult is one target individual's reconstructed phase.
type PhaseResult struct {
	SampleID string
	Mosaic   Mosaic
	// Phased is the dense imputed genotype output of §6, built only
	// when Config.Impute is set: length 2*len(Panel.Pos), the two
	// alleles at reference marker r interleaved at indices 2r, 2r+1.
	// Nil when imputation is disabled.
	Phased []int8
}
