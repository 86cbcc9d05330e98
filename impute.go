// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

import "sort"

// segmentAt returns the segment covering reference marker r via
// binary search on segment start markers (§4.6).
func segmentAt(segs []Segment, r int) Segment {
	i := sort.Search(len(segs), func(i int) bool { return segs[i].StartMarker > r }) - 1
	if i < 0 {
		i = 0
	}
	return segs[i]
}

// Impute implements C6's phased-pair output: walk one individual's
// mosaic and emit the allele pair at reference marker r, reading
// H[r, hap_label] from the window that covers r.
func Impute(panel *Panel, mosaic Mosaic, r int) (a1, a2 float64, err error) {
	if r < 0 || r >= len(panel.Pos) {
		return 0, 0, newError(NumericalAnomaly, "Impute: marker %d out of range [0,%d)", r, len(panel.Pos))
	}
	g := windowOf(panel, r)
	w := panel.Windows[g]
	local := r - w.RefStart

	s1 := segmentAt(mosaic[0], r)
	s2 := segmentAt(mosaic[1], r)
	a1 = w.allele(local, s1.HapLabel)
	a2 = w.allele(local, s2.HapLabel)
	return a1, a2, nil
}

// imputeAll implements §6's dense-output half of C7: the full phased
// allele-pair matrix for one individual's mosaic, two alleles per
// reference marker interleaved at indices 2r, 2r+1, walking each
// strand's segments in order instead of binary-searching per marker.
func imputeAll(panel *Panel, mosaic Mosaic) ([]int8, error) {
	P := len(panel.Pos)
	out := make([]int8, 2*P)
	for strand := 0; strand < 2; strand++ {
		segs := mosaic[strand]
		si := 0
		for r := 0; r < P; r++ {
			for si+1 < len(segs) && segs[si+1].StartMarker <= r {
				si++
			}
			g := windowOf(panel, r)
			w := panel.Windows[g]
			a := w.allele(r-w.RefStart, segs[si].HapLabel)
			if a != 0 && a != 1 {
				return nil, newError(NumericalAnomaly, "imputeAll: allele %v at marker %d out of {0,1}", a, r)
			}
			out[2*r+strand] = int8(a)
		}
	}
	return out, nil
}

// ImputeDosage returns the unphased genotype dosage in {0,1,2} at
// reference marker r, preferring the observed value at typed
// positions with a non-missing entry in X.
func ImputeDosage(panel *Panel, mosaic Mosaic, X *GenotypeMatrix, sampleCol, r int) (float64, error) {
	if typedRow, ok := typedRowFor(X, panel.Pos[r]); ok {
		obs := X.at(typedRow, sampleCol)
		if obs != missingGenotype {
			return float64(obs), nil
		}
	}
	a1, a2, err := Impute(panel, mosaic, r)
	if err != nil {
		return 0, err
	}
	return a1 + a2, nil
}

// windowOf finds the window index covering reference marker r.
func windowOf(panel *Panel, r int) int {
	return sort.Search(len(panel.Windows), func(g int) bool {
		return panel.Windows[g].RefEnd >= r
	})
}

// typedRowFor looks up the typed-marker row of X.Pos matching
// reference position pos, if any.
func typedRowFor(X *GenotypeMatrix, pos int) (int, bool) {
	i := sort.SearchInts(X.Pos, pos)
	if i < len(X.Pos) && X.Pos[i] == pos {
		return i, true
	}
	return 0, false
}
