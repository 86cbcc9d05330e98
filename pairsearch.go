// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// pairSearchResult is the C1 output: for each of the n individuals,
// the minimizing unique-haplotype pair (J[i] <= K[i], both 1-based
// column indices into Hw) and its squared-distance score.
type pairSearchResult struct {
	J, K  []int
	Score []float64
}

// fillMissingGenotypes replaces math.NaN() entries of Xw (the
// missing-genotype sentinel) with 2×the row's alt-allele frequency,
// per spec §4.1's "Missing-initialisation" rule. altFreq may be nil
// or shorter than Xw's row count, in which case the frequency is
// estimated from the row's own non-missing entries. A row that is
// entirely missing is filled with zero.
func fillMissingGenotypes(Xw *mat.Dense, altFreq []float64) error {
	p, n := Xw.Dims()
	for r := 0; r < p; r++ {
		var fillVal float64
		haveFreq := r < len(altFreq)
		if haveFreq {
			fillVal = 2 * altFreq[r]
		}
		sum, cnt := 0.0, 0
		for c := 0; c < n; c++ {
			v := Xw.At(r, c)
			if !math.IsNaN(v) {
				sum += v
				cnt++
			}
		}
		if !haveFreq {
			if cnt > 0 {
				fillVal = sum / float64(cnt)
			} else {
				fillVal = 0
			}
		}
		if cnt == 0 {
			fillVal = 0
		}
		for c := 0; c < n; c++ {
			if math.IsNaN(Xw.At(r, c)) {
				Xw.Set(r, c, fillVal)
			}
		}
	}
	for r := 0; r < p; r++ {
		for c := 0; c < n; c++ {
			v := Xw.At(r, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return newError(NumericalAnomaly, "Xw[%d,%d] is NaN/Inf after missing-fill", r, c)
			}
		}
	}
	return nil
}

// PairSearch implements C1: for each of Xw's n individuals, find the
// unique-haplotype pair (j,k), j<=k, minimizing the squared
// reconstruction error against Hw, using the expanded-objective
// algorithm of spec §4.1. Xw must already have missing entries filled
// (see fillMissingGenotypes) and contain no NaN/Inf. altFreq, the
// window's per-marker alt-allele frequency, is only consulted when
// thinning fires and Config.ThinningScaleAlleleFreq biases the coarse
// candidate ranking; it never touches the exact distance computation.
func PairSearch(Xw, Hw *mat.Dense, altFreq []float64, cfg Config) (*pairSearchResult, error) {
	p, d := Hw.Dims()
	pX, n := Xw.Dims()
	if p == 0 || d == 0 {
		return nil, newError(EmptyWindow, "PairSearch: p=%d d=%d", p, d)
	}
	if pX != p {
		return nil, newError(NumericalAnomaly, "PairSearch: Xw has %d rows, Hw has %d", pX, p)
	}
	if err := checkFinite(Xw); err != nil {
		return nil, err
	}
	if err := checkFinite(Hw); err != nil {
		return nil, err
	}

	if cfg.MaxHaplotypes > 0 && d > cfg.MaxHaplotypes {
		return pairSearchThinned(Xw, Hw, altFreq, cfg)
	}
	return pairSearchFull(Xw, Hw)
}

func checkFinite(m *mat.Dense) error {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return newError(NumericalAnomaly, "matrix entry [%d,%d] is NaN/Inf", i, j)
			}
		}
	}
	return nil
}

// pairSearchFull runs the exact O(d^2 n) search of spec §4.1 over all
// d haplotype columns.
func pairSearchFull(Xw, Hw *mat.Dense) (*pairSearchResult, error) {
	p, d := Hw.Dims()
	_, n := Xw.Dims()

	var gram mat.Dense
	gram.Mul(Hw.T(), Hw) // gram[j,k] = h_j . h_k
	diag := make([]float64, d)
	for j := 0; j < d; j++ {
		diag[j] = gram.At(j, j)
	}

	var N mat.Dense
	N.Mul(Xw.T(), Hw) // N[i,j] = x_i . h_j
	N.Scale(2, &N)

	normX := make([]float64, n)
	for i := 0; i < n; i++ {
		var s float64
		for r := 0; r < p; r++ {
			v := Xw.At(r, i)
			s += v * v
		}
		normX[i] = s
	}

	res := &pairSearchResult{J: make([]int, n), K: make([]int, n), Score: make([]float64, n)}
	for i := 0; i < n; i++ {
		bestJ, bestK := 1, 1
		best := math.Inf(1)
		for k := 0; k < d; k++ {
			for j := 0; j <= k; j++ {
				var mjk float64
				if j == k {
					mjk = 4 * diag[j]
				} else {
					mjk = 2*gram.At(j, k) + diag[j] + diag[k]
				}
				score := mjk - N.At(i, j) - N.At(i, k)
				if score < best {
					best = score
					bestJ, bestK = j+1, k+1
				}
			}
		}
		res.J[i], res.K[i] = bestJ, bestK
		res.Score[i] = best + normX[i]
	}
	return res, nil
}

// pairSearchThinned implements the scale guard of §4.1: when d exceeds
// Config.MaxHaplotypes, each individual's search is restricted to a
// small candidate subset selected by a cheap coarse score before the
// full O(keep^2) search runs on that subset. Thinning only affects
// performance; it always returns a feasible pair with j<=k.
func pairSearchThinned(Xw, Hw *mat.Dense, altFreq []float64, cfg Config) (*pairSearchResult, error) {
	p, d := Hw.Dims()
	_, n := Xw.Dims()

	keep := cfg.MaxHaplotypes
	if cfg.ThinningFactor != nil {
		keep = *cfg.ThinningFactor
	}
	if keep > d {
		keep = d
	}

	// cfg.ThinningScaleAlleleFreq weights the coarse ranking by
	// 1/altfreq, biasing candidate selection toward rare variants. The
	// scaled matrix is used only to rank candidates here; the full
	// search below always runs against the unscaled Hw subset, per
	// spec §4.1's exact objective.
	coarseHw := Hw
	if cfg.ThinningScaleAlleleFreq {
		coarseHw = scaleRowsByInverseFreq(Hw, altFreq)
	}
	var coarse mat.Dense
	coarse.Mul(Xw.T(), coarseHw)

	res := &pairSearchResult{J: make([]int, n), K: make([]int, n), Score: make([]float64, n)}
	candCols := make([]float64, d)
	order := make([]int, d)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			candCols[j] = coarse.At(i, j)
			order[j] = j
		}
		sort.Slice(order, func(a, b int) bool { return candCols[order[a]] > candCols[order[b]] })
		sub := order[:keep]
		sort.Ints(sub)

		subHw := mat.NewDense(p, keep, nil)
		for c, j := range sub {
			for r := 0; r < p; r++ {
				subHw.Set(r, c, Hw.At(r, j))
			}
		}
		subXw := mat.NewDense(p, 1, nil)
		for r := 0; r < p; r++ {
			subXw.Set(r, 0, Xw.At(r, i))
		}
		sub1, err := pairSearchFull(subXw, subHw)
		if err != nil {
			return nil, err
		}
		res.J[i] = sub[sub1.J[0]-1] + 1
		res.K[i] = sub[sub1.K[0]-1] + 1
		res.Score[i] = sub1.Score[0]
	}
	return res, nil
}

// scaleRowsByInverseFreq returns a copy of Hw with each row divided by
// its alt-allele frequency (frequencies outside (0,1) are left
// unscaled), used only to bias pairSearchThinned's coarse-ranking dot
// product toward rare variants.
func scaleRowsByInverseFreq(Hw *mat.Dense, altFreq []float64) *mat.Dense {
	rows, cols := Hw.Dims()
	scaled := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		freq := 1.0
		if r < len(altFreq) && altFreq[r] > 0 && altFreq[r] < 1 {
			freq = altFreq[r]
		}
		for c := 0; c < cols; c++ {
			scaled.Set(r, c, Hw.At(r, c)/freq)
		}
	}
	return scaled
}
