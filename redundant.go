// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

// maxRedundantPairs caps the DP-mode candidate list per spec §4.2/§3.
const maxRedundantPairs = 1000

// fullPair is one full-panel haplotype pair (h1, h2), not necessarily
// ordered.
type fullPair struct{ H1, H2 int }

// RedundantExpansion implements C2 in DP mode: given window w and an
// individual's chosen unique-pair (j,k), translate to the set of
// full-panel pairs S1×S2 where S1, S2 are the preimages of j and k
// under w's HapMap, enumerated lexicographically and truncated at
// maxRedundantPairs.
func RedundantExpansion(w *Window, j, k int) []fullPair {
	inv := w.invertHapMap()
	s1, s2 := inv[j], inv[k]
	pairs := make([]fullPair, 0, min(len(s1)*len(s2), maxRedundantPairs))
	for _, a := range s1 {
		for _, b := range s2 {
			pairs = append(pairs, fullPair{a, b})
			if len(pairs) >= maxRedundantPairs {
				return pairs
			}
		}
	}
	return pairs
}

// RedundantExpansionBitset implements C2 in set-intersection mode:
// the same preimages, represented as two bitsets over 1..D.
func RedundantExpansionBitset(w *Window, j, k, D int) (s1, s2 *haploSet) {
	inv := w.invertHapMap()
	s1, s2 = newHaploSet(D), newHaploSet(D)
	for _, a := range inv[j] {
		s1.Add(a)
	}
	for _, b := range inv[k] {
		s2.Add(b)
	}
	return s1, s2
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
