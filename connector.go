// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

import "math"

// switchCost is the number of strand-level mismatches between a
// window's chosen pair and the next, after considering both
// orderings of the next pair (§4.3.a).
func switchCost(prev, cur fullPair) int {
	straight := 0
	if prev.H1 != cur.H1 {
		straight++
	}
	if prev.H2 != cur.H2 {
		straight++
	}
	crossed := 0
	if prev.H1 != cur.H2 {
		crossed++
	}
	if prev.H2 != cur.H1 {
		crossed++
	}
	if straight < crossed {
		return straight
	}
	return crossed
}

func lexLess(a, b fullPair) bool {
	if a.H1 != b.H1 {
		return a.H1 < b.H1
	}
	return a.H2 < b.H2
}

// connectorLambda is the switch-cost weight of §4.3.a.
const connectorLambda = 1.0

// ConnectWindowsDP implements C3 in DP mode: for one individual, given
// the per-window redundant-pair candidate lists (as produced by
// RedundantExpansion), find the sequence minimizing total switch cost
// and return one chosen pair per window. candidates[g] must be
// non-empty for every g.
func ConnectWindowsDP(candidates [][]fullPair) ([]fullPair, error) {
	W := len(candidates)
	if W == 0 {
		return nil, nil
	}
	for g, c := range candidates {
		if len(c) == 0 {
			return nil, newError(EmptyWindow, "ConnectWindowsDP: window %d has no candidate pairs", g)
		}
	}

	cost := make([][]float64, W)
	back := make([][]int, W)
	cost[0] = make([]float64, len(candidates[0]))
	back[0] = make([]int, len(candidates[0]))
	for i := range back[0] {
		back[0][i] = -1
	}

	for g := 1; g < W; g++ {
		prev, cur := candidates[g-1], candidates[g]
		cost[g] = make([]float64, len(cur))
		back[g] = make([]int, len(cur))
		for j, cp := range cur {
			bestCost := math.Inf(1)
			bestPrev := -1
			for i, pp := range prev {
				c := cost[g-1][i] + connectorLambda*float64(switchCost(pp, cp))
				if bestPrev == -1 || c < bestCost || (c == bestCost && lexLess(pp, prev[bestPrev])) {
					bestCost, bestPrev = c, i
				}
			}
			cost[g][j] = bestCost
			back[g][j] = bestPrev
		}
	}

	last := W - 1
	finalIdx := -1
	var bestFinal float64
	for j, c := range cost[last] {
		if finalIdx == -1 || c < bestFinal || (c == bestFinal && lexLess(candidates[last][j], candidates[last][finalIdx])) {
			bestFinal, finalIdx = c, j
		}
	}

	path := make([]fullPair, W)
	idx := finalIdx
	for g := last; g >= 0; g-- {
		path[g] = candidates[g][idx]
		if g > 0 {
			idx = back[g][idx]
		}
	}
	return path, nil
}

// ConnectWindowsIntersection implements C3 in set-intersection mode:
// for one individual, strand1Sets[g]/strand2Sets[g] are the two
// per-window bitsets from RedundantExpansionBitset. It tracks two
// chain sets across windows, closing and restarting a run whenever an
// intersection empties out, and returns one representative pair per
// window (§4.3.b). A run's representative pair is the smallest-index
// member of each chain set at the point the run closes; since
// intersection only ever shrinks a chain set, that member was present
// in every window of the run.
func ConnectWindowsIntersection(strand1Sets, strand2Sets []*haploSet) ([]fullPair, error) {
	W := len(strand1Sets)
	if W == 0 {
		return nil, nil
	}
	result := make([]fullPair, W)

	runStart := 0
	A := strand1Sets[0].Clone()
	B := strand2Sets[0].Clone()

	closeRun := func(end int, a, b *haploSet) error {
		repA, okA := a.Smallest()
		repB, okB := b.Smallest()
		if !okA || !okB {
			return newError(NumericalAnomaly, "ConnectWindowsIntersection: empty chain set closing run [%d,%d)", runStart, end)
		}
		for g := runStart; g < end; g++ {
			result[g] = fullPair{repA, repB}
		}
		return nil
	}

	for g := 1; g < W; g++ {
		s1, s2 := strand1Sets[g], strand2Sets[g]
		straight := A.IntersectCount(s1) + B.IntersectCount(s2)
		crossed := A.IntersectCount(s2) + B.IntersectCount(s1)

		var newA, newB *haploSet
		if straight >= crossed {
			newA, newB = A.Clone(), B.Clone()
			newA.IntersectWith(s1)
			newB.IntersectWith(s2)
		} else {
			newA, newB = A.Clone(), B.Clone()
			newA.IntersectWith(s2)
			newB.IntersectWith(s1)
		}

		if newA.Count() == 0 || newB.Count() == 0 {
			if err := closeRun(g, A, B); err != nil {
				return nil, err
			}
			runStart = g
			A, B = s1.Clone(), s2.Clone()
			continue
		}
		A, B = newA, newB
	}

	if err := closeRun(W, A, B); err != nil {
		return nil, err
	}
	return result, nil
}
