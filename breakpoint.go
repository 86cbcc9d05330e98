// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

// spanAllele returns the allele of full-panel haplotype h at span
// offset u (0-based), where the span is prevW's typed markers
// followed by curW's.
func spanAllele(prevW, curW *Window, h, u int) float64 {
	if u < prevW.NumTyped {
		return prevW.allele(u, h)
	}
	return curW.allele(u-prevW.NumTyped, h)
}

// mismatchCurve returns, for a strand constant at allele s1 paired
// with a switching allele (a for u<t, b for u>=t), the per-position
// err(t) curve for t in 0..L via the incremental update of §4.4:
// err(0) is "entire span uses b"; moving t one step right flips
// position t-1 from the b-term to the a-term.
func mismatchCurve(prevW, curW *Window, s1, a, b int, X []float64, missing []bool, L int) []int {
	errAt := make([]int, L+1)
	errCount := 0
	for u := 0; u < L; u++ {
		if !missing[u] && X[u] != spanAllele(prevW, curW, s1, u)+spanAllele(prevW, curW, b, u) {
			errCount++
		}
	}
	errAt[0] = errCount
	for t := 1; t <= L; t++ {
		u := t - 1
		if !missing[u] {
			if X[u] != spanAllele(prevW, curW, s1, u)+spanAllele(prevW, curW, b, u) {
				errCount--
			}
			if X[u] != spanAllele(prevW, curW, s1, u)+spanAllele(prevW, curW, a, u) {
				errCount++
			}
		}
		errAt[t] = errCount
	}
	return errAt
}

// argminCurve returns the smallest t minimizing errAt, ties broken by
// the smallest t.
func argminCurve(errAt []int) (t int, best int) {
	best = errAt[0]
	t = 0
	for i := 1; i < len(errAt); i++ {
		if errAt[i] < best {
			best, t = errAt[i], i
		}
	}
	return t, best
}

// search1D implements §4.4's 1-d search: one strand fixed at s1, the
// other switching from a (old) to b (new) at offset t* in 0..L. t*=0,
// meaning the switch already happened before this span, is normalized
// to -1 (no breakpoint located within the span).
func search1D(prevW, curW *Window, s1, a, b int, X []float64, missing []bool, L int) int {
	curve := mismatchCurve(prevW, curW, s1, a, b, X, missing, L)
	t, _ := argminCurve(curve)
	if t == 0 {
		return -1
	}
	return t
}

// BreakpointSearch implements C4: given the previous window's chosen
// pair and the current window's, resolve strand orientation and
// locate at most one breakpoint per strand over the combined typed
// span of the two windows (X, missing, length L = prevW.NumTyped +
// curW.NumTyped). It returns the pair as it should be recorded for
// the current window (strand order matching prev when one strand's
// label carries over or both change; when prev and cur hold the same
// two labels, cur is returned in its own order) and
// the breakpoint offsets t1 (resolved.H1's strand) and t2
// (resolved.H2's strand), each -1 if that strand has no breakpoint in
// this span.
func BreakpointSearch(prev, cur fullPair, prevW, curW *Window, X []float64, missing []bool) (resolved fullPair, t1, t2 int, err error) {
	L := prevW.NumTyped + curW.NumTyped
	if len(X) != L || len(missing) != L {
		return fullPair{}, 0, 0, newError(BreakpointInvariantViolation, "BreakpointSearch: span length %d, want %d", len(X), L)
	}

	sameSet := (prev.H1 == cur.H1 && prev.H2 == cur.H2) || (prev.H1 == cur.H2 && prev.H2 == cur.H1)
	if sameSet {
		return cur, -1, -1, nil
	}

	switch {
	case prev.H1 == cur.H1 && prev.H2 != cur.H2:
		t := search1D(prevW, curW, prev.H1, prev.H2, cur.H2, X, missing, L)
		return fullPair{cur.H1, cur.H2}, -1, t, nil
	case prev.H1 == cur.H2 && prev.H2 != cur.H1:
		t := search1D(prevW, curW, prev.H1, prev.H2, cur.H1, X, missing, L)
		return fullPair{cur.H2, cur.H1}, -1, t, nil
	case prev.H2 == cur.H1 && prev.H1 != cur.H2:
		t := search1D(prevW, curW, prev.H2, prev.H1, cur.H2, X, missing, L)
		return fullPair{cur.H2, cur.H1}, t, -1, nil
	case prev.H2 == cur.H2 && prev.H1 != cur.H1:
		t := search1D(prevW, curW, prev.H2, prev.H1, cur.H1, X, missing, L)
		return fullPair{cur.H1, cur.H2}, t, -1, nil
	}

	// Both strands differ: 2-d search over the two pairings.
	return breakpointSearch2D(prev, cur, prevW, curW, X, missing, L)
}

// switchAllele materializes one strand's allele over the span, given
// it switches from a (u<t) to b (u>=t).
func switchAllele(prevW, curW *Window, a, b, t, L int) []float64 {
	out := make([]float64, L)
	for u := 0; u < L; u++ {
		if u < t {
			out[u] = spanAllele(prevW, curW, a, u)
		} else {
			out[u] = spanAllele(prevW, curW, b, u)
		}
	}
	return out
}

// curveGivenOther is mismatchCurve generalized to an arbitrary (already
// fixed) contribution from the other strand, rather than a single
// haplotype index: genotype dosage doesn't decompose additively per
// strand, so the other strand's chosen allele at each position must be
// folded into the comparison directly.
func curveGivenOther(prevW, curW *Window, a, b int, otherAllele, X []float64, missing []bool, L int) []int {
	errAt := make([]int, L+1)
	errCount := 0
	for u := 0; u < L; u++ {
		if !missing[u] && X[u] != otherAllele[u]+spanAllele(prevW, curW, b, u) {
			errCount++
		}
	}
	errAt[0] = errCount
	for t := 1; t <= L; t++ {
		u := t - 1
		if !missing[u] {
			if X[u] != otherAllele[u]+spanAllele(prevW, curW, b, u) {
				errCount--
			}
			if X[u] != otherAllele[u]+spanAllele(prevW, curW, a, u) {
				errCount++
			}
		}
		errAt[t] = errCount
	}
	return errAt
}

// breakpointSearch2D handles the case where both strands' labels
// change across the window boundary: it runs the full (t1,t2) joint
// search of §4.4 for both the straight pairing (prev.H1->cur.H1,
// prev.H2->cur.H2) and the crossed one (prev.H1->cur.H2,
// prev.H2->cur.H1), and keeps whichever pairing has the lower error.
// For a fixed t2, strand 2's allele at each position is known, so
// strand 1's optimal t1 is found by one incremental scan; looping
// that over all t2 in 0..L gives the O(L^2) joint optimum without an
// O(L^2) table of independent per-strand sums.
func breakpointSearch2D(prev, cur fullPair, prevW, curW *Window, X []float64, missing []bool, L int) (fullPair, int, int, error) {
	type result struct {
		t1, t2, err int
	}
	search := func(a1, b1, a2, b2 int) result {
		best := result{0, 0, -1}
		for t2 := 0; t2 <= L; t2++ {
			other := switchAllele(prevW, curW, a2, b2, t2, L)
			curve := curveGivenOther(prevW, curW, a1, b1, other, X, missing, L)
			t1, e := argminCurve(curve)
			if best.err == -1 || e < best.err {
				best = result{t1, t2, e}
			}
		}
		return best
	}

	straight := search(prev.H1, cur.H1, prev.H2, cur.H2)
	crossed := search(prev.H1, cur.H2, prev.H2, cur.H1)

	norm := func(t int) int {
		if t == 0 {
			return -1
		}
		return t
	}

	if straight.err <= crossed.err {
		return fullPair{cur.H1, cur.H2}, norm(straight.t1), norm(straight.t2), nil
	}
	return fullPair{cur.H2, cur.H1}, norm(crossed.t1), norm(crossed.t2), nil
}
