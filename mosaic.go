// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

// mosaicBuilder accumulates one individual's two-strand mosaic
// append-only, enforcing §4.5's invariant that the last recorded
// segment on either strand never regresses in window id or start
// marker.
type mosaicBuilder struct {
	strands [2][]Segment
}

func newMosaicBuilder(firstMarker, window, hap1, hap2 int) *mosaicBuilder {
	b := &mosaicBuilder{}
	b.strands[0] = append(b.strands[0], Segment{StartMarker: firstMarker, WindowID: window, HapLabel: hap1})
	b.strands[1] = append(b.strands[1], Segment{StartMarker: firstMarker, WindowID: window, HapLabel: hap2})
	return b
}

// append records a new segment on strand s (0 or 1) starting at
// startMarker with the given window id and haplotype label. It is a
// no-op when the label is unchanged from the strand's current
// segment, so the builder never emits back-to-back duplicates.
func (b *mosaicBuilder) append(s, startMarker, window, hapLabel int) error {
	last := &b.strands[s][len(b.strands[s])-1]
	if window < last.WindowID {
		return newError(BreakpointInvariantViolation, "mosaic: strand %d window id regressed %d -> %d", s, last.WindowID, window)
	}
	if startMarker < last.StartMarker {
		return newError(BreakpointInvariantViolation, "mosaic: strand %d start marker regressed %d -> %d", s, last.StartMarker, startMarker)
	}
	if hapLabel == last.HapLabel {
		return nil
	}
	b.strands[s] = append(b.strands[s], Segment{StartMarker: startMarker, WindowID: window, HapLabel: hapLabel})
	return nil
}

// finish returns the completed mosaic, collapsing any adjacent
// segments that ended up sharing a haplotype label (append already
// prevents consecutive duplicates, but a rewritten late segment from
// the breakpoint-persistence logic can reintroduce one).
func (b *mosaicBuilder) finish() Mosaic {
	var m Mosaic
	for s := 0; s < 2; s++ {
		segs := b.strands[s]
		collapsed := make([]Segment, 0, len(segs))
		for _, seg := range segs {
			if n := len(collapsed); n > 0 && collapsed[n-1].HapLabel == seg.HapLabel {
				continue
			}
			collapsed = append(collapsed, seg)
		}
		m[s] = collapsed
	}
	return m
}

// persistBreakpoint implements §4.4's "persisting a breakpoint"
// contract for one strand: t is the offset returned by
// BreakpointSearch for this strand (into the span starting at
// prevW's first typed marker), hapPrev/hapCurr are the labels before
// and after the switch, and curWindowFirstMarker is curW's first
// reference marker. spanStart (the typed-marker row where the span
// begins) and xToHIdx let t be converted to a reference-marker index.
func (b *mosaicBuilder) persistBreakpoint(s, window int, hapPrev, hapCurr, t, L, spanStart int, xToHIdx []int, curWindowFirstMarker int) error {
	switch {
	case t < 0:
		// No breakpoint located in this span: the switch already
		// happened earlier, so window g is entirely hapCurr.
		return b.append(s, curWindowFirstMarker, window, hapCurr)
	case t == L:
		// Previous haplotype fully covers window g.
		return b.append(s, curWindowFirstMarker, window, hapPrev)
	default:
		bkptRef := xToHIdx[spanStart+t]
		if bkptRef >= curWindowFirstMarker {
			// Breakpoint falls inside window g: two segments, the
			// tail of hapPrev then hapCurr from bkptRef.
			if err := b.append(s, curWindowFirstMarker, window, hapPrev); err != nil {
				return err
			}
			return b.append(s, bkptRef, window, hapCurr)
		}
		// The new haplotype actually started before window g: rewrite
		// so window g-1 gets a late segment with hapCurr, and window
		// g starts with hapCurr from its own first marker.
		if err := b.append(s, bkptRef, window-1, hapCurr); err != nil {
			return err
		}
		return b.append(s, curWindowFirstMarker, window, hapCurr)
	}
}
