// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

import (
	"gonum.org/v1/gonum/mat"
	"gopkg.in/check.v1"
)

type BreakpointSuite struct{}

var _ = check.Suite(&BreakpointSuite{})

// rawWindow builds a Window straight from a dense p×d 0/1 matrix with
// an identity HapMap (no column de-duplication), so tests can place
// duplicate columns across full-haplotype labels without tripping
// NewWindowFromHaplotypes's content-hash collapsing.
func rawWindow(rows [][]float64, refStart, refEnd, xRowStart int) *Window {
	p := len(rows)
	d := len(rows[0])
	dense := mat.NewDense(p, d, nil)
	hapMap := make([]int, d)
	for i, row := range rows {
		for j, v := range row {
			dense.Set(i, j, v)
		}
	}
	for j := 0; j < d; j++ {
		hapMap[j] = j + 1
	}
	return &Window{
		UniqueH:   DenseHaplotypes{M: dense},
		HapMap:    hapMap,
		RefStart:  refStart,
		RefEnd:    refEnd,
		NumTyped:  p,
		XRowStart: xRowStart,
	}
}

func (s *BreakpointSuite) TestIdenticalSetsNoBreakpoint(c *check.C) {
	prevW := rawWindow([][]float64{{0, 1}}, 0, 0, 0)
	curW := rawWindow([][]float64{{0, 1}}, 1, 1, 1)
	X := []float64{1, 1}
	missing := []bool{false, false}

	resolved, t1, t2, err := BreakpointSearch(fullPair{1, 2}, fullPair{2, 1}, prevW, curW, X, missing)
	c.Assert(err, check.IsNil)
	c.Check(resolved, check.Equals, fullPair{2, 1})
	c.Check(t1, check.Equals, -1)
	c.Check(t2, check.Equals, -1)
}

// TestOneStrandBreakpoint reproduces a clean single-strand crossover:
// H1 is constant across the span, the second strand follows H2 ("a")
// for the first typed marker and switches to H3 ("b") from the second
// marker onward, giving a unique error-curve minimum at t=1.
func (s *BreakpointSuite) TestOneStrandBreakpoint(c *check.C) {
	// columns: 1=constant strand, 2="a" (old/prev allele), 3="b" (new/cur allele), 4=unused
	prevW := rawWindow([][]float64{
		{0, 1, 0, 1},
		{0, 0, 1, 1},
	}, 0, 1, 0)
	curW := rawWindow([][]float64{
		{0, 1, 0, 0},
		{0, 1, 0, 1},
	}, 2, 3, 2)

	X := []float64{1, 1, 0, 0}
	missing := []bool{false, false, false, false}

	resolved, t1, t2, err := BreakpointSearch(fullPair{1, 2}, fullPair{1, 3}, prevW, curW, X, missing)
	c.Assert(err, check.IsNil)
	c.Check(resolved, check.Equals, fullPair{1, 3})
	c.Check(t1, check.Equals, -1)
	c.Check(t2, check.Equals, 1)
}

// TestLengthMismatchErrors checks the span-length invariant guard.
func (s *BreakpointSuite) TestLengthMismatchErrors(c *check.C) {
	prevW := rawWindow([][]float64{{0, 1}}, 0, 0, 0)
	curW := rawWindow([][]float64{{0, 1}}, 1, 1, 1)
	_, _, _, err := BreakpointSearch(fullPair{1, 2}, fullPair{1, 2}, prevW, curW, []float64{1}, []bool{false})
	c.Assert(err, check.NotNil)
	perr, ok := err.(*PhasingError)
	c.Assert(ok, check.Equals, true)
	c.Check(perr.Kind(), check.Equals, BreakpointInvariantViolation)
}

// TestTwoStrandStraightWins sets up a span where both pairings reach
// zero error: the straight pairing (prev.H1->cur.H1, prev.H2->cur.H2)
// with H3+H4 over the whole span (t1=t2=0), and the crossed pairing
// with H4+H3 (also t1=t2=0). The tie goes to the straight pairing, and
// both zero offsets are reported as -1.
func (s *BreakpointSuite) TestTwoStrandStraightWins(c *check.C) {
	// prev pair (1,2), cur pair (3,4); prevW/curW each one typed row.
	prevW := rawWindow([][]float64{{0, 1, 1, 0}}, 0, 0, 0)
	curW := rawWindow([][]float64{{1, 0, 0, 1}}, 1, 1, 1)

	// Straight: strand1 1->3 constant-ish, strand2 2->4. Choose X so
	// that at t1=t2=1 (switch right at the window boundary) the
	// straight pairing reconstructs exactly: u0 uses prevW's (1,2),
	// u1 uses curW's (3,4).
	X := []float64{
		0 + 1, // prevW: H1=0, H2=1
		0 + 1, // curW: H3=0, H4=1
	}
	missing := []bool{false, false}

	resolved, t1, t2, err := BreakpointSearch(fullPair{1, 2}, fullPair{3, 4}, prevW, curW, X, missing)
	c.Assert(err, check.IsNil)
	c.Check(resolved, check.Equals, fullPair{3, 4})
	c.Check(t1, check.Equals, -1)
	c.Check(t2, check.Equals, -1)
}

func (s *BreakpointSuite) TestArgminCurveTieBreak(c *check.C) {
	t, best := argminCurve([]int{2, 1, 1, 3})
	c.Check(t, check.Equals, 1)
	c.Check(best, check.Equals, 1)
}
