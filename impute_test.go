// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

import "gopkg.in/check.v1"

type ImputeSuite struct{}

var _ = check.Suite(&ImputeSuite{})

func buildImputeFixture(c *check.C) (*Panel, Mosaic) {
	haps := [][]byte{
		{0, 1, 0, 1}, // typed marker 0: h1=0 h2=1 h3=0 h4=1
		{0, 1, 1, 0}, // typed marker 1
		{0, 1, 0, 1}, // typed marker 2
		{0, 1, 1, 0}, // typed marker 3
	}
	w, err := NewWindowFromHaplotypes(0, 3, haps, nil)
	c.Assert(err, check.IsNil)
	panel := &Panel{Pos: []int{100, 101, 102, 103}, Windows: []*Window{w}, D: 4, Width: 4}

	var m Mosaic
	m[0] = []Segment{{StartMarker: 0, WindowID: 0, HapLabel: 1}}
	m[1] = []Segment{
		{StartMarker: 0, WindowID: 0, HapLabel: 2},
		{StartMarker: 2, WindowID: 0, HapLabel: 3},
	}
	return panel, m
}

// TestSumDecomposition reproduces testable property 1: the imputed
// dosage at a reference marker equals H[r,lab1]+H[r,lab2] for the
// haplotype labels the covering segments name, with the second
// strand's breakpoint correctly switching the label at marker 2.
func (s *ImputeSuite) TestSumDecomposition(c *check.C) {
	panel, m := buildImputeFixture(c)

	a1, a2, err := Impute(panel, m, 0)
	c.Assert(err, check.IsNil)
	c.Check(a1, check.Equals, 0.0)
	c.Check(a2, check.Equals, 1.0)

	a1, a2, err = Impute(panel, m, 1)
	c.Assert(err, check.IsNil)
	c.Check(a1, check.Equals, 0.0)
	c.Check(a2, check.Equals, 1.0)

	a1, a2, err = Impute(panel, m, 2)
	c.Assert(err, check.IsNil)
	c.Check(a1, check.Equals, 0.0)
	c.Check(a2, check.Equals, 0.0)

	a1, a2, err = Impute(panel, m, 3)
	c.Assert(err, check.IsNil)
	c.Check(a1, check.Equals, 0.0)
	c.Check(a2, check.Equals, 1.0)
}

func (s *ImputeSuite) TestImputeOutOfRange(c *check.C) {
	panel, m := buildImputeFixture(c)
	_, _, err := Impute(panel, m, 4)
	c.Assert(err, check.NotNil)
	perr, ok := err.(*PhasingError)
	c.Assert(ok, check.Equals, true)
	c.Check(perr.Kind(), check.Equals, NumericalAnomaly)
}

// TestImputeIdempotent reproduces testable property 6: re-imputing the
// same marker from the same mosaic is deterministic.
func (s *ImputeSuite) TestImputeIdempotent(c *check.C) {
	panel, m := buildImputeFixture(c)
	a1, a2, err := Impute(panel, m, 2)
	c.Assert(err, check.IsNil)
	b1, b2, err := Impute(panel, m, 2)
	c.Assert(err, check.IsNil)
	c.Check(a1, check.Equals, b1)
	c.Check(a2, check.Equals, b2)
}

func (s *ImputeSuite) TestImputeDosagePrefersObserved(c *check.C) {
	panel, m := buildImputeFixture(c)
	X := &GenotypeMatrix{
		Data:     []int8{2, missingGenotype},
		N:        1,
		Pos:      []int{100, 102},
		SampleID: []string{"sample0"},
		XtoHIdx:  []int{0, 2},
	}

	dosage, err := ImputeDosage(panel, m, X, 0, 0)
	c.Assert(err, check.IsNil)
	c.Check(dosage, check.Equals, 2.0) // observed value wins over imputed sum (1.0)
}

func (s *ImputeSuite) TestImputeDosageFallsBackWhenMissing(c *check.C) {
	panel, m := buildImputeFixture(c)
	X := &GenotypeMatrix{
		Data:     []int8{2, missingGenotype},
		N:        1,
		Pos:      []int{100, 102},
		SampleID: []string{"sample0"},
		XtoHIdx:  []int{0, 2},
	}

	dosage, err := ImputeDosage(panel, m, X, 0, 2)
	c.Assert(err, check.IsNil)
	c.Check(dosage, check.Equals, 0.0) // typed but missing: fall back to Impute's sum
}

func (s *ImputeSuite) TestImputeDosageUntypedMarker(c *check.C) {
	panel, m := buildImputeFixture(c)
	X := &GenotypeMatrix{
		Data:     []int8{2, missingGenotype},
		N:        1,
		Pos:      []int{100, 102},
		SampleID: []string{"sample0"},
		XtoHIdx:  []int{0, 2},
	}

	dosage, err := ImputeDosage(panel, m, X, 0, 1)
	c.Assert(err, check.IsNil)
	c.Check(dosage, check.Equals, 1.0)
}
