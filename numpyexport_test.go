// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

import (
	"os"

	"github.com/kshedden/gonpy"
	"gopkg.in/check.v1"
)

type NumpyExportSuite struct{}

var _ = check.Suite(&NumpyExportSuite{})

func (s *NumpyExportSuite) TestNumpyExportRoundTrip(c *check.C) {
	path := c.MkDir() + "/dosage.npy"
	dosage := [][]float64{{0, 1, 2}, {2, 1, 0}}
	c.Assert(NumpyExport(path, dosage), check.IsNil)

	f, err := os.Open(path)
	c.Assert(err, check.IsNil)
	defer f.Close()
	npy, err := gonpy.NewReader(f)
	c.Assert(err, check.IsNil)
	c.Check(npy.Shape, check.DeepEquals, []int{2, 3})
	got, err := npy.GetFloat64()
	c.Assert(err, check.IsNil)
	c.Check(got, check.DeepEquals, []float64{0, 1, 2, 2, 1, 0})
}

func (s *NumpyExportSuite) TestNumpyExportPhasedRoundTrip(c *check.C) {
	path := c.MkDir() + "/phased.npy"
	phased := [][]int8{{1, 2, 1, 2}, {2, 2, 1, 1}}
	c.Assert(NumpyExportPhased(path, phased), check.IsNil)

	f, err := os.Open(path)
	c.Assert(err, check.IsNil)
	defer f.Close()
	npy, err := gonpy.NewReader(f)
	c.Assert(err, check.IsNil)
	c.Check(npy.Shape, check.DeepEquals, []int{2, 4})
	got, err := npy.GetInt8()
	c.Assert(err, check.IsNil)
	c.Check(got, check.DeepEquals, []int8{1, 2, 1, 2, 2, 2, 1, 1})
}

func (s *NumpyExportSuite) TestNumpyExportEmpty(c *check.C) {
	path := c.MkDir() + "/empty.npy"
	c.Assert(NumpyExport(path, nil), check.IsNil)

	f, err := os.Open(path)
	c.Assert(err, check.IsNil)
	defer f.Close()
	npy, err := gonpy.NewReader(f)
	c.Assert(err, check.IsNil)
	c.Check(npy.Shape, check.DeepEquals, []int{0, 0})
}
