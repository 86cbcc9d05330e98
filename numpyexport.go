// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

import (
	"bufio"
	"io"
	"os"

	"github.com/kshedden/gonpy"
)

// nopCloser lets a *bufio.Writer satisfy io.WriteCloser: gonpy closes
// whatever it's given, so wrapping keeps our own Close/Flush sequence
// in charge of the underlying file.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NumpyExport implements C9: write an N×P dosage matrix to a .npy
// file, row-major, one row per sample.
func NumpyExport(path string, dosage [][]float64) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	defer f.Close()

	bufw := bufio.NewWriter(f)
	npw, err := gonpy.NewWriter(nopCloser{bufw})
	if err != nil {
		return err
	}

	rows := len(dosage)
	cols := 0
	if rows > 0 {
		cols = len(dosage[0])
	}
	flat := make([]float64, 0, rows*cols)
	for _, row := range dosage {
		flat = append(flat, row...)
	}
	npw.Shape = []int{rows, cols}
	if err := npw.WriteFloat64(flat); err != nil {
		return err
	}
	return bufw.Flush()
}

// NumpyExportPhased implements C9's phased variant: write a
// N×(2P) int8 matrix, each sample's two strands interleaved by
// marker, matching the teacher's exportnumpy one-hot-adjacent layout.
func NumpyExportPhased(path string, phased [][]int8) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	defer f.Close()

	bufw := bufio.NewWriter(f)
	npw, err := gonpy.NewWriter(nopCloser{bufw})
	if err != nil {
		return err
	}

	rows := len(phased)
	cols := 0
	if rows > 0 {
		cols = len(phased[0])
	}
	flat := make([]int8, 0, rows*cols)
	for _, row := range phased {
		flat = append(flat, row...)
	}
	npw.Shape = []int{rows, cols}
	if err := npw.WriteInt8(flat); err != nil {
		return err
	}
	return bufw.Flush()
}
