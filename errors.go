// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

import "fmt"

// ErrorKind discriminates the error categories defined in the
// pipeline's error-handling design: some are fatal and should abort
// the run, others are recoverable and only need to be counted.
type ErrorKind int

const (
	// EmptyWindow: p=0 or d=0 in a window. Fatal; should be caught
	// at configuration time, not during compute.
	EmptyWindow ErrorKind = iota
	// InvalidGenotype: a non-missing target entry outside {0,1,2}.
	// Fatal; raised at ingestion.
	InvalidGenotype
	// PositionMismatch: a typed position is absent from the
	// reference panel. Recoverable; the position is skipped.
	PositionMismatch
	// NumericalAnomaly: NaN or infinity observed in Xw or Hw.
	// Fatal; indicates a bug.
	NumericalAnomaly
	// InsufficientTypedMarkers: window has fewer than
	// Config.MinTypedSNPs typed markers. Recoverable; triggers the
	// copy-from-neighbour policy.
	InsufficientTypedMarkers
	// BreakpointInvariantViolation: a breakpoint marker fell
	// outside the expected two-window span. Fatal; implies a bug.
	BreakpointInvariantViolation
)

func (k ErrorKind) String() string {
	switch k {
	case EmptyWindow:
		return "EmptyWindow"
	case InvalidGenotype:
		return "InvalidGenotype"
	case PositionMismatch:
		return "PositionMismatch"
	case NumericalAnomaly:
		return "NumericalAnomaly"
	case InsufficientTypedMarkers:
		return "InsufficientTypedMarkers"
	case BreakpointInvariantViolation:
		return "BreakpointInvariantViolation"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Fatal reports whether errors of this kind must abort the run,
// per the propagation policy in the error-handling design: numerical
// anomalies and invariant violations fail fast, data-shape mismatches
// fail at ingestion, and the remaining two kinds degrade gracefully.
func (k ErrorKind) Fatal() bool {
	switch k {
	case PositionMismatch, InsufficientTypedMarkers:
		return false
	default:
		return true
	}
}

// PhasingError is the error type this package uses for the kinds
// above. Callers branch on Kind() rather than matching message strings.
// File and encoder errors from NumpyExport, context errors from Run, and
// NewWindowFromHaplotypes's ragged-matrix error are returned as plain
// errors.
type PhasingError struct {
	kind    ErrorKind
	message string
	wrapped error
}

func newError(kind ErrorKind, format string, args ...interface{}) *PhasingError {
	return &PhasingError{kind: kind, message: fmt.Sprintf(format, args...)}
}

func (e *PhasingError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *PhasingError) Unwrap() error { return e.wrapped }

func (e *PhasingError) Kind() ErrorKind { return e.kind }
