// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

import "runtime"

// Config holds the tunable options of the phasing/imputation
// pipeline. Zero-valued fields are resolved to their documented
// defaults by withDefaults.
type Config struct {
	// Width is the window size in markers. Default 2048.
	Width int

	// Impute, if true (the default), emits untyped markers in the
	// output. A nil pointer means "unset": withDefaults resolves it
	// to true regardless of whether the caller went through
	// DefaultConfig or built a Config{} literal directly.
	Impute *bool

	// DynamicProgramming selects the window-connector mode: true
	// for DP mode (C3.a), false for set-intersection mode (C3.b).
	// Default true. A nil pointer means "unset"; see Impute.
	DynamicProgramming *bool

	// MaxHaplotypes is the thinning threshold: windows with more
	// than this many unique haplotypes are thinned before the full
	// pair search runs. Default 2000.
	MaxHaplotypes int

	// ThinningFactor, when non-nil, sets the number of haplotypes
	// retained per individual per window before full search runs.
	// Only takes effect when a window's d exceeds MaxHaplotypes.
	ThinningFactor *int

	// ThinningScaleAlleleFreq weights the thinning score by
	// 1/altfreq when true. Default false.
	ThinningScaleAlleleFreq bool

	// Rescreen names the option of re-ranking the top-k coarse-score
	// candidates on observed (non-imputed) data only. Default false.
	// PairSearch does not read it; setting it does not change the
	// search.
	Rescreen bool

	// Lasso names the alternate large-window solver with parameter
	// r. Optional. PairSearch does not read it; no such solver is
	// run.
	Lasso *float64

	// MinTypedSNPs: windows with fewer typed markers than this
	// reuse the neighbouring window's chosen pair. Default 50.
	MinTypedSNPs int

	// Lambda is the DP switch-penalty weight, defaulted to 1.0. The
	// DP connector uses its own fixed weight of 1.0 (connectorLambda)
	// and does not read this field.
	Lambda float64

	// Concurrency bounds the number of goroutines used by each
	// parallel stage. Zero or negative means runtime.GOMAXPROCS(-1).
	Concurrency int
}

// DefaultConfig returns a Config populated with every documented
// default.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func boolPtr(b bool) *bool { return &b }

// impute resolves Impute to its effective value, defaulting to true.
func (c Config) impute() bool {
	return c.Impute == nil || *c.Impute
}

// dynamicProgramming resolves DynamicProgramming to its effective
// value, defaulting to true.
func (c Config) dynamicProgramming() bool {
	return c.DynamicProgramming == nil || *c.DynamicProgramming
}

func (c Config) withDefaults() Config {
	if c.Width == 0 {
		c.Width = 2048
	}
	if c.MaxHaplotypes == 0 {
		c.MaxHaplotypes = 2000
	}
	if c.MinTypedSNPs == 0 {
		c.MinTypedSNPs = 50
	}
	if c.Lambda == 0 {
		c.Lambda = 1.0
	}
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.GOMAXPROCS(-1)
	}
	// Impute and DynamicProgramming are *bool so a nil pointer (the
	// zero value of a directly-constructed Config{}) can be told apart
	// from an explicit false, and resolved to their documented true
	// default either way.
	if c.Impute == nil {
		c.Impute = boolPtr(true)
	}
	if c.DynamicProgramming == nil {
		c.DynamicProgramming = boolPtr(true)
	}
	return c
}

// validate checks shape invariants that must be caught at
// configuration time rather than mid-compute, per the error-handling
// design's treatment of EmptyWindow.
func (c Config) validate() error {
	if c.Width <= 0 {
		return newError(EmptyWindow, "width must be positive, got %d", c.Width)
	}
	if c.MaxHaplotypes <= 0 {
		return newError(EmptyWindow, "max_haplotypes must be positive, got %d", c.MaxHaplotypes)
	}
	if c.MinTypedSNPs < 0 {
		return newError(EmptyWindow, "min_typed_snps must be non-negative, got %d", c.MinTypedSNPs)
	}
	if c.ThinningFactor != nil && *c.ThinningFactor <= 0 {
		return newError(EmptyWindow, "thinning_factor must be positive when set, got %d", *c.ThinningFactor)
	}
	return nil
}
