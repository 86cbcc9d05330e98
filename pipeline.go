// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package phaser

import (
	"context"
	"math"
	"sort"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// StageTiming records one pipeline stage's wall-clock cost.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Summary reports per-run statistics alongside the phased output.
type Summary struct {
	Stages                   []StageTiming
	Windows, Individuals     int
	PositionMismatch         int64
	InsufficientTypedMarkers int64
}

// Pipeline wires C1-C6 together over a reference Panel and a target
// GenotypeMatrix.
type Pipeline struct {
	Panel  *Panel
	X      *GenotypeMatrix
	Config Config

	progress int64
	scratch  *scratchPool
}

// NewPipeline builds a Pipeline, aligning X's typed markers against
// panel windows (see AssignTypedRows) and resolving cfg's defaults.
func NewPipeline(panel *Panel, X *GenotypeMatrix, cfg Config) (*Pipeline, *Summary, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}
	mismatches := AssignTypedRows(panel, X.Pos)
	return &Pipeline{Panel: panel, X: X, Config: cfg, scratch: newScratchPool()},
		&Summary{Windows: len(panel.Windows), Individuals: X.N, PositionMismatch: int64(mismatches)}, nil
}

// Progress returns the number of windows processed so far in the
// current or most recent Run's PairSearch phase.
func (p *Pipeline) Progress() int64 { return atomic.LoadInt64(&p.progress) }

// AssignTypedRows matches each window's typed-marker span to a
// contiguous block of rows in a sorted typedPos slice, setting
// w.XRowStart accordingly. Windows whose NumTyped disagrees with the
// number of typedPos entries actually falling in [RefStart,RefEnd]
// are left with their best-effort XRowStart and the discrepancy is
// counted as a PositionMismatch (recoverable: the window simply
// treats its own haplotype count as authoritative).
func AssignTypedRows(panel *Panel, typedPos []int) (mismatches int) {
	for _, w := range panel.Windows {
		lo := sort.SearchInts(typedPos, panel.Pos[w.RefStart])
		hi := sort.SearchInts(typedPos, panel.Pos[w.RefEnd]+1)
		w.XRowStart = lo
		if got := hi - lo; got != w.NumTyped {
			mismatches += abs(got - w.NumTyped)
		}
	}
	return mismatches
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// prepareWindowMatrices builds the p×n target submatrix Xw (missing
// entries filled per §4.1) and the window's p×d haplotype matrix Hw.
// Hw is always the true 0/1 matrix: Config.ThinningScaleAlleleFreq's
// 1/altfreq weighting only biases pairSearchThinned's coarse-ranking
// step (see PairSearch), never the exact reconstruction-error search.
func prepareWindowMatrices(w *Window, X *GenotypeMatrix, cfg Config) (Xw, Hw *mat.Dense, err error) {
	p := w.NumTyped
	n := X.N
	Xw = mat.NewDense(p, n, nil)
	for r := 0; r < p; r++ {
		row := w.XRowStart + r
		for i := 0; i < n; i++ {
			v := X.at(row, i)
			if v == missingGenotype {
				Xw.Set(r, i, math.NaN())
			} else {
				Xw.Set(r, i, float64(v))
			}
		}
	}
	if err := fillMissingGenotypes(Xw, w.AltFreq); err != nil {
		return nil, nil, err
	}

	Hw = w.UniqueH.Dense()
	return Xw, Hw, nil
}

// buildSpan gathers individual i's observed dosage (and missingness)
// across the typed markers of prevW followed by curW, for C4's input.
// valsBuf/missBuf are reused when they already have enough capacity
// (see scratchPool), avoiding a pair of allocations per window per
// individual.
func buildSpan(prevW, curW *Window, X *GenotypeMatrix, i int, valsBuf []float64, missBuf []bool) ([]float64, []bool) {
	L := prevW.NumTyped + curW.NumTyped
	vals := growFloat64(valsBuf, L)
	missing := growBool(missBuf, L)
	u := 0
	for r := 0; r < prevW.NumTyped; r++ {
		v := X.at(prevW.XRowStart+r, i)
		missing[u] = v == missingGenotype
		if !missing[u] {
			vals[u] = float64(v)
		}
		u++
	}
	for r := 0; r < curW.NumTyped; r++ {
		v := X.at(curW.XRowStart+r, i)
		missing[u] = v == missingGenotype
		if !missing[u] {
			vals[u] = float64(v)
		}
		u++
	}
	return vals, missing
}

// growFloat64 returns a length-n slice, reusing buf's backing array
// when its capacity already covers n.
func growFloat64(buf []float64, n int) []float64 {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// growBool is growFloat64 for []bool.
func growBool(buf []bool, n int) []bool {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]bool, n)
}

// Run executes the full pipeline: a per-window fan-out for PairSearch
// + RedundantExpansion, followed by a per-individual fan-out for
// WindowConnector + BreakpointSearch + MosaicAssembler, mirroring the
// teacher's window-loop-then-individual-loop two-phase structure.
func (p *Pipeline) Run(ctx context.Context) ([]PhaseResult, *Summary, error) {
	cfg := p.Config
	W := len(p.Panel.Windows)
	n := p.X.N
	d := p.Panel.D
	summary := &Summary{Windows: W, Individuals: n}
	atomic.StoreInt64(&p.progress, 0)

	// Phase A: per-window pair search + redundant expansion.
	t0 := time.Now()
	perWindowPairs := make([][][]fullPair, W) // DP mode: [g][i] -> candidate list Rg
	perWindowSet1 := make([][]*haploSet, W)   // intersection mode: [g][i]
	perWindowSet2 := make([][]*haploSet, W)
	skipped := make([]bool, W)

	thr := &throttle{Max: cfg.Concurrency}
	for g, w := range p.Panel.Windows {
		g, w := g, w
		thr.Go(func() error {
			defer atomic.AddInt64(&p.progress, 1)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if w.NumTyped < cfg.MinTypedSNPs {
				atomic.AddInt64(&summary.InsufficientTypedMarkers, 1)
				skipped[g] = true
				return nil
			}
			Xw, Hw, err := prepareWindowMatrices(w, p.X, cfg)
			if err != nil {
				return err
			}
			res, err := PairSearch(Xw, Hw, w.AltFreq, cfg)
			if err != nil {
				return err
			}
			if cfg.dynamicProgramming() {
				perWindowPairs[g] = make([][]fullPair, n)
				for i := 0; i < n; i++ {
					perWindowPairs[g][i] = RedundantExpansion(w, res.J[i], res.K[i])
				}
			} else {
				perWindowSet1[g] = make([]*haploSet, n)
				perWindowSet2[g] = make([]*haploSet, n)
				for i := 0; i < n; i++ {
					perWindowSet1[g][i], perWindowSet2[g][i] = RedundantExpansionBitset(w, res.J[i], res.K[i], d)
				}
			}
			return nil
		})
	}
	if err := thr.Wait(); err != nil {
		return nil, nil, err
	}

	// Windows below Config.MinTypedSNPs carry no signal of their own;
	// per the config's documented policy they reuse the nearest
	// already-computed neighbour's candidates wholesale.
	for g := 0; g < W; g++ {
		if !skipped[g] {
			continue
		}
		src := g - 1
		if src < 0 {
			for src = g + 1; src < W && skipped[src]; src++ {
			}
		}
		if src < 0 || src >= W {
			continue
		}
		perWindowPairs[g] = perWindowPairs[src]
		perWindowSet1[g] = perWindowSet1[src]
		perWindowSet2[g] = perWindowSet2[src]
	}
	summary.Stages = append(summary.Stages, StageTiming{"pairsearch+redundant", time.Since(t0)})

	// Phase B: per-individual window connection, breakpoint search,
	// and mosaic assembly.
	t1 := time.Now()
	results := make([]PhaseResult, n)
	thr2 := &throttle{Max: cfg.Concurrency}
	for i := 0; i < n; i++ {
		i := i
		thr2.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			mosaic, err := p.connectOne(cfg, perWindowPairs, perWindowSet1, perWindowSet2, i)
			if err != nil {
				return err
			}
			res := PhaseResult{SampleID: idOrIndex(p.X, i), Mosaic: mosaic}
			if cfg.impute() {
				phased, err := imputeAll(p.Panel, mosaic)
				if err != nil {
					return err
				}
				res.Phased = phased
			}
			results[i] = res
			return nil
		})
	}
	if err := thr2.Wait(); err != nil {
		return nil, nil, err
	}
	summary.Stages = append(summary.Stages, StageTiming{"connect+breakpoint+mosaic", time.Since(t1)})

	log.WithFields(log.Fields{"windows": W, "individuals": n}).Debug("phasing pipeline complete")
	return results, summary, nil
}

func idOrIndex(X *GenotypeMatrix, i int) string {
	if i < len(X.SampleID) {
		return X.SampleID[i]
	}
	return ""
}

// connectOne runs C3-C5 for one individual across all windows, using a
// pooled scratch buffer (see scratchPool) for its per-individual
// working slices so a fan-out over many individuals doesn't allocate
// a fresh candidate/span buffer set per task.
func (p *Pipeline) connectOne(cfg Config, perWindowPairs [][][]fullPair, set1, set2 [][]*haploSet, i int) (Mosaic, error) {
	W := len(p.Panel.Windows)
	scratch := p.scratch.get()
	defer p.scratch.put(scratch)

	var path []fullPair
	var err error
	if cfg.dynamicProgramming() {
		candidates := scratch.candidates
		for g := 0; g < W; g++ {
			candidates = append(candidates, perWindowPairs[g][i])
		}
		scratch.candidates = candidates
		path, err = ConnectWindowsDP(candidates)
	} else {
		s1, s2 := scratch.set1, scratch.set2
		for g := 0; g < W; g++ {
			s1 = append(s1, set1[g][i])
			s2 = append(s2, set2[g][i])
		}
		scratch.set1, scratch.set2 = s1, s2
		path, err = ConnectWindowsIntersection(s1, s2)
	}
	if err != nil {
		return Mosaic{}, err
	}

	w0 := p.Panel.Windows[0]
	builder := newMosaicBuilder(w0.RefStart, 0, path[0].H1, path[0].H2)
	for g := 1; g < W; g++ {
		prevW, curW := p.Panel.Windows[g-1], p.Panel.Windows[g]
		prev, cur := path[g-1], path[g]
		X, missing := buildSpan(prevW, curW, p.X, i, scratch.X, scratch.missing)
		scratch.X, scratch.missing = X, missing
		resolved, t1, t2, err := BreakpointSearch(prev, cur, prevW, curW, X, missing)
		if err != nil {
			return Mosaic{}, err
		}
		curFirst := curW.RefStart
		if err := builder.persistBreakpoint(0, g, prev.H1, resolved.H1, t1, prevW.NumTyped+curW.NumTyped, prevW.XRowStart, p.X.XtoHIdx, curFirst); err != nil {
			return Mosaic{}, err
		}
		if err := builder.persistBreakpoint(1, g, prev.H2, resolved.H2, t2, prevW.NumTyped+curW.NumTyped, prevW.XRowStart, p.X.XtoHIdx, curFirst); err != nil {
			return Mosaic{}, err
		}
		path[g] = resolved
	}
	return builder.finish(), nil
}
