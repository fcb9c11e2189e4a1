// Copyright © 2023-2026 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"bytes"
	"fmt"
	"image/color"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/shenwei356/maligner/maligner/dp"
	"github.com/shenwei356/maligner/maligner/maps"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// AlignConfig contains options of aligning queries to a set of references.
type AlignConfig struct {
	Opts   *dp.AlignOptions
	Method dp.FillMethod

	// selection
	SelectAll     bool // try all seeds instead of the seed-based greedy selection
	MaxAlignments int  // output at most this number of alignments per query, 0 for all

	// m-scores
	MaxAlignmentsMAD int // number of best alignments for computing the median and MAD
	MinMAD           float64

	// filters
	MaxScorePerInnerChunk float64 // 0 for no limit
	MinQueryFrags         int
	MaxQueryFrags         int // 0 for no limit
	OnlyForward           bool

	// references are circularized, and so are permuted ones
	RefIsCircular bool

	Threads int
}

// AlignResult is the result of a query.
type AlignResult struct {
	Query *maps.QueryMap

	Skipped    bool // the query is filtered out by the number of fragments
	Alignments []*dp.Alignment
	MAD        float64

	Null []float64 // scores of alignments to permuted references, sorted
}

// Aligner aligns queries to references.
type Aligner struct {
	cfg  *AlignConfig
	refs []*maps.RefMap

	permuted [][]int // fragments of permuted references for computing p-values
}

// NewAligner creates an Aligner. Reference maps are wrapped once and shared by all queries.
func NewAligner(refs []*maps.Map, cfg *AlignConfig) (*Aligner, error) {
	if cfg.Opts == nil {
		return nil, errors.New("alignment options not given")
	}
	if err := cfg.Opts.Validate(); err != nil {
		return nil, err
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}
	return &Aligner{cfg: cfg, refs: maps.NewRefMaps(refs, cfg.Opts, cfg.RefIsCircular)}, nil
}

// SetPermutedReferences sets references for the permutation test.
// They should be made from fragments of the original references, not the circularized ones.
func (a *Aligner) SetPermutedReferences(permuted []*maps.Map) {
	a.permuted = maps.FragsOf(permuted)
	if a.cfg.RefIsCircular {
		for i, frags := range a.permuted {
			a.permuted[i] = maps.CircularizedFrags(frags)
		}
	}
}

// NumRefs returns the number of references.
func (a *Aligner) NumRefs() int { return len(a.refs) }

func (a *Aligner) skip(m *maps.Map) bool {
	n := m.NumFrags()
	return n < a.cfg.MinQueryFrags || (a.cfg.MaxQueryFrags > 0 && n > a.cfg.MaxQueryFrags)
}

func (a *Aligner) pass(aln *dp.Alignment) bool {
	if !aln.PassMissRates(a.cfg.Opts) {
		return false
	}
	if a.cfg.MaxScorePerInnerChunk > 0 && aln.ScorePerInnerChunk > a.cfg.MaxScorePerInnerChunk {
		return false
	}
	return true
}

// Align aligns a query map, in both orientations, to all references.
// References are aligned concurrently, each task with its own matrix from the pool.
// Alignments passing the filters are sorted by rescaled scores,
// assigned with m-scores, and p-values if permuted references are given.
func (a *Aligner) Align(m *maps.Map) (*AlignResult, error) {
	cfg := a.cfg
	q := maps.NewQueryMap(m, cfg.Opts)
	result := &AlignResult{Query: q}
	if a.skip(m) {
		result.Skipped = true
		return result, nil
	}

	orientations := []bool{true, false}
	if cfg.OnlyForward {
		orientations = orientations[:1]
	}
	precomputed := cfg.Method == dp.FillPrecomputedSizing

	type refResult struct {
		alns []*dp.Alignment
		err  error
	}
	results := make([]refResult, len(a.refs)*len(orientations))

	var wg sync.WaitGroup
	tokens := make(chan int, cfg.Threads)
	var k int
	for _, ref := range a.refs {
		for _, forward := range orientations {
			tokens <- 1
			wg.Add(1)
			go func(k int, ref *maps.RefMap, forward bool) {
				defer func() {
					wg.Done()
					<-tokens
				}()

				mat := dp.GetScoreMatrix(dp.RowMajor)
				defer dp.RecycleScoreMatrix(mat)

				t := ref.Task(q, forward, true, cfg.Opts, mat, precomputed)
				if err := dp.Fill(t, cfg.Method); err != nil {
					results[k].err = errors.Wrapf(err, "aligning %s to %s", m.Name, ref.Name)
					return
				}

				var alns []*dp.Alignment
				if cfg.SelectAll {
					alns = dp.SelectAllAlignments(t)
				} else {
					alns = dp.SelectAlignments(t)
				}

				kept := alns[:0]
				for _, aln := range alns {
					if !ref.IsDuplicate(aln) && a.pass(aln) {
						kept = append(kept, aln)
					}
				}
				results[k].alns = kept
			}(k, ref, forward)
			k++
		}
	}
	wg.Wait()

	var n int
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		n += len(r.alns)
	}
	alns := make([]*dp.Alignment, 0, n)
	for _, r := range results {
		alns = append(alns, r.alns...)
	}

	dp.SortAlignments(alns, true)
	result.MAD = dp.MScores(alns, cfg.MaxAlignmentsMAD, cfg.MinMAD)

	if len(a.permuted) > 0 && len(alns) > 0 {
		null, err := dp.NullDistribution(m.Frags, a.permuted, cfg.Opts, cfg.Method, cfg.Threads)
		if err != nil {
			return nil, errors.Wrapf(err, "permutation test of %s", m.Name)
		}
		result.Null = null
		if len(null) > 0 {
			if err = dp.AssignPValues(null, alns); err != nil {
				return nil, err
			}
		}
	}

	if cfg.MaxAlignments > 0 && len(alns) > cfg.MaxAlignments {
		alns = alns[:cfg.MaxAlignments]
	}
	result.Alignments = alns
	return result, nil
}

// FormatTo writes alignments of the result, one per line.
func (r *AlignResult) FormatTo(buf *bytes.Buffer) {
	for _, aln := range r.Alignments {
		aln.FormatTo(buf)
		buf.WriteByte('\n')
	}
}

// plotNullDistribution plots the histogram of null scores of a query,
// with a vertical line marking the score of the best alignment.
func plotNullDistribution(r *AlignResult, outDir string) error {
	if len(r.Null) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %d permuted references", r.Query.Name, len(r.Null))
	p.X.Label.Text = "rescaled score"
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(r.Null), 50)
	if err != nil {
		return errors.Wrapf(err, "plotting null distribution of %s", r.Query.Name)
	}
	h.FillColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	p.Add(h)

	if len(r.Alignments) > 0 {
		var ymax float64
		for _, b := range h.Bins {
			if b.Weight > ymax {
				ymax = b.Weight
			}
		}
		s := r.Alignments[0].TotalRescaledScore
		l, err := plotter.NewLine(plotter.XYs{{X: s, Y: 0}, {X: s, Y: ymax}})
		if err != nil {
			return errors.Wrapf(err, "plotting null distribution of %s", r.Query.Name)
		}
		l.LineStyle.Width = vg.Points(1.5)
		l.LineStyle.Color = color.RGBA{R: 220, A: 255}
		p.Add(l)
	}

	file := filepath.Join(outDir, fileNameOf(r.Query.Name)+".png")
	return errors.Wrapf(p.Save(5*vg.Inch, 4*vg.Inch, file), "saving plot: %s", file)
}

// fileNameOf replaces characters not safe in file names.
func fileNameOf(name string) string {
	b := []byte(name)
	for i, c := range b {
		switch c {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			b[i] = '_'
		}
	}
	return string(b)
}
