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

package dp

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// FillMethod is the strategy of visiting cells when filling the score matrix.
// All methods produce the same scores and backpointers.
type FillMethod uint8

const (
	// FillFullScan visits all cells row by row, summing chunk sizes directly.
	FillFullScan FillMethod = iota
	// FillPartialSums visits all cells row by row, reading chunk sizes from partial sums.
	FillPartialSums
	// FillCellQueue only visits cells reachable from resolved cells,
	// in the order of a priority queue keyed by (row, col).
	FillCellQueue
	// FillCellMark only visits reachable cells, marked in a bitmap scanned column by column.
	FillCellMark
	// FillPrecomputedSizing is FillPartialSums with sizing penalties of reference windows computed ahead.
	FillPrecomputedSizing
)

// FillMethods lists names of all fill methods.
var FillMethods = []string{"full-scan", "partial-sums", "cell-queue", "cell-mark", "precomputed-sizing"}

func (f FillMethod) String() string {
	if int(f) < len(FillMethods) {
		return FillMethods[f]
	}
	return "unknown"
}

// ParseFillMethod parses the name of a fill method.
func ParseFillMethod(s string) (FillMethod, error) {
	s = strings.ToLower(s)
	for i, name := range FillMethods {
		if s == name {
			return FillMethod(i), nil
		}
	}
	return 0, fmt.Errorf("invalid fill method: %s, available: %s", s, strings.Join(FillMethods, ", "))
}

// chunkSizer returns the size of the count fragments ending before prefix end.
type chunkSizer interface {
	querySize(end, count int) int
	refSize(end, count int) int
}

type directSizer struct {
	query, ref []int
}

func (s directSizer) querySize(end, count int) int { return sumFrags(s.query[end-count : end]) }
func (s directSizer) refSize(end, count int) int   { return sumFrags(s.ref[end-count : end]) }

func sumFrags(frags []int) (s int) {
	for _, f := range frags {
		s += f
	}
	return s
}

type partialSumsSizer struct {
	query, ref *PartialSums
}

func (s partialSumsSizer) querySize(end, count int) int { return s.query.Size(end, count) }
func (s partialSumsSizer) refSize(end, count int) int   { return s.ref.Size(end, count) }

// filler holds per-fill state shared by all strategies.
type filler struct {
	t     *Task
	mat   *ScoreMatrix
	sizer chunkSizer
	sp    SizingPenalty

	qMissPenalties []float64
	rMissPenalties []float64
	maxSizing      float64
}

// Fill fills the score matrix of the task with the given method.
// The matrix is resized to (len(Query)+1) x (len(Ref)+1) and reset first.
func Fill(t *Task, method FillMethod) error {
	needPartialSums := method == FillPartialSums || method == FillPrecomputedSizing
	if err := t.check(needPartialSums); err != nil {
		return err
	}

	rows, cols := len(t.Query)+1, len(t.Ref)+1
	t.Matrix.Resize(rows, cols)
	t.Matrix.Reset()

	f := &filler{
		t:              t,
		mat:            t.Matrix,
		sp:             t.Sizing,
		qMissPenalties: t.Opts.QueryMissPenalties(),
		rMissPenalties: t.Opts.RefMissPenalties(),
		maxSizing:      t.Opts.MaxChunkSizingError,
	}
	if needPartialSums {
		f.sizer = partialSumsSizer{query: t.QueryPartialSums, ref: t.RefPartialSums}
	} else {
		f.sizer = directSizer{query: t.Query, ref: t.Ref}
	}

	switch method {
	case FillFullScan, FillPartialSums:
		f.scan()
	case FillPrecomputedSizing:
		if _, ok := t.Sizing.(*PrecomputedSizingPenalty); !ok {
			f.sp = NewPrecomputedSizingPenalty(t.Opts, t.RefPartialSums)
		}
		f.scan()
	case FillCellQueue:
		f.queue()
	case FillCellMark:
		f.mark()
	default:
		return errors.Errorf("dp: unknown fill method: %d", method)
	}
	return nil
}

func (f *filler) scan() {
	rows, cols := f.mat.NumRows(), f.mat.NumCols()
	var i, j int
	for i = 1; i < rows; i++ {
		for j = 1; j < cols; j++ {
			f.relax(i, j)
		}
	}
}

func (f *filler) queue() {
	rows, cols := f.mat.NumRows(), f.mat.NumCols()
	a := newActivator(f.t, rows, cols, true)
	for j := 0; j < cols; j++ {
		a.activateFrom(0, j)
	}

	var c cellPos
	var ok bool
	for {
		if c, ok = a.pop(); !ok {
			break
		}
		if f.relax(c.row, c.col) {
			a.activateFrom(c.row, c.col)
		}
	}
}

func (f *filler) mark() {
	rows, cols := f.mat.NumRows(), f.mat.NumCols()
	a := newActivator(f.t, rows, cols, false)
	for j := 0; j < cols; j++ {
		a.activateFrom(0, j)
	}

	var i, j int
	for j = 1; j < cols; j++ {
		for i = 1; i < rows; i++ {
			if !a.isActive(i, j) {
				continue
			}
			if f.relax(i, j) {
				a.activateFrom(i, j)
			}
		}
	}
}

// relax computes the best predecessor of cell (i, j), i, j >= 1,
// and returns whether the cell is reachable.
//
// Predecessors are enumerated with reference misses ascending, then query misses
// ascending, and only a strictly better score replaces the current one.
func (f *filler) relax(i, j int) bool {
	t := f.t
	m := f.mat

	k0 := i - t.Opts.QueryMaxMisses - 1
	if k0 < 0 {
		k0 = 0
	}
	l0 := j - t.Opts.RefMaxMisses - 1
	if l0 < 0 {
		l0 = 0
	}

	best := math.Inf(-1)
	back := -1
	refStart := -1

	var k, l, qMiss, rMiss, qSize, rSize, idx int
	var rBoundary bool
	var sizing, score, rMissPenalty float64
	var prev *ScoreCell
	for l = j - 1; l >= l0; l-- {
		rMiss = j - l - 1
		rSize = f.sizer.refSize(j, j-l)
		rBoundary = t.refChunkIsBoundary(l, j)
		rMissPenalty = f.rMissPenalties[rMiss]

		for k = i - 1; k >= k0; k-- {
			qMiss = i - k - 1
			qSize = f.sizer.querySize(i, i-k)

			sizing = 0
			if !rBoundary && !t.queryChunkIsBoundary(k, i) {
				sizing = f.sp.Penalty(qSize, rSize)
				if sizing > f.maxSizing {
					if qSize > rSize { // larger query chunks only get worse
						break
					}
					continue
				}
			}

			idx = m.index(k, l)
			prev = m.cell(idx)
			if !prev.IsFilled() {
				continue
			}

			score = prev.Score - sizing - f.qMissPenalties[qMiss] - rMissPenalty
			if score > best {
				best = score
				back = idx
				refStart = prev.RefStart
			}
		}
	}

	c := m.cell(m.index(i, j))
	c.Score = best
	c.Back = back
	c.RefStart = refStart
	return back >= 0
}
