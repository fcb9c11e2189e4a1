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
	"github.com/pkg/errors"
)

// ErrInvalidTask means the alignment task misses some required inputs.
var ErrInvalidTask = errors.New("dp: invalid alignment task")

// Task holds everything needed to align a query map to a reference map.
// Fragment slices, partial sums and options are only read,
// so they could be shared by concurrent tasks. The Matrix is owned by the task.
type Task struct {
	Query []int
	Ref   []int

	QueryPartialSums *PartialSums
	RefPartialSums   *PartialSums

	// When Ref is a window of a longer reference, RefOffset is the index of its first
	// fragment, and RefTotalFrags is the number of fragments of the whole reference.
	// A RefTotalFrags of 0 means len(Ref).
	RefOffset     int
	RefTotalFrags int

	Matrix *ScoreMatrix
	Opts   *AlignOptions
	Sizing SizingPenalty

	IsForward bool
	QueryName string
	RefName   string
}

// NewTask creates a task with partial sums and the default sizing penalty.
func NewTask(query, ref []int, opts *AlignOptions, mat *ScoreMatrix) *Task {
	return &Task{
		Query:            query,
		Ref:              ref,
		QueryPartialSums: NewPartialSums(query, opts.QueryMaxMisses),
		RefPartialSums:   NewPartialSums(ref, opts.RefMaxMisses),
		Matrix:           mat,
		Opts:             opts,
		Sizing:           NewChi2SizingPenalty(opts),
		IsForward:        true,
	}
}

func (t *Task) refTotalFrags() int {
	if t.RefTotalFrags > 0 {
		return t.RefTotalFrags
	}
	return len(t.Ref)
}

// check validates the task and fills in missing optional inputs.
func (t *Task) check(needPartialSums bool) error {
	if t.Matrix == nil {
		return errors.Wrap(ErrInvalidTask, "score matrix not given")
	}
	if t.Opts == nil {
		return errors.Wrap(ErrInvalidTask, "alignment options not given")
	}
	if t.RefOffset < 0 || t.RefOffset+len(t.Ref) > t.refTotalFrags() {
		return errors.Wrapf(ErrInvalidTask, "reference window out of range: offset %d, %d fragments, total %d",
			t.RefOffset, len(t.Ref), t.refTotalFrags())
	}
	if t.Sizing == nil {
		t.Sizing = NewChi2SizingPenalty(t.Opts)
	}
	if needPartialSums {
		if t.QueryPartialSums == nil || t.QueryPartialSums.Len() != len(t.Query) ||
			t.QueryPartialSums.MaxMisses < t.Opts.QueryMaxMisses {
			t.QueryPartialSums = NewPartialSums(t.Query, t.Opts.QueryMaxMisses)
		}
		if t.RefPartialSums == nil || t.RefPartialSums.Len() != len(t.Ref) ||
			t.RefPartialSums.MaxMisses < t.Opts.RefMaxMisses {
			t.RefPartialSums = NewPartialSums(t.Ref, t.Opts.RefMaxMisses)
		}
	}
	return nil
}

// queryChunkIsBoundary tells if the query chunk [k, i) touches an end of the query.
func (t *Task) queryChunkIsBoundary(k, i int) bool {
	return !t.Opts.QueryIsBounded && (k == 0 || i == len(t.Query))
}

// refChunkIsBoundary tells if the reference chunk [l, j) touches an end of the whole reference.
func (t *Task) refChunkIsBoundary(l, j int) bool {
	return !t.Opts.RefIsBounded && (l+t.RefOffset == 0 || j+t.RefOffset == t.refTotalFrags())
}

// BestAlignment fills the matrix and returns the alignment ending at the
// best cell of the last row. It returns InvalidAlignment and false when
// the query could not be aligned.
func (t *Task) BestAlignment(method FillMethod) (*Alignment, bool, error) {
	if err := Fill(t, method); err != nil {
		return InvalidAlignment, false, err
	}

	best := t.bestLastRowCell()
	if best < 0 {
		return InvalidAlignment, false, nil
	}
	aln := AlignmentFromCell(t, best)
	if !aln.IsValid {
		return InvalidAlignment, false, nil
	}
	if t.Opts.RescaleQuery {
		aln.Rescale(t.Opts, t.Sizing)
	}
	return aln, true, nil
}

// bestLastRowCell returns the index of the last-row cell with the highest score,
// the lowest column wins on ties. -1 is returned if none has a predecessor.
func (t *Task) bestLastRowCell() int {
	m := t.Matrix
	if m.NumRows() < 2 {
		return -1
	}
	row := m.NumRows() - 1
	best := -1
	var c *ScoreCell
	var idx int
	for j := 1; j < m.NumCols(); j++ {
		idx = m.index(row, j)
		c = m.cell(idx)
		if !c.IsFilled() || !c.HasBack() {
			continue
		}
		if best < 0 || c.Score > m.cell(best).Score {
			best = idx
		}
	}
	return best
}
