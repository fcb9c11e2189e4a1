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

package maps

import (
	"github.com/shenwei356/maligner/maligner/dp"
	"github.com/shenwei356/maligner/maligner/util"
)

// Wrapper holds a map with its fragments in both orientations and their partial sums.
// It is built once and shared read-only by alignment tasks.
type Wrapper struct {
	*Map

	MaxMisses int

	// fragments to align in both orientations
	FragsForward []int
	FragsReverse []int

	PartialSums        *dp.PartialSums
	PartialSumsReverse *dp.PartialSums
}

func newWrapper(m *Map, maxMisses int) Wrapper {
	rev := util.ReversedInts(m.Frags)
	return Wrapper{
		Map:                m,
		MaxMisses:          maxMisses,
		FragsForward:       m.Frags,
		FragsReverse:       rev,
		PartialSums:        dp.NewPartialSums(m.Frags, maxMisses),
		PartialSumsReverse: dp.NewPartialSums(rev, maxMisses),
	}
}

// Oriented returns fragments and partial sums in the given orientation.
func (w *Wrapper) Oriented(forward bool) ([]int, *dp.PartialSums) {
	if forward {
		return w.FragsForward, w.PartialSums
	}
	return w.FragsReverse, w.PartialSumsReverse
}

// QueryMap is a wrapped query map.
type QueryMap struct {
	Wrapper
}

// NewQueryMap wraps a query map with partial sums of up to QueryMaxMisses+1 fragments.
func NewQueryMap(m *Map, opts *dp.AlignOptions) *QueryMap {
	return &QueryMap{Wrapper: newWrapper(m, opts.QueryMaxMisses)}
}

// RefMap is a wrapped reference map, with sizing penalties of its windows computed ahead.
//
// A circular reference is circularized by appending all but the last fragment,
// in each orientation, so alignments could span the origin.
// Columns c >= NumFrags() of a circularized map are fragment c-NumFrags() of the map.
type RefMap struct {
	Wrapper

	IsCircular bool

	// windows of both orientations have the same sizes.
	Sizing *dp.PrecomputedSizingPenalty
}

// CircularizedFrags returns the fragments followed by all but the last of them.
func CircularizedFrags(frags []int) []int {
	if len(frags) < 2 {
		return append([]int{}, frags...)
	}
	c := make([]int, 0, 2*len(frags)-1)
	c = append(c, frags...)
	return append(c, frags[:len(frags)-1]...)
}

// NewRefMap wraps a reference map with partial sums of up to RefMaxMisses+1 fragments.
func NewRefMap(m *Map, opts *dp.AlignOptions, circular bool) *RefMap {
	var w Wrapper
	if circular {
		frags := CircularizedFrags(m.Frags)
		rev := CircularizedFrags(util.ReversedInts(m.Frags))
		w = Wrapper{
			Map:                m,
			MaxMisses:          opts.RefMaxMisses,
			FragsForward:       frags,
			FragsReverse:       rev,
			PartialSums:        dp.NewPartialSums(frags, opts.RefMaxMisses),
			PartialSumsReverse: dp.NewPartialSums(rev, opts.RefMaxMisses),
		}
	} else {
		w = newWrapper(m, opts.RefMaxMisses)
	}
	return &RefMap{
		Wrapper:    w,
		IsCircular: circular,
		Sizing:     dp.NewPrecomputedSizingPenalty(opts, w.PartialSums),
	}
}

// NewRefMaps wraps a list of reference maps.
func NewRefMaps(maps []*Map, opts *dp.AlignOptions, circular bool) []*RefMap {
	refs := make([]*RefMap, len(maps))
	for i, m := range maps {
		refs[i] = NewRefMap(m, opts, circular)
	}
	return refs
}

// IsDuplicate tells if an alignment to a circularized map lies entirely in the
// appended fragments, i.e., it repeats an alignment starting in the map itself.
func (r *RefMap) IsDuplicate(aln *dp.Alignment) bool {
	return r.IsCircular && aln.RefStart() >= r.NumFrags()
}

// Task creates an alignment task of a query against the reference.
// The matrix is owned by the caller. When precomputed is false, the sizing
// penalty is computed directly.
func (r *RefMap) Task(q *QueryMap, queryForward, refForward bool, opts *dp.AlignOptions,
	mat *dp.ScoreMatrix, precomputed bool) *dp.Task {
	t := &dp.Task{
		Matrix:    mat,
		Opts:      opts,
		IsForward: queryForward == refForward,
		QueryName: q.Name,
		RefName:   r.Name,
	}
	t.Query, t.QueryPartialSums = q.Oriented(queryForward)
	t.Ref, t.RefPartialSums = r.Oriented(refForward)
	if precomputed {
		t.Sizing = r.Sizing
	} else {
		t.Sizing = dp.NewChi2SizingPenalty(opts)
	}
	return t
}
