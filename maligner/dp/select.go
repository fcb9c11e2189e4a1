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
	"sort"
)

// seedCells returns indexes of last-row cells that end a path,
// sorted by descending score, lower columns first on ties.
func seedCells(m *ScoreMatrix) []int {
	if m.NumRows() < 2 {
		return nil
	}
	row := m.NumRows() - 1
	seeds := make([]int, 0, m.NumCols())
	var idx int
	var c *ScoreCell
	for j := 1; j < m.NumCols(); j++ {
		idx = m.index(row, j)
		c = m.cell(idx)
		if c.IsFilled() && c.HasBack() {
			seeds = append(seeds, idx)
		}
	}
	sort.SliceStable(seeds, func(i, j int) bool {
		return m.cell(seeds[i]).Score > m.cell(seeds[j]).Score
	})
	return seeds
}

func (t *Task) alignmentFromSeed(idx int) *Alignment {
	aln := AlignmentFromCell(t, idx)
	if aln.IsValid && t.Opts.RescaleQuery {
		aln.Rescale(t.Opts, t.Sizing)
	}
	return aln
}

// SelectAlignments selects multiple non-overlapping alignments from a filled matrix.
//
// Seeds, i.e., reachable cells of the last row, are visited from the best.
// A seed is skipped if its column is covered, or its alignment overlaps
// selected ones. When NeighborDelta > 0, seeds within NeighborDelta columns
// compete after rescaling, and the lowest rescaled score wins.
// After each selection, the reference span of the alignment and columns
// within MinAlignmentSpacing of the seed are covered.
// At most AlignmentsPerReference alignments are returned, 0 for no limit.
func SelectAlignments(t *Task) []*Alignment {
	m := t.Matrix
	seeds := seedCells(m)
	if len(seeds) == 0 {
		return nil
	}

	opts := t.Opts
	limit := opts.AlignmentsPerReference
	row := m.NumRows() - 1
	cols := m.NumCols()
	cover := NewBitCover(cols)
	alns := make([]*Alignment, 0, 8)

	var seed *ScoreCell
	var aln, other *Alignment
	var c int
	var nc *ScoreCell
	for _, idx := range seeds {
		if limit > 0 && len(alns) >= limit {
			break
		}
		seed = m.cell(idx)
		if cover.Test(seed.Col) {
			continue
		}

		aln = t.alignmentFromSeed(idx)
		if !aln.IsValid || cover.IsCovered(aln.RefStart()-t.RefOffset, aln.RefEnd()-t.RefOffset) {
			continue
		}

		if opts.NeighborDelta > 0 {
			for c = seed.Col - opts.NeighborDelta; c <= seed.Col+opts.NeighborDelta; c++ {
				if c == seed.Col || c < 1 || c >= cols {
					continue
				}
				nc = m.cell(m.index(row, c))
				if !nc.IsFilled() || !nc.HasBack() {
					continue
				}
				other = t.alignmentFromSeed(m.index(row, c))
				if !other.IsValid ||
					cover.IsCovered(other.RefStart()-t.RefOffset, other.RefEnd()-t.RefOffset) {
					continue
				}
				if other.TotalRescaledScore < aln.TotalRescaledScore {
					aln = other
				}
			}
		}

		cover.Cover(aln.RefStart()-t.RefOffset, aln.RefEnd()-t.RefOffset)
		cover.Cover(seed.Col-opts.MinAlignmentSpacing+1, seed.Col+opts.MinAlignmentSpacing)
		alns = append(alns, aln)
	}
	return alns
}

// SelectAllAlignments builds alignments of all seeds, sorts them by rescaled scores,
// and greedily selects the ones not overlapping selected ones.
// There is no neighbor search and no limit of the number of alignments.
func SelectAllAlignments(t *Task) []*Alignment {
	seeds := seedCells(t.Matrix)
	if len(seeds) == 0 {
		return nil
	}

	all := make([]*Alignment, 0, len(seeds))
	var aln *Alignment
	for _, idx := range seeds {
		aln = t.alignmentFromSeed(idx)
		if aln.IsValid {
			all = append(all, aln)
		}
	}
	SortAlignments(all, true)

	cover := NewBitCover(t.Matrix.NumCols())
	alns := make([]*Alignment, 0, 8)
	var lo, hi int
	for _, aln = range all {
		lo, hi = aln.RefStart()-t.RefOffset, aln.RefEnd()-t.RefOffset
		if cover.IsCovered(lo, hi) {
			continue
		}
		cover.Cover(lo, hi)
		alns = append(alns, aln)
	}
	return alns
}

// SortAlignments sorts alignments by total scores from the best,
// using rescaled scores or not. The sort is stable.
func SortAlignments(alns []*Alignment, rescaled bool) {
	if rescaled {
		sort.SliceStable(alns, func(i, j int) bool {
			return alns[i].TotalRescaledScore < alns[j].TotalRescaledScore
		})
		return
	}
	sort.SliceStable(alns, func(i, j int) bool {
		return alns[i].TotalScore < alns[j].TotalScore
	})
}
