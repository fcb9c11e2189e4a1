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
	"math"
	"math/rand"
	"testing"
)

// refWithRepeats returns a random reference with the fragments [10, 18)
// copied to [40, 48), and the repeated fragments.
func refWithRepeats(seed int64) ([]int, []int) {
	r := rand.New(rand.NewSource(seed))
	ref := randomFrags(r, 70)
	copy(ref[40:48], ref[10:18])
	query := append([]int{}, ref[10:18]...)
	return ref, query
}

func TestSelectAlignmentsRepeats(t *testing.T) {
	ref, query := refWithRepeats(1)
	opts := DefaultAlignOptions

	task := NewTask(query, ref, &opts, NewScoreMatrix(RowMajor))
	if err := Fill(task, FillPartialSums); err != nil {
		t.Error(err)
		return
	}
	alns := SelectAlignments(task)
	if len(alns) < 2 {
		t.Errorf("expected at least two alignments, got %d", len(alns))
		return
	}
	for i, aln := range alns[:2] {
		t.Logf("%d: %s", i, aln)
		if math.Abs(aln.TotalScore) > 1e-9 {
			t.Errorf("unexpected score of alignment #%d: %f", i, aln.TotalScore)
		}
	}
	if alns[0].RefStart() != 10 || alns[0].RefEnd() != 18 {
		t.Errorf("unexpected span of the first alignment: [%d, %d)", alns[0].RefStart(), alns[0].RefEnd())
	}
	if alns[1].RefStart() != 40 || alns[1].RefEnd() != 48 {
		t.Errorf("unexpected span of the second alignment: [%d, %d)", alns[1].RefStart(), alns[1].RefEnd())
	}
	checkSelected(t, alns, &opts, true, true)
}

func checkSelected(t *testing.T, alns []*Alignment, opts *AlignOptions, limited, checkSpacing bool) {
	if limited && opts.AlignmentsPerReference > 0 && len(alns) > opts.AlignmentsPerReference {
		t.Errorf("too many alignments: %d > %d", len(alns), opts.AlignmentsPerReference)
	}
	var d int
	for i := 0; i < len(alns); i++ {
		for j := i + 1; j < len(alns); j++ {
			if alns[i].Overlaps(alns[j]) {
				t.Errorf("overlapping alignments: [%d, %d) and [%d, %d)",
					alns[i].RefStart(), alns[i].RefEnd(), alns[j].RefStart(), alns[j].RefEnd())
			}
			if !checkSpacing {
				continue
			}
			d = alns[i].RefEnd() - alns[j].RefEnd()
			if d < 0 {
				d = -d
			}
			if d < opts.MinAlignmentSpacing {
				t.Errorf("alignments ending too close: %d and %d", alns[i].RefEnd(), alns[j].RefEnd())
			}
		}
	}
}

func TestSelectAlignmentsRandom(t *testing.T) {
	r := rand.New(rand.NewSource(5))

	for n := 0; n < 10; n++ {
		ref := randomFrags(r, 200)
		s := r.Intn(180)
		query := noisyCopy(r, ref[s:s+10+r.Intn(10)])

		for _, delta := range []int{0, 3} {
			opts := DefaultAlignOptions
			opts.AlignmentsPerReference = 5 + r.Intn(20)
			opts.MinAlignmentSpacing = 1 + r.Intn(10)
			opts.NeighborDelta = delta

			task := NewTask(query, ref, &opts, NewScoreMatrix(RowMajor))
			if err := Fill(task, FillCellQueue); err != nil {
				t.Error(err)
				return
			}
			alns := SelectAlignments(task)
			checkSelected(t, alns, &opts, true, delta == 0)

			all := SelectAllAlignments(task)
			checkSelected(t, all, &opts, false, false)
			for i := 1; i < len(all); i++ {
				if all[i].TotalRescaledScore < all[i-1].TotalRescaledScore {
					t.Errorf("alignments not sorted by rescaled scores")
					break
				}
			}
		}
	}
}

func TestSelectAlignmentsLimit(t *testing.T) {
	ref, query := refWithRepeats(2)
	opts := DefaultAlignOptions
	opts.AlignmentsPerReference = 1

	task := NewTask(query, ref, &opts, NewScoreMatrix(RowMajor))
	if err := Fill(task, FillCellMark); err != nil {
		t.Error(err)
		return
	}
	if alns := SelectAlignments(task); len(alns) != 1 || alns[0].RefEnd() != 18 {
		t.Errorf("unexpected selection with a limit of 1: %d alignments", len(alns))
	}

	// trying all seeds is not limited
	all := SelectAllAlignments(task)
	if len(all) < 2 {
		t.Errorf("all non-overlapping alignments should be selected: %d alignments", len(all))
	}
	checkSelected(t, all, &opts, false, false)

	opts.AlignmentsPerReference = 0
	if all0 := SelectAllAlignments(task); len(all0) != len(all) {
		t.Errorf("trying all seeds should not depend on the limit: %d vs %d", len(all0), len(all))
	}
}

func TestSelectAlignmentsEmpty(t *testing.T) {
	opts := DefaultAlignOptions
	task := NewTask([]int{}, []int{1000, 2000}, &opts, NewScoreMatrix(RowMajor))
	if err := Fill(task, FillFullScan); err != nil {
		t.Error(err)
		return
	}
	if alns := SelectAlignments(task); len(alns) != 0 {
		t.Errorf("unexpected alignments of an empty query: %d", len(alns))
	}
}
