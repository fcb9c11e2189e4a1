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

	"github.com/pkg/errors"
)

func TestMedianMAD(t *testing.T) {
	tests := []struct {
		values []float64
		median float64
		mad    float64
	}{
		{[]float64{}, 0, 0},
		{[]float64{7}, 7, 0},
		{[]float64{1, 2, 3, 4}, 2.5, 1},
		{[]float64{4, 1, 3, 2}, 2.5, 1},
		{[]float64{3, 1, 2}, 2, 1},
		{[]float64{1, 1, 2, 2, 4, 6, 9}, 2, 1},
	}
	for i, test := range tests {
		values := append([]float64{}, test.values...)
		if m := Median(values); m != test.median {
			t.Errorf("#%d: unexpected median: %f, expected %f", i, m, test.median)
		}
		if m := MAD(values); m != test.mad {
			t.Errorf("#%d: unexpected MAD: %f, expected %f", i, m, test.mad)
		}
		for j := range values {
			if values[j] != test.values[j] {
				t.Errorf("#%d: input modified", i)
				break
			}
		}
	}
}

func TestPValue(t *testing.T) {
	null := []float64{1, 2, 3, 4, 5}
	tests := []struct {
		score float64
		p     float64
	}{
		{3, 0.6},
		{0.5, 0},
		{5, 1},
		{10, 1},
		{3.5, 0.6},
	}
	for i, test := range tests {
		p, err := PValue(null, test.score)
		if err != nil {
			t.Error(err)
			return
		}
		if math.Abs(p-test.p) > 1e-12 {
			t.Errorf("#%d: unexpected p-value of %f: %f, expected %f", i, test.score, p, test.p)
		}
	}

	if _, err := PValue(nil, 3); errors.Cause(err) != ErrEmptyNull {
		t.Errorf("expected ErrEmptyNull, got %v", err)
	}

	alns := []*Alignment{{TotalRescaledScore: 3}, {TotalRescaledScore: 0}}
	if err := AssignPValues(null, alns); err != nil {
		t.Error(err)
	}
	if alns[0].PValue != 0.6 || alns[1].PValue != 0 {
		t.Errorf("unexpected p-values: %f, %f", alns[0].PValue, alns[1].PValue)
	}
	if err := AssignPValues(nil, alns); err == nil {
		t.Errorf("expected an error for an empty null distribution")
	}
}

func TestMScores(t *testing.T) {
	alns := []*Alignment{
		{TotalRescaledScore: 1},
		{TotalRescaledScore: 2},
		{TotalRescaledScore: 3},
		{TotalRescaledScore: 4},
		{TotalRescaledScore: 100},
	}
	mad := MScores(alns, 4, 0.1)
	if mad != 1 {
		t.Errorf("unexpected MAD: %f", mad)
	}
	if alns[0].MScore != -1.5 || alns[4].MScore != 97.5 {
		t.Errorf("unexpected m-scores: %f, %f", alns[0].MScore, alns[4].MScore)
	}

	// the minimum MAD is used when the MAD is small
	for _, aln := range alns {
		aln.TotalRescaledScore = 5
	}
	alns[0].TotalRescaledScore = 4
	if mad = MScores(alns, 0, 0.5); mad != 0 {
		t.Errorf("unexpected MAD: %f", mad)
	}
	if alns[0].MScore != -2 {
		t.Errorf("unexpected m-score: %f", alns[0].MScore)
	}

	if MScores(nil, 10, 1) != 0 {
		t.Errorf("unexpected MAD of empty alignments")
	}
}

func TestNullDistribution(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	ref := randomFrags(r, 120)
	query := noisyCopy(r, ref[30:45])

	refs := make([][]int, 12)
	for i := range refs {
		p := append([]int{}, ref...)
		r.Shuffle(len(p), func(a, b int) { p[a], p[b] = p[b], p[a] })
		refs[i] = p
	}

	opts := DefaultAlignOptions
	null1, err := NullDistribution(query, refs, &opts, FillPartialSums, 1)
	if err != nil {
		t.Error(err)
		return
	}
	null4, err := NullDistribution(query, refs, &opts, FillCellQueue, 4)
	if err != nil {
		t.Error(err)
		return
	}
	if len(null1) != len(null4) || len(null1) > len(refs) {
		t.Errorf("unexpected sizes of null distributions: %d, %d", len(null1), len(null4))
		return
	}
	for i := range null1 {
		if null1[i] != null4[i] {
			t.Errorf("null distributions differ at %d: %f vs %f", i, null1[i], null4[i])
		}
		if i > 0 && null1[i] < null1[i-1] {
			t.Errorf("null distribution not sorted")
		}
	}

	// the true alignment is better than random ones
	task := NewTask(query, ref, &opts, NewScoreMatrix(RowMajor))
	aln, ok, err := task.BestAlignment(FillPartialSums)
	if err != nil || !ok {
		t.Errorf("failed to align the query: %v", err)
		return
	}
	if len(null1) > 0 {
		p, _ := PValue(null1, aln.TotalRescaledScore)
		t.Logf("score: %f, p-value: %f, null: %v", aln.TotalRescaledScore, p, null1)
		if p > 0.5 {
			t.Errorf("unexpected p-value of the true alignment: %f", p)
		}
	}
}
