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
	"sort"

	"github.com/pkg/errors"
	"github.com/twotwotwo/sorts/sortutil"
)

// ErrEmptyNull means the null distribution has no scores.
var ErrEmptyNull = errors.New("dp: empty null distribution")

// Median returns the median of values, 0 for an empty slice.
// The input is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	v := make([]float64, len(values))
	copy(v, values)
	sortutil.Float64s(v)
	return medianOfSorted(v)
}

func medianOfSorted(v []float64) float64 {
	n := len(v)
	if n&1 == 0 {
		return 0.5 * (v[n/2-1] + v[n/2])
	}
	return v[n/2]
}

// MAD returns the median absolute deviation of values, 0 for an empty slice.
// The input is not modified.
func MAD(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Median(values)
	v := make([]float64, len(values))
	for i, x := range values {
		v[i] = math.Abs(x - m)
	}
	sortutil.Float64s(v)
	return medianOfSorted(v)
}

// PValue returns the fraction of null scores lower than or equal to score.
// Null scores must be sorted in ascending order.
func PValue(sortedNull []float64, score float64) (float64, error) {
	n := len(sortedNull)
	if n == 0 {
		return 1, ErrEmptyNull
	}
	nLE := sort.Search(n, func(i int) bool { return sortedNull[i] > score })
	return float64(nLE) / float64(n), nil
}

// AssignPValues computes p-values of alignments from their rescaled scores.
func AssignPValues(sortedNull []float64, alns []*Alignment) error {
	if len(sortedNull) == 0 {
		return ErrEmptyNull
	}
	for _, aln := range alns {
		aln.PValue, _ = PValue(sortedNull, aln.TotalRescaledScore)
	}
	return nil
}

// MScores computes m-scores of alignments, i.e., (score - median) / max(MAD, minMAD),
// where the median and MAD are computed from rescaled scores of the best
// maxAlignments alignments (all if maxAlignments <= 0).
// Alignments must be sorted by rescaled scores. It returns the MAD.
func MScores(alns []*Alignment, maxAlignments int, minMAD float64) float64 {
	if len(alns) == 0 {
		return 0
	}
	n := len(alns)
	if maxAlignments > 0 && maxAlignments < n {
		n = maxAlignments
	}
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		scores[i] = alns[i].TotalRescaledScore
	}
	median := Median(scores)
	mad := MAD(scores)

	d := math.Max(mad, minMAD)
	for _, aln := range alns {
		if d > 0 {
			aln.MScore = (aln.TotalRescaledScore - median) / d
		} else {
			aln.MScore = 0
		}
	}
	return mad
}
