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
	"runtime"
	"sync"

	"github.com/shenwei356/maligner/maligner/util"
	"github.com/twotwotwo/sorts/sortutil"
)

// NullDistribution aligns a query, in both orientations, to each reference
// in refs, usually permuted ones, keeps the better orientation per reference,
// and returns the rescaled scores in ascending order.
// References the query could not be aligned to contribute no score.
//
// References are aligned concurrently with at most threads workers,
// each using its own score matrix from the object pool.
func NullDistribution(query []int, refs [][]int, opts *AlignOptions, method FillMethod, threads int) ([]float64, error) {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	queryR := util.ReversedInts(query)
	qps := NewPartialSums(query, opts.QueryMaxMisses)
	qpsR := NewPartialSums(queryR, opts.QueryMaxMisses)

	scores := make([]float64, len(refs))
	found := make([]bool, len(refs))
	errs := make([]error, len(refs))

	var wg sync.WaitGroup
	tokens := make(chan int, threads)
	for i, ref := range refs {
		tokens <- 1
		wg.Add(1)
		go func(i int, ref []int) {
			defer func() {
				wg.Done()
				<-tokens
			}()

			mat := GetScoreMatrix(RowMajor)
			defer RecycleScoreMatrix(mat)

			rps := NewPartialSums(ref, opts.RefMaxMisses)
			var sp SizingPenalty
			if method == FillPrecomputedSizing {
				sp = NewPrecomputedSizingPenalty(opts, rps)
			} else {
				sp = NewChi2SizingPenalty(opts)
			}

			var best *Alignment
			for _, forward := range []bool{true, false} {
				t := &Task{
					Ref:            ref,
					RefPartialSums: rps,
					Matrix:         mat,
					Opts:           opts,
					Sizing:         sp,
					IsForward:      forward,
				}
				if forward {
					t.Query, t.QueryPartialSums = query, qps
				} else {
					t.Query, t.QueryPartialSums = queryR, qpsR
				}

				aln, ok, err := t.BestAlignment(method)
				if err != nil {
					errs[i] = err
					return
				}
				if ok && (best == nil || aln.TotalRescaledScore < best.TotalRescaledScore) {
					best = aln
				}
			}
			if best != nil {
				scores[i] = best.TotalRescaledScore
				found[i] = true
			}
		}(i, ref)
	}
	wg.Wait()

	null := make([]float64, 0, len(refs))
	for i, err := range errs {
		if err != nil {
			return nil, err
		}
		if found[i] {
			null = append(null, scores[i])
		}
	}
	sortutil.Float64s(null)
	return null, nil
}
