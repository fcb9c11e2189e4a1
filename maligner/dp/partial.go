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

import "fmt"

// PartialSums stores sums of windows of consecutive fragments.
// For fragment i, entry k is the sum of the k+1 fragments ending at i,
// for k <= MaxMisses. Entries reaching beyond the first fragment are 0.
type PartialSums struct {
	MaxMisses int
	n         int
	sums      []int
}

// NewPartialSums computes the partial sums of fragments.
func NewPartialSums(frags []int, maxMisses int) *PartialSums {
	w := maxMisses + 1
	ps := &PartialSums{
		MaxMisses: maxMisses,
		n:         len(frags),
		sums:      make([]int, len(frags)*w),
	}

	var s int
	var i, k int
	for i = range frags {
		s = 0
		for k = 0; k < w && k <= i; k++ {
			s += frags[i-k]
			ps.sums[i*w+k] = s
		}
	}
	return ps
}

// Len returns the number of fragments.
func (ps *PartialSums) Len() int { return ps.n }

// Size returns the total size of the count fragments ending before prefix end,
// i.e., frags[end-count:end].
func (ps *PartialSums) Size(end, count int) int {
	if count < 1 || count > ps.MaxMisses+1 || end-count < 0 || end > ps.n {
		panic(fmt.Sprintf("dp: partial sum out of range: end %d, count %d, fragments %d, max misses %d",
			end, count, ps.n, ps.MaxMisses))
	}
	return ps.sums[(end-1)*(ps.MaxMisses+1)+count-1]
}
