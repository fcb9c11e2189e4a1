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

func TestPartialSums(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	frags := randomFrags(r, 30)

	for _, maxMisses := range []int{0, 1, 3} {
		ps := NewPartialSums(frags, maxMisses)
		if ps.Len() != len(frags) {
			t.Errorf("unexpected length: %d", ps.Len())
		}
		for end := 1; end <= len(frags); end++ {
			for count := 1; count <= maxMisses+1 && count <= end; count++ {
				if s := ps.Size(end, count); s != sumFrags(frags[end-count:end]) {
					t.Errorf("unexpected size of [%d, %d): %d", end-count, end, s)
				}
			}
		}
	}
}

func TestPartialSumsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for a window longer than the table")
		}
	}()
	ps := NewPartialSums([]int{1, 2, 3}, 1)
	ps.Size(3, 3)
}

func TestChi2SizingPenalty(t *testing.T) {
	opts := DefaultAlignOptions
	sp := NewChi2SizingPenalty(&opts)

	tests := []struct {
		q, r    int
		penalty float64
	}{
		{100, 100, 0},
		{110, 100, 1},
		{90, 100, 1},
		{10000, 9000, 1.2345679012345678},
		{120, 100, 4},
	}
	for i, test := range tests {
		p := sp.Penalty(test.q, test.r)
		if math.Abs(p-test.penalty) > 1e-9 {
			t.Errorf("#%d: unexpected penalty of (%d, %d): %f, expected %f", i, test.q, test.r, p, test.penalty)
		}
	}

	// minimum sd
	sp.MinSD = 20
	if p := sp.Penalty(110, 100); math.Abs(p-0.25) > 1e-12 {
		t.Errorf("unexpected penalty with a minimum sd: %f", p)
	}
}

func TestPrecomputedSizingPenalty(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	ref := randomFrags(r, 50)
	opts := DefaultAlignOptions
	opts.MinSD = 1500

	chi2 := NewChi2SizingPenalty(&opts)
	ps := NewPartialSums(ref, opts.RefMaxMisses)
	pre := NewPrecomputedSizingPenalty(&opts, ps)

	var rs, q int
	var a, b float64
	for end := 1; end <= len(ref); end++ {
		for count := 1; count <= opts.RefMaxMisses+1 && count <= end; count++ {
			rs = ps.Size(end, count)
			q = rs + r.Intn(2000) - 1000
			a, b = chi2.Penalty(q, rs), pre.Penalty(q, rs)
			if a != b {
				t.Errorf("penalties differ for (%d, %d): %f vs %f", q, rs, a, b)
			}
		}
	}

	// unknown sizes
	if a, b = chi2.Penalty(5, 7), pre.Penalty(5, 7); a != b {
		t.Errorf("penalties differ for unknown sizes: %f vs %f", a, b)
	}
}

func TestAlignOptionsValidate(t *testing.T) {
	opts := DefaultAlignOptions
	if err := opts.Validate(); err != nil {
		t.Errorf("default options should be valid: %s", err)
	}

	invalid := []func(o *AlignOptions){
		func(o *AlignOptions) { o.QueryMaxMisses = -1 },
		func(o *AlignOptions) { o.RefMaxMisses = -1 },
		func(o *AlignOptions) { o.RefMissPenalty = -1 },
		func(o *AlignOptions) { o.SDRate = 0 },
		func(o *AlignOptions) { o.MaxChunkSizingError = -1 },
		func(o *AlignOptions) { o.MinQueryScaling, o.MaxQueryScaling = 1.2, 0.8 },
	}
	for i, fn := range invalid {
		o := DefaultAlignOptions
		fn(&o)
		if err := o.Validate(); err == nil {
			t.Errorf("#%d: expected an error", i)
		}
	}

	ps := opts.RefMissPenalties()
	if len(ps) != opts.RefMaxMisses+1 || ps[0] != 0 || ps[2] != 2*opts.RefMissPenalty {
		t.Errorf("unexpected miss penalties: %v", ps)
	}
}
