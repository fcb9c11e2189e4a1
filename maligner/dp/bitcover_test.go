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

import "testing"

func TestBitCover(t *testing.T) {
	c := NewBitCover(20)
	if c.Len() != 20 || c.Count() != 0 {
		t.Errorf("unexpected new cover: %d, %d", c.Len(), c.Count())
	}

	c.Cover(5, 8)
	tests := []struct {
		lo, hi  int
		covered bool
	}{
		{0, 5, false},
		{0, 6, true},
		{7, 10, true},
		{8, 20, false},
		{6, 7, true},
		{-5, 100, true},
		{7, 7, false},
	}
	for i, test := range tests {
		if c.IsCovered(test.lo, test.hi) != test.covered {
			t.Errorf("#%d: unexpected result of [%d, %d)", i, test.lo, test.hi)
		}
	}

	c.Cover(-3, 2)
	c.Cover(18, 30)
	if c.Count() != 7 || !c.Test(0) || !c.Test(19) || c.Test(20) || c.Test(-1) {
		t.Errorf("unexpected cover with out-of-range positions: %d", c.Count())
	}

	o := NewBitCover(20)
	o.Cover(10, 12)
	c.Union(o)
	if !c.Test(10) || !c.Test(11) || c.Count() != 9 {
		t.Errorf("unexpected union: %d", c.Count())
	}
}
