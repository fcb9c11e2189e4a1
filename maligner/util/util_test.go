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

package util

import "testing"

func TestUniqInts(t *testing.T) {
	tests := []struct {
		in   []int
		want []int
	}{
		{[]int{}, []int{}},
		{[]int{3}, []int{3}},
		{[]int{3, 1, 2, 3, 1}, []int{1, 2, 3}},
		{[]int{5, 5, 5}, []int{5}},
		{[]int{9, 7, 8}, []int{7, 8, 9}},
	}
	for i, test := range tests {
		list := append([]int{}, test.in...)
		UniqInts(&list)
		if len(list) != len(test.want) {
			t.Errorf("#%d: unexpected result: %v, expected: %v", i, list, test.want)
			continue
		}
		for j := range list {
			if list[j] != test.want[j] {
				t.Errorf("#%d: unexpected result: %v, expected: %v", i, list, test.want)
				break
			}
		}
	}
}

func TestReverseInts(t *testing.T) {
	s := []int{1, 2, 3, 4}
	r := ReversedInts(s)
	ReverseInts(s)
	for i := range s {
		if s[i] != r[i] || s[i] != 4-i {
			t.Errorf("unexpected reversed list: %v, %v", s, r)
			return
		}
	}
	if SumInts(s) != 10 {
		t.Errorf("unexpected sum: %d", SumInts(s))
	}
}
