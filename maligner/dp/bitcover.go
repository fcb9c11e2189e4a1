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
	"github.com/bits-and-blooms/bitset"
)

// BitCover records covered positions of a reference, e.g., columns used by selected alignments.
type BitCover struct {
	n    uint
	bits *bitset.BitSet
}

// NewBitCover creates a cover of n positions.
func NewBitCover(n int) *BitCover {
	if n < 0 {
		n = 0
	}
	return &BitCover{n: uint(n), bits: bitset.New(uint(n))}
}

// Len returns the number of positions.
func (c *BitCover) Len() int { return int(c.n) }

// clamp limits [lo, hi) in [0, n).
func (c *BitCover) clamp(lo, hi int) (uint, uint, bool) {
	if lo < 0 {
		lo = 0
	}
	if hi > int(c.n) {
		hi = int(c.n)
	}
	if lo >= hi {
		return 0, 0, false
	}
	return uint(lo), uint(hi), true
}

// Cover marks positions in [lo, hi), out-of-range positions are ignored.
func (c *BitCover) Cover(lo, hi int) {
	s, e, ok := c.clamp(lo, hi)
	if !ok {
		return
	}
	for i := s; i < e; i++ {
		c.bits.Set(i)
	}
}

// IsCovered tells if any position in [lo, hi) is covered.
func (c *BitCover) IsCovered(lo, hi int) bool {
	s, e, ok := c.clamp(lo, hi)
	if !ok {
		return false
	}
	i, found := c.bits.NextSet(s)
	return found && i < e
}

// Test tells if a position is covered.
func (c *BitCover) Test(i int) bool {
	if i < 0 || i >= int(c.n) {
		return false
	}
	return c.bits.Test(uint(i))
}

// Union adds covered positions of another cover of the same length.
func (c *BitCover) Union(o *BitCover) {
	c.bits.InPlaceUnion(o.bits)
}

// Count returns the number of covered positions.
func (c *BitCover) Count() int {
	return int(c.bits.Count())
}
