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

// Chunk is a run of consecutive fragments [Start, End) of a map.
type Chunk struct {
	Start int
	End   int
	Size  int

	// whether the chunk touches an end of the map, where the first or last
	// site is not a real restriction site.
	IsBoundary bool
}

// NumFrags returns the number of fragments.
func (c Chunk) NumFrags() int { return c.End - c.Start }

// NumMisses returns the number of unmatched interior sites.
func (c Chunk) NumMisses() int { return c.End - c.Start - 1 }

func (c Chunk) String() string {
	return fmt.Sprintf("[%d, %d):%d", c.Start, c.End, c.Size)
}

// Score is the penalty of an alignment, or a part of it. Lower is better.
type Score struct {
	QueryMiss float64
	RefMiss   float64
	Sizing    float64
}

// Total returns the sum of all components.
func (s Score) Total() float64 {
	return s.QueryMiss + s.RefMiss + s.Sizing
}

// Add returns the component-wise sum.
func (s Score) Add(o Score) Score {
	return Score{
		QueryMiss: s.QueryMiss + o.QueryMiss,
		RefMiss:   s.RefMiss + o.RefMiss,
		Sizing:    s.Sizing + o.Sizing,
	}
}

// MatchedChunk pairs a query chunk with a reference chunk.
type MatchedChunk struct {
	Query Chunk
	Ref   Chunk
	Score Score
}

// IsBoundary tells if either chunk is a boundary chunk.
func (mc MatchedChunk) IsBoundary() bool {
	return mc.Query.IsBoundary || mc.Ref.IsBoundary
}
