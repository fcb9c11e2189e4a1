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

package maps

import (
	"github.com/shenwei356/maligner/maligner/util"
	"github.com/twotwotwo/sorts/sortutil"
	"gonum.org/v1/gonum/stat"
)

// Stats are summary statistics of a list of values.
type Stats struct {
	N    int
	Q1   float64
	Q2   float64
	Q3   float64
	Mean float64
	Min  float64
	Max  float64
}

// NewStats computes statistics of values, which will be sorted in place.
// Quartiles are linear interpolations of the empirical distribution.
func NewStats(values []float64) Stats {
	s := Stats{N: len(values)}
	if len(values) == 0 {
		return s
	}
	sortutil.Float64s(values)
	s.Q1 = stat.Quantile(0.25, stat.LinInterp, values, nil)
	s.Q2 = stat.Quantile(0.5, stat.LinInterp, values, nil)
	s.Q3 = stat.Quantile(0.75, stat.LinInterp, values, nil)
	s.Mean = stat.Mean(values, nil)
	s.Min = values[0]
	s.Max = values[len(values)-1]
	return s
}

// Summary holds statistics of a list of maps.
type Summary struct {
	NumMaps  int
	NumFrags int

	MapLength   Stats
	FragsPerMap Stats
	FragLength  Stats
}

// Summarize computes statistics of maps. Terminal fragments, i.e., the first
// and last ones of each map, are excluded unless includeTerminal is true,
// and then map lengths are sums of inner fragments.
func Summarize(maps []*Map, includeTerminal bool) *Summary {
	lengths := make([]float64, 0, len(maps))
	fragsPerMap := make([]float64, 0, len(maps))
	frags := make([]float64, 0, 1024)

	var fs []int
	for _, m := range maps {
		if includeTerminal {
			fs = m.Frags
			lengths = append(lengths, float64(m.Length))
		} else {
			fs = m.InnerFrags()
			lengths = append(lengths, float64(util.SumInts(fs)))
		}
		fragsPerMap = append(fragsPerMap, float64(len(fs)))
		for _, f := range fs {
			frags = append(frags, float64(f))
		}
	}

	return &Summary{
		NumMaps:     len(maps),
		NumFrags:    len(frags),
		MapLength:   NewStats(lengths),
		FragsPerMap: NewStats(fragsPerMap),
		FragLength:  NewStats(frags),
	}
}
