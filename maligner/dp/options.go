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
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidOptions means some alignment options are out of range.
var ErrInvalidOptions = errors.New("dp: invalid alignment options")

// AlignOptions contains all options of the dynamic programming and the
// selection of alignments. The core never modifies it, so one value could
// be shared by many concurrent alignment tasks.
type AlignOptions struct {
	QueryMissPenalty float64 `toml:"query-miss-penalty" comment:"penalty of an unmatched site in the query"`
	RefMissPenalty   float64 `toml:"ref-miss-penalty" comment:"penalty of an unmatched site in the reference"`
	QueryMaxMisses   int     `toml:"query-max-misses" comment:"maximum consecutive unmatched sites in the query"`
	RefMaxMisses     int     `toml:"ref-max-misses" comment:"maximum consecutive unmatched sites in the reference"`

	// sizing error: sd = max(SDRate * refSize, MinSD)
	SDRate              float64 `toml:"sd-rate" comment:"standard deviation of sizing error, as a fraction of the reference chunk size"`
	MinSD               float64 `toml:"min-sd" comment:"minimum standard deviation of sizing error"`
	MaxChunkSizingError float64 `toml:"max-chunk-sizing-error" comment:"maximum sizing penalty of a matched chunk"`

	QueryMaxMissRate float64 `toml:"query-max-miss-rate" comment:"maximum miss rate of the query in an alignment"`
	RefMaxMissRate   float64 `toml:"ref-max-miss-rate" comment:"maximum miss rate of the reference in an alignment"`

	AlignmentsPerReference int `toml:"alignments-per-reference" comment:"maximum number of alignment seeds selected per reference"`
	MinAlignmentSpacing    int `toml:"min-alignment-spacing" comment:"minimum spacing between alignment seeds"`
	NeighborDelta          int `toml:"neighbor-delta" comment:"radius of columns to search for a better rescaled alignment"`

	QueryIsBounded bool `toml:"query-is-bounded" comment:"apply sizing penalty to the ends of the query"`
	RefIsBounded   bool `toml:"ref-is-bounded" comment:"apply sizing penalty to the ends of the reference"`

	RescaleQuery    bool    `toml:"rescale-query" comment:"rescale query chunks by the ratio of interior sizes"`
	MinQueryScaling float64 `toml:"min-query-scaling" comment:"minimum query scaling factor"`
	MaxQueryScaling float64 `toml:"max-query-scaling" comment:"maximum query scaling factor"`
}

// DefaultAlignOptions is the default value of AlignOptions.
var DefaultAlignOptions = AlignOptions{
	QueryMissPenalty: 3,
	RefMissPenalty:   3,
	QueryMaxMisses:   2,
	RefMaxMisses:     5,

	SDRate:              0.1,
	MinSD:               0,
	MaxChunkSizingError: 16,

	QueryMaxMissRate: 1,
	RefMaxMissRate:   1,

	AlignmentsPerReference: 100,
	MinAlignmentSpacing:    10,
	NeighborDelta:          0,

	QueryIsBounded: false,
	RefIsBounded:   false,

	RescaleQuery:    true,
	MinQueryScaling: 0.8,
	MaxQueryScaling: 1.2,
}

// Validate checks the values of options.
func (o *AlignOptions) Validate() error {
	switch {
	case o.QueryMaxMisses < 0:
		return errors.Wrapf(ErrInvalidOptions, "query max misses should be >= 0: %d", o.QueryMaxMisses)
	case o.RefMaxMisses < 0:
		return errors.Wrapf(ErrInvalidOptions, "reference max misses should be >= 0: %d", o.RefMaxMisses)
	case o.QueryMissPenalty < 0 || o.RefMissPenalty < 0:
		return errors.Wrapf(ErrInvalidOptions, "miss penalties should be >= 0: %f, %f",
			o.QueryMissPenalty, o.RefMissPenalty)
	case o.SDRate <= 0 && o.MinSD <= 0:
		return errors.Wrapf(ErrInvalidOptions, "sd rate or minimum sd should be > 0")
	case o.SDRate < 0 || o.MinSD < 0:
		return errors.Wrapf(ErrInvalidOptions, "sd rate and minimum sd should be >= 0: %f, %f", o.SDRate, o.MinSD)
	case o.MaxChunkSizingError < 0:
		return errors.Wrapf(ErrInvalidOptions, "max chunk sizing error should be >= 0: %f", o.MaxChunkSizingError)
	case o.AlignmentsPerReference < 0:
		return errors.Wrapf(ErrInvalidOptions, "alignments per reference should be >= 0: %d", o.AlignmentsPerReference)
	case o.MinAlignmentSpacing < 0 || o.NeighborDelta < 0:
		return errors.Wrapf(ErrInvalidOptions, "alignment spacing and neighbor delta should be >= 0: %d, %d",
			o.MinAlignmentSpacing, o.NeighborDelta)
	case o.RescaleQuery && (o.MinQueryScaling <= 0 || o.MinQueryScaling > o.MaxQueryScaling):
		return errors.Wrapf(ErrInvalidOptions, "invalid query scaling range: [%f, %f]",
			o.MinQueryScaling, o.MaxQueryScaling)
	}
	return nil
}

// QueryMissPenalties returns penalties of 0, 1, ..., QueryMaxMisses misses.
func (o *AlignOptions) QueryMissPenalties() []float64 {
	return missPenalties(o.QueryMaxMisses, o.QueryMissPenalty)
}

// RefMissPenalties returns penalties of 0, 1, ..., RefMaxMisses misses.
func (o *AlignOptions) RefMissPenalties() []float64 {
	return missPenalties(o.RefMaxMisses, o.RefMissPenalty)
}

func missPenalties(max int, p float64) []float64 {
	penalties := make([]float64, max+1)
	for i := range penalties {
		penalties[i] = float64(i) * p
	}
	return penalties
}

// clampScaling limits a query scaling factor in [MinQueryScaling, MaxQueryScaling].
func (o *AlignOptions) clampScaling(f float64) float64 {
	if f < o.MinQueryScaling {
		return o.MinQueryScaling
	}
	if f > o.MaxQueryScaling {
		return o.MaxQueryScaling
	}
	return f
}

func (o AlignOptions) String() string {
	return fmt.Sprintf("query miss: %.2f x <=%d, ref miss: %.2f x <=%d, sd rate: %.3f, min sd: %.1f, max chunk sizing error: %.2f",
		o.QueryMissPenalty, o.QueryMaxMisses, o.RefMissPenalty, o.RefMaxMisses,
		o.SDRate, o.MinSD, o.MaxChunkSizingError)
}
