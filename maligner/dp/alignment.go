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
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// Alignment is a chain of matched chunks and its summary.
// Scores are penalties, a lower score means a better alignment.
type Alignment struct {
	MatchedChunks         []MatchedChunk
	RescaledMatchedChunks []MatchedChunk

	Score         Score
	RescaledScore Score

	TotalScore         float64
	TotalRescaledScore float64

	NumMatchedSites int
	QueryMisses     int
	RefMisses       int
	QueryMissRate   float64
	RefMissRate     float64
	TotalMissRate   float64

	QueryInteriorSize  int // total size of non-boundary query chunks
	RefInteriorSize    int // total size of non-boundary reference chunks
	InteriorSizeRatio  float64
	QueryScalingFactor float64

	ScorePerInnerChunk float64

	MScore float64
	PValue float64

	IsValid   bool
	IsForward bool

	QueryName string
	RefName   string
}

// InvalidAlignment means no alignment is found. Do not modify it.
var InvalidAlignment = &Alignment{IsValid: false, PValue: 1}

// NewAlignment creates an alignment and computes its summary.
func NewAlignment(chunks []MatchedChunk, score Score) *Alignment {
	aln := &Alignment{
		MatchedChunks:         chunks,
		RescaledMatchedChunks: chunks,
		Score:                 score,
		RescaledScore:         score,
		QueryScalingFactor:    1,
		PValue:                1,
		IsForward:             true,
	}
	aln.summarize()
	return aln
}

func (a *Alignment) summarize() {
	a.QueryMisses = 0
	a.RefMisses = 0
	a.QueryInteriorSize = 0
	a.RefInteriorSize = 0

	a.TotalScore = a.Score.Total()
	a.TotalRescaledScore = a.RescaledScore.Total()

	n := len(a.MatchedChunks)
	a.IsValid = n > 0
	if n == 0 {
		a.NumMatchedSites = 0
		return
	}

	var inner int
	for _, mc := range a.MatchedChunks {
		a.QueryMisses += mc.Query.NumMisses()
		a.RefMisses += mc.Ref.NumMisses()
		if !mc.Query.IsBoundary && !mc.Ref.IsBoundary {
			a.QueryInteriorSize += mc.Query.Size
			a.RefInteriorSize += mc.Ref.Size
			inner++
		}
	}

	if a.QueryInteriorSize > 0 {
		a.QueryScalingFactor = float64(a.RefInteriorSize) / float64(a.QueryInteriorSize)
	} else {
		a.QueryScalingFactor = 1
	}
	if a.RefInteriorSize > 0 {
		a.InteriorSizeRatio = float64(a.QueryInteriorSize) / float64(a.RefInteriorSize)
	} else {
		a.InteriorSizeRatio = 0
	}

	// every chunk boundary inside the alignment is a matched site,
	// plus the two ends when they are not map ends.
	a.NumMatchedSites = n - 1
	if !a.MatchedChunks[0].IsBoundary() {
		a.NumMatchedSites++
	}
	if n > 1 && !a.MatchedChunks[n-1].IsBoundary() {
		a.NumMatchedSites++
	}

	a.QueryMissRate = missRate(a.QueryMisses, a.NumMatchedSites+a.QueryMisses)
	a.RefMissRate = missRate(a.RefMisses, a.NumMatchedSites+a.RefMisses)
	a.TotalMissRate = missRate(a.QueryMisses+a.RefMisses,
		a.QueryMisses+a.RefMisses+2*a.NumMatchedSites)

	a.updateScorePerInnerChunk(inner)
}

func (a *Alignment) updateScorePerInnerChunk(inner int) {
	if inner == 0 {
		inner = 1
	}
	a.ScorePerInnerChunk = a.TotalRescaledScore / float64(inner)
}

func missRate(misses, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(misses) / float64(total)
}

// Rescale multiplies sizes of query chunks by the query scaling factor,
// clamped in [MinQueryScaling, MaxQueryScaling], and recomputes sizing penalties
// of non-boundary chunks from the unrounded rescaled sizes. Sizes stored in
// RescaledMatchedChunks are rounded to integers for output only.
// It always starts from the original chunks, so calling it more than once
// gives the same result.
func (a *Alignment) Rescale(opts *AlignOptions, sp SizingPenalty) {
	if !a.IsValid {
		return
	}
	f := opts.clampScaling(a.QueryScalingFactor)

	rescaled := make([]MatchedChunk, len(a.MatchedChunks))
	var score Score
	var inner int
	var scaled float64
	for i, mc := range a.MatchedChunks {
		scaled = float64(mc.Query.Size) * f
		mc.Query.Size = int(math.Round(scaled))
		if !mc.IsBoundary() {
			mc.Score.Sizing = sp.ScaledPenalty(scaled, mc.Ref.Size)
			inner++
		}
		rescaled[i] = mc
		score = score.Add(mc.Score)
	}

	a.RescaledMatchedChunks = rescaled
	a.RescaledScore = score
	a.TotalRescaledScore = score.Total()
	a.updateScorePerInnerChunk(inner)
}

// PassMissRates tells if the miss rates are within the limits of the options.
func (a *Alignment) PassMissRates(opts *AlignOptions) bool {
	return a.QueryMissRate <= opts.QueryMaxMissRate && a.RefMissRate <= opts.RefMaxMissRate
}

// QueryStart returns the index of the first query fragment in the alignment.
func (a *Alignment) QueryStart() int { return a.MatchedChunks[0].Query.Start }

// QueryEnd returns the index after the last query fragment in the alignment.
func (a *Alignment) QueryEnd() int { return a.MatchedChunks[len(a.MatchedChunks)-1].Query.End }

// RefStart returns the index of the first reference fragment in the alignment.
func (a *Alignment) RefStart() int { return a.MatchedChunks[0].Ref.Start }

// RefEnd returns the index after the last reference fragment in the alignment.
func (a *Alignment) RefEnd() int { return a.MatchedChunks[len(a.MatchedChunks)-1].Ref.End }

// Overlaps tells if the reference spans of two alignments overlap.
func (a *Alignment) Overlaps(b *Alignment) bool {
	return a.RefStart() < b.RefEnd() && b.RefStart() < a.RefEnd()
}

// AlignmentHeader is the header line of the alignment output.
const AlignmentHeader = "query_map\tref_map\tis_forward\tnum_matched_chunks\tquery_misses\tref_misses\t" +
	"query_miss_rate\tref_miss_rate\ttotal_miss_rate\ttotal_score\ttotal_rescaled_score\t" +
	"m_score\tp_value\tsizing_score\tsizing_score_rescaled\tquery_scaling_factor\t" +
	"query_start\tquery_end\tref_start\tref_end\tchunk_string"

// Format formats the alignment as a tab-delimited line, without the newline.
func (a *Alignment) Format() string {
	var buf bytes.Buffer
	a.FormatTo(&buf)
	return buf.String()
}

// FormatTo writes the alignment as a tab-delimited line, without the newline.
func (a *Alignment) FormatTo(buf *bytes.Buffer) {
	if !a.IsValid {
		return
	}
	orient := "F"
	if !a.IsForward {
		orient = "R"
	}
	fmt.Fprintf(buf, "%s\t%s\t%s\t%d\t%d\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4e\t%.4f\t%.4f\t%.4f\t%d\t%d\t%d\t%d\t",
		a.QueryName, a.RefName, orient, len(a.MatchedChunks), a.QueryMisses, a.RefMisses,
		a.QueryMissRate, a.RefMissRate, a.TotalMissRate, a.TotalScore, a.TotalRescaledScore,
		a.MScore, a.PValue, a.Score.Sizing, a.RescaledScore.Sizing, a.QueryScalingFactor,
		a.QueryStart(), a.QueryEnd(), a.RefStart(), a.RefEnd())
	for i, mc := range a.MatchedChunks {
		if i > 0 {
			buf.WriteByte(';')
		}
		buf.WriteString(strconv.Itoa(mc.Query.Start))
		buf.WriteByte(',')
		buf.WriteString(strconv.Itoa(mc.Query.End))
		buf.WriteByte(',')
		buf.WriteString(strconv.Itoa(mc.Query.Size))
		buf.WriteByte(',')
		buf.WriteString(strconv.Itoa(mc.Ref.Start))
		buf.WriteByte(',')
		buf.WriteString(strconv.Itoa(mc.Ref.End))
		buf.WriteByte(',')
		buf.WriteString(strconv.Itoa(mc.Ref.Size))
	}
}

func (a *Alignment) String() string {
	if !a.IsValid {
		return "invalid alignment"
	}
	return a.Format()
}
