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
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/rdleal/intervalst/interval"
)

// Orientation is the orientation of a reference and a query in an alignment.
type Orientation uint8

const (
	RFQF Orientation = iota // forward reference, forward query
	RFQR                    // forward reference, reverse query
	RRQF                    // reverse reference, forward query
	RRQR                    // reverse reference, reverse query
)

func (o Orientation) String() string {
	switch o {
	case RFQF:
		return "RF_QF"
	case RFQR:
		return "RF_QR"
	case RRQF:
		return "RR_QF"
	case RRQR:
		return "RR_QR"
	}
	return "unknown"
}

// RefIsForward tells if the reference is in the forward orientation.
func (o Orientation) RefIsForward() bool { return o == RFQF || o == RFQR }

// QueryIsForward tells if the query is in the forward orientation.
func (o Orientation) QueryIsForward() bool { return o == RFQF || o == RRQF }

// ScoreMatrixRecord summarizes a cell of the score matrix, a lightweight
// form of the alignment ending at the cell.
type ScoreMatrixRecord struct {
	Query       string
	Ref         string
	Orientation Orientation

	Row      int
	Col      int // column where the alignment ends
	ColStart int // column where the alignment starts
	Score    float64
	MScore   float64
}

// IsFilled tells if the record comes from a reachable cell.
func (r *ScoreMatrixRecord) IsFilled() bool {
	return !math.IsInf(r.Score, -1) && r.ColStart >= 0
}

// RefStart returns the start of the record in the forward reference.
// Columns of a circularized reference are wrapped into [0, numRefFrags).
func (r *ScoreMatrixRecord) RefStart(numRefFrags int) int {
	var s int
	if r.Orientation.RefIsForward() {
		s = r.ColStart
	} else {
		s = numRefFrags - r.Col
	}
	if s < 0 {
		s += numRefFrags
	} else if s >= numRefFrags {
		s -= numRefFrags
	}
	return s
}

// RefEnd returns the end of the record in the forward reference, in (0, numRefFrags].
// A record spanning the origin of a circular reference has RefEnd <= RefStart.
func (r *ScoreMatrixRecord) RefEnd(numRefFrags int) int {
	var e int
	if r.Orientation.RefIsForward() {
		e = r.Col
	} else {
		e = numRefFrags - r.ColStart
	}
	if e <= 0 {
		e += numRefFrags
	} else if e > numRefFrags {
		e -= numRefFrags
	}
	return e
}

// ScoreMatrixRecordHeader is the header line of ScoreMatrixRecord output.
const ScoreMatrixRecordHeader = "query\tref\torientation\trow\tcol\tcol_start\tscore\tm_score"

// Format formats a record as a tab-delimited line, without the newline.
func (r *ScoreMatrixRecord) Format() string {
	return fmt.Sprintf("%s\t%s\t%s\t%d\t%d\t%d\t%.4f\t%.4f",
		r.Query, r.Ref, r.Orientation, r.Row, r.Col, r.ColStart, r.Score, r.MScore)
}

// ScoreMatrixProfile is a list of records.
type ScoreMatrixProfile []ScoreMatrixRecord

// LastRowProfile returns records of all columns of the last row of a filled matrix.
func LastRowProfile(t *Task, orientation Orientation) ScoreMatrixProfile {
	m := t.Matrix
	if m.NumRows() == 0 {
		return nil
	}
	cells := m.LastRow()
	p := make(ScoreMatrixProfile, len(cells))
	for j, c := range cells {
		p[j] = ScoreMatrixRecord{
			Query:       t.QueryName,
			Ref:         t.RefName,
			Orientation: orientation,
			Row:         c.Row,
			Col:         c.Col,
			ColStart:    c.RefStart,
			Score:       c.Score,
			MScore:      c.MScore,
		}
		if !c.HasBack() {
			p[j].Score = math.Inf(-1)
			p[j].ColStart = -1
		}
	}
	return p
}

// MergeProfiles selects, for each position, the record with the highest score
// among profiles of the same length.
func MergeProfiles(profiles []ScoreMatrixProfile) (ScoreMatrixProfile, error) {
	if len(profiles) == 0 {
		return nil, nil
	}
	n := len(profiles[0])
	for i, p := range profiles {
		if len(p) != n {
			return nil, errors.Errorf("dp: profiles to merge have different lengths: %d (#1), %d (#%d)", n, len(p), i+1)
		}
	}

	merged := make(ScoreMatrixProfile, n)
	copy(merged, profiles[0])
	for _, p := range profiles[1:] {
		for i := range p {
			if p[i].Score > merged[i].Score {
				merged[i] = p[i]
			}
		}
	}
	return merged, nil
}

// RemoveOverlaps keeps reachable records, from the highest score, whose
// reference spans do not overlap kept ones. All records must come from the same reference.
// A span with RefEnd <= RefStart crosses the origin of a circular reference
// and is checked as [RefStart, numRefFrags) and [0, RefEnd).
// The returned records are sorted by descending scores.
func RemoveOverlaps(p ScoreMatrixProfile, numRefFrags int) (ScoreMatrixProfile, error) {
	recs := make(ScoreMatrixProfile, 0, len(p))
	for _, r := range p {
		if r.IsFilled() {
			recs = append(recs, r)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })

	cmpFn := func(x, y int) int { return x - y }
	// a one-fragment span is a point in closed intervals
	itree := interval.NewSearchTreeWithOptions[int, int](cmpFn, interval.TreeWithIntervalPoint())

	kept := recs[:0]
	spans := make([][2]int, 0, 2)
	var s, e int
	var overlapped bool
	var err error
	for i, r := range recs {
		s, e = r.RefStart(numRefFrags), r.RefEnd(numRefFrags)
		spans = spans[:0]
		if e <= s {
			spans = append(spans, [2]int{s, numRefFrags})
			if e > 0 {
				spans = append(spans, [2]int{0, e})
			}
		} else {
			spans = append(spans, [2]int{s, e})
		}

		overlapped = false
		for _, sp := range spans {
			// intervals in the tree are closed
			if _, overlapped = itree.AnyIntersection(sp[0], sp[1]-1); overlapped {
				break
			}
		}
		if overlapped {
			continue
		}
		for _, sp := range spans {
			if err = itree.Insert(sp[0], sp[1]-1, i); err != nil {
				return nil, errors.Wrapf(err, "dp: indexing span [%d, %d) of %s", sp[0], sp[1], r.Ref)
			}
		}
		kept = append(kept, r)
	}
	return kept, nil
}

// ProfileMScores computes m-scores of reachable records, i.e.,
// (score - median) / max(MAD, minMAD). A higher m-score means a better record.
// It returns the MAD.
func ProfileMScores(p ScoreMatrixProfile, minMAD float64) float64 {
	scores := make([]float64, 0, len(p))
	for i := range p {
		if p[i].IsFilled() {
			scores = append(scores, p[i].Score)
		}
	}
	if len(scores) == 0 {
		return 0
	}
	median := Median(scores)
	mad := MAD(scores)
	d := math.Max(mad, minMAD)
	for i := range p {
		if !p[i].IsFilled() || d <= 0 {
			p[i].MScore = 0
			continue
		}
		p[i].MScore = (p[i].Score - median) / d
	}
	return mad
}
