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

// BuildTrail follows backpointers from the cell of index idx,
// and returns cell indexes from the end to the start of the path.
// Rows and columns along a trail strictly decrease, or it panics.
func BuildTrail(m *ScoreMatrix, idx int) []int {
	trail := make([]int, 0, m.NumRows())
	c := m.cell(idx)
	trail = append(trail, idx)

	var p *ScoreCell
	for c.Back >= 0 {
		p = m.cell(c.Back)
		if p.Row >= c.Row || p.Col >= c.Col {
			panic(fmt.Sprintf("dp: invalid backpointer: %s -> (%d, %d)", c, p.Row, p.Col))
		}
		trail = append(trail, c.Back)
		c = p
	}
	return trail
}

// chunksFromTrail converts a trail (end to start) to matched chunks (start to end),
// with scores computed from the task.
func chunksFromTrail(t *Task, trail []int) ([]MatchedChunk, Score) {
	m := t.Matrix
	chunks := make([]MatchedChunk, 0, len(trail)-1)
	qMissPenalties := t.Opts.QueryMissPenalties()
	rMissPenalties := t.Opts.RefMissPenalties()

	var total Score
	var prev, cur *ScoreCell
	var mc MatchedChunk
	for i := len(trail) - 1; i > 0; i-- {
		prev = m.cell(trail[i])
		cur = m.cell(trail[i-1])

		mc = MatchedChunk{
			Query: Chunk{
				Start:      prev.Row,
				End:        cur.Row,
				Size:       sumFrags(t.Query[prev.Row:cur.Row]),
				IsBoundary: t.queryChunkIsBoundary(prev.Row, cur.Row),
			},
			Ref: Chunk{
				Start:      prev.Col + t.RefOffset,
				End:        cur.Col + t.RefOffset,
				Size:       sumFrags(t.Ref[prev.Col:cur.Col]),
				IsBoundary: t.refChunkIsBoundary(prev.Col, cur.Col),
			},
		}
		mc.Score.QueryMiss = qMissPenalties[mc.Query.NumMisses()]
		mc.Score.RefMiss = rMissPenalties[mc.Ref.NumMisses()]
		if !mc.IsBoundary() {
			mc.Score.Sizing = t.Sizing.Penalty(mc.Query.Size, mc.Ref.Size)
		}

		total = total.Add(mc.Score)
		chunks = append(chunks, mc)
	}
	return chunks, total
}

// AlignmentFromTrail builds an alignment from a trail returned by BuildTrail.
// InvalidAlignment is returned for trails with fewer than two cells.
func AlignmentFromTrail(t *Task, trail []int) *Alignment {
	if len(trail) < 2 {
		return InvalidAlignment
	}
	chunks, score := chunksFromTrail(t, trail)
	aln := NewAlignment(chunks, score)
	aln.IsForward = t.IsForward
	aln.QueryName = t.QueryName
	aln.RefName = t.RefName
	return aln
}

// AlignmentFromCell builds the alignment ending at the cell of index idx.
func AlignmentFromCell(t *Task, idx int) *Alignment {
	return AlignmentFromTrail(t, BuildTrail(t.Matrix, idx))
}
