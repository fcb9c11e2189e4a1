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
	"container/heap"

	"github.com/bits-and-blooms/bitset"
)

type cellPos struct {
	row, col int
}

// cellQueue is a priority queue of cells, ordered by (row, col).
type cellQueue []cellPos

func (q cellQueue) Len() int { return len(q) }

func (q cellQueue) Less(i, j int) bool {
	if q[i].row == q[j].row {
		return q[i].col < q[j].col
	}
	return q[i].row < q[j].row
}

func (q cellQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *cellQueue) Push(x interface{}) { *q = append(*q, x.(cellPos)) }

func (q *cellQueue) Pop() interface{} {
	old := *q
	n := len(old)
	c := old[n-1]
	*q = old[:n-1]
	return c
}

// activator records cells reachable from a resolved cell.
// Each cell is activated at most once.
type activator struct {
	rows, cols int
	qSteps     int // QueryMaxMisses + 1
	rSteps     int // RefMaxMisses + 1

	marks *bitset.BitSet
	queue *cellQueue // nil for the marking strategy
}

func newActivator(t *Task, rows, cols int, withQueue bool) *activator {
	a := &activator{
		rows:   rows,
		cols:   cols,
		qSteps: t.Opts.QueryMaxMisses + 1,
		rSteps: t.Opts.RefMaxMisses + 1,
		marks:  bitset.New(uint(rows * cols)),
	}
	if withQueue {
		q := make(cellQueue, 0, 1024)
		a.queue = &q
	}
	return a
}

// activateFrom activates all successors of the cell (row, col).
func (a *activator) activateFrom(row, col int) {
	var i, j int
	var k uint
	for i = row + 1; i <= row+a.qSteps && i < a.rows; i++ {
		for j = col + 1; j <= col+a.rSteps && j < a.cols; j++ {
			k = uint(i*a.cols + j)
			if a.marks.Test(k) {
				continue
			}
			a.marks.Set(k)
			if a.queue != nil {
				heap.Push(a.queue, cellPos{i, j})
			}
		}
	}
}

func (a *activator) isActive(row, col int) bool {
	return a.marks.Test(uint(row*a.cols + col))
}

func (a *activator) pop() (cellPos, bool) {
	if a.queue.Len() == 0 {
		return cellPos{}, false
	}
	return heap.Pop(a.queue).(cellPos), true
}
