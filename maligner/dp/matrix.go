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
	"sync"

	"github.com/pkg/errors"
)

// ErrOutOfRange means the row or column is out of the matrix.
var ErrOutOfRange = errors.New("dp: cell out of range")

// Order is the memory layout of a ScoreMatrix.
type Order uint8

const (
	RowMajor Order = iota
	ColMajor
)

func (o Order) String() string {
	switch o {
	case RowMajor:
		return "row-major"
	case ColMajor:
		return "column-major"
	}
	return "unknown"
}

// ScoreCell is a cell of the score matrix.
type ScoreCell struct {
	Row   int
	Col   int
	Score float64

	// index of the predecessor cell in the same matrix, -1 for none.
	Back int

	// column of the row-0 cell where the best path ending here starts.
	RefStart int

	MScore float64
}

// HasBack tells if the cell has a predecessor.
func (c *ScoreCell) HasBack() bool { return c.Back >= 0 }

// IsFilled tells if a path reaches the cell.
func (c *ScoreCell) IsFilled() bool { return !math.IsInf(c.Score, -1) }

func (c ScoreCell) String() string {
	return fmt.Sprintf("(%d, %d): %.4f <- %d", c.Row, c.Col, c.Score, c.Back)
}

// ScoreMatrix is a reusable matrix of ScoreCells stored in one flat slice.
// Its buffer grows when needed and is never shrunk, so one matrix could be
// reused by many alignments in a worker.
type ScoreMatrix struct {
	order Order
	rows  int
	cols  int

	cells []ScoreCell
}

// NewScoreMatrix returns an empty matrix.
func NewScoreMatrix(order Order) *ScoreMatrix {
	return &ScoreMatrix{order: order}
}

// Order returns the memory layout.
func (m *ScoreMatrix) Order() Order { return m.order }

// NumRows returns the number of rows.
func (m *ScoreMatrix) NumRows() int { return m.rows }

// NumCols returns the number of columns.
func (m *ScoreMatrix) NumCols() int { return m.cols }

// Capacity returns the number of cells the buffer could hold.
func (m *ScoreMatrix) Capacity() int { return cap(m.cells) }

// Size returns the number of cells in use.
func (m *ScoreMatrix) Size() int { return m.rows * m.cols }

// Resize changes the shape, the buffer is reallocated only when its capacity is insufficient.
// Cells are not initialized, call Reset after it.
func (m *ScoreMatrix) Resize(rows, cols int) {
	n := rows * cols
	if n > cap(m.cells) {
		m.cells = make([]ScoreCell, n, n+n>>3)
	} else {
		m.cells = m.cells[:n]
	}
	m.rows, m.cols = rows, cols
}

// SetOrder changes the memory layout, the cells should be reset after it.
func (m *ScoreMatrix) SetOrder(order Order) { m.order = order }

// Reset initializes all cells: row 0 with a score of 0, the others with -Inf.
func (m *ScoreMatrix) Reset() {
	ninf := math.Inf(-1)
	var i, j int
	var c *ScoreCell
	for i = 0; i < m.rows; i++ {
		for j = 0; j < m.cols; j++ {
			c = &m.cells[m.index(i, j)]
			c.Row, c.Col = i, j
			c.Score = ninf
			c.Back = -1
			c.RefStart = -1
			c.MScore = 0
		}
	}
	for j = 0; j < m.cols; j++ {
		c = &m.cells[m.index(0, j)]
		c.Score = 0
		c.RefStart = j
	}
}

// index returns the index of a cell in the buffer, without bound checking.
func (m *ScoreMatrix) index(row, col int) int {
	if m.order == RowMajor {
		return row*m.cols + col
	}
	return col*m.rows + row
}

// cell returns the cell of the index, without bound checking.
func (m *ScoreMatrix) cell(idx int) *ScoreCell {
	return &m.cells[idx]
}

// Index returns the index of a cell.
func (m *ScoreMatrix) Index(row, col int) (int, error) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return -1, errors.Wrapf(ErrOutOfRange, "(%d, %d) in a %dx%d matrix", row, col, m.rows, m.cols)
	}
	return m.index(row, col), nil
}

// CellAt returns the cell at (row, col).
func (m *ScoreMatrix) CellAt(row, col int) (*ScoreCell, error) {
	idx, err := m.Index(row, col)
	if err != nil {
		return nil, err
	}
	return &m.cells[idx], nil
}

// Cell returns the cell of an index, e.g., a backpointer.
func (m *ScoreMatrix) Cell(idx int) (*ScoreCell, error) {
	if idx < 0 || idx >= m.rows*m.cols {
		return nil, errors.Wrapf(ErrOutOfRange, "index %d in a %dx%d matrix", idx, m.rows, m.cols)
	}
	return &m.cells[idx], nil
}

// CountFilledByRow returns the number of reachable cells of a row.
func (m *ScoreMatrix) CountFilledByRow(row int) int {
	if row < 0 || row >= m.rows {
		return 0
	}
	var n int
	for j := 0; j < m.cols; j++ {
		if m.cells[m.index(row, j)].IsFilled() {
			n++
		}
	}
	return n
}

// LastRow returns the cells of the last row, in column order.
func (m *ScoreMatrix) LastRow() []*ScoreCell {
	if m.rows == 0 {
		return nil
	}
	row := make([]*ScoreCell, m.cols)
	for j := range row {
		row[j] = &m.cells[m.index(m.rows-1, j)]
	}
	return row
}

// String prints the scores, only for debugging.
func (m *ScoreMatrix) String() string {
	var buf bytes.Buffer
	var c *ScoreCell
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			c = &m.cells[m.index(i, j)]
			if j > 0 {
				buf.WriteByte('\t')
			}
			if c.IsFilled() {
				fmt.Fprintf(&buf, "%.2f", c.Score)
			} else {
				buf.WriteString("-")
			}
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

var poolScoreMatrix = &sync.Pool{New: func() interface{} {
	return NewScoreMatrix(RowMajor)
}}

// GetScoreMatrix returns a matrix from the object pool.
// Please remember to recycle it after using by calling RecycleScoreMatrix.
func GetScoreMatrix(order Order) *ScoreMatrix {
	m := poolScoreMatrix.Get().(*ScoreMatrix)
	m.order = order
	return m
}

// RecycleScoreMatrix puts a matrix back to the object pool.
func RecycleScoreMatrix(m *ScoreMatrix) {
	if m == nil {
		return
	}
	poolScoreMatrix.Put(m)
}
