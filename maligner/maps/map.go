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
	"bytes"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/maligner/maligner/util"
)

// ErrMalformedMap means a line is not a valid map record.
var ErrMalformedMap = errors.New("maps: malformed map record")

// Map is a restriction map: a named list of fragment sizes.
//
// In a maps file, each map is a tab-delimited line:
//
//	name  length  num_frags  frag1  frag2  ...  fragN
type Map struct {
	Name   string
	Length int
	Frags  []int
}

// NewMap creates a map, the length is the sum of fragment sizes.
func NewMap(name string, frags []int) *Map {
	return &Map{Name: name, Length: util.SumInts(frags), Frags: frags}
}

// NumFrags returns the number of fragments.
func (m *Map) NumFrags() int { return len(m.Frags) }

// InnerFrags returns the fragments except the first and the last ones,
// which are bounded by the ends of a map rather than sites.
func (m *Map) InnerFrags() []int {
	if len(m.Frags) < 3 {
		return nil
	}
	return m.Frags[1 : len(m.Frags)-1]
}

// ParseMap parses a map from a line.
func ParseMap(line string) (*Map, error) {
	line = strings.TrimRight(line, "\r\n")
	items := strings.Split(line, "\t")
	if len(items) < 3 {
		return nil, errors.Wrapf(ErrMalformedMap, "only %d columns (<3)", len(items))
	}

	name := items[0]
	if name == "" {
		return nil, errors.Wrap(ErrMalformedMap, "empty map name")
	}
	length, err := strconv.Atoi(items[1])
	if err != nil || length < 0 {
		return nil, errors.Wrapf(ErrMalformedMap, "%s: invalid map length: %s", name, items[1])
	}
	n, err := strconv.Atoi(items[2])
	if err != nil || n < 0 {
		return nil, errors.Wrapf(ErrMalformedMap, "%s: invalid number of fragments: %s", name, items[2])
	}
	if len(items)-3 != n {
		return nil, errors.Wrapf(ErrMalformedMap, "%s: %d fragments expected, %d given", name, n, len(items)-3)
	}

	frags := make([]int, n)
	var f int
	for i, s := range items[3:] {
		f, err = strconv.Atoi(s)
		if err != nil || f <= 0 {
			return nil, errors.Wrapf(ErrMalformedMap, "%s: invalid fragment size: %s", name, s)
		}
		frags[i] = f
	}

	return &Map{Name: name, Length: length, Frags: frags}, nil
}

// Format formats the map as a line, without the newline.
func (m *Map) Format() string {
	var buf bytes.Buffer
	m.FormatTo(&buf)
	return buf.String()
}

// FormatTo writes the map as a line into a buffer, without the newline.
func (m *Map) FormatTo(buf *bytes.Buffer) {
	buf.WriteString(m.Name)
	buf.WriteByte('\t')
	buf.WriteString(strconv.Itoa(m.Length))
	buf.WriteByte('\t')
	buf.WriteString(strconv.Itoa(len(m.Frags)))
	for _, f := range m.Frags {
		buf.WriteByte('\t')
		buf.WriteString(strconv.Itoa(f))
	}
}
