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
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
)

// Reader reads maps from a maps file, plain or compressed.
type Reader struct {
	file string
	fh   *xopen.Reader

	scanner *bufio.Scanner
	line    int
}

// NewReader opens a maps file, "-" for stdin.
func NewReader(file string) (*Reader, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open maps file: %s", file)
	}

	scanner := bufio.NewScanner(fh)
	buf := make([]byte, 1<<20)
	scanner.Buffer(buf, 256<<20)

	return &Reader{file: file, fh: fh, scanner: scanner}, nil
}

// Read returns the next map, or io.EOF at the end.
// A malformed record gives an error wrapping ErrMalformedMap,
// and the following records could still be read.
func (r *Reader) Read() (*Map, error) {
	var line string
	for r.scanner.Scan() {
		r.line++
		line = strings.TrimRight(r.scanner.Text(), "\r\n")
		if line == "" || line[0] == '#' {
			continue
		}
		m, err := ParseMap(line)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: line %d", r.file, r.line)
		}
		return m, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read maps file: %s", r.file)
	}
	return nil, io.EOF
}

// Close closes the file.
func (r *Reader) Close() error {
	return r.fh.Close()
}

// ReadAll reads all maps from a file.
func ReadAll(file string) ([]*Map, error) {
	r, err := NewReader(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	maps := make([]*Map, 0, 8)
	var m *Map
	for {
		m, err = r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		maps = append(maps, m)
	}
	return maps, nil
}
