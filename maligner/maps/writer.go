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

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
)

// Writer writes maps into a file, compressed according to the file extension.
type Writer struct {
	file string
	fh   *xopen.Writer
	buf  bytes.Buffer
}

// NewWriter creates a maps file, "-" for stdout.
func NewWriter(file string) (*Writer, error) {
	fh, err := xopen.Wopen(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to write maps file: %s", file)
	}
	return &Writer{file: file, fh: fh}, nil
}

// Write writes a map.
func (w *Writer) Write(m *Map) error {
	w.buf.Reset()
	m.FormatTo(&w.buf)
	w.buf.WriteByte('\n')
	_, err := w.fh.Write(w.buf.Bytes())
	return err
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	return w.fh.Close()
}

// WriteAll writes maps into a file.
func WriteAll(file string, maps []*Map) error {
	w, err := NewWriter(file)
	if err != nil {
		return err
	}
	for _, m := range maps {
		if err = w.Write(m); err != nil {
			w.Close()
			return errors.Wrapf(err, "failed to write maps file: %s", file)
		}
	}
	return w.Close()
}
