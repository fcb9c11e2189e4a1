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
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/maligner/maligner/util"
)

// Motifs are recognition sequences of restriction enzymes, in upper case,
// with reverse complements of non-palindromic ones.
type Motifs [][]byte

// NewMotifs creates motifs from recognition sequences.
func NewMotifs(sites []string) (Motifs, error) {
	motifs := make(Motifs, 0, len(sites)*2)
	for _, site := range sites {
		if site == "" {
			return nil, errors.New("maps: empty recognition sequence")
		}
		s, err := seq.NewSeq(seq.DNAredundant, bytes.ToUpper([]byte(site)))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid recognition sequence: %s", site)
		}
		motifs = append(motifs, s.Seq)

		rc := s.RevCom()
		if !bytes.Equal(rc.Seq, s.Seq) {
			motifs = append(motifs, rc.Seq)
		}
	}
	return motifs, nil
}

// Sites returns sorted unique start positions of motifs in a sequence.
// Sites at the first base are excluded, as they do not cut the sequence.
func (motifs Motifs) Sites(s []byte) []int {
	s = bytes.ToUpper(s)
	sites := make([]int, 0, 128)
	var i, j int
	for _, motif := range motifs {
		for j = 0; j < len(s); {
			i = bytes.Index(s[j:], motif)
			if i < 0 {
				break
			}
			if j+i > 0 {
				sites = append(sites, j+i)
			}
			j += i + 1
		}
	}
	util.UniqInts(&sites)
	return sites
}

// Digest creates an in-silico restriction map of a sequence.
func Digest(name string, s []byte, motifs Motifs) *Map {
	sites := motifs.Sites(s)
	frags := make([]int, 0, len(sites)+1)
	var pre int
	for _, site := range sites {
		frags = append(frags, site-pre)
		pre = site
	}
	if len(s) > pre {
		frags = append(frags, len(s)-pre)
	}
	return NewMap(name, frags)
}
