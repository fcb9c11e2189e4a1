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
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/shenwei356/maligner/maligner/dp"
)

func TestParseMap(t *testing.T) {
	m, err := ParseMap("chr1\t3600\t3\t1000\t2000\t600\n")
	if err != nil {
		t.Error(err)
		return
	}
	if m.Name != "chr1" || m.Length != 3600 || m.NumFrags() != 3 || m.Frags[1] != 2000 {
		t.Errorf("unexpected map: %v", m)
	}
	if s := m.Format(); s != "chr1\t3600\t3\t1000\t2000\t600" {
		t.Errorf("unexpected format: %q", s)
	}

	bad := []string{
		"chr1\t3600",
		"\t3600\t1\t3600",
		"chr1\tx\t1\t3600",
		"chr1\t3600\t2\t3600",
		"chr1\t3600\t2\t3600\t0",
		"chr1\t3600\t2\t3600\t-5",
		"chr1\t3600\t1\tabc",
	}
	for i, line := range bad {
		if _, err = ParseMap(line); errors.Cause(err) != ErrMalformedMap {
			t.Errorf("#%d: expected ErrMalformedMap for %q, got %v", i, line, err)
		}
	}
}

func TestReadWriteMaps(t *testing.T) {
	maps := []*Map{
		NewMap("a", []int{1000, 2000, 3000}),
		NewMap("b", []int{500}),
		NewMap("c", []int{7000, 8000, 9000, 10000}),
	}

	dir := t.TempDir()
	for _, name := range []string{"maps.txt", "maps.txt.gz"} {
		file := filepath.Join(dir, name)
		if err := WriteAll(file, maps); err != nil {
			t.Error(err)
			return
		}
		maps2, err := ReadAll(file)
		if err != nil {
			t.Error(err)
			return
		}
		if len(maps2) != len(maps) {
			t.Errorf("%s: unexpected number of maps: %d", name, len(maps2))
			continue
		}
		for i := range maps {
			if maps2[i].Format() != maps[i].Format() {
				t.Errorf("%s: map #%d differs: %s vs %s", name, i, maps2[i].Format(), maps[i].Format())
			}
		}
	}
}

func TestReaderSkipsMalformed(t *testing.T) {
	file := filepath.Join(t.TempDir(), "maps.txt")
	data := "a\t300\t2\t100\t200\n\n# comment\nbad\tline\nb\t50\t1\t50\n"
	if err := os.WriteFile(file, []byte(data), 0644); err != nil {
		t.Error(err)
		return
	}

	r, err := NewReader(file)
	if err != nil {
		t.Error(err)
		return
	}
	defer r.Close()

	var names []string
	var nBad int
	for {
		m, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			if errors.Cause(err) == ErrMalformedMap {
				nBad++
				continue
			}
			t.Error(err)
			return
		}
		names = append(names, m.Name)
	}
	if nBad != 1 || len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected reading result: %v, %d malformed", names, nBad)
	}

	if _, err = ReadAll(file); errors.Cause(err) != ErrMalformedMap {
		t.Errorf("expected ErrMalformedMap, got %v", err)
	}
}

func TestPermutedMaps(t *testing.T) {
	refs := []*Map{
		NewMap("a", []int{1, 2, 3, 4, 5}),
		NewMap("b", []int{10, 20, 30}),
	}
	all := []int{1, 2, 3, 4, 5, 10, 20, 30}

	p1 := PermutedMaps(refs, 5, 42, 1)
	p2 := PermutedMaps(refs, 5, 42, 4)
	if len(p1) != 5 || len(p2) != 5 {
		t.Errorf("unexpected number of permuted maps: %d, %d", len(p1), len(p2))
		return
	}
	for i := range p1 {
		if p1[i].Format() != p2[i].Format() {
			t.Errorf("permuted maps depend on threads: %s vs %s", p1[i].Format(), p2[i].Format())
		}
		if p1[i].Length != 75 {
			t.Errorf("unexpected total size: %d", p1[i].Length)
		}
		frags := append([]int{}, p1[i].Frags...)
		sort.Ints(frags)
		for j := range all {
			if frags[j] != all[j] {
				t.Errorf("fragments not preserved: %v", p1[i].Frags)
				break
			}
		}
	}

	if PermutedMaps(refs, 0, 1, 1) != nil {
		t.Errorf("expected no maps")
	}
}

func TestSummarize(t *testing.T) {
	maps := []*Map{
		NewMap("a", []int{100, 200, 300, 400}),
		NewMap("b", []int{100, 500, 100}),
	}

	s := Summarize(maps, true)
	if s.NumMaps != 2 || s.NumFrags != 7 {
		t.Errorf("unexpected counts: %d, %d", s.NumMaps, s.NumFrags)
	}
	if s.FragLength.Min != 100 || s.FragLength.Max != 500 || math.Abs(s.FragLength.Mean-1700.0/7) > 1e-9 {
		t.Errorf("unexpected fragment stats: %+v", s.FragLength)
	}
	if s.MapLength.Min != 700 || s.MapLength.Max != 1000 {
		t.Errorf("unexpected map length stats: %+v", s.MapLength)
	}

	s = Summarize(maps, false)
	if s.NumFrags != 3 || s.FragsPerMap.Max != 2 || s.FragsPerMap.Min != 1 {
		t.Errorf("unexpected counts without terminal fragments: %d, %+v", s.NumFrags, s.FragsPerMap)
	}
	if s.MapLength.Min != 500 || s.MapLength.Max != 500 ||
		s.FragLength.Q1 < s.FragLength.Min || s.FragLength.Q2 < s.FragLength.Q1 ||
		s.FragLength.Q3 < s.FragLength.Q2 || s.FragLength.Max < s.FragLength.Q3 {
		t.Errorf("unexpected stats without terminal fragments: %+v, %+v", s.MapLength, s.FragLength)
	}

	if s = Summarize(nil, true); s.NumMaps != 0 || s.FragLength.N != 0 {
		t.Errorf("unexpected summary of no maps")
	}
}

func TestDigest(t *testing.T) {
	motifs, err := NewMotifs([]string{"gaattc", "GGATCC"})
	if err != nil {
		t.Error(err)
		return
	}
	if len(motifs) != 2 {
		t.Errorf("palindromic motifs should not be duplicated: %d", len(motifs))
	}

	s := []byte("AAAAGAATTCAAAAAAGGATCCAAgaattc")
	m := Digest("s", s, motifs)
	if m.Length != len(s) || m.NumFrags() != 4 {
		t.Errorf("unexpected map: %s", m.Format())
		return
	}
	expected := []int{4, 12, 8, 6}
	for i, f := range expected {
		if m.Frags[i] != f {
			t.Errorf("unexpected fragments: %v, expected %v", m.Frags, expected)
			break
		}
	}

	// non-palindromic motif and its reverse complement
	motifs, _ = NewMotifs([]string{"GCTCTTC"})
	if len(motifs) != 2 {
		t.Errorf("expected the reverse complement motif")
	}
	m = Digest("s", []byte("AAGCTCTTCAAAAGAAGAGCAA"), motifs)
	if m.NumFrags() != 3 || m.Frags[0] != 2 || m.Frags[1] != 11 {
		t.Errorf("unexpected fragments: %v", m.Frags)
	}
}

func TestWrappers(t *testing.T) {
	opts := dp.DefaultAlignOptions
	m := NewMap("r", []int{1000, 2000, 3000, 4000, 5000})
	r := NewRefMap(m, &opts, false)
	q := NewQueryMap(NewMap("q", []int{500, 3000, 1000}), &opts)

	frags, ps := r.Oriented(false)
	if frags[0] != 5000 || ps.Size(2, 2) != 9000 {
		t.Errorf("unexpected reverse fragments: %v", frags)
	}
	if m.Frags[0] != 1000 {
		t.Errorf("original fragments modified")
	}

	task := r.Task(q, true, true, &opts, dp.NewScoreMatrix(dp.RowMajor), true)
	aln, ok, err := task.BestAlignment(dp.FillPrecomputedSizing)
	if err != nil || !ok {
		t.Errorf("failed to align: %v", err)
		return
	}
	if aln.QueryName != "q" || aln.RefName != "r" || aln.RefStart() != 1 || aln.RefEnd() != 4 {
		t.Errorf("unexpected alignment: %s", aln)
	}
}

func TestCircularRefMap(t *testing.T) {
	if c := CircularizedFrags([]int{7}); len(c) != 1 || c[0] != 7 {
		t.Errorf("unexpected circularized single fragment: %v", c)
	}

	opts := dp.DefaultAlignOptions
	m := NewMap("r", []int{1000, 2000, 3000, 4000, 5000})
	r := NewRefMap(m, &opts, true)
	if !r.IsCircular || r.NumFrags() != 5 || len(m.Frags) != 5 {
		t.Errorf("the map itself should not be circularized: %v", m.Frags)
	}

	expected := []int{1000, 2000, 3000, 4000, 5000, 1000, 2000, 3000, 4000}
	frags, ps := r.Oriented(true)
	if len(frags) != len(expected) {
		t.Errorf("unexpected circularized fragments: %v", frags)
		return
	}
	for i, f := range expected {
		if frags[i] != f {
			t.Errorf("unexpected circularized fragments: %v, expected %v", frags, expected)
			break
		}
	}
	if ps.Size(6, 2) != 6000 {
		t.Errorf("unexpected partial sum across the origin: %d", ps.Size(6, 2))
	}

	expected = []int{5000, 4000, 3000, 2000, 1000, 5000, 4000, 3000, 2000}
	frags, _ = r.Oriented(false)
	for i, f := range expected {
		if frags[i] != f {
			t.Errorf("unexpected circularized reverse fragments: %v, expected %v", frags, expected)
			break
		}
	}

	// the query spans the origin: 4000 (partial), 5000, 1000, 2000, 3000 (partial)
	q := NewQueryMap(NewMap("q", []int{500, 5000, 1000, 2000, 300}), &opts)
	task := r.Task(q, true, true, &opts, dp.NewScoreMatrix(dp.RowMajor), true)
	aln, ok, err := task.BestAlignment(dp.FillPrecomputedSizing)
	if err != nil || !ok {
		t.Errorf("failed to align: %v", err)
		return
	}
	if aln.RefStart() != 3 || aln.RefEnd() != 8 || aln.TotalScore != 0 {
		t.Errorf("unexpected alignment across the origin: %s", aln.Format())
	}
	if r.IsDuplicate(aln) {
		t.Errorf("an alignment starting in the map is not a duplicate")
	}
	aln.MatchedChunks[0].Ref.Start = 5
	if !r.IsDuplicate(aln) {
		t.Errorf("an alignment in appended fragments is a duplicate")
	}

	// not aligned across the origin without circularization
	r = NewRefMap(m, &opts, false)
	task = r.Task(q, true, true, &opts, dp.NewScoreMatrix(dp.RowMajor), true)
	if aln, ok, err = task.BestAlignment(dp.FillPrecomputedSizing); err != nil {
		t.Error(err)
		return
	}
	if ok && aln.TotalScore == 0 {
		t.Errorf("unexpected perfect alignment to a linear map: %s", aln.Format())
	}
	if ok && r.IsDuplicate(aln) {
		t.Errorf("alignments to a linear map are never duplicates")
	}
}
