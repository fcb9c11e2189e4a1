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

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shenwei356/maligner/maligner/dp"
	"github.com/shenwei356/maligner/maligner/maps"
)

func testConfig() *AlignConfig {
	opts := dp.DefaultAlignOptions
	return &AlignConfig{
		Opts:             &opts,
		Method:           dp.FillPrecomputedSizing,
		MaxAlignmentsMAD: 100,
		MinMAD:           1,
		Threads:          2,
	}
}

func TestAligner(t *testing.T) {
	refs := []*maps.Map{
		maps.NewMap("r1", []int{1000, 2000, 3000, 4000, 5000}),
		maps.NewMap("r2", []int{7000, 7000, 7000, 7000}),
	}
	cfg := testConfig()
	aligner, err := NewAligner(refs, cfg)
	if err != nil {
		t.Error(err)
		return
	}

	result, err := aligner.Align(maps.NewMap("q", []int{500, 3000, 1000}))
	if err != nil {
		t.Error(err)
		return
	}
	if result.Skipped || len(result.Alignments) == 0 {
		t.Errorf("no alignments found")
		return
	}

	best := result.Alignments[0]
	if best.RefName != "r1" || !best.IsForward || best.RefStart() != 1 || best.RefEnd() != 4 ||
		best.TotalRescaledScore != 0 {
		t.Errorf("unexpected best alignment: %s", best.Format())
	}
	for i := 1; i < len(result.Alignments); i++ {
		if result.Alignments[i].TotalRescaledScore < result.Alignments[i-1].TotalRescaledScore {
			t.Errorf("alignments not sorted by rescaled scores")
		}
		if result.Alignments[i].PValue != 1 {
			t.Errorf("p-values should not be computed without permutations")
		}
	}
	if best.MScore > 0 {
		t.Errorf("the best alignment should have a non-positive m-score: %f", best.MScore)
	}

	// filtered by the number of fragments
	cfg.MinQueryFrags = 4
	if result, _ = aligner.Align(maps.NewMap("q", []int{500, 3000, 1000})); !result.Skipped {
		t.Errorf("the query should be skipped")
	}
	cfg.MinQueryFrags = 0

	// limit of output
	cfg.MaxAlignments = 1
	if result, _ = aligner.Align(maps.NewMap("q", []int{500, 3000, 1000})); len(result.Alignments) != 1 {
		t.Errorf("unexpected number of alignments: %d", len(result.Alignments))
	}
}

func TestAlignerPermutation(t *testing.T) {
	refs := []*maps.Map{
		maps.NewMap("r1", []int{1000, 2000, 3000, 4000, 5000, 1500, 2500, 3500}),
		maps.NewMap("r2", []int{4500, 5500, 6500, 1200, 2200}),
	}
	cfg := testConfig()
	cfg.MaxAlignments = 3
	aligner, err := NewAligner(refs, cfg)
	if err != nil {
		t.Error(err)
		return
	}
	aligner.SetPermutedReferences(maps.PermutedMaps(refs, 20, 1, 2))

	result, err := aligner.Align(maps.NewMap("q", []int{800, 3000, 4000, 5000, 700}))
	if err != nil {
		t.Error(err)
		return
	}
	if len(result.Null) == 0 || len(result.Null) > 20 {
		t.Errorf("unexpected size of null distribution: %d", len(result.Null))
	}
	for i := 1; i < len(result.Null); i++ {
		if result.Null[i] < result.Null[i-1] {
			t.Errorf("null scores not sorted")
			break
		}
	}
	for _, aln := range result.Alignments {
		if aln.PValue < 0 || aln.PValue > 1 {
			t.Errorf("invalid p-value: %f", aln.PValue)
		}
	}

	dir := t.TempDir()
	if err = plotNullDistribution(result, dir); err != nil {
		t.Error(err)
		return
	}
	if _, err = os.Stat(filepath.Join(dir, "q.png")); err != nil {
		t.Errorf("plot not saved: %s", err)
	}
}

func TestProfileQuery(t *testing.T) {
	opts := dp.DefaultAlignOptions
	refs := maps.NewRefMaps([]*maps.Map{maps.NewMap("r", []int{1000, 2000, 3000, 4000, 5000})}, &opts, false)

	records, err := profileQuery(maps.NewMap("q", []int{500, 3000, 1000}), refs, &opts, dp.FillCellQueue, 1, 2)
	if err != nil {
		t.Error(err)
		return
	}
	if len(records) == 0 {
		t.Errorf("no records")
		return
	}
	r := records[0]
	if r.Score != 0 || r.RefStart(r.numRefFrags) != 1 || r.RefEnd(r.numRefFrags) != 4 {
		t.Errorf("unexpected best record: %s", r.Format())
	}
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			a, b := records[i], records[j]
			if a.RefStart(5) < b.RefEnd(5) && b.RefStart(5) < a.RefEnd(5) {
				t.Errorf("overlapping records: %s, %s", a.Format(), b.Format())
			}
		}
	}
}

func TestAlignerCircular(t *testing.T) {
	refs := []*maps.Map{maps.NewMap("r", []int{1000, 2000, 3000, 4000, 5000, 6000, 7000})}
	// 5000 (partial), 6000, 7000, 1000, 2000, 3000 (partial)
	query := maps.NewMap("q", []int{500, 6000, 7000, 1000, 2000, 800})

	cfg := testConfig()
	cfg.SelectAll = true
	cfg.RefIsCircular = true
	aligner, err := NewAligner(refs, cfg)
	if err != nil {
		t.Error(err)
		return
	}
	result, err := aligner.Align(query)
	if err != nil {
		t.Error(err)
		return
	}
	if len(result.Alignments) == 0 {
		t.Errorf("no alignments found")
		return
	}
	best := result.Alignments[0]
	if !best.IsForward || best.RefStart() != 4 || best.RefEnd() != 10 || best.TotalRescaledScore != 0 {
		t.Errorf("unexpected best alignment: %s", best.Format())
	}
	for _, aln := range result.Alignments {
		if aln.RefStart() >= 7 {
			t.Errorf("alignment in appended fragments: %s", aln.Format())
		}
	}

	// permuted references are made from the original fragments, then circularized
	aligner.SetPermutedReferences(maps.PermutedMaps(refs, 5, 1, 2))
	for _, frags := range aligner.permuted {
		if len(frags) != 13 {
			t.Errorf("unexpected number of fragments of a circularized permuted reference: %d", len(frags))
		}
	}
	if len(refs[0].Frags) != 7 {
		t.Errorf("reference fragments modified: %v", refs[0].Frags)
	}

	// linear references
	cfg = testConfig()
	cfg.SelectAll = true
	if aligner, err = NewAligner(refs, cfg); err != nil {
		t.Error(err)
		return
	}
	if result, err = aligner.Align(query); err != nil {
		t.Error(err)
		return
	}
	for _, aln := range result.Alignments {
		if aln.RefEnd() > 7 || aln.TotalRescaledScore == 0 {
			t.Errorf("unexpected alignment to a linear reference: %s", aln.Format())
		}
	}

	// profiles
	opts := dp.DefaultAlignOptions
	records, err := profileQuery(query, maps.NewRefMaps(refs, &opts, true), &opts, dp.FillPartialSums, 1, 2)
	if err != nil {
		t.Error(err)
		return
	}
	if len(records) == 0 {
		t.Errorf("no records")
		return
	}
	r := records[0]
	if r.Score != 0 || r.numRefFrags != 7 || r.RefStart(7) != 4 || r.RefEnd(7) != 3 {
		t.Errorf("unexpected best record: %s, [%d, %d)", r.Format(), r.RefStart(7), r.RefEnd(7))
	}
	for _, rec := range records[1:] {
		if s, e := rec.RefStart(7), rec.RefEnd(7); e <= s || s < 3 || e > 4 {
			t.Errorf("record overlapping the best one: %s, [%d, %d)", rec.Format(), s, e)
		}
	}
}

func TestAlignOptionsConfig(t *testing.T) {
	dir := t.TempDir()

	opts := dp.DefaultAlignOptions
	opts.RefMaxMisses = 7
	opts.SDRate = 0.05
	opts.RefIsBounded = true
	file := filepath.Join(dir, "options.toml")
	if err := writeAlignOptions(file, &opts); err != nil {
		t.Error(err)
		return
	}
	opts2, err := readAlignOptions(file)
	if err != nil {
		t.Error(err)
		return
	}
	if *opts2 != opts {
		t.Errorf("options differ after reading: %+v vs %+v", *opts2, opts)
	}

	// missing keys keep default values
	file = filepath.Join(dir, "partial.toml")
	if err = os.WriteFile(file, []byte("query-max-misses = 1\nmin-sd = 500.0\n"), 0644); err != nil {
		t.Error(err)
		return
	}
	if opts2, err = readAlignOptions(file); err != nil {
		t.Error(err)
		return
	}
	if opts2.QueryMaxMisses != 1 || opts2.MinSD != 500 || opts2.RefMaxMisses != dp.DefaultAlignOptions.RefMaxMisses {
		t.Errorf("unexpected options: %+v", *opts2)
	}

	file = filepath.Join(dir, "unknown.toml")
	if err = os.WriteFile(file, []byte("query-max-mises = 1\n"), 0644); err != nil {
		t.Error(err)
		return
	}
	if _, err = readAlignOptions(file); err == nil {
		t.Errorf("unknown keys should not be accepted")
	}
}

func TestFileNames(t *testing.T) {
	for _, c := range []struct{ file, name, ext, ext2 string }{
		{"ref.maps", "ref", ".maps", ""},
		{"ref.maps.gz", "ref", ".maps", ".gz"},
		{"dir/ref.MAPS.GZ", "dir/ref", ".MAPS", ".gz"},
	} {
		name, ext, ext2 := filepathTrimExtension(c.file, nil)
		if name != c.name || ext != c.ext || ext2 != c.ext2 {
			t.Errorf("%s: unexpected result: %s, %s, %s", c.file, name, ext, ext2)
		}
	}

	if s := fileNameOf("chr1/part 2"); s != "chr1_part_2" {
		t.Errorf("unexpected file name: %s", s)
	}
}
