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
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shenwei356/maligner/maligner/dp"
	"github.com/shenwei356/maligner/maligner/maps"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile the last rows of score matrices of query maps",
	Long: `Profile the last rows of score matrices of query maps

Each query is aligned to each reference in four orientations:
  RF_QF: forward reference, forward query,
  RF_QR: forward reference, reverse query,
  RR_QF: reverse reference, forward query,
  RR_QR: reverse reference, reverse query.

Every cell of the last row of a score matrix ends an alignment of the whole
query. For each reference orientation, records of the two query orientations
are merged by keeping the higher score of each column. Records overlapping
better ones on the forward reference are removed, and m-scores are computed
from scores of all remaining records of a query. Here scores are negative
penalties, so the higher the better.

Output (tab-delimited format):
  1. query,        Query map name
  2. ref,          Reference map name
  3. orientation,  Orientation
  4. row,          Row of the cell, i.e., the number of query fragments
  5. col,          Column where the alignment ends, in the oriented reference
  6. col_start,    Column where the alignment starts, in the oriented reference
  7. score,        Score of the cell
  8. m_score,      M-score
  9. ref_start,    Start of the alignment in the forward reference (0-based)
  10. ref_end,     End of the alignment in the forward reference,
                   <= ref_start if it spans the origin of a circular reference

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}

		outputLog := opt.Verbose || opt.Log2File

		timeStart := time.Now()
		defer func() {
			if outputLog {
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
				log.Info()
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		opts := getAlignOptions(cmd)
		method, err := dp.ParseFillMethod(getFlagString(cmd, "fill-method"))
		checkError(err)
		minMAD := getFlagNonNegativeFloat64(cmd, "min-mad")
		maxRecords := getFlagNonNegativeInt(cmd, "max-records")
		outFile := getFlagString(cmd, "out-file")

		refFile := getFlagString(cmd, "ref")
		if refFile == "" {
			checkError(fmt.Errorf("flag -r/--ref needed"))
		}
		refMaps, err := maps.ReadAll(expandPath(refFile))
		checkError(err)
		refs := maps.NewRefMaps(refMaps, opts, getFlagBool(cmd, "ref-is-circular"))

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()
		fmt.Fprintf(outfh, "%s\tref_start\tref_end\n", dp.ScoreMatrixRecordHeader)

		var nQueries, nRecords int
		buf := bytes.NewBuffer(make([]byte, 0, 1<<20))
		for _, file := range files {
			r, err := maps.NewReader(file)
			checkError(err)
			for {
				m, err := r.Read()
				if err != nil {
					if err == io.EOF {
						break
					}
					if errors.Cause(err) == maps.ErrMalformedMap {
						log.Warningf("%s, skipped", err)
						continue
					}
					checkError(err)
				}

				records, err := profileQuery(m, refs, opts, method, minMAD, opt.NumCPUs)
				checkError(err)
				if maxRecords > 0 && len(records) > maxRecords {
					records = records[:maxRecords]
				}

				buf.Reset()
				for _, rec := range records {
					buf.WriteString(rec.Format())
					buf.WriteByte('\t')
					buf.WriteString(strconv.Itoa(rec.RefStart(rec.numRefFrags)))
					buf.WriteByte('\t')
					buf.WriteString(strconv.Itoa(rec.RefEnd(rec.numRefFrags)))
					buf.WriteByte('\n')
				}
				outfh.Write(buf.Bytes())

				nQueries++
				nRecords += len(records)
			}
			checkError(r.Close())
		}

		if outputLog {
			log.Infof("%s records of %s queries written", humanize.Comma(int64(nRecords)), humanize.Comma(int64(nQueries)))
		}
	},
}

// profileRecord is a record with the number of fragments of its reference.
type profileRecord struct {
	dp.ScoreMatrixRecord
	numRefFrags int
}

// profileQuery computes non-overlapping last-row records of a query against all
// references, sorted by descending m-scores.
func profileQuery(m *maps.Map, refs []*maps.RefMap, opts *dp.AlignOptions,
	method dp.FillMethod, minMAD float64, threads int) ([]profileRecord, error) {
	q := maps.NewQueryMap(m, opts)
	precomputed := method == dp.FillPrecomputedSizing

	kept := make([]dp.ScoreMatrixProfile, len(refs))
	errs := make([]error, len(refs))

	var wg sync.WaitGroup
	tokens := make(chan int, threads)
	for i, ref := range refs {
		tokens <- 1
		wg.Add(1)
		go func(i int, ref *maps.RefMap) {
			defer func() {
				wg.Done()
				<-tokens
			}()

			mat := dp.GetScoreMatrix(dp.RowMajor)
			defer dp.RecycleScoreMatrix(mat)

			var profiles [4]dp.ScoreMatrixProfile
			for _, o := range []dp.Orientation{dp.RFQF, dp.RFQR, dp.RRQF, dp.RRQR} {
				t := ref.Task(q, o.QueryIsForward(), o.RefIsForward(), opts, mat, precomputed)
				if err := dp.Fill(t, method); err != nil {
					errs[i] = errors.Wrapf(err, "profiling %s against %s", m.Name, ref.Name)
					return
				}
				profiles[o] = dp.LastRowProfile(t, o)
			}

			var merged dp.ScoreMatrixProfile
			for _, pair := range [][]dp.ScoreMatrixProfile{profiles[:2], profiles[2:]} {
				p, err := dp.MergeProfiles(pair)
				if err != nil {
					errs[i] = err
					return
				}
				merged = append(merged, p...)
			}
			var err error
			if kept[i], err = dp.RemoveOverlaps(merged, ref.NumFrags()); err != nil {
				errs[i] = err
			}
		}(i, ref)
	}
	wg.Wait()

	var all dp.ScoreMatrixProfile
	nFrags := make([]int, 0, 1024)
	for i, p := range kept {
		if errs[i] != nil {
			return nil, errs[i]
		}
		all = append(all, p...)
		for range p {
			nFrags = append(nFrags, refs[i].NumFrags())
		}
	}
	dp.ProfileMScores(all, minMAD)

	records := make([]profileRecord, len(all))
	for i, rec := range all {
		records[i] = profileRecord{ScoreMatrixRecord: rec, numRefFrags: nFrags[i]}
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].MScore > records[j].MScore })
	return records, nil
}

func init() {
	RootCmd.AddCommand(profileCmd)

	profileCmd.Flags().StringP("infile-list", "X", "",
		formatFlagUsage("File of query map files, one file per line."))

	profileCmd.Flags().StringP("ref", "r", "",
		formatFlagUsage("Reference map file."))

	profileCmd.Flags().BoolP("ref-is-circular", "", false,
		formatFlagUsage("Reference maps are circular. Records could span the origin, with ref_end <= ref_start."))

	addAlignOptionFlags(profileCmd)

	profileCmd.Flags().StringP("fill-method", "m", dp.FillPrecomputedSizing.String(),
		formatFlagUsage(fmt.Sprintf("Method of filling the score matrix, available values: %s.",
			strings.Join(dp.FillMethods, ", "))))

	profileCmd.Flags().Float64P("min-mad", "", 1,
		formatFlagUsage("Minimum MAD in computing m-scores."))

	profileCmd.Flags().IntP("max-records", "n", 100,
		formatFlagUsage("Maximum number of records to output per query, 0 for all."))

	profileCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports a ".gz" suffix ("-" for stdout).`))

	profileCmd.SetUsageTemplate(usageTemplate("-r <ref.maps> [query.maps ...] [-o profile.tsv.gz]"))
}
