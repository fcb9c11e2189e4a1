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
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shenwei356/maligner/maligner/dp"
	"github.com/shenwei356/maligner/maligner/maps"
	"github.com/shenwei356/util/pathutil"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Align query maps to reference maps",
	Long: `Align query maps to reference maps

Input:
  1. Query maps are given via positional arguments, or the flag -X/--infile-list
     with the list of input files. Plain or compressed files are supported.
  2. Reference maps are given via the flag -r/--ref (multiple values supported),
     or a directory containing map files via the flag -R/--ref-dir, with
     multiple-level sub-directories allowed. A regular expression for matching
     map files is available via the flag --file-regexp.

Alignment:
  1. Each query is aligned to each reference in both orientations.
  2. Alignment options could be given via flags, or a TOML config file
     (-c/--config), see "maligner options".
  3. Multiple non-overlapping alignments are selected from each reference,
     and the alignments of a query are sorted by rescaled scores, the lower the better.
  4. M-scores of alignments are computed from the median and median absolute
     deviation (MAD) of the best --max-alignments-mad rescaled scores.
  5. With --permutations > 0, queries are also aligned to references made by
     shuffling fragments of all references, and the p-value of an alignment
     is the fraction of permuted references with a best score <= its score.
  6. With --ref-is-circular, each reference (and permuted reference) is
     circularized by appending all but its last fragment, so alignments could
     span the origin. Such alignments have ref_end > the number of reference
     fragments, and indexes >= that number are those of the appended fragments.

Output (tab-delimited format):
  1.  query_map,             Query map name
  2.  ref_map,               Reference map name
  3.  is_forward,            Whether the query is aligned in the forward orientation
  4.  num_matched_chunks,    Number of matched chunks
  5.  query_misses,          Unmatched sites in the query
  6.  ref_misses,            Unmatched sites in the reference
  7.  query_miss_rate,       Query miss rate
  8.  ref_miss_rate,         Reference miss rate
  9.  total_miss_rate,       Total miss rate
  10. total_score,           Total score, the lower the better
  11. total_rescaled_score,  Total score after rescaling the query
  12. m_score,               M-score of the rescaled score
  13. p_value,               P-value from the permutation test, 1 if not computed
  14. sizing_score,          Sizing score
  15. sizing_score_rescaled, Sizing score after rescaling the query
  16. query_scaling_factor,  Ratio of reference interior size to query interior size
  17. query_start,           Index of the first aligned query fragment (0-based)
  18. query_end,             Index after the last aligned query fragment
  19. ref_start,             Index of the first aligned reference fragment (0-based)
  20. ref_end,               Index after the last aligned reference fragment
  21. chunk_string,          Matched chunks: query start, end, size, reference start, end, size

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}

		outputLog := opt.Verbose || opt.Log2File
		verbose := opt.Verbose

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

		// ---------------------------------------------------------------
		// flags

		opts := getAlignOptions(cmd)

		method, err := dp.ParseFillMethod(getFlagString(cmd, "fill-method"))
		checkError(err)

		cfg := &AlignConfig{
			Opts:                  opts,
			Method:                method,
			SelectAll:             getFlagBool(cmd, "select-all"),
			MaxAlignments:         getFlagNonNegativeInt(cmd, "max-alignments"),
			MaxAlignmentsMAD:      getFlagNonNegativeInt(cmd, "max-alignments-mad"),
			MinMAD:                getFlagNonNegativeFloat64(cmd, "min-mad"),
			MaxScorePerInnerChunk: getFlagNonNegativeFloat64(cmd, "max-score-per-inner-chunk"),
			MinQueryFrags:         getFlagNonNegativeInt(cmd, "min-query-frags"),
			MaxQueryFrags:         getFlagNonNegativeInt(cmd, "max-query-frags"),
			OnlyForward:           getFlagBool(cmd, "only-forward"),
			RefIsCircular:         getFlagBool(cmd, "ref-is-circular"),
			Threads:               opt.NumCPUs,
		}
		if cfg.MaxQueryFrags > 0 && cfg.MaxQueryFrags < cfg.MinQueryFrags {
			checkError(fmt.Errorf("the value of --max-query-frags (%d) should be >= that of --min-query-frags (%d)",
				cfg.MaxQueryFrags, cfg.MinQueryFrags))
		}

		permutations := getFlagNonNegativeInt(cmd, "permutations")
		seed := getFlagUint64(cmd, "seed")
		plotDir := getFlagString(cmd, "null-plot-dir")
		scoreFile := getFlagString(cmd, "score-file")
		force := getFlagBool(cmd, "force")
		if permutations == 0 && (plotDir != "" || scoreFile != "") {
			checkError(fmt.Errorf("flags --null-plot-dir and --score-file need --permutations > 0"))
		}

		outFile := getFlagString(cmd, "out-file")

		// ---------------------------------------------------------------
		// references

		refFiles := getFlagStringSlice(cmd, "ref")
		if getFlagString(cmd, "ref-dir") != "" {
			if len(refFiles) > 0 {
				checkError(fmt.Errorf("flags -r/--ref and -R/--ref-dir are not compatible"))
			}
			refFiles = getFileListFromDirFlags(cmd, "ref-dir", "file-regexp", opt.NumCPUs)
		} else if len(refFiles) == 0 {
			checkError(fmt.Errorf("flag -r/--ref or -R/--ref-dir needed"))
		}

		refs := make([]*maps.Map, 0, 1024)
		for _, file := range refFiles {
			file = expandPath(file)
			ok, err := pathutil.Exists(file)
			checkError(errors.Wrapf(err, "checking reference file: %s", file))
			if !ok {
				checkError(fmt.Errorf("reference file does not exist: %s", file))
			}
			_refs, err := maps.ReadAll(file)
			checkError(err)
			refs = append(refs, _refs...)
		}
		if len(refs) == 0 {
			checkError(fmt.Errorf("no reference maps given"))
		}
		if outputLog {
			log.Infof("maligner v%s", VERSION)
			log.Info("  https://github.com/shenwei356/maligner")
			log.Info()
			log.Infof("%s reference maps loaded from %d files", humanize.Comma(int64(len(refs))), len(refFiles))
			log.Infof("alignment options: %s", opts)
			log.Infof("fill method: %s, threads: %d", method, opt.NumCPUs)
		}

		aligner, err := NewAligner(refs, cfg)
		checkError(err)

		if permutations > 0 {
			if outputLog {
				log.Infof("generating %s permuted reference maps with a seed of %d ...",
					humanize.Comma(int64(permutations)), seed)
			}
			aligner.SetPermutedReferences(maps.PermutedMaps(refs, permutations, seed, opt.NumCPUs))
		}

		if plotDir != "" {
			makeOutDir(plotDir, force, "--null-plot-dir", outputLog)
		}

		// ---------------------------------------------------------------
		// queries

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		if outputLog {
			if len(files) == 1 && isStdin(files[0]) {
				log.Info("  no files given, reading from stdin")
			} else {
				log.Infof("  %d input file(s) given", len(files))
			}
		}

		queries := make([]*maps.Map, 0, 1024)
		var nBad int
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
						nBad++
						log.Warningf("%s, skipped", err)
						continue
					}
					checkError(err)
				}
				queries = append(queries, m)
			}
			checkError(r.Close())
		}
		if outputLog {
			log.Infof("%s query maps loaded, %d malformed records skipped", humanize.Comma(int64(len(queries))), nBad)
		}

		// ---------------------------------------------------------------
		// output

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()
		fmt.Fprintln(outfh, dp.AlignmentHeader)

		var scorefh *xopen.Writer
		if scoreFile != "" {
			scorefh, err = xopen.Wopen(scoreFile)
			checkError(err)
			defer scorefh.Close()
			fmt.Fprintln(scorefh, "query_map\tnull_scores")
		}

		// process bar
		var pbs *mpb.Progress
		var bar *mpb.Bar
		if verbose {
			pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
			bar = pbs.AddBar(int64(len(queries)),
				mpb.PrependDecorators(
					decor.Name("processed queries: ", decor.WC{W: len("processed queries: "), C: decor.DindentRight}),
					decor.Name("", decor.WCSyncSpaceR),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
					decor.EwmaETA(decor.ET_STYLE_GO, 10),
					decor.OnComplete(decor.Name(""), ". done"),
				),
			)
		}

		var nSkipped, nAligned, nAlns int
		buf := bytes.NewBuffer(make([]byte, 0, 1<<20))
		var startTime time.Time
		for _, m := range queries {
			startTime = time.Now()

			result, err := aligner.Align(m)
			checkError(err)

			if verbose {
				bar.EwmaIncrBy(1, time.Since(startTime))
			}

			if result.Skipped {
				nSkipped++
				continue
			}
			if len(result.Alignments) > 0 {
				nAligned++
				nAlns += len(result.Alignments)
			}

			buf.Reset()
			result.FormatTo(buf)
			outfh.Write(buf.Bytes())

			if scorefh != nil {
				fmt.Fprintf(scorefh, "%s\t%s\n", m.Name, formatFloats(result.Null))
			}
			if plotDir != "" {
				checkError(plotNullDistribution(result, plotDir))
			}
		}

		if verbose {
			pbs.Wait()
		}

		if outputLog {
			log.Infof("%s queries skipped by the number of fragments", humanize.Comma(int64(nSkipped)))
			log.Infof("%s queries aligned, with %s alignments", humanize.Comma(int64(nAligned)), humanize.Comma(int64(nAlns)))
			if outFile != "-" {
				log.Infof("alignments saved to: %s", outFile)
			}
		}
	},
}

func formatFloats(values []float64) string {
	var buf bytes.Buffer
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%.4f", v)
	}
	return buf.String()
}

func init() {
	RootCmd.AddCommand(alignCmd)

	// input

	alignCmd.Flags().StringP("infile-list", "X", "",
		formatFlagUsage("File of query map files, one file per line."))

	alignCmd.Flags().StringSliceP("ref", "r", []string{},
		formatFlagUsage("Reference map file(s)."))

	alignCmd.Flags().StringP("ref-dir", "R", "",
		formatFlagUsage("Directory containing reference map files. Multiple-level sub-directories are allowed."))

	alignCmd.Flags().BoolP("ref-is-circular", "", false,
		formatFlagUsage("Reference maps are circular."))

	alignCmd.Flags().StringP("file-regexp", "", `\.maps?(\.txt)?(\.gz|\.xz|\.zst|\.bz2)?$`,
		formatFlagUsage(`Regular expression for matching map files in -R/--ref-dir, case ignored.`))

	// alignment

	addAlignOptionFlags(alignCmd)

	alignCmd.Flags().StringP("fill-method", "m", dp.FillPrecomputedSizing.String(),
		formatFlagUsage(fmt.Sprintf("Method of filling the score matrix, available values: %s.",
			strings.Join(dp.FillMethods, ", "))))

	alignCmd.Flags().BoolP("select-all", "", false,
		formatFlagUsage("Build alignments of all seeds and select non-overlapping ones greedily."))

	alignCmd.Flags().BoolP("only-forward", "", false,
		formatFlagUsage("Only align queries in the forward orientation."))

	// filters and statistics

	alignCmd.Flags().IntP("max-alignments", "n", 100,
		formatFlagUsage("Maximum number of alignments to output per query, 0 for all."))

	alignCmd.Flags().IntP("max-alignments-mad", "", 100,
		formatFlagUsage("Number of best alignments of a query for computing the median and MAD of m-scores, 0 for all."))

	alignCmd.Flags().Float64P("min-mad", "", 1,
		formatFlagUsage("Minimum MAD in computing m-scores."))

	alignCmd.Flags().Float64P("max-score-per-inner-chunk", "", 0,
		formatFlagUsage("Maximum rescaled score per inner chunk of alignments, 0 for no limit."))

	alignCmd.Flags().IntP("min-query-frags", "", 0,
		formatFlagUsage("Minimum number of fragments of a query."))

	alignCmd.Flags().IntP("max-query-frags", "", 0,
		formatFlagUsage("Maximum number of fragments of a query, 0 for no limit."))

	// permutation test

	alignCmd.Flags().IntP("permutations", "p", 0,
		formatFlagUsage("Number of permuted reference maps for computing p-values, 0 for no permutation test."))

	alignCmd.Flags().Uint64P("seed", "s", 1,
		formatFlagUsage("Seed of generating permuted reference maps."))

	alignCmd.Flags().StringP("null-plot-dir", "", "",
		formatFlagUsage("Directory to save histograms of null scores of queries."))

	alignCmd.Flags().StringP("score-file", "", "",
		formatFlagUsage("File to save null scores of queries."))

	alignCmd.Flags().BoolP("force", "", false,
		formatFlagUsage("Overwrite the existing directory of --null-plot-dir."))

	// output

	alignCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports a ".gz" suffix ("-" for stdout).`))

	alignCmd.SetUsageTemplate(usageTemplate("-r <ref.maps> [query.maps ...] [-o aln.tsv.gz]"))
}
