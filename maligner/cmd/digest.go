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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/maligner/maligner/maps"
	"github.com/spf13/cobra"
)

// Enzymes are recognition sequences of some restriction enzymes used in optical mapping.
var Enzymes = map[string]string{
	"BamHI": "GGATCC",
	"BspQI": "GCTCTTC",
	"BssSI": "CACGAG",
	"KpnI":  "GGTACC",
	"NcoI":  "CCATGG",
	"NdeI":  "CATATG",
	"NheI":  "GCTAGC",
	"SpeI":  "ACTAGT",
	"XhoI":  "CTCGAG",
	"AflII": "CTTAAG",
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Create in-silico restriction maps from FASTA/Q sequences",
	Long: fmt.Sprintf(`Create in-silico restriction maps from FASTA/Q sequences

Each sequence is cut at all positions of the recognition sequences of the
given enzymes (-e/--enzyme) or sites (-s/--site) on both strands, and the
lengths of the fragments form a map named after the sequence ID.
With -N/--name-by-file, maps are named after the file name with extensions
removed, followed by the index of the sequence in the file, e.g., "GCF_000005845_1".

Available enzymes:
  %s

`, strings.Join(enzymeNames(), ", ")),
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

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

		sites := getFlagStringSlice(cmd, "site")
		for _, e := range getFlagStringSlice(cmd, "enzyme") {
			site, ok := Enzymes[e]
			if !ok {
				checkError(fmt.Errorf("unknown enzyme: %s, available: %s", e, strings.Join(enzymeNames(), ", ")))
			}
			sites = append(sites, site)
		}
		if len(sites) == 0 {
			checkError(fmt.Errorf("flag -e/--enzyme or -s/--site needed"))
		}
		motifs, err := maps.NewMotifs(sites)
		checkError(err)

		minFrags := getFlagNonNegativeInt(cmd, "min-frags")
		nameByFile := getFlagBool(cmd, "name-by-file")
		outFile := getFlagString(cmd, "out-file")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		w, err := maps.NewWriter(outFile)
		checkError(err)
		defer func() {
			checkError(w.Close())
		}()

		var n, nFrags int
		var record *fastx.Record
		var name, prefix string
		var idx int
		for _, file := range files {
			fastxReader, err := fastx.NewReader(nil, file, "")
			checkError(err)

			if nameByFile {
				prefix, _, _ = filepathTrimExtension(filepath.Base(file), nil)
				idx = 0
			}

			for {
				record, err = fastxReader.Read()
				if err != nil {
					if err == io.EOF {
						break
					}
					checkError(err)
					break
				}

				if nameByFile {
					idx++
					name = fmt.Sprintf("%s_%d", prefix, idx)
				} else {
					name = string(record.ID)
				}

				m := maps.Digest(name, record.Seq.Seq, motifs)
				if m.NumFrags() < minFrags {
					continue
				}
				checkError(w.Write(m))
				n++
				nFrags += m.NumFrags()
			}
			fastxReader.Close()
		}

		if outputLog {
			log.Infof("%s maps with %s fragments saved to: %s", humanize.Comma(int64(n)), humanize.Comma(int64(nFrags)), outFile)
		}
	},
}

func enzymeNames() []string {
	names := make([]string, 0, len(Enzymes))
	for name := range Enzymes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	RootCmd.AddCommand(digestCmd)

	digestCmd.Flags().StringP("infile-list", "X", "",
		formatFlagUsage("File of FASTA/Q files, one file per line."))

	digestCmd.Flags().StringSliceP("enzyme", "e", []string{},
		formatFlagUsage("Restriction enzyme(s), multiple values supported."))

	digestCmd.Flags().StringSliceP("site", "s", []string{},
		formatFlagUsage("Recognition sequence(s), degenerate bases are not supported."))

	digestCmd.Flags().BoolP("name-by-file", "N", false,
		formatFlagUsage("Name maps after file names and the indexes of sequences in files."))

	digestCmd.Flags().IntP("min-frags", "m", 1,
		formatFlagUsage("Minimum number of fragments of an output map."))

	digestCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports and recommends a ".gz" suffix ("-" for stdout).`))

	digestCmd.SetUsageTemplate(usageTemplate("-e BspQI [seqs.fa.gz ...] [-o ref.maps.gz]"))
}
