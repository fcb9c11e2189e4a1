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
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/maligner/maligner/maps"
	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:     "summarize",
	Aliases: []string{"stats"},
	Short:   "Summary statistics of map files",
	Long: `Summary statistics of map files

By default, terminal fragments, i.e., the first and last ones of each map,
are excluded, as they are not bounded by restriction sites in optical maps.
Use -t/--include-terminal to include them.

Output (tab-delimited format):
  file, stat, n, q1, q2, q3, mean, min, max

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		includeTerminal := getFlagBool(cmd, "include-terminal")
		human := getFlagBool(cmd, "human-readable")
		outFile := getFlagString(cmd, "out-file")

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

		format := func(v float64) string {
			if human {
				return humanize.CommafWithDigits(v, 2)
			}
			return fmt.Sprintf("%.2f", v)
		}

		fmt.Fprintln(outfh, "file\tstat\tn\tq1\tq2\tq3\tmean\tmin\tmax")
		for _, file := range files {
			_maps, err := maps.ReadAll(file)
			checkError(err)
			s := maps.Summarize(_maps, includeTerminal)

			for _, item := range []struct {
				name  string
				stats maps.Stats
			}{
				{"map_length", s.MapLength},
				{"frags_per_map", s.FragsPerMap},
				{"frag_length", s.FragLength},
			} {
				fmt.Fprintf(outfh, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", file, item.name,
					humanize.Comma(int64(item.stats.N)),
					format(item.stats.Q1), format(item.stats.Q2), format(item.stats.Q3),
					format(item.stats.Mean), format(item.stats.Min), format(item.stats.Max))
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringP("infile-list", "X", "",
		formatFlagUsage("File of map files, one file per line."))

	summarizeCmd.Flags().BoolP("include-terminal", "t", false,
		formatFlagUsage("Include terminal fragments."))

	summarizeCmd.Flags().BoolP("human-readable", "a", false,
		formatFlagUsage("Print numbers in a human-readable format."))

	summarizeCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file ("-" for stdout).`))

	summarizeCmd.SetUsageTemplate(usageTemplate("[maps ...]"))
}
