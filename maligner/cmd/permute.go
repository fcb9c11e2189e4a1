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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/maligner/maligner/maps"
	"github.com/spf13/cobra"
)

var permuteCmd = &cobra.Command{
	Use:   "permute",
	Short: "Generate permuted reference maps",
	Long: `Generate permuted reference maps

Each output map is a random shuffle of all fragments of all input maps,
so all output maps have the same total size as the input ones.
Output maps are named as "random_map_<i>" and only depend on the seed.

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

		n := getFlagPositiveInt(cmd, "num")
		seed := getFlagUint64(cmd, "seed")
		outFile := getFlagString(cmd, "out-file")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		refs := make([]*maps.Map, 0, 1024)
		for _, file := range files {
			_refs, err := maps.ReadAll(file)
			checkError(err)
			refs = append(refs, _refs...)
		}
		if outputLog {
			log.Infof("%s maps loaded from %d files", humanize.Comma(int64(len(refs))), len(files))
		}

		permuted := maps.PermutedMaps(refs, n, seed, opt.NumCPUs)
		checkError(maps.WriteAll(outFile, permuted))

		if outputLog {
			log.Infof("%s permuted maps saved to: %s", humanize.Comma(int64(len(permuted))), outFile)
		}
	},
}

func init() {
	RootCmd.AddCommand(permuteCmd)

	permuteCmd.Flags().StringP("infile-list", "X", "",
		formatFlagUsage("File of map files, one file per line."))

	permuteCmd.Flags().IntP("num", "n", 100,
		formatFlagUsage("Number of permuted maps."))

	permuteCmd.Flags().Uint64P("seed", "s", 1,
		formatFlagUsage("Random seed."))

	permuteCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports and recommends a ".gz" suffix ("-" for stdout).`))

	permuteCmd.SetUsageTemplate(usageTemplate("[ref.maps ...] [-o permuted.maps.gz]"))
}
