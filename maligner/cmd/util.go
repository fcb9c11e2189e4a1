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
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/iafan/cwalk"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/shenwei356/maligner/maligner/dp"
	"github.com/shenwei356/util/pathutil"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts"
)

// Options contains the global flags
type Options struct {
	NumCPUs int
	Verbose bool

	LogFile  string
	Log2File bool

	Compress         bool
	CompressionLevel int
}

func getOptions(cmd *cobra.Command) *Options {
	threads := getFlagNonNegativeInt(cmd, "threads")
	if threads == 0 {
		threads = runtime.NumCPU()
	}

	sorts.MaxProcs = threads
	runtime.GOMAXPROCS(threads)

	logfile := getFlagString(cmd, "log")
	return &Options{
		NumCPUs: threads,
		Verbose: !getFlagBool(cmd, "quiet"),

		LogFile:  logfile,
		Log2File: logfile != "",

		Compress:         true,
		CompressionLevel: -1,
	}
}

func makeOutDir(outDir string, force bool, logname string, verbose bool) {
	pwd, _ := os.Getwd()
	if outDir != "./" && outDir != "." && pwd != filepath.Clean(outDir) {
		existed, err := pathutil.DirExists(outDir)
		checkError(errors.Wrap(err, outDir))
		if existed {
			empty, err := pathutil.IsEmpty(outDir)
			checkError(errors.Wrap(err, outDir))
			if !empty {
				if force {
					if verbose {
						log.Infof("removing old output directory: %s", outDir)
					}
					checkError(os.RemoveAll(outDir))
				} else {
					checkError(fmt.Errorf("%s not empty: %s, use --force to overwrite", logname, outDir))
				}
			} else {
				checkError(os.RemoveAll(outDir))
			}
		}
		checkError(os.MkdirAll(outDir, 0777))
	} else {
		log.Errorf("%s should not be current directory", logname)
	}
}

var reIgnoreCaseStr = "(?i)"
var reIgnoreCase = regexp.MustCompile(`\(\?i\)`)

func getFileListFromDir(path string, pattern *regexp.Regexp, threads int) ([]string, error) {
	files := make([]string, 0, 512)
	ch := make(chan string, threads)
	done := make(chan int)
	go func() {
		for file := range ch {
			files = append(files, file)
		}
		done <- 1
	}()

	cwalk.NumWorkers = threads
	err := cwalk.WalkWithSymlinks(path, func(_path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && pattern.MatchString(info.Name()) {
			ch <- filepath.Join(path, _path)
		}
		return nil
	})
	close(ch)
	<-done
	if err != nil {
		return nil, err
	}

	return files, err
}

// getFileListFromDirFlags collects files in a directory given by a flag,
// matched by the regular expression of another flag.
func getFileListFromDirFlags(cmd *cobra.Command, flagDir, flagRegexp string, threads int) []string {
	inDir := expandPath(getFlagString(cmd, flagDir))
	isDir, err := pathutil.IsDir(inDir)
	if err != nil {
		checkError(errors.Wrapf(err, "checking --%s", flagDir))
	}
	if !isDir {
		checkError(fmt.Errorf("value of --%s should be a directory: %s", flagDir, inDir))
	}

	reFileStr := getFlagString(cmd, flagRegexp)
	if !reIgnoreCase.MatchString(reFileStr) {
		reFileStr = reIgnoreCaseStr + reFileStr
	}
	reFile, err := regexp.Compile(reFileStr)
	checkError(errors.Wrapf(err, "failed to parse regular expression for matching file: %s", reFileStr))

	files, err := getFileListFromDir(inDir, reFile, threads)
	checkError(errors.Wrapf(err, "walking dir: %s", inDir))
	if len(files) == 0 {
		checkError(fmt.Errorf("no files found in %s with the pattern: %s", inDir, reFileStr))
	}
	sorts.Quicksort(sortableStrings(files))
	return files
}

type sortableStrings []string

func (s sortableStrings) Len() int           { return len(s) }
func (s sortableStrings) Less(i, j int) bool { return s[i] < s[j] }
func (s sortableStrings) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

var defaultExts = []string{".gz", ".xz", ".zst", ".bz2"}

func filepathTrimExtension(file string, suffixes []string) (string, string, string) {
	if suffixes == nil {
		suffixes = defaultExts
	}

	var e, e1, e2 string
	f := strings.ToLower(file)
	for _, s := range suffixes {
		e = s
		if strings.HasSuffix(f, e) {
			e2 = e
			file = file[0 : len(file)-len(e)]
			break
		}
	}

	e1 = filepath.Ext(file)
	name := file[0 : len(file)-len(e1)]

	return name, e1, e2
}

// ---------------------------------------------------------------
// alignment options

// addAlignOptionFlags adds flags of all alignment options, named after
// keys of the TOML config file.
func addAlignOptionFlags(cmd *cobra.Command) {
	d := dp.DefaultAlignOptions

	cmd.Flags().StringP("config", "c", "",
		formatFlagUsage(`A TOML file of alignment options, see "maligner options". `+
			`Flags explicitly given override values in the file.`))

	cmd.Flags().Float64P("query-miss-penalty", "", d.QueryMissPenalty,
		formatFlagUsage("Penalty of an unmatched site in the query."))
	cmd.Flags().Float64P("ref-miss-penalty", "", d.RefMissPenalty,
		formatFlagUsage("Penalty of an unmatched site in the reference."))
	cmd.Flags().IntP("query-max-misses", "", d.QueryMaxMisses,
		formatFlagUsage("Maximum consecutive unmatched sites in the query."))
	cmd.Flags().IntP("ref-max-misses", "", d.RefMaxMisses,
		formatFlagUsage("Maximum consecutive unmatched sites in the reference."))

	cmd.Flags().Float64P("sd-rate", "", d.SDRate,
		formatFlagUsage("Standard deviation of sizing error, as a fraction of the reference chunk size."))
	cmd.Flags().Float64P("min-sd", "", d.MinSD,
		formatFlagUsage("Minimum standard deviation of sizing error."))
	cmd.Flags().Float64P("max-chunk-sizing-error", "", d.MaxChunkSizingError,
		formatFlagUsage("Maximum sizing penalty of a matched chunk."))

	cmd.Flags().Float64P("query-max-miss-rate", "", d.QueryMaxMissRate,
		formatFlagUsage("Maximum miss rate of the query in an alignment."))
	cmd.Flags().Float64P("ref-max-miss-rate", "", d.RefMaxMissRate,
		formatFlagUsage("Maximum miss rate of the reference in an alignment."))

	cmd.Flags().IntP("alignments-per-reference", "", d.AlignmentsPerReference,
		formatFlagUsage("Maximum number of alignments selected per reference, 0 for no limit."))
	cmd.Flags().IntP("min-alignment-spacing", "", d.MinAlignmentSpacing,
		formatFlagUsage("Minimum spacing between ends of alignments of the same reference."))
	cmd.Flags().IntP("neighbor-delta", "", d.NeighborDelta,
		formatFlagUsage("Radius of columns to search for an alignment with a better rescaled score."))

	cmd.Flags().BoolP("query-is-bounded", "", d.QueryIsBounded,
		formatFlagUsage("Apply the sizing penalty to the end fragments of the query."))
	cmd.Flags().BoolP("ref-is-bounded", "", d.RefIsBounded,
		formatFlagUsage("Apply the sizing penalty to the end fragments of the reference."))

	cmd.Flags().BoolP("no-query-rescaling", "", !d.RescaleQuery,
		formatFlagUsage("Do not rescale query fragments by the ratio of interior sizes."))
	cmd.Flags().Float64P("min-query-scaling", "", d.MinQueryScaling,
		formatFlagUsage("Minimum query scaling factor."))
	cmd.Flags().Float64P("max-query-scaling", "", d.MaxQueryScaling,
		formatFlagUsage("Maximum query scaling factor."))
}

// readAlignOptions reads alignment options from a TOML file.
// Keys missing in the file keep the default values.
func readAlignOptions(file string) (*dp.AlignOptions, error) {
	opts := dp.DefaultAlignOptions

	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file: %s", file)
	}
	defer fh.Close()

	decoder := toml.NewDecoder(fh)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&opts); err != nil {
		return nil, errors.Wrapf(err, "parsing config file: %s", file)
	}
	return &opts, nil
}

// writeAlignOptions writes alignment options in TOML format.
func writeAlignOptions(file string, opts *dp.AlignOptions) error {
	data, err := toml.Marshal(opts)
	if err != nil {
		return errors.Wrap(err, "marshaling alignment options")
	}

	outfh, err := xopen.Wopen(file)
	if err != nil {
		return errors.Wrapf(err, "writing config file: %s", file)
	}
	defer outfh.Close()

	_, err = outfh.Write(data)
	return err
}

// getAlignOptions returns alignment options from the config file (or default values),
// overridden by flags explicitly given.
func getAlignOptions(cmd *cobra.Command) *dp.AlignOptions {
	opts := &dp.AlignOptions{}
	*opts = dp.DefaultAlignOptions

	if file := getFlagString(cmd, "config"); file != "" {
		var err error
		opts, err = readAlignOptions(expandPath(file))
		checkError(err)
	}

	flags := cmd.Flags()
	setFloat := func(flag string, v *float64) {
		if flags.Changed(flag) {
			*v = getFlagFloat64(cmd, flag)
		}
	}
	setInt := func(flag string, v *int) {
		if flags.Changed(flag) {
			*v = getFlagInt(cmd, flag)
		}
	}
	setBool := func(flag string, v *bool) {
		if flags.Changed(flag) {
			*v = getFlagBool(cmd, flag)
		}
	}

	setFloat("query-miss-penalty", &opts.QueryMissPenalty)
	setFloat("ref-miss-penalty", &opts.RefMissPenalty)
	setInt("query-max-misses", &opts.QueryMaxMisses)
	setInt("ref-max-misses", &opts.RefMaxMisses)
	setFloat("sd-rate", &opts.SDRate)
	setFloat("min-sd", &opts.MinSD)
	setFloat("max-chunk-sizing-error", &opts.MaxChunkSizingError)
	setFloat("query-max-miss-rate", &opts.QueryMaxMissRate)
	setFloat("ref-max-miss-rate", &opts.RefMaxMissRate)
	setInt("alignments-per-reference", &opts.AlignmentsPerReference)
	setInt("min-alignment-spacing", &opts.MinAlignmentSpacing)
	setInt("neighbor-delta", &opts.NeighborDelta)
	setBool("query-is-bounded", &opts.QueryIsBounded)
	setBool("ref-is-bounded", &opts.RefIsBounded)
	if flags.Changed("no-query-rescaling") {
		opts.RescaleQuery = !getFlagBool(cmd, "no-query-rescaling")
	}
	setFloat("min-query-scaling", &opts.MinQueryScaling)
	setFloat("max-query-scaling", &opts.MaxQueryScaling)

	checkError(opts.Validate())
	return opts
}
