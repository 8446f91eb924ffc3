/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Authors:
 *	- Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/sra-fetch/config"
	"github.com/wtsi-hgi/sra-fetch/dump"
	"github.com/wtsi-hgi/sra-fetch/fleet"
)

const (
	ErrOutputNotDir  = Error("output path exists but is not a directory")
	ErrSamplesFailed = Error("some samples failed to download")

	dirPerm = 0755
)

// options for this cmd.
var (
	fetchZip         bool
	fetchMissing     bool
	fetchClear       bool
	fetchParallel    int
	fetchMetricsFile string
)

// fetchCmd represents the fetch command.
var fetchCmd = &cobra.Command{
	Use:   "fetch <output dir> [input.tsv ...]",
	Short: "Download the FASTQ files of samples.",
	Long: `Download the FASTQ files of samples.

SRALIB must be set to the directory containing the SRA toolkit's fastq-dump.

Accessions are read from the column given by --col (default "sample_id") of
the given tab-separated files, which must have a header line. With no files,
STDIN is read. With --sheet, they are read from that column of a Google sheet
instead, using the service account in SRA_FETCH_CREDENTIALS_FILE.

Each accession can be a sample (eg. SRS123) or a run (eg. SRR123). The runs of
each sample are looked up on NCBI (or your MySQL mirror with --mirror), then
downloaded in to a sub-directory of the output directory named after the
sample:

  <sample>_1.fastq, <sample>_2.fastq   the left and right reads of pairs
  <sample>_s.fastq                     reads without a mate, if any
  <sample>.fastq                       all reads, for single-end samples
  summary.txt                          written once the sample is complete

Files get a .gz suffix with --zip. With --missing, samples that already have a
summary.txt are skipped, so you can re-run the same command to retry only the
failures.

An example command line could look like this:
$ sra-fetch fetch -p 4 --zip --missing /output/dir samples.tsv
`,
	Args: cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		c, err := config.FromEnv()
		if err != nil {
			die(err)
		}

		if err = fetchSamples(c, args[0], args[1:]); err != nil {
			die(err)
		}
	},
}

// fetchSamples downloads the samples named in the given input files in to
// outputDir. The resolver is always closed before returning.
func fetchSamples(c *config.Config, outputDir string, paths []string) error {
	tool, err := dump.New(c.ToolDir)
	if err != nil {
		return err
	}

	if err = prepareOutputDir(outputDir, fetchClear); err != nil {
		return err
	}

	ids, err := readAccessions(c, paths)
	if err != nil {
		return err
	}

	resolver, done, err := newResolver(c)
	if err != nil {
		return err
	}

	defer done()

	var metrics *fleet.Metrics
	if fetchMetricsFile != "" {
		metrics = fleet.NewMetrics()
	}

	scheduler := fleet.New(resolver, tool, fleet.Options{
		OutputDir:     outputDir,
		Zipped:        fetchZip,
		Parallel:      fetchParallel,
		BatchSize:     batchSize,
		SkipCompleted: fetchMissing,
		Metrics:       metrics,
	})

	tally, err := scheduler.Run(ids)
	if err != nil {
		return err
	}

	if metrics != nil {
		if err = metrics.WriteTextfile(fetchMetricsFile); err != nil {
			warn("writing metrics to %s failed: %s", fetchMetricsFile, err)
		}
	}

	info("all done: %s", tally)

	if tally.Failed > 0 {
		return ErrSamplesFailed
	}

	return nil
}

// prepareOutputDir makes sure dir exists as a directory, first deleting its
// contents if clear is true.
func prepareOutputDir(dir string, clear bool) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return createDirIfNotExist(dir, err)
	}

	if !fi.IsDir() {
		return ErrOutputNotDir
	}

	if !clear {
		return nil
	}

	info("erasing contents of %s", dir)

	return clearDir(dir)
}

func createDirIfNotExist(dir string, statErr error) error {
	if !os.IsNotExist(statErr) {
		return statErr
	}

	return os.MkdirAll(dir, dirPerm)
}

func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err = os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

func init() {
	RootCmd.AddCommand(fetchCmd)

	addInputFlags(fetchCmd)

	// flags specific to this sub-command
	fetchCmd.Flags().BoolVarP(&fetchZip, "zip", "z", false,
		"gzip the output FASTQ files")
	fetchCmd.Flags().BoolVarP(&fetchMissing, "missing", "m", false,
		"skip samples that have already been downloaded")
	fetchCmd.Flags().BoolVar(&fetchClear, "clear", false,
		"erase the output directory before downloading")
	fetchCmd.Flags().IntVarP(&fetchParallel, "parallel", "p", fleet.DefaultParallel,
		"number of samples to download at once")
	fetchCmd.Flags().StringVar(&fetchMetricsFile, "metrics-file", "",
		"write prometheus metrics to this file when done")
}
