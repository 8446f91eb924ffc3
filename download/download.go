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

// package download downloads all the runs of a sample in to one set of FASTQ
// files.

package download

import (
	"fmt"
	"io"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/wtsi-hgi/sra-fetch/fastq"
	"github.com/wtsi-hgi/sra-fetch/output"
	"github.com/wtsi-hgi/sra-fetch/types"
)

const defaultProgressInterval = 10 * time.Second

// Streamer runs the dump tool for a run and passes its output to consume.
// *dump.Tool is a Streamer.
type Streamer interface {
	Stream(run string, consume func(io.Reader) error) error
}

// Stats are the running totals for a sample download.
type Stats struct {
	fastq.Counts

	// Runs is the number of runs downloaded completely.
	Runs int
}

// RunError says which sample and run an error occurred in.
type RunError struct {
	Sample string
	Run    string
	Err    error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("sample %s run %s: %s", e.Sample, e.Run, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Downloader downloads one sample.
type Downloader struct {
	tool   Streamer
	sample *types.Sample
	dir    string
	zipped bool
	stats  Stats
	logger log15.Logger

	// ProgressInterval is how often progress is logged while a run is being
	// processed.
	ProgressInterval time.Duration
}

// New returns a Downloader that will use the given tool to download the given
// sample's runs in to FASTQ files in dir, gzip compressed if zipped.
func New(tool Streamer, sample *types.Sample, dir string, zipped bool) *Downloader {
	return &Downloader{
		tool:             tool,
		sample:           sample,
		dir:              dir,
		zipped:           zipped,
		logger:           log15.New("pkg", "download", "sample", sample.ID()),
		ProgressInterval: defaultProgressInterval,
	}
}

// Execute downloads every run of the sample in natural order, appending them
// all to the same output files, and returns a summary of what was done.
//
// The first run to fail stops the download and its error is returned; the
// stats from earlier runs are kept (see Stats()). Output files are always
// closed before returning.
func (d *Downloader) Execute() (summary string, err error) {
	runs := d.sample.Runs()
	d.logger.Info("downloading sample", "runs", len(runs), "dir", d.dir, "spots", d.sample.Spots())

	out, err := output.Open(d.dir, d.sample.ID(), d.sample.Layout(), d.zipped)
	if err != nil {
		return "", err
	}

	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
			summary = ""
		}
	}()

	for i, run := range runs {
		d.logger.Info("processing run", "n", i+1, "of", len(runs), "run", run)

		if err = d.RunOne(run, out); err != nil {
			d.logger.Error("run failed", "run", run, "err", err,
				"reads", d.stats.Reads, "pairs", d.stats.Pairs,
				"singles", d.stats.Singles, "errors", d.stats.Errors)

			return "", &RunError{Sample: d.sample.ID(), Run: run, Err: err}
		}

		d.stats.Runs++
	}

	summary = d.Summary()
	d.logger.Info(summary)

	return summary, nil
}

// RunOne downloads a single run in to the given output files, which are
// flushed but not closed afterwards.
func (d *Downloader) RunOne(run string, out *output.Set) error {
	err := d.tool.Stream(run, func(r io.Reader) error {
		return d.consume(fastq.NewReader(r, d.sample.Layout()), out)
	})
	if err != nil {
		return err
	}

	if err = out.Flush(); err != nil {
		return err
	}

	d.logger.Info("run downloaded", "run", run)

	return nil
}

// consume pairs every record from the reader in to out. A fresh Pairer is used
// so that a left read never waits across runs for its mate.
func (d *Downloader) consume(reader *fastq.Reader, out *output.Set) error {
	pairer := fastq.NewPairer(out, &d.stats.Counts)
	lastMessage := time.Now()

	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return err
		}

		if err = pairer.Add(rec); err != nil {
			return err
		}

		if time.Since(lastMessage) >= d.ProgressInterval {
			d.logProgress()
			lastMessage = time.Now()
		}
	}

	return pairer.Finish()
}

func (d *Downloader) logProgress() {
	d.logger.Info("progress", "reads", d.stats.Reads, "pairs", d.stats.Pairs,
		"singles", d.stats.Singles, "errors", d.stats.Errors)
}

// Stats returns the totals so far. Do not call while Execute() is running.
func (d *Downloader) Stats() Stats {
	return d.stats
}

// Summary describes what has been downloaded.
func (d *Downloader) Summary() string {
	return fmt.Sprintf("Sample %s (%s) downloaded from %d runs, %d pairs, %d singletons, and %d errors.",
		d.sample.ID(), d.sample.Title(), d.stats.Runs, d.stats.Pairs, d.stats.Singles, d.stats.Errors)
}
