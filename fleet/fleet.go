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

// package fleet resolves accessions in to samples and downloads many samples
// in parallel, skipping those that have already been downloaded.

package fleet

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/inconshreveable/log15"
	"github.com/wtsi-hgi/sra-fetch/accession"
	"github.com/wtsi-hgi/sra-fetch/download"
	"github.com/wtsi-hgi/sra-fetch/types"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNoOutputDir = Error("output directory not specified")

	// MarkerFile is written in to a sample's directory once all its runs
	// have been downloaded, and contains the download summary.
	MarkerFile = "summary.txt"

	DefaultParallel  = 1
	DefaultBatchSize = 100

	dirPerm  = 0755
	filePerm = 0644
)

// Resolver looks up the metadata for a batch of accessions, which will all be
// samples or all be runs.
type Resolver interface {
	Resolve(ids []string) ([]types.Metadata, error)
}

// Options configure a Scheduler.
type Options struct {
	// OutputDir is the directory that per-sample directories are made in.
	OutputDir string

	// Zipped means gzip the output FASTQ files.
	Zipped bool

	// Parallel is the number of samples to download at once.
	Parallel int

	// BatchSize is the number of accessions to resolve at a time.
	BatchSize int

	// SkipCompleted means don't download samples that have a marker file.
	SkipCompleted bool

	// Metrics, if set, is updated as samples are processed.
	Metrics *Metrics
}

// Scheduler resolves and downloads samples.
type Scheduler struct {
	resolver Resolver
	tool     download.Streamer
	opts     Options
	logger   log15.Logger
}

// New returns a Scheduler that resolves accessions with resolver and
// downloads runs with tool. Parallel and BatchSize less than 1 are treated as
// their defaults.
func New(resolver Resolver, tool download.Streamer, opts Options) *Scheduler {
	if opts.Parallel < 1 {
		opts.Parallel = DefaultParallel
	}

	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultBatchSize
	}

	return &Scheduler{
		resolver: resolver,
		tool:     tool,
		opts:     opts,
		logger:   log15.New("pkg", "fleet"),
	}
}

// Resolve turns the given sample and run accessions in to Samples, sorted by
// ID. Metadata for sample accessions is keyed by the sample accession NCBI
// reports; metadata for run accessions is keyed by the first run of each
// record. Records with the same key are merged in to one Sample.
func (s *Scheduler) Resolve(ids []string) ([]*types.Sample, error) {
	parts, err := accession.Partition(ids)
	if err != nil {
		return nil, err
	}

	s.logger.Info("resolving accessions", "samples", len(parts.Samples), "runs", len(parts.Runs))

	merged := make(map[string]*types.Sample)

	if err = s.resolveKind(parts.Samples, accession.KindSample, merged); err != nil {
		return nil, err
	}

	if err = s.resolveKind(parts.Runs, accession.KindRun, merged); err != nil {
		return nil, err
	}

	samples := make([]*types.Sample, 0, len(merged))
	for _, sample := range merged {
		samples = append(samples, sample)
	}

	sort.Slice(samples, func(i, j int) bool {
		return types.NaturalLess(samples[i].ID(), samples[j].ID())
	})

	s.logger.Info("accessions resolved", "samples", len(samples))

	return samples, nil
}

func (s *Scheduler) resolveKind(ids []string, kind accession.Kind, merged map[string]*types.Sample) error {
	for start := 0; start < len(ids); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(ids))
		batch := ids[start:end]

		s.logger.Debug("resolving batch", "kind", kind, "from", start, "to", end)

		metas, err := s.resolver.Resolve(batch)
		if err != nil {
			return fmt.Errorf("resolving %s batch %s..%s: %w", kind, batch[0], batch[len(batch)-1], err)
		}

		for _, meta := range metas {
			mergeMetadata(merged, metadataKey(meta, kind), meta, s.logger)
		}
	}

	return nil
}

func metadataKey(meta types.Metadata, kind accession.Kind) string {
	if kind == accession.KindRun {
		return meta.FirstRun()
	}

	return meta.SampleAccession
}

func mergeMetadata(merged map[string]*types.Sample, key string, meta types.Metadata, logger log15.Logger) {
	if existing, found := merged[key]; found {
		existing.AddRuns(meta.Runs...)

		return
	}

	sample, err := types.NewSample(key, meta)
	if err != nil {
		logger.Warn("ignoring metadata", "key", key, "err", err)

		return
	}

	merged[key] = sample
}

// Tally counts what happened to the samples given to Download().
type Tally struct {
	Downloaded int
	Failed     int
	Skipped    int
}

func (t Tally) String() string {
	return fmt.Sprintf("%d downloaded, %d failed, %d skipped", t.Downloaded, t.Failed, t.Skipped)
}

func (t *Tally) add(o outcome) {
	switch o {
	case outcomeDownloaded:
		t.Downloaded++
	case outcomeFailed:
		t.Failed++
	case outcomeSkipped:
		t.Skipped++
	}
}

type outcome string

const (
	outcomeDownloaded outcome = "downloaded"
	outcomeFailed     outcome = "failed"
	outcomeSkipped    outcome = "skipped"
)

type result struct {
	sample  string
	outcome outcome
	err     error
}

// Download downloads each sample in to its own sub-directory of the output
// directory, Options.Parallel at a time. A failed sample is logged and does
// not affect the others.
func (s *Scheduler) Download(samples []*types.Sample) Tally {
	jobs := make(chan *types.Sample)
	results := make(chan result, s.opts.Parallel)

	var wg sync.WaitGroup

	wg.Add(s.opts.Parallel)

	for i := 0; i < s.opts.Parallel; i++ {
		go func() {
			defer wg.Done()

			for sample := range jobs {
				results <- s.process(sample)
			}
		}()
	}

	go func() {
		for _, sample := range samples {
			jobs <- sample
		}

		close(jobs)
		wg.Wait()
		close(results)
	}()

	var tally Tally

	for r := range results {
		tally.add(r.outcome)

		if r.err != nil {
			s.logger.Error("sample failed", "sample", r.sample, "err", r.err)
		}
	}

	s.logger.Info(tally.String())

	return tally
}

// SampleDir returns the directory a sample's files are written to.
func (s *Scheduler) SampleDir(sampleID string) string {
	return filepath.Join(s.opts.OutputDir, sampleID)
}

// MarkerPath returns the path of a sample's marker file.
func (s *Scheduler) MarkerPath(sampleID string) string {
	return filepath.Join(s.SampleDir(sampleID), MarkerFile)
}

func (s *Scheduler) process(sample *types.Sample) result {
	r := result{sample: sample.ID()}
	marker := s.MarkerPath(sample.ID())

	if s.opts.SkipCompleted && markerExists(marker) {
		s.logger.Info("skipping completed sample", "sample", sample.ID())

		r.outcome = outcomeSkipped
		s.opts.Metrics.observeSample(r.outcome)

		return r
	}

	r.err = s.downloadSample(sample, marker)
	if r.err != nil {
		r.outcome = outcomeFailed
	} else {
		r.outcome = outcomeDownloaded
	}

	s.opts.Metrics.observeSample(r.outcome)

	return r
}

func (s *Scheduler) downloadSample(sample *types.Sample, marker string) error {
	dir := s.SampleDir(sample.ID())

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}

	d := download.New(s.tool, sample, dir, s.opts.Zipped)

	summary, err := d.Execute()
	s.opts.Metrics.observeStats(d.Stats())

	if err != nil {
		return err
	}

	return os.WriteFile(marker, []byte(summary+"\n"), filePerm)
}

func markerExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

// Run resolves the given accessions and downloads the resulting samples.
func (s *Scheduler) Run(ids []string) (Tally, error) {
	if s.opts.OutputDir == "" {
		return Tally{}, ErrNoOutputDir
	}

	samples, err := s.Resolve(ids)
	if err != nil {
		return Tally{}, err
	}

	return s.Download(samples), nil
}
