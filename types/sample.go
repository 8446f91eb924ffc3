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

package types

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/wtsi-hgi/sra-fetch/fastq"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNoRuns     = Error("sample metadata lists no runs")
	ErrNoSampleID = Error("sample ID not specified")
)

// RunInfo is a run accession and the archive's estimate of how many spots it
// contains.
type RunInfo struct {
	Accession string
	Spots     int64
}

// Metadata is what a resolver tells us about one experiment package in the
// archive.
type Metadata struct {
	SampleAccession string
	Title           string
	Paired          bool
	Runs            []RunInfo
}

// Layout returns LayoutPaired if the metadata says the library is paired.
func (m Metadata) Layout() fastq.Layout {
	return fastq.LayoutFromPaired(m.Paired)
}

// FirstRun returns the accession of the first run listed, or the empty string
// if there are none.
func (m Metadata) FirstRun() string {
	if len(m.Runs) == 0 {
		return ""
	}

	return m.Runs[0].Accession
}

// Sample describes a logical sample: the set of runs whose reads will be
// concatenated into one set of FASTQ files named after the sample's ID.
type Sample struct {
	id     string
	title  string
	layout fastq.Layout
	runs   []string
	known  map[string]bool
	spots  int64
}

// NewSample creates a Sample with the given ID, taking its title and layout
// from the given metadata and adding its runs. Returns an error if the
// metadata has no runs.
func NewSample(id string, meta Metadata) (*Sample, error) {
	if id == "" {
		return nil, ErrNoSampleID
	}

	if len(meta.Runs) == 0 {
		return nil, ErrNoRuns
	}

	s := &Sample{
		id:     id,
		title:  meta.Title,
		layout: meta.Layout(),
		known:  make(map[string]bool, len(meta.Runs)),
	}

	s.AddRuns(meta.Runs...)

	return s, nil
}

// AddRuns merges in the given runs. Runs we already have are ignored, so their
// spots are not counted twice.
func (s *Sample) AddRuns(runs ...RunInfo) {
	for _, run := range runs {
		if run.Accession == "" || s.known[run.Accession] {
			continue
		}

		s.known[run.Accession] = true
		s.runs = append(s.runs, run.Accession)
		s.spots += run.Spots
	}

	sort.Slice(s.runs, func(i, j int) bool {
		return NaturalLess(s.runs[i], s.runs[j])
	})
}

// ID returns the sample's ID, which is used to name its output files.
func (s *Sample) ID() string {
	return s.id
}

// Title returns the title of the experiment the sample was created from.
func (s *Sample) Title() string {
	return s.title
}

// Layout returns the library layout of the sample.
func (s *Sample) Layout() fastq.Layout {
	return s.layout
}

// Runs returns the sample's run accessions in natural order.
func (s *Sample) Runs() []string {
	runs := make([]string, len(s.runs))
	copy(runs, s.runs)

	return runs
}

// Spots returns the estimated total number of spots across all runs.
func (s *Sample) Spots() int64 {
	return s.spots
}

// String is used in log messages.
func (s *Sample) String() string {
	return s.id + " (" + s.layout.String() + ", " + pluralRuns(len(s.runs)) + ")"
}

func pluralRuns(n int) string {
	if n == 1 {
		return "1 run"
	}

	return strconv.Itoa(n) + " runs"
}

// MarshalJSON lets you print Samples.
func (s *Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID     string       `json:"id"`
		Title  string       `json:"title"`
		Layout fastq.Layout `json:"layout"`
		Runs   []string     `json:"runs"`
		Spots  int64        `json:"spots"`
	}{
		ID:     s.id,
		Title:  s.title,
		Layout: s.layout,
		Runs:   s.runs,
		Spots:  s.spots,
	})
}
