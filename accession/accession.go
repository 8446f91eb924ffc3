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

// package accession tells SRA sample accessions from run accessions and reads
// them from input files.

package accession

import (
	"fmt"
	"sort"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrInvalid = Error("not a valid sample or run ID")

	minLength = 4
	kindIndex = 2
	runMarker = 'R'
)

// Kind is the type of thing an accession identifies.
type Kind int

const (
	KindSample Kind = iota
	KindRun
)

func (k Kind) String() string {
	if k == KindRun {
		return "run"
	}

	return "sample"
}

// Classify says if id is a run (eg. SRR123, ERR123, DRR123) or a sample (eg.
// SRS123, SAMN123). IDs shorter than 4 characters are invalid.
func Classify(id string) (Kind, error) {
	if len(id) < minLength {
		return KindSample, fmt.Errorf("%w: %q", ErrInvalid, id)
	}

	if id[kindIndex] == runMarker {
		return KindRun, nil
	}

	return KindSample, nil
}

// Partitions holds the distinct sample and run accessions from some input,
// each sorted.
type Partitions struct {
	Samples []string
	Runs    []string
}

// Len returns the total number of distinct accessions.
func (p Partitions) Len() int {
	return len(p.Samples) + len(p.Runs)
}

// Partition splits ids in to samples and runs, ignoring duplicates. It fails
// on the first invalid id.
func Partition(ids []string) (Partitions, error) {
	var p Partitions

	seen := make(map[string]bool, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}

		kind, err := Classify(id)
		if err != nil {
			return Partitions{}, err
		}

		seen[id] = true

		if kind == KindRun {
			p.Runs = append(p.Runs, id)
		} else {
			p.Samples = append(p.Samples, id)
		}
	}

	sort.Strings(p.Samples)
	sort.Strings(p.Runs)

	return p, nil
}
