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

package fastq

// Sink receives records once the Pairer has decided where they go.
type Sink interface {
	WritePair(left, right *Record) error
	WriteSingle(read *Record) error
}

// Counts are the running totals a Pairer maintains.
type Counts struct {
	Reads   int
	Pairs   int
	Singles int
	Errors  int
}

// Pairer matches left reads with the right read that immediately follows
// them. It holds at most one unmatched left read and never reorders records.
//
// fastq-dump emits the two mates of a spot next to each other, left first, so
// anything that doesn't fit that pattern is written as a singleton. A left
// read displaced by another left read, and a left/right pair with different
// IDs, each count as one error. A right read with no left read before it is a
// singleton but not an error.
type Pairer struct {
	sink    Sink
	counts  *Counts
	pending *Record
}

// NewPairer returns a Pairer that writes to sink and updates counts. Use a new
// Pairer for each run.
func NewPairer(sink Sink, counts *Counts) *Pairer {
	return &Pairer{sink: sink, counts: counts}
}

// Add routes the given record.
func (p *Pairer) Add(rec *Record) error {
	p.counts.Reads++

	switch rec.Role {
	case RoleSingleton:
		return p.single(rec)
	case RoleLeft:
		return p.addLeft(rec)
	default:
		return p.addRight(rec)
	}
}

func (p *Pairer) addLeft(rec *Record) error {
	if p.pending != nil {
		p.counts.Errors++

		if err := p.single(p.pending); err != nil {
			return err
		}
	}

	p.pending = rec

	return nil
}

func (p *Pairer) addRight(rec *Record) error {
	left := p.pending
	if left == nil {
		return p.single(rec)
	}

	p.pending = nil

	if left.Matches(rec) {
		if err := p.sink.WritePair(left, rec); err != nil {
			return err
		}

		p.counts.Pairs++

		return nil
	}

	p.counts.Errors++

	if err := p.single(left); err != nil {
		return err
	}

	return p.single(rec)
}

func (p *Pairer) single(rec *Record) error {
	if err := p.sink.WriteSingle(rec); err != nil {
		return err
	}

	p.counts.Singles++

	return nil
}

// Pending returns the buffered left read, if any.
func (p *Pairer) Pending() *Record {
	return p.pending
}

// Finish must be called at the end of a run's stream. A left read still
// waiting for its mate is written as a singleton and counted as an error.
func (p *Pairer) Finish() error {
	if p.pending == nil {
		return nil
	}

	left := p.pending
	p.pending = nil
	p.counts.Errors++

	return p.single(left)
}
