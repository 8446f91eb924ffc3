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

import (
	"bufio"
	"io"
)

const (
	linesPerRecord = 4
	initialLineBuf = 1024 * 1024
	maxLineLength  = 64 * 1024 * 1024
)

// Role says which mate of a spot a record is.
type Role int

const (
	RoleLeft Role = iota
	RoleRight
	RoleSingleton
)

func (r Role) String() string {
	switch r {
	case RoleLeft:
		return "LEFT"
	case RoleRight:
		return "RIGHT"
	default:
		return "SINGLETON"
	}
}

// Record is one FASTQ record. The four lines are kept exactly as read (minus
// their line terminators) so they can be written out unaltered.
type Record struct {
	Header   string
	Sequence string
	Plus     string
	Quality  string

	ID   string
	Role Role
}

// Matches returns true if other has the same read ID as r.
func (r *Record) Matches(other *Record) bool {
	return r.ID == other.ID
}

// WriteTo writes the record's four lines to w, each terminated by a newline.
func (r *Record) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, line := range [linesPerRecord]string{r.Header, r.Sequence, r.Plus, r.Quality} {
		n, err := io.WriteString(w, line+"\n")
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// Reader reads Records from a line stream.
type Reader struct {
	scanner *bufio.Scanner
	layout  Layout
}

// NewReader returns a Reader that parses headers according to the given
// layout.
func NewReader(r io.Reader, layout Layout) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initialLineBuf), maxLineLength)

	return &Reader{scanner: scanner, layout: layout}
}

// Next returns the next record. It returns io.EOF when the input ends cleanly
// between records, and ErrTruncatedRecord if it ends part way through one.
func (r *Reader) Next() (*Record, error) {
	header, err := r.line()
	if err != nil {
		return nil, err
	}

	id, role, err := r.layout.parseHeader(header)
	if err != nil {
		return nil, err
	}

	rec := &Record{Header: header, ID: id, Role: role}

	if rec.Sequence, err = r.bodyLine(); err != nil {
		return nil, err
	}

	if rec.Plus, err = r.bodyLine(); err != nil {
		return nil, err
	}

	if len(rec.Plus) == 0 || rec.Plus[0] != '+' {
		return nil, &RecordError{Err: ErrBadQualityHeader, Role: role, ID: id}
	}

	if rec.Quality, err = r.bodyLine(); err != nil {
		return nil, err
	}

	return rec, nil
}

func (r *Reader) line() (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}

	if err := r.scanner.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (r *Reader) bodyLine() (string, error) {
	line, err := r.line()
	if err == io.EOF {
		return "", ErrTruncatedRecord
	}

	return line, err
}

// RecordError reports a problem with the body of a particular record.
type RecordError struct {
	Err  error
	Role Role
	ID   string
}

func (e *RecordError) Error() string {
	return e.Role.String() + " FASTQ record for " + e.ID + ": " + e.Err.Error()
}

func (e *RecordError) Unwrap() error { return e.Err }
