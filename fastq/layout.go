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

// package fastq parses the four-line records emitted by fastq-dump and pairs
// left and right mates.

package fastq

import (
	"regexp"
	"strings"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrBadHeader        = Error("invalid FASTQ header")
	ErrBadQualityHeader = Error("invalid FASTQ quality header")
	ErrTruncatedRecord  = Error("end-of-file before full FASTQ record completed")
	ErrUnknownLayout    = Error("unknown library layout")

	abbreviateLength = 30
)

// Layout is the library layout of a sample. It decides how record headers are
// parsed and which output files a sample gets.
type Layout int

const (
	LayoutPaired Layout = iota
	LayoutSingle
)

var (
	pairedHeader = regexp.MustCompile(`^@(\S+)\.([12])\s+.+$`)
	singleHeader = regexp.MustCompile(`^@(\S+).*$`)
)

// LayoutFromPaired returns LayoutPaired if paired is true, otherwise
// LayoutSingle.
func LayoutFromPaired(paired bool) Layout {
	if paired {
		return LayoutPaired
	}

	return LayoutSingle
}

// ParseLayout converts "paired" or "single" (case insensitive) to a Layout.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "paired":
		return LayoutPaired, nil
	case "single":
		return LayoutSingle, nil
	default:
		return LayoutPaired, ErrUnknownLayout
	}
}

func (l Layout) String() string {
	if l == LayoutSingle {
		return "single"
	}

	return "paired"
}

// MarshalText lets Layouts appear as words in JSON output.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// parseHeader extracts the read ID and mate role from a header line.
//
// Paired samples need headers like "@SRR123.45.1 ..." where the final .1 or .2
// gives the mate. Single samples accept any "@id" header and every record is a
// singleton.
func (l Layout) parseHeader(header string) (string, Role, error) {
	if l == LayoutSingle {
		m := singleHeader.FindStringSubmatch(header)
		if m == nil {
			return "", RoleSingleton, &HeaderError{Layout: l, Header: header}
		}

		return m[1], RoleSingleton, nil
	}

	m := pairedHeader.FindStringSubmatch(header)
	if m == nil {
		return "", RoleLeft, &HeaderError{Layout: l, Header: header}
	}

	if m[2] == "1" {
		return m[1], RoleLeft, nil
	}

	return m[1], RoleRight, nil
}

// HeaderError is returned when a header line doesn't fit the sample's layout.
type HeaderError struct {
	Layout Layout
	Header string
}

func (e *HeaderError) Error() string {
	return ErrBadHeader.Error() + " for " + e.Layout.String() + " sample: " + abbreviate(e.Header)
}

func (e *HeaderError) Unwrap() error { return ErrBadHeader }

func abbreviate(s string) string {
	if len(s) <= abbreviateLength {
		return s
	}

	return s[:abbreviateLength-3] + "..."
}
