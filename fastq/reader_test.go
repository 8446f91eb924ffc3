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
	"errors"
	"io"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func readAll(input string, layout Layout) ([]*Record, error) {
	r := NewReader(strings.NewReader(input), layout)

	var recs []*Record

	for {
		rec, err := r.Next()
		if err == io.EOF {
			return recs, nil
		}

		if err != nil {
			return recs, err
		}

		recs = append(recs, rec)
	}
}

func TestReader(t *testing.T) {
	Convey("Given paired fastq-dump output", t, func() {
		input := "@SRR1.1.1 1 length=4\nACGT\n+SRR1.1.1 1 length=4\nIIII\n" +
			"@SRR1.1.2 1 length=3\nTTG\n+\n#II\n"

		Convey("You can read records with their IDs and roles", func() {
			recs, err := readAll(input, LayoutPaired)
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 2)

			So(recs[0].ID, ShouldEqual, "SRR1.1")
			So(recs[0].Role, ShouldEqual, RoleLeft)
			So(recs[1].ID, ShouldEqual, "SRR1.1")
			So(recs[1].Role, ShouldEqual, RoleRight)
			So(recs[0].Matches(recs[1]), ShouldBeTrue)
		})

		Convey("Lines are retained verbatim and written back unaltered", func() {
			recs, err := readAll(input, LayoutPaired)
			So(err, ShouldBeNil)

			So(recs[0].Header, ShouldEqual, "@SRR1.1.1 1 length=4")
			So(recs[0].Sequence, ShouldEqual, "ACGT")
			So(recs[0].Plus, ShouldEqual, "+SRR1.1.1 1 length=4")
			So(recs[0].Quality, ShouldEqual, "IIII")

			var sb strings.Builder

			for _, rec := range recs {
				_, err = rec.WriteTo(&sb)
				So(err, ShouldBeNil)
			}

			So(sb.String(), ShouldEqual, input)
		})

		Convey("Windows line endings are removed by the line reader", func() {
			recs, err := readAll(strings.ReplaceAll(input, "\n", "\r\n"), LayoutPaired)
			So(err, ShouldBeNil)
			So(recs[1].Quality, ShouldEqual, "#II")
		})

		Convey("A header without a mate suffix is a parse error", func() {
			recs, err := readAll(input+"@S2 x\nA\n+\nI\n", LayoutPaired)
			So(len(recs), ShouldEqual, 2)
			So(errors.Is(err, ErrBadHeader), ShouldBeTrue)

			var he *HeaderError
			So(errors.As(err, &he), ShouldBeTrue)
			So(he.Header, ShouldEqual, "@S2 x")
			So(he.Layout, ShouldEqual, LayoutPaired)
		})

		Convey("A paired header needs text after the mate suffix", func() {
			_, err := readAll("@S1.1\nA\n+\nI\n", LayoutPaired)
			So(errors.Is(err, ErrBadHeader), ShouldBeTrue)
		})
	})

	Convey("Given single-ended output", t, func() {
		input := "@SRR2.1 1 length=2\nAC\n+\nII\n@SRR2.2\nGG\n+\nII\n"

		Convey("Every record is a singleton keyed on the first word", func() {
			recs, err := readAll(input, LayoutSingle)
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 2)
			So(recs[0].ID, ShouldEqual, "SRR2.1")
			So(recs[0].Role, ShouldEqual, RoleSingleton)
			So(recs[1].ID, ShouldEqual, "SRR2.2")
		})

		Convey("A header not starting with @ is an error", func() {
			_, err := readAll("SRR2.1\nAC\n+\nII\n", LayoutSingle)
			So(errors.Is(err, ErrBadHeader), ShouldBeTrue)
		})
	})

	Convey("Malformed records are rejected", t, func() {
		Convey("When the quality header doesn't start with +", func() {
			_, err := readAll("@S1 x\nAC\n-\nII\n", LayoutSingle)
			So(errors.Is(err, ErrBadQualityHeader), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "SINGLETON FASTQ record for S1")
		})

		Convey("When the quality header is empty", func() {
			_, err := readAll("@S1 x\nAC\n\nII\n", LayoutSingle)
			So(errors.Is(err, ErrBadQualityHeader), ShouldBeTrue)
		})

		Convey("When the stream ends part way through a record", func() {
			for _, input := range []string{"@S1 x\n", "@S1 x\nAC\n", "@S1 x\nAC\n+\n"} {
				_, err := readAll(input, LayoutSingle)
				So(err, ShouldEqual, ErrTruncatedRecord)
			}
		})

		Convey("But empty input is just EOF", func() {
			recs, err := readAll("", LayoutPaired)
			So(err, ShouldBeNil)
			So(recs, ShouldBeEmpty)
		})
	})

	Convey("Long headers are abbreviated in errors", t, func() {
		header := "@" + strings.Repeat("x", 100)
		err := &HeaderError{Layout: LayoutPaired, Header: header}
		So(err.Error(), ShouldEndWith, header[:27]+"...")
	})

	Convey("Layouts convert to and from strings", t, func() {
		l, err := ParseLayout("PAIRED")
		So(err, ShouldBeNil)
		So(l, ShouldEqual, LayoutPaired)

		l, err = ParseLayout("single")
		So(err, ShouldBeNil)
		So(l, ShouldEqual, LayoutSingle)
		So(l.String(), ShouldEqual, "single")

		_, err = ParseLayout("triple")
		So(err, ShouldEqual, ErrUnknownLayout)

		So(LayoutFromPaired(true), ShouldEqual, LayoutPaired)
		So(LayoutFromPaired(false), ShouldEqual, LayoutSingle)
	})
}
