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

package accession

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAccession(t *testing.T) {
	Convey("Classify tells runs from samples", t, func() {
		for _, id := range []string{"SRR123", "ERR9", "DRR0001"} {
			kind, err := Classify(id)
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, KindRun)
		}

		for _, id := range []string{"SRS123", "SAMN0001", "ERS1"} {
			kind, err := Classify(id)
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, KindSample)
		}

		_, err := Classify("SRR")
		So(errors.Is(err, ErrInvalid), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, `"SRR"`)

		So(KindRun.String(), ShouldEqual, "run")
		So(KindSample.String(), ShouldEqual, "sample")
	})

	Convey("Partition dedups and sorts each kind", t, func() {
		p, err := Partition([]string{"SRR2", "SRS9", "SRR1", "SRR2", "SAMN5", "SRS9"})
		So(err, ShouldBeNil)
		So(p.Samples, ShouldResemble, []string{"SAMN5", "SRS9"})
		So(p.Runs, ShouldResemble, []string{"SRR1", "SRR2"})
		So(p.Len(), ShouldEqual, 4)

		_, err = Partition([]string{"SRR1", "XY"})
		So(errors.Is(err, ErrInvalid), ShouldBeTrue)

		p, err = Partition(nil)
		So(err, ShouldBeNil)
		So(p.Len(), ShouldEqual, 0)
	})

	Convey("ColumnIndex finds columns by name or 1-based number", t, func() {
		header := []string{"name", "sample_id", "notes"}

		idx, err := ColumnIndex(header, "sample_id")
		So(err, ShouldBeNil)
		So(idx, ShouldEqual, 1)

		idx, err = ColumnIndex(header, "3")
		So(err, ShouldBeNil)
		So(idx, ShouldEqual, 2)

		for _, bad := range []string{"0", "4", "missing"} {
			_, err = ColumnIndex(header, bad)
			So(errors.Is(err, ErrColumnMissing), ShouldBeTrue)
		}
	})

	Convey("ReadColumn reads a column of tab-separated data", t, func() {
		data := "name\tsample_id\r\na\tSRS1\r\n\nb\t SRR2 \nc\t\n"

		ids, err := ReadColumn(strings.NewReader(data), DefaultColumn)
		So(err, ShouldBeNil)
		So(ids, ShouldResemble, []string{"SRS1", "SRR2"})

		ids, err = ReadColumn(strings.NewReader(data), "1")
		So(err, ShouldBeNil)
		So(ids, ShouldResemble, []string{"a", "b", "c"})

		_, err = ReadColumn(strings.NewReader(""), DefaultColumn)
		So(err, ShouldEqual, ErrNoHeader)

		_, err = ReadColumn(strings.NewReader("name\tsample_id\nonly\n"), DefaultColumn)
		So(errors.Is(err, ErrShortLine), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "line 2")
	})

	Convey("ReadFiles reads from multiple files", t, func() {
		dir := t.TempDir()
		a := filepath.Join(dir, "a.tsv")
		b := filepath.Join(dir, "b.tsv")

		So(os.WriteFile(a, []byte("sample_id\nSRS1\n"), 0600), ShouldBeNil)
		So(os.WriteFile(b, []byte("sample_id\nSRR2\nSRS1\n"), 0600), ShouldBeNil)

		ids, err := ReadFiles(DefaultColumn, a, b)
		So(err, ShouldBeNil)
		So(ids, ShouldResemble, []string{"SRS1", "SRR2", "SRS1"})

		_, err = ReadFiles(DefaultColumn, a, filepath.Join(dir, "missing.tsv"))
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "missing.tsv")
	})
}
