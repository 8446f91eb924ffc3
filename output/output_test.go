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

package output

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/klauspost/pgzip"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/wtsi-hgi/sra-fetch/fastq"
)

func testRecord(id, suffix string) *fastq.Record {
	return &fastq.Record{
		Header:   "@" + id + suffix + " length=4",
		Sequence: "ACGT",
		Plus:     "+",
		Quality:  "IIII",
		ID:       id,
	}
}

func recordText(id, suffix string) string {
	return "@" + id + suffix + " length=4\nACGT\n+\nIIII\n"
}

func fileContents(path string) string {
	contents, err := os.ReadFile(path)
	if err != nil {
		return err.Error()
	}

	return string(contents)
}

func gzipContents(path string) string {
	fh, err := os.Open(path)
	if err != nil {
		return err.Error()
	}

	defer fh.Close()

	gr, err := pgzip.NewReader(fh)
	if err != nil {
		return err.Error()
	}

	defer gr.Close()

	b, err := io.ReadAll(gr)
	if err != nil {
		return err.Error()
	}

	return string(b)
}

func exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

func TestOutput(t *testing.T) {
	Convey("Path builds FASTQ file names", t, func() {
		So(Path("/out", "SRS1", LeftSuffix, false), ShouldEqual, "/out/SRS1_1.fastq")
		So(Path("/out", "SRS1", SingletonSuffix, true), ShouldEqual, "/out/SRS1_s.fastq.gz")
		So(Path("/out", "SRS1", SingleSuffix, true), ShouldEqual, "/out/SRS1.fastq.gz")
	})

	Convey("Given an output directory", t, func() {
		dir := t.TempDir()

		Convey("You can open a paired Set, which creates _1 and _2 but not _s", func() {
			s, err := Open(dir, "SRS1", fastq.LayoutPaired, false)
			So(err, ShouldBeNil)

			left := filepath.Join(dir, "SRS1_1.fastq")
			right := filepath.Join(dir, "SRS1_2.fastq")
			single := filepath.Join(dir, "SRS1_s.fastq")

			So(exists(left), ShouldBeTrue)
			So(exists(right), ShouldBeTrue)
			So(exists(single), ShouldBeFalse)
			So(s.Paths(), ShouldResemble, []string{left, right})

			Convey("Pairs go to _1 and _2 and singletons to a lazily created _s", func() {
				So(s.WritePair(testRecord("S1", ".1"), testRecord("S1", ".2")), ShouldBeNil)
				So(exists(single), ShouldBeFalse)

				So(s.WriteSingle(testRecord("S2", ".2")), ShouldBeNil)
				So(s.WriteSingle(testRecord("S3", ".1")), ShouldBeNil)
				So(exists(single), ShouldBeTrue)
				So(s.Paths(), ShouldResemble, []string{left, right, single})

				So(s.Flush(), ShouldBeNil)
				So(fileContents(left), ShouldEqual, recordText("S1", ".1"))

				So(s.Close(), ShouldBeNil)
				So(fileContents(left), ShouldEqual, recordText("S1", ".1"))
				So(fileContents(right), ShouldEqual, recordText("S1", ".2"))
				So(fileContents(single), ShouldEqual, recordText("S2", ".2")+recordText("S3", ".1"))
			})

			Convey("Close only works once and later writes fail", func() {
				So(s.Close(), ShouldBeNil)
				So(s.Close(), ShouldBeNil)
				So(s.Flush(), ShouldEqual, ErrClosed)
				So(s.WritePair(testRecord("S1", ".1"), testRecord("S1", ".2")), ShouldEqual, ErrClosed)
				So(s.WriteSingle(testRecord("S1", ".1")), ShouldEqual, ErrClosed)
				So(exists(single), ShouldBeFalse)
			})

			Convey("Concurrent first use of the singleton file creates it only once", func() {
				var wg sync.WaitGroup

				got := make([]*file, 10)

				for i := range got {
					wg.Add(1)

					go func(i int) {
						defer wg.Done()

						f, err := s.singletonFile()
						if err == nil {
							got[i] = f
						}
					}(i)
				}

				wg.Wait()

				for _, f := range got {
					So(f, ShouldNotBeNil)
					So(f, ShouldEqual, got[0])
				}

				So(s.Close(), ShouldBeNil)
			})
		})

		Convey("Reopening a paired Set replaces files from an earlier attempt", func() {
			left := filepath.Join(dir, "SRS5_1.fastq")
			single := filepath.Join(dir, "SRS5_s.fastq")

			So(os.WriteFile(left, []byte(recordText("OLD", ".1")), 0600), ShouldBeNil)
			So(os.WriteFile(single, []byte(recordText("OLD", ".2")), 0600), ShouldBeNil)

			s, err := Open(dir, "SRS5", fastq.LayoutPaired, false)
			So(err, ShouldBeNil)
			So(exists(single), ShouldBeFalse)
			So(fileContents(left), ShouldBeBlank)

			So(s.WritePair(testRecord("S1", ".1"), testRecord("S1", ".2")), ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			So(fileContents(left), ShouldEqual, recordText("S1", ".1"))
			So(exists(single), ShouldBeFalse)

			So(os.WriteFile(single+gzipExtension, []byte("stale"), 0600), ShouldBeNil)

			s, err = Open(dir, "SRS5", fastq.LayoutPaired, true)
			So(err, ShouldBeNil)
			So(s.Close(), ShouldBeNil)
			So(exists(single+gzipExtension), ShouldBeFalse)
		})

		Convey("A single Set writes everything to one file", func() {
			s, err := Open(dir, "SRS2", fastq.LayoutSingle, false)
			So(err, ShouldBeNil)

			So(s.WritePair(testRecord("A", ""), testRecord("B", "")), ShouldBeNil)
			So(s.WriteSingle(testRecord("C", "")), ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			path := filepath.Join(dir, "SRS2.fastq")
			So(s.Paths(), ShouldResemble, []string{path})
			So(fileContents(path), ShouldEqual, recordText("A", "")+recordText("B", "")+recordText("C", ""))
			So(exists(filepath.Join(dir, "SRS2_s.fastq")), ShouldBeFalse)
			So(exists(filepath.Join(dir, "SRS2_1.fastq")), ShouldBeFalse)
		})

		Convey("Zipped Sets write gzip files", func() {
			s, err := Open(dir, "SRS3", fastq.LayoutPaired, true)
			So(err, ShouldBeNil)

			So(s.WritePair(testRecord("S1", ".1"), testRecord("S1", ".2")), ShouldBeNil)
			So(s.WriteSingle(testRecord("S2", ".1")), ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			So(gzipContents(filepath.Join(dir, "SRS3_1.fastq.gz")), ShouldEqual, recordText("S1", ".1"))
			So(gzipContents(filepath.Join(dir, "SRS3_2.fastq.gz")), ShouldEqual, recordText("S1", ".2"))
			So(gzipContents(filepath.Join(dir, "SRS3_s.fastq.gz")), ShouldEqual, recordText("S2", ".1"))
		})

		Convey("Opening in a missing directory fails", func() {
			_, err := Open(filepath.Join(dir, "missing"), "SRS4", fastq.LayoutPaired, false)
			So(err, ShouldNotBeNil)
		})
	})
}
