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

// package output manages the FASTQ files a sample's reads are written to.

package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/pgzip"
	"github.com/wtsi-hgi/sra-fetch/fastq"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrClosed = Error("output files already closed")

	LeftSuffix      = "_1"
	RightSuffix     = "_2"
	SingletonSuffix = "_s"
	SingleSuffix    = ""

	fastqExtension = ".fastq"
	gzipExtension  = ".gz"
	bufferSize     = 1024 * 1024
	filePerm       = 0644
)

// Path returns the path of the output file for the given sample and suffix.
func Path(dir, sampleID, suffix string, zipped bool) string {
	name := sampleID + suffix + fastqExtension
	if zipped {
		name += gzipExtension
	}

	return filepath.Join(dir, name)
}

// file is one output FASTQ file, optionally gzip compressed.
type file struct {
	path string
	fh   *os.File
	gz   *pgzip.Writer
	buf  *bufio.Writer
}

func create(path string, zipped bool) (*file, error) {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return nil, err
	}

	f := &file{path: path, fh: fh}

	var w io.Writer = fh

	if zipped {
		f.gz = pgzip.NewWriter(fh)
		w = f.gz
	}

	f.buf = bufio.NewWriterSize(w, bufferSize)

	return f, nil
}

func (f *file) write(rec *fastq.Record) error {
	if _, err := rec.WriteTo(f.buf); err != nil {
		return fmt.Errorf("writing %s: %w", f.path, err)
	}

	return nil
}

func (f *file) flush() error {
	if err := f.buf.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", f.path, err)
	}

	if f.gz != nil {
		if err := f.gz.Flush(); err != nil {
			return fmt.Errorf("flushing %s: %w", f.path, err)
		}
	}

	return nil
}

// close flushes and closes everything, returning the first error but always
// closing the underlying file.
func (f *file) close() error {
	err := f.buf.Flush()

	if f.gz != nil {
		if gerr := f.gz.Close(); err == nil {
			err = gerr
		}
	}

	if ferr := f.fh.Close(); err == nil {
		err = ferr
	}

	if err != nil {
		return fmt.Errorf("closing %s: %w", f.path, err)
	}

	return nil
}

// Set is the group of output files for one sample. For paired samples, left
// and right mates go to _1 and _2 files which are created immediately, and
// singletons go to an _s file that is only created if a singleton is written.
// For single samples there is one file that everything is written to.
//
// A Set implements fastq.Sink.
type Set struct {
	dir      string
	sampleID string
	zipped   bool
	layout   fastq.Layout

	left      *file
	right     *file
	singleton *file

	mu     sync.Mutex
	closed bool
}

// Open creates the output files for the given sample in dir, truncating any
// that already exist and removing an old singleton file. You must Close() the
// returned Set.
func Open(dir, sampleID string, layout fastq.Layout, zipped bool) (*Set, error) {
	s := &Set{dir: dir, sampleID: sampleID, zipped: zipped, layout: layout}

	if layout == fastq.LayoutSingle {
		f, err := create(s.path(SingleSuffix), zipped)
		if err != nil {
			return nil, err
		}

		s.left, s.right, s.singleton = f, f, f

		return s, nil
	}

	if err := removeStale(s.path(SingletonSuffix)); err != nil {
		return nil, err
	}

	left, err := create(s.path(LeftSuffix), zipped)
	if err != nil {
		return nil, err
	}

	right, err := create(s.path(RightSuffix), zipped)
	if err != nil {
		left.close() //nolint:errcheck

		return nil, err
	}

	s.left, s.right = left, right

	return s, nil
}

// removeStale deletes a singleton file left by an earlier attempt, since the
// new one is only created if a singleton gets written.
func removeStale(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", path, err)
	}

	return nil
}

func (s *Set) path(suffix string) string {
	return Path(s.dir, s.sampleID, suffix, s.zipped)
}

// Paths returns the paths of the files that have been created so far.
func (s *Set) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.paths()
}

func (s *Set) paths() []string {
	if s.layout == fastq.LayoutSingle {
		return []string{s.left.path}
	}

	paths := []string{s.left.path, s.right.path}

	if s.singleton != nil {
		paths = append(paths, s.singleton.path)
	}

	return paths
}

// WritePair writes the mates to the left and right files (or both to the one
// file of a single sample).
func (s *Set) WritePair(left, right *fastq.Record) error {
	if s.isClosed() {
		return ErrClosed
	}

	if err := s.left.write(left); err != nil {
		return err
	}

	return s.right.write(right)
}

// WriteSingle writes a read to the singleton file, creating it if necessary.
func (s *Set) WriteSingle(read *fastq.Record) error {
	f, err := s.singletonFile()
	if err != nil {
		return err
	}

	return f.write(read)
}

func (s *Set) singletonFile() (*file, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	if s.singleton != nil {
		return s.singleton, nil
	}

	f, err := create(s.path(SingletonSuffix), s.zipped)
	if err != nil {
		return nil, err
	}

	s.singleton = f

	return f, nil
}

func (s *Set) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// Flush pushes buffered data to disk without closing anything.
func (s *Set) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	for _, f := range s.files() {
		if err := f.flush(); err != nil {
			return err
		}
	}

	return nil
}

// files returns each distinct open file once.
func (s *Set) files() []*file {
	if s.layout == fastq.LayoutSingle {
		return []*file{s.left}
	}

	files := []*file{s.left, s.right}

	if s.singleton != nil {
		files = append(files, s.singleton)
	}

	return files
}

// Close closes all the files. It is safe to call more than once; only the
// first call does anything. All files are closed even if some fail, and the
// first error is returned.
func (s *Set) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	var err error

	for _, f := range s.files() {
		if cerr := f.close(); err == nil {
			err = cerr
		}
	}

	return err
}
