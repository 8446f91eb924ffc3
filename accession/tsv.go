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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	ErrNoHeader      = Error("input has no header line")
	ErrColumnMissing = Error("column not found in header")
	ErrShortLine     = Error("line has too few columns")

	// DefaultColumn is the name of the column we read accessions from if
	// not told otherwise.
	DefaultColumn = "sample_id"

	columnSep = "\t"
)

// ColumnIndex finds the 0-based index of column in the given header fields.
// column can be a header name or a 1-based column number.
func ColumnIndex(header []string, column string) (int, error) {
	for i, name := range header {
		if name == column {
			return i, nil
		}
	}

	n, err := strconv.Atoi(column)
	if err == nil && n >= 1 && n <= len(header) {
		return n - 1, nil
	}

	return -1, fmt.Errorf("%w: %s", ErrColumnMissing, column)
}

// ReadColumn reads tab-separated data with a header line from r and returns
// the trimmed values of the given column (see ColumnIndex()). Blank lines and
// blank values are skipped.
func ReadColumn(r io.Reader, column string) ([]string, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}

		return nil, ErrNoHeader
	}

	idx, err := ColumnIndex(splitLine(scanner.Text()), column)
	if err != nil {
		return nil, err
	}

	var ids []string

	lineNum := 1

	for scanner.Scan() {
		lineNum++

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := splitLine(line)
		if idx >= len(fields) {
			return nil, fmt.Errorf("%w: line %d", ErrShortLine, lineNum)
		}

		if id := strings.TrimSpace(fields[idx]); id != "" {
			ids = append(ids, id)
		}
	}

	return ids, scanner.Err()
}

func splitLine(line string) []string {
	return strings.Split(strings.TrimRight(line, "\r"), columnSep)
}

// ReadFiles calls ReadColumn() on each of the given files in turn and returns
// all their values. A path of "-" means STDIN.
func ReadFiles(column string, paths ...string) ([]string, error) {
	var ids []string

	for _, path := range paths {
		these, err := readFile(path, column)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		ids = append(ids, these...)
	}

	return ids, nil
}

func readFile(path, column string) ([]string, error) {
	if path == "-" {
		return ReadColumn(os.Stdin, column)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	return ReadColumn(f, column)
}
