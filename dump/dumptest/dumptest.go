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

// package dumptest provides a fake fastq-dump for testing code that uses the
// dump package.

package dumptest

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	binDir      = "bin"
	fixturesDir = "fixtures"
	callsFile   = "calls.log"

	dirPerm  = 0755
	exePerm  = 0755
	filePerm = 0644

	script = `#!/bin/sh
run="$8"
dir="%s"
echo "$run" >> "$dir/` + callsFile + `"
echo "$@" > "$dir/$run.argv"
if [ -f "$dir/$run.err" ]; then cat "$dir/$run.err" >&2; fi
if [ -f "$dir/$run.fastq" ]; then cat "$dir/$run.fastq"; fi
if [ -f "$dir/$run.lines" ]; then seq 1 "$(cat "$dir/$run.lines")"; fi
code=0
if [ -f "$dir/$run.exit" ]; then code=$(cat "$dir/$run.exit"); fi
exit "$code"
`
)

// Fake is a fake SRA toolkit directory containing a fastq-dump shell script
// that outputs whatever you've set up for each run.
type Fake struct {
	root string
}

// New creates a fake toolkit in the given (existing, empty) directory.
func New(dir string) (*Fake, error) {
	f := &Fake{root: dir}

	for _, d := range []string{f.ToolDir(), f.fixtures()} {
		if err := os.MkdirAll(d, dirPerm); err != nil {
			return nil, err
		}
	}

	exe := filepath.Join(f.ToolDir(), "fastq-dump")

	if err := os.WriteFile(exe, []byte(fmt.Sprintf(script, f.fixtures())), exePerm); err != nil {
		return nil, err
	}

	return f, nil
}

// ToolDir is the directory to pass to dump.New().
func (f *Fake) ToolDir() string {
	return filepath.Join(f.root, binDir)
}

func (f *Fake) fixtures() string {
	return filepath.Join(f.root, fixturesDir)
}

func (f *Fake) write(run, ext, content string) error {
	return os.WriteFile(filepath.Join(f.fixtures(), run+ext), []byte(content), filePerm)
}

// AddRun makes fastq-dump print fastq to STDOUT and stderr to STDERR, then
// exit with the given code, when asked for the given run.
func (f *Fake) AddRun(run, fastq, stderr string, exitCode int) error {
	if err := f.write(run, ".fastq", fastq); err != nil {
		return err
	}

	if stderr != "" {
		if err := f.write(run, ".err", stderr); err != nil {
			return err
		}
	}

	return f.write(run, ".exit", strconv.Itoa(exitCode))
}

// AddFloodRun makes fastq-dump print the numbers 1..n, one per line, for the
// given run; far more than a pipe buffer holds for large n.
func (f *Fake) AddFloodRun(run string, n int, exitCode int) error {
	if err := f.write(run, ".lines", strconv.Itoa(n)); err != nil {
		return err
	}

	return f.write(run, ".exit", strconv.Itoa(exitCode))
}

// Calls returns the runs fastq-dump has been called for, in order.
func (f *Fake) Calls() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(f.fixtures(), callsFile))
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return strings.Fields(string(data)), nil
}

// Argv returns the arguments fastq-dump was last called with for the given
// run.
func (f *Fake) Argv(run string) (string, error) {
	data, err := os.ReadFile(filepath.Join(f.fixtures(), run+".argv"))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}
