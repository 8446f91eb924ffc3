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

// package dump runs the SRA toolkit's fastq-dump to stream the reads of a run.

package dump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/inconshreveable/log15"
	"golang.org/x/sync/errgroup"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNoToolDir      = Error("SRA toolkit directory not specified")
	ErrInvalidToolDir = Error("SRA toolkit directory is not a directory")

	// Exe is the name of the executable we run from the toolkit directory.
	Exe = "fastq-dump"

	stderrCapacity = 30
)

// Tool can run fastq-dump from a particular SRA toolkit installation.
type Tool struct {
	exe    string
	logger log15.Logger
}

// New returns a Tool that will run fastq-dump from the given directory (the
// SRA toolkit bin directory, usually from $SRALIB). Returns an error if dir
// is empty or isn't a directory.
func New(dir string) (*Tool, error) {
	if dir == "" {
		return nil, ErrNoToolDir
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToolDir, dir)
	}

	return &Tool{
		exe:    filepath.Join(dir, Exe),
		logger: log15.New("pkg", "dump"),
	}, nil
}

// Args returns the full command line that will be run to dump the given run:
// read IDs kept, spots split in to their mates, technical reads skipped,
// adapters clipped and only reads passing the filter, all to STDOUT.
func (t *Tool) Args(run string) []string {
	return []string{
		t.exe, "--readids", "--stdout", "--split-spot",
		"--skip-technical", "--clip", "--read-filter", "pass", run,
	}
}

// ProcessError is returned when fastq-dump exits non-zero. Messages holds what
// it wrote to STDERR.
type ProcessError struct {
	Run      string
	ExitCode int
	Messages []string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s failed for run %s with exit code %d", Exe, e.Run, e.ExitCode)

	if len(e.Messages) > 0 {
		msg += ": " + strings.Join(e.Messages, "; ")
	}

	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Stream runs fastq-dump for the given run, passing its STDOUT to consume.
//
// STDIN is inherited. STDOUT and STDERR are read concurrently; whatever
// consume doesn't read of STDOUT (eg. because it hit an error) is discarded,
// so the process is never left blocked on a full pipe. Once both are drained
// we wait for the process to exit.
//
// A non-zero exit is returned as a *ProcessError. Otherwise any error from
// consume is returned, even though the process itself succeeded. STDERR is
// only diagnostic, so failing to read it is logged rather than returned.
func (t *Tool) Stream(run string, consume func(io.Reader) error) error {
	args := t.Args(run)
	t.logger.Debug("download command", "run", run, "cmd", strings.Join(args, " "))

	cmd := exec.Command(args[0], args[1:]...) //nolint:gosec
	cmd.Stdin = os.Stdin

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	if err = cmd.Start(); err != nil {
		return err
	}

	var (
		messages []string
		g        errgroup.Group
	)

	g.Go(func() error {
		cerr := consume(stdout)

		if _, derr := io.Copy(io.Discard, stdout); cerr == nil {
			cerr = derr
		}

		return cerr
	})

	g.Go(func() error {
		var serr error

		messages, serr = readMessages(stderr)
		if serr != nil {
			t.logger.Warn("reading STDERR failed", "run", run, "err", serr)
		}

		io.Copy(io.Discard, stderr) //nolint:errcheck

		return nil
	})

	consumeErr := g.Wait()

	if err = cmd.Wait(); err != nil {
		if consumeErr != nil {
			t.logger.Warn("output error before process failure", "run", run, "err", consumeErr)
		}

		return processError(run, messages, err)
	}

	return consumeErr
}

// readMessages returns the lines of r, which may be of any length.
func readMessages(r io.Reader) ([]string, error) {
	messages := make([]string, 0, stderrCapacity)
	br := bufio.NewReader(r)

	for {
		line, err := br.ReadString('\n')
		if line != "" {
			messages = append(messages, strings.TrimRight(line, "\r\n"))
		}

		if err == io.EOF {
			return messages, nil
		}

		if err != nil {
			return messages, err
		}
	}
}

func processError(run string, messages []string, err error) error {
	code := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}

	return &ProcessError{Run: run, ExitCode: code, Messages: messages, Err: err}
}
