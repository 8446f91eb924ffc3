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

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/sra-fetch/accession"
	"github.com/wtsi-hgi/sra-fetch/config"
	"github.com/wtsi-hgi/sra-fetch/fleet"
	"github.com/wtsi-hgi/sra-fetch/mirror"
	"github.com/wtsi-hgi/sra-fetch/ncbi"
	"github.com/wtsi-hgi/sra-fetch/sheets"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNoMirror     = Error("--mirror needs the SRA_FETCH_SQL_* environment variables to be set")
	ErrBadBatchSize = Error("--batch-size must be at least 1")
	ErrNoAccessions = Error("no accessions found in the input")

	stdinPath        = "-"
	defaultSheetName = "Samples"
)

// options shared by commands that read accessions.
var (
	inputColumn    string
	inputSheet     string
	inputSheetName string
	useMirror      bool
	batchSize      int
)

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&inputColumn, "col", "c", accession.DefaultColumn,
		"name or 1-based number of the input column holding the accessions")
	cmd.Flags().StringVar(&inputSheet, "sheet", "",
		"read accessions from this Google sheet ID instead of from files")
	cmd.Flags().StringVar(&inputSheetName, "sheet-name", defaultSheetName,
		"name of the sheet within the --sheet document")
	cmd.Flags().BoolVar(&useMirror, "mirror", false,
		"resolve accessions using the SRA_FETCH_SQL_* MySQL mirror instead of NCBI")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", fleet.DefaultBatchSize,
		"number of accessions to resolve at a time")
}

// readAccessions reads accessions from the --sheet if given, otherwise from
// the given tab-separated files, or STDIN if none are given.
func readAccessions(c *config.Config, paths []string) ([]string, error) {
	var (
		ids []string
		err error
	)

	if inputSheet != "" {
		ids, err = accessionsFromSheet(c)
	} else {
		if len(paths) == 0 {
			paths = []string{stdinPath}
		}

		ids, err = accession.ReadFiles(inputColumn, paths...)
	}

	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, ErrNoAccessions
	}

	info("%d accessions read", len(ids))

	return ids, nil
}

func accessionsFromSheet(c *config.Config) ([]string, error) {
	sc, err := sheets.ServiceCredentialsFromConfig(c)
	if err != nil {
		return nil, err
	}

	s, err := sheets.New(sc)
	if err != nil {
		return nil, err
	}

	return s.Accessions(inputSheet, inputSheetName, inputColumn)
}

// newResolver is how commands get their resolver; tests can replace it.
var newResolver = getResolver

// getResolver returns the resolver chosen by --mirror, and a function to call
// when you're done with it.
func getResolver(c *config.Config) (fleet.Resolver, func(), error) {
	if batchSize < 1 {
		return nil, nil, ErrBadBatchSize
	}

	if !useMirror {
		return ncbi.New(c.APIKey, c.Email), func() {}, nil
	}

	if !c.HasSQL() {
		return nil, nil, ErrNoMirror
	}

	m, err := mirror.New(c.MySQLConfig())
	if err != nil {
		return nil, nil, err
	}

	return m, func() {
		if errc := m.Close(); errc != nil {
			warn("closing mirror connection failed: %s", errc)
		}
	}, nil
}
