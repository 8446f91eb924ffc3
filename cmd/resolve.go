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
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/sra-fetch/config"
	"github.com/wtsi-hgi/sra-fetch/fleet"
)

// resolveCmd represents the resolve command.
var resolveCmd = &cobra.Command{
	Use:   "resolve [input.tsv ...]",
	Short: "Show the samples and runs for accessions.",
	Long: `Show the samples and runs for accessions.

Reads accessions the same way as the fetch sub-command, looks them up, and
prints the resulting samples as JSON, without downloading anything. Each sample
shows its ID (which is the directory fetch would download it to), title,
layout, runs in the order they would be downloaded, and estimated spot count.
`,
	Run: func(_ *cobra.Command, args []string) {
		if err := resolveAccessions(args); err != nil {
			die(err)
		}
	},
}

func init() {
	RootCmd.AddCommand(resolveCmd)

	addInputFlags(resolveCmd)
}

func resolveAccessions(paths []string) error {
	c, err := config.FromEnv()
	if err != nil {
		return err
	}

	ids, err := readAccessions(c, paths)
	if err != nil {
		return err
	}

	resolver, done, err := newResolver(c)
	if err != nil {
		return err
	}

	defer done()

	samples, err := fleet.New(resolver, nil, fleet.Options{BatchSize: batchSize}).Resolve(ids)
	if err != nil {
		return err
	}

	bytes, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return err
	}

	cliPrintRaw(string(bytes) + "\n")

	return nil
}
