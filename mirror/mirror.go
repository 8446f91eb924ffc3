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

// package mirror resolves SRA accessions using a MySQL database holding a
// mirror of the SRA run metadata.

package mirror

import (
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/wtsi-hgi/sra-fetch/types"
)

const (
	sqlDriverName   = "mysql"
	connMaxLifetime = time.Minute * 3
	maxOpenConns    = 10
	maxIdleConns    = 10

	pairedLayout = "PAIRED"
)

// Mirror is a connection to the SRA metadata mirror database.
type Mirror struct {
	pool *sqlx.DB
}

// New returns a new Mirror connection using mysql.Config that you can get from
// config.FromEnv().MySQLConfig().
func New(c *mysql.Config) (*Mirror, error) {
	pool, err := sqlx.Open(sqlDriverName, c.FormatDSN())
	if err != nil {
		return nil, err
	}

	pool.SetConnMaxLifetime(connMaxLifetime)
	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetMaxIdleConns(maxIdleConns)

	return &Mirror{pool: pool}, pool.Ping()
}

// runRow is one row of the sra_run table.
type runRow struct {
	Experiment string `db:"experiment_accession"`
	Sample     string `db:"sample_accession"`
	Title      string `db:"experiment_title"`
	Layout     string `db:"library_layout"`
	Run        string `db:"run_accession"`
	Spots      int64  `db:"spots"`
}

const getRuns = `
SELECT r.experiment_accession, r.sample_accession, r.experiment_title,
r.library_layout, r.run_accession, COALESCE(r.spots, 0) AS spots
FROM sra_run r
WHERE r.experiment_accession IN (
	SELECT m.experiment_accession FROM sra_run m
	WHERE m.sample_accession IN (?) OR m.run_accession IN (?)
)
ORDER BY r.experiment_accession, r.run_accession
`

// Resolve returns metadata for every experiment that has any of the given
// sample or run accessions. Each experiment's runs are all included, as NCBI
// would report them.
func (m *Mirror) Resolve(ids []string) ([]types.Metadata, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := resolveQuery(ids)
	if err != nil {
		return nil, err
	}

	var rows []runRow

	if err = m.pool.Select(&rows, m.pool.Rebind(query), args...); err != nil {
		return nil, err
	}

	return groupRows(rows), nil
}

// resolveQuery expands the query's IN clauses for the given ids.
func resolveQuery(ids []string) (string, []any, error) {
	return sqlx.In(getRuns, ids, ids)
}

// groupRows turns run rows in to one Metadata per experiment, in the order the
// experiments first appear.
func groupRows(rows []runRow) []types.Metadata {
	var metas []types.Metadata

	index := make(map[string]int)

	for _, r := range rows {
		i, found := index[r.Experiment]
		if !found {
			i = len(metas)
			index[r.Experiment] = i
			metas = append(metas, types.Metadata{
				SampleAccession: r.Sample,
				Title:           r.Title,
				Paired:          strings.EqualFold(strings.TrimSpace(r.Layout), pairedLayout),
			})
		}

		metas[i].Runs = append(metas[i].Runs, types.RunInfo{Accession: r.Run, Spots: r.Spots})
	}

	return metas
}

// Close closes the connection to the mirror.
func (m *Mirror) Close() error {
	return m.pool.Close()
}
