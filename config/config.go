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

package config

import (
	"net"
	"os"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	EnvVarToolDir = "SRALIB"
	EnvVarAPIKey  = "SRA_FETCH_NCBI_API_KEY"
	EnvVarEmail   = "SRA_FETCH_NCBI_EMAIL"
	EnvVarCreds   = "SRA_FETCH_CREDENTIALS_FILE"
	EnvVarUser    = "SRA_FETCH_SQL_USER"
	EnvVarPass    = "SRA_FETCH_SQL_PASS"
	EnvVarHost    = "SRA_FETCH_SQL_HOST"
	EnvVarPort    = "SRA_FETCH_SQL_PORT"
	EnvVarDBName  = "SRA_FETCH_SQL_DB"

	sqlNetwork = "tcp"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrMissingEnvs   = Error("missing required environment variables")
	ErrIncompleteSQL = Error("SRA_FETCH_SQL_* environment variables must all be set, or none of them")
)

type Config struct {
	ToolDir         string
	APIKey          string
	Email           string
	CredentialsPath string
	User            string
	Password        string
	Host            string
	Port            string
	DBName          string
}

// FromEnv returns a new Config with properies populated from environment
// variables. SRALIB, the directory containing the SRA toolkit's fastq-dump, is
// required.
//
// Optional are SRA_FETCH_NCBI_API_KEY and SRA_FETCH_NCBI_EMAIL for querying
// NCBI, SRA_FETCH_CREDENTIALS_FILE for reading Google sheets, and
// SRA_FETCH_SQL_*, where * is amongst: USER, PASS, HOST, PORT and DB, for
// querying a MySQL mirror of the SRA metadata. The SQL ones must be set all
// together or not at all.
//
// If these environment variables are defined in a file called .env (and not
// previously set in an environment variable), they will be automatically
// loaded.
//
// Optionally supply a directory to look for the .env file in.
func FromEnv(dir ...string) (*Config, error) {
	var parentDir string
	if len(dir) == 1 {
		parentDir = dir[0] + string(os.PathSeparator)
	}

	godotenv.Load(parentDir + ".env") //nolint:errcheck

	c := &Config{
		ToolDir:         os.Getenv(EnvVarToolDir),
		APIKey:          os.Getenv(EnvVarAPIKey),
		Email:           os.Getenv(EnvVarEmail),
		CredentialsPath: os.Getenv(EnvVarCreds),
		User:            os.Getenv(EnvVarUser),
		Password:        os.Getenv(EnvVarPass),
		Host:            os.Getenv(EnvVarHost),
		Port:            os.Getenv(EnvVarPort),
		DBName:          os.Getenv(EnvVarDBName),
	}

	if c.ToolDir == "" {
		return nil, ErrMissingEnvs
	}

	sql := []string{c.User, c.Password, c.Host, c.Port, c.DBName}
	set := 0

	for _, v := range sql {
		if v != "" {
			set++
		}
	}

	if set != 0 && set != len(sql) {
		return nil, ErrIncompleteSQL
	}

	return c, nil
}

// HasSQL returns true if the SRA_FETCH_SQL_* variables were set.
func (c *Config) HasSQL() bool {
	return c.Host != ""
}

// MySQLConfig returns a mysql.Config suitable for mirror.New(), or nil if
// HasSQL() is false.
func (c *Config) MySQLConfig() *mysql.Config {
	if !c.HasSQL() {
		return nil
	}

	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = sqlNetwork
	mc.Addr = net.JoinHostPort(c.Host, c.Port)
	mc.DBName = c.DBName
	mc.ParseTime = true

	return mc
}
