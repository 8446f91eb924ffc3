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
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const filePerm = 0644

func TestConfig(t *testing.T) {
	Convey("Given a full set of env vars, you can make a config", t, func() {
		testToolDir := "/sra/bin"
		testKey := "key"
		testEmail := "me@example.com"
		testPath := "/path"
		testUser := "user"
		testPass := "pass"
		testHost := "host"
		testPort := "1234"
		testDBName := "db"

		t.Setenv(EnvVarToolDir, testToolDir)
		t.Setenv(EnvVarAPIKey, testKey)
		t.Setenv(EnvVarEmail, testEmail)
		t.Setenv(EnvVarCreds, testPath)
		t.Setenv(EnvVarUser, testUser)
		t.Setenv(EnvVarPass, testPass)
		t.Setenv(EnvVarHost, testHost)
		t.Setenv(EnvVarPort, testPort)
		t.Setenv(EnvVarDBName, testDBName)

		config, err := FromEnv()
		So(err, ShouldBeNil)
		So(config, ShouldNotBeNil)
		So(config.ToolDir, ShouldEqual, testToolDir)
		So(config.APIKey, ShouldEqual, testKey)
		So(config.Email, ShouldEqual, testEmail)
		So(config.CredentialsPath, ShouldEqual, testPath)
		So(config.User, ShouldEqual, testUser)
		So(config.Password, ShouldEqual, testPass)
		So(config.Host, ShouldEqual, testHost)
		So(config.Port, ShouldEqual, testPort)
		So(config.DBName, ShouldEqual, testDBName)

		So(config.HasSQL(), ShouldBeTrue)

		mc := config.MySQLConfig()
		So(mc, ShouldNotBeNil)
		So(mc.User, ShouldEqual, testUser)
		So(mc.Passwd, ShouldEqual, testPass)
		So(mc.Addr, ShouldEqual, "host:1234")
		So(mc.DBName, ShouldEqual, testDBName)
		So(mc.FormatDSN(), ShouldStartWith, "user:pass@tcp(host:1234)/db")

		Convey("Without SRALIB, FromEnv fails", func() {
			os.Setenv(EnvVarToolDir, "")
			config, err := FromEnv()
			So(err, ShouldEqual, ErrMissingEnvs)
			So(config, ShouldBeNil)
		})

		Convey("With only some SQL env vars, FromEnv fails", func() {
			os.Setenv(EnvVarPass, "")
			config, err := FromEnv()
			So(err, ShouldEqual, ErrIncompleteSQL)
			So(config, ShouldBeNil)
		})

		Convey("Without any SQL env vars, there's no MySQL config", func() {
			for _, key := range []string{EnvVarUser, EnvVarPass, EnvVarHost, EnvVarPort, EnvVarDBName} {
				os.Setenv(key, "")
			}

			config, err := FromEnv()
			So(err, ShouldBeNil)
			So(config.HasSQL(), ShouldBeFalse)
			So(config.MySQLConfig(), ShouldBeNil)
		})

		Convey("You can load values from an .env file", func() {
			os.Unsetenv(EnvVarToolDir)
			os.Unsetenv(EnvVarUser)

			dir := t.TempDir()

			config, err := FromEnv(dir)
			So(err, ShouldEqual, ErrMissingEnvs)
			So(config, ShouldBeNil)

			err = os.WriteFile(dir+"/.env",
				[]byte(EnvVarToolDir+"=/file/bin\n"+EnvVarUser+"=fileuser\n"+EnvVarDBName+"=filedb"), filePerm)
			So(err, ShouldBeNil)

			config, err = FromEnv(dir)
			So(err, ShouldBeNil)
			So(config.ToolDir, ShouldEqual, "/file/bin")
			So(config.User, ShouldEqual, "fileuser")
			So(config.CredentialsPath, ShouldEqual, testPath)
			So(config.DBName, ShouldEqual, testDBName)
		})
	})
}
