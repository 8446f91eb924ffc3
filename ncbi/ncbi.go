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

// package ncbi resolves SRA sample and run accessions to their metadata using
// NCBI's E-utilities.

package ncbi

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/wtsi-hgi/sra-fetch/types"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrUnexpectedXML = Error("unexpected XML from NCBI")

	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	toolName       = "sra-fetch"
	database       = "sra"
	accessionField = "[ACCN]"
	searchPath     = "/esearch.fcgi"
	fetchPath      = "/efetch.fcgi"

	httpTimeout = 5 * time.Minute

	// NCBI allows 3 requests a second, or 10 with an API key.
	intervalNoKey   = time.Second / 3
	intervalWithKey = time.Second / 10

	errorSnippetLength = 200
)

// APIError captures non-2xx responses from NCBI.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ncbi error: status=%d message=%s", e.StatusCode, e.Message)
}

// Client queries the SRA database through E-utilities.
type Client struct {
	BaseURL    string
	APIKey     string
	Email      string
	HTTPClient *http.Client

	mu       sync.Mutex
	last     time.Time
	interval time.Duration
	logger   log15.Logger
}

// New returns a Client. apiKey and email are optional, but NCBI would like an
// email, and an API key lets you make more requests per second.
func New(apiKey, email string) *Client {
	interval := intervalNoKey
	if apiKey != "" {
		interval = intervalWithKey
	}

	return &Client{
		BaseURL:    DefaultBaseURL,
		APIKey:     apiKey,
		Email:      email,
		HTTPClient: &http.Client{Timeout: httpTimeout},
		interval:   interval,
		logger:     log15.New("pkg", "ncbi"),
	}
}

type searchResult struct {
	XMLName  xml.Name `xml:"eSearchResult"`
	Count    int      `xml:"Count"`
	QueryKey string   `xml:"QueryKey"`
	WebEnv   string   `xml:"WebEnv"`
	Error    string   `xml:"ERROR"`
}

type experimentPackageSet struct {
	XMLName  xml.Name            `xml:"EXPERIMENT_PACKAGE_SET"`
	Packages []experimentPackage `xml:"EXPERIMENT_PACKAGE"`
}

type experimentPackage struct {
	Experiment struct {
		Accession string `xml:"accession,attr"`
		Title     string `xml:"TITLE"`
		Layout    struct {
			Paired *struct{} `xml:"PAIRED"`
		} `xml:"DESIGN>LIBRARY_DESCRIPTOR>LIBRARY_LAYOUT"`
	} `xml:"EXPERIMENT"`
	Sample struct {
		Accession string `xml:"accession,attr"`
	} `xml:"SAMPLE"`
	Runs []struct {
		Accession  string `xml:"accession,attr"`
		TotalSpots string `xml:"total_spots,attr"`
	} `xml:"RUN_SET>RUN"`
}

// Resolve looks up the given accessions, which can be samples or runs, and
// returns the metadata of every experiment package that matched.
func (c *Client) Resolve(ids []string) ([]types.Metadata, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	search, err := c.search(ids)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("search complete", "ids", len(ids), "found", search.Count)

	if search.Count == 0 {
		return nil, nil
	}

	return c.fetch(search)
}

// SearchTerm returns the E-utilities search term that finds the given
// accessions.
func SearchTerm(ids []string) string {
	terms := make([]string, len(ids))

	for i, id := range ids {
		terms[i] = id + accessionField
	}

	return strings.Join(terms, " OR ")
}

func (c *Client) search(ids []string) (*searchResult, error) {
	params := c.params()
	params.Set("term", SearchTerm(ids))
	params.Set("usehistory", "y")
	params.Set("retmax", "0")

	result := &searchResult{}
	if err := c.post(searchPath, params, result); err != nil {
		return nil, err
	}

	if result.Error != "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: result.Error}
	}

	return result, nil
}

func (c *Client) fetch(search *searchResult) ([]types.Metadata, error) {
	params := c.params()
	params.Set("query_key", search.QueryKey)
	params.Set("WebEnv", search.WebEnv)
	params.Set("retmode", "xml")
	params.Set("retstart", "0")
	params.Set("retmax", strconv.Itoa(search.Count))

	set := &experimentPackageSet{}
	if err := c.post(fetchPath, params, set); err != nil {
		return nil, err
	}

	metas := make([]types.Metadata, 0, len(set.Packages))

	for _, pkg := range set.Packages {
		metas = append(metas, pkg.metadata())
	}

	return metas, nil
}

func (p experimentPackage) metadata() types.Metadata {
	meta := types.Metadata{
		SampleAccession: p.Sample.Accession,
		Title:           strings.TrimSpace(p.Experiment.Title),
		Paired:          p.Experiment.Layout.Paired != nil,
		Runs:            make([]types.RunInfo, 0, len(p.Runs)),
	}

	for _, run := range p.Runs {
		spots, err := strconv.ParseInt(run.TotalSpots, 10, 64)
		if err != nil {
			spots = 0
		}

		meta.Runs = append(meta.Runs, types.RunInfo{Accession: run.Accession, Spots: spots})
	}

	return meta
}

func (c *Client) params() url.Values {
	params := url.Values{}
	params.Set("db", database)
	params.Set("tool", toolName)

	if c.APIKey != "" {
		params.Set("api_key", c.APIKey)
	}

	if c.Email != "" {
		params.Set("email", c.Email)
	}

	return params
}

// wait blocks until enough time has passed since the last request.
func (c *Client) wait() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gap := c.interval - time.Since(c.last); gap > 0 {
		time.Sleep(gap)
	}

	c.last = time.Now()
}

func (c *Client) post(path string, params url.Values, out any) error {
	c.wait()

	resp, err := c.HTTPClient.PostForm(c.BaseURL+path, params)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: snippet(body)}
	}

	if err = xml.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrUnexpectedXML, err, snippet(body))
	}

	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > errorSnippetLength {
		s = s[:errorSnippetLength]
	}

	return s
}
