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

package fleet

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/wtsi-hgi/sra-fetch/download"
)

// Metrics counts what a Scheduler has done, for export in the prometheus text
// format.
type Metrics struct {
	registry *prometheus.Registry
	samples  *prometheus.CounterVec
	records  *prometheus.CounterVec
	runs     prometheus.Counter
}

// NewMetrics returns Metrics registered in their own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	samples := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sra_fetch_samples_total",
		Help: "Total samples by outcome.",
	}, []string{"outcome"})
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sra_fetch_records_total",
		Help: "Total FASTQ records by how they were written.",
	}, []string{"kind"})
	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sra_fetch_runs_total",
		Help: "Total runs downloaded completely.",
	})

	registry.MustRegister(samples, records, runs)

	return &Metrics{
		registry: registry,
		samples:  samples,
		records:  records,
		runs:     runs,
	}
}

// Gatherer returns the registry the metrics are in.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Metrics) observeSample(o outcome) {
	if m == nil {
		return
	}

	m.samples.WithLabelValues(string(o)).Inc()
}

func (m *Metrics) observeStats(stats download.Stats) {
	if m == nil {
		return
	}

	m.runs.Add(float64(stats.Runs))
	m.records.WithLabelValues("read").Add(float64(stats.Reads))
	m.records.WithLabelValues("pair").Add(float64(stats.Pairs))
	m.records.WithLabelValues("singleton").Add(float64(stats.Singles))
	m.records.WithLabelValues("error").Add(float64(stats.Errors))
}

// WriteTextfile writes the current metric values to path in the prometheus
// text format, suitable for the node exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
