// Copyright 2021 FerretDB Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sorter

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "docvalue"
	subsystem = "spill"
)

// Metrics represents spill blocks metrics.
//
// Nil *Metrics is valid and records nothing.
type Metrics struct {
	Documents *prometheus.CounterVec
	Blocks    *prometheus.CounterVec
	Bytes     *prometheus.CounterVec
}

// NewMetrics creates new spill blocks metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "documents_total",
				Help:      "Total number of spilled documents.",
			},
			[]string{"op"},
		),
		Blocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "blocks_total",
				Help:      "Total number of spill blocks.",
			},
			[]string{"op", "compression"},
		),
		Bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "bytes_total",
				Help:      "Total number of spill block bytes, before (raw) and after (stored) compression.",
			},
			[]string{"op", "kind"},
		),
	}
}

// observeBlock records a single written or read block.
func (m *Metrics) observeBlock(op string, h *blockHeader) {
	if m == nil {
		return
	}

	m.Documents.WithLabelValues(op).Add(float64(h.count))
	m.Blocks.WithLabelValues(op, h.compression.String()).Inc()
	m.Bytes.WithLabelValues(op, "raw").Add(float64(h.rawSize))
	m.Bytes.WithLabelValues(op, "stored").Add(float64(blockHeaderSize + h.storedSize))
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.Documents.Describe(ch)
	m.Blocks.Describe(ch)
	m.Bytes.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.Documents.Collect(ch)
	m.Blocks.Collect(ch)
	m.Bytes.Collect(ch)
}

// check interfaces
var (
	_ prometheus.Collector = (*Metrics)(nil)
)
