// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package analyser

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "bloattool"

// Metrics counts the work done by the analyses sharing it.
type Metrics struct {
	SymbolsExtracted prometheus.Counter
	Attributions     *prometheus.CounterVec
	IRFilesParsed    prometheus.Counter
	Duration         prometheus.Histogram
}

// NewMetrics creates the metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SymbolsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "symbols_extracted_total",
			Help:      "Number of code symbols extracted from binaries.",
		}),
		Attributions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "attributions_total",
			Help:      "Number of symbols attributed to a unit, by exactness.",
		}, []string{"exact"}),
		IRFilesParsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ir_files_parsed_total",
			Help:      "Number of LLVM IR files parsed.",
		}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of binary analyses.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

func (m *Metrics) observeSnapshot(s *Snapshot) {
	if m == nil {
		return
	}
	m.SymbolsExtracted.Add(float64(len(s.Symbols)))
	for _, sym := range s.Symbols {
		m.Attributions.WithLabelValues(strconv.FormatBool(sym.Exact)).Inc()
	}
}

func (m *Metrics) irCounter() prometheus.Counter {
	if m == nil {
		return nil
	}
	return m.IRFilesParsed
}
