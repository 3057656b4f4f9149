// Copyright 2025 The snmptrap-gen Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "snmptrap_gen"

// Metrics about a snmptrap-gen run.
type Metrics struct {
	TrapsSynthesized  prometheus.Counter
	TrapsSent         prometheus.Counter
	TrapsFailed       *prometheus.CounterVec
	SynthesisFailures *prometheus.CounterVec
	SNMPPackets       prometheus.Counter
	SNMPRetries       prometheus.Counter
	SNMPDuration      prometheus.Histogram
	SeenTypes         *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) Metrics {
	factory := promauto.With(reg)
	return Metrics{
		TrapsSynthesized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traps_synthesized_total",
			Help:      "Traps successfully synthesized from the catalog.",
		}),
		TrapsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traps_sent_total",
			Help:      "Traps handed to the transport without error.",
		}),
		TrapsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traps_failed_total",
			Help:      "Traps that could not be delivered, by stage.",
		}, []string{"stage"}),
		SynthesisFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_variable_failures_total",
			Help:      "Trap variables that could not be bound, by failure kind.",
		}, []string{"kind"}),
		SNMPPackets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_total",
			Help:      "SNMP packets sent, including retries.",
		}),
		SNMPRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packet_retries_total",
			Help:      "SNMP packets retried.",
		}),
		SNMPDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "packet_duration_seconds",
			Help:      "Time from sending an inform to receiving its response.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}),
		SeenTypes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seen_types",
			Help:      "Variables seen per semantic type, and whether the type has a registered value.",
		}, []string{"type", "registered"}),
	}
}
