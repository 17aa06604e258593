// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pds

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unknownNSID labels requests for methods the router does not serve,
// so arbitrary client paths cannot grow the label space.
const unknownNSID = "unknown"

// Metrics holds the XRPC request collectors on a registry owned by one
// server, so several servers in a process (as in tests) never collide.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them, together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	metrics := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rpds",
				Subsystem: "xrpc",
				Name:      "requests_total",
				Help:      "Total XRPC requests.",
			},
			[]string{"nsid", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "rpds",
				Subsystem: "xrpc",
				Name:      "request_duration_seconds",
				Help:      "XRPC request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"nsid", "status"},
		),
	}
	metrics.registry.MustRegister(
		metrics.requests,
		metrics.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Record counts one request and observes its duration.
func (m *Metrics) Record(nsid string, status int, duration time.Duration) {
	statusLabel := strconv.Itoa(status)
	m.requests.WithLabelValues(nsid, statusLabel).Inc()
	m.duration.WithLabelValues(nsid, statusLabel).Observe(duration.Seconds())
}
