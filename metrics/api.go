// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"strconv"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type APIMetrics struct {
	RequestsTotal          metrics.Counter
	RequestErrorsTotal     metrics.Counter
	RequestDurationSeconds metrics.Histogram
}

// Observe records one finished request. Status codes >= 400 also count as errors.
func (m *APIMetrics) Observe(endpoint, method string, status int, took time.Duration) {
	labels := []string{"endpoint", endpoint, "method", method, "status", strconv.Itoa(status)}
	m.RequestsTotal.With(labels...).Add(1)
	if status >= 400 {
		m.RequestErrorsTotal.With(labels...).Add(1)
	}
	m.RequestDurationSeconds.With(labels...).Observe(took.Seconds())
}

func PromAPIMetrics() *APIMetrics {
	return &APIMetrics{
		RequestsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "requests_total",
			Help:      "Total number of requests.",
		}, []string{"endpoint", "method", "status"}),
		RequestErrorsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "request_errors_total",
			Help:      "Total number of request errors.",
		}, []string{"endpoint", "method", "status"}),
		RequestDurationSeconds: prometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "request_duration_seconds",
			Help:      "Request latency.",
		}, []string{"endpoint", "method", "status"}),
	}
}

func NopAPIMetrics() *APIMetrics {
	return &APIMetrics{
		RequestsTotal:          discard.NewCounter(),
		RequestErrorsTotal:     discard.NewCounter(),
		RequestDurationSeconds: discard.NewHistogram(),
	}
}
