// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// ElectionMetrics counts lifecycle events, labelled by voting method
type ElectionMetrics struct {
	Created         metrics.Counter
	BallotsCast     metrics.Counter
	Finalized       metrics.Counter
	PublishFailures metrics.Counter
	OpenTimers      metrics.Gauge
}

func (m *ElectionMetrics) ElectionCreated(method string) {
	m.Created.With("method", method).Add(1)
}

func (m *ElectionMetrics) BallotCast(method string) {
	m.BallotsCast.With("method", method).Add(1)
}

// ElectionFinalized records a close; trigger is "deadline", "admin" or "recovery"
func (m *ElectionMetrics) ElectionFinalized(method, trigger string) {
	m.Finalized.With("method", method, "trigger", trigger).Add(1)
}

func (m *ElectionMetrics) PublishFailed(method string) {
	m.PublishFailures.With("method", method).Add(1)
}

func (m *ElectionMetrics) SetOpenTimers(n int) {
	m.OpenTimers.Set(float64(n))
}

func PromElectionMetrics() *ElectionMetrics {
	return &ElectionMetrics{
		Created: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ElectionSubsystem,
			Name:      "created_total",
			Help:      "Total number of elections created.",
		}, []string{"method"}),
		BallotsCast: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ElectionSubsystem,
			Name:      "ballots_cast_total",
			Help:      "Total number of accepted ballots, replacements included.",
		}, []string{"method"}),
		Finalized: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ElectionSubsystem,
			Name:      "finalized_total",
			Help:      "Total number of finalized elections.",
		}, []string{"method", "trigger"}),
		PublishFailures: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ElectionSubsystem,
			Name:      "publish_failures_total",
			Help:      "Total number of results that could not be published.",
		}, []string{"method"}),
		OpenTimers: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: ElectionSubsystem,
			Name:      "open_timers",
			Help:      "Number of armed deadline timers.",
		}, []string{}),
	}
}

func NopElectionMetrics() *ElectionMetrics {
	return &ElectionMetrics{
		Created:         discard.NewCounter(),
		BallotsCast:     discard.NewCounter(),
		Finalized:       discard.NewCounter(),
		PublishFailures: discard.NewCounter(),
		OpenTimers:      discard.NewGauge(),
	}
}
