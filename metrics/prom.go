// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Election = NopElectionMetrics()
	API      = NopAPIMetrics()
)

// InitPrometheusMetrics swaps the no-op collectors for Prometheus ones.
// Call it once at startup; registering twice panics.
func InitPrometheusMetrics() {
	Election = PromElectionMetrics()
	API = PromAPIMetrics()
}

// Handler serves the default Prometheus registry
func Handler() http.Handler {
	return promhttp.Handler()
}
