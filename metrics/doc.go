// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package metrics exposes Prometheus collectors through go-kit metric interfaces.

The package-level Election and API values start as no-op collectors, so code
that records metrics works without setup. main calls InitPrometheusMetrics
once and mounts Handler on /metrics.

Collectors, all under the quickly_elect namespace:

  - election_created_total{method}
  - election_ballots_cast_total{method}
  - election_finalized_total{method,trigger}
  - election_publish_failures_total{method}
  - election_open_timers
  - api_requests_total, api_request_errors_total, api_request_duration_seconds
*/
package metrics
