// Package metrics provides the Prometheus registry used by the polls client.
// All metrics are defined in their respective packages (client, pagination,
// store) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the polls client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer exposes the registered metrics, e.g. for a promhttp handler or a
// one-shot dump from the CLI.
var Gatherer = prometheus.DefaultGatherer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - polls_client_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//     (status is "transport_error" when no response was received)
//   - polls_client_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - polls_client_errors_total{kind} (Counter): Errors by kind (not_found, validation, http, transport, unknown)
//
// Drain Metrics (pkg/pagination):
//   - polls_drain_pages_total (Counter): Pages fetched while draining
//   - polls_drain_records_total (Counter): Records accumulated while draining
//   - polls_drain_duration_seconds (Histogram): Duration of complete drains
//
// Snapshot Metrics (pkg/store):
//   - polls_snapshot_writes_total{result} (Counter): Snapshot writes by result (ok, error)
//
// Example Prometheus Queries:
//
//   # Request Error Rate by kind
//   sum by (kind) (rate(polls_client_errors_total[5m]))
//
//   # Average pages per drain
//   rate(polls_drain_pages_total[1h]) / rate(polls_drain_duration_seconds_count[1h])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(polls_client_request_duration_seconds_bucket[5m]))
