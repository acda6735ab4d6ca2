// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration observes request latency per route and status code
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds per method, path and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// FXProviderRequestsTotal counts upstream provider calls by outcome
	FXProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_fx_provider_requests_total",
			Help: "Total FX provider fetch attempts by outcome",
		},
		[]string{"outcome"},
	)

	// FXStaleServedTotal counts responses served from an expired snapshot
	FXStaleServedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_fx_stale_served_total",
			Help: "Total rate responses served stale because a fresh fetch failed",
		},
	)

	// FXSnapshotAgeSeconds tracks the age of the last served snapshot
	FXSnapshotAgeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_fx_snapshot_age_seconds",
			Help: "Age in seconds of the most recently served rate snapshot",
		},
	)
)
