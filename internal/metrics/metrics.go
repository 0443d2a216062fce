// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

var (
	// HTTPRequestsTotal counts requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks request latency by method, route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// VariantResolutions counts storefront resolve attempts by outcome
	// (resolved, incomplete, unresolved, no_variants).
	VariantResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "variant",
			Name:      "resolutions_total",
			Help:      "Variant resolution attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// VariantValidationFailures counts rejected variant lists by failing field.
	VariantValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "variant",
			Name:      "validation_failures_total",
			Help:      "Rejected product variant updates by field.",
		},
		[]string{"field"},
	)

	// ProductCacheLookups counts product cache hits and misses.
	ProductCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "product_lookups_total",
			Help:      "Product cache lookups by result.",
		},
		[]string{"result"},
	)
)
