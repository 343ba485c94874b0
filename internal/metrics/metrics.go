// Package metrics exposes the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled requests by endpoint and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchtube_requests_total",
		Help: "Handled HTTP requests by endpoint and status code.",
	}, []string{"endpoint", "status"})

	// ManifestFetches counts manifest resolutions by source and outcome.
	ManifestFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchtube_manifest_fetches_total",
		Help: "Manifest fetch attempts by source (extractor, oembed) and outcome.",
	}, []string{"source", "outcome"})

	// RelayAttempts counts relay attempts by outcome, fallbacks included.
	RelayAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchtube_relay_attempts_total",
		Help: "Stream relay attempts by outcome.",
	}, []string{"outcome"})

	// RateLimited counts denied requests.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchtube_rate_limited_total",
		Help: "Requests denied by the rate limiter.",
	})

	// RelayBytes totals bytes forwarded to clients.
	RelayBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchtube_relay_bytes_total",
		Help: "Bytes relayed to clients.",
	})
)
