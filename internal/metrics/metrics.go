// Package metrics provides Prometheus metrics for the HTTP server and the panel.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests.
	// Labels: method, route, status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "queridodiario",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency.
	// Labels: method, route
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "queridodiario",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RateLimitedTotal counts requests rejected by a rate limiter.
	// Labels: limiter (login, panel)
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "queridodiario",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by rate limiting",
		},
		[]string{"limiter"},
	)

	// CompletionsRecorded counts panel marks.
	// Labels: kind (binary, incremental, extra)
	CompletionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "queridodiario",
			Subsystem: "panel",
			Name:      "completions_recorded_total",
			Help:      "Total number of completions recorded from the panel",
		},
		[]string{"kind"},
	)

	// NotesSaved counts note saves.
	// Labels: action (saved, cleared)
	NotesSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "queridodiario",
			Subsystem: "panel",
			Name:      "notes_saved_total",
			Help:      "Total number of day note saves",
		},
		[]string{"action"},
	)

	// LoginsTotal counts admin sign-in attempts.
	// Labels: method (password, google), result (success, failure)
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "queridodiario",
			Subsystem: "admin",
			Name:      "logins_total",
			Help:      "Total number of admin sign-in attempts",
		},
		[]string{"method", "result"},
	)
)
