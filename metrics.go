package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulletinboard_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bulletinboard_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Board metrics
	MessagesPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bulletinboard_messages_posted_total",
			Help: "Total messages posted",
		},
	)

	CommentsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bulletinboard_comments_added_total",
			Help: "Total comments added",
		},
	)

	Signups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bulletinboard_signups_total",
			Help: "Total accounts created",
		},
	)

	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulletinboard_logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"}, // "success" or "failure"
	)

	IDsBackfilled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bulletinboard_ids_backfilled_total",
			Help: "Message ids generated for legacy records",
		},
	)

	// Store metrics
	StoreWriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulletinboard_store_write_errors_total",
			Help: "Failed store writes",
		},
		[]string{"store"},
	)

	StoreWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bulletinboard_store_write_duration_seconds",
			Help:    "Store write latency",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1},
		},
		[]string{"store"},
	)
)
