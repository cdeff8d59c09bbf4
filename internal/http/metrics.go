package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hsclient_requests_total",
		Help: "Total number of requests sent to the HydroShare API",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hsclient_request_duration_seconds",
		Help:    "Time until response headers arrive from the HydroShare API",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	transportErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hsclient_transport_errors_total",
		Help: "Requests that failed before a response was received",
	}, []string{"method"})

	sessionResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hsclient_session_resets_total",
		Help: "Sessions rebuilt after a connection failure",
	})
)
