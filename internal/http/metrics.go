package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// outcomeOK labels calls that received a 2xx response. Failed calls are
// labelled with their error kind.
const outcomeOK = "ok"

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renku",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Transport calls by method and outcome.",
		},
		[]string{"method", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "renku",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Transport call latency, body read included.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)
