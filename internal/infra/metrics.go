package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var LevelRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "partnerdesk",
	Subsystem: "levels",
	Name:      "refresh_total",
	Help:      "Level refreshes by outcome (unchanged, up, down, error).",
}, []string{"outcome"})

var LevelCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "partnerdesk",
	Subsystem: "levels",
	Name:      "cache_lookups_total",
	Help:      "Level summary cache lookups by result (hit, miss).",
}, []string{"result"})

var QualifyingClients = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "partnerdesk",
	Subsystem: "levels",
	Name:      "qualifying_clients",
	Help:      "Qualifying client counts observed during level evaluation.",
	Buckets:   []float64{0, 1, 3, 5, 10, 25, 50, 100},
})

var PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "partnerdesk",
	Subsystem: "payments",
	Name:      "recorded_total",
	Help:      "Payments recorded by status.",
}, []string{"status"})

var OutboxPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "partnerdesk",
	Subsystem: "outbox",
	Name:      "published_total",
	Help:      "Outbox events handled by result (published, failed, skipped).",
}, []string{"result"})

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "partnerdesk",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route pattern and status class.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})
