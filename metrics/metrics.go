package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	BackendGeneration = "generation"
	BackendFlights    = "flights"

	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeCache = "cache_hit"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripplanner_http_requests_total",
			Help: "Total number of HTTP requests served, by route and status",
		},
		[]string{"route", "status"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripplanner_upstream_requests_total",
			Help: "Total number of outbound API calls, by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripplanner_upstream_request_duration_seconds",
			Help:    "Duration of outbound API calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"backend"},
	)
)

// ObserveUpstream records one outbound call that started at start.
func ObserveUpstream(backend string, start time.Time, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	UpstreamRequests.WithLabelValues(backend, outcome).Inc()
	UpstreamDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}
