// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream call outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "countdown_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "countdown_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "route"},
	)

	// Countdown Metrics
	CountdownTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "countdown_snapshots_computed_total",
			Help: "Total number of countdown snapshots computed",
		},
	)

	CountdownRegions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "countdown_regions",
			Help: "Number of regions in the last computed snapshot",
		},
	)

	StreamConsumers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "countdown_stream_consumers",
			Help: "Currently connected countdown stream consumers",
		},
		[]string{"transport"}, // "sse", "websocket"
	)

	// Upstream Metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "countdown_upstream_requests_total",
			Help: "Total number of calls to third-party APIs",
		},
		[]string{"client", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "countdown_upstream_request_duration_seconds",
			Help:    "Duration of calls to third-party APIs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"client"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "countdown_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "countdown_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Calendar Metrics
	CalendarBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "countdown_calendar_builds_total",
			Help: "Calendar feed generations",
		},
		[]string{"outcome"},
	)

	CalendarLastBuild = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "countdown_calendar_last_build_timestamp_seconds",
			Help: "Unix timestamp of the last successful calendar build",
		},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSnapshot records one computed countdown snapshot.
func RecordSnapshot(regions int) {
	CountdownTicks.Inc()
	CountdownRegions.Set(float64(regions))
}

// TrackStream adjusts the consumer gauge of a transport.
func TrackStream(transport string, open bool) {
	if open {
		StreamConsumers.WithLabelValues(transport).Inc()
		return
	}
	StreamConsumers.WithLabelValues(transport).Dec()
}

// RecordUpstream records one third-party call.
func RecordUpstream(client, outcome string, duration time.Duration) {
	UpstreamRequests.WithLabelValues(client, outcome).Inc()
	UpstreamDuration.WithLabelValues(client).Observe(duration.Seconds())
}

// RecordBreakerTransition records a circuit breaker state change.
// state is the numeric gobreaker state of "to".
func RecordBreakerTransition(name, from, to string, state int) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCalendarBuild records a calendar generation attempt.
func RecordCalendarBuild(at time.Time, err error) {
	if err != nil {
		CalendarBuilds.WithLabelValues(OutcomeError).Inc()
		return
	}
	CalendarBuilds.WithLabelValues(OutcomeSuccess).Inc()
	CalendarLastBuild.Set(float64(at.Unix()))
}
