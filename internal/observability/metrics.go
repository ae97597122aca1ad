package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	rosterOperationsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activities_api",
		Subsystem: "roster",
		Name:      "operations_total",
		Help:      "Roster operations grouped by operation and outcome.",
	}, []string{"operation", "outcome"})

	participantsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "activities_api",
		Subsystem: "roster",
		Name:      "participants",
		Help:      "Current number of participants registered per activity.",
	}, []string{"activity"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activities_api",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of HTTP requests grouped by method, route pattern and status.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(rosterOperationsCounter, participantsGauge, httpRequestDuration)
}

// RecordRosterOperation counts a list, signup or unregister call by outcome.
func RecordRosterOperation(operation, outcome string) {
	rosterOperationsCounter.WithLabelValues(operation, outcome).Inc()
}

// RecordParticipantCount sets the participant gauge for an activity.
func RecordParticipantCount(activity string, count int) {
	participantsGauge.WithLabelValues(activity).Set(float64(count))
}

// ObserveHTTPRequest records request latency. An empty route is reported as "unmatched".
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
