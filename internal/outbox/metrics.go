package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activities_api",
		Subsystem: "outbox",
		Name:      "events_delivered_total",
		Help:      "Number of roster events successfully written to Kafka.",
	})

	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activities_api",
		Subsystem: "outbox",
		Name:      "events_failed_total",
		Help:      "Number of roster events that could not be written to Kafka.",
	})

	droppedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activities_api",
		Subsystem: "outbox",
		Name:      "events_dropped_total",
		Help:      "Number of roster events rejected because the queue was full or closed.",
	})

	queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activities_api",
		Subsystem: "outbox",
		Name:      "queue_depth",
		Help:      "Roster events waiting to be flushed.",
	})

	retryScheduledCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activities_api",
		Subsystem: "outbox",
		Name:      "retry_scheduled_total",
		Help:      "Number of times a failed roster event was scheduled for another attempt.",
	})

	quarantinedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activities_api",
		Subsystem: "outbox",
		Name:      "events_quarantined_total",
		Help:      "Number of roster events abandoned after exhausting their retries.",
	})

	retryBacklog = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activities_api",
		Subsystem: "outbox",
		Name:      "retry_backlog",
		Help:      "Roster events waiting for a retry.",
	})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "activities_api",
		Subsystem: "outbox",
		Name:      "batch_duration_seconds",
		Help:      "Time spent encoding and writing one batch of roster events.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(
		deliveredCounter,
		failedCounter,
		droppedCounter,
		queueDepth,
		retryScheduledCounter,
		quarantinedCounter,
		retryBacklog,
		batchDuration,
	)
}
