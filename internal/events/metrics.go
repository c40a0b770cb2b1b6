package events

import "github.com/prometheus/client_golang/prometheus"

var (
	publishedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeline_service",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Number of events written to Kafka, labeled by topic.",
	}, []string{"topic"})

	failedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeline_service",
		Subsystem: "events",
		Name:      "publish_failures_total",
		Help:      "Number of events that could not be written to Kafka, labeled by topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(publishedCounter, failedCounter)
}
