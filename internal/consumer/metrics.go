package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeline_service",
		Subsystem: "consumer",
		Name:      "messages_processed_total",
		Help:      "Number of Kafka messages successfully handled.",
	}, []string{"topic", "event_type"})

	handlerErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeline_service",
		Subsystem: "consumer",
		Name:      "handler_errors_total",
		Help:      "Number of handler errors grouped by topic and event type.",
	}, []string{"topic", "event_type"})

	decodeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeline_service",
		Subsystem: "consumer",
		Name:      "decode_errors_total",
		Help:      "Number of decode failures per topic.",
	}, []string{"topic"})

	lastMessageGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "timeline_service",
		Subsystem: "consumer",
		Name:      "last_message_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successfully processed message per topic.",
	}, []string{"topic"})

	auditedLinksCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeline_service",
		Subsystem: "link_audit",
		Name:      "joint_sessions_total",
		Help:      "Number of joint sessions observed per activity type.",
	}, []string{"activity_type"})

	auditedFailedConnectionsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timeline_service",
		Subsystem: "link_audit",
		Name:      "failed_connections_total",
		Help:      "Number of connection timelines reported unavailable by aggregations.",
	})
)

func init() {
	prometheus.MustRegister(
		processedCounter,
		handlerErrorCounter,
		decodeErrorCounter,
		lastMessageGauge,
		auditedLinksCounter,
		auditedFailedConnectionsCounter,
	)
}

func recordProcessed(msg Message) {
	processedCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
	if !msg.Timestamp.IsZero() {
		lastMessageGauge.WithLabelValues(msg.Topic).Set(float64(msg.Timestamp.Unix()))
	}
}

func recordHandlerError(msg Message) {
	handlerErrorCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
}

func recordDecodeError(topic string) {
	decodeErrorCounter.WithLabelValues(topic).Inc()
}

func recordAuditedLink(activityType string) {
	if activityType == "" {
		activityType = "unknown"
	}
	auditedLinksCounter.WithLabelValues(activityType).Inc()
}

func recordAuditedFailures(n int) {
	if n > 0 {
		auditedFailedConnectionsCounter.Add(float64(n))
	}
}
