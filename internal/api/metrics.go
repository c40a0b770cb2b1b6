package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeline_service",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "timeline_service",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(requestCounter, requestDuration)
}

func recordRequest(route, method, status string, elapsed time.Duration) {
	requestCounter.WithLabelValues(route, method, status).Inc()
	requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
