package timeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	accountPrimary    = "primary"
	accountConnection = "connection"
)

var (
	pagesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeline_service",
		Subsystem: "fetcher",
		Name:      "pages_fetched_total",
		Help:      "Number of upstream timeline pages fetched, labeled by account kind.",
	}, []string{"account_kind"})

	fetchFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeline_service",
		Subsystem: "fetcher",
		Name:      "failures_total",
		Help:      "Number of timeline fetches aborted by an upstream failure, labeled by account kind.",
	}, []string{"account_kind"})

	outOfOrderCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timeline_service",
		Subsystem: "fetcher",
		Name:      "out_of_order_pages_total",
		Help:      "Connection timeline pages whose records were not ordered newest first.",
	})

	connectionFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeline_service",
		Subsystem: "aggregator",
		Name:      "connection_failures_total",
		Help:      "Connections recorded as unavailable, labeled by reason.",
	}, []string{"reason"})

	aggregateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "timeline_service",
		Subsystem: "aggregator",
		Name:      "duration_seconds",
		Help:      "Time spent fetching the primary and all connection timelines for one request.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	linksCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timeline_service",
		Subsystem: "matcher",
		Name:      "links_total",
		Help:      "Number of similarity links established between activities of different profiles.",
	})
)

func init() {
	prometheus.MustRegister(pagesCounter, fetchFailureCounter, outOfOrderCounter, connectionFailureCounter, aggregateDuration, linksCounter)
}

func recordPage(kind string) {
	pagesCounter.WithLabelValues(kind).Inc()
}

func recordFetchFailure(kind string) {
	fetchFailureCounter.WithLabelValues(kind).Inc()
}

func recordConnectionFailure(reason string) {
	connectionFailureCounter.WithLabelValues(reason).Inc()
}

func recordAggregate(start time.Time) {
	aggregateDuration.Observe(time.Since(start).Seconds())
}

func recordLinks(n int) {
	if n > 0 {
		linksCounter.Add(float64(n))
	}
}
