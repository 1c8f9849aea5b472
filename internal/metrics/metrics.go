package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "divops"

var (
	// op: signup / signin / refresh / whoami / logout, result: ok / conflict / unauthorized / ...
	authOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "operations_total",
		Help:      "Auth orchestrator operations by outcome.",
	}, []string{"op", "result"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "user_directory",
		Name:      "request_duration_seconds",
		Help:      "Latency of calls to the user directory.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"call", "result"})

	sessionsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "purged_total",
		Help:      "Expired sessions removed by the janitor.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"service", "method", "route", "code"})
)

func AuthOperation(op, result string) {
	authOperations.WithLabelValues(op, result).Inc()
}

func UpstreamCall(call, result string, took time.Duration) {
	upstreamDuration.WithLabelValues(call, result).Observe(took.Seconds())
}

func SessionsPurged(n int64) {
	if n > 0 {
		sessionsPurged.Add(float64(n))
	}
}

func HTTPRequest(service, method, route, code string) {
	httpRequests.WithLabelValues(service, method, route, code).Inc()
}
