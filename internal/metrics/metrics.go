package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeTransient = "transient"
	OutcomeFailed    = "failed"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Requests made to the upstream token and profile APIs",
	}, []string{"upstream", "outcome"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Latency of upstream token and profile requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"upstream"})

	sessionAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_attempts_total",
		Help: "Login and signup attempts by outcome",
	}, []string{"flow", "outcome"})
)

// ObserveUpstream records one upstream call that started at start.
func ObserveUpstream(upstream, outcome string, start time.Time) {
	upstreamRequests.WithLabelValues(upstream, outcome).Inc()
	upstreamDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
}

func SessionAttempt(flow, outcome string) {
	sessionAttempts.WithLabelValues(flow, outcome).Inc()
}
