package metrics_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/achievement-feed/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metricLoop:
		for _, m := range family.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metricLoop
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestObserveUpstream(t *testing.T) {
	labels := map[string]string{"upstream": "metrics-test", "outcome": metrics.OutcomeSuccess}
	before := counterValue(t, "upstream_requests_total", labels)

	metrics.ObserveUpstream("metrics-test", metrics.OutcomeSuccess, time.Now().Add(-time.Millisecond))

	require.Equal(t, before+1, counterValue(t, "upstream_requests_total", labels))
}

func TestSessionAttempt(t *testing.T) {
	labels := map[string]string{"flow": "metrics-test", "outcome": metrics.OutcomeFailed}
	before := counterValue(t, "session_attempts_total", labels)

	metrics.SessionAttempt("metrics-test", metrics.OutcomeFailed)
	metrics.SessionAttempt("metrics-test", metrics.OutcomeFailed)

	require.Equal(t, before+2, counterValue(t, "session_attempts_total", labels))
}
