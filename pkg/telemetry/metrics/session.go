package metrics

import (
	"time"

	"warren-hq/warren/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics tracks client sessions handled by the proxy server: their
// outcome, duration, bridged byte counts, and retry behavior.
//
// Metrics:
//   - warren_sessions_total: Completed sessions by protocol and outcome
//   - warren_session_duration_seconds: Session duration histogram
//   - warren_bridge_bytes_total: Bytes bridged between client and upstream, by direction
//   - warren_session_retries_total: Upstream retry attempts within a session
type SessionMetrics struct {
	sessionsTotal   *prometheus.CounterVec
	sessionDuration *prometheus.HistogramVec
	bridgeBytes     *prometheus.CounterVec
	retriesTotal    prometheus.Counter
}

// NewSessionMetrics creates and registers session metrics with the provided registry.
func NewSessionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SessionMetrics {
	sm := &SessionMetrics{
		sessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "sessions_total",
				Help:      "Total number of completed client sessions, by protocol and outcome",
			},
			[]string{"protocol", "outcome"},
		),

		sessionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "session_duration_seconds",
				Help:      "Duration of client sessions in seconds",
				Buckets:   cfg.SessionDurationBuckets,
			},
			[]string{"protocol"},
		),

		bridgeBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "bridge_bytes_total",
				Help:      "Total bytes bridged between client and upstream, by direction",
			},
			[]string{"direction"},
		),

		retriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "session_retries_total",
				Help:      "Total number of upstream reselect/retry attempts across all sessions",
			},
		),
	}

	registry.MustRegister(sm.sessionsTotal, sm.sessionDuration, sm.bridgeBytes, sm.retriesTotal)

	return sm
}

// RecordSession records a completed session's protocol, outcome, and duration.
func (sm *SessionMetrics) RecordSession(protocol, outcome string, duration time.Duration) {
	sm.sessionsTotal.WithLabelValues(protocol, outcome).Inc()
	sm.sessionDuration.WithLabelValues(protocol).Observe(duration.Seconds())
}

// RecordBridgeBytes records bytes bridged in one direction ("client_to_upstream"
// or "upstream_to_client").
func (sm *SessionMetrics) RecordBridgeBytes(direction string, n int64) {
	if n > 0 {
		sm.bridgeBytes.WithLabelValues(direction).Add(float64(n))
	}
}

// RecordRetry records a single upstream reselect/retry attempt.
func (sm *SessionMetrics) RecordRetry() {
	sm.retriesTotal.Inc()
}
