package metrics

import (
	"warren-hq/warren/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// JudgeMetrics tracks the health and responsiveness of configured judge
// endpoints used to probe candidate proxies.
//
// Metrics:
//   - warren_judge_health: 1 if the judge answered its own health probe, 0 otherwise
//   - warren_judge_latency_seconds: Judge probe latency histogram
//   - warren_judge_probe_errors_total: Judge probe failures by reason
type JudgeMetrics struct {
	health      *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
	probeErrors *prometheus.CounterVec
}

// NewJudgeMetrics creates and registers judge metrics with the provided registry.
func NewJudgeMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *JudgeMetrics {
	jm := &JudgeMetrics{
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "judge_health",
				Help:      "Judge endpoint health (1=healthy, 0=unhealthy), by judge URL",
			},
			[]string{"judge"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "judge_latency_seconds",
				Help:      "Judge self-probe latency in seconds",
				Buckets:   cfg.SessionDurationBuckets,
			},
			[]string{"judge"},
		),

		probeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "judge_probe_errors_total",
				Help:      "Total judge self-probe failures, by judge URL and reason",
			},
			[]string{"judge", "reason"},
		),
	}

	registry.MustRegister(jm.health, jm.latency, jm.probeErrors)

	return jm
}

// UpdateHealth updates a judge's health gauge.
func (jm *JudgeMetrics) UpdateHealth(judge string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	jm.health.WithLabelValues(judge).Set(value)
}

// RecordLatency records a judge self-probe's latency in seconds.
func (jm *JudgeMetrics) RecordLatency(judge string, seconds float64) {
	jm.latency.WithLabelValues(judge).Observe(seconds)
}

// RecordProbeError records a judge self-probe failure.
func (jm *JudgeMetrics) RecordProbeError(judge, reason string) {
	jm.probeErrors.WithLabelValues(judge, reason).Inc()
}
