package metrics

import (
	"warren-hq/warren/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// PoolMetrics tracks metrics related to the upstream proxy pool: its
// current size, selection outcomes, and eviction activity.
//
// Metrics:
//   - warren_pool_size: Current number of admitted proxies by protocol
//   - warren_pool_selections_total: Select() outcomes by protocol, result
//   - warren_pool_evictions_total: Evicted proxies by reason
type PoolMetrics struct {
	poolSize        *prometheus.GaugeVec
	selectionsTotal *prometheus.CounterVec
	evictionsTotal  *prometheus.CounterVec
}

// NewPoolMetrics creates and registers pool metrics with the provided registry.
func NewPoolMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PoolMetrics {
	pm := &PoolMetrics{
		poolSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "pool_size",
				Help:      "Current number of admitted proxies, by protocol",
			},
			[]string{"protocol"},
		),

		selectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "pool_selections_total",
				Help:      "Total number of pool Select() calls, by protocol and result",
			},
			[]string{"protocol", "result"},
		),

		evictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "pool_evictions_total",
				Help:      "Total number of proxies evicted from the pool, by reason",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(pm.poolSize, pm.selectionsTotal, pm.evictionsTotal)

	return pm
}

// UpdateSize sets the current pool size for a protocol.
func (pm *PoolMetrics) UpdateSize(protocol string, size int) {
	pm.poolSize.WithLabelValues(protocol).Set(float64(size))
}

// RecordSelection records a Select() outcome ("hit" or "exhausted").
func (pm *PoolMetrics) RecordSelection(protocol, result string) {
	pm.selectionsTotal.WithLabelValues(protocol, result).Inc()
}

// RecordEviction records a proxy being evicted, by reason ("consecutive_failures",
// "stale", "manual").
func (pm *PoolMetrics) RecordEviction(reason string) {
	pm.evictionsTotal.WithLabelValues(reason).Inc()
}
