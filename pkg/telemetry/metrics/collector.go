package metrics

import (
	"sync"
	"time"

	"warren-hq/warren/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the orchestrator for all Prometheus metrics exposed by
// Warren. It manages metric registration and provides a unified interface
// for recording metrics across the pool, judges, and the proxy server.
//
// The collector is designed for low overhead on the byte-bridging hot path:
//   - Pre-allocated metric instances
//   - A cardinality limit on the judge label of probe-error metrics
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	poolMetrics    *PoolMetrics
	judgeMetrics   *JudgeMetrics
	sessionMetrics *SessionMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is used.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "warren"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "warren"
	}
	if len(cfg.SessionDurationBuckets) == 0 {
		cfg.SessionDurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000),
	}

	c.poolMetrics = NewPoolMetrics(cfg, registry)
	c.judgeMetrics = NewJudgeMetrics(cfg, registry)
	c.sessionMetrics = NewSessionMetrics(cfg, registry)

	return c
}

// UpdatePoolSize sets the current pool size for a protocol.
func (c *Collector) UpdatePoolSize(protocol string, size int) {
	if !c.config.Enabled {
		return
	}
	c.poolMetrics.UpdateSize(protocol, size)
}

// RecordSelection records a pool Select() outcome.
func (c *Collector) RecordSelection(protocol, result string) {
	if !c.config.Enabled {
		return
	}
	c.poolMetrics.RecordSelection(protocol, result)
}

// RecordEviction records a proxy eviction from the pool.
func (c *Collector) RecordEviction(reason string) {
	if !c.config.Enabled {
		return
	}
	c.poolMetrics.RecordEviction(reason)
}

// UpdateJudgeHealth updates a judge endpoint's health gauge.
func (c *Collector) UpdateJudgeHealth(judge string, healthy bool) {
	if !c.config.Enabled {
		return
	}
	c.judgeMetrics.UpdateHealth(judge, healthy)
}

// RecordJudgeLatency records a judge self-probe's latency.
func (c *Collector) RecordJudgeLatency(judge string, seconds float64) {
	if !c.config.Enabled {
		return
	}
	c.judgeMetrics.RecordLatency(judge, seconds)
}

// RecordJudgeProbeError records a judge self-probe failure.
func (c *Collector) RecordJudgeProbeError(judge, reason string) {
	if !c.config.Enabled {
		return
	}

	labelSet := "judge_error:" + judge + ":" + reason
	if !c.cardinalityLimiter.Allow(labelSet) {
		judge = "other"
	}

	c.judgeMetrics.RecordProbeError(judge, reason)
}

// RecordSession records a completed client session.
func (c *Collector) RecordSession(protocol, outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.sessionMetrics.RecordSession(protocol, outcome, duration)
}

// RecordBridgeBytes records bytes bridged in one direction for the current
// session.
func (c *Collector) RecordBridgeBytes(direction string, n int64) {
	if !c.config.Enabled {
		return
	}
	c.sessionMetrics.RecordBridgeBytes(direction, n)
}

// RecordRetry records an upstream reselect/retry attempt within a session.
func (c *Collector) RecordRetry() {
	if !c.config.Enabled {
		return
	}
	c.sessionMetrics.RecordRetry()
}

// Registry returns the Prometheus registry used by this collector. Mount it
// behind an HTTP handler with Handler().
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting the
// number of unique label combinations per metric. Used to bound labels
// derived from untrusted input, such as judge URLs configured at runtime.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
