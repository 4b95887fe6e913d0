// Package metrics provides Prometheus metrics collection for the Warren
// proxy-rotation gateway.
//
// # Overview
//
// The metrics package implements Prometheus metrics for the three things
// operators actually watch on a rotation gateway: the size and churn of the
// proxy pool, judge endpoint health, and client session outcomes.
//
// # Metrics Categories
//
//   - Pool Metrics: pool size, selection hit/exhausted rate, eviction count by reason
//   - Judge Metrics: judge health, self-probe latency, probe error rate
//   - Session Metrics: session count/duration by protocol and outcome,
//     bridged byte counts, retry count
//
// # Usage
//
//	collector := metrics.NewCollector(cfg, nil)
//
//	collector.UpdatePoolSize("socks5", 212)
//	collector.RecordSelection("socks5", "hit")
//	collector.RecordEviction("consecutive_failures")
//
//	collector.UpdateJudgeHealth("https://azenv.net/", true)
//	collector.RecordJudgeLatency("https://azenv.net/", 0.38)
//
//	collector.RecordSession("http", "success", 2*time.Second)
//	collector.RecordBridgeBytes("client_to_upstream", 4096)
//
// # Prometheus Endpoint
//
// All metrics are exposed on the metrics listener's path (default
// "/metrics") in standard Prometheus exposition format:
//
//	# HELP warren_pool_size Current number of admitted proxies, by protocol
//	# TYPE warren_pool_size gauge
//	warren_pool_size{protocol="socks5"} 212
//
// # Cardinality Management
//
// The collector's CardinalityLimiter bounds the judge label of
// RecordJudgeProbeError (judge URLs are operator-configured but unbounded):
// once the limit is reached, further distinct judge/reason pairs are
// recorded under the judge label "other" rather than growing the metric set
// without bound. The health and latency metrics are not limited.
package metrics
