// Package telemetry groups Warren's observability subpackages: structured
// logging, Prometheus metrics, OpenTelemetry tracing, and health checks.
//
// There is no shared aggregator type here — each subpackage is constructed
// and wired independently by the warren binary, since a judge probe, a pool
// eviction sweep, and a client session each reach a different subset of
// these concerns:
//
//   - logging: structured logging with proxy-credential, auth-header and IP
//     redaction
//   - metrics: Prometheus counters/gauges/histograms for the pool, judges,
//     and client sessions
//   - tracing: OpenTelemetry tracer setup, span helpers and W3C
//     propagation; the proxy server starts no spans itself
//   - health: liveness/readiness checks over the pool and judge registry
//
// Example wiring, as done in cmd/warren:
//
//	logger, _ := logging.New(logging.Config{
//	    Level:             cfg.Telemetry.Logging.Level,
//	    RedactCredentials: cfg.Telemetry.Logging.RedactCredentials,
//	})
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing)
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
package telemetry
