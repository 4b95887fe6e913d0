// Package health provides health check endpoints for the Warren
// proxy-rotation gateway.
//
// # Overview
//
// The health package implements liveness and readiness probes for
// orchestration systems, along with a version information endpoint. It
// provides a framework for checking the health of individual gateway
// components — the proxy pool, judge reachability, and session storage.
//
// # Endpoints
//
// The package provides three main endpoints. The serve command registers
// the first two on the internal metrics listener alongside /metrics; it
// does not register /version:
//
//   - /healthz: liveness probe - indicates if the process is running
//   - /ready: readiness probe - indicates if the system can serve traffic
//   - /version: build information - version, commit, build time
//
// # Usage
//
//	checker := health.New(cfg.Health.CheckTimeout)
//
//	checker.RegisterCheck("pool", func(ctx context.Context) error {
//	    if pool.Size() == 0 {
//	        return errors.New("proxy pool is empty")
//	    }
//	    return nil
//	})
//
//	http.HandleFunc(cfg.Health.LivenessPath, checker.LivenessHandler())
//	http.HandleFunc("/ready", checker.ReadinessHandler())
//	http.HandleFunc("/version", health.VersionHandler("1.0.0", "abc123", "2026-01-01"))
//
// # Liveness vs Readiness
//
// Liveness probe (/healthz):
//   - indicates if the process is alive and running
//   - returns 200 OK if the process is alive
//   - used by orchestration systems to restart the process
//   - fast check (<10ms)
//
// Readiness probe (/ready):
//   - indicates if the gateway can serve traffic
//   - checks all registered component health checks
//   - returns 200 OK if all components are healthy, 503 otherwise
//   - used by orchestration systems to route traffic
//
// # Component Health Checks
//
// Components register check functions:
//
//	checker.RegisterCheck("judges", func(ctx context.Context) error {
//	    if judgePool.HealthyCount() == 0 {
//	        return errors.New("no healthy judge endpoints")
//	    }
//	    return nil
//	})
//
// Common component checks:
//   - config: configuration loaded and valid
//   - pool: proxy pool has at least one admitted entry
//   - judges: at least one judge endpoint is reachable
//   - ledger: session ledger store is accessible (if enabled)
//
// # Performance
//
// Health checks are lightweight:
//   - liveness: <10ms
//   - readiness: <100ms (all component checks)
//   - version: <1ms
package health
