// Package judge maintains the ranked set of external judge endpoints the
// Validator uses to probe candidate proxies: request/IP echo services whose
// own reachability and latency must themselves be tracked.
//
// A Registry owns every Judge exclusively; Best hands callers a pointer to
// the top-ranked Judge, and its health state changes only through the
// Registry (Report, Refresh), mirroring the ownership split the pool
// enforces on proxy records.
package judge
