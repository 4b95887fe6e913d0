// Package pool owns the authoritative set of validated upstream proxies.
//
// A Pool admits records produced by the validator, serves concurrency-safe
// selection to the proxy server, records per-session outcomes, and evicts
// members that fall below the configured health bar. The pool never blocks
// on I/O: Select returns immediately (Some or None) and Release never
// panics, per the server's no-stall requirement.
package pool
