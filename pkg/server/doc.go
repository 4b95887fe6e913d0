// Package server accepts client connections on one TCP listener, detects
// the client's protocol from its first byte, drives a pool selection and
// the corresponding upstream negotiation, and bridges the two sockets
// bidirectionally with retry/failover.
//
// # Architecture
//
// The server is the top-level orchestrator that:
//   - Accepts raw TCP connections and multiplexes HTTP/1.1 (including
//     CONNECT), SOCKS4, and SOCKS5 on a single listen socket by first-byte
//     detection
//   - Asks the pool for a selection matching the client's target and
//     requirements, drives the matching upstream negotiator, and retries
//     against a different pool member on failure (up to max_tries)
//   - Bridges client and upstream sockets bidirectionally until either
//     side closes or the bridge idle timeout fires
//   - Manages graceful shutdown via a cancellable context, propagated to
//     every in-flight session
//
// # Basic usage
//
//	srv := server.New(server.Config{ListenAddress: "0.0.0.0:1080"}, pool, logger)
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful shutdown
//
// Start blocks until ctx is cancelled or a fatal accept error occurs. On
// cancellation the listener stops accepting, and every in-flight session is
// given bridge_idle+grace to close on its own before the listener returns.
package server
