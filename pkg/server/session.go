package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"time"

	"warren-hq/warren/pkg/negotiate"
	"warren-hq/warren/pkg/pool"
)

// handleSession owns one accepted client connection end to end: protocol
// detection, upstream dial/negotiate with retry, and bridging. It always
// closes conn before returning.
func (s *Server) handleSession(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ClientHandshakeRead))
	reader := bufio.NewReader(conn)

	first, err := reader.Peek(1)
	if err != nil {
		return
	}

	switch negotiate.DetectClientProtocol(first[0]) {
	case negotiate.ClientHTTP:
		s.handleHTTP(ctx, conn, reader)
	case negotiate.ClientSOCKS4:
		s.handleSOCKS4(ctx, conn, reader)
	case negotiate.ClientSOCKS5:
		s.handleSOCKS5(ctx, conn, reader)
	default:
		s.logger.Debug("unrecognized client protocol", "first_byte", first[0])
	}
}

func (s *Server) handleHTTP(ctx context.Context, conn net.Conn, reader *bufio.Reader) {
	req, err := readHTTPFrontRequest(reader)
	if err != nil {
		s.logger.Debug("malformed http front request", "error", err)
		return
	}

	var required pool.Protocol
	if req.IsConnect {
		required = requiredProtocolForConnect(req.Target.Port)
	} else {
		required = pool.ProtoHTTP
	}
	u, err := s.dial(ctx, req.Target, required)
	_ = conn.SetReadDeadline(time.Time{})
	if err != nil {
		s.logger.Warn("http dispatch failed", "host", req.Target.Host, "error", err)
		conn.Write([]byte("HTTP/1.1 502 Bad Gateway\r\n\r\n"))
		s.observeSession(SessionSummary{
			ClientAddr: conn.RemoteAddr().String(),
			Protocol:   "http",
			Outcome:    "failure",
			Error:      err.Error(),
		})
		return
	}
	defer u.conn.Close()

	var leftover []byte
	if req.IsConnect {
		conn.Write([]byte("HTTP/1.1 200 Connection Established\r\n\r\n"))
	} else {
		raw := req.Raw
		if u.proto != pool.ProtoHTTP {
			raw = rewriteToOriginForm(raw)
		}
		leftover = raw
	}

	if n := reader.Buffered(); n > 0 {
		extra, _ := reader.Peek(n)
		leftover = append(append([]byte{}, leftover...), extra...)
	}

	s.bridge(conn, u.conn, leftover)
	s.release(u, true)
	s.observeSession(sessionSummaryFor(conn, u, "success", ""))
}

func (s *Server) handleSOCKS4(ctx context.Context, conn net.Conn, reader *bufio.Reader) {
	if _, err := reader.Discard(1); err != nil { // consume the version byte peeked in handleSession
		return
	}
	req, err := readSOCKS4Request(reader)
	if err != nil {
		s.logger.Debug("malformed socks4 request", "error", err)
		return
	}
	u, err := s.dial(ctx, req.Target, pool.ProtoSOCKS4)
	_ = conn.SetReadDeadline(time.Time{})
	if err != nil {
		writeSOCKS4Reply(conn, false)
		s.observeSession(SessionSummary{
			ClientAddr: conn.RemoteAddr().String(),
			Protocol:   "socks4",
			Outcome:    "failure",
			Error:      err.Error(),
		})
		return
	}
	defer u.conn.Close()
	if err := writeSOCKS4Reply(conn, true); err != nil {
		s.release(u, false)
		s.observeSession(sessionSummaryFor(conn, u, "failure", err.Error()))
		return
	}
	s.bridge(conn, u.conn, nil)
	s.release(u, true)
	s.observeSession(sessionSummaryFor(conn, u, "success", ""))
}

func (s *Server) handleSOCKS5(ctx context.Context, conn net.Conn, reader *bufio.Reader) {
	if _, err := reader.Discard(1); err != nil {
		return
	}
	if err := readSOCKS5Greeting(reader); err != nil {
		return
	}
	if _, err := conn.Write([]byte{0x05, 0x00}); err != nil { // no-auth selected
		return
	}
	req, err := readSOCKS5Request(reader)
	if err != nil {
		s.logger.Debug("malformed socks5 request", "error", err)
		return
	}
	u, err := s.dial(ctx, req.Target, pool.ProtoSOCKS5)
	_ = conn.SetReadDeadline(time.Time{})
	if err != nil {
		writeSOCKS5Reply(conn, socks5FailureCode(err))
		s.observeSession(SessionSummary{
			ClientAddr: conn.RemoteAddr().String(),
			Protocol:   "socks5",
			Outcome:    "failure",
			Error:      err.Error(),
		})
		return
	}
	defer u.conn.Close()
	if err := writeSOCKS5Reply(conn, 0x00); err != nil {
		s.release(u, false)
		s.observeSession(sessionSummaryFor(conn, u, "failure", err.Error()))
		return
	}
	s.bridge(conn, u.conn, nil)
	s.release(u, true)
	s.observeSession(sessionSummaryFor(conn, u, "success", ""))
}

// socks5FailureCode maps a dial error to one of the SOCKS5 reply codes spec
// §4.5 "No-eligible-proxy behavior" sanctions: 0x02 (not allowed) when the
// pool had nothing satisfying the requirements, 0x03 (network unreachable) when
// every attempt dialed or negotiated and still failed.
func socks5FailureCode(err error) byte {
	if errors.Is(err, ErrNoUpstreamAvailable) {
		return 0x02
	}
	return 0x03
}

// sessionSummaryFor builds a SessionSummary from a completed dispatch.
func sessionSummaryFor(conn net.Conn, u *upstream, outcome, errMsg string) SessionSummary {
	key := u.handle.Key()
	return SessionSummary{
		ClientAddr:   conn.RemoteAddr().String(),
		UpstreamHost: key.Host,
		UpstreamPort: key.Port,
		Protocol:     string(u.proto),
		Outcome:      outcome,
		RetryCount:   u.retryCount,
		ElapsedMS:    time.Since(u.start).Milliseconds(),
		Error:        errMsg,
	}
}
