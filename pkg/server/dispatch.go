package server

import (
	"context"
	"net"
	"strconv"
	"time"

	"warren-hq/warren/pkg/negotiate"
	"warren-hq/warren/pkg/pool"
)

func negotiatorFor(proto pool.Protocol) negotiate.Negotiator {
	switch proto {
	case pool.ProtoHTTP:
		return negotiate.HTTPNegotiator{}
	case pool.ProtoHTTPS, pool.ProtoConnect80, pool.ProtoConnect25:
		return negotiate.ConnectNegotiator{}
	case pool.ProtoSOCKS4:
		return negotiate.SOCKS4Negotiator{}
	case pool.ProtoSOCKS5:
		return negotiate.SOCKS5Negotiator{}
	default:
		return nil
	}
}

// requiredProtocolForConnect maps a CONNECT target port to the pool
// protocol a record must be validated for (spec §4.5 "Selection protocol
// requirement"). Ports other than the two fixed-target cases fall back to
// HTTPS, the general-purpose CONNECT tunnel every HTTPS-capable record is
// validated against.
func requiredProtocolForConnect(port int) pool.Protocol {
	switch port {
	case 80:
		return pool.ProtoConnect80
	case 25:
		return pool.ProtoConnect25
	default:
		return pool.ProtoHTTPS
	}
}

// upstream is a negotiated connection to a pool member, ready to carry the
// bridge's bytes.
type upstream struct {
	conn       net.Conn
	handle     pool.Handle
	proto      pool.Protocol
	start      time.Time
	retryCount int
}

// dial attempts up to cfg.MaxTries pool selections against the single
// required protocol, negotiating each against target, until one succeeds or
// attempts are exhausted. required is the exact protocol spec §4.5 mandates
// for the client's detected protocol/target (see requiredProtocolForConnect
// and the SOCKS4/SOCKS5 callers in session.go); it is combined with the
// operator's configured selection filters before each Select call.
func (s *Server) dial(ctx context.Context, target negotiate.Target, required pool.Protocol) (*upstream, error) {
	req := s.selection
	req.Protocol = required

	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxTries; attempt++ {
		handle, ok := s.pool.Select(req)
		if !ok {
			return nil, ErrNoUpstreamAvailable
		}

		dialer := net.Dialer{}
		key := handle.Key()
		conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(key.Host, strconv.Itoa(key.Port)))
		if err != nil {
			lastErr = err
			s.pool.Release(handle, pool.Failure, 0, err.Error())
			continue
		}

		start := time.Now()
		if err := negotiatorFor(required).Negotiate(conn, target, negotiate.HandshakeTimeout); err != nil {
			conn.Close()
			lastErr = err
			s.pool.Release(handle, pool.Failure, time.Since(start).Milliseconds(), err.Error())
			continue
		}

		return &upstream{conn: conn, handle: handle, proto: required, start: start, retryCount: attempt}, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrUpstreamExhausted
}

func (s *Server) release(u *upstream, success bool) {
	outcome := pool.Success
	if !success {
		outcome = pool.Failure
	}
	s.pool.Release(u.handle, outcome, time.Since(u.start).Milliseconds(), "")
}
