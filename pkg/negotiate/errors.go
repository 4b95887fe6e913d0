package negotiate

import "errors"

// Sentinel errors a negotiator may return; the server maps these to
// protocol-appropriate client-facing failure codes (spec §4.5).
var (
	ErrUpstreamRejected  = errors.New("negotiate: upstream rejected the request")
	ErrUnexpectedVersion = errors.New("negotiate: unexpected protocol version in upstream reply")
	ErrUnresolvedIPv4    = errors.New("negotiate: SOCKS4 target hostname did not resolve to an IPv4 address")
	ErrHandshakeTimeout  = errors.New("negotiate: upstream handshake timed out")
)

// ConnectStatusError preserves the status code/reason from a failed HTTP
// CONNECT negotiation (spec §8 R2: "4xx/5xx -> failure with status
// preserved").
type ConnectStatusError struct {
	StatusCode int
	Reason     string
}

func (e *ConnectStatusError) Error() string {
	return "negotiate: CONNECT rejected: " + e.Reason
}

// SOCKSReplyError preserves a SOCKS4/SOCKS5 reply/REP byte mapped to a
// human-readable cause.
type SOCKSReplyError struct {
	Code   byte
	Reason string
}

func (e *SOCKSReplyError) Error() string {
	return "negotiate: SOCKS upstream refused: " + e.Reason
}
