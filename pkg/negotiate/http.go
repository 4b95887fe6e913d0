package negotiate

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// HTTPNegotiator carries a plain-HTTP client request to the upstream over
// the same socket (spec §4.4): no separate tunneling state is established,
// so Negotiate here only rewrites the request line when necessary and
// leaves the connection ready for the caller to copy the remaining request
// bytes verbatim.
type HTTPNegotiator struct{}

// RewriteRequestLine rewrites an origin-form request line ("GET /path
// HTTP/1.1") into absolute-form against target, or returns the line
// unchanged if it is already absolute-form (as sent by browsers configured
// to use an HTTP proxy). This has no network effect; it operates on the
// already-buffered client request line before it is forwarded upstream.
func RewriteRequestLine(line string, target Target) string {
	parts := strings.SplitN(strings.TrimRight(line, "\r\n"), " ", 3)
	if len(parts) != 3 {
		return line
	}
	method, uri, version := parts[0], parts[1], parts[2]
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return line
	}
	hostport := net.JoinHostPort(target.Host, strconv.Itoa(target.Port))
	return method + " http://" + hostport + uri + " " + version + "\r\n"
}

// Negotiate is a no-op for the HTTP negotiator: the same socket carries the
// HTTP exchange directly, so there is no handshake to perform beyond
// establishing the TCP connection (done by the caller before invoking
// Negotiate).
func (HTTPNegotiator) Negotiate(conn net.Conn, target Target, timeout time.Duration) error {
	setDeadline(conn, timeout)
	clearDeadline(conn)
	return nil
}
