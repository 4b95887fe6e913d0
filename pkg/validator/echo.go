package validator

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"time"

	"warren-hq/warren/pkg/judge"
)

// echoThroughConn sends an HTTP GET for judgeURL over conn and parses the
// echoed response into a judge.EchoResult. When viaProxy is true, conn is a
// raw connection to a candidate acting as an HTTP proxy and the request
// line must carry the absolute URI (WriteProxy); when false, conn has
// already been negotiated (CONNECT/SOCKS) into a tunnel directly to the
// judge, and the request line must use origin-form (Write).
func echoThroughConn(conn net.Conn, judgeURL string, timeout time.Duration, viaProxy bool) (judge.EchoResult, error) {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	_ = conn.SetDeadline(time.Now().Add(timeout))
	defer conn.SetDeadline(time.Time{})

	req, err := http.NewRequest(http.MethodGet, judgeURL, nil)
	if err != nil {
		return judge.EchoResult{}, err
	}
	req.Close = true
	if viaProxy {
		err = req.WriteProxy(conn)
	} else {
		err = req.Write(conn)
	}
	if err != nil {
		return judge.EchoResult{}, err
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		return judge.EchoResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return judge.EchoResult{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return judge.EchoResult{}, &nonSuccessStatus{resp.StatusCode}
	}
	return judge.EchoResult{
		Headers:     resp.Header,
		Body:        string(body),
		PerceivedIP: perceivedIPFromHeaders(resp.Header),
	}, nil
}

// perceivedIPFromHeaders extracts the client IP a judge echoed back via a
// header, when it surfaces one structurally rather than only in page text.
func perceivedIPFromHeaders(h http.Header) string {
	for _, name := range []string{"X-Real-Ip", "X-Client-Ip", "X-Forwarded-For"} {
		if v := h.Get(name); v != "" {
			return v
		}
	}
	return ""
}

type nonSuccessStatus struct{ code int }

func (e *nonSuccessStatus) Error() string {
	return "validator: judge echo returned non-2xx status"
}
