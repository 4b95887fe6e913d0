package judge

import (
	"net/http"
	"regexp"
	"strings"
)

// proxyIndicatorSubstrings is the proxy-indicator header set of spec §4.1:
// any header whose name contains one of these (case-insensitive) marks the
// request as having passed through a proxy that identifies itself.
var proxyIndicatorSubstrings = []string{
	"via",
	"forwarded",
	"proxy-connection",
	"x-forwarded-for",
	"x-real-ip",
}

var ipLiteralPattern = regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`)

// EchoResult is what a judge echo response revealed about one probe
// attempt: the headers the judge says it received, plus the client IP it
// says it saw.
type EchoResult struct {
	Headers     http.Header
	PerceivedIP string
	Body        string
}

// HasProxyIndicator reports whether any header name in the echoed request
// contains a proxy-indicator substring (spec §4.1).
func (e EchoResult) HasProxyIndicator() bool {
	for name := range e.Headers {
		lower := strings.ToLower(name)
		for _, substr := range proxyIndicatorSubstrings {
			if strings.Contains(lower, substr) {
				return true
			}
		}
	}
	return false
}

// BodyContainsIP reports whether the response body text contains the given
// IP literal anywhere outside the structured headers — beyond the header
// scan, some judges (azenv-style echo pages) surface the client's real IP
// only as page text (SPEC_FULL §12.5).
func (e EchoResult) BodyContainsIP(ip string) bool {
	if ip == "" {
		return false
	}
	return strings.Contains(e.Body, ip) || ipLiteralMatches(e.Body, ip)
}

func ipLiteralMatches(body, ip string) bool {
	for _, m := range ipLiteralPattern.FindAllString(body, -1) {
		if m == ip {
			return true
		}
	}
	return false
}
