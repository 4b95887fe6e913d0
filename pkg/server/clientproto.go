package server

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"

	"warren-hq/warren/pkg/negotiate"
)

// errMalformedRequest is returned when the client's opening bytes cannot be
// parsed as the protocol DetectClientProtocol already identified.
var errMalformedRequest = errors.New("server: malformed client request")

// httpFrontRequest is the parsed front matter of a client-facing HTTP
// request: enough to select and dial an upstream, plus the exact raw bytes
// read so they can be replayed (possibly with a rewritten request line).
type httpFrontRequest struct {
	Method      string
	RequestLine string
	Target      negotiate.Target
	IsConnect   bool
	Raw         []byte
}

// readHTTPFrontRequest reads one HTTP request's start-line and headers from
// r, stopping at the blank line terminator. The request body, if any, is
// left unread on the connection for the bridge to carry verbatim.
func readHTTPFrontRequest(r *bufio.Reader) (*httpFrontRequest, error) {
	first, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(strings.TrimRight(first, "\r\n"), " ", 3)
	if len(parts) != 3 {
		return nil, errMalformedRequest
	}
	method, uri := parts[0], parts[1]

	var buf bytes.Buffer
	buf.WriteString(first)
	host := ""
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		buf.WriteString(line)
		if strings.TrimRight(line, "\r\n") == "" {
			break
		}
		if host == "" {
			if k, v, ok := splitHeaderLine(line); ok && strings.EqualFold(k, "Host") {
				host = v
			}
		}
	}

	target, isConnect, err := resolveHTTPTarget(method, uri, host)
	if err != nil {
		return nil, err
	}
	return &httpFrontRequest{
		Method:      method,
		RequestLine: first,
		Target:      target,
		IsConnect:   isConnect,
		Raw:         buf.Bytes(),
	}, nil
}

func splitHeaderLine(line string) (key, value string, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	return line[:idx], strings.TrimSpace(line[idx+1:]), true
}

func resolveHTTPTarget(method, uri, hostHeader string) (negotiate.Target, bool, error) {
	if method == "CONNECT" {
		host, portStr, err := net.SplitHostPort(uri)
		if err != nil {
			return negotiate.Target{}, false, errMalformedRequest
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return negotiate.Target{}, false, errMalformedRequest
		}
		return negotiate.Target{Host: host, Port: port}, true, nil
	}

	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		u, err := url.Parse(uri)
		if err != nil {
			return negotiate.Target{}, false, errMalformedRequest
		}
		port := 80
		if u.Scheme == "https" {
			port = 443
		}
		host := u.Hostname()
		if p := u.Port(); p != "" {
			port, err = strconv.Atoi(p)
			if err != nil {
				return negotiate.Target{}, false, errMalformedRequest
			}
		}
		return negotiate.Target{Host: host, Port: port}, false, nil
	}

	if hostHeader == "" {
		return negotiate.Target{}, false, errMalformedRequest
	}
	host, portStr, err := net.SplitHostPort(hostHeader)
	if err != nil {
		return negotiate.Target{Host: hostHeader, Port: 80}, false, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return negotiate.Target{}, false, errMalformedRequest
	}
	return negotiate.Target{Host: host, Port: port}, false, nil
}

// rewriteToOriginForm strips a "METHOD http://host:port/path HTTP/1.1" raw
// request line down to origin-form, for replay over a tunnel that already
// terminates at the target host (spec §4.4: SOCKS/CONNECT upstreams see
// only origin-form requests).
func rewriteToOriginForm(raw []byte) []byte {
	idx := bytes.IndexByte(raw, '\n')
	if idx < 0 {
		return raw
	}
	line := string(raw[:idx+1])
	parts := strings.SplitN(strings.TrimRight(line, "\r\n"), " ", 3)
	if len(parts) != 3 {
		return raw
	}
	u, err := url.Parse(parts[1])
	if err != nil || u.Host == "" {
		return raw
	}
	newLine := parts[0] + " " + u.RequestURI() + " " + parts[2] + "\r\n"
	out := make([]byte, 0, len(newLine)+len(raw)-idx-1)
	out = append(out, newLine...)
	out = append(out, raw[idx+1:]...)
	return out
}

// socks4Request is a parsed client-facing SOCKS4 CONNECT request (spec
// §4.4/§4.5). Only the IP-addressed form is accepted; SOCKS4A domain
// extension is out of scope at the listener.
type socks4Request struct {
	Target negotiate.Target
}

func readSOCKS4Request(r *bufio.Reader) (*socks4Request, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	if hdr[0] != 0x04 || hdr[1] != 0x01 {
		return nil, errMalformedRequest
	}
	port := int(hdr[2])<<8 | int(hdr[3])
	ip := net.IPv4(hdr[4], hdr[5], hdr[6], hdr[7])
	if _, err := r.ReadString(0x00); err != nil { // USERID terminator
		return nil, err
	}
	return &socks4Request{Target: negotiate.Target{Host: ip.String(), Port: port}}, nil
}

func writeSOCKS4Reply(w io.Writer, granted bool) error {
	code := byte(0x5B)
	if granted {
		code = 0x5A
	}
	_, err := w.Write([]byte{0x00, code, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	return err
}

// socks5Request is a parsed client-facing SOCKS5 CONNECT request, after the
// greeting/method-selection exchange has already completed.
type socks5Request struct {
	Target negotiate.Target
}

func readSOCKS5Greeting(r *bufio.Reader) error {
	var nmethods [1]byte
	if _, err := io.ReadFull(r, nmethods[:]); err != nil {
		return err
	}
	methods := make([]byte, nmethods[0])
	if _, err := io.ReadFull(r, methods); err != nil {
		return err
	}
	return nil
}

func readSOCKS5Request(r *bufio.Reader) (*socks5Request, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	if hdr[0] != 0x05 || hdr[1] != 0x01 {
		return nil, errMalformedRequest
	}
	host, err := readSOCKS5Addr(r, hdr[3])
	if err != nil {
		return nil, err
	}
	var portBytes [2]byte
	if _, err := io.ReadFull(r, portBytes[:]); err != nil {
		return nil, err
	}
	port := int(portBytes[0])<<8 | int(portBytes[1])
	return &socks5Request{Target: negotiate.Target{Host: host, Port: port}}, nil
}

func readSOCKS5Addr(r *bufio.Reader, atyp byte) (string, error) {
	switch atyp {
	case 0x01:
		var ip [4]byte
		if _, err := io.ReadFull(r, ip[:]); err != nil {
			return "", err
		}
		return net.IP(ip[:]).String(), nil
	case 0x04:
		var ip [16]byte
		if _, err := io.ReadFull(r, ip[:]); err != nil {
			return "", err
		}
		return net.IP(ip[:]).String(), nil
	case 0x03:
		var l [1]byte
		if _, err := io.ReadFull(r, l[:]); err != nil {
			return "", err
		}
		buf := make([]byte, l[0])
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		return string(buf), nil
	default:
		return "", fmt.Errorf("server: unsupported SOCKS5 ATYP 0x%02x", atyp)
	}
}

func writeSOCKS5Reply(w io.Writer, rep byte) error {
	_, err := w.Write([]byte{0x05, rep, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
	return err
}
