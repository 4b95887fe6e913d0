package server

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"warren-hq/warren/pkg/negotiate"
	"warren-hq/warren/pkg/pool"
)

// startFakeConnectBackend accepts one connection, expects an HTTP CONNECT
// request, replies 200, then echoes every byte it receives back to the
// caller — standing in for a real HTTPS-capable upstream proxy.
func startFakeConnectBackend(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		reader := bufio.NewReader(conn)
		line, err := reader.ReadString('\n')
		if err != nil || !strings.HasPrefix(line, "CONNECT") {
			return
		}
		for {
			l, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			if strings.TrimRight(l, "\r\n") == "" {
				break
			}
		}
		conn.Write([]byte("HTTP/1.1 200 Connection Established\r\n\r\n"))
		buf := make([]byte, 4096)
		for {
			n, err := reader.Read(buf)
			if n > 0 {
				conn.Write(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func waitForAddr(t *testing.T, s *Server) net.Addr {
	t.Helper()
	for i := 0; i < 100; i++ {
		if a := s.Addr(); a != nil {
			return a
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("server never bound a listener")
	return nil
}

func TestServerHTTPConnectTunnelsToUpstream(t *testing.T) {
	backend := startFakeConnectBackend(t)
	host, portStr, _ := net.SplitHostPort(backend)
	port, _ := strconv.Atoi(portStr)

	p := pool.New(pool.Config{})
	if err := p.Admit(pool.Key{Host: host, Port: port}, []pool.Protocol{pool.ProtoHTTPS}, pool.AnonymityHigh, "US", nil); err != nil {
		t.Fatal(err)
	}

	srv := New(Config{ListenAddress: "127.0.0.1:0", MaxTries: 1, BridgeIdle: time.Second}, p, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Start(ctx)
	addr := waitForAddr(t, srv)

	client, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	client.Write([]byte("CONNECT example.com:443 HTTP/1.1\r\nHost: example.com:443\r\n\r\n"))
	reader := bufio.NewReader(client)
	status, err := reader.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(status, "200") {
		t.Fatalf("expected 200 status line, got %q", status)
	}
	for {
		l, err := reader.ReadString('\n')
		if err != nil {
			t.Fatal(err)
		}
		if strings.TrimRight(l, "\r\n") == "" {
			break
		}
	}

	client.Write([]byte("ping"))
	out := make([]byte, 4)
	if _, err := reader.Read(out); err != nil {
		t.Fatal(err)
	}
	if string(out) != "ping" {
		t.Fatalf("expected echoed bytes, got %q", out)
	}
}

func TestServerHTTPDispatchFailsWithNoUpstream(t *testing.T) {
	p := pool.New(pool.Config{})
	srv := New(Config{ListenAddress: "127.0.0.1:0", MaxTries: 1}, p, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Start(ctx)
	addr := waitForAddr(t, srv)

	client, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	client.Write([]byte("CONNECT example.com:443 HTTP/1.1\r\nHost: example.com:443\r\n\r\n"))
	reader := bufio.NewReader(client)
	status, err := reader.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(status, "502") {
		t.Fatalf("expected 502 status line, got %q", status)
	}
}

func TestRequiredProtocolForConnect(t *testing.T) {
	cases := []struct {
		port int
		want pool.Protocol
	}{
		{443, pool.ProtoHTTPS},
		{80, pool.ProtoConnect80},
		{25, pool.ProtoConnect25},
		{8443, pool.ProtoHTTPS},
	}
	for _, c := range cases {
		if got := requiredProtocolForConnect(c.port); got != c.want {
			t.Fatalf("requiredProtocolForConnect(%d) = %v, want %v", c.port, got, c.want)
		}
	}
}

func TestNegotiatorForFixedConnectProtocols(t *testing.T) {
	for _, proto := range []pool.Protocol{pool.ProtoConnect80, pool.ProtoConnect25} {
		if _, ok := negotiatorFor(proto).(negotiate.ConnectNegotiator); !ok {
			t.Fatalf("negotiatorFor(%v) did not return a ConnectNegotiator", proto)
		}
	}
}
