package server

import (
	"io"
	"net"
	"time"
)

// bridge copies bytes in both directions between client and upstream until
// either side closes or idle exceeds cfg.BridgeIdle (spec §5 "Bridging").
// leftover carries any bytes already buffered off the client connection
// (e.g. pipelined request bytes read past the header block) that must be
// forwarded to upstream before further client reads.
func (s *Server) bridge(client, upstream net.Conn, leftover []byte) {
	done := make(chan struct{}, 2)

	pump := func(dst net.Conn, src io.Reader, readSide net.Conn) {
		buf := make([]byte, 32*1024)
		for {
			_ = readSide.SetReadDeadline(time.Now().Add(s.cfg.BridgeIdle))
			n, err := src.Read(buf)
			if n > 0 {
				if _, werr := dst.Write(buf[:n]); werr != nil {
					break
				}
			}
			if err != nil {
				break
			}
		}
		done <- struct{}{}
	}

	if len(leftover) > 0 {
		if _, err := upstream.Write(leftover); err != nil {
			return
		}
	}

	go pump(upstream, client, client)
	go pump(client, upstream, upstream)

	<-done
	client.Close()
	upstream.Close()
	<-done
}
