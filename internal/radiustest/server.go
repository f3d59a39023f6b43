// Package radiustest provides a scriptable RADIUS server on the loopback interface for tests.
package radiustest

import (
	"net"
	"sync"
	"testing"

	"layeh.com/radius"
)

// Handler answers the n-th (1-based) datagram received by the server. Returning nil drops it.
type Handler func(n int, req *radius.Packet) *radius.Packet

// Server is a UDP RADIUS server bound to 127.0.0.1 on a random port.
type Server struct {
	Secret []byte

	conn    net.PacketConn
	handler Handler

	mu       sync.Mutex
	received [][]byte
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB, secret string, handler Handler) *Server {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	s := &Server{
		Secret:  []byte(secret),
		conn:    conn,
		handler: handler,
	}

	go s.serve()
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return s
}

// Addr returns the host:port the server listens on.
func (s *Server) Addr() string {
	return s.conn.LocalAddr().String()
}

// Received returns a copy of every datagram received so far.
func (s *Server) Received() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([][]byte, len(s.received))
	copy(out, s.received)
	return out
}

func (s *Server) serve() {
	buffer := make([]byte, 4096)

	for {
		n, addr, err := s.conn.ReadFrom(buffer)
		if err != nil {
			return
		}

		data := make([]byte, n)
		copy(data, buffer[:n])

		s.mu.Lock()
		s.received = append(s.received, data)
		count := len(s.received)
		s.mu.Unlock()

		req, err := radius.Parse(data, s.Secret)
		if err != nil {
			continue
		}

		reply := s.handler(count, req)
		if reply == nil {
			continue
		}

		b, err := reply.Encode()
		if err != nil {
			continue
		}

		_, _ = s.conn.WriteTo(b, addr)
	}
}

// Reply returns a handler answering every request with code.
func Reply(code radius.Code) Handler {
	return func(_ int, req *radius.Packet) *radius.Packet {
		return req.Response(code)
	}
}

// Drop returns a handler that never answers.
func Drop() Handler {
	return func(int, *radius.Packet) *radius.Packet {
		return nil
	}
}

// ClosedAddr returns a loopback address nobody listens on.
func ClosedAddr(t testing.TB) string {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := conn.LocalAddr().String()
	_ = conn.Close()

	return addr
}
