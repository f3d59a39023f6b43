package client

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	DefaultAuthPort = 1812
	DefaultAcctPort = 1813
	DefaultWait     = 5 * time.Second
	DefaultRetries  = 2
)

// Server is one configured RADIUS server. It is immutable once loaded.
type Server struct {
	Name     string
	AuthAddr string
	AcctAddr string
	Secret   []byte
	Wait     time.Duration
	Retries  int
}

// NewServer builds a Server from a host and its authentication and accounting ports.
func NewServer(name, host string, authPort, acctPort int, secret string, wait time.Duration, retries int) Server {
	return Server{
		Name:     name,
		AuthAddr: net.JoinHostPort(host, strconv.Itoa(authPort)),
		AcctAddr: net.JoinHostPort(host, strconv.Itoa(acctPort)),
		Secret:   []byte(secret),
		Wait:     wait,
		Retries:  retries,
	}
}

// Endpoint is the destination of a single exchange.
type Endpoint struct {
	Server  string
	Addr    string
	Wait    time.Duration
	Retries int
}

// Auth returns the authentication endpoint of the server.
func (s Server) Auth() Endpoint {
	return Endpoint{Server: s.Name, Addr: s.AuthAddr, Wait: s.Wait, Retries: s.Retries}
}

// Acct returns the accounting endpoint of the server.
func (s Server) Acct() Endpoint {
	return Endpoint{Server: s.Name, Addr: s.AcctAddr, Wait: s.Wait, Retries: s.Retries}
}

// String returns the server name and authentication address.
func (s Server) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.AuthAddr)
}

// Attempts returns the total number of transmissions the endpoint allows.
func (e Endpoint) Attempts() int {
	if e.Retries < 0 {
		return 1
	}
	return e.Retries + 1
}
