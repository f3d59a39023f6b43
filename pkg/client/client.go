package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/lionelberton/openvpn-auth-radius/pkg/log"
	"github.com/lionelberton/openvpn-auth-radius/pkg/packet"
)

const maxPacketSize = 4096

// Client is the UDP Exchanger. It keeps no state between exchanges and is
// safe for concurrent use; every exchange owns its socket.
type Client struct {
	logger log.Logger
	dialer net.Dialer
}

// New creates a UDP client.
func New(logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewDefaultLogger()
	}

	return &Client{
		logger: logger,
	}
}

// Exchange transmits req to ep and waits ep.Wait for a correlated reply,
// retransmitting the identical bytes up to ep.Retries more times.
func (c *Client) Exchange(ctx context.Context, ep Endpoint, req *packet.Request) (*packet.Response, error) {
	wire, err := req.Encode()
	if err != nil {
		return nil, &ExchangeError{Server: ep.Server, Addr: ep.Addr, Err: fmt.Errorf("%w: %w", ErrProtocol, err)}
	}

	// Create a new socket for each exchange so servers never share state
	conn, err := c.dialer.DialContext(ctx, "udp", ep.Addr)
	if err != nil {
		return nil, &ExchangeError{Server: ep.Server, Addr: ep.Addr, Err: fmt.Errorf("%w: %v", ErrUnreachable, err)}
	}
	defer conn.Close()

	// unblock a pending read when the caller gives up
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	wait := ep.Wait
	if wait <= 0 {
		wait = DefaultWait
	}

	attempts := ep.Attempts()
	var lastErr error
	made := 0

	for made < attempts {
		if err := ctx.Err(); err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrUnreachable, err)
			break
		}

		made++
		resp, err := c.attempt(ctx, conn, wait, wire, req)
		if err == nil {
			c.logger.Debugf("%s: %s received on attempt %d/%d", ep.Server, resp.Code, made, attempts)
			return resp, nil
		}

		lastErr = err
		c.logger.Debugf("%s: attempt %d/%d failed: %v", ep.Server, made, attempts, err)
	}

	return nil, &ExchangeError{Server: ep.Server, Addr: ep.Addr, Attempts: made, Err: lastErr}
}

func (c *Client) attempt(ctx context.Context, conn net.Conn, wait time.Duration, wire []byte, req *packet.Request) (*packet.Response, error) {
	deadline := time.Now().Add(wait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("%w: failed to set deadline: %v", ErrUnreachable, err)
	}

	if _, err := conn.Write(wire); err != nil {
		return nil, fmt.Errorf("%w: failed to write packet: %v", ErrUnreachable, err)
	}

	buffer := make([]byte, maxPacketSize)
	n, err := conn.Read(buffer)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreachable, ctx.Err())
		}

		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("%w within %s", ErrTimeout, wait)
		}

		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUnreachable, err)
	}

	resp, err := packet.ParseResponse(buffer[:n], req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	return resp, nil
}
