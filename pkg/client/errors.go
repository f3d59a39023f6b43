package client

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when no reply arrived within the wait of an attempt.
	ErrTimeout = errors.New("no response")
	// ErrUnreachable is returned on transport failures.
	ErrUnreachable = errors.New("server unreachable")
	// ErrProtocol is returned when a reply fails correlation or checksum validation.
	ErrProtocol = errors.New("protocol error")
)

// ExchangeError reports a failed exchange with the cause of its last attempt.
type ExchangeError struct {
	Server   string
	Addr     string
	Attempts int
	Err      error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("%s (%s): %v after %d attempt(s)", e.Server, e.Addr, e.Err, e.Attempts)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// IsProtocolError reports whether err ended on an invalid reply rather than silence or a transport failure.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrProtocol)
}
