package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the class of errors raised before any server is contacted.
	ErrConfiguration = errors.New("configuration error")
	ErrNoServers     = fmt.Errorf("%w: no servers configured", ErrConfiguration)
	ErrEmptySecret   = fmt.Errorf("%w: empty shared secret", ErrConfiguration)

	// ErrUnexpectedCode is recorded when a server answers with a packet code the round does not expect.
	ErrUnexpectedCode = errors.New("unexpected packet code")
	// ErrWorkerPanic is recorded when processing a server response panicked.
	ErrWorkerPanic = errors.New("worker panic")
)
