package packet

import "errors"

var (
	// ErrInvalidResponse is returned when a response fails correlation or checksum validation.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrNoState is returned when an Access-Challenge carries no State attribute.
	ErrNoState = errors.New("challenge without State attribute")
	// ErrNotEncoded is returned when a request is inspected before Encode.
	ErrNotEncoded = errors.New("request not encoded")
)
