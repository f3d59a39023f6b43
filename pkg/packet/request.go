package packet

import (
	"fmt"
	"net"

	"layeh.com/radius"
	"layeh.com/radius/rfc2865"
	"layeh.com/radius/rfc2866"
)

const (
	maxPacketLength    = 4096
	maxAttributeLength = 253
)

// Request is one RADIUS request bound to the shared secret of the server it is sent to.
//
// A Request is encoded once; every retry transmits the same bytes so the
// identifier and authenticator never change between attempts.
type Request struct {
	packet      *radius.Packet
	messageAuth bool
	wire        []byte
}

func newRequest(code radius.Code, secret []byte, nas NAS) *Request {
	return &Request{
		packet:      radius.New(code, secret),
		messageAuth: nas.MessageAuthenticator && code == radius.CodeAccessRequest,
	}
}

// BuildAuthRequest creates an Access-Request carrying a PAP credential.
func BuildAuthRequest(secret []byte, nas NAS, username, password string) (*Request, error) {
	r := newRequest(radius.CodeAccessRequest, secret, nas)

	if err := rfc2865.UserName_SetString(r.packet, username); err != nil {
		return nil, fmt.Errorf("failed to set User-Name: %w", err)
	}
	if err := rfc2865.UserPassword_SetString(r.packet, password); err != nil {
		return nil, fmt.Errorf("failed to set User-Password: %w", err)
	}

	if err := nas.apply(r); err != nil {
		return nil, err
	}

	return r, nil
}

// BuildChallengeResponse creates the second-round Access-Request answering an
// Access-Challenge: the one-time code as User-Password and the server's State echoed back.
func BuildChallengeResponse(secret []byte, nas NAS, username, code string, state []byte) (*Request, error) {
	if len(state) == 0 {
		return nil, ErrNoState
	}

	r, err := BuildAuthRequest(secret, nas, username, code)
	if err != nil {
		return nil, err
	}

	if err := rfc2865.State_Set(r.packet, state); err != nil {
		return nil, fmt.Errorf("failed to set State: %w", err)
	}

	return r, nil
}

// BuildAccountingRequest creates an Accounting-Request with the given status type.
func BuildAccountingRequest(secret []byte, nas NAS, status rfc2866.AcctStatusType) (*Request, error) {
	r := newRequest(radius.CodeAccountingRequest, secret, nas)

	if err := rfc2866.AcctStatusType_Set(r.packet, status); err != nil {
		return nil, fmt.Errorf("failed to set Acct-Status-Type: %w", err)
	}

	if err := nas.apply(r); err != nil {
		return nil, err
	}

	return r, nil
}

// SetAttribute sets attribute t to value, replacing any existing occurrence.
func (r *Request) SetAttribute(t radius.Type, value []byte) error {
	if len(value) > maxAttributeLength {
		return fmt.Errorf("attribute %d value too long: %d bytes", int(t), len(value))
	}

	v := make([]byte, len(value))
	copy(v, value)

	r.packet.Set(t, radius.Attribute(v))
	r.wire = nil

	return nil
}

// SetString sets a text attribute. Empty values are ignored.
func (r *Request) SetString(t radius.Type, value string) error {
	if value == "" {
		return nil
	}
	return r.SetAttribute(t, []byte(value))
}

// SetInteger sets a 32-bit integer attribute.
func (r *Request) SetInteger(t radius.Type, value uint32) error {
	return r.SetAttribute(t, radius.NewInteger(value))
}

// SetIPv4 sets an IPv4 address attribute. Nil addresses are ignored.
func (r *Request) SetIPv4(t radius.Type, ip net.IP) error {
	if ip == nil {
		return nil
	}

	attr, err := radius.NewIPAddr(ip)
	if err != nil {
		return fmt.Errorf("attribute %d: %w", int(t), err)
	}

	return r.SetAttribute(t, attr)
}

// Encode computes the request authenticator with the bound secret and returns the
// wire bytes. Attributes must all be set before the first call; later calls return
// the same bytes.
func (r *Request) Encode() ([]byte, error) {
	if r.wire != nil {
		return r.wire, nil
	}

	wire, err := r.packet.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", r.packet.Code, err)
	}

	if r.messageAuth {
		if wire, err = appendMessageAuthenticator(wire, r.packet.Secret); err != nil {
			return nil, err
		}
	}

	if len(wire) > maxPacketLength {
		return nil, fmt.Errorf("encoded %s too large: %d bytes", r.packet.Code, len(wire))
	}

	r.wire = wire
	return wire, nil
}

// Code returns the packet code.
func (r *Request) Code() radius.Code {
	return r.packet.Code
}

// Identifier returns the packet identifier.
func (r *Request) Identifier() byte {
	return r.packet.Identifier
}

// Secret returns the shared secret the request is bound to.
func (r *Request) Secret() []byte {
	return r.packet.Secret
}

// Has reports whether attribute t is present.
func (r *Request) Has(t radius.Type) bool {
	_, ok := r.packet.Lookup(t)
	return ok
}

// Packet exposes the underlying packet for inspection.
func (r *Request) Packet() *radius.Packet {
	return r.packet
}
