package packet

import (
	"fmt"

	"layeh.com/radius"
	"layeh.com/radius/rfc2865"
)

// Response is a validated reply correlated with the Request it answers.
type Response struct {
	Code       radius.Code
	Identifier byte
	// Attributes are kept in wire order.
	Attributes []Attribute
}

// ParseResponse validates b as the reply to req and decodes it. Identifier,
// response authenticator and, when present, Message-Authenticator must all match.
func ParseResponse(b []byte, req *Request) (*Response, error) {
	if req.wire == nil {
		return nil, ErrNotEncoded
	}

	if len(b) < headerLength {
		return nil, fmt.Errorf("%w: %d bytes is shorter than a RADIUS header", ErrInvalidResponse, len(b))
	}

	if b[1] != req.wire[1] {
		return nil, fmt.Errorf("%w: identifier mismatch: got %d, want %d", ErrInvalidResponse, b[1], req.wire[1])
	}

	secret := req.packet.Secret
	if !radius.IsAuthenticResponse(b, req.wire, secret) {
		return nil, fmt.Errorf("%w: response authenticator mismatch", ErrInvalidResponse)
	}

	if err := verifyMessageAuthenticator(b, secret, req.wire[4:headerLength]); err != nil {
		return nil, err
	}

	p, err := radius.Parse(b, secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return &Response{
		Code:       p.Code,
		Identifier: p.Identifier,
		Attributes: attributesOf(p),
	}, nil
}

// Get returns the first value of attribute t.
func (r *Response) Get(t radius.Type) ([]byte, bool) {
	for _, attr := range r.Attributes {
		if attr.Type == t {
			return attr.Value, true
		}
	}
	return nil, false
}

// State returns the State attribute of an Access-Challenge.
func (r *Response) State() ([]byte, error) {
	state, ok := r.Get(rfc2865.State_Type)
	if !ok || len(state) == 0 {
		return nil, ErrNoState
	}
	return state, nil
}

// ReplyMessages returns every Reply-Message in order.
func (r *Response) ReplyMessages() []string {
	var msgs []string
	for _, attr := range r.Attributes {
		if attr.Type == rfc2865.ReplyMessage_Type {
			msgs = append(msgs, string(attr.Value))
		}
	}
	return msgs
}
