package packet

import (
	"crypto/hmac"
	"crypto/md5"
	"fmt"
)

// Message-Authenticator as defined in RFC 2869 section 5.14 and RFC 3579 section 3.2.

const (
	// MessageAuthenticatorType is the attribute type of Message-Authenticator
	MessageAuthenticatorType = 80
	// MessageAuthenticatorLength is the length of the Message-Authenticator value
	MessageAuthenticatorLength = 16

	headerLength = 20
)

// calculateMessageAuthenticator computes HMAC-MD5(secret, packet) with the
// Message-Authenticator value zeroed and the authenticator field replaced by auth when given.
func calculateMessageAuthenticator(wire []byte, secret []byte, auth []byte) ([MessageAuthenticatorLength]byte, error) {
	var result [MessageAuthenticatorLength]byte

	if len(wire) < headerLength {
		return result, fmt.Errorf("packet too short for Message-Authenticator calculation")
	}

	calc := make([]byte, len(wire))
	copy(calc, wire)

	if auth != nil {
		copy(calc[4:headerLength], auth)
	}

	if offset := findMessageAuthenticatorOffset(calc); offset != -1 {
		for i := 0; i < MessageAuthenticatorLength; i++ {
			calc[offset+i] = 0
		}
	}

	mac := hmac.New(md5.New, secret)
	mac.Write(calc)

	copy(result[:], mac.Sum(nil))
	return result, nil
}

// appendMessageAuthenticator appends a signed Message-Authenticator to an encoded Access-Request.
func appendMessageAuthenticator(wire []byte, secret []byte) ([]byte, error) {
	if findMessageAuthenticatorOffset(wire) != -1 {
		return nil, fmt.Errorf("Message-Authenticator already exists in packet")
	}

	newLength := len(wire) + 2 + MessageAuthenticatorLength
	if newLength > maxPacketLength {
		return nil, fmt.Errorf("packet too large for Message-Authenticator: %d bytes", newLength)
	}

	out := make([]byte, len(wire), newLength)
	copy(out, wire)
	out = append(out, MessageAuthenticatorType, 2+MessageAuthenticatorLength)
	out = append(out, make([]byte, MessageAuthenticatorLength)...)

	out[2] = byte(newLength >> 8)
	out[3] = byte(newLength)

	sum, err := calculateMessageAuthenticator(out, secret, nil)
	if err != nil {
		return nil, err
	}
	copy(out[newLength-MessageAuthenticatorLength:], sum[:])

	return out, nil
}

// verifyMessageAuthenticator checks the Message-Authenticator of a response, if it carries one.
func verifyMessageAuthenticator(wire []byte, secret []byte, requestAuth []byte) error {
	offset := findMessageAuthenticatorOffset(wire)
	if offset == -1 {
		return nil
	}

	expected, err := calculateMessageAuthenticator(wire, secret, requestAuth)
	if err != nil {
		return err
	}

	if !hmac.Equal(expected[:], wire[offset:offset+MessageAuthenticatorLength]) {
		return fmt.Errorf("%w: Message-Authenticator mismatch", ErrInvalidResponse)
	}

	return nil
}

// findMessageAuthenticatorOffset finds the offset of the Message-Authenticator value field
func findMessageAuthenticatorOffset(wire []byte) int {
	if len(wire) < headerLength {
		return -1
	}

	offset := headerLength
	for offset+2 <= len(wire) {
		attrType := wire[offset]
		attrLength := int(wire[offset+1])

		if attrLength < 2 || offset+attrLength > len(wire) {
			break
		}

		if attrType == MessageAuthenticatorType && attrLength == 2+MessageAuthenticatorLength {
			return offset + 2
		}

		offset += attrLength
	}

	return -1
}
