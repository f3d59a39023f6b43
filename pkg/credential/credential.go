// Package credential reads the username/password pair handed over by the VPN gateway.
package credential

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ChallengeMarker prefixes a password field carrying both a password and a one-time code
// as SCRV1:<base64 password>:<base64 code>. Any field starting with it must follow that form.
const ChallengeMarker = "SCRV1"

var (
	ErrFileMissing     = errors.New("credential file missing")
	ErrLineCount       = errors.New("credential file must contain exactly two lines")
	ErrMalformedMarker = errors.New("malformed SCRV1 password field")
)

// FormatError describes why a credential could not be parsed.
type FormatError struct {
	Kind   error
	Detail string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
}

func (e *FormatError) Unwrap() error {
	return e.Kind
}

// Credential is an immutable username, password and optional one-time code.
type Credential struct {
	Username    string
	Password    string
	OneTimeCode string
	// HasOneTimeCode is set when the password field carried the challenge marker.
	HasOneTimeCode bool
}

// Parse builds a Credential from a username and the raw password field.
func Parse(username, field string) (Credential, error) {
	cred := Credential{Username: username}

	if !strings.HasPrefix(field, ChallengeMarker) {
		cred.Password = field
		return cred, nil
	}

	parts := strings.Split(field, ":")
	if len(parts) != 3 {
		return Credential{}, &FormatError{Kind: ErrMalformedMarker, Detail: fmt.Sprintf("expected 3 fields, got %d", len(parts))}
	}

	password, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return Credential{}, &FormatError{Kind: ErrMalformedMarker, Detail: fmt.Sprintf("password: %v", err)}
	}

	code, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return Credential{}, &FormatError{Kind: ErrMalformedMarker, Detail: fmt.Sprintf("one-time code: %v", err)}
	}

	cred.Password = string(password)
	cred.OneTimeCode = string(code)
	cred.HasOneTimeCode = true

	return cred, nil
}

// ReadFile reads a via-file credential: the username on line one, the password field on line two.
func ReadFile(path string) (Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credential{}, fmt.Errorf("%w: %s", ErrFileMissing, path)
		}
		return Credential{}, fmt.Errorf("failed to read credential file: %w", err)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return Credential{}, fmt.Errorf("failed to read credential file: %w", err)
	}

	if len(lines) != 2 {
		return Credential{}, &FormatError{Kind: ErrLineCount, Detail: fmt.Sprintf("%s has %d lines", path, len(lines))}
	}

	return Parse(lines[0], lines[1])
}

// String returns the credential without its secrets
func (c Credential) String() string {
	if c.HasOneTimeCode {
		return fmt.Sprintf("%s (password, one-time code)", c.Username)
	}
	return fmt.Sprintf("%s (password)", c.Username)
}
