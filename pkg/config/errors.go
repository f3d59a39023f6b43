package config

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("configuration file not found")
	ErrInvalid   = errors.New("invalid configuration")
	ErrNoServers = fmt.Errorf("%w: at least one server must be configured", ErrInvalid)
	ErrExists    = errors.New("file already exists")
)

// ValidationError describes the first field rejected by the validator.
type ValidationError struct {
	Field string
	Tag   string
	Value interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation failed on '%s' tag (value: %v)", e.Field, e.Tag, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}
