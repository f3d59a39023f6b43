package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks struct tags first, then the rules tags cannot express.
func Validate(cfg *Config) error {
	if len(cfg.Servers) == 0 {
		return ErrNoServers
	}

	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	names := make(map[string]bool)
	for i, s := range cfg.Servers {
		if names[s.Name] {
			return fmt.Errorf("%w: servers[%d]: duplicate server name %q", ErrInvalid, i, s.Name)
		}
		names[s.Name] = true

		if s.SharedSecret == "" {
			return fmt.Errorf("%w: servers[%d]: shared_secret must not be empty for %q", ErrInvalid, i, s.Name)
		}
	}

	return nil
}

// formatValidationError keeps the first validator failure.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return &ValidationError{
			Field: e.Namespace(),
			Tag:   e.Tag(),
			Value: e.Value(),
		}
	}
	return fmt.Errorf("%w: %w", ErrInvalid, err)
}
