package config

import "errors"

var (
	// ErrMissingVariable is returned when a referenced variable is unset.
	ErrMissingVariable = errors.New("config: missing required environment variables")

	// ErrInvalidValue wraps values that do not parse.
	ErrInvalidValue = errors.New("config: invalid value")

	// ErrInvalidProfile is returned for an unknown DBGATE_PROFILE.
	ErrInvalidProfile = errors.New("config: invalid profile")

	// ErrInvalidSecret is returned when a secret reference cannot be resolved.
	ErrInvalidSecret = errors.New("config: invalid secret reference")
)
