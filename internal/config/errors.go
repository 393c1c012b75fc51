package config

import "errors"

// Loading errors
var (
	ErrNoSourceData       = errors.New("no configuration source data")
	ErrParseToml          = errors.New("failed to parse TOML")
	ErrFailedToLoadConfig = errors.New("failed to load config")
)

// Validation errors
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrDuplicateName        = errors.New("duplicate name")
	ErrInvalidReference     = errors.New("invalid reference")
	ErrInvalidTransport     = errors.New("invalid transport")
	ErrInvalidValue         = errors.New("invalid value")
)
