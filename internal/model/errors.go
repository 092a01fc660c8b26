package model

import "errors"

// Sentinel errors for the error kinds the service reports. Each layer
// wraps these with fmt.Errorf("...: %w", ...) rather than inventing new
// error types, so callers can test with errors.Is regardless of which
// layer raised it.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)
