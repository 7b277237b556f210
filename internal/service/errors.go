package service

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden is returned when access is denied
	ErrForbidden = errors.New("access forbidden")

	// ErrInvalidCredentials is returned when authentication fails
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation is returned when a save is blocked by required-field errors
	ErrValidation = errors.New("validation failed")
)
