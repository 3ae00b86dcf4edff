// Package login provides HTTP handlers and helpers for admin authentication.
//
// This file defines exported error values used throughout the login flow.
package login

import "errors"

var (
	// ErrInvalidFormData is returned when the submitted login form cannot be parsed
	// or fails validation.
	ErrInvalidFormData = errors.New("invalid form data")

	// ErrCredentialsMissing is returned when email or password is empty.
	ErrCredentialsMissing = errors.New("email and password are required")

	// ErrInvalidCredentials is returned when the provided email and/or password
	// are not valid.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInternalServerError is returned for unexpected failures during the login
	// process.
	ErrInternalServerError = errors.New("internal server error")
)
