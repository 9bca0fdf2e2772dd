package auth

import "errors"

// Sentinel kinds for auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrUnknownRole        = errors.New("unknown role")
	ErrUnknownUser        = errors.New("unknown user")
)
