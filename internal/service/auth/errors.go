package auth

import "errors"

// Context token errors. The HTTP layer maps all of them to 401.
var (
	ErrMissingToken     = errors.New("context token is missing")
	ErrInvalidToken     = errors.New("context token is invalid")
	ErrExpiredToken     = errors.New("context token has expired")
	ErrTokenNotYetValid = errors.New("context token is not valid yet")

	// ErrInvalidContextID is returned when issuing a token for an id that
	// cannot key a stored snapshot.
	ErrInvalidContextID = errors.New("invalid context id")
)
