// Package common defines shared sentinel errors used across the client
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrInvalidToken marks a bearer token that cannot be read as a JWT.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired marks a session dropped because its token's exp passed.
	ErrTokenExpired = errors.New("token expired")
)
