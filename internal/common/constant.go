// Package common contains shared constants and helpers used across
// rentkeeper components.
package common

const (
	// RequestIDHeaderName carries a per-request correlation id on outbound calls.
	RequestIDHeaderName = "X-Request-ID"

	// AuthorizationHeaderName carries the bearer token issued at login.
	AuthorizationHeaderName = "Authorization"

	// DefaultCurrency is the only currency the backend bills in.
	DefaultCurrency = "INR"
)
