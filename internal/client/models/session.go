package models

import "time"

// Session is the single locally persisted login.
type Session struct {
	Username     string
	Role         Role
	Token        string
	LastActivity time.Time
	// ExpiresAt comes from the bearer token; zero when the backend issued none.
	ExpiresAt time.Time
}

// Expired reports whether the session must be discarded at now.
func (s Session) Expired(now time.Time, window time.Duration) bool {
	if window > 0 && now.Sub(s.LastActivity) > window {
		return true
	}
	return s.TokenExpired(now)
}

// TokenExpired reports whether the bearer token's own expiry has passed.
func (s Session) TokenExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
