package model

import "time"

// Session is the server-issued proof of a successful login.
// Sessions are immutable once issued; a new login produces a new session.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the session lifetime has elapsed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// AuthContext carries the resolved identity of an authenticated request.
// It is attached to the request context by the access guard.
type AuthContext struct {
	UserID    string
	Email     string
	SessionID string
}
