package model

import "time"

// User is a registered account
type User struct {
	Username     string
	PasswordHash string // bcrypt hash
	Email        string
	CreatedAt    time.Time
}

// AuthData binds an auth token to a username
type AuthData struct {
	Token     string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is no longer valid at now
func (a *AuthData) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && now.After(a.ExpiresAt)
}
