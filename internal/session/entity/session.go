package entity

import "time"

// Session is a persisted login. The raw token is never stored; TokenHash is
// its hex SHA-256.
type Session struct {
	TokenHash string    `db:"token_hash"`
	UserID    string    `db:"user_id"`
	Subject   string    `db:"subject"`
	IssuedAt  time.Time `db:"issued_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// ActiveAt reports whether the session is still within its lifetime at now.
func (s *Session) ActiveAt(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
