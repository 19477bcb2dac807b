package jobboard

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload signed into every session token
type SessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Identity returns the email carried by the token, falling back to the
// subject for tokens minted without the email claim.
func (c *SessionClaims) Identity() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

// Expires returns the expiration time, zero if missing
func (c *SessionClaims) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IssuedAt returns the issue time, zero if missing
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.IssuedAt.Time
}
