package jobboard

import (
	"time"
)

// Session is what a verified token tells us about the caller
type Session struct {
	Subject   string    `json:"identity"`
	Issuer    string    `json:"issuer,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionFromClaims(claims *SessionClaims) *Session {
	return &Session{
		Subject:   claims.Identity(),
		Issuer:    claims.Issuer,
		IssuedAt:  claims.IssuedAt(),
		ExpiresAt: claims.Expires(),
	}
}

// Identity returns the verified email
func (s *Session) Identity() string {
	if s == nil {
		return ""
	}
	return s.Subject
}

// Expired reports whether the session is at or past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
