package library

import (
	"fmt"
	"time"
)

// SessionObject is the ephemeral per-request identity derived from a
// validated token. Nothing is persisted; expiry simply invalidates it.
type SessionObject struct {
	Username       string     `json:"username,omitempty"`
	Issuer         string     `json:"issuer,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

// GetUsername returns the session's subject.
func (s *SessionObject) GetUsername() string {
	return s.Username
}

// IsAdmin reports whether the session belongs to the admin account.
func (s *SessionObject) IsAdmin() bool {
	return IsAdminUsername(s.Username)
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf("user=%s iss=%s iat=%s", s.Username, s.Issuer, issuedAt)
}

// SessionFromClaims builds a SessionObject from validated token claims.
func SessionFromClaims(claims *Claims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrTokenMalformed
	}

	issuedAt := claims.Issued()
	expiresAt := claims.Expires()

	return &SessionObject{
		Username:       claims.Username(),
		Issuer:         claims.RegisteredClaims.Issuer,
		IssuedAt:       &issuedAt,
		ExpirationDate: &expiresAt,
	}, nil
}
