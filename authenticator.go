package library

import (
	"context"
	"reflect"
	"time"
)

// Auther verifies credentials through an IdentityProvider and mints
// tokens through a TokenService.
type Auther struct {
	provider IdentityProvider
	tokens   TokenService
	logger   Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator.
func NewAuthenticator(provider IdentityProvider, tokens TokenService) *Auther {
	return &Auther{
		provider: provider,
		tokens:   tokens,
		logger:   defLogger{},
	}
}

// WithLogger overrides the default logger.
func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// TokenService exposes the token service used by this authenticator.
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Login verifies the credentials and returns a signed token. Unknown
// usernames and wrong passwords produce the same error.
func (s *Auther) Login(ctx context.Context, username, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, username, password)
	if err != nil {
		s.logger.Error("login verify identity error", "error", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("login identity is nil or zero value")
		return "", ErrInvalidCredentials
	}

	return s.tokens.Generate(identity)
}

// SessionFromToken validates the raw token and maps it to a session.
func (s *Auther) SessionFromToken(raw string) (*SessionObject, error) {
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		s.logger.Error("session from token validation failed", "error", err)
		return nil, err
	}

	return SessionFromClaims(claims)
}

// CookieMaxAge returns the cookie lifetime in seconds, matching the
// token TTL so the cookie and the token expire together.
func (s *Auther) CookieMaxAge() int {
	return int(s.tokens.TTL() / time.Second)
}
