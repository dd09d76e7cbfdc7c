package library

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface the package depends on. The
// server binary passes glog loggers; tests pass mocks or the default.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the attributes of an authenticated identity.
type Identity interface {
	ID() string
	Username() string
	Role() string
}

// Authenticator verifies credentials and mints/validates sessions.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	SessionFromToken(raw string) (*SessionObject, error)
	TokenService() TokenService
	CookieMaxAge() int
}

// IdentityProvider is the store-facing side of authentication.
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, username, password string) (Identity, error)
	FindIdentityByUsername(ctx context.Context, username string) (Identity, error)
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) { d.print("DBG", msg, args...) }
func (d defLogger) Info(msg string, args ...any)  { d.print("INF", msg, args...) }
func (d defLogger) Warn(msg string, args ...any)  { d.print("WRN", msg, args...) }
func (d defLogger) Error(msg string, args ...any) { d.print("ERR", msg, args...) }

func (d defLogger) print(level, msg string, args ...any) {
	if len(args) == 0 {
		fmt.Printf("[%s] LIB %s\n", level, msg)
		return
	}
	fmt.Printf("[%s] LIB %s %v\n", level, msg, args)
}
