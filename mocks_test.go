package library_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	library "github.com/AHApeN4264/Book-library-manager"
)

// MockIdentityProvider implements library.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, username, password string) (library.Identity, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(library.Identity), args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByUsername(ctx context.Context, username string) (library.Identity, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(library.Identity), args.Error(1)
}

// MockUserStore implements library.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*library.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*library.User), args.Error(1)
}

// TestIdentity is a simple implementation of Identity for testing
type TestIdentity struct {
	id       string
	username string
	role     string
}

func (t TestIdentity) ID() string       { return t.id }
func (t TestIdentity) Username() string { return t.username }
func (t TestIdentity) Role() string     { return t.role }
