package library

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserStore is the slice of the users repository the provider needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// UserProvider resolves identities against the user store.
type UserProvider struct {
	store  UserStore
	logger Logger
}

var _ IdentityProvider = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider.
func NewUserProvider(store UserStore) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

// WithLogger overrides the default logger.
func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	u.logger = l
	return u
}

// VerifyIdentity finds the user, compares the password, and returns the
// identity. Unknown usernames and mismatched passwords are
// indistinguishable to the caller.
func (u *UserProvider) VerifyIdentity(ctx context.Context, username, password string) (Identity, error) {
	user, err := u.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return NewIdentityFromUser(user), nil
}

// FindIdentityByUsername resolves an identity without a password check.
func (u *UserProvider) FindIdentityByUsername(ctx context.Context, username string) (Identity, error) {
	user, err := u.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return NewIdentityFromUser(user), nil
}
