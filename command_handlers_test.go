package library_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	library "github.com/AHApeN4264/Book-library-manager"
)

func TestRegisterUserHandler(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	handler := library.NewRegisterUserHandler(repo)

	t.Run("stores a hash, never the password", func(t *testing.T) {
		created, err := handler.Execute(ctx, library.RegisterUserMessage{
			Author:   "Frank Herbert",
			Username: "alice",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.NotEqual(t, "secret123", created.PasswordHash)
		assert.NoError(t, library.ComparePasswordAndHash("secret123", created.PasswordHash))
	})

	t.Run("rejects a duplicate username", func(t *testing.T) {
		_, err := handler.Execute(ctx, library.RegisterUserMessage{
			Author:   "Someone Else",
			Username: "alice",
			Password: "secret456",
		})
		assert.ErrorIs(t, err, library.ErrDuplicateUsername)
	})

	t.Run("rejects a missing password", func(t *testing.T) {
		_, err := handler.Execute(ctx, library.RegisterUserMessage{
			Author:   "Frank Herbert",
			Username: "bob",
		})
		assert.Error(t, err)
	})
}

func TestChangeCredentialsHandler(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	handler := library.NewChangeCredentialsHandler(repo)

	alice := mustRegister(t, repo, "Frank Herbert", "alice", "secret123")
	mustRegister(t, repo, "William Gibson", "bob", "secret123")

	t.Run("renames the account and rotates the password", func(t *testing.T) {
		updated, err := handler.Execute(ctx, library.ChangeCredentialsMessage{
			UserID:      alice.ID,
			NewUsername: "alice2",
			NewPassword: "newsecret",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice2", updated.Username)
		assert.NoError(t, library.ComparePasswordAndHash("newsecret", updated.PasswordHash))

		_, err = repo.Users().GetByUsername(ctx, "alice")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("rejects a username held by another account", func(t *testing.T) {
		_, err := handler.Execute(ctx, library.ChangeCredentialsMessage{
			UserID:      alice.ID,
			NewUsername: "bob",
			NewPassword: "whatever1",
		})
		assert.ErrorIs(t, err, library.ErrDuplicateUsername)
	})

	t.Run("keeping your own username is not a collision", func(t *testing.T) {
		_, err := handler.Execute(ctx, library.ChangeCredentialsMessage{
			UserID:      alice.ID,
			NewUsername: "alice2",
			NewPassword: "rotated99",
		})
		assert.NoError(t, err)
	})

	t.Run("empty author keeps the current label", func(t *testing.T) {
		updated, err := handler.Execute(ctx, library.ChangeCredentialsMessage{
			UserID:      alice.ID,
			NewUsername: "alice3",
			NewPassword: "rotated100",
			NewAuthor:   "",
		})
		require.NoError(t, err)
		assert.Equal(t, "Frank Herbert", updated.Author)

		stored, err := repo.Users().GetByUsername(ctx, "alice3")
		require.NoError(t, err)
		assert.Equal(t, "Frank Herbert", stored.Author)
	})

	t.Run("a new author label replaces the old one", func(t *testing.T) {
		updated, err := handler.Execute(ctx, library.ChangeCredentialsMessage{
			UserID:      alice.ID,
			NewUsername: "alice3",
			NewPassword: "rotated101",
			NewAuthor:   "F. Herbert",
		})
		require.NoError(t, err)
		assert.Equal(t, "F. Herbert", updated.Author)
	})
}

func TestDeleteAccountHandler(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	handler := library.NewDeleteAccountHandler(repo)

	t.Run("self-service requires the right password", func(t *testing.T) {
		mustRegister(t, repo, "Frank Herbert", "alice", "secret123")

		err := handler.Execute(ctx, library.DeleteAccountMessage{
			Username: "alice",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, library.ErrInvalidCredentials)

		err = handler.Execute(ctx, library.DeleteAccountMessage{
			Username: "alice",
			Password: "secret123",
		})
		require.NoError(t, err)

		_, err = repo.Users().GetByUsername(ctx, "alice")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("missing account reads as invalid credentials", func(t *testing.T) {
		err := handler.Execute(ctx, library.DeleteAccountMessage{
			Username: "ghost",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, library.ErrInvalidCredentials)
	})

	t.Run("admin override skips the password and normalizes the name", func(t *testing.T) {
		mustRegister(t, repo, "William Gibson", "Bob", "secret123")

		err := handler.Execute(ctx, library.DeleteAccountMessage{
			Username:      "  bob ",
			AdminOverride: true,
		})
		require.NoError(t, err)

		_, err = repo.Users().GetByUsername(ctx, "Bob")
		assert.True(t, errors.IsNotFound(err))
	})
}
