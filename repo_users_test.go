package library_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	library "github.com/AHApeN4264/Book-library-manager"
)

func TestUsersRegister(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	t.Run("persists a new account", func(t *testing.T) {
		created, err := repo.Users().Register(ctx, &library.User{
			Author:       "Frank Herbert",
			Username:     "alice",
			PasswordHash: "x",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)

		found, err := repo.Users().GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "Frank Herbert", found.Author)
	})

	t.Run("rejects a duplicate username", func(t *testing.T) {
		_, err := repo.Users().Register(ctx, &library.User{
			Author:       "Someone Else",
			Username:     "alice",
			PasswordHash: "y",
		})
		assert.ErrorIs(t, err, library.ErrDuplicateUsername)
	})
}

func TestUsersLookups(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	_, err := repo.Users().Register(ctx, &library.User{
		Author:       "Frank Herbert",
		Username:     "Alice",
		PasswordHash: "x",
	})
	require.NoError(t, err)

	t.Run("exact lookup is case sensitive", func(t *testing.T) {
		_, err := repo.Users().GetByUsername(ctx, "alice")
		assert.True(t, errors.IsNotFound(err))

		found, err := repo.Users().GetByUsername(ctx, "Alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice", found.Username)
	})

	t.Run("normalized lookup trims and ignores case", func(t *testing.T) {
		found, err := repo.Users().GetByUsernameNormalized(ctx, "  alice ")
		require.NoError(t, err)
		assert.Equal(t, "Alice", found.Username)
	})

	t.Run("username taken respects the exclusion", func(t *testing.T) {
		existing, err := repo.Users().GetByUsername(ctx, "Alice")
		require.NoError(t, err)

		taken, err := repo.Users().UsernameTaken(ctx, "Alice", uuid.Nil)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = repo.Users().UsernameTaken(ctx, "Alice", existing.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})
}

func TestUsersDelete(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	created, err := repo.Users().Register(ctx, &library.User{
		Author:       "Frank Herbert",
		Username:     "alice",
		PasswordHash: "x",
	})
	require.NoError(t, err)

	t.Run("removes the account", func(t *testing.T) {
		require.NoError(t, repo.Users().DeleteByID(ctx, created.ID))

		_, err := repo.Users().GetByUsername(ctx, "alice")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("deleting again reports not found", func(t *testing.T) {
		err := repo.Users().DeleteByID(ctx, created.ID)
		assert.True(t, errors.IsNotFound(err))
	})
}

// The test databases run on a single-connection pool, so this check
// hangs rather than passes if the existence query ever bypasses the
// transaction's connection.
func TestUsernameTakenInsideTransaction(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	_, err := repo.Users().Register(ctx, &library.User{
		Author:       "Frank Herbert",
		Username:     "alice",
		PasswordHash: "x",
	})
	require.NoError(t, err)

	err = repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := repo.Users().UsernameTakenTx(ctx, tx, "alice", uuid.Nil)
		if err != nil {
			return err
		}
		assert.True(t, taken)

		taken, err = repo.Users().UsernameTakenTx(ctx, tx, "bob", uuid.Nil)
		if err != nil {
			return err
		}
		assert.False(t, taken)

		return nil
	})
	require.NoError(t, err)
}

func TestUsersListAll(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	for _, username := range []string{"carol", "alice", "bob"} {
		_, err := repo.Users().Register(ctx, &library.User{
			Author:       "Author " + username,
			Username:     username,
			PasswordHash: "x",
		})
		require.NoError(t, err)
	}

	records, err := repo.Users().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "alice", records[0].Username)
	assert.Equal(t, "bob", records[1].Username)
	assert.Equal(t, "carol", records[2].Username)
}
