package library_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	library "github.com/AHApeN4264/Book-library-manager"
)

// setupDB opens a per-test in-memory sqlite database with the schema
// applied. A single connection keeps the memory database alive for the
// duration of the test.
func setupDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))

	db, err := library.OpenDB(dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	t.Cleanup(func() { db.Close() })

	require.NoError(t, library.SetupSchema(context.Background(), db))

	return db
}

func setupRepo(t *testing.T) library.RepositoryManager {
	t.Helper()

	repo := library.NewRepositoryManager(setupDB(t))
	require.NoError(t, repo.Validate())

	return repo
}

func mustRegister(t *testing.T, repo library.RepositoryManager, author, username, password string) *library.User {
	t.Helper()

	user, err := library.NewRegisterUserHandler(repo).Execute(context.Background(), library.RegisterUserMessage{
		Author:   author,
		Username: username,
		Password: password,
	})
	require.NoError(t, err)

	return user
}

func mustCreateBook(t *testing.T, repo library.RepositoryManager, title, author string, pages int) *library.Book {
	t.Helper()

	book, err := repo.Books().CreateBook(context.Background(), &library.Book{
		Title:  title,
		Author: author,
		Pages:  pages,
	})
	require.NoError(t, err)

	return book
}
