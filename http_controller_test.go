package library_test

import (
	"context"
	"io"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginCookie(t *testing.T, ta *testApp, author, username, password string) string {
	t.Helper()

	res := ta.formRequest(t, fiber.MethodPost, "/register", "", url.Values{
		"author":   {author},
		"username": {username},
		"password": {password},
	})
	require.Equal(t, fiber.StatusSeeOther, res.StatusCode)

	res = ta.formRequest(t, fiber.MethodPost, "/token", "", url.Values{
		"author":   {author},
		"username": {username},
		"password": {password},
	})
	require.Equal(t, fiber.StatusSeeOther, res.StatusCode)

	cookie := sessionCookie(res)
	require.NotEmpty(t, cookie)

	return cookie
}

func TestHTMLBookFlow(t *testing.T) {
	ta := newTestApp(t)
	cookie := loginCookie(t, ta, "Frank Herbert", "alice", "secret123")

	t.Run("create goes back to the menu", func(t *testing.T) {
		res := ta.formRequest(t, fiber.MethodPost, "/create-book/Frank%20Herbert", cookie, url.Values{
			"title": {"Dune"},
			"pages": {"412"},
		})
		require.Equal(t, fiber.StatusSeeOther, res.StatusCode)
		assert.Contains(t, res.Header.Get("Location"), "/menu/")
	})

	t.Run("too few pages bounces back with the message", func(t *testing.T) {
		res := ta.formRequest(t, fiber.MethodPost, "/create-book/Frank%20Herbert", cookie, url.Values{
			"title": {"Pamphlet"},
			"pages": {"5"},
		})
		require.Equal(t, fiber.StatusSeeOther, res.StatusCode)
		assert.Contains(t, res.Header.Get("Location"), "/create-book/")
	})

	t.Run("cannot write under another author's label", func(t *testing.T) {
		res := ta.formRequest(t, fiber.MethodPost, "/create-book/William%20Gibson", cookie, url.Values{
			"title": {"Neuromancer"},
			"pages": {"271"},
		})
		require.Equal(t, fiber.StatusSeeOther, res.StatusCode)
		assert.Contains(t, res.Header.Get("Location"), "/login")
	})

	t.Run("browser listing renders HTML", func(t *testing.T) {
		res := ta.formRequest(t, fiber.MethodGet, "/books/Frank%20Herbert", "", nil)
		require.Equal(t, fiber.StatusOK, res.StatusCode)

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		res.Body.Close()
		assert.Contains(t, string(body), "Dune")
	})

	t.Run("update rewrites title and pages", func(t *testing.T) {
		res := ta.formRequest(t, fiber.MethodPost, "/update-book/Frank%20Herbert", cookie, url.Values{
			"old_title": {"Dune"},
			"new_title": {"Dune Messiah"},
			"new_pages": {"256"},
		})
		require.Equal(t, fiber.StatusSeeOther, res.StatusCode)
		assert.Contains(t, res.Header.Get("Location"), "/menu/")
	})

	t.Run("public search matches author substrings", func(t *testing.T) {
		res := ta.formRequest(t, fiber.MethodGet, "/get-books/herb", "", nil)
		require.Equal(t, fiber.StatusOK, res.StatusCode)

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		res.Body.Close()
		assert.Contains(t, string(body), "Dune Messiah")
	})

	t.Run("delete removes the book", func(t *testing.T) {
		res := ta.formRequest(t, fiber.MethodPost, "/delete-book/Frank%20Herbert", cookie, url.Values{
			"title": {"dune messiah"},
		})
		require.Equal(t, fiber.StatusSeeOther, res.StatusCode)
		assert.Contains(t, res.Header.Get("Location"), "/menu/")

		res = ta.formRequest(t, fiber.MethodPost, "/delete-book/Frank%20Herbert", cookie, url.Values{
			"title": {"dune messiah"},
		})
		require.Equal(t, fiber.StatusSeeOther, res.StatusCode)
		assert.Contains(t, res.Header.Get("Location"), "/delete-book/")
	})
}

func TestHTMLSettingsFlow(t *testing.T) {
	ta := newTestApp(t)
	cookie := loginCookie(t, ta, "Frank Herbert", "alice", "secret123")

	t.Run("change credentials re-issues the cookie", func(t *testing.T) {
		res := ta.formRequest(t, fiber.MethodPost, "/change-name/Frank%20Herbert", cookie, url.Values{
			"new_user":     {"alice2"},
			"new_password": {"newsecret"},
		})
		require.Equal(t, fiber.StatusSeeOther, res.StatusCode)
		assert.Contains(t, res.Header.Get("Location"), "/setting-user/")

		fresh := sessionCookie(res)
		require.NotEmpty(t, fresh)

		page := ta.formRequest(t, fiber.MethodGet, "/data-user/Frank%20Herbert", fresh, nil)
		require.Equal(t, fiber.StatusOK, page.StatusCode)

		body, err := io.ReadAll(page.Body)
		require.NoError(t, err)
		page.Body.Close()
		assert.Contains(t, string(body), "alice2")
		assert.NotContains(t, string(body), "newsecret")
	})

	t.Run("old cookie stops working after the rename", func(t *testing.T) {
		res := ta.formRequest(t, fiber.MethodGet, "/menu/Frank%20Herbert", cookie, nil)
		require.Equal(t, fiber.StatusSeeOther, res.StatusCode)
		assert.Contains(t, res.Header.Get("Location"), "/login")
	})

	t.Run("logout clears the session", func(t *testing.T) {
		res := ta.formRequest(t, fiber.MethodPost, "/token", "", url.Values{
			"author":   {"Frank Herbert"},
			"username": {"alice2"},
			"password": {"newsecret"},
		})
		require.Equal(t, fiber.StatusSeeOther, res.StatusCode)
		fresh := sessionCookie(res)

		out := ta.formRequest(t, fiber.MethodGet, "/logout", fresh, nil)
		require.Equal(t, fiber.StatusSeeOther, out.StatusCode)
		assert.Contains(t, out.Header.Get("Location"), "/login")
		assert.Empty(t, sessionCookie(out))
	})

	t.Run("login page short-circuits a valid cookie", func(t *testing.T) {
		res := ta.formRequest(t, fiber.MethodPost, "/token", "", url.Values{
			"author":   {"Frank Herbert"},
			"username": {"alice2"},
			"password": {"newsecret"},
		})
		fresh := sessionCookie(res)
		require.NotEmpty(t, fresh)

		page := ta.formRequest(t, fiber.MethodGet, "/login", fresh, nil)
		require.Equal(t, fiber.StatusSeeOther, page.StatusCode)
		assert.Contains(t, page.Header.Get("Location"), "/menu/")
	})

	t.Run("delete register removes the account and session", func(t *testing.T) {
		res := ta.formRequest(t, fiber.MethodPost, "/token", "", url.Values{
			"author":   {"Frank Herbert"},
			"username": {"alice2"},
			"password": {"newsecret"},
		})
		fresh := sessionCookie(res)
		require.NotEmpty(t, fresh)

		out := ta.formRequest(t, fiber.MethodPost, "/delete-register/Frank%20Herbert", fresh, nil)
		require.Equal(t, fiber.StatusSeeOther, out.StatusCode)
		assert.Contains(t, out.Header.Get("Location"), "/login")

		_, err := ta.repo.Users().GetByUsername(context.Background(), "alice2")
		assert.Error(t, err)
	})
}
