package library

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

const (
	// AccessTokenCookie carries the signed session token for the HTML
	// surface.
	AccessTokenCookie = "access_token"

	// ContextSessionKey and ContextUserKey hold the authenticated
	// session and account on the request locals.
	ContextSessionKey = "auth_session"
	ContextUserKey    = "auth_user"
)

// AuthGate guards routes on both surfaces. The cookie gate bounces
// browsers back to the login page with a message; the bearer gate
// answers API clients with a JSON 401.
type AuthGate struct {
	auth   Authenticator
	users  Users
	logger Logger
}

func NewAuthGate(auth Authenticator, users Users) *AuthGate {
	return &AuthGate{
		auth:   auth,
		users:  users,
		logger: defLogger{},
	}
}

func (g *AuthGate) WithLogger(logger Logger) *AuthGate {
	g.logger = logger
	return g
}

// CookieAuth authenticates the request from the access token cookie.
// Any failure clears the cookie before redirecting, so a stale token
// cannot loop the browser through the gate.
func (g *AuthGate) CookieAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(AccessTokenCookie)
		if raw == "" {
			return redirectToLogin(c, "Please log in first")
		}

		session, err := g.auth.SessionFromToken(raw)
		if err != nil {
			g.logger.Debug("cookie auth rejected", "error", err)
			ClearAuthCookie(c)
			if IsTokenExpiredError(err) {
				return redirectToLogin(c, "Session expired, please log in again")
			}
			return redirectToLogin(c, "Please log in first")
		}

		user, err := g.users.GetByUsername(c.UserContext(), session.GetUsername())
		if err != nil {
			g.logger.Debug("cookie auth user lookup failed", "username", session.GetUsername(), "error", err)
			ClearAuthCookie(c)
			return redirectToLogin(c, "Please log in first")
		}

		c.Locals(ContextSessionKey, session)
		c.Locals(ContextUserKey, user)

		return c.Next()
	}
}

// BearerAuth authenticates the request from the Authorization header.
func (g *AuthGate) BearerAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return writeError(c, ErrUnableToFindSession)
		}

		session, err := g.auth.SessionFromToken(raw)
		if err != nil {
			g.logger.Debug("bearer auth rejected", "error", err)
			return writeError(c, err)
		}

		user, err := g.users.GetByUsername(c.UserContext(), session.GetUsername())
		if err != nil {
			g.logger.Debug("bearer auth user lookup failed", "username", session.GetUsername(), "error", err)
			return writeError(c, ErrUnableToFindSession)
		}

		c.Locals(ContextSessionKey, session)
		c.Locals(ContextUserKey, user)

		return c.Next()
	}
}

// RequireAdmin runs after one of the auth gates and turns away
// non-admin sessions. Browsers land on the admin error page; API
// clients get a JSON 403.
func (g *AuthGate) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := CurrentSession(c)
		if err != nil {
			return writeError(c, err)
		}

		if !session.IsAdmin() {
			if wantsJSON(c) {
				return writeError(c, ErrAdminOnly)
			}
			return c.Redirect("/admin-error", fiber.StatusSeeOther)
		}

		return c.Next()
	}
}

// CurrentSession returns the session stored by an auth gate.
func CurrentSession(c *fiber.Ctx) (*SessionObject, error) {
	session, ok := c.Locals(ContextSessionKey).(*SessionObject)
	if !ok || session == nil {
		return nil, ErrUnableToFindSession
	}
	return session, nil
}

// CurrentUser returns the account stored by an auth gate.
func CurrentUser(c *fiber.Ctx) (*User, error) {
	user, ok := c.Locals(ContextUserKey).(*User)
	if !ok || user == nil {
		return nil, ErrUnableToFindSession
	}
	return user, nil
}

// SetAuthCookie installs the session cookie with the same lifetime as
// the token it carries.
func SetAuthCookie(c *fiber.Ctx, token string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearAuthCookie expires the session cookie.
func ClearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func redirectToLogin(c *fiber.Ctx, msg string) error {
	return c.Redirect("/login?msg="+url.QueryEscape(msg), fiber.StatusSeeOther)
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// wantsJSON reports whether the client should get the JSON rendering
// of a shared route.
func wantsJSON(c *fiber.Ctx) bool {
	if c.Get(fiber.HeaderAuthorization) != "" {
		return true
	}
	if c.Is("json") {
		return true
	}
	return c.Accepts("html", "json") == "json"
}

// writeError renders the JSON error envelope for the API surface,
// mapping error categories onto HTTP status codes. Internal failures
// keep their detail out of the response body.
func writeError(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "unexpected server error")
	}

	status := statusForError(richErr)

	message := richErr.Message
	if status == fiber.StatusInternalServerError {
		defLogger{}.Error("request failed",
			"error", richErr.Message,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
		message = "unexpected server error"
	}

	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"message":   message,
			"text_code": richErr.TextCode,
		},
	})
}

func statusForError(err *errors.Error) int {
	switch err.Category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict, errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
