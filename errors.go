package library

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes exposed to API clients alongside the HTTP status.
const (
	TextCodeInvalidCreds     = "INVALID_CREDENTIALS"
	TextCodeSessionNotFound  = "SESSION_NOT_FOUND"
	TextCodeTokenExpired     = "TOKEN_EXPIRED"
	TextCodeTokenMalformed   = "TOKEN_MALFORMED"
	TextCodeAdminOnly        = "ADMIN_ONLY"
	TextCodeDuplicateUser    = "DUPLICATE_USERNAME"
	TextCodeDuplicateBook    = "DUPLICATE_BOOK"
	TextCodeAuthorMismatch   = "AUTHOR_MISMATCH"
	TextCodeValidationFailed = "VALIDATION_FAILED"
)

// ErrInvalidCredentials is returned for both unknown users and bad
// passwords so callers cannot probe which usernames exist.
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrUnableToFindSession means the request carried no usable token.
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound)

// ErrTokenExpired means the token was well formed but past its expiry.
var ErrTokenExpired = errors.New("authentication token has expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed covers bad signatures, unparseable payloads and
// tokens missing a subject.
var ErrTokenMalformed = errors.New("authentication token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrAdminOnly gates the admin surface.
var ErrAdminOnly = errors.New("this operation is restricted to the administrator", errors.CategoryAuthz).
	WithTextCode(TextCodeAdminOnly)

// ErrDuplicateUsername is the duplicate-registration rejection.
var ErrDuplicateUsername = errors.New("username is already taken", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateUser)

// ErrDuplicateBook is the duplicate (title, author) rejection.
var ErrDuplicateBook = errors.New("book already exists for this author", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateBook)

// ErrAuthorMismatch is returned when the submitted author label does not
// match the account's stored label.
var ErrAuthorMismatch = errors.New("author label does not match this account", errors.CategoryAuth).
	WithTextCode(TextCodeAuthorMismatch)

// IsUniqueViolation reports whether err is a sqlite unique-constraint
// failure. The store's constraints, not the application pre-checks, are
// the authoritative enforcement of uniqueness, so racing inserts surface
// here and get translated to duplicate errors.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsTokenExpiredError matches expired-token failures from the token
// service or the underlying JWT library.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError matches malformed-token failures.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
