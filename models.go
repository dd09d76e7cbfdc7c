package library

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AdminUsername is the single privileged account. There is no role table;
// privilege is decided by comparing the normalized username to this literal.
const AdminUsername = "admin"

// IsAdminUsername reports whether the given username, trimmed and
// case-normalized, is the admin account.
func IsAdminUsername(username string) bool {
	return strings.EqualFold(strings.TrimSpace(username), AdminUsername)
}

// User is an account that owns books under its author label.
//
// The author label is a denormalized grouping string, not a foreign key:
// books reference it by value only. ClientID/ClientSecret are opaque
// strings accepted at registration and never interpreted.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID           uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Author       string     `bun:"author" json:"author,omitempty"`
	Username     string     `bun:"username,notnull,unique" json:"username,omitempty"`
	PasswordHash string     `bun:"password_hash,notnull" json:"-"`
	ClientID     string     `bun:"client_id" json:"client_id,omitempty"`
	ClientSecret string     `bun:"client_secret" json:"-"`
	CreatedAt    *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt    *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// IsAdmin reports whether this account is the privileged admin.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	return IsAdminUsername(u.Username)
}

// Book belongs to an author label. Uniqueness of (title, author) is
// enforced case-insensitively by the store; application pre-checks exist
// only to produce friendlier errors.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:bk"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title     string     `bun:"title,notnull" json:"title"`
	Author    string     `bun:"author,notnull" json:"author"`
	Pages     int        `bun:"pages,notnull" json:"pages"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// UserIdentity adapts a User into the Identity interface for token
// generation.
type UserIdentity struct {
	user *User
}

// NewIdentityFromUser returns an Identity adapter for the provided user.
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: user}
}

// ID returns the user's ID as a string.
func (u UserIdentity) ID() string {
	if u.user == nil {
		return ""
	}
	return u.user.ID.String()
}

// Username returns the user's username, the token subject.
func (u UserIdentity) Username() string {
	if u.user == nil {
		return ""
	}
	return u.user.Username
}

// Role returns "admin" for the admin account and "member" otherwise.
func (u UserIdentity) Role() string {
	if u.user != nil && u.user.IsAdmin() {
		return "admin"
	}
	return "member"
}
