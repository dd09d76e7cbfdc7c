package library

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ChangeCredentialsMessage renames an account and rotates its
// password. Author is optional; leave it empty to keep the current
// label.
type ChangeCredentialsMessage struct {
	UserID      uuid.UUID `json:"user_id"`
	NewUsername string    `json:"new_username"`
	NewPassword string    `json:"new_password"`
	NewAuthor   string    `json:"new_author"`
}

// Type satisfies the command message contract.
func (e ChangeCredentialsMessage) Type() string { return "user.change_credentials" }

type ChangeCredentialsHandler struct {
	repo RepositoryManager
}

func NewChangeCredentialsHandler(repo RepositoryManager) *ChangeCredentialsHandler {
	return &ChangeCredentialsHandler{repo: repo}
}

// Execute applies the rename inside a transaction. A collision with
// another account's username is reported before the write; the unique
// column still backstops concurrent renames.
func (h *ChangeCredentialsHandler) Execute(ctx context.Context, event ChangeCredentialsMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	username := strings.TrimSpace(event.NewUsername)
	if event.UserID == uuid.Nil || username == "" || event.NewPassword == "" {
		return nil, errors.New("new username and password are required", errors.CategoryBadInput).
			WithTextCode(TextCodeValidationFailed)
	}

	hash, err := HashPassword(event.NewPassword)
	if err != nil {
		return nil, err
	}

	// an empty author means "keep the current label"
	author := strings.TrimSpace(event.NewAuthor)
	if author == "" {
		current, err := h.repo.Users().GetByID(ctx, event.UserID.String())
		if err != nil {
			return nil, err
		}
		author = current.Author
	}

	var updated *User

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := h.repo.Users().UsernameTakenTx(ctx, tx, username, event.UserID)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateUsername
		}

		record := &User{
			ID:           event.UserID,
			Username:     username,
			PasswordHash: hash,
			Author:       author,
		}

		updated, err = h.repo.Users().UpdateTx(ctx, tx, record,
			repository.UpdateByID(event.UserID.String()),
		)
		if err != nil {
			if IsUniqueViolation(err) {
				return ErrDuplicateUsername
			}
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return updated, nil
}
