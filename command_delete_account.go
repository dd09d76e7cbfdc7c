package library

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// DeleteAccountMessage removes an account. Self-service deletions must
// present the account password; admin deletions set AdminOverride and
// locate the account by normalized username instead.
type DeleteAccountMessage struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	AdminOverride bool   `json:"-"`
}

// Type satisfies the command message contract.
func (e DeleteAccountMessage) Type() string { return "user.delete" }

type DeleteAccountHandler struct {
	repo RepositoryManager
}

func NewDeleteAccountHandler(repo RepositoryManager) *DeleteAccountHandler {
	return &DeleteAccountHandler{repo: repo}
}

// Execute deletes the account. The self-service path answers both a
// missing account and a wrong password with the same credentials
// error, so the endpoint cannot be used to probe for usernames.
func (h *DeleteAccountHandler) Execute(ctx context.Context, event DeleteAccountMessage) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if event.AdminOverride {
		record, err := h.repo.Users().GetByUsernameNormalized(ctx, event.Username)
		if err != nil {
			return err
		}
		return h.repo.Users().DeleteByID(ctx, record.ID)
	}

	record, err := h.repo.Users().GetByUsername(ctx, event.Username)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrInvalidCredentials
		}
		return err
	}

	if err := ComparePasswordAndHash(event.Password, record.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	return h.repo.Users().DeleteByID(ctx, record.ID)
}
