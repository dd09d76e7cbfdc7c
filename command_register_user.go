package library

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// RegisterUserMessage carries everything needed to provision a new
// account. Password arrives in the clear and is hashed inside the
// handler; nothing downstream ever sees it.
type RegisterUserMessage struct {
	Author       string `json:"author"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Type satisfies the command message contract.
func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserHandler struct {
	repo RepositoryManager
}

func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo}
}

// Execute hashes the password and stores the account in a transaction.
// The username pre-check gives the friendly error; the unique column
// stays authoritative for racing registrations.
func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	username := strings.TrimSpace(event.Username)
	if username == "" || event.Password == "" {
		return nil, errors.New("username and password are required", errors.CategoryBadInput).
			WithTextCode(TextCodeValidationFailed)
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		return nil, err
	}

	record := &User{
		Author:       strings.TrimSpace(event.Author),
		Username:     username,
		PasswordHash: hash,
		ClientID:     strings.TrimSpace(event.ClientID),
		ClientSecret: event.ClientSecret,
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := h.repo.Users().UsernameTakenTx(ctx, tx, username, record.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateUsername
		}

		record, err = h.repo.Users().RegisterTx(ctx, tx, record)
		return err
	})

	if err != nil {
		return nil, err
	}

	return record, nil
}
