package library

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the accounts repository. Username lookups used by the auth
// path are exact; the admin deletion path matches case-insensitively
// and trimmed, per the standardized comparison policy.
type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, record *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByUsernameNormalized(ctx context.Context, username string) (*User, error)
	UsernameTaken(ctx context.Context, username string, excluding uuid.UUID) (bool, error)
	UsernameTakenTx(ctx context.Context, tx bun.IDB, username string, excluding uuid.UUID) (bool, error)
	ListAll(ctx context.Context) ([]*User, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository builds the users repository on top of the generic
// bun-backed CRUD repository.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, record *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, record)
}

// RegisterTx persists a new account. The unique column is the
// authoritative duplicate check: a racing insert surfaces as a
// constraint violation and is reported as a duplicate username.
func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	prepareUserDefaults(record)

	created, err := a.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	return created, nil
}

func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"username": username,
			})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByUsernameNormalized(ctx context.Context, username string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("lower(trim(?TableAlias.username)) = lower(trim(?))", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"username": username,
			})
		}
		return nil, err
	}

	return record, nil
}

// UsernameTaken reports whether another row already claims the
// username. Pass uuid.Nil to check against every row.
func (a *users) UsernameTaken(ctx context.Context, username string, excluding uuid.UUID) (bool, error) {
	return a.UsernameTakenTx(ctx, a.db, username, excluding)
}

// UsernameTakenTx is the transaction-scoped variant. Callers already
// holding a transaction must use it: running the check on the pooled
// connection while the transaction holds one deadlocks on a
// single-connection pool.
func (a *users) UsernameTakenTx(ctx context.Context, tx bun.IDB, username string, excluding uuid.UUID) (bool, error) {
	q := tx.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.username = ?", username)

	if excluding != uuid.Nil {
		q = q.Where("?TableAlias.id != ?", excluding)
	}

	return q.Exists(ctx)
}

func (a *users) ListAll(ctx context.Context) ([]*User, error) {
	var records []*User
	err := a.db.NewSelect().
		Model(&records).
		Order("username ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

// DeleteByID hard-deletes the account. Deleting a missing row is a
// not-found outcome, not a silent success.
func (a *users) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{
			"id": id.String(),
		})
	}

	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
