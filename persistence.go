package library

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenDB opens a sqlite-backed bun database.
func OpenDB(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open database")
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// SetupSchema creates missing tables and indexes. The expression index
// on books makes the store the authoritative enforcement point for the
// case-insensitive (title, author) uniqueness rule; application-level
// pre-checks are advisory only.
func SetupSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*Book)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create table")
		}
	}

	if _, err := db.ExecContext(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS books_title_author_uq
		 ON books (lower(trim(title)), lower(trim(author)))`,
	); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create books unique index")
	}

	return nil
}
