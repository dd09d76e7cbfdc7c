package library

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Books is the catalog repository. All (title, author) matching is
// case-insensitive and trimmed; the author-scoped listing is exact and
// the search page matches substrings of the author label.
type Books interface {
	repository.Repository[*Book]

	CreateBook(ctx context.Context, record *Book) (*Book, error)
	GetByTitleAuthor(ctx context.Context, title, author string) (*Book, error)
	ListByAuthor(ctx context.Context, author string) ([]*Book, error)
	SearchByAuthor(ctx context.Context, term string) ([]*Book, error)
	UpdateBook(ctx context.Context, record *Book) (*Book, error)
	DeleteByTitleAuthor(ctx context.Context, title, author string) error
}

type books struct {
	repository.Repository[*Book]
	db *bun.DB
}

var _ Books = (*books)(nil)

// NewBooksRepository builds the books repository on top of the generic
// bun-backed CRUD repository.
func NewBooksRepository(db *bun.DB) Books {
	repo := repository.NewRepository[*Book](db, repository.ModelHandlers[*Book]{
		NewRecord: func() *Book { return &Book{} },
		GetID: func(b *Book) uuid.UUID {
			if b == nil {
				return uuid.Nil
			}
			return b.ID
		},
		SetID: func(b *Book, id uuid.UUID) {
			if b != nil {
				b.ID = id
			}
		},
		GetIdentifier: func() string {
			return "title"
		},
	})

	return &books{
		Repository: repo,
		db:         db,
	}
}

// CreateBook persists a new catalog entry. The pre-check produces a
// friendly duplicate error; the store's unique index remains the
// authoritative enforcement and racing inserts are translated the same
// way.
func (a *books) CreateBook(ctx context.Context, record *Book) (*Book, error) {
	record.Title = strings.TrimSpace(record.Title)
	record.Author = strings.TrimSpace(record.Author)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if _, err := a.GetByTitleAuthor(ctx, record.Title, record.Author); err == nil {
		return nil, ErrDuplicateBook
	}

	created, err := a.Repository.Create(ctx, record)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateBook
		}
		return nil, err
	}

	return created, nil
}

func (a *books) GetByTitleAuthor(ctx context.Context, title, author string) (*Book, error) {
	record := &Book{}
	err := a.db.NewSelect().
		Model(record).
		Where("lower(trim(?TableAlias.title)) = lower(trim(?))", title).
		Where("lower(trim(?TableAlias.author)) = lower(trim(?))", author).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"title":  title,
				"author": author,
			})
		}
		return nil, err
	}

	return record, nil
}

// ListByAuthor returns the author's books, exact label match.
func (a *books) ListByAuthor(ctx context.Context, author string) ([]*Book, error) {
	var records []*Book
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.author = ?", author).
		Order("title ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

// SearchByAuthor returns books whose author label contains the term,
// case-insensitively.
func (a *books) SearchByAuthor(ctx context.Context, term string) ([]*Book, error) {
	var records []*Book
	err := a.db.NewSelect().
		Model(&records).
		Where("lower(?TableAlias.author) LIKE '%' || lower(?) || '%'", strings.TrimSpace(term)).
		Order("author ASC, title ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

// UpdateBook overwrites the record located by its ID. Retitling into an
// existing (title, author) pair trips the unique index and is reported
// as a duplicate.
func (a *books) UpdateBook(ctx context.Context, record *Book) (*Book, error) {
	record.Title = strings.TrimSpace(record.Title)
	record.Author = strings.TrimSpace(record.Author)

	updated, err := a.Repository.Update(ctx, record, repository.UpdateByID(record.ID.String()))
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateBook
		}
		return nil, err
	}

	return updated, nil
}

// DeleteByTitleAuthor hard-deletes by case-insensitive trimmed match.
// Deleting a missing book is a not-found outcome leaving the store
// unchanged.
func (a *books) DeleteByTitleAuthor(ctx context.Context, title, author string) error {
	res, err := a.db.NewDelete().
		Model((*Book)(nil)).
		Where("lower(trim(title)) = lower(trim(?))", title).
		Where("lower(trim(author)) = lower(trim(?))", author).
		Exec(ctx)

	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{
			"title":  title,
			"author": author,
		})
	}

	return nil
}
