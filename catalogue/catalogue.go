// Package catalogue is the library catalogue: books, their authors and
// students, stored in one SQLite database.
package catalogue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"pollex.nl/library"
)

type Options struct {
	AuthorDeletePolicy DeletePolicy
}

type Catalogue struct {
	Books    *library.Repository[Book]
	Authors  *library.Repository[Author]
	Students *library.Repository[Student]

	store *library.Store
}

func New(store *library.Store, opts Options) *Catalogue {
	policy := opts.AuthorDeletePolicy
	if policy == "" {
		policy = Restrict
	}

	return &Catalogue{
		Books: library.NewRepository(store, BookTable,
			library.WithHooks(library.Hooks[Book]{BeforeWrite: authorExists}),
		),
		Authors: library.NewRepository(store, AuthorTable,
			library.WithResolve[Author]("books"),
			library.WithHooks(library.Hooks[Author]{BeforeDelete: policy.beforeAuthorDelete}),
		),
		Students: library.NewRepository(store, StudentTable),
		store:    store,
	}
}

// Rebuild drops and recreates every catalogue table.
func (c *Catalogue) Rebuild(ctx context.Context) error {
	return library.Rebuild(ctx, c.store, Tables()...)
}

// BooksByAuthorName returns the books whose author's name contains pattern,
// with the author resolved.
func (c *Catalogue) BooksByAuthorName(ctx context.Context, pattern string) ([]Book, error) {
	var books []Book
	err := c.store.Do(ctx, func(ctx context.Context, tx *sql.Tx) (err error) {
		books, err = BookTable.Query("*", "author").
			ModifyQuery(func(q library.Q, table string) library.Q {
				return q.Join(fmt.Sprintf("%s ON %s = %s",
					AuthorTable.Name,
					library.TableCol(AuthorTable.Name, library.IDColumn),
					library.TableCol(table, "author_id"),
				)).Where(squirrel.Like{library.TableCol(AuthorTable.Name, "name"): "%" + pattern + "%"})
			}).
			Collect(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return books, nil
}

// FirstAuthor returns the author with the lowest id.
func (c *Catalogue) FirstAuthor(ctx context.Context) (*Author, error) {
	var first *Author
	err := c.store.Do(ctx, func(ctx context.Context, tx *sql.Tx) (err error) {
		first, err = AuthorTable.Query().ModifyQuery(library.Limit(1)).CollectOne(ctx, tx)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: no authors", library.ErrNotFound)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return first, nil
}

func authorExists(ctx context.Context, db library.Runner, book Book) error {
	if book.AuthorID == nil {
		return nil
	}

	ok, err := library.Exists(ctx, db, AuthorTable.Name, *book.AuthorID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: author %d does not exist", library.ErrInvalidReference, *book.AuthorID)
	}

	return nil
}
