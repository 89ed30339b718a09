package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/go-playground/validator/v10"
)

// Hooks let an entity kind enforce rules that span tables. They run inside
// the session of the operation that triggered them.
type Hooks[T any] struct {
	BeforeWrite  func(ctx context.Context, db Runner, t T) error
	BeforeDelete func(ctx context.Context, db Runner, id int64) error
}

type Option[T any] func(repo *Repository[T])

// WithResolve makes every read resolve the named relations.
func WithResolve[T any](relations ...string) Option[T] {
	return func(repo *Repository[T]) { repo.resolve = append(repo.resolve, relations...) }
}

func WithHooks[T any](hooks Hooks[T]) Option[T] {
	return func(repo *Repository[T]) { repo.hooks = hooks }
}

// Repository is the record lifecycle of one entity kind. Each exported
// method opens its own session on the store.
type Repository[T any] struct {
	store    *Store
	table    *Table[T]
	resolve  []string
	hooks    Hooks[T]
	validate *validator.Validate
}

func NewRepository[T any](store *Store, table *Table[T], opts ...Option[T]) *Repository[T] {
	repo := &Repository[T]{
		store:    store,
		table:    table,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(repo)
	}

	return repo
}

func (repo *Repository[T]) Table() *Table[T] {
	return repo.table
}

// Insert stores t and returns it with the id the store assigned. t must not
// carry an id.
func (repo *Repository[T]) Insert(ctx context.Context, t T) (*T, error) {
	var inserted *T
	err := repo.store.Do(ctx, func(ctx context.Context, tx *sql.Tx) (err error) {
		inserted, err = repo.insert(ctx, tx, t)
		return err
	})
	if err != nil {
		return nil, err
	}

	return inserted, nil
}

func (repo *Repository[T]) SelectAll(ctx context.Context) ([]T, error) {
	var all []T
	err := repo.store.Do(ctx, func(ctx context.Context, tx *sql.Tx) (err error) {
		all, err = repo.query().Collect(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return all, nil
}

func (repo *Repository[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	var found *T
	err := repo.store.Do(ctx, func(ctx context.Context, tx *sql.Tx) (err error) {
		found, err = repo.find(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

// DeleteByID removes the row with the given id, or fails with ErrNotFound.
func (repo *Repository[T]) DeleteByID(ctx context.Context, id int64) error {
	return repo.store.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		exists, err := Exists(ctx, tx, repo.table.Name, id)
		if err != nil {
			return err
		}
		if !exists {
			return repo.notFound(id)
		}

		if repo.hooks.BeforeDelete != nil {
			if err := repo.hooks.BeforeDelete(ctx, tx, id); err != nil {
				return err
			}
		}

		res, err := squirrel.StatementBuilder.RunWith(tx).
			Delete(repo.table.Name).
			Where(squirrel.Eq{IDColumn: id}).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("delete from %s: %w", repo.table.Name, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return repo.notFound(id)
		}

		repo.store.log.DebugContext(ctx, "record deleted", "table", repo.table.Name, "id", id)
		return nil
	})
}

func (repo *Repository[T]) insert(ctx context.Context, db Runner, t T) (*T, error) {
	if err := repo.validate.Var(repo.table.ID(t), "isdefault"); err != nil {
		return nil, fmt.Errorf("%w: %s id is assigned by the store, got %d", ErrValidation, repo.table.Name, repo.table.ID(t))
	}
	if err := repo.check(ctx, db, t); err != nil {
		return nil, err
	}

	columns := repo.table.Columns()
	res, err := squirrel.StatementBuilder.RunWith(db).
		Insert(repo.table.Name).
		Columns(columns...).
		Values(repo.table.values(&t, columns)...).
		ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", repo.table.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", repo.table.Name, err)
	}
	repo.table.setID(&t, id)

	repo.store.log.DebugContext(ctx, "record inserted", "table", repo.table.Name, "id", id)
	return &t, nil
}

func (repo *Repository[T]) find(ctx context.Context, db Runner, id int64) (*T, error) {
	found, err := repo.query().Where(IDColumn, id).CollectOne(ctx, db)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.notFound(id)
	}
	if err != nil {
		return nil, err
	}

	return found, nil
}

// check validates t and runs the write hook.
func (repo *Repository[T]) check(ctx context.Context, db Runner, t T) error {
	if err := repo.validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrValidation, repo.table.Name, err)
	}
	if repo.hooks.BeforeWrite != nil {
		return repo.hooks.BeforeWrite(ctx, db, t)
	}
	return nil
}

func (repo *Repository[T]) query() Query[T] {
	return repo.table.Query(append([]string{"*"}, repo.resolve...)...)
}

func (repo *Repository[T]) notFound(id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, repo.table.Name, id)
}

// Exists reports whether table has a row with the given id.
func Exists(ctx context.Context, db Runner, table string, id int64) (bool, error) {
	var one int
	err := squirrel.StatementBuilder.RunWith(db).
		Select("1").
		From(table).
		Where(squirrel.Eq{IDColumn: id}).
		Limit(1).
		QueryRowContext(ctx).
		Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
