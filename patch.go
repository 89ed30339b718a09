package library

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/samber/lo"
)

// Patch is a partial update: the columns named in Fields are overwritten
// with the values in Value, every other column keeps its stored value. A
// masked column with a zero value is written as zero (or NULL), so a patch can
// clear a field on purpose.
type Patch[T any] struct {
	ID     int64
	Value  T
	Fields []string
}

// Patch builds a patch for the row identified by value's id that overwrites
// exactly the given columns.
func (table *Table[T]) Patch(value T, fields ...string) Patch[T] {
	return Patch[T]{ID: table.ID(value), Value: value, Fields: fields}
}

// Sparse builds a patch from the fields of value that are not their zero
// value. Zero stands for "not supplied" here, so a sparse patch can never
// clear a field; use Patch with an explicit mask for that.
func (table *Table[T]) Sparse(value T) Patch[T] {
	fields := lo.Filter(table.Columns(), func(col string, _ int) bool {
		return table.Fields[col].IsSet(value)
	})

	return table.Patch(value, fields...)
}

// Full builds a patch that overwrites every column.
func (table *Table[T]) Full(value T) Patch[T] {
	return table.Patch(value, table.Columns()...)
}

// Merge copies the masked fields of p onto dst. The identity column can not
// be patched.
func (table *Table[T]) Merge(dst *T, p Patch[T]) error {
	for _, col := range p.Fields {
		if col == IDColumn {
			return fmt.Errorf("%w: %s.%s can not be patched", ErrValidation, table.Name, col)
		}
		field, ok := table.Fields[col]
		if !ok {
			return fmt.Errorf("%w: %s.%s", ErrNoSuchField, table.Name, col)
		}
		field.Copy(dst, p.Value)
	}

	return nil
}

// Patch applies p to the stored row and returns the merged record.
func (repo *Repository[T]) Patch(ctx context.Context, p Patch[T]) (*T, error) {
	var patched *T
	err := repo.store.Do(ctx, func(ctx context.Context, tx *sql.Tx) (err error) {
		patched, err = repo.patch(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	return patched, nil
}

// Update overwrites every column of the row identified by t's id.
func (repo *Repository[T]) Update(ctx context.Context, t T) (*T, error) {
	return repo.Patch(ctx, repo.table.Full(t))
}

func (repo *Repository[T]) patch(ctx context.Context, db Runner, p Patch[T]) (*T, error) {
	if err := repo.validate.Var(p.ID, "gt=0"); err != nil {
		return nil, fmt.Errorf("%w: %s patch needs an id, got %d", ErrValidation, repo.table.Name, p.ID)
	}

	stored, err := repo.find(ctx, db, p.ID)
	if err != nil {
		return nil, err
	}

	merged := *stored
	if err := repo.table.Merge(&merged, p); err != nil {
		return nil, err
	}

	fields := lo.Uniq(p.Fields)
	if len(fields) == 0 {
		return stored, nil
	}

	if err := repo.check(ctx, db, merged); err != nil {
		return nil, err
	}

	set := lo.SliceToMap(fields, func(col string) (string, any) {
		return col, repo.table.Fields[col].Value(&merged)
	})
	_, err = squirrel.StatementBuilder.RunWith(db).
		Update(repo.table.Name).
		SetMap(set).
		Where(squirrel.Eq{IDColumn: p.ID}).
		ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", repo.table.Name, err)
	}

	repo.store.log.DebugContext(ctx, "record patched", "table", repo.table.Name, "id", p.ID, "fields", fields)
	return &merged, nil
}
