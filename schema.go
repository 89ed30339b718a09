package library

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samber/lo"
)

// Definition is what Rebuild needs from a table.
type Definition interface {
	TableName() string
	CreateStatement() string
	DropStatement() string
}

// Rebuild drops every table and creates it again, empty, in one session.
// Tables are created in the given order and dropped in reverse, so a table
// must come after the tables it references. This is a reset, not a
// migration: all rows are lost.
func Rebuild(ctx context.Context, store *Store, tables ...Definition) error {
	err := store.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, table := range lo.Reverse(append([]Definition{}, tables...)) {
			if _, err := tx.ExecContext(ctx, table.DropStatement()); err != nil {
				return fmt.Errorf("drop %s: %w", table.TableName(), err)
			}
		}

		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, table.CreateStatement()); err != nil {
				return fmt.Errorf("create %s: %w", table.TableName(), err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	store.log.InfoContext(ctx, "schema rebuilt", "tables", lo.Map(tables, func(t Definition, _ int) string { return t.TableName() }))
	return nil
}
