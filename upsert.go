package library

import (
	"context"
	"database/sql"
	"errors"
)

// Upsert patches the row with t's id when it exists and inserts t otherwise.
// The existence check and the write share one session.
//
// On the insert path the id carried by t is dropped and the store assigns a
// fresh one, so callers must read the id from the returned record rather than
// rely on the one they supplied. On the patch path t is applied sparsely:
// zero fields keep their stored value.
func (repo *Repository[T]) Upsert(ctx context.Context, t T) (*T, error) {
	var upserted *T
	err := repo.store.Do(ctx, func(ctx context.Context, tx *sql.Tx) (err error) {
		upserted, err = repo.upsert(ctx, tx, t)
		return err
	})
	if err != nil {
		return nil, err
	}

	return upserted, nil
}

func (repo *Repository[T]) upsert(ctx context.Context, db Runner, t T) (*T, error) {
	id := repo.table.ID(t)
	if id > 0 {
		_, err := repo.find(ctx, db, id)
		switch {
		case err == nil:
			return repo.patch(ctx, db, repo.table.Sparse(t))
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}

	repo.table.setID(&t, 0)
	return repo.insert(ctx, db, t)
}
