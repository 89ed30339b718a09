package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Collect runs q and scans every row into a new T. scan hands out the
// destinations for one row and an action to run once they are filled.
func Collect[T any](ctx context.Context, q Q, scan RowScan[T]) (collection []T, err error) {
	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	defer func() {
		err = errors.Join(err, closeRows(rows))
	}()

	for rows.Next() {
		var t T
		dest, after := scan(&t)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		after()
		collection = append(collection, t)
	}

	return collection, rows.Err()
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close rows: %w", err)
	}
	return nil
}
