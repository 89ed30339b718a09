package catalogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"pollex.nl/library"
)

// DeletePolicy decides what happens to an author's books when the author is
// deleted.
type DeletePolicy string

const (
	// Restrict refuses to delete an author while books reference them.
	Restrict DeletePolicy = "restrict"
	// Cascade deletes the author's books together with the author.
	Cascade DeletePolicy = "cascade"
	// Nullify keeps the books and clears their author.
	Nullify DeletePolicy = "nullify"
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch policy := DeletePolicy(strings.ToLower(strings.TrimSpace(s))); policy {
	case "":
		return Restrict, nil
	case Restrict, Cascade, Nullify:
		return policy, nil
	default:
		return "", fmt.Errorf("%w: unknown author delete policy %q", library.ErrValidation, s)
	}
}

// beforeAuthorDelete applies the policy to the books of author id inside the
// deleting session.
func (policy DeletePolicy) beforeAuthorDelete(ctx context.Context, db library.Runner, id int64) error {
	sq := squirrel.StatementBuilder.RunWith(db)
	byAuthor := squirrel.Eq{"author_id": id}

	switch policy {
	case Cascade:
		_, err := sq.Delete(BookTable.Name).Where(byAuthor).ExecContext(ctx)
		return err
	case Nullify:
		_, err := sq.Update(BookTable.Name).Set("author_id", nil).Where(byAuthor).ExecContext(ctx)
		return err
	default:
		var count int
		if err := sq.Select("COUNT(*)").From(BookTable.Name).Where(byAuthor).QueryRowContext(ctx).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: author %d has %d book(s)", library.ErrReferenced, id, count)
		}
		return nil
	}
}
