package library

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/samber/lo"
)

type (
	Resolve[M any]       func(ctx context.Context, db Runner, parents []M, fields []string) error
	FieldCheck           func(fields string) error
	Binder[M, N any]     func(parents []M, children []N)
	QueryModifier[M any] func(query Query[M]) Query[M]
)

// Relation is a set of child rows that can be loaded for a batch of parents
// with one extra select.
type Relation[M any] struct {
	Resolve  Resolve[M]
	Check    FieldCheck
	QueryMod QueryModifier[M]
}

// Link joins parents to children on one key column each, e.g. authors.id to
// books.author_id for an author's books, or books.author_id to authors.id for
// a book's author. A zero key means "no link".
type Link[M, N any] struct {
	ParentKey string
	ChildKey  string
	Parent    func(parent M) int64
	Child     func(child N) int64
}

// Scope restricts a child query to the children of parents.
func (link Link[M, N]) Scope(parents []M) QueryMod {
	keys := lo.Without(lo.Uniq(lo.Map(parents, func(p M, _ int) int64 { return link.Parent(p) })), 0)

	return func(q Q, table string) Q {
		return q.Where(squirrel.Eq{TableCol(table, link.ChildKey): keys})
	}
}

// HasMany resolves every child whose key matches the parent's.
func HasMany[M, N any](child *Table[N], link Link[M, N], set func(parent *M, children []N)) Relation[M] {
	return relate(child, link, BindMany(link, set))
}

// HasOne resolves the single child whose key matches the parent's. Parents
// without a match are left untouched.
func HasOne[M, N any](child *Table[N], link Link[M, N], set func(parent *M, child N)) Relation[M] {
	return relate(child, link, BindOne(link, set))
}

func relate[M, N any](child *Table[N], link Link[M, N], bind Binder[M, N]) Relation[M] {
	return Relation[M]{
		Check: child.Check,
		Resolve: func(ctx context.Context, db Runner, parents []M, fields []string) error {
			children, err := child.Query(append([]string{link.ChildKey}, fields...)...).
				ModifyQuery(link.Scope(parents)).
				Collect(ctx, db)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", child.Name, err)
			}

			bind(parents, children)
			return nil
		},
		QueryMod: func(query Query[M]) Query[M] {
			return query.Select(link.ParentKey)
		},
	}
}

func BindMany[M, N any](link Link[M, N], set func(*M, []N)) Binder[M, N] {
	return func(parents []M, children []N) {
		byKey := lo.GroupBy(children, link.Child)
		for ix := range parents {
			set(&parents[ix], byKey[link.Parent(parents[ix])])
		}
	}
}

func BindOne[M, N any](link Link[M, N], set func(*M, N)) Binder[M, N] {
	return func(parents []M, children []N) {
		byKey := lo.KeyBy(children, link.Child)
		for ix := range parents {
			if child, ok := byKey[link.Parent(parents[ix])]; ok {
				set(&parents[ix], child)
			}
		}
	}
}
