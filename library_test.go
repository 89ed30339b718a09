package library_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"pollex.nl/library"
)

type Author struct {
	ID    int64
	Name  string `validate:"required"`
	Books []Book
}

type Book struct {
	ID       int64
	Name     string `validate:"required"`
	AuthorID *int64
	Comments []Comment
	Author   *Author
}

type Comment struct {
	ID     int64
	Name   string
	BookID int64
	Book   *Book
}

var authorBooks = library.Link[Author, Book]{
	ParentKey: library.IDColumn,
	ChildKey:  "author_id",
	Parent:    func(a Author) int64 { return a.ID },
	Child:     func(b Book) int64 { return lo.FromPtr(b.AuthorID) },
}

var (
	commentTable = library.New[Comment]("book_comments", func(t *Comment) *int64 { return &t.ID }).
		AddColumn(library.Column("name", "TEXT NOT NULL", func(t *Comment) *string { return &t.Name })).
		AddColumn(library.Column("book_id", "INTEGER REFERENCES books(id)", func(t *Comment) *int64 { return &t.BookID })).
		ModifyQuery(library.OrderBy(library.IDColumn))

	//
	bookTable = library.New[Book]("books", func(t *Book) *int64 { return &t.ID }).
		AddColumn(library.Column("name", "TEXT NOT NULL", func(t *Book) *string { return &t.Name })).
		AddColumn(library.Column("author_id", "INTEGER REFERENCES authors(id)", func(t *Book) **int64 { return &t.AuthorID })).
		ModifyQuery(library.OrderBy(library.IDColumn)).
		AddRelation("comments",
			library.HasMany(commentTable,
				library.Link[Book, Comment]{
					ParentKey: library.IDColumn,
					ChildKey:  "book_id",
					Parent:    func(book Book) int64 { return book.ID },
					Child:     func(comment Comment) int64 { return comment.BookID },
				},
				func(book *Book, comments []Comment) { book.Comments = comments },
			),
		)

	//
	authorTable = library.New[Author]("authors", func(t *Author) *int64 { return &t.ID }).
		AddColumn(library.Column("name", "TEXT NOT NULL", func(t *Author) *string { return &t.Name })).
		ModifyQuery(library.OrderBy(library.IDColumn)).
		AddRelation(
			"books",
			library.HasMany(bookTable, authorBooks,
				func(author *Author, books []Book) { author.Books = books },
			),
		)
)

func init() {
	commentTable.AddRelation(
		"book",
		library.HasOne(bookTable,
			library.Link[Comment, Book]{
				ParentKey: "book_id",
				ChildKey:  library.IDColumn,
				Parent:    func(c Comment) int64 { return c.BookID },
				Child:     func(b Book) int64 { return b.ID },
			},
			func(c *Comment, b Book) { c.Book = &b },
		))
}

func setupStore(t testing.TB) *library.Store {
	t.Helper()

	store, err := library.Open(
		library.StoreConfig{Path: ":memory:"},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, library.Rebuild(context.Background(), store, authorTable, bookTable, commentTable))

	return store
}

// seed runs fn in one session with a statement builder bound to it.
func seed(t testing.TB, store *library.Store, fn func(sq squirrel.StatementBuilderType) error) {
	t.Helper()

	err := store.Do(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		return fn(squirrel.StatementBuilder.RunWith(tx))
	})
	require.NoError(t, err)
}

func seedCatalogue(t testing.TB, store *library.Store) {
	t.Helper()

	seed(t, store, func(sq squirrel.StatementBuilderType) error {
		if _, err := sq.Insert("authors").
			Values(1, "Jeff").
			Values(2, "Madonna").Exec(); err != nil {
			return err
		}
		if _, err := sq.Insert("books").
			Values(1, "Life of Jeff", 1).
			Values(2, "Cooking like Jeff", 1).
			Values(3, "Sing baby sing", 2).
			Values(4, "the singeth hath endeth", 2).Exec(); err != nil {
			return err
		}
		_, err := sq.Insert("book_comments").
			Values(1, "Great book!", 1).
			Values(2, "Very insightful", 2).
			Values(3, "A masterpiece", 3).
			Values(4, "Could be better", 4).Exec()
		return err
	})
}

func collect[T any](store *library.Store, query library.Query[T]) ([]T, error) {
	var out []T
	err := store.Do(context.Background(), func(ctx context.Context, tx *sql.Tx) (err error) {
		out, err = query.Collect(ctx, tx)
		return err
	})
	return out, err
}

func collectOne[T any](store *library.Store, query library.Query[T]) (*T, error) {
	var out *T
	err := store.Do(context.Background(), func(ctx context.Context, tx *sql.Tx) (err error) {
		out, err = query.CollectOne(ctx, tx)
		return err
	})
	return out, err
}
