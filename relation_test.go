package library_test

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pollex.nl/library"
)

func TestBindMany(t *testing.T) {
	authors := []Author{{ID: 1}, {ID: 2}, {ID: 3}}
	books := []Book{
		{ID: 10, AuthorID: lo.ToPtr[int64](1)},
		{ID: 11, AuthorID: lo.ToPtr[int64](2)},
		{ID: 12, AuthorID: lo.ToPtr[int64](1)},
		{ID: 13},
	}

	bind := library.BindMany(authorBooks, func(author *Author, books []Book) { author.Books = books })
	bind(authors, books)

	assert.Equal(t, []int64{10, 12}, lo.Map(authors[0].Books, func(b Book, _ int) int64 { return b.ID }))
	assert.Equal(t, []int64{11}, lo.Map(authors[1].Books, func(b Book, _ int) int64 { return b.ID }))
	assert.Empty(t, authors[2].Books)
}

func TestBindOne(t *testing.T) {
	books := []Book{{ID: 1, AuthorID: lo.ToPtr[int64](2)}, {ID: 2, AuthorID: lo.ToPtr[int64](9)}, {ID: 3}}
	authors := []Author{{ID: 2, Name: "two"}, {ID: 3, Name: "three"}}

	link := library.Link[Book, Author]{
		ParentKey: "author_id",
		ChildKey:  library.IDColumn,
		Parent:    authorBooks.Child,
		Child:     authorBooks.Parent,
	}
	bind := library.BindOne(link, func(b *Book, a Author) { b.Author = &a })
	bind(books, authors)

	require.NotNil(t, books[0].Author)
	assert.Equal(t, "two", books[0].Author.Name)
	assert.Nil(t, books[1].Author)
	assert.Nil(t, books[2].Author)
}

func TestLinkScope(t *testing.T) {
	mod := authorBooks.Scope([]Author{{ID: 1}, {ID: 2}, {ID: 1}})

	queryString, args := mod(squirrel.Select("*").From("books"), "books").MustSql()
	assert.Equal(t, "SELECT * FROM books WHERE books.author_id IN (?,?)", queryString)
	assert.Equal(t, []any{int64(1), int64(2)}, args)
}

func TestLinkScopeWithoutKeys(t *testing.T) {
	link := library.Link[Book, Author]{
		ParentKey: "author_id",
		ChildKey:  library.IDColumn,
		Parent:    authorBooks.Child,
		Child:     authorBooks.Parent,
	}
	mod := link.Scope([]Book{{ID: 1}, {ID: 2}})

	queryString, args := mod(squirrel.Select("*").From("authors"), "authors").MustSql()
	assert.Equal(t, "SELECT * FROM authors WHERE (1=0)", queryString)
	assert.Empty(t, args)
}

func TestHasOneResolvesParent(t *testing.T) {
	store := setupStore(t)
	seedCatalogue(t, store)

	comments, err := collect(store, commentTable.Query("name", "book.name"))
	require.NoError(t, err)

	require.Len(t, comments, 4)
	for _, comment := range comments {
		require.NotNil(t, comment.Book)
		assert.Equal(t, comment.BookID, comment.Book.ID)
		assert.NotEmpty(t, comment.Book.Name)
	}
}
