package library_test

import (
	"database/sql"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pollex.nl/library"
)

func TestBasicQueryUsage(t *testing.T) {
	// Arrange
	store := setupStore(t)
	seedCatalogue(t, store)

	t.Run("select fields", func(t *testing.T) {
		authors, err := collect(store, authorTable.Query("id"))
		require.NoError(t, err)

		// Assert
		assert.Len(t, authors, 2)
		for i := range 2 {
			assert.Empty(t, authors[i].Name)
			assert.NotEmpty(t, authors[i].ID)
		}
	})

	t.Run("select all by not providing fields", func(t *testing.T) {
		authors, err := collect(store, authorTable.Query())
		require.NoError(t, err)

		// Assert
		require.Len(t, authors, 2)
		assert.Equal(t, "Jeff", authors[0].Name)
		assert.Equal(t, "Madonna", authors[1].Name)
	})

	t.Run("unknown field is an error", func(t *testing.T) {
		_, err := collect(store, authorTable.Query("id", "age"))
		assert.ErrorIs(t, err, library.ErrNoSuchField)
		assert.ErrorIs(t, err, library.ErrValidation)
	})

	t.Run("nesting on a plain field is an error", func(t *testing.T) {
		_, err := collect(store, authorTable.Query("name.first"))
		assert.ErrorIs(t, err, library.ErrNoSuchRelation)
	})

	t.Run("nullable column scans into a nil pointer", func(t *testing.T) {
		seed(t, store, func(sq squirrel.StatementBuilderType) error {
			_, err := sq.Insert("books").Values(5, "Anonymous", nil).Exec()
			return err
		})

		book, err := collectOne(store, bookTable.Query().Where("id", 5))
		require.NoError(t, err)
		assert.Nil(t, book.AuthorID)
	})
}

func TestBasicQueryRelation(t *testing.T) {
	// Arrange
	store := setupStore(t)
	seedCatalogue(t, store)

	t.Run("relation all fields", func(t *testing.T) {
		authors, err := collect(store, authorTable.Query("id", "books"))
		require.NoError(t, err)

		require.Len(t, authors, 2)
		require.Len(t, authors[0].Books, 2)
		require.Len(t, authors[1].Books, 2)
		require.NotEmpty(t, authors[0].Books[0].Name)
		require.NotEmpty(t, authors[0].Books[1].Name)
		require.NotNil(t, authors[0].Books[0].AuthorID)
		require.NotNil(t, authors[0].Books[1].AuthorID)
	})

	t.Run("base and relation all fields", func(t *testing.T) {
		authors, err := collect(store, authorTable.Query("*", "books"))
		require.NoError(t, err)

		require.Len(t, authors, 2)
		assert.Equal(t, "Jeff", authors[0].Name)
		assert.Equal(t, []string{"Life of Jeff", "Cooking like Jeff"}, []string{authors[0].Books[0].Name, authors[0].Books[1].Name})
	})

	t.Run("nested relations with specific fields", func(t *testing.T) {
		authors, err := collect(store, authorTable.Query("id", "name", "books.id", "books.author_id", "books.comments.name", "books.comments.book_id"))
		require.NoError(t, err)

		// Assert
		require.Len(t, authors, 2)
		require.Len(t, authors[0].Books, 2)
		require.Len(t, authors[1].Books, 2)
		require.Len(t, authors[0].Books[0].Comments, 1)
		require.Len(t, authors[0].Books[1].Comments, 1)
		require.Len(t, authors[1].Books[0].Comments, 1)
		require.Len(t, authors[1].Books[1].Comments, 1)

		require.Empty(t, authors[0].Books[0].Name)
		require.Empty(t, authors[0].Books[0].Comments[0].ID)
	})

	t.Run("backref", func(t *testing.T) {
		books, err := collect(store, bookTable.Query("*", "comments", "comments.book"))
		require.NoError(t, err)

		require.Len(t, books, 4)
		for _, book := range books {
			assert.Equal(t, book.ID, book.Comments[0].Book.ID)
		}
	})

	t.Run("automatically select fields required for relation", func(t *testing.T) {
		authors, err := collect(store, authorTable.Query("books.name"))
		require.NoError(t, err)

		// Assert
		require.Len(t, authors, 2)
		require.Len(t, authors[0].Books, 2)
		require.Len(t, authors[1].Books, 2)

		require.NotEmpty(t, authors[0].ID)
		require.NotNil(t, authors[0].Books[0].AuthorID)
		require.NotEmpty(t, authors[0].Books[0].Name)
		require.Empty(t, authors[0].Books[0].ID)
	})

	t.Run("unknown nested field is an error", func(t *testing.T) {
		_, err := collect(store, authorTable.Query("books.isbn"))
		assert.ErrorIs(t, err, library.ErrNoSuchField)
	})

	t.Run("CollectOne should return one item", func(t *testing.T) {
		author, err := collectOne(store, authorTable.Query().Where("id", 2))
		require.NoError(t, err)
		assert.NotNil(t, author)
		assert.NotEmpty(t, author.ID)
		assert.NotEmpty(t, author.Name)
		assert.Empty(t, author.Books)
	})

	t.Run("CollectOne should error on many returns", func(t *testing.T) {
		author, err := collectOne(store, authorTable.Query())
		assert.ErrorIs(t, err, library.ErrTooManyResults)
		assert.Nil(t, author)
	})

	t.Run("CollectOne should error on no returns", func(t *testing.T) {
		author, err := collectOne(store, authorTable.Query().
			ModifyQuery(func(q library.Q, table string) library.Q { return q.Where("false") }))
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, author)
	})
}
