package catalogue

import (
	"github.com/samber/lo"
	"pollex.nl/library"
)

// writtenBy links an author to their books through books.author_id.
var writtenBy = library.Link[Author, Book]{
	ParentKey: library.IDColumn,
	ChildKey:  "author_id",
	Parent:    func(a Author) int64 { return a.ID },
	Child:     func(b Book) int64 { return lo.FromPtr(b.AuthorID) },
}

var (
	BookTable = library.New[Book]("books", func(t *Book) *int64 { return &t.ID }).
		AddColumn(library.Column("title", "TEXT NOT NULL", func(t *Book) *string { return &t.Title })).
		AddColumn(library.Column("author_id", "INTEGER NULL REFERENCES authors(id)", func(t *Book) **int64 { return &t.AuthorID })).
		ModifyQuery(library.OrderBy(library.IDColumn))

	//
	AuthorTable = library.New[Author]("authors", func(t *Author) *int64 { return &t.ID }).
		AddColumn(library.Column("name", "TEXT NOT NULL", func(t *Author) *string { return &t.Name })).
		ModifyQuery(library.OrderBy(library.IDColumn)).
		AddRelation("books",
			library.HasMany(BookTable, writtenBy,
				func(author *Author, books []Book) { author.Books = books },
			),
		)

	//
	StudentTable = library.New[Student]("students", func(t *Student) *int64 { return &t.ID }).
		AddColumn(library.Column("student_name", "TEXT NOT NULL", func(t *Student) *string { return &t.StudentName })).
		ModifyQuery(library.OrderBy(library.IDColumn))
)

func init() {
	BookTable.AddRelation(
		"author",
		library.HasOne(AuthorTable,
			library.Link[Book, Author]{
				ParentKey: writtenBy.ChildKey,
				ChildKey:  writtenBy.ParentKey,
				Parent:    writtenBy.Child,
				Child:     writtenBy.Parent,
			},
			func(b *Book, a Author) { b.Author = &a },
		))
}

// Tables lists every table in creation order.
func Tables() []library.Definition {
	return []library.Definition{AuthorTable, BookTable, StudentTable}
}
