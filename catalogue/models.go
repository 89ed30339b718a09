package catalogue

type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required"`

	// Books is resolved from books.author_id, never stored.
	Books []Book `json:"books,omitempty"`
}

type Book struct {
	ID    int64  `json:"id"`
	Title string `json:"title" validate:"required"`

	// AuthorID is nil while the book has no author.
	AuthorID *int64  `json:"authorId,omitempty"`
	Author   *Author `json:"author,omitempty"`
}

type Student struct {
	ID          int64  `json:"id"`
	StudentName string `json:"studentName" validate:"required"`
}
