// Package console is the operator menu on top of the catalogue.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"pollex.nl/library/catalogue"
)

const (
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
)

var errInputClosed = errors.New("input closed")

type option struct {
	key    string
	label  string
	action func(ctx context.Context) error
}

type Console struct {
	cat     *catalogue.Catalogue
	in      *bufio.Scanner
	out     io.Writer
	log     *slog.Logger
	options []option
}

func New(cat *catalogue.Catalogue, in io.Reader, out io.Writer, log *slog.Logger) *Console {
	c := &Console{
		cat: cat,
		in:  bufio.NewScanner(in),
		out: out,
		log: log,
	}
	c.options = []option{
		{"1", "List all books", c.listBooks},
		{"2", "Create a new book", c.insertBook},
		{"3", "Remove a book", c.removeBook},
		{"4", "List all authors", c.listAuthors},
		{"5", "Create a new author", c.insertAuthor},
		{"6", "Delete an author", c.deleteAuthor},
		{"7", "Rebuild DB (useful in case of schema changes)", c.rebuild},
		{"8", "Create a new student", c.insertStudent},
		{"9", "List all students", c.listStudents},
		{"10", "Rename a book", c.renameBook},
		{"11", "Search books by author name", c.searchBooks},
	}

	return c
}

// Run shows the menu until the operator quits or the input ends. A failed
// operation is reported and the menu shown again.
func (c *Console) Run(ctx context.Context) error {
	for {
		c.presentOptions()

		choice, err := c.readLine()
		if errors.Is(err, errInputClosed) {
			return c.in.Err()
		}
		if choice == "q" {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := c.pick(ctx, choice); err != nil {
			if errors.Is(err, errInputClosed) {
				return c.in.Err()
			}
			c.report(err)
		}
		fmt.Fprintln(c.out)
	}
}

func (c *Console) presentOptions() {
	for _, opt := range c.options {
		fmt.Fprintf(c.out, "%s: %s\n", opt.key, opt.label)
	}
	fmt.Fprintln(c.out, "q: Quit")
	fmt.Fprintln(c.out)
}

func (c *Console) pick(ctx context.Context, choice string) error {
	for _, opt := range c.options {
		if opt.key == choice {
			return opt.action(ctx)
		}
	}

	return fmt.Errorf("unknown option %q", choice)
}

func (c *Console) report(err error) {
	c.log.Warn("operation failed", "error", err.Error())
	fmt.Fprintf(c.out, "%sError: %v%s\n", ErrorColor, err, ResetColor)
}

func (c *Console) success(msg string) {
	fmt.Fprintf(c.out, "%s%s%s\n", SuccessColor, msg, ResetColor)
}

// =================
// Input
// =================

func (c *Console) readLine() (string, error) {
	if !c.in.Scan() {
		return "", errInputClosed
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) prompt(question string) (string, error) {
	if question != "" {
		fmt.Fprintln(c.out, question)
	}
	return c.readLine()
}

func (c *Console) promptID(question string) (int64, error) {
	answer, err := c.prompt(question)
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(answer, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", answer)
	}
	return id, nil
}

// =================
// Options
// =================

func (c *Console) listBooks(ctx context.Context) error {
	books, err := c.cat.Books.SelectAll(ctx)
	if err != nil {
		return err
	}
	for _, book := range books {
		fmt.Fprintf(c.out, "Book number %d: %s\n", book.ID, book.Title)
	}
	return nil
}

func (c *Console) insertBook(ctx context.Context) error {
	title, err := c.prompt("Book title:")
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, "ID of book author? (empty for none)")
	if err := c.listAuthors(ctx); err != nil {
		return err
	}
	answer, err := c.readLine()
	if err != nil {
		return err
	}

	book := catalogue.Book{Title: title}
	if answer != "" {
		authorID, err := strconv.ParseInt(answer, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", answer)
		}
		book.AuthorID = &authorID
	}

	if _, err := c.cat.Books.Insert(ctx, book); err != nil {
		return err
	}
	c.success("Insertion complete")
	return nil
}

func (c *Console) removeBook(ctx context.Context) error {
	fmt.Fprintln(c.out, "Write book ID to remove:")
	if err := c.listBooks(ctx); err != nil {
		return err
	}
	id, err := c.promptID("")
	if err != nil {
		return err
	}

	if err := c.cat.Books.DeleteByID(ctx, id); err != nil {
		return err
	}
	c.success("Book removed")
	return nil
}

func (c *Console) renameBook(ctx context.Context) error {
	id, err := c.promptID("ID of book to rename?")
	if err != nil {
		return err
	}
	title, err := c.prompt("New title:")
	if err != nil {
		return err
	}

	patch := catalogue.BookTable.Patch(catalogue.Book{ID: id, Title: title}, "title")
	book, err := c.cat.Books.Patch(ctx, patch)
	if err != nil {
		return err
	}
	c.success(fmt.Sprintf("Book %d renamed to %s", book.ID, book.Title))
	return nil
}

func (c *Console) searchBooks(ctx context.Context) error {
	pattern, err := c.prompt("Part of the author's name:")
	if err != nil {
		return err
	}

	books, err := c.cat.BooksByAuthorName(ctx, pattern)
	if err != nil {
		return err
	}
	for _, book := range books {
		if book.Author == nil {
			continue
		}
		fmt.Fprintf(c.out, "Book number %d: %s by %s\n", book.ID, book.Title, book.Author.Name)
	}
	return nil
}

func (c *Console) listAuthors(ctx context.Context) error {
	authors, err := c.cat.Authors.SelectAll(ctx)
	if err != nil {
		return err
	}
	for _, author := range authors {
		fmt.Fprintf(c.out, "Author number %d: %s (%d books)\n", author.ID, author.Name, len(author.Books))
	}
	return nil
}

func (c *Console) insertAuthor(ctx context.Context) error {
	name, err := c.prompt("Name of author?")
	if err != nil {
		return err
	}

	if _, err := c.cat.Authors.Insert(ctx, catalogue.Author{Name: name}); err != nil {
		return err
	}
	c.success("Insertion complete")
	return nil
}

func (c *Console) deleteAuthor(ctx context.Context) error {
	fmt.Fprintln(c.out, "ID of author to delete?")
	if err := c.listAuthors(ctx); err != nil {
		return err
	}
	id, err := c.promptID("")
	if err != nil {
		return err
	}

	if err := c.cat.Authors.DeleteByID(ctx, id); err != nil {
		return err
	}
	c.success("Deletion complete")
	return nil
}

func (c *Console) rebuild(ctx context.Context) error {
	if err := c.cat.Rebuild(ctx); err != nil {
		return err
	}
	c.success("DB rebuilt")
	return nil
}

func (c *Console) insertStudent(ctx context.Context) error {
	name, err := c.prompt("Student name:")
	if err != nil {
		return err
	}

	if _, err := c.cat.Students.Insert(ctx, catalogue.Student{StudentName: name}); err != nil {
		return err
	}
	c.success("Insertion complete")
	return nil
}

func (c *Console) listStudents(ctx context.Context) error {
	students, err := c.cat.Students.SelectAll(ctx)
	if err != nil {
		return err
	}
	for _, student := range students {
		fmt.Fprintf(c.out, "Student number %d: %s\n", student.ID, student.StudentName)
	}
	return nil
}
