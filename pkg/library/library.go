// Package library holds the catalog repository: books, authors, genres and
// the association records linking them.
package library

import (
	"context"

	"bookservice/pkg/models"
)

// Library is the repository contract shared by the in-memory and the
// relational implementations.
type Library interface {
	GetBooks(ctx context.Context) ([]models.Book, error)
	GetBookByID(ctx context.Context, id int) (*models.Book, error)
	AddBook(ctx context.Context, book models.Book) (*models.Book, error)
	SetBookByID(ctx context.Context, book models.Book, id int) (*models.Book, error)
	RemoveBook(ctx context.Context, id int) (*models.Book, error)

	GetAuthors(ctx context.Context) ([]models.Author, error)
	GetAuthorByID(ctx context.Context, id int) (*models.Author, error)
	AddAuthor(ctx context.Context, author models.Author) (*models.Author, error)
	SetAuthorByID(ctx context.Context, author models.Author, id int) (*models.Author, error)
	RemoveAuthor(ctx context.Context, id int) (*models.Author, error)

	GetGenres(ctx context.Context) ([]models.Genre, error)
	GetGenreByID(ctx context.Context, id int) (*models.Genre, error)
	AddGenre(ctx context.Context, genre models.Genre) (*models.Genre, error)
	SetGenreByID(ctx context.Context, genre models.Genre, id int) (*models.Genre, error)
	RemoveGenre(ctx context.Context, id int) (*models.Genre, error)

	// UpdateAuthor attaches the author to the book. Attaching an existing pair is a no-op.
	UpdateAuthor(ctx context.Context, authorID, bookID int) error
	UpdateGenre(ctx context.Context, genreID, bookID int) error
	RemoveBookAuthors(ctx context.Context, bookID int) error
	RemoveBookGenres(ctx context.Context, bookID int) error

	SearchByAuthor(ctx context.Context, authorID int) ([]models.Book, error)
	SearchByGenre(ctx context.Context, genreID int) ([]models.Book, error)

	GetBookAuthors(ctx context.Context) ([]models.BookAuthor, error)
	GetBookGenres(ctx context.Context) ([]models.BookGenre, error)
}
