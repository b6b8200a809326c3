package api

import (
	"context"

	"bookservice/pkg/models"

	"github.com/stretchr/testify/mock"
)

type mockLibrary struct {
	mock.Mock
}

func (m *mockLibrary) GetBooks(ctx context.Context) ([]models.Book, error) {
	args := m.Called(ctx)
	books, _ := args.Get(0).([]models.Book)
	return books, args.Error(1)
}

func (m *mockLibrary) GetBookByID(ctx context.Context, id int) (*models.Book, error) {
	args := m.Called(ctx, id)
	book, _ := args.Get(0).(*models.Book)
	return book, args.Error(1)
}

func (m *mockLibrary) AddBook(ctx context.Context, book models.Book) (*models.Book, error) {
	args := m.Called(ctx, book)
	out, _ := args.Get(0).(*models.Book)
	return out, args.Error(1)
}

func (m *mockLibrary) SetBookByID(ctx context.Context, book models.Book, id int) (*models.Book, error) {
	args := m.Called(ctx, book, id)
	out, _ := args.Get(0).(*models.Book)
	return out, args.Error(1)
}

func (m *mockLibrary) RemoveBook(ctx context.Context, id int) (*models.Book, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Book)
	return out, args.Error(1)
}

func (m *mockLibrary) GetAuthors(ctx context.Context) ([]models.Author, error) {
	args := m.Called(ctx)
	authors, _ := args.Get(0).([]models.Author)
	return authors, args.Error(1)
}

func (m *mockLibrary) GetAuthorByID(ctx context.Context, id int) (*models.Author, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Author)
	return out, args.Error(1)
}

func (m *mockLibrary) AddAuthor(ctx context.Context, author models.Author) (*models.Author, error) {
	args := m.Called(ctx, author)
	out, _ := args.Get(0).(*models.Author)
	return out, args.Error(1)
}

func (m *mockLibrary) SetAuthorByID(ctx context.Context, author models.Author, id int) (*models.Author, error) {
	args := m.Called(ctx, author, id)
	out, _ := args.Get(0).(*models.Author)
	return out, args.Error(1)
}

func (m *mockLibrary) RemoveAuthor(ctx context.Context, id int) (*models.Author, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Author)
	return out, args.Error(1)
}

func (m *mockLibrary) GetGenres(ctx context.Context) ([]models.Genre, error) {
	args := m.Called(ctx)
	genres, _ := args.Get(0).([]models.Genre)
	return genres, args.Error(1)
}

func (m *mockLibrary) GetGenreByID(ctx context.Context, id int) (*models.Genre, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Genre)
	return out, args.Error(1)
}

func (m *mockLibrary) AddGenre(ctx context.Context, genre models.Genre) (*models.Genre, error) {
	args := m.Called(ctx, genre)
	out, _ := args.Get(0).(*models.Genre)
	return out, args.Error(1)
}

func (m *mockLibrary) SetGenreByID(ctx context.Context, genre models.Genre, id int) (*models.Genre, error) {
	args := m.Called(ctx, genre, id)
	out, _ := args.Get(0).(*models.Genre)
	return out, args.Error(1)
}

func (m *mockLibrary) RemoveGenre(ctx context.Context, id int) (*models.Genre, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Genre)
	return out, args.Error(1)
}

func (m *mockLibrary) UpdateAuthor(ctx context.Context, authorID, bookID int) error {
	return m.Called(ctx, authorID, bookID).Error(0)
}

func (m *mockLibrary) UpdateGenre(ctx context.Context, genreID, bookID int) error {
	return m.Called(ctx, genreID, bookID).Error(0)
}

func (m *mockLibrary) RemoveBookAuthors(ctx context.Context, bookID int) error {
	return m.Called(ctx, bookID).Error(0)
}

func (m *mockLibrary) RemoveBookGenres(ctx context.Context, bookID int) error {
	return m.Called(ctx, bookID).Error(0)
}

func (m *mockLibrary) SearchByAuthor(ctx context.Context, authorID int) ([]models.Book, error) {
	args := m.Called(ctx, authorID)
	books, _ := args.Get(0).([]models.Book)
	return books, args.Error(1)
}

func (m *mockLibrary) SearchByGenre(ctx context.Context, genreID int) ([]models.Book, error) {
	args := m.Called(ctx, genreID)
	books, _ := args.Get(0).([]models.Book)
	return books, args.Error(1)
}

func (m *mockLibrary) GetBookAuthors(ctx context.Context) ([]models.BookAuthor, error) {
	args := m.Called(ctx)
	links, _ := args.Get(0).([]models.BookAuthor)
	return links, args.Error(1)
}

func (m *mockLibrary) GetBookGenres(ctx context.Context) ([]models.BookGenre, error) {
	args := m.Called(ctx)
	links, _ := args.Get(0).([]models.BookGenre)
	return links, args.Error(1)
}
