package api

import "bookservice/pkg/models"

// BookRequest is the PUT /books/:id body. The path id wins over any id in the body.
type BookRequest struct {
	Name    string `json:"name" binding:"required,min=2"`
	Authors []int  `json:"authors" binding:"omitempty,dive,gt=0"`
	Genres  []int  `json:"genres" binding:"omitempty,dive,gt=0"`
}

type CreateBookRequest struct {
	ID int `json:"id" binding:"required,gt=0"`
	BookRequest
}

type AuthorRequest struct {
	Name    string `json:"name" binding:"required,min=2"`
	Surname string `json:"surname" binding:"required,min=2"`
}

type CreateAuthorRequest struct {
	ID int `json:"id" binding:"required,gt=0"`
	AuthorRequest
}

type GenreRequest struct {
	Name string `json:"name" binding:"required,min=4"`
}

type CreateGenreRequest struct {
	ID int `json:"id" binding:"required,gt=0"`
	GenreRequest
}

type BookResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Authors []int  `json:"authors"`
	Genres  []int  `json:"genres"`
}

type AuthorResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

type GenreResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type BookAuthorResponse struct {
	BookID   int `json:"bookId"`
	AuthorID int `json:"authorId"`
}

type BookGenreResponse struct {
	BookID  int `json:"bookId"`
	GenreID int `json:"genreId"`
}

func (r BookRequest) toModel(id int) models.Book {
	book := models.Book{ID: id, Name: r.Name}
	for _, authorID := range r.Authors {
		book.Authors = append(book.Authors, models.BookAuthor{BookID: id, AuthorID: authorID})
	}
	for _, genreID := range r.Genres {
		book.Genres = append(book.Genres, models.BookGenre{BookID: id, GenreID: genreID})
	}
	return book
}

func (r AuthorRequest) toModel(id int) models.Author {
	return models.Author{ID: id, Name: r.Name, Surname: r.Surname}
}

func (r GenreRequest) toModel(id int) models.Genre {
	return models.Genre{ID: id, Name: r.Name}
}

func BookFromModel(b models.Book) BookResponse {
	return BookResponse{
		ID:      b.ID,
		Name:    b.Name,
		Authors: b.AuthorIDs(),
		Genres:  b.GenreIDs(),
	}
}

func BooksFromModels(books []models.Book) []BookResponse {
	resp := make([]BookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, BookFromModel(b))
	}
	return resp
}

func AuthorFromModel(a models.Author) AuthorResponse {
	return AuthorResponse{ID: a.ID, Name: a.Name, Surname: a.Surname}
}

func GenreFromModel(g models.Genre) GenreResponse {
	return GenreResponse{ID: g.ID, Name: g.Name}
}
