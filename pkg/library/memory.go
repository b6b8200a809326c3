package library

import (
	"context"
	"fmt"
	"sync"

	"bookservice/pkg/models"

	"github.com/samber/lo"
)

// Memory keeps the catalog in process memory. Books, authors and genres
// are returned in insertion order, association records in attach order.
type Memory struct {
	mu sync.RWMutex

	books       []models.Book
	authors     []models.Author
	genres      []models.Genre
	bookAuthors []models.BookAuthor
	bookGenres  []models.BookGenre

	nextLinkID uint
}

var _ Library = (*Memory)(nil)

// NewMemory builds a repository holding a copy of the provider's rows.
func NewMemory(provider DataProvider) *Memory {
	m := &Memory{nextLinkID: 1}

	for _, b := range provider.GetBooks() {
		m.books = append(m.books, models.Book{ID: b.ID, Name: b.Name})
	}
	for _, a := range provider.GetAuthors() {
		m.authors = append(m.authors, models.Author{ID: a.ID, Name: a.Name, Surname: a.Surname})
	}
	for _, g := range provider.GetGenres() {
		m.genres = append(m.genres, models.Genre{ID: g.ID, Name: g.Name})
	}
	for _, l := range provider.GetBookAuthors() {
		m.attachAuthor(l.BookID, l.AuthorID)
	}
	for _, l := range provider.GetBookGenres() {
		m.attachGenre(l.BookID, l.GenreID)
	}
	return m
}

func (m *Memory) GetBooks(_ context.Context) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return lo.Map(m.books, func(b models.Book, _ int) models.Book {
		return m.hydrateBook(b)
	}), nil
}

func (m *Memory) GetBookByID(_ context.Context, id int) (*models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.bookIndex(id)
	if i < 0 {
		return nil, bookNotFound(id)
	}
	b := m.hydrateBook(m.books[i])
	return &b, nil
}

func (m *Memory) AddBook(_ context.Context, book models.Book) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bookIndex(book.ID) >= 0 {
		return nil, fmt.Errorf("book %d: %w", book.ID, ErrAlreadyExists)
	}
	if err := m.checkBookLinks(book); err != nil {
		return nil, err
	}

	m.books = append(m.books, models.Book{ID: book.ID, Name: book.Name})
	m.replaceBookLinks(book.ID, book)

	b := m.hydrateBook(m.books[len(m.books)-1])
	return &b, nil
}

func (m *Memory) SetBookByID(_ context.Context, book models.Book, id int) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.bookIndex(id)
	if i < 0 {
		return nil, bookNotFound(id)
	}
	if err := m.checkBookLinks(book); err != nil {
		return nil, err
	}

	m.books[i].Name = book.Name
	m.replaceBookLinks(id, book)

	b := m.hydrateBook(m.books[i])
	return &b, nil
}

func (m *Memory) RemoveBook(_ context.Context, id int) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.bookIndex(id)
	if i < 0 {
		return nil, bookNotFound(id)
	}

	removed := m.hydrateBook(m.books[i])
	m.books = append(m.books[:i], m.books[i+1:]...)
	m.dropBookAuthors(id)
	m.dropBookGenres(id)
	return &removed, nil
}

func (m *Memory) GetAuthors(_ context.Context) ([]models.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return lo.Map(m.authors, func(a models.Author, _ int) models.Author {
		return m.hydrateAuthor(a)
	}), nil
}

func (m *Memory) GetAuthorByID(_ context.Context, id int) (*models.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.authorIndex(id)
	if i < 0 {
		return nil, authorNotFound(id)
	}
	a := m.hydrateAuthor(m.authors[i])
	return &a, nil
}

func (m *Memory) AddAuthor(_ context.Context, author models.Author) (*models.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.authorIndex(author.ID) >= 0 {
		return nil, fmt.Errorf("author %d: %w", author.ID, ErrAlreadyExists)
	}

	m.authors = append(m.authors, models.Author{ID: author.ID, Name: author.Name, Surname: author.Surname})
	a := m.hydrateAuthor(m.authors[len(m.authors)-1])
	return &a, nil
}

func (m *Memory) SetAuthorByID(_ context.Context, author models.Author, id int) (*models.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.authorIndex(id)
	if i < 0 {
		return nil, authorNotFound(id)
	}

	m.authors[i].Name = author.Name
	m.authors[i].Surname = author.Surname
	a := m.hydrateAuthor(m.authors[i])
	return &a, nil
}

func (m *Memory) RemoveAuthor(_ context.Context, id int) (*models.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.authorIndex(id)
	if i < 0 {
		return nil, authorNotFound(id)
	}

	removed := m.hydrateAuthor(m.authors[i])
	m.bookAuthors = lo.Reject(m.bookAuthors, func(l models.BookAuthor, _ int) bool {
		return l.AuthorID == id
	})
	m.authors = append(m.authors[:i], m.authors[i+1:]...)
	return &removed, nil
}

func (m *Memory) GetGenres(_ context.Context) ([]models.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return lo.Map(m.genres, func(g models.Genre, _ int) models.Genre {
		return m.hydrateGenre(g)
	}), nil
}

func (m *Memory) GetGenreByID(_ context.Context, id int) (*models.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.genreIndex(id)
	if i < 0 {
		return nil, genreNotFound(id)
	}
	g := m.hydrateGenre(m.genres[i])
	return &g, nil
}

func (m *Memory) AddGenre(_ context.Context, genre models.Genre) (*models.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.genreIndex(genre.ID) >= 0 {
		return nil, fmt.Errorf("genre %d: %w", genre.ID, ErrAlreadyExists)
	}

	m.genres = append(m.genres, models.Genre{ID: genre.ID, Name: genre.Name})
	g := m.hydrateGenre(m.genres[len(m.genres)-1])
	return &g, nil
}

func (m *Memory) SetGenreByID(_ context.Context, genre models.Genre, id int) (*models.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.genreIndex(id)
	if i < 0 {
		return nil, genreNotFound(id)
	}

	m.genres[i].Name = genre.Name
	g := m.hydrateGenre(m.genres[i])
	return &g, nil
}

func (m *Memory) RemoveGenre(_ context.Context, id int) (*models.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.genreIndex(id)
	if i < 0 {
		return nil, genreNotFound(id)
	}
	if lo.ContainsBy(m.bookGenres, func(l models.BookGenre) bool { return l.GenreID == id }) {
		return nil, fmt.Errorf("genre %d: %w", id, ErrInUse)
	}

	removed := m.hydrateGenre(m.genres[i])
	m.genres = append(m.genres[:i], m.genres[i+1:]...)
	return &removed, nil
}

func (m *Memory) UpdateAuthor(_ context.Context, authorID, bookID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.authorIndex(authorID) < 0 {
		return authorNotFound(authorID)
	}
	if m.bookIndex(bookID) < 0 {
		return bookNotFound(bookID)
	}
	m.attachAuthor(bookID, authorID)
	return nil
}

func (m *Memory) UpdateGenre(_ context.Context, genreID, bookID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.genreIndex(genreID) < 0 {
		return genreNotFound(genreID)
	}
	if m.bookIndex(bookID) < 0 {
		return bookNotFound(bookID)
	}
	m.attachGenre(bookID, genreID)
	return nil
}

func (m *Memory) RemoveBookAuthors(_ context.Context, bookID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bookIndex(bookID) < 0 {
		return bookNotFound(bookID)
	}
	m.dropBookAuthors(bookID)
	return nil
}

func (m *Memory) RemoveBookGenres(_ context.Context, bookID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bookIndex(bookID) < 0 {
		return bookNotFound(bookID)
	}
	m.dropBookGenres(bookID)
	return nil
}

func (m *Memory) SearchByAuthor(_ context.Context, authorID int) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.authorIndex(authorID) < 0 {
		return nil, authorNotFound(authorID)
	}

	return lo.FilterMap(m.bookAuthors, func(l models.BookAuthor, _ int) (models.Book, bool) {
		if l.AuthorID != authorID {
			return models.Book{}, false
		}
		i := m.bookIndex(l.BookID)
		if i < 0 {
			return models.Book{}, false
		}
		return m.hydrateBook(m.books[i]), true
	}), nil
}

func (m *Memory) SearchByGenre(_ context.Context, genreID int) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.genreIndex(genreID) < 0 {
		return nil, genreNotFound(genreID)
	}

	return lo.FilterMap(m.bookGenres, func(l models.BookGenre, _ int) (models.Book, bool) {
		if l.GenreID != genreID {
			return models.Book{}, false
		}
		i := m.bookIndex(l.BookID)
		if i < 0 {
			return models.Book{}, false
		}
		return m.hydrateBook(m.books[i]), true
	}), nil
}

func (m *Memory) GetBookAuthors(_ context.Context) ([]models.BookAuthor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.BookAuthor, len(m.bookAuthors))
	copy(out, m.bookAuthors)
	return out, nil
}

func (m *Memory) GetBookGenres(_ context.Context) ([]models.BookGenre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.BookGenre, len(m.bookGenres))
	copy(out, m.bookGenres)
	return out, nil
}

// The helpers below expect m.mu to be held by the caller.

func (m *Memory) bookIndex(id int) int {
	_, i, _ := lo.FindIndexOf(m.books, func(b models.Book) bool { return b.ID == id })
	return i
}

func (m *Memory) authorIndex(id int) int {
	_, i, _ := lo.FindIndexOf(m.authors, func(a models.Author) bool { return a.ID == id })
	return i
}

func (m *Memory) genreIndex(id int) int {
	_, i, _ := lo.FindIndexOf(m.genres, func(g models.Genre) bool { return g.ID == id })
	return i
}

func (m *Memory) hydrateBook(b models.Book) models.Book {
	b.Authors = lo.Filter(m.bookAuthors, func(l models.BookAuthor, _ int) bool { return l.BookID == b.ID })
	b.Genres = lo.Filter(m.bookGenres, func(l models.BookGenre, _ int) bool { return l.BookID == b.ID })
	return b
}

func (m *Memory) hydrateAuthor(a models.Author) models.Author {
	a.Books = lo.Filter(m.bookAuthors, func(l models.BookAuthor, _ int) bool { return l.AuthorID == a.ID })
	return a
}

func (m *Memory) hydrateGenre(g models.Genre) models.Genre {
	g.Books = lo.Filter(m.bookGenres, func(l models.BookGenre, _ int) bool { return l.GenreID == g.ID })
	return g
}

func (m *Memory) checkBookLinks(book models.Book) error {
	for _, id := range book.AuthorIDs() {
		if m.authorIndex(id) < 0 {
			return authorNotFound(id)
		}
	}
	for _, id := range book.GenreIDs() {
		if m.genreIndex(id) < 0 {
			return genreNotFound(id)
		}
	}
	return nil
}

func (m *Memory) replaceBookLinks(bookID int, book models.Book) {
	m.dropBookAuthors(bookID)
	m.dropBookGenres(bookID)
	for _, id := range book.AuthorIDs() {
		m.attachAuthor(bookID, id)
	}
	for _, id := range book.GenreIDs() {
		m.attachGenre(bookID, id)
	}
}

func (m *Memory) attachAuthor(bookID, authorID int) {
	link := models.BookAuthor{BookID: bookID, AuthorID: authorID}
	if lo.ContainsBy(m.bookAuthors, link.Equal) {
		return
	}
	link.BookAuthorID = m.nextLinkID
	m.nextLinkID++
	m.bookAuthors = append(m.bookAuthors, link)
}

func (m *Memory) attachGenre(bookID, genreID int) {
	link := models.BookGenre{BookID: bookID, GenreID: genreID}
	if lo.ContainsBy(m.bookGenres, link.Equal) {
		return
	}
	link.BookGenreID = m.nextLinkID
	m.nextLinkID++
	m.bookGenres = append(m.bookGenres, link)
}

func (m *Memory) dropBookAuthors(bookID int) {
	m.bookAuthors = lo.Reject(m.bookAuthors, func(l models.BookAuthor, _ int) bool {
		return l.BookID == bookID
	})
}

func (m *Memory) dropBookGenres(bookID int) {
	m.bookGenres = lo.Reject(m.bookGenres, func(l models.BookGenre, _ int) bool {
		return l.BookID == bookID
	})
}

func bookNotFound(id int) error {
	return fmt.Errorf("book %d: %w", id, ErrNotFound)
}

func authorNotFound(id int) error {
	return fmt.Errorf("author %d: %w", id, ErrNotFound)
}

func genreNotFound(id int) error {
	return fmt.Errorf("genre %d: %w", id, ErrNotFound)
}
