package library

import (
	"context"
	"fmt"

	"bookservice/pkg/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DataProvider supplies the rows a repository starts with.
type DataProvider interface {
	GetBooks() []models.Book
	GetAuthors() []models.Author
	GetGenres() []models.Genre
	GetBookAuthors() []models.BookAuthor
	GetBookGenres() []models.BookGenre
}

// Snapshot is a fixed set of catalog rows.
type Snapshot struct {
	Books       []models.Book
	Authors     []models.Author
	Genres      []models.Genre
	BookAuthors []models.BookAuthor
	BookGenres  []models.BookGenre
}

func (s Snapshot) GetBooks() []models.Book             { return s.Books }
func (s Snapshot) GetAuthors() []models.Author         { return s.Authors }
func (s Snapshot) GetGenres() []models.Genre           { return s.Genres }
func (s Snapshot) GetBookAuthors() []models.BookAuthor { return s.BookAuthors }
func (s Snapshot) GetBookGenres() []models.BookGenre   { return s.BookGenres }

// DefaultData returns the catalog every fresh deployment is seeded with.
func DefaultData() Snapshot {
	s := Snapshot{
		Books: []models.Book{
			{ID: 1, Name: "Book0"},
			{ID: 2, Name: "Book1"},
		},
	}
	for i := 1; i <= 5; i++ {
		s.Authors = append(s.Authors, models.Author{
			ID:      i,
			Name:    fmt.Sprintf("Name%d", i-1),
			Surname: fmt.Sprintf("Surname%d", i-1),
		})
		s.Genres = append(s.Genres, models.Genre{ID: i, Name: fmt.Sprintf("Genre%d", i-1)})
	}

	pairs := [][2]int{{1, 1}, {1, 2}, {2, 3}, {2, 4}, {2, 5}, {1, 5}}
	for _, p := range pairs {
		s.BookAuthors = append(s.BookAuthors, models.BookAuthor{BookID: p[0], AuthorID: p[1]})
		s.BookGenres = append(s.BookGenres, models.BookGenre{BookID: p[0], GenreID: p[1]})
	}
	return s
}

// Seed inserts the provider's rows into db. Rows that already exist are
// left untouched, so seeding on every start is safe.
func Seed(ctx context.Context, db *gorm.DB, provider DataProvider) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skip := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Session(&gorm.Session{})

		if books := stripBookLinks(provider.GetBooks()); len(books) > 0 {
			if err := skip.Create(&books).Error; err != nil {
				return fmt.Errorf("seed books: %w", err)
			}
		}
		if authors := provider.GetAuthors(); len(authors) > 0 {
			if err := skip.Create(&authors).Error; err != nil {
				return fmt.Errorf("seed authors: %w", err)
			}
		}
		if genres := provider.GetGenres(); len(genres) > 0 {
			if err := skip.Create(&genres).Error; err != nil {
				return fmt.Errorf("seed genres: %w", err)
			}
		}
		if links := copyBookAuthors(provider.GetBookAuthors()); len(links) > 0 {
			if err := skip.Create(&links).Error; err != nil {
				return fmt.Errorf("seed book authors: %w", err)
			}
		}
		if links := copyBookGenres(provider.GetBookGenres()); len(links) > 0 {
			if err := skip.Create(&links).Error; err != nil {
				return fmt.Errorf("seed book genres: %w", err)
			}
		}
		return nil
	})
}

func stripBookLinks(books []models.Book) []models.Book {
	out := make([]models.Book, len(books))
	for i, b := range books {
		out[i] = models.Book{ID: b.ID, Name: b.Name}
	}
	return out
}

func copyBookAuthors(links []models.BookAuthor) []models.BookAuthor {
	out := make([]models.BookAuthor, len(links))
	for i, l := range links {
		out[i] = models.BookAuthor{BookID: l.BookID, AuthorID: l.AuthorID}
	}
	return out
}

func copyBookGenres(links []models.BookGenre) []models.BookGenre {
	out := make([]models.BookGenre, len(links))
	for i, l := range links {
		out[i] = models.BookGenre{BookID: l.BookID, GenreID: l.GenreID}
	}
	return out
}
